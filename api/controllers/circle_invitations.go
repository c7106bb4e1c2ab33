package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/heartlink/heartlink-backend/api/responses"
	"github.com/heartlink/heartlink-backend/api/validators"
	"github.com/heartlink/heartlink-backend/internal/invitations"
	"github.com/heartlink/heartlink-backend/pkg/enums"
	pkgerrors "github.com/heartlink/heartlink-backend/pkg/errors"
	"github.com/heartlink/heartlink-backend/pkg/logger"
)

type createInvitationBody struct {
	InviteeID string  `json:"invitee_id" validate:"required,uuid"`
	Message   *string `json:"message,omitempty" validate:"omitempty,max=500"`
}

type respondInvitationBody struct {
	Decision string `json:"decision" validate:"required,oneof=accepted rejected"`
}

// CreateInvitation lets a circle owner invite another user.
func CreateInvitation(svc invitations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "invitation service unavailable"))
			return
		}

		caller, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		circleID, err := pathUUID(r, "circleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createInvitationBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		inviteeID, err := uuid.Parse(body.InviteeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid invitee id"))
			return
		}

		invitation, err := svc.Invite(r.Context(), circleID, caller, invitations.InviteInput{
			InviteeID: inviteeID,
			Message:   body.Message,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, invitation)
	}
}

// ListMyInvitations returns the caller's invitation inbox, optionally
// filtered by status.
func ListMyInvitations(svc invitations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "invitation service unavailable"))
			return
		}

		caller, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var status *enums.InvitationStatus
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			parsed, err := enums.ParseInvitationStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			status = &parsed
		}

		list, err := svc.ListForInvitee(r.Context(), caller, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"invitations": list})
	}
}

// RespondInvitation records the invitee's accept or reject decision.
func RespondInvitation(svc invitations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "invitation service unavailable"))
			return
		}

		caller, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		invitationID, err := pathUUID(r, "invitationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body respondInvitationBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		decision, err := enums.ParseInvitationStatus(body.Decision)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid decision"))
			return
		}

		invitation, err := svc.Respond(r.Context(), invitationID, caller, decision)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, invitation)
	}
}
