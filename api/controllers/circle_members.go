package controllers

import (
	"net/http"

	"github.com/heartlink/heartlink-backend/api/responses"
	"github.com/heartlink/heartlink-backend/api/validators"
	"github.com/heartlink/heartlink-backend/internal/memberships"
	pkgerrors "github.com/heartlink/heartlink-backend/pkg/errors"
	"github.com/heartlink/heartlink-backend/pkg/logger"
)

type namePreferenceBody struct {
	// Null resets the membership to the account-level default.
	ShowFullName *bool `json:"show_full_name"`
}

// ListCircleMembers returns the visibility-gated member roster.
func ListCircleMembers(svc memberships.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "membership service unavailable"))
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

		members, err := svc.ListMembers(r.Context(), circleID, caller)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"members": members})
	}
}

// RemoveCircleMember removes a member; owners remove anyone, members only
// themselves.
func RemoveCircleMember(svc memberships.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "membership service unavailable"))
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

		userID, err := pathUUID(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.RemoveMember(r.Context(), circleID, userID, caller); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "removed"})
	}
}

// SetNamePreference updates the caller's per-circle display name override.
func SetNamePreference(svc memberships.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "membership service unavailable"))
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

		var body namePreferenceBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.SetNamePreference(r.Context(), circleID, caller, caller, body.ShowFullName); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "updated"})
	}
}

// ReconcileMemberCount recounts and rewrites the stored member counter for a
// circle. Reserved for platform admins.
func ReconcileMemberCount(svc memberships.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "membership service unavailable"))
			return
		}

		circleID, err := pathUUID(r, "circleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		count, err := svc.Reconcile(r.Context(), circleID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"circle_id":    circleID,
			"member_count": count,
		})
	}
}
