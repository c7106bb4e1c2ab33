package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/heartlink/heartlink-backend/api/responses"
	"github.com/heartlink/heartlink-backend/api/validators"
	"github.com/heartlink/heartlink-backend/internal/engagement"
	"github.com/heartlink/heartlink-backend/pkg/enums"
	pkgerrors "github.com/heartlink/heartlink-backend/pkg/errors"
	"github.com/heartlink/heartlink-backend/pkg/logger"
)

const maxFeedPageSize = 100

type postMessageBody struct {
	Content string `json:"content" validate:"required,min=1,max=2000"`
}

type createEventBody struct {
	Title       string     `json:"title" validate:"required,min=1,max=200"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=2000"`
	Location    *string    `json:"location,omitempty" validate:"omitempty,max=200"`
	StartsAt    time.Time  `json:"starts_at" validate:"required"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
}

type rsvpBody struct {
	Status string `json:"status" validate:"required,oneof=going maybe declined"`
}

func feedParams(r *http.Request) (engagement.ListParams, error) {
	limit, err := validators.ParseQueryInt(r, "limit", 0, 1, maxFeedPageSize)
	if err != nil {
		return engagement.ListParams{}, err
	}
	return engagement.ListParams{
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}, nil
}

// PostCircleMessage appends a message to the circle feed.
func PostCircleMessage(svc engagement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "engagement service unavailable"))
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

		var body postMessageBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		message, err := svc.PostMessage(r.Context(), circleID, caller, validators.SanitizeString(body.Content, 2000))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, message)
	}
}

// ListCircleMessages pages through the circle feed, newest first.
func ListCircleMessages(svc engagement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "engagement service unavailable"))
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

		params, err := feedParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListMessages(r.Context(), circleID, caller, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// CreateCircleEvent schedules an event inside a circle.
func CreateCircleEvent(svc engagement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "engagement service unavailable"))
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

		var body createEventBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		event, err := svc.CreateEvent(r.Context(), circleID, caller, engagement.CreateEventInput{
			Title:       body.Title,
			Description: body.Description,
			Location:    body.Location,
			StartsAt:    body.StartsAt,
			EndsAt:      body.EndsAt,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, event)
	}
}

// ListCircleEvents returns upcoming and past events for a circle.
func ListCircleEvents(svc engagement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "engagement service unavailable"))
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

		events, err := svc.ListEvents(r.Context(), circleID, caller)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"events": events})
	}
}

// RSVPCircleEvent records the caller's attendance answer.
func RSVPCircleEvent(svc engagement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "engagement service unavailable"))
			return
		}

		caller, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		eventID, err := pathUUID(r, "eventId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body rsvpBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseAttendeeStatus(body.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid rsvp status"))
			return
		}

		rsvp, err := svc.RSVP(r.Context(), eventID, caller, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, rsvp)
	}
}

// ListCircleActivity pages through the circle's audit trail.
func ListCircleActivity(svc engagement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "engagement service unavailable"))
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

		params, err := feedParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListActivity(r.Context(), circleID, caller, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}
