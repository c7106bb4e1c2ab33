package controllers

import (
	"net/http"

	"github.com/heartlink/heartlink-backend/api/responses"
	"github.com/heartlink/heartlink-backend/api/validators"
	"github.com/heartlink/heartlink-backend/internal/circles"
	pkgerrors "github.com/heartlink/heartlink-backend/pkg/errors"
	"github.com/heartlink/heartlink-backend/pkg/logger"
)

type createCircleBody struct {
	Name        string  `json:"name" validate:"required,min=1,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	Category    *string `json:"category,omitempty" validate:"omitempty,max=50"`
	IsPrivate   *bool   `json:"is_private,omitempty"`
	ShowMembers *bool   `json:"show_members,omitempty"`
}

type updateCircleBody struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	Category    *string `json:"category,omitempty" validate:"omitempty,max=50"`
	IsPrivate   *bool   `json:"is_private,omitempty"`
	ShowMembers *bool   `json:"show_members,omitempty"`
}

// CreateCircle creates a circle owned by the caller.
func CreateCircle(svc circles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "circle service unavailable"))
			return
		}

		caller, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createCircleBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		circle, err := svc.Create(r.Context(), caller, circles.CreateCircleDTO{
			Name:        validators.SanitizeString(body.Name, 100),
			Description: body.Description,
			Category:    body.Category,
			IsPrivate:   body.IsPrivate,
			ShowMembers: body.ShowMembers,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, circle)
	}
}

// ListOwnedCircles returns the circles the caller owns.
func ListOwnedCircles(svc circles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "circle service unavailable"))
			return
		}

		caller, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListOwned(r.Context(), caller)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"circles": list})
	}
}

// ListMyCircles returns circles the caller owns or belongs to.
func ListMyCircles(svc circles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "circle service unavailable"))
			return
		}

		caller, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListMine(r.Context(), caller)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"circles": list})
	}
}

// GetCircle fetches a single circle.
func GetCircle(svc circles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "circle service unavailable"))
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

		circle, err := svc.Get(r.Context(), circleID, caller)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, circle)
	}
}

// UpdateCircle applies owner-only partial edits.
func UpdateCircle(svc circles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "circle service unavailable"))
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

		var body updateCircleBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if body.Name != nil {
			trimmed := validators.SanitizeString(*body.Name, 100)
			body.Name = &trimmed
		}
		circle, err := svc.Update(r.Context(), circleID, caller, circles.UpdateCircleInput{
			Name:        body.Name,
			Description: body.Description,
			Category:    body.Category,
			IsPrivate:   body.IsPrivate,
			ShowMembers: body.ShowMembers,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, circle)
	}
}

// DeleteCircle removes an owned circle and its dependents.
func DeleteCircle(svc circles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "circle service unavailable"))
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

		if err := svc.Delete(r.Context(), circleID, caller); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
