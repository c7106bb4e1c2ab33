package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/heartlink/heartlink-backend/api/middleware"
	"github.com/heartlink/heartlink-backend/internal/circles"
	pkgerrors "github.com/heartlink/heartlink-backend/pkg/errors"
)

type stubCirclesService struct {
	dto  *circles.CircleDTO
	list []circles.CircleDTO
	err  error

	created *circles.CreateCircleDTO
	updated *circles.UpdateCircleInput
	deleted bool
}

func (s *stubCirclesService) Create(ctx context.Context, ownerID uuid.UUID, input circles.CreateCircleDTO) (*circles.CircleDTO, error) {
	s.created = &input
	return s.dto, s.err
}

func (s *stubCirclesService) Get(ctx context.Context, circleID, viewerID uuid.UUID) (*circles.CircleDTO, error) {
	return s.dto, s.err
}

func (s *stubCirclesService) Update(ctx context.Context, circleID, callerID uuid.UUID, input circles.UpdateCircleInput) (*circles.CircleDTO, error) {
	s.updated = &input
	return s.dto, s.err
}

func (s *stubCirclesService) Delete(ctx context.Context, circleID, callerID uuid.UUID) error {
	s.deleted = true
	return s.err
}

func (s *stubCirclesService) ListOwned(ctx context.Context, ownerID uuid.UUID) ([]circles.CircleDTO, error) {
	return s.list, s.err
}

func (s *stubCirclesService) ListMine(ctx context.Context, userID uuid.UUID) ([]circles.CircleDTO, error) {
	return s.list, s.err
}

func authedRequest(method, target string, body []byte) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	return req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
}

func withPathParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(req.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestCreateCircleSuccess(t *testing.T) {
	svc := &stubCirclesService{dto: &circles.CircleDTO{ID: uuid.New(), Name: "Hiking Crew"}}
	handler := CreateCircle(svc, nil)

	body := []byte(`{"name":"Hiking Crew","is_private":true}`)
	req := authedRequest(http.MethodPost, "/api/v1/circles", body)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", rec.Code)
	}
	if svc.created == nil || svc.created.Name != "Hiking Crew" {
		t.Fatalf("expected create input forwarded, got %+v", svc.created)
	}
	if svc.created.IsPrivate == nil || !*svc.created.IsPrivate {
		t.Fatal("expected is_private forwarded")
	}

	var envelope struct {
		Data circles.CircleDTO `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Name != "Hiking Crew" {
		t.Fatalf("unexpected name %q", envelope.Data.Name)
	}
}

func TestCreateCircleRejectsMissingName(t *testing.T) {
	handler := CreateCircle(&stubCirclesService{}, nil)

	req := authedRequest(http.MethodPost, "/api/v1/circles", []byte(`{"description":"no name"}`))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestCreateCircleRequiresAuthContext(t *testing.T) {
	handler := CreateCircle(&stubCirclesService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/circles", bytes.NewReader([]byte(`{"name":"x"}`)))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestGetCircleForbiddenPropagates(t *testing.T) {
	svc := &stubCirclesService{err: pkgerrors.New(pkgerrors.CodeForbidden, "not a member")}
	handler := GetCircle(svc, nil)

	req := authedRequest(http.MethodGet, "/api/v1/circles/abc", nil)
	req = withPathParam(req, "circleId", uuid.NewString())
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rec.Code)
	}
}

func TestGetCircleRejectsBadID(t *testing.T) {
	handler := GetCircle(&stubCirclesService{}, nil)

	req := authedRequest(http.MethodGet, "/api/v1/circles/not-a-uuid", nil)
	req = withPathParam(req, "circleId", "not-a-uuid")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestUpdateCircleForwardsPartialInput(t *testing.T) {
	svc := &stubCirclesService{dto: &circles.CircleDTO{ID: uuid.New()}}
	handler := UpdateCircle(svc, nil)

	req := authedRequest(http.MethodPatch, "/api/v1/circles/x", []byte(`{"show_members":false}`))
	req = withPathParam(req, "circleId", uuid.NewString())
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.updated == nil || svc.updated.ShowMembers == nil || *svc.updated.ShowMembers {
		t.Fatalf("expected show_members=false forwarded, got %+v", svc.updated)
	}
	if svc.updated.Name != nil {
		t.Fatal("expected untouched fields to stay nil")
	}
}

func TestDeleteCircleSuccess(t *testing.T) {
	svc := &stubCirclesService{}
	handler := DeleteCircle(svc, nil)

	req := authedRequest(http.MethodDelete, "/api/v1/circles/x", nil)
	req = withPathParam(req, "circleId", uuid.NewString())
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if !svc.deleted {
		t.Fatal("expected delete forwarded to service")
	}
}
