package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sueworkspace/sungji-drop/api/middleware"
	"github.com/sueworkspace/sungji-drop/internal/notifications"
	pkgerrors "github.com/sueworkspace/sungji-drop/pkg/errors"
)

type stubNotificationsService struct {
	listQuery  notifications.ListQuery
	listResp   *notifications.ListResponse
	markReadID uuid.UUID
	markErr    error
}

func (s *stubNotificationsService) List(ctx context.Context, userID uuid.UUID, query notifications.ListQuery) (*notifications.ListResponse, error) {
	s.listQuery = query
	if s.listResp != nil {
		return s.listResp, nil
	}
	return &notifications.ListResponse{}, nil
}

func (s *stubNotificationsService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	s.markReadID = notificationID
	return s.markErr
}

func (s *stubNotificationsService) MarkAllRead(ctx context.Context, userID uuid.UUID) (*notifications.MarkAllResponse, error) {
	return &notifications.MarkAllResponse{Updated: 3}, nil
}

func authedRequest(method, target string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	ctx := middleware.WithUserID(req.Context(), uuid.NewString())
	return req.WithContext(ctx)
}

func TestListNotificationsParsesQuery(t *testing.T) {
	svc := &stubNotificationsService{}
	handler := ListNotifications(svc, nil)

	req := authedRequest(http.MethodGet, "/api/v1/notifications?limit=10&unreadOnly=true&cursor=abc")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.listQuery.Limit != 10 {
		t.Fatalf("expected limit 10 got %d", svc.listQuery.Limit)
	}
	if !svc.listQuery.UnreadOnly {
		t.Fatal("expected unreadOnly true")
	}
	if svc.listQuery.Cursor != "abc" {
		t.Fatalf("expected cursor abc got %s", svc.listQuery.Cursor)
	}
}

func TestListNotificationsRejectsBadLimit(t *testing.T) {
	svc := &stubNotificationsService{}
	handler := ListNotifications(svc, nil)

	req := authedRequest(http.MethodGet, "/api/v1/notifications?limit=abc")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestListNotificationsRequiresAuthContext(t *testing.T) {
	svc := &stubNotificationsService{}
	handler := ListNotifications(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestMarkNotificationReadNotFound(t *testing.T) {
	svc := &stubNotificationsService{markErr: pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")}
	handler := MarkNotificationRead(svc, nil)

	notificationID := uuid.New()
	req := authedRequest(http.MethodPost, "/api/v1/notifications/"+notificationID.String()+"/read")
	rc := chi.NewRouteContext()
	rc.URLParams.Add("notificationId", notificationID.String())
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
	if svc.markReadID != notificationID {
		t.Fatalf("expected service called with %s got %s", notificationID, svc.markReadID)
	}
}
