package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/mock/gomock"

	"github.com/hashebooks/hashebooks-backend/internal/domain"
	"github.com/hashebooks/hashebooks-backend/internal/service"
	servicegomock "github.com/hashebooks/hashebooks-backend/internal/service/gomock"
)

func withBookID(r *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestListQueueParsesQuery(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := servicegomock.NewMockBookReviewServiceInterface(ctrl)
	svc.EXPECT().ListQueue(gomock.Any(), domain.BookStatusPending, 2, 10).
		Return(&service.BookQueuePage{Items: []domain.Book{{ID: "b1"}}, Page: 2, PageSize: 10, Total: 11, TotalPages: 2}, nil)

	rr := httptest.NewRecorder()
	NewBookReviewHandler(svc).ListQueue(rr, httptest.NewRequest(http.MethodGet, "/api/v1/admin/books?status=Pending&page=2&page_size=10", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if body := decodeBody(t, rr); body["total"] != float64(11) {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestListQueueRejectsBadPaging(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := servicegomock.NewMockBookReviewServiceInterface(ctrl)
	svc.EXPECT().ListQueue(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	for _, q := range []string{"page=0", "page_size=abc", "page_size=1000"} {
		rr := httptest.NewRecorder()
		NewBookReviewHandler(svc).ListQueue(rr, httptest.NewRequest(http.MethodGet, "/api/v1/admin/books?"+q, nil))
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", q, rr.Code)
		}
	}
}

func TestChangeStatusReportsNotificationFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := servicegomock.NewMockBookReviewServiceInterface(ctrl)
	svc.EXPECT().ChangeStatus(gomock.Any(), adminActor, "b1", domain.BookStatusRejected).Return(&service.StatusChangeResult{
		Book:         &domain.Book{ID: "b1", Status: domain.BookStatusRejected},
		Notification: &service.NotificationOutcome{Sent: false, Error: "Failed to send notification email"},
	}, nil)

	req := withBookID(reqWithClaims(jsonRequest(http.MethodPatch, "/api/v1/admin/books/b1/status", `{"status":"rejected"}`), adminActor.ID, adminActor.Email), "b1")
	rr := httptest.NewRecorder()
	NewBookReviewHandler(svc).ChangeStatus(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	notification, _ := decodeBody(t, rr)["notification"].(map[string]any)
	if notification["sent"] != false || notification["error"] != "Failed to send notification email" {
		t.Fatalf("unexpected notification %+v", notification)
	}
}

func TestChangeStatusErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{service.ErrInvalidBookStatus, http.StatusBadRequest},
		{service.ErrBookNotFound, http.StatusNotFound},
		{service.ErrUpstream, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		ctrl := gomock.NewController(t)
		svc := servicegomock.NewMockBookReviewServiceInterface(ctrl)
		svc.EXPECT().ChangeStatus(gomock.Any(), gomock.Any(), "b1", gomock.Any()).Return(nil, tc.err)

		req := withBookID(reqWithClaims(jsonRequest(http.MethodPatch, "/api/v1/admin/books/b1/status", `{"status":"approved"}`), adminActor.ID, adminActor.Email), "b1")
		rr := httptest.NewRecorder()
		NewBookReviewHandler(svc).ChangeStatus(rr, req)
		if rr.Code != tc.status {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.status, rr.Code)
		}
	}
}
