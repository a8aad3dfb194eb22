package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hashebooks/hashebooks-backend/internal/domain"
	"github.com/hashebooks/hashebooks-backend/internal/http/response"
	"github.com/hashebooks/hashebooks-backend/internal/observability"
	"github.com/hashebooks/hashebooks-backend/internal/service"
)

type BookReviewHandler struct {
	reviewSvc service.BookReviewServiceInterface
}

func NewBookReviewHandler(reviewSvc service.BookReviewServiceInterface) *BookReviewHandler {
	return &BookReviewHandler{reviewSvc: reviewSvc}
}

func (h *BookReviewHandler) ListQueue(w http.ResponseWriter, r *http.Request) {
	pageReq, err := parsePageRequest(r)
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, err.Error())
		return
	}
	status := domain.BookStatus(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("status"))))
	page, err := h.reviewSvc.ListQueue(r.Context(), status, pageReq.Page, pageReq.PageSize)
	if err != nil {
		if errors.Is(err, service.ErrInvalidBookStatus) {
			response.Error(w, r, http.StatusBadRequest, "Invalid status")
			return
		}
		response.Error(w, r, http.StatusInternalServerError, "Failed to list books")
		return
	}
	response.JSON(w, r, http.StatusOK, page)
}

type changeStatusRequest struct {
	Status string `json:"status"`
}

// ChangeStatus answers 200 once the status is stored, whether or not the
// owner notification went out.
func (h *BookReviewHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "No authorization header")
		return
	}
	bookID := chi.URLParam(r, "id")
	var body changeStatusRequest
	decodeLenient(r, &body)
	status := domain.BookStatus(strings.ToLower(strings.TrimSpace(body.Status)))

	result, err := h.reviewSvc.ChangeStatus(r.Context(), actor, bookID, status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidBookStatus):
			response.Error(w, r, http.StatusBadRequest, "Invalid status")
		case errors.Is(err, service.ErrBookNotFound):
			response.Error(w, r, http.StatusNotFound, "Book not found")
		default:
			response.Error(w, r, http.StatusInternalServerError, "Failed to update book status")
		}
		return
	}
	observability.EmitAudit(r, observability.AuditInput{
		EventName:   "admin.book.status.changed",
		ActorUserID: actor.ID,
		ActorEmail:  actor.Email,
		TargetType:  "book",
		TargetID:    bookID,
		Action:      string(status),
		Outcome:     "success",
	})
	response.JSON(w, r, http.StatusOK, result)
}
