package handler

import (
	"errors"
	"net/http"

	"github.com/hashebooks/hashebooks-backend/internal/http/response"
	"github.com/hashebooks/hashebooks-backend/internal/service"
)

type NotificationHandler struct {
	notificationSvc service.NotificationServiceInterface
}

func NewNotificationHandler(notificationSvc service.NotificationServiceInterface) *NotificationHandler {
	return &NotificationHandler{notificationSvc: notificationSvc}
}

type welcomeEmailRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

type bookStatusEmailRequest struct {
	BookID    string `json:"bookId"`
	BookTitle string `json:"bookTitle"`
	Status    string `json:"status"`
	UserID    string `json:"userId"`
}

func (h *NotificationHandler) SendWelcome(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "No authorization header")
		return
	}
	var body welcomeEmailRequest
	decodeLenient(r, &body)

	receipt, err := h.notificationSvc.SendWelcome(r.Context(), actor, service.WelcomeEmailInput{
		Email:       body.Email,
		DisplayName: body.DisplayName,
	})
	switch {
	case err == nil:
		response.JSON(w, r, http.StatusOK, receipt)
	case errors.Is(err, service.ErrEmailMismatch):
		response.Error(w, r, http.StatusForbidden, "Email mismatch")
	case errors.Is(err, service.ErrRateLimited):
		writeRateLimited(w, r, err, "Too many requests. Please try again later.")
	default:
		response.Error(w, r, http.StatusInternalServerError, "An error occurred while sending the email")
	}
}

// SendBookStatus is the internal trigger for review outcome emails.
func (h *NotificationHandler) SendBookStatus(w http.ResponseWriter, r *http.Request) {
	var body bookStatusEmailRequest
	decodeLenient(r, &body)

	receipt, err := h.notificationSvc.SendBookStatus(r.Context(), service.BookStatusEmailInput{
		BookID:    body.BookID,
		BookTitle: body.BookTitle,
		Status:    body.Status,
		UserID:    body.UserID,
	})
	switch {
	case err == nil:
		response.JSON(w, r, http.StatusOK, map[string]any{
			"success":       true,
			"emailResponse": receipt,
		})
	case errors.Is(err, service.ErrStatusFieldsRequired):
		response.Error(w, r, http.StatusBadRequest, "Missing required fields: bookId, bookTitle, status, userId")
	case errors.Is(err, service.ErrInvalidBookStatus):
		response.Error(w, r, http.StatusBadRequest, "Invalid status: must be approved or rejected")
	case errors.Is(err, service.ErrContactNotFound):
		response.Error(w, r, http.StatusInternalServerError, "Could not find user email")
	default:
		response.Error(w, r, http.StatusInternalServerError, "An error occurred while sending the email")
	}
}
