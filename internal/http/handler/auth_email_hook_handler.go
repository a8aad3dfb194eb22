package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/hashebooks/hashebooks-backend/internal/http/response"
	"github.com/hashebooks/hashebooks-backend/internal/observability"
	"github.com/hashebooks/hashebooks-backend/internal/security"
	"github.com/hashebooks/hashebooks-backend/internal/service"
)

const maxHookPayloadBytes = 64 << 10

type WebhookVerifier interface {
	Verify(payload []byte, headers http.Header) error
}

// AuthEmailHookHandler serves the identity provider's send-email hook. The
// provider expects 401 with a nested error object on any failure.
type AuthEmailHookHandler struct {
	verifier        WebhookVerifier
	notificationSvc service.NotificationServiceInterface
}

func NewAuthEmailHookHandler(verifier WebhookVerifier, notificationSvc service.NotificationServiceInterface) *AuthEmailHookHandler {
	return &AuthEmailHookHandler{verifier: verifier, notificationSvc: notificationSvc}
}

type authEmailHookPayload struct {
	User struct {
		Email        string `json:"email"`
		UserMetadata struct {
			DisplayName string `json:"display_name"`
		} `json:"user_metadata"`
	} `json:"user"`
	EmailData struct {
		Token           string `json:"token"`
		TokenHash       string `json:"token_hash"`
		RedirectTo      string `json:"redirect_to"`
		EmailActionType string `json:"email_action_type"`
		SiteURL         string `json:"site_url"`
	} `json:"email_data"`
}

type hookError struct {
	HTTPCode int    `json:"http_code"`
	Message  string `json:"message"`
}

func (h *AuthEmailHookHandler) SendAuthEmail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusMethodNotAllowed)
		_, _ = w.Write([]byte("Method not allowed"))
		return
	}

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxHookPayloadBytes))
	if err != nil {
		writeHookError(w, r, http.StatusBadRequest, "failed to read payload")
		return
	}
	if h.verifier == nil {
		observability.RecordWebhookVerification(r.Context(), "unconfigured")
		writeHookError(w, r, http.StatusInternalServerError, "hook secret not configured")
		return
	}
	if err := h.verifier.Verify(payload, r.Header); err != nil {
		observability.RecordWebhookVerification(r.Context(), verificationOutcome(err))
		slog.WarnContext(r.Context(), "auth email hook rejected", "error", err.Error())
		writeHookError(w, r, http.StatusUnauthorized, err.Error())
		return
	}
	observability.RecordWebhookVerification(r.Context(), "valid")

	var body authEmailHookPayload
	if err := json.Unmarshal(payload, &body); err != nil {
		writeHookError(w, r, http.StatusBadRequest, "invalid payload")
		return
	}
	_, err = h.notificationSvc.SendAuthEmail(r.Context(), service.AuthEmailInput{
		Email:       body.User.Email,
		DisplayName: body.User.UserMetadata.DisplayName,
		Token:       body.EmailData.Token,
		ActionType:  body.EmailData.EmailActionType,
	})
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, service.ErrInvalidInput) {
			code = http.StatusBadRequest
		}
		writeHookError(w, r, code, "Failed to send email")
		return
	}
	response.JSON(w, r, http.StatusOK, struct{}{})
}

func writeHookError(w http.ResponseWriter, r *http.Request, code int, message string) {
	response.JSON(w, r, http.StatusUnauthorized, map[string]hookError{
		"error": {HTTPCode: code, Message: message},
	})
}

func verificationOutcome(err error) string {
	switch {
	case errors.Is(err, security.ErrWebhookMissingHeaders):
		return "missing_headers"
	case errors.Is(err, security.ErrWebhookTimestamp):
		return "stale"
	default:
		return "invalid_signature"
	}
}
