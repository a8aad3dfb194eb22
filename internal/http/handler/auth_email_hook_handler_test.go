package handler

import (
	"bytes"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/hashebooks/hashebooks-backend/internal/security"
	"github.com/hashebooks/hashebooks-backend/internal/service"
	servicegomock "github.com/hashebooks/hashebooks-backend/internal/service/gomock"
)

const hookPayload = `{"user":{"email":"reader@example.com","user_metadata":{"display_name":"Ada"}},"email_data":{"token":"123456","email_action_type":"signup"}}`

func newTestWebhookVerifier(t *testing.T) *security.WebhookVerifier {
	t.Helper()
	v, err := security.NewWebhookVerifier("v1,whsec_" + base64.StdEncoding.EncodeToString([]byte("hook-secret-for-tests")))
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}
	return v
}

func signedHookRequest(t *testing.T, v *security.WebhookVerifier, payload string) *http.Request {
	t.Helper()
	now := time.Now()
	sig, err := v.Sign("msg_1", now, []byte(payload))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/hooks/send-auth-email", bytes.NewBufferString(payload))
	req.Header.Set("webhook-id", "msg_1")
	req.Header.Set("webhook-timestamp", strconv.FormatInt(now.Unix(), 10))
	req.Header.Set("webhook-signature", sig)
	return req
}

func hookErrorOf(t *testing.T, rr *httptest.ResponseRecorder) (float64, string) {
	t.Helper()
	inner, _ := decodeBody(t, rr)["error"].(map[string]any)
	code, _ := inner["http_code"].(float64)
	msg, _ := inner["message"].(string)
	return code, msg
}

func TestAuthEmailHookSendsVerifiedPayload(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := servicegomock.NewMockNotificationServiceInterface(ctrl)
	svc.EXPECT().SendAuthEmail(gomock.Any(), service.AuthEmailInput{
		Email:       "reader@example.com",
		DisplayName: "Ada",
		Token:       "123456",
		ActionType:  "signup",
	}).Return(&service.EmailReceipt{ID: "re_1"}, nil)

	v := newTestWebhookVerifier(t)
	rr := httptest.NewRecorder()
	NewAuthEmailHookHandler(v, svc).SendAuthEmail(rr, signedHookRequest(t, v, hookPayload))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if body := decodeBody(t, rr); len(body) != 0 {
		t.Fatalf("expected empty object, got %+v", body)
	}
}

func TestAuthEmailHookRejectsBadSignature(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := servicegomock.NewMockNotificationServiceInterface(ctrl)
	svc.EXPECT().SendAuthEmail(gomock.Any(), gomock.Any()).Times(0)

	v := newTestWebhookVerifier(t)
	req := signedHookRequest(t, v, hookPayload)
	req.Header.Set("webhook-signature", "v1,AAAA")
	rr := httptest.NewRecorder()
	NewAuthEmailHookHandler(v, svc).SendAuthEmail(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if code, msg := hookErrorOf(t, rr); code != http.StatusUnauthorized || msg == "" {
		t.Fatalf("unexpected hook error code=%v msg=%q", code, msg)
	}
}

func TestAuthEmailHookSendFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := servicegomock.NewMockNotificationServiceInterface(ctrl)
	svc.EXPECT().SendAuthEmail(gomock.Any(), gomock.Any()).Return(nil, service.ErrEmailDelivery)

	v := newTestWebhookVerifier(t)
	rr := httptest.NewRecorder()
	NewAuthEmailHookHandler(v, svc).SendAuthEmail(rr, signedHookRequest(t, v, hookPayload))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if code, msg := hookErrorOf(t, rr); code != http.StatusInternalServerError || msg != "Failed to send email" {
		t.Fatalf("unexpected hook error code=%v msg=%q", code, msg)
	}
}

func TestAuthEmailHookRejectsNonPost(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := servicegomock.NewMockNotificationServiceInterface(ctrl)

	rr := httptest.NewRecorder()
	NewAuthEmailHookHandler(newTestWebhookVerifier(t), svc).SendAuthEmail(rr, httptest.NewRequest(http.MethodGet, "/api/v1/hooks/send-auth-email", nil))

	if rr.Code != http.StatusMethodNotAllowed || rr.Body.String() != "Method not allowed" {
		t.Fatalf("unexpected response %d %q", rr.Code, rr.Body.String())
	}
}

func TestAuthEmailHookWithoutSecret(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := servicegomock.NewMockNotificationServiceInterface(ctrl)
	svc.EXPECT().SendAuthEmail(gomock.Any(), gomock.Any()).Times(0)

	rr := httptest.NewRecorder()
	NewAuthEmailHookHandler(nil, svc).SendAuthEmail(rr, httptest.NewRequest(http.MethodPost, "/api/v1/hooks/send-auth-email", bytes.NewBufferString(hookPayload)))

	if code, _ := hookErrorOf(t, rr); rr.Code != http.StatusUnauthorized || code != http.StatusInternalServerError {
		t.Fatalf("unexpected response %d code=%v", rr.Code, code)
	}
}
