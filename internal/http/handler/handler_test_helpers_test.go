package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hashebooks/hashebooks-backend/internal/http/middleware"
	"github.com/hashebooks/hashebooks-backend/internal/security"
)

func reqWithClaims(r *http.Request, sub, email string) *http.Request {
	claims := &security.Claims{Email: email}
	claims.Subject = sub
	ctx := context.WithValue(r.Context(), middleware.ClaimsContextKey, claims)
	return r.WithContext(ctx)
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
	return out
}

func errorOf(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	msg, _ := decodeBody(t, rr)["error"].(string)
	return msg
}
