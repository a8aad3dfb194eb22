package service

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestResendMailerSend(t *testing.T) {
	var got EmailMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/emails" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer re_test" {
			t.Errorf("unexpected authorization header %q", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"49a3999c-0ce1-4ea6-ab68-afcd6dc2e794"}`))
	}))
	defer srv.Close()

	mailer := NewResendMailer(srv.URL+"/", "re_test", time.Second)
	if mailer.client.BaseURL.String() != srv.URL+"/" {
		t.Fatalf("unexpected base url %s", mailer.client.BaseURL)
	}
	receipt, err := mailer.Send(context.Background(), EmailMessage{
		From:    "HashEBooks <onboarding@resend.dev>",
		To:      []string{"reader@example.com"},
		Subject: "Welcome to HashEBooks!",
		HTML:    "<p>hi</p>",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if receipt.ID != "49a3999c-0ce1-4ea6-ab68-afcd6dc2e794" {
		t.Fatalf("unexpected receipt %+v", receipt)
	}
	if got.Subject != "Welcome to HashEBooks!" || len(got.To) != 1 || got.To[0] != "reader@example.com" {
		t.Fatalf("unexpected payload %+v", got)
	}
}

func TestResendMailerProviderErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if strings.Contains(string(body), "with-message") {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"statusCode":422,"name":"validation_error","message":"Invalid 'to' field"}`))
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	mailer := NewResendMailer(srv.URL, "re_test", time.Second)
	_, err := mailer.Send(context.Background(), EmailMessage{To: []string{"x"}, Subject: "with-message"})
	if err == nil || !strings.Contains(err.Error(), "Invalid 'to' field") {
		t.Fatalf("expected provider message, got %v", err)
	}
	_, err = mailer.Send(context.Background(), EmailMessage{To: []string{"x"}, Subject: "plain"})
	if err == nil || !strings.Contains(err.Error(), "502 Bad Gateway") {
		t.Fatalf("expected status-derived provider error, got %v", err)
	}
}

func TestResendMailerHonoursContextDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	mailer := NewResendMailer(srv.URL, "re_test", time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	if _, err := mailer.Send(ctx, EmailMessage{To: []string{"x"}}); err == nil {
		t.Fatal("expected deadline error")
	}
}

func TestNewResendMailerKeepsDefaultEndpointWithoutBaseURL(t *testing.T) {
	mailer := NewResendMailer("", "re_test", 0)
	if mailer.client.BaseURL.Host != "api.resend.com" {
		t.Fatalf("expected sdk default endpoint, got %s", mailer.client.BaseURL)
	}
	if mailer.client.ApiKey != "re_test" {
		t.Fatalf("unexpected api key %q", mailer.client.ApiKey)
	}
}

func TestLogMailerReturnsReceipt(t *testing.T) {
	var buf strings.Builder
	mailer := NewLogMailer(slog.New(slog.NewJSONHandler(&buf, nil)))
	receipt, err := mailer.Send(context.Background(), EmailMessage{To: []string{"a@example.com"}, Subject: "hello"})
	if err != nil || receipt.ID == "" {
		t.Fatalf("expected receipt, got %+v err=%v", receipt, err)
	}
	if !strings.Contains(buf.String(), `"subject":"hello"`) {
		t.Fatalf("expected captured email in log, got %s", buf.String())
	}
}
