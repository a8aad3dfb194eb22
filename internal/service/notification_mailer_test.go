package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/hashebooks/hashebooks-backend/internal/service"
	servicegomock "github.com/hashebooks/hashebooks-backend/internal/service/gomock"
)

var authSenders = service.EmailSenders{Auth: "HashEBooks Support <onboarding@resend.dev>"}

func TestSendAuthEmailDispatchesUnderTimeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	mailer := servicegomock.NewMockMailer(ctrl)
	mailer.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, msg service.EmailMessage) (*service.EmailReceipt, error) {
			deadline, ok := ctx.Deadline()
			if !ok || time.Until(deadline) > 2*time.Second {
				t.Fatalf("expected send under the upstream timeout, deadline=%v ok=%v", deadline, ok)
			}
			if msg.From != authSenders.Auth || len(msg.To) != 1 || msg.To[0] != "reader@example.com" {
				t.Fatalf("unexpected envelope %+v", msg)
			}
			if msg.Subject == "" || msg.HTML == "" {
				t.Fatalf("expected rendered subject and body, got %+v", msg)
			}
			return &service.EmailReceipt{ID: "email-1"}, nil
		})

	svc := service.NewNotificationService(mailer, nil, nil, authSenders, 2*time.Second)
	receipt, err := svc.SendAuthEmail(context.Background(), service.AuthEmailInput{
		Email:      " reader@example.com ",
		Token:      "123456",
		ActionType: "signup",
	})
	if err != nil {
		t.Fatalf("send auth email: %v", err)
	}
	if receipt.ID != "email-1" {
		t.Fatalf("unexpected receipt %+v", receipt)
	}
}

func TestSendAuthEmailWrapsProviderFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	mailer := servicegomock.NewMockMailer(ctrl)
	mailer.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil, errors.New("[ERROR]: Invalid 'to' field"))

	svc := service.NewNotificationService(mailer, nil, nil, authSenders, time.Second)
	_, err := svc.SendAuthEmail(context.Background(), service.AuthEmailInput{Email: "reader@example.com", ActionType: "recovery"})
	if !errors.Is(err, service.ErrEmailDelivery) {
		t.Fatalf("expected ErrEmailDelivery, got %v", err)
	}
}

func TestSendAuthEmailSkipsMailerWithoutRecipient(t *testing.T) {
	ctrl := gomock.NewController(t)
	mailer := servicegomock.NewMockMailer(ctrl)
	mailer.EXPECT().Send(gomock.Any(), gomock.Any()).Times(0)

	svc := service.NewNotificationService(mailer, nil, nil, authSenders, time.Second)
	if _, err := svc.SendAuthEmail(context.Background(), service.AuthEmailInput{Email: "  "}); !errors.Is(err, service.ErrUnsupportedEmailAddress) {
		t.Fatalf("expected ErrUnsupportedEmailAddress, got %v", err)
	}
}
