package security

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	standardwebhooks "github.com/standard-webhooks/standard-webhooks/libraries/go"
)

var (
	ErrWebhookMissingHeaders = standardwebhooks.ErrRequiredHeaders
	ErrWebhookTimestamp      = errors.New("webhook timestamp outside tolerance")
	ErrWebhookSignature      = standardwebhooks.ErrNoMatchingSignature
)

// DefaultWebhookTolerance is the replay window enforced by the
// standard-webhooks verifier.
const DefaultWebhookTolerance = 5 * time.Minute

// WebhookVerifier checks Standard Webhooks signatures on auth hook
// deliveries. Secrets may carry the "v1," and "whsec_" prefixes.
type WebhookVerifier struct {
	hook *standardwebhooks.Webhook
}

func NewWebhookVerifier(secret string) (*WebhookVerifier, error) {
	s := strings.TrimPrefix(strings.TrimSpace(secret), "v1,")
	if strings.TrimPrefix(s, "whsec_") == "" {
		return nil, errors.New("webhook secret is empty")
	}
	hook, err := standardwebhooks.NewWebhook(s)
	if err != nil {
		return nil, fmt.Errorf("decode webhook secret: %w", err)
	}
	return &WebhookVerifier{hook: hook}, nil
}

// Sign returns the "v1,<base64>" signature header value for a delivery.
func (v *WebhookVerifier) Sign(msgID string, ts time.Time, payload []byte) (string, error) {
	return v.hook.Sign(msgID, ts, payload)
}

func (v *WebhookVerifier) Verify(payload []byte, headers http.Header) error {
	err := v.hook.Verify(payload, headers)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, standardwebhooks.ErrMessageTooOld),
		errors.Is(err, standardwebhooks.ErrMessageTooNew),
		errors.Is(err, standardwebhooks.ErrInvalidHeaders):
		return fmt.Errorf("%w: %w", ErrWebhookTimestamp, err)
	default:
		return err
	}
}
