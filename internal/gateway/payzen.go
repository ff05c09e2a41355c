package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"paylog/internal/errors"
)

// PayzenAdapter integrates the Payzen hosted checkout. Payzen signs
// the client answer with HMAC-SHA256 over the raw payload using the
// shop's key and reports the order state in orderStatus.
type PayzenAdapter struct {
	hmacKey []byte
}

// NewPayzenAdapter creates a Payzen adapter with the shop HMAC key.
func NewPayzenAdapter(hmacKey string) *PayzenAdapter {
	return &PayzenAdapter{hmacKey: []byte(hmacKey)}
}

// Name implements Adapter.
func (a *PayzenAdapter) Name() string { return "payzen" }

// VerifySignature implements Adapter.
func (a *PayzenAdapter) VerifySignature(data []byte, hash string) error {
	mac := hmac.New(sha256.New, a.hmacKey)
	mac.Write(data)
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(hash)) {
		return errors.ErrIntegrityCheckFailed
	}
	return nil
}

type payzenAnswer struct {
	OrderStatus  string `json:"orderStatus"`
	OrderDetails struct {
		OrderID string `json:"orderId"`
	} `json:"orderDetails"`
}

// Process implements Adapter.
func (a *PayzenAdapter) Process(_ context.Context, data []byte) (Outcome, error) {
	var answer payzenAnswer
	if err := json.Unmarshal(data, &answer); err != nil {
		return Outcome{}, fmt.Errorf("decode payzen answer: %w", err)
	}

	switch answer.OrderStatus {
	case "PAID":
		return Outcome{
			Status:   OutcomeCompleted,
			Response: json.RawMessage(data),
			Message:  "payment confirmed",
		}, nil
	case "RUNNING":
		return Outcome{
			Status:   OutcomeRunning,
			Response: json.RawMessage(data),
			Message:  "awaiting confirmation by the bank",
		}, nil
	default:
		return Outcome{
			Status:   OutcomeError,
			Response: json.RawMessage(data),
			Message:  fmt.Sprintf("payment not confirmed: %s", answer.OrderStatus),
		}, nil
	}
}
