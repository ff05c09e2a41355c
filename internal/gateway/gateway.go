// Package gateway defines the adapter contract that gateway-specific
// integrations implement, and the closed registry through which the
// retry and response services dispatch to them.
package gateway

import (
	"context"
	"encoding/json"

	"paylog/internal/errors"
)

// OutcomeStatus classifies a gateway response.
type OutcomeStatus string

const (
	// OutcomeCompleted means the gateway confirmed the payment.
	OutcomeCompleted OutcomeStatus = "completed"
	// OutcomeError means the gateway rejected or failed the payment.
	OutcomeError OutcomeStatus = "error"
	// OutcomeRunning means the gateway has not settled yet; a webhook
	// or an operator retry resolves the record later.
	OutcomeRunning OutcomeStatus = "running"
)

// Outcome is the adapter's classification of one gateway exchange.
type Outcome struct {
	Status   OutcomeStatus
	Response json.RawMessage
	Message  string
}

// Adapter is gateway-specific logic that verifies and classifies
// payloads. Implementations are read-only configuration: they never
// touch stored records, the services do that.
type Adapter interface {
	// Name is the handler reference stored on integration logs.
	Name() string
	// VerifySignature checks the integrity hash the gateway sent along
	// with the payload. It must be called before Process.
	VerifySignature(data []byte, hash string) error
	// Process classifies a verified payload. A returned error is an
	// infrastructure failure; a declined payment is Outcome{Status:
	// OutcomeError}, not an error.
	Process(ctx context.Context, data []byte) (Outcome, error)
}

// Registry is the injected table of known adapters. The set is closed
// at startup; adding a gateway means registering another Adapter, not
// a string-keyed dynamic lookup.
type Registry struct {
	adapters map[string]Adapter
}

// NewRegistry builds a registry from the given adapters.
func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[string]Adapter, len(adapters))}
	for _, a := range adapters {
		r.adapters[a.Name()] = a
	}
	return r
}

// Resolve returns the adapter for handlerRef.
func (r *Registry) Resolve(handlerRef string) (Adapter, error) {
	a, ok := r.adapters[handlerRef]
	if !ok {
		return nil, errors.ErrUnknownHandler
	}
	return a, nil
}

// Button is a configured payment option shown during checkout. It
// binds a user-facing label to the adapter that will run the payment.
type Button struct {
	Name       string
	Label      string
	HandlerRef string
	Enabled    bool
}

// Buttons is the injected payment button configuration, keyed by name.
type Buttons map[string]Button

// Resolve returns the enabled button with the given name.
func (b Buttons) Resolve(name string) (Button, error) {
	btn, ok := b[name]
	if !ok || !btn.Enabled {
		return Button{}, errors.ErrButtonNotFound
	}
	return btn, nil
}
