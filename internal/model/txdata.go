package model

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// TxData is the transaction snapshot captured when a payment is
// initiated. It is serialized verbatim into the integration log's
// request payload so that a retry replays exactly what was attempted,
// not whatever the business record says today.
type TxData struct {
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	ReferenceDoctype string          `json:"reference_doctype"`
	ReferenceID      string          `json:"reference_id"`
	PayerContact     map[string]any  `json:"payer_contact,omitempty"`
}

// Marshal serializes the snapshot for storage.
func (t TxData) Marshal() (string, error) {
	b, err := json.Marshal(t)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
