package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// EmptyCircuitData is stored when a circuit is created without a payload.
var EmptyCircuitData = json.RawMessage(`{}`)

type Circuit struct {
	ID        string          `json:"id" db:"id"`
	ProjectID string          `json:"project_id" db:"project_id"`
	Name      string          `json:"name" db:"name"`
	Data      json.RawMessage `json:"data" db:"data"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt *time.Time      `json:"updated_at" db:"updated_at"`
}

// CircuitTemplate describes a starter circuit.
type CircuitTemplate struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Data        json.RawMessage `json:"data,omitempty"`
}

// HasCircuitData reports whether raw carries a payload other than JSON null.
func HasCircuitData(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}
