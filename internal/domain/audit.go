package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuditRecord is one row in the audit trail, written after an order attempt.
type AuditRecord struct {
	Timestamp time.Time       `json:"ts"`
	Ticker    string          `json:"ticker"`
	Action    Action          `json:"action"`
	Quantity  int64           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Notes     string          `json:"notes"`
}

// AuditRecordEntry couples a stored audit record with its journal index.
type AuditRecordEntry struct {
	Index  uint64
	Record AuditRecord
}
