package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Provenance identifies which raw record a normalized transaction came from.
// RowIndex is positional within the originating import batch.
type Provenance struct {
	SessionID string
	RowIndex  int
	Source    SourceKind
}

// TransactionRecord is the normalized output unit of the engine. Immutable
// once produced; owned by its ImportSession until committed to storage.
// Confidence is the minimum of the per-field confidences that contributed to
// classification.
type TransactionRecord struct {
	Date        time.Time
	Amount      decimal.Decimal
	Description string
	Vendor      string
	Category    string
	Funding     FundingClass
	Confidence  float64
	Provenance  Provenance
}

// OutcomeStatus tells whether a raw record was accepted or rejected.
type OutcomeStatus string

const (
	OutcomeAccepted OutcomeStatus = "accepted"
	OutcomeRejected OutcomeStatus = "rejected"
)

// Outcome is the result of processing one raw record. Record is set only for
// accepted outcomes; Reason only for rejected ones.
type Outcome struct {
	Status OutcomeStatus
	Record *TransactionRecord
	Reason string
}

// Accepted builds an accepted outcome for the given record.
func Accepted(record *TransactionRecord) Outcome {
	return Outcome{Status: OutcomeAccepted, Record: record}
}

// Rejected builds a rejected outcome with a reason.
func Rejected(reason string) Outcome {
	return Outcome{Status: OutcomeRejected, Reason: reason}
}
