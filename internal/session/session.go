// Package session implements the import session: the stateful batch unit
// tracking per-row outcomes, the accepted/rejected split, and aggregate
// counters for one upload, voice, or receipt event.
package session

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/rgriggs0072/fliptrack-ai/internal/models"
)

// Summary is the aggregate view of a processed session. Persist failures are
// counted separately from classification rejections.
type Summary struct {
	SessionID       string  `json:"session_id"`
	Source          string  `json:"source"`
	Total           int     `json:"total"`
	Accepted        int     `json:"accepted"`
	Rejected        int     `json:"rejected"`
	LowConfidence   int     `json:"low_confidence"`
	PersistFailures int     `json:"persist_failures"`
	MeanConfidence  float64 `json:"mean_confidence"`
	Cancelled       bool    `json:"cancelled"`
}

// Session accumulates (raw record, outcome) pairs in row order. It is mutated
// only by the orchestrator appending outcomes; once finalized it is
// read-only, and any further append is a programming error that panics.
type Session struct {
	id              string
	source          models.SourceKind
	lowConfidence   float64
	outcomes        []models.Outcome
	learned         map[string]string
	cancelled       bool
	finalized       bool
	persistFailures int
	mu              sync.Mutex
}

// New creates an empty session for a batch from the given source.
// lowConfidence is the threshold under which accepted records are counted as
// needing review.
func New(source models.SourceKind, lowConfidence float64) *Session {
	return &Session{
		id:            uuid.NewString(),
		source:        source,
		lowConfidence: lowConfidence,
	}
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// Source returns the source kind of the batch.
func (s *Session) Source() models.SourceKind {
	return s.source
}

// Append records the outcome for the next row. It panics if the session has
// been finalized: mutating a finalized session indicates a broken invariant,
// not bad input.
func (s *Session) Append(outcome models.Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalized {
		panic(fmt.Sprintf("session %s: append after finalize", s.id))
	}
	s.outcomes = append(s.outcomes, outcome)
}

// RecordLearnedVendor notes a confidently categorized vendor from this batch.
// The mappings are held on the session, not written anywhere, so processing
// the same batch twice stays reproducible; a caller adopts them into the
// vendor store after the batch completes.
func (s *Session) RecordLearnedVendor(vendor, category string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalized {
		panic(fmt.Sprintf("session %s: learn after finalize", s.id))
	}
	if s.learned == nil {
		s.learned = make(map[string]string)
	}
	s.learned[vendor] = category
}

// LearnedVendors returns a copy of the vendor mappings learned in this batch.
func (s *Session) LearnedVendors() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.learned))
	for vendor, category := range s.learned {
		out[vendor] = category
	}
	return out
}

// MarkCancelled flags the session as cancelled between row boundaries. The
// outcomes computed so far are retained and the summary reports truncation.
func (s *Session) MarkCancelled() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalized {
		panic(fmt.Sprintf("session %s: cancel after finalize", s.id))
	}
	s.cancelled = true
}

// Finalize makes the session read-only. Called once by the orchestrator after
// the last row is processed.
func (s *Session) Finalize() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finalized = true
}

// Finalized reports whether the session is read-only.
func (s *Session) Finalized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finalized
}

// RecordPersistFailure counts a storage failure for one record. Persistence
// happens after finalization and failures are independent per record, so
// this counter lives outside the outcome sequence.
func (s *Session) RecordPersistFailure() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persistFailures++
}

// Len returns the number of rows processed so far.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.outcomes)
}

// Outcomes returns a copy of the ordered outcome sequence.
func (s *Session) Outcomes() []models.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Outcome, len(s.outcomes))
	copy(out, s.outcomes)
	return out
}

// AcceptedRecords returns the accepted transaction records in row order.
func (s *Session) AcceptedRecords() []models.TransactionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	var records []models.TransactionRecord
	for _, o := range s.outcomes {
		if o.Status == models.OutcomeAccepted {
			records = append(records, *o.Record)
		}
	}
	return records
}

// Summary derives the aggregate counters from the outcome sequence. The
// accepted and rejected counts always sum to the number of processed rows; a
// mismatch is impossible by construction, and Summary re-checks it as a
// cheap invariant assertion.
func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := Summary{
		SessionID:       s.id,
		Source:          string(s.source),
		Total:           len(s.outcomes),
		PersistFailures: s.persistFailures,
		Cancelled:       s.cancelled,
	}

	confidenceTotal := 0.0
	for _, o := range s.outcomes {
		switch o.Status {
		case models.OutcomeAccepted:
			sum.Accepted++
			confidenceTotal += o.Record.Confidence
			if o.Record.Confidence < s.lowConfidence {
				sum.LowConfidence++
			}
		case models.OutcomeRejected:
			sum.Rejected++
		}
	}

	if sum.Accepted+sum.Rejected != sum.Total {
		panic(fmt.Sprintf("session %s: outcome counters do not reconcile (%d+%d != %d)",
			s.id, sum.Accepted, sum.Rejected, sum.Total))
	}

	if sum.Accepted > 0 {
		sum.MeanConfidence = confidenceTotal / float64(sum.Accepted)
	}
	return sum
}
