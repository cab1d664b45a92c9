// Package engine implements the categorization orchestrator: it drives the
// schema normalizer and the labeling adapter over a batch of raw records and
// accumulates normalized transaction records in an import session.
package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rgriggs0072/fliptrack-ai/internal/dateutils"
	"github.com/rgriggs0072/fliptrack-ai/internal/flterror"
	"github.com/rgriggs0072/fliptrack-ai/internal/labeling"
	"github.com/rgriggs0072/fliptrack-ai/internal/logging"
	"github.com/rgriggs0072/fliptrack-ai/internal/models"
	"github.com/rgriggs0072/fliptrack-ai/internal/normalizer"
	"github.com/rgriggs0072/fliptrack-ai/internal/session"
	"github.com/rgriggs0072/fliptrack-ai/internal/store"
	"github.com/rgriggs0072/fliptrack-ai/internal/taxonomy"
)

// DefaultAcceptanceThreshold flags accepted records below this confidence for
// downstream review. Records are never rejected on low confidence alone.
const DefaultAcceptanceThreshold = 0.35

// Options configure an Engine.
type Options struct {
	// AcceptanceThreshold is the confidence under which accepted records are
	// flagged low-confidence. Zero uses the default.
	AcceptanceThreshold float64

	// Workers is the number of rows processed concurrently. Values <= 1 mean
	// sequential processing, which is the default for strict determinism.
	Workers int

	// AutoLearn records confidently categorized vendors on the session.
	// AdoptLearnedVendors applies them to the vendor store afterwards.
	AutoLearn bool
}

// Engine processes batches of raw records into import sessions.
type Engine struct {
	normalizer *normalizer.Normalizer
	adapter    labeling.Adapter
	vendors    *store.VendorStore
	logger     logging.Logger
	opts       Options
}

// New wires an Engine. The vendor store may be nil to disable direct vendor
// mappings.
func New(n *normalizer.Normalizer, adapter labeling.Adapter, vendors *store.VendorStore, logger logging.Logger, opts Options) *Engine {
	if logger == nil {
		logger = logging.GetLogger()
	}
	if opts.AcceptanceThreshold <= 0 {
		opts.AcceptanceThreshold = DefaultAcceptanceThreshold
	}
	return &Engine{
		normalizer: n,
		adapter:    adapter,
		vendors:    vendors,
		logger:     logger,
		opts:       opts,
	}
}

// Process runs the batch through normalization and classification, in row
// order, and returns the finalized session. Structural failures become
// rejected outcomes and labeling failures degrade to conservative defaults;
// the batch itself always completes unless the context is cancelled, in
// which case processing stops at the next row boundary and the session
// reports a truncated summary.
func (e *Engine) Process(ctx context.Context, records []models.RawRecord, kind models.SourceKind) *session.Session {
	sess := session.New(kind, e.opts.AcceptanceThreshold)

	if e.opts.Workers > 1 && len(records) > 1 {
		e.processConcurrent(ctx, sess, records, kind)
	} else {
		e.processSequential(ctx, sess, records, kind)
	}

	sess.Finalize()

	summary := sess.Summary()
	e.logger.Info("Import batch processed",
		logging.Field{Key: "session", Value: sess.ID()},
		logging.Field{Key: "source", Value: string(kind)},
		logging.Field{Key: "accepted", Value: summary.Accepted},
		logging.Field{Key: "rejected", Value: summary.Rejected},
		logging.Field{Key: "low_confidence", Value: summary.LowConfidence},
		logging.Field{Key: "cancelled", Value: summary.Cancelled},
	)
	return sess
}

func (e *Engine) processSequential(ctx context.Context, sess *session.Session, records []models.RawRecord, kind models.SourceKind) {
	for idx, rec := range records {
		// Cancellation happens only between row boundaries; a started row
		// always produces its outcome.
		select {
		case <-ctx.Done():
			sess.MarkCancelled()
			return
		default:
		}
		rec.Kind = kind
		outcome, lesson := e.processRow(ctx, sess.ID(), idx, rec)
		if lesson != nil {
			sess.RecordLearnedVendor(lesson.vendor, lesson.category)
		}
		sess.Append(outcome)
	}
}

// vendorLesson is a vendor mapping learned from one confidently categorized
// row. Lessons are collected on the session and adopted into the vendor store
// only after the batch completes, so lookups within a batch never observe the
// batch's own learning.
type vendorLesson struct {
	vendor   string
	category string
}

// processRow normalizes and classifies one record. It never returns an
// error: every failure mode maps to a rejected outcome or a degraded accept.
// It reads shared state but never writes it, so rows stay independent under
// concurrent processing and reprocessing an identical batch yields identical
// outcomes.
func (e *Engine) processRow(ctx context.Context, sessionID string, idx int, rec models.RawRecord) (models.Outcome, *vendorLesson) {
	bindings := e.normalizer.Normalize(rec)

	desc, ok := bindings.Active(models.FieldDescription)
	if !ok || strings.TrimSpace(desc.Value) == "" {
		return models.Rejected((&flterror.NormalizationError{
			RowIndex: idx,
			Field:    string(models.FieldDescription),
			Reason:   "missing required field",
		}).Error()), nil
	}

	// Spreadsheet rows must also carry an amount; no inference call is made
	// for malformed rows, inference being expensive and unreliable on them.
	var amount decimal.Decimal
	amountConfidence := 1.0
	if rec.Kind == models.SourceSpreadsheet {
		amountBinding, bound := bindings.Active(models.FieldAmount)
		if !bound {
			return models.Rejected((&flterror.NormalizationError{
				RowIndex: idx,
				Field:    string(models.FieldAmount),
				Reason:   "missing required field",
			}).Error()), nil
		}
		parsed, err := models.ParseAmount(amountBinding.Value)
		if err != nil {
			return models.Rejected((&flterror.NormalizationError{
				RowIndex: idx,
				Field:    string(models.FieldAmount),
				Reason:   fmt.Sprintf("unparseable value %q", amountBinding.Value),
			}).Error()), nil
		}
		amount = parsed
		amountConfidence = amountBinding.Confidence
	}

	label := e.classify(ctx, desc.Value, bindings)

	// An explicit CI/M column always wins over the adapter's funding guess.
	if hint, bound := bindings.Active(models.FieldFundingHint); bound {
		if funding := models.ParseFunding(hint.Value); funding != models.FundingUnknown {
			label.Funding = funding
			label.FundingConfidence = hint.Confidence
		}
	}

	vendor := label.Vendor
	if hint, bound := bindings.Active(models.FieldVendorHint); bound && strings.TrimSpace(hint.Value) != "" {
		vendor = strings.TrimSpace(hint.Value)
	}

	// A learned vendor mapping overrides the guessed category outright;
	// repeat vendors never need recategorizing.
	if e.vendors != nil && vendor != "" {
		if category, found := e.vendors.Lookup(vendor); found {
			label.Category = category
			label.CategoryConfidence = 1.0
			label.Coerced = false
		}
	}

	if rec.Kind != models.SourceSpreadsheet && label.Amount != "" {
		if parsed, err := models.ParseAmount(label.Amount); err == nil {
			amount = parsed
		}
	}

	confidence := minConfidence(
		desc.Confidence,
		amountConfidence,
		label.CategoryConfidence,
		label.FundingConfidence,
	)

	record := &models.TransactionRecord{
		Date:        e.resolveDate(bindings, label),
		Amount:      amount,
		Description: desc.Value,
		Vendor:      vendor,
		Category:    label.Category,
		Funding:     label.Funding,
		Confidence:  confidence,
		Provenance: models.Provenance{
			SessionID: sessionID,
			RowIndex:  idx,
			Source:    rec.Kind,
		},
	}

	var lesson *vendorLesson
	if confidence < e.opts.AcceptanceThreshold {
		e.logger.Debug("Accepted record flagged low-confidence",
			logging.Field{Key: "row", Value: idx},
			logging.Field{Key: "confidence", Value: confidence},
		)
	} else if e.opts.AutoLearn && e.vendors != nil &&
		vendor != "" && !label.Coerced && label.Category != taxonomy.Uncategorized {
		lesson = &vendorLesson{vendor: vendor, category: label.Category}
	}

	return models.Accepted(record), lesson
}

// AdoptLearnedVendors copies a completed session's learned vendor mappings
// into the vendor store. Adoption is a separate step from Process so that
// reprocessing an identical batch produces identical outcomes; callers adopt
// once the batch's results are committed.
func (e *Engine) AdoptLearnedVendors(sess *session.Session) {
	if e.vendors == nil || sess == nil {
		return
	}
	for vendor, category := range sess.LearnedVendors() {
		e.vendors.Update(vendor, category)
	}
}

// classify calls the labeling adapter and sanitizes its answer, degrading to
// conservative defaults when the capability is unreachable. The record is
// never rejected solely because the adapter failed.
func (e *Engine) classify(ctx context.Context, description string, bindings models.BindingSet) labeling.Label {
	res, err := e.adapter.Classify(ctx, description, bindings)
	if err != nil {
		e.logger.WithError(err).WithFields(
			logging.Field{Key: "adapter", Value: e.adapter.Name()},
		).Warn("Labeling failed, substituting conservative defaults")
		label := labeling.ConservativeDefault()
		label.Vendor = labeling.HeuristicVendor(description)
		return label
	}
	return labeling.Sanitize(res, description, e.logger)
}

// resolveDate takes the date from the bound column if one exists, otherwise
// from the label's extracted date. Unparseable dates are left zero rather
// than rejecting the record.
func (e *Engine) resolveDate(bindings models.BindingSet, label labeling.Label) (date time.Time) {
	if binding, bound := bindings.Active(models.FieldDate); bound {
		if parsed, err := dateutils.ParseDate(binding.Value); err == nil {
			return parsed
		}
		e.logger.Debug("Unparseable date cell", logging.Field{Key: "value", Value: binding.Value})
	}
	if label.Date != "" {
		if parsed, err := dateutils.ParseDate(label.Date); err == nil {
			return parsed
		}
	}
	return
}

func minConfidence(values ...float64) float64 {
	min := 1.0
	for _, v := range values {
		if v < min {
			min = v
		}
	}
	if min < 0 {
		return 0
	}
	return min
}
