package engine

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgriggs0072/fliptrack-ai/internal/labeling"
	"github.com/rgriggs0072/fliptrack-ai/internal/models"
	"github.com/rgriggs0072/fliptrack-ai/internal/normalizer"
	"github.com/rgriggs0072/fliptrack-ai/internal/session"
	"github.com/rgriggs0072/fliptrack-ai/internal/store"
	"github.com/rgriggs0072/fliptrack-ai/internal/taxonomy"
)

// gatedAdapter blocks every Classify call until its gate closes, signalling
// each arrival on started. Used to hold workers mid-row.
type gatedAdapter struct {
	started chan struct{}
	gate    chan struct{}
	result  labeling.Result
}

func (a *gatedAdapter) Name() string { return "gated" }

func (a *gatedAdapter) Classify(ctx context.Context, description string, bindings models.BindingSet) (labeling.Result, error) {
	a.started <- struct{}{}
	<-a.gate
	return a.result, nil
}

// stubAdapter answers every call with a fixed result (or error) and counts
// invocations.
type stubAdapter struct {
	mu     sync.Mutex
	result labeling.Result
	err    error
	calls  int
}

func (a *stubAdapter) Name() string { return "stub" }

func (a *stubAdapter) Classify(ctx context.Context, description string, bindings models.BindingSet) (labeling.Result, error) {
	a.mu.Lock()
	a.calls++
	a.mu.Unlock()
	if a.err != nil {
		return labeling.Result{}, a.err
	}
	return a.result, nil
}

func (a *stubAdapter) callCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

func newTestEngine(t *testing.T, adapter labeling.Adapter, opts Options) *Engine {
	t.Helper()
	vendors, err := store.NewVendorStore(filepath.Join(t.TempDir(), "vendors.yaml"), nil)
	require.NoError(t, err)
	return New(normalizer.New(nil, nil), adapter, vendors, nil, opts)
}

func spreadsheet(headers []string, rows ...[]string) []models.RawRecord {
	return models.NewTable(headers, rows, models.SourceSpreadsheet)
}

func TestProcessEndToEnd(t *testing.T) {
	adapter := &stubAdapter{result: labeling.Result{
		Category:           "Plumbing",
		CategoryConfidence: 0.9,
		Vendor:             "Ray Tallant",
		Funding:            "CI",
		FundingConfidence:  0.8,
	}}
	eng := newTestEngine(t, adapter, Options{})

	records := spreadsheet(
		[]string{"Date", "Desc", "Amt"},
		[]string{"2024-05-01", "Ray Tallant (plumbing)", "$450.00"},
	)
	sess := eng.Process(context.Background(), records, models.SourceSpreadsheet)

	sum := sess.Summary()
	assert.Equal(t, 1, sum.Accepted)
	assert.Equal(t, 0, sum.Rejected)

	accepted := sess.AcceptedRecords()
	require.Len(t, accepted, 1)
	rec := accepted[0]
	assert.Equal(t, taxonomy.Plumbing, rec.Category)
	assert.Equal(t, "Ray Tallant", rec.Vendor)
	assert.Equal(t, models.FundingCash, rec.Funding)
	assert.True(t, decimal.NewFromInt(450).Equal(rec.Amount))
	assert.Equal(t, "2024-05-01", rec.Date.Format("2006-01-02"))

	// All bindings are exact, so confidence is the minimum of the category
	// and funding confidences.
	assert.InDelta(t, 0.8, rec.Confidence, 1e-9)
	assert.Equal(t, sess.ID(), rec.Provenance.SessionID)
	assert.Equal(t, 0, rec.Provenance.RowIndex)
}

func TestProcessRejectsWithoutAdapterCall(t *testing.T) {
	adapter := &stubAdapter{result: labeling.Result{Category: "Other", CategoryConfidence: 0.9}}
	eng := newTestEngine(t, adapter, Options{})

	tests := []struct {
		name    string
		headers []string
		row     []string
	}{
		{"no recognizable columns", []string{"Foo", "Bar"}, []string{"1", "2"}},
		{"missing amount column", []string{"Date", "Desc"}, []string{"2024-05-01", "paint"}},
		{"empty description cell", []string{"Desc", "Amt"}, []string{"", "100"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			before := adapter.callCount()
			sess := eng.Process(context.Background(), spreadsheet(tc.headers, tc.row), models.SourceSpreadsheet)

			sum := sess.Summary()
			assert.Equal(t, 1, sum.Rejected)
			assert.Equal(t, 0, sum.Accepted)
			assert.Equal(t, before, adapter.callCount(), "adapter must not be called for malformed rows")
		})
	}
}

func TestProcessRejectsUnparseableAmount(t *testing.T) {
	adapter := &stubAdapter{result: labeling.Result{Category: "Other", CategoryConfidence: 0.9}}
	eng := newTestEngine(t, adapter, Options{})

	sess := eng.Process(context.Background(), spreadsheet(
		[]string{"Desc", "Amt"},
		[]string{"paint", "a lot"},
	), models.SourceSpreadsheet)

	sum := sess.Summary()
	assert.Equal(t, 1, sum.Rejected)
	outcomes := sess.Outcomes()
	require.Len(t, outcomes, 1)
	assert.Contains(t, outcomes[0].Reason, "unparseable")
}

func TestProcessLowConfidenceStillAccepted(t *testing.T) {
	adapter := &stubAdapter{result: labeling.Result{
		Category:           "Other",
		CategoryConfidence: 0.1,
		Funding:            "CI",
		FundingConfidence:  0.9,
	}}
	eng := newTestEngine(t, adapter, Options{})

	sess := eng.Process(context.Background(), spreadsheet(
		[]string{"Desc", "Amt"},
		[]string{"mystery expense", "10"},
	), models.SourceSpreadsheet)

	sum := sess.Summary()
	assert.Equal(t, 1, sum.Accepted)
	assert.Equal(t, 0, sum.Rejected)
	assert.Equal(t, 1, sum.LowConfidence)
	assert.InDelta(t, 0.1, sess.AcceptedRecords()[0].Confidence, 1e-9)
}

func TestProcessDegradesOnAdapterOutage(t *testing.T) {
	inner := &stubAdapter{err: errors.New("service down")}
	adapter := labeling.NewRetryingAdapter(inner, 2, time.Millisecond, nil)
	eng := newTestEngine(t, adapter, Options{})

	sess := eng.Process(context.Background(), spreadsheet(
		[]string{"Desc", "Amt"},
		[]string{"Ray Tallant (plumbing)", "450"},
	), models.SourceSpreadsheet)

	// Initial attempt plus two retries, then conservative defaults.
	assert.Equal(t, 3, inner.callCount())

	accepted := sess.AcceptedRecords()
	require.Len(t, accepted, 1)
	rec := accepted[0]
	assert.Equal(t, taxonomy.Uncategorized, rec.Category)
	assert.Equal(t, models.FundingUnknown, rec.Funding)
	assert.Equal(t, 0.0, rec.Confidence)
	assert.Equal(t, "Ray Tallant", rec.Vendor)
}

func TestProcessCoercedCategoryCapsConfidence(t *testing.T) {
	adapter := &stubAdapter{result: labeling.Result{
		Category:           "Bribes",
		CategoryConfidence: 0.99,
		Funding:            "CI",
		FundingConfidence:  0.9,
	}}
	eng := newTestEngine(t, adapter, Options{})

	sess := eng.Process(context.Background(), spreadsheet(
		[]string{"Desc", "Amt"},
		[]string{"envelope for the inspector", "500"},
	), models.SourceSpreadsheet)

	rec := sess.AcceptedRecords()[0]
	assert.Equal(t, taxonomy.Uncategorized, rec.Category)
	assert.LessOrEqual(t, rec.Confidence, taxonomy.CoercedConfidenceCap)
}

func TestProcessFundingColumnOverridesAdapter(t *testing.T) {
	adapter := &stubAdapter{result: labeling.Result{
		Category:           "Roofing",
		CategoryConfidence: 0.9,
		Funding:            "MI",
		FundingConfidence:  0.5,
	}}
	eng := newTestEngine(t, adapter, Options{})

	sess := eng.Process(context.Background(), spreadsheet(
		[]string{"Desc", "Amt", "CI/M"},
		[]string{"shingles", "1200", "CI"},
	), models.SourceSpreadsheet)

	rec := sess.AcceptedRecords()[0]
	assert.Equal(t, models.FundingCash, rec.Funding)
	// The explicit column's binding confidence replaces the adapter's guess.
	assert.InDelta(t, 0.9, rec.Confidence, 1e-9)
}

func TestProcessVendorMappingOverridesCategory(t *testing.T) {
	adapter := &stubAdapter{result: labeling.Result{
		Category:           "Other",
		CategoryConfidence: 0.4,
		Funding:            "CI",
		FundingConfidence:  0.9,
	}}
	eng := newTestEngine(t, adapter, Options{})
	eng.vendors.Update("Ray Tallant", taxonomy.Plumbing)

	sess := eng.Process(context.Background(), spreadsheet(
		[]string{"Desc", "Amt", "Vendor"},
		[]string{"monthly invoice", "450", "Ray Tallant"},
	), models.SourceSpreadsheet)

	rec := sess.AcceptedRecords()[0]
	assert.Equal(t, taxonomy.Plumbing, rec.Category)
	assert.Equal(t, "Ray Tallant", rec.Vendor)
	assert.InDelta(t, 0.9, rec.Confidence, 1e-9)
}

func TestProcessAutoLearnsVendors(t *testing.T) {
	adapter := &stubAdapter{result: labeling.Result{
		Category:           "Plumbing",
		CategoryConfidence: 0.9,
		Vendor:             "Ray Tallant",
		Funding:            "CI",
		FundingConfidence:  0.9,
	}}
	eng := newTestEngine(t, adapter, Options{AutoLearn: true})

	sess := eng.Process(context.Background(), spreadsheet(
		[]string{"Desc", "Amt"},
		[]string{"Ray Tallant (plumbing)", "450"},
	), models.SourceSpreadsheet)

	// Lessons stay on the session until adopted.
	assert.Equal(t, map[string]string{"Ray Tallant": taxonomy.Plumbing}, sess.LearnedVendors())
	_, found := eng.vendors.Lookup("ray tallant")
	assert.False(t, found)

	eng.AdoptLearnedVendors(sess)
	category, found := eng.vendors.Lookup("ray tallant")
	assert.True(t, found)
	assert.Equal(t, taxonomy.Plumbing, category)
}

func TestProcessAutoLearnKeepsRepeatRunsIdentical(t *testing.T) {
	adapter := &stubAdapter{result: labeling.Result{
		Category:           "Plumbing",
		CategoryConfidence: 0.7,
		Vendor:             "Ray Tallant",
		Funding:            "CI",
		FundingConfidence:  0.9,
	}}
	eng := newTestEngine(t, adapter, Options{AutoLearn: true})

	records := spreadsheet(
		[]string{"Desc", "Amt"},
		[]string{"Ray Tallant (plumbing)", "450"},
	)

	first := eng.Process(context.Background(), records, models.SourceSpreadsheet).AcceptedRecords()
	second := eng.Process(context.Background(), records, models.SourceSpreadsheet).AcceptedRecords()

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.InDelta(t, 0.7, first[0].Confidence, 1e-9)
	assert.Equal(t, first[0].Confidence, second[0].Confidence)
	assert.Equal(t, first[0].Category, second[0].Category)
}

func TestProcessFreeTextUsesExtractedAmount(t *testing.T) {
	adapter := &stubAdapter{result: labeling.Result{
		Category:           "Plumbing",
		CategoryConfidence: 0.9,
		Vendor:             "Ray",
		Funding:            "CI",
		FundingConfidence:  0.9,
		Amount:             "450",
		Date:               "2024-05-01",
	}}
	eng := newTestEngine(t, adapter, Options{})

	records := []models.RawRecord{
		models.NewFreeTextRecord("paid Ray 450 for plumbing, cash", models.SourceVoice),
	}
	sess := eng.Process(context.Background(), records, models.SourceVoice)

	accepted := sess.AcceptedRecords()
	require.Len(t, accepted, 1)
	rec := accepted[0]
	assert.True(t, decimal.NewFromInt(450).Equal(rec.Amount))
	assert.Equal(t, "2024-05-01", rec.Date.Format("2006-01-02"))
	assert.Equal(t, models.SourceVoice, rec.Provenance.Source)
}

func TestProcessCountsAlwaysReconcile(t *testing.T) {
	adapter := &stubAdapter{result: labeling.Result{Category: "Other", CategoryConfidence: 0.6}}
	eng := newTestEngine(t, adapter, Options{})

	records := spreadsheet(
		[]string{"Desc", "Amt"},
		[]string{"paint", "60"},
		[]string{"", "100"},
		[]string{"tile", "junk"},
		[]string{"sod", "80"},
	)
	sess := eng.Process(context.Background(), records, models.SourceSpreadsheet)

	sum := sess.Summary()
	assert.Equal(t, 4, sum.Total)
	assert.Equal(t, 2, sum.Accepted)
	assert.Equal(t, 2, sum.Rejected)
}

func TestProcessIsDeterministic(t *testing.T) {
	adapter := &stubAdapter{result: labeling.Result{
		Category:           "Materials",
		CategoryConfidence: 0.7,
		Funding:            "MI",
		FundingConfidence:  0.6,
	}}
	eng := newTestEngine(t, adapter, Options{})

	records := spreadsheet(
		[]string{"Cost", "Total Cost", "Desc"},
		[]string{"100", "999", "lumber"},
		[]string{"60", "999", "paint"},
	)

	first := eng.Process(context.Background(), records, models.SourceSpreadsheet).AcceptedRecords()
	for i := 0; i < 5; i++ {
		again := eng.Process(context.Background(), records, models.SourceSpreadsheet).AcceptedRecords()
		require.Len(t, again, len(first))
		for j := range first {
			assert.True(t, first[j].Amount.Equal(again[j].Amount))
			assert.Equal(t, first[j].Category, again[j].Category)
			assert.Equal(t, first[j].Confidence, again[j].Confidence)
		}
	}

	// Tie-broken amount column is the left-most one.
	assert.True(t, decimal.NewFromInt(100).Equal(first[0].Amount))
}

func TestProcessConcurrentMatchesSequential(t *testing.T) {
	adapter := &stubAdapter{result: labeling.Result{
		Category:           "Painting",
		CategoryConfidence: 0.8,
		Funding:            "CI",
		FundingConfidence:  0.7,
	}}

	rows := make([][]string, 20)
	for i := range rows {
		rows[i] = []string{"paint job", "25"}
	}
	records := spreadsheet([]string{"Desc", "Amt"}, rows...)

	seq := newTestEngine(t, adapter, Options{Workers: 1})
	con := newTestEngine(t, adapter, Options{Workers: 4})

	seqRecords := seq.Process(context.Background(), records, models.SourceSpreadsheet).AcceptedRecords()
	conRecords := con.Process(context.Background(), records, models.SourceSpreadsheet).AcceptedRecords()

	require.Len(t, conRecords, len(seqRecords))
	for i := range seqRecords {
		assert.Equal(t, i, conRecords[i].Provenance.RowIndex)
		assert.Equal(t, seqRecords[i].Category, conRecords[i].Category)
	}
}

func TestProcessConcurrentCancelMidBatch(t *testing.T) {
	adapter := &gatedAdapter{
		started: make(chan struct{}, 16),
		gate:    make(chan struct{}),
		result: labeling.Result{
			Category:           "Painting",
			CategoryConfidence: 0.8,
			Funding:            "CI",
			FundingConfidence:  0.7,
		},
	}
	eng := newTestEngine(t, adapter, Options{Workers: 2})

	rows := make([][]string, 8)
	for i := range rows {
		rows[i] = []string{"paint job", "25"}
	}
	records := spreadsheet([]string{"Desc", "Amt"}, rows...)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan *session.Session, 1)
	go func() {
		done <- eng.Process(ctx, records, models.SourceSpreadsheet)
	}()

	// Wait until both workers hold a row mid-flight, then cancel and let
	// them finish.
	<-adapter.started
	<-adapter.started
	cancel()
	close(adapter.gate)

	sess := <-done
	sum := sess.Summary()
	assert.True(t, sum.Cancelled)
	assert.GreaterOrEqual(t, sum.Total, 2, "started rows always complete")
	assert.Less(t, sum.Total, len(records), "undispatched rows are dropped")
	assert.Equal(t, sum.Total, sum.Accepted+sum.Rejected)

	// The retained outcomes are a gap-free prefix in original row order.
	accepted := sess.AcceptedRecords()
	require.Len(t, accepted, sum.Total)
	for i, rec := range accepted {
		assert.Equal(t, i, rec.Provenance.RowIndex)
	}
}

func TestProcessCancelledContext(t *testing.T) {
	adapter := &stubAdapter{result: labeling.Result{Category: "Other", CategoryConfidence: 0.6}}
	eng := newTestEngine(t, adapter, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sess := eng.Process(ctx, spreadsheet(
		[]string{"Desc", "Amt"},
		[]string{"paint", "60"},
		[]string{"tile", "90"},
	), models.SourceSpreadsheet)

	sum := sess.Summary()
	assert.True(t, sum.Cancelled)
	assert.Equal(t, 0, sum.Total)
	assert.True(t, sess.Finalized())
}

func TestProcessTaxonomyClosure(t *testing.T) {
	adapter := &stubAdapter{result: labeling.Result{
		Category:           "whatever the model says",
		CategoryConfidence: 0.9,
	}}
	eng := newTestEngine(t, adapter, Options{})

	sess := eng.Process(context.Background(), spreadsheet(
		[]string{"Desc", "Amt"},
		[]string{"weird thing", "10"},
	), models.SourceSpreadsheet)

	for _, rec := range sess.AcceptedRecords() {
		valid := taxonomy.IsValid(rec.Category) || rec.Category == taxonomy.Uncategorized
		assert.True(t, valid, "category %q escaped the taxonomy", rec.Category)
		assert.GreaterOrEqual(t, rec.Confidence, 0.0)
		assert.LessOrEqual(t, rec.Confidence, 1.0)
	}
}
