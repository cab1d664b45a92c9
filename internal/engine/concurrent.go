package engine

import (
	"context"
	"sync"

	"github.com/rgriggs0072/fliptrack-ai/internal/logging"
	"github.com/rgriggs0072/fliptrack-ai/internal/models"
	"github.com/rgriggs0072/fliptrack-ai/internal/session"
)

// indexedJob carries the original row position through the worker pool so
// outcomes can be reassembled in batch order.
type indexedJob struct {
	index  int
	record models.RawRecord
}

type indexedOutcome struct {
	index   int
	outcome models.Outcome
	lesson  *vendorLesson
}

// processConcurrent runs the batch through a bounded worker pool. Outcomes
// are reassembled in row order; on cancellation only the contiguous prefix
// of completed rows is kept so the session still reads as an ordered,
// truncated batch.
func (e *Engine) processConcurrent(ctx context.Context, sess *session.Session, records []models.RawRecord, kind models.SourceKind) {
	workers := e.opts.Workers
	if workers > len(records) {
		workers = len(records)
	}

	jobChan := make(chan indexedJob, workers)
	resultChan := make(chan indexedOutcome, len(records))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go e.worker(ctx, &wg, sess.ID(), jobChan, resultChan)
	}

	go func() {
		defer close(jobChan)
		for i := range records {
			// Checked before each send so cancellation stops dispatch even
			// when a worker frees a channel slot at the same instant.
			select {
			case <-ctx.Done():
				return
			default:
			}
			rec := records[i]
			rec.Kind = kind
			select {
			case jobChan <- indexedJob{index: i, record: rec}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	outcomes := make(map[int]indexedOutcome, len(records))
	for result := range resultChan {
		outcomes[result.index] = result
	}

	// Append the contiguous prefix; a gap means the dispatcher stopped on
	// cancellation before that row was handed out. Lessons from truncated
	// rows are discarded along with their outcomes.
	appended := 0
	for i := 0; i < len(records); i++ {
		result, done := outcomes[i]
		if !done {
			break
		}
		if result.lesson != nil {
			sess.RecordLearnedVendor(result.lesson.vendor, result.lesson.category)
		}
		sess.Append(result.outcome)
		appended++
	}

	if appended < len(records) {
		sess.MarkCancelled()
		e.logger.Debug("Concurrent batch truncated",
			logging.Field{Key: "appended", Value: appended},
			logging.Field{Key: "total", Value: len(records)},
		)
	}
}

// worker drains jobs until the channel closes. A started row always runs to
// completion; cancellation is honored only between rows.
func (e *Engine) worker(ctx context.Context, wg *sync.WaitGroup, sessionID string, jobChan <-chan indexedJob, resultChan chan<- indexedOutcome) {
	defer wg.Done()

	for {
		select {
		case job, ok := <-jobChan:
			if !ok {
				return
			}
			outcome, lesson := e.processRow(ctx, sessionID, job.index, job.record)
			resultChan <- indexedOutcome{
				index:   job.index,
				outcome: outcome,
				lesson:  lesson,
			}
		case <-ctx.Done():
			return
		}
	}
}
