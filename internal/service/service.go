// Package service exposes the import workflow: run a batch through the
// engine, keep the resulting sessions addressable by ID, and persist their
// accepted records.
package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/rgriggs0072/fliptrack-ai/internal/engine"
	"github.com/rgriggs0072/fliptrack-ai/internal/logging"
	"github.com/rgriggs0072/fliptrack-ai/internal/models"
	"github.com/rgriggs0072/fliptrack-ai/internal/session"
	"github.com/rgriggs0072/fliptrack-ai/internal/storage"
)

// ImportService runs import batches and tracks their sessions.
type ImportService struct {
	engine *engine.Engine
	store  storage.Store
	logger logging.Logger

	mu       sync.RWMutex
	sessions map[string]*session.Session
}

// New wires an ImportService. The store may be nil when persistence is not
// configured; PersistSession then returns an error.
func New(eng *engine.Engine, store storage.Store, logger logging.Logger) *ImportService {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &ImportService{
		engine:   eng,
		store:    store,
		logger:   logger,
		sessions: make(map[string]*session.Session),
	}
}

// BeginImport processes the batch and registers the finalized session. The
// returned session ID addresses it in later calls.
func (s *ImportService) BeginImport(ctx context.Context, records []models.RawRecord, kind models.SourceKind) string {
	sess := s.engine.Process(ctx, records, kind)
	s.engine.AdoptLearnedVendors(sess)

	s.mu.Lock()
	s.sessions[sess.ID()] = sess
	s.mu.Unlock()

	return sess.ID()
}

// Session returns the registered session, or an error for unknown IDs.
func (s *ImportService) Session(id string) (*session.Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown import session %q", id)
	}
	return sess, nil
}

// SessionSummary reports the aggregate counts of one session.
func (s *ImportService) SessionSummary(id string) (session.Summary, error) {
	sess, err := s.Session(id)
	if err != nil {
		return session.Summary{}, err
	}
	return sess.Summary(), nil
}

// AcceptedRecords returns the session's accepted records in row order.
func (s *ImportService) AcceptedRecords(id string) ([]models.TransactionRecord, error) {
	sess, err := s.Session(id)
	if err != nil {
		return nil, err
	}
	return sess.AcceptedRecords(), nil
}

// PersistSession writes the session's accepted records for the tenant. A
// failed write is counted against the session and logged, not fatal; the
// remaining records are still attempted. The returned count is the number of
// records persisted.
func (s *ImportService) PersistSession(ctx context.Context, id, tenantID string) (int, error) {
	if s.store == nil {
		return 0, fmt.Errorf("no persistence store configured")
	}
	sess, err := s.Session(id)
	if err != nil {
		return 0, err
	}

	persisted := 0
	records := sess.AcceptedRecords()
	for i := range records {
		if err := s.store.Persist(ctx, &records[i], tenantID); err != nil {
			sess.RecordPersistFailure()
			s.logger.WithError(err).WithFields(
				logging.Field{Key: "session", Value: id},
				logging.Field{Key: "row", Value: records[i].Provenance.RowIndex},
			).Error("Failed to persist record")
			continue
		}
		persisted++
	}

	s.logger.Info("Session persisted",
		logging.Field{Key: "session", Value: id},
		logging.Field{Key: "tenant", Value: tenantID},
		logging.Field{Key: "persisted", Value: persisted},
	)
	return persisted, nil
}
