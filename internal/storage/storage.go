// Package storage persists accepted transaction records. The SQLite store is
// the default backend; Store is an interface so services can swap in remote
// backends or fakes.
package storage

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rgriggs0072/fliptrack-ai/internal/models"
)

// Store persists one record for a tenant. Persist failures are per-record:
// the caller decides whether to continue with the rest of the batch.
type Store interface {
	Persist(ctx context.Context, record *models.TransactionRecord, tenantID string) error
	Close() error
}

// Expense is the persisted shape of a transaction record.
type Expense struct {
	ID          uint   `gorm:"primaryKey"`
	TenantID    string `gorm:"index"`
	SessionID   string `gorm:"index"`
	RowIndex    int
	Source      string
	Date        time.Time
	Amount      string
	Description string
	Vendor      string
	Category    string
	Funding     string
	Confidence  float64
	CreatedAt   time.Time
}

// SQLiteStore persists expenses to a local SQLite database.
type SQLiteStore struct {
	db *gorm.DB
}

// NewSQLiteStore opens (or creates) the database at dbPath and migrates the
// expense schema.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.AutoMigrate(&Expense{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Persist writes one accepted record for the tenant.
func (s *SQLiteStore) Persist(ctx context.Context, record *models.TransactionRecord, tenantID string) error {
	expense := Expense{
		TenantID:    tenantID,
		SessionID:   record.Provenance.SessionID,
		RowIndex:    record.Provenance.RowIndex,
		Source:      string(record.Provenance.Source),
		Date:        record.Date,
		Amount:      record.Amount.String(),
		Description: record.Description,
		Vendor:      record.Vendor,
		Category:    record.Category,
		Funding:     record.Funding.Code(),
		Confidence:  record.Confidence,
	}
	if err := s.db.WithContext(ctx).Create(&expense).Error; err != nil {
		return fmt.Errorf("failed to save expense: %w", err)
	}
	return nil
}

// ExpensesBySession returns the persisted expenses of one import session in
// row order.
func (s *SQLiteStore) ExpensesBySession(ctx context.Context, sessionID string) ([]Expense, error) {
	var expenses []Expense
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("row_index").
		Find(&expenses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load expenses: %w", err)
	}
	return expenses, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
