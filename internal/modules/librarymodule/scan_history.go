package librarymodule

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/sphildreth/melodee/internal/database"
)

// ScanHistoryRepo appends to the library scan audit log. Rows are never
// updated after insert.
type ScanHistoryRepo struct {
	db *gorm.DB
}

// NewScanHistoryRepo creates a scan history repository over db.
func NewScanHistoryRepo(db *gorm.DB) *ScanHistoryRepo {
	return &ScanHistoryRepo{db: db}
}

// Append inserts a scan record and stamps the library's lastScanAt in
// the same transaction.
func (r *ScanHistoryRepo) Append(ctx context.Context, entry *database.LibraryScanHistory) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(entry).Error; err != nil {
			return err
		}
		return tx.Model(&database.Library{}).
			Where("id = ?", entry.LibraryID).
			Update("last_scan_at", time.Now().UTC()).Error
	})
	return database.TranslateError(err)
}

// ListForLibrary returns a library's scan records, newest first.
func (r *ScanHistoryRepo) ListForLibrary(ctx context.Context, libraryID uint, limit int) ([]database.LibraryScanHistory, error) {
	if limit <= 0 {
		limit = 100
	}
	var entries []database.LibraryScanHistory
	err := r.db.WithContext(ctx).
		Where("library_id = ?", libraryID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, database.TranslateError(err)
	}
	return entries, nil
}
