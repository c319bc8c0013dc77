package scannermodule

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dhowden/tag"

	"github.com/sphildreth/melodee/internal/database"
	"github.com/sphildreth/melodee/internal/events"
	"github.com/sphildreth/melodee/internal/logger"
	"github.com/sphildreth/melodee/internal/modules/librarymodule"
	"github.com/sphildreth/melodee/internal/utils"
)

// audioExtensions are the file types the scanner will attempt to parse.
var audioExtensions = map[string]bool{
	".mp3":  true,
	".flac": true,
	".ogg":  true,
	".m4a":  true,
	".m4b":  true,
	".dsf":  true,
}

// ScanSummary reports one completed scan pass over a library.
type ScanSummary struct {
	LibraryID    uint          `json:"library_id"`
	FilesFound   int           `json:"files_found"`
	Created      int           `json:"created"`
	Unchanged    int           `json:"unchanged"`
	Replaced     int           `json:"replaced"`
	Failed       int           `json:"failed"`
	Duration     time.Duration `json:"duration"`
	ErrorSamples []string      `json:"error_samples,omitempty"`
}

// Scanner walks a library's filesystem root, parses audio tags and feeds
// them through the catalog assembler. Scans are idempotent; re-running
// one over an unchanged tree is a no-op.
type Scanner struct {
	assembler *librarymodule.Assembler
	libraries *librarymodule.LibraryRepo
	scans     *librarymodule.ScanHistoryRepo
	eventBus  events.EventBus

	mu      sync.Mutex
	running map[uint]bool
}

// NewScanner creates a scanner over the catalog write path.
func NewScanner(assembler *librarymodule.Assembler, libraries *librarymodule.LibraryRepo, scans *librarymodule.ScanHistoryRepo, eventBus events.EventBus) *Scanner {
	return &Scanner{
		assembler: assembler,
		libraries: libraries,
		scans:     scans,
		eventBus:  eventBus,
		running:   make(map[uint]bool),
	}
}

// ScanLibrary runs one full scan pass over the library's path. At most
// one scan per library runs at a time; a second call while one is in
// flight returns ErrLocked.
func (s *Scanner) ScanLibrary(ctx context.Context, libraryID uint) (*ScanSummary, error) {
	s.mu.Lock()
	if s.running[libraryID] {
		s.mu.Unlock()
		return nil, database.ErrLocked
	}
	s.running[libraryID] = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.running, libraryID)
		s.mu.Unlock()
	}()

	lib, err := s.libraries.GetByID(ctx, libraryID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	logger.Info("Starting library scan", "library", lib.APIKey, "path", lib.Path)

	files, err := s.discover(ctx, lib.Path)
	if err != nil {
		return nil, err
	}

	batch := s.assembler.UpsertBatch(ctx, lib.ID, files)

	summary := &ScanSummary{
		LibraryID:  lib.ID,
		FilesFound: len(files),
		Created:    batch.Created,
		Unchanged:  batch.Unchanged,
		Replaced:   batch.Replaced,
		Failed:     batch.Failed,
		Duration:   time.Since(start),
	}
	for i, ferr := range batch.Errors {
		if i >= 5 {
			break
		}
		summary.ErrorSamples = append(summary.ErrorSamples, ferr.Error())
	}

	if err := s.record(ctx, lib.ID, summary); err != nil {
		return nil, err
	}

	if s.eventBus != nil {
		s.eventBus.Publish(events.Event{
			Type:   events.EventScanCompleted,
			Source: ModuleID,
			Data: map[string]interface{}{
				"library_id":  lib.ID,
				"files_found": summary.FilesFound,
				"created":     summary.Created,
				"replaced":    summary.Replaced,
				"failed":      summary.Failed,
			},
		})
	}

	logger.Info("Library scan finished",
		"library", lib.APIKey,
		"files", summary.FilesFound,
		"created", summary.Created,
		"unchanged", summary.Unchanged,
		"replaced", summary.Replaced,
		"failed", summary.Failed,
		"duration", summary.Duration.String(),
	)
	return summary, nil
}

// discover walks the tree and parses every recognized audio file.
// Unreadable or untaggable files are skipped with a warning rather than
// aborting the walk.
func (s *Scanner) discover(ctx context.Context, root string) ([]librarymodule.FileMetadata, error) {
	var files []librarymodule.FileMetadata
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() || !audioExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		meta, err := s.parseFile(path)
		if err != nil {
			logger.Warn("Skipping unreadable file", "file", path, "error", err)
			return nil
		}
		files = append(files, meta)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func (s *Scanner) parseFile(path string) (librarymodule.FileMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return librarymodule.FileMetadata{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return librarymodule.FileMetadata{}, err
	}
	defer f.Close()

	parsed, err := tag.ReadFrom(f)
	if err != nil {
		return librarymodule.FileMetadata{}, err
	}

	return librarymodule.MetadataFromTag(parsed, filepath.Base(path), int64(len(data)), utils.HashBytes(data)), nil
}

// record refreshes the library's cached counts and appends the audit
// row with the totals the refresh produced.
func (s *Scanner) record(ctx context.Context, libraryID uint, summary *ScanSummary) error {
	if err := s.libraries.RecomputeCounts(ctx, libraryID); err != nil {
		return err
	}
	lib, err := s.libraries.GetByID(ctx, libraryID)
	if err != nil {
		return err
	}
	entry := &database.LibraryScanHistory{
		LibraryID:        libraryID,
		FoundArtistCount: lib.ArtistCount,
		FoundAlbumCount:  lib.AlbumCount,
		FoundSongCount:   lib.SongCount,
		DurationInMs:     summary.Duration.Milliseconds(),
	}
	return s.scans.Append(ctx, entry)
}
