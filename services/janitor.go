package services

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"journal-hand/models"
	"journal-hand/storage"
)

// JanitorService räumt Dokument-Dateien ab, auf die kein Journal mehr zeigt.
// Solche Dateien können zurückbleiben, wenn zwischen Datenbank-Update und
// Dateitausch ein Crash liegt; der Sweep läuft deshalb periodisch per Cron.
type JanitorService struct {
	DB     *gorm.DB
	Files  *storage.FileStore
	Logger *zap.Logger
	// Grace schützt frisch geschriebene Dateien, deren Journal-Zeile
	// möglicherweise gerade erst entsteht.
	Grace time.Duration
}

// NewJanitorService erstellt eine neue Instanz des JanitorService.
func NewJanitorService(db *gorm.DB, files *storage.FileStore, logger *zap.Logger, grace time.Duration) *JanitorService {
	return &JanitorService{DB: db, Files: files, Logger: logger, Grace: grace}
}

// Sweep entfernt alle ausreichend alten Dateien im Dokumentverzeichnis, die
// von keiner Journal-Zeile referenziert werden, und gibt deren Anzahl zurück.
func (s *JanitorService) Sweep(ctx context.Context) (int, error) {
	files, err := s.Files.List()
	if err != nil {
		return 0, &ServiceError{Op: "list stored documents", Err: err}
	}

	var paths []string
	if err := s.DB.WithContext(ctx).Model(&models.Journal{}).Pluck("internal_url", &paths).Error; err != nil {
		return 0, &ServiceError{Op: "list referenced documents", Err: err}
	}
	referenced := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		referenced[p] = struct{}{}
	}

	removed := 0
	for _, f := range files {
		if _, ok := referenced[f.Path]; ok {
			continue
		}
		if time.Since(f.ModTime) < s.Grace {
			continue
		}
		if err := s.Files.Remove(f.Path); err != nil {
			s.Logger.Warn("Removing orphaned document failed", zap.String("path", f.Path), zap.Error(err))
			continue
		}
		removed++
	}

	if removed > 0 {
		s.Logger.Info("Orphaned documents removed", zap.Int("count", removed))
	}
	return removed, nil
}
