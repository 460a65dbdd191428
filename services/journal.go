package services

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"journal-hand/config"
	"journal-hand/models"
	"journal-hand/storage"
)

// JournalUpload ist das transiente Dokument eines Create/Update-Aufrufs.
// Es wird nie als Spalte persistiert, nur die Datei im FileStore.
type JournalUpload struct {
	Name        string
	ContentType string
	Data        []byte
}

// DocMeta sind die in journals.doc_meta abgelegten Metadaten des Original-Uploads.
type DocMeta struct {
	FileName    string `json:"file_name"`
	Size        int    `json:"size"`
	ContentType string `json:"content_type"`
}

// JournalService kümmert sich um Journale und deren hinterlegte Dokumente.
type JournalService struct {
	Config *config.Config
	DB     *gorm.DB
	Files  *storage.FileStore
	Logger *zap.Logger
}

// NewJournalService erstellt eine neue Instanz des JournalService.
func NewJournalService(cfg *config.Config, db *gorm.DB, files *storage.FileStore, logger *zap.Logger) *JournalService {
	return &JournalService{Config: cfg, DB: db, Files: files, Logger: logger}
}

// Get liefert alle Journale.
func (s *JournalService) Get(ctx context.Context) ([]models.Journal, error) {
	var journals []models.Journal
	if err := s.DB.WithContext(ctx).Find(&journals).Error; err != nil {
		return nil, &ServiceError{Op: "get journals", Err: err}
	}
	return journals, nil
}

// GetOne liefert ein Journal anhand seiner ID.
func (s *JournalService) GetOne(ctx context.Context, id uuid.UUID) (*models.Journal, error) {
	var journal models.Journal
	if err := s.DB.WithContext(ctx).First(&journal, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "journal"}
		}
		return nil, &ServiceError{Op: "get journal", Err: err}
	}
	return &journal, nil
}

// GetByResearcher liefert alle Journale eines Forschers. Ein Forscher ohne
// Journale ergibt eine leere Liste, keinen Fehler.
func (s *JournalService) GetByResearcher(ctx context.Context, researcherID uuid.UUID) ([]models.Journal, error) {
	var journals []models.Journal
	if err := s.DB.WithContext(ctx).Where("researcher_id = ?", researcherID).Find(&journals).Error; err != nil {
		return nil, &ServiceError{Op: "get journals by researcher", Err: err}
	}
	return journals, nil
}

// Create legt ein Journal samt Dokument an. ID, PublishedDate und die
// öffentliche URL werden serverseitig vergeben; ein leerer Upload wird vor
// jedem Storage-Zugriff abgewiesen. Schlägt der Datenbank-Insert fehl, wird
// die bereits geschriebene Datei wieder entfernt.
func (s *JournalService) Create(ctx context.Context, journal *models.Journal, doc *JournalUpload) error {
	if journal.Title == "" {
		return &ValidationError{Msg: "title is required"}
	}
	if journal.ResearcherID == uuid.Nil {
		return &ValidationError{Msg: "researcher_id is required"}
	}
	if doc == nil || len(doc.Data) == 0 {
		return &ValidationError{Msg: "journal file must not be empty"}
	}

	path, err := s.Files.Save(doc.Data, doc.Name)
	if err != nil {
		return &ServiceError{Op: "store journal document", Err: err}
	}

	journal.ID = uuid.New()
	journal.InternalURL = path
	journal.URL = s.Config.PublicBaseURL + "/journal/docFile/" + journal.ID.String()
	journal.PublishedDate = time.Now()
	journal.DocMeta = encodeDocMeta(doc)

	if err := s.DB.WithContext(ctx).Create(journal).Error; err != nil {
		if rmErr := s.Files.Remove(path); rmErr != nil {
			s.Logger.Warn("Cleanup of stored document failed", zap.String("path", path), zap.Error(rmErr))
		}
		return &ServiceError{Op: "create journal", Err: err}
	}
	s.Logger.Info("Journal created",
		zap.String("id", journal.ID.String()),
		zap.String("researcher_id", journal.ResearcherID.String()))
	return nil
}

// Update überschreibt den Titel und ersetzt optional das Dokument. Beim
// Dokumenttausch wird erst die neue Datei geschrieben und die Zeile
// aktualisiert, danach die alte Datei entfernt; eine dabei hängen gebliebene
// Alt-Datei räumt der Janitor ab.
func (s *JournalService) Update(ctx context.Context, id uuid.UUID, journal *models.Journal, doc *JournalUpload) (*models.Journal, error) {
	current, err := s.GetOne(ctx, id)
	if err != nil {
		return nil, err
	}
	if journal.Title == "" {
		return nil, &ValidationError{Msg: "title is required"}
	}
	if doc != nil && len(doc.Data) == 0 {
		return nil, &ValidationError{Msg: "journal file must not be empty"}
	}

	current.Title = journal.Title

	oldPath := ""
	if doc != nil {
		newPath, err := s.Files.Save(doc.Data, doc.Name)
		if err != nil {
			return nil, &ServiceError{Op: "store journal document", Err: err}
		}
		oldPath = current.InternalURL
		current.InternalURL = newPath
		current.DocMeta = encodeDocMeta(doc)
	}

	if err := s.DB.WithContext(ctx).Save(current).Error; err != nil {
		if doc != nil {
			if rmErr := s.Files.Remove(current.InternalURL); rmErr != nil {
				s.Logger.Warn("Cleanup of stored document failed", zap.String("path", current.InternalURL), zap.Error(rmErr))
			}
		}
		return nil, &ServiceError{Op: "update journal", Err: err}
	}

	if oldPath != "" {
		if err := s.Files.Remove(oldPath); err != nil {
			s.Logger.Warn("Removing replaced document failed", zap.String("path", oldPath), zap.Error(err))
		}
	}
	return current, nil
}

// Delete entfernt ein Journal samt Dokument endgültig.
func (s *JournalService) Delete(ctx context.Context, id uuid.UUID) error {
	current, err := s.GetOne(ctx, id)
	if err != nil {
		return err
	}
	if err := s.DB.WithContext(ctx).Delete(current).Error; err != nil {
		return &ServiceError{Op: "delete journal", Err: err}
	}
	if err := s.Files.Remove(current.InternalURL); err != nil {
		s.Logger.Warn("Removing journal document failed", zap.String("path", current.InternalURL), zap.Error(err))
	}
	s.Logger.Info("Journal deleted", zap.String("id", id.String()))
	return nil
}

// Document liest das gespeicherte Dokument eines Journals für den Download.
// Eine fehlende Datei wird wie eine fehlende Entität behandelt.
func (s *JournalService) Document(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	journal, err := s.GetOne(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if !s.Files.Exists(journal.InternalURL) {
		return nil, "", &NotFoundError{Entity: "journal document"}
	}
	data, err := s.Files.Read(journal.InternalURL)
	if err != nil {
		return nil, "", &ServiceError{Op: "read journal document", Err: err}
	}

	name := filepath.Base(journal.InternalURL)
	var meta DocMeta
	if len(journal.DocMeta) > 0 {
		if err := json.Unmarshal(journal.DocMeta, &meta); err == nil && meta.FileName != "" {
			name = meta.FileName
		}
	}
	return data, name, nil
}

func encodeDocMeta(doc *JournalUpload) datatypes.JSON {
	meta, _ := json.Marshal(DocMeta{
		FileName:    doc.Name,
		Size:        len(doc.Data),
		ContentType: doc.ContentType,
	})
	return meta
}
