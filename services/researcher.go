package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"journal-hand/models"
)

// ResearcherService kümmert sich um die Verwaltung der Forscher-Stammdaten.
type ResearcherService struct {
	DB     *gorm.DB
	Logger *zap.Logger
}

// NewResearcherService erstellt eine neue Instanz des ResearcherService.
func NewResearcherService(db *gorm.DB, logger *zap.Logger) *ResearcherService {
	return &ResearcherService{DB: db, Logger: logger}
}

// Get liefert alle Forscher.
func (s *ResearcherService) Get(ctx context.Context) ([]models.Researcher, error) {
	var researchers []models.Researcher
	if err := s.DB.WithContext(ctx).Find(&researchers).Error; err != nil {
		return nil, &ServiceError{Op: "get researchers", Err: err}
	}
	return researchers, nil
}

// GetOne liefert einen Forscher anhand seiner ID.
func (s *ResearcherService) GetOne(ctx context.Context, id uuid.UUID) (*models.Researcher, error) {
	var researcher models.Researcher
	if err := s.DB.WithContext(ctx).First(&researcher, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "researcher"}
		}
		return nil, &ServiceError{Op: "get researcher", Err: err}
	}
	return &researcher, nil
}

// Create legt einen neuen Forscher an. Die ID wird serverseitig vergeben, das
// Klartext-Passwort wird vor dem Speichern durch einen Bcrypt-Hash ersetzt.
func (s *ResearcherService) Create(ctx context.Context, researcher *models.Researcher) error {
	if researcher.Name == "" || researcher.Email == "" || researcher.Password == "" {
		return &ValidationError{Msg: "name, email and password are required"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(researcher.Password), bcrypt.DefaultCost)
	if err != nil {
		return &ServiceError{Op: "hash password", Err: err}
	}
	researcher.ID = uuid.New()
	researcher.Password = string(hash)

	if err := s.DB.WithContext(ctx).Create(researcher).Error; err != nil {
		return &ServiceError{Op: "create researcher", Err: err}
	}
	s.Logger.Info("Researcher created", zap.String("id", researcher.ID.String()))
	return nil
}

// Update überschreibt Name, E-Mail und (falls mitgesendet) das Passwort eines
// bestehenden Forschers. Ein leeres Passwort lässt den gespeicherten Hash unberührt.
func (s *ResearcherService) Update(ctx context.Context, id uuid.UUID, researcher *models.Researcher) (*models.Researcher, error) {
	current, err := s.GetOne(ctx, id)
	if err != nil {
		return nil, err
	}

	current.Name = researcher.Name
	current.Email = researcher.Email
	if researcher.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(researcher.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, &ServiceError{Op: "hash password", Err: err}
		}
		current.Password = string(hash)
	}

	if err := s.DB.WithContext(ctx).Save(current).Error; err != nil {
		return nil, &ServiceError{Op: "update researcher", Err: err}
	}
	return current, nil
}

// Delete entfernt einen Forscher endgültig. Seine Journale werden per Constraint
// mitgelöscht; bestehende Subscription-Kanten blockieren das Löschen und
// schlagen als ServiceError auf.
func (s *ResearcherService) Delete(ctx context.Context, id uuid.UUID) error {
	current, err := s.GetOne(ctx, id)
	if err != nil {
		return err
	}
	if err := s.DB.WithContext(ctx).Delete(current).Error; err != nil {
		return &ServiceError{Op: "delete researcher", Err: err}
	}
	s.Logger.Info("Researcher deleted", zap.String("id", id.String()))
	return nil
}
