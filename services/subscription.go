package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"journal-hand/models"
)

// SubscriptionService verwaltet die gerichtete "folgt"-Relation zwischen
// Forschern und berechnet daraus Abonnenten-Listen und den Journal-Feed.
// Der Service hält keinen eigenen Zustand; jede Abfrage liest den aktuellen
// Stand der Datenbank.
type SubscriptionService struct {
	DB     *gorm.DB
	Logger *zap.Logger
}

// NewSubscriptionService erstellt eine neue Instanz des SubscriptionService.
func NewSubscriptionService(db *gorm.DB, logger *zap.Logger) *SubscriptionService {
	return &SubscriptionService{DB: db, Logger: logger}
}

// FeedLimit begrenzt die Länge des Journal-Feeds.
const FeedLimit = 20

// researcherExists ist die Vorbedingung aller Lese-Operationen: ein fehlender
// Forscher ist ein NotFound, ein existierender Forscher ohne Kanten liefert
// später schlicht leere Ergebnisse.
func (s *SubscriptionService) researcherExists(ctx context.Context, id uuid.UUID) error {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.Researcher{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return &ServiceError{Op: "check researcher", Err: err}
	}
	if count == 0 {
		return &NotFoundError{Entity: "researcher"}
	}
	return nil
}

// GetSubscriptors liefert alle Forscher, die dem angegebenen Forscher folgen
// (aufgelöst auf die Quell-Datensätze der Kanten, ohne Reihenfolge-Garantie).
func (s *SubscriptionService) GetSubscriptors(ctx context.Context, researcherID uuid.UUID) ([]models.Researcher, error) {
	if err := s.researcherExists(ctx, researcherID); err != nil {
		return nil, err
	}

	followers := s.DB.Model(&models.Subscription{}).
		Select("researcher_id").
		Where("followed_researcher_id = ?", researcherID)

	var researchers []models.Researcher
	if err := s.DB.WithContext(ctx).Where("id IN (?)", followers).Find(&researchers).Error; err != nil {
		return nil, &ServiceError{Op: "get subscriptors", Err: err}
	}
	return researchers, nil
}

// GetSubscriptions liefert die rohen Kanten, die vom angegebenen Forscher ausgehen.
func (s *SubscriptionService) GetSubscriptions(ctx context.Context, researcherID uuid.UUID) ([]models.Subscription, error) {
	if err := s.researcherExists(ctx, researcherID); err != nil {
		return nil, err
	}

	var subscriptions []models.Subscription
	if err := s.DB.WithContext(ctx).Where("researcher_id = ?", researcherID).Find(&subscriptions).Error; err != nil {
		return nil, &ServiceError{Op: "get subscriptions", Err: err}
	}
	return subscriptions, nil
}

// GetFeed liefert die Journale aller Forscher, denen der angegebene Forscher
// folgt: aufsteigend nach Veröffentlichungsdatum, maximal FeedLimit Einträge.
// Der Semi-Join läuft als Membership-Subquery in der Datenbank, es wird kein
// Kandidaten-Set im Speicher materialisiert.
func (s *SubscriptionService) GetFeed(ctx context.Context, researcherID uuid.UUID) ([]models.Journal, error) {
	if err := s.researcherExists(ctx, researcherID); err != nil {
		return nil, err
	}

	followed := s.DB.Model(&models.Subscription{}).
		Select("followed_researcher_id").
		Where("researcher_id = ?", researcherID)

	var journals []models.Journal
	if err := s.DB.WithContext(ctx).
		Where("researcher_id IN (?)", followed).
		Order("published_date asc").
		Limit(FeedLimit).
		Find(&journals).Error; err != nil {
		return nil, &ServiceError{Op: "get feed", Err: err}
	}
	return journals, nil
}

// Create persistiert eine neue Kante mit frischer ID. Duplikate und
// Selbst-Abos werden bewusst nicht abgewiesen.
func (s *SubscriptionService) Create(ctx context.Context, subscription *models.Subscription) error {
	subscription.ID = uuid.New()
	if err := s.DB.WithContext(ctx).Create(subscription).Error; err != nil {
		return &ServiceError{Op: "create subscription", Err: err}
	}
	s.Logger.Info("Subscription created",
		zap.String("id", subscription.ID.String()),
		zap.String("researcher_id", subscription.ResearcherID.String()),
		zap.String("followed_researcher_id", subscription.FollowedResearcherID.String()))
	return nil
}

// Delete entfernt eine Kante anhand ihrer eigenen ID. Eine fehlende Kante ist
// kein Fehler, sondern liefert false.
func (s *SubscriptionService) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	var subscription models.Subscription
	if err := s.DB.WithContext(ctx).First(&subscription, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, &ServiceError{Op: "get subscription", Err: err}
	}
	if err := s.DB.WithContext(ctx).Delete(&subscription).Error; err != nil {
		return false, &ServiceError{Op: "delete subscription", Err: err}
	}
	return true, nil
}
