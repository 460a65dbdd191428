package models

import (
	"time"

	"github.com/google/uuid"
)

// Subscription modelliert eine gerichtete Kante: ResearcherID folgt FollowedResearcherID.
// Duplikate und Selbst-Abos werden auf dieser Ebene bewusst nicht verhindert.
type Subscription struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ResearcherID         uuid.UUID `json:"researcher_id" gorm:"type:uuid;not null;index"`
	FollowedResearcherID uuid.UUID `json:"followed_researcher_id" gorm:"type:uuid;not null;index"`

	// Beide Endpunkte müssen existieren; die Kante hängt nicht am Lebenszyklus
	// der Forscher (kein Cascade in beide Richtungen).
	Researcher         *Researcher `json:"-" gorm:"foreignKey:ResearcherID;constraint:OnDelete:RESTRICT"`
	FollowedResearcher *Researcher `json:"-" gorm:"foreignKey:FollowedResearcherID;constraint:OnDelete:RESTRICT"`
}

// TableName gibt den expliziten Tabellennamen für GORM an.
func (Subscription) TableName() string {
	return "subscriptions"
}
