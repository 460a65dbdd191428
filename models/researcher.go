package models

import (
	"time"

	"github.com/google/uuid"
)

// Researcher repräsentiert einen Forscher (zugleich API-Benutzer, Login über E-Mail).
type Researcher struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name  string `json:"name" gorm:"size:150;not null"`
	Email string `json:"email" gorm:"uniqueIndex;not null"`
	// Bcrypt-Hash, niemals das Klartext-Passwort und niemals serialisiert
	Password string `json:"-" gorm:"not null"`

	// Back-References, nicht Teil der API-Antworten. Die Constraints selbst
	// hängen an den Kind-Modellen: Journale werden mitgelöscht,
	// Subscription-Kanten blockieren das Löschen (bewusst kein Cascade).
	Journals      []Journal      `json:"-" gorm:"foreignKey:ResearcherID"`
	Subscriptions []Subscription `json:"-" gorm:"foreignKey:ResearcherID"`
	Subscriptors  []Subscription `json:"-" gorm:"foreignKey:FollowedResearcherID"`
}

// TableName gibt den expliziten Tabellennamen für GORM an.
func (Researcher) TableName() string {
	return "researchers"
}
