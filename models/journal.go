package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Journal repräsentiert eine Veröffentlichung eines Forschers samt hinterlegtem Dokument.
type Journal struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ResearcherID uuid.UUID `json:"researcher_id" gorm:"type:uuid;not null;index"`
	Title        string    `json:"title" gorm:"size:200;not null"`

	// Öffentliche Download-URL, wird beim Anlegen aus der Basis-URL abgeleitet
	URL string `json:"url" gorm:"not null"`
	// Pfad der Datei im lokalen Dokumentverzeichnis, nie nach außen serialisiert
	InternalURL string `json:"-" gorm:"not null"`

	PublishedDate time.Time `json:"published_date" gorm:"index"`

	// Metadaten des Original-Uploads (Dateiname, Größe, Content-Type)
	DocMeta datatypes.JSON `json:"doc_meta,omitempty" gorm:"type:jsonb"`

	// Der Forscher muss beim Anlegen existieren; wird er gelöscht, verschwinden
	// seine Journale mit.
	Researcher *Researcher `json:"-" gorm:"foreignKey:ResearcherID;constraint:OnDelete:CASCADE"`
}

// TableName gibt den expliziten Tabellennamen für GORM an.
func (Journal) TableName() string {
	return "journals"
}
