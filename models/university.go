package models

import (
	"github.com/google/uuid"
)

// University repräsentiert eine Universität (Stammdaten ohne Beziehung zu den übrigen Entitäten).
type University struct {
	ID   uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name string    `json:"name" gorm:"not null"`
	City string    `json:"city,omitempty"`
}

// TableName gibt den expliziten Tabellennamen für GORM an.
func (University) TableName() string {
	return "universities"
}
