package models

import "time"

type MotorcycleCategory string

const (
	CategorySport     MotorcycleCategory = "sport"
	CategoryScooter   MotorcycleCategory = "scooter"
	CategoryAdventure MotorcycleCategory = "adventure"
)

func (c MotorcycleCategory) Valid() bool {
	return c == CategorySport || c == CategoryScooter || c == CategoryAdventure
}

type Motorcycle struct {
	ID        uint               `gorm:"primaryKey" json:"id" yaml:"id"`
	Name      string             `gorm:"type:varchar(255);not null" json:"name" yaml:"name"`
	Category  MotorcycleCategory `gorm:"type:varchar(20);not null" json:"category" yaml:"category"`
	Price     int64              `gorm:"not null" json:"price" yaml:"price"`
	Image     string             `gorm:"type:varchar(255)" json:"image" yaml:"image"`
	Specs     string             `gorm:"type:text" json:"specs" yaml:"specs"`
	Available bool               `gorm:"not null" json:"available" yaml:"available"`
	CreatedAt time.Time          `json:"created_at" yaml:"-"`
	UpdatedAt time.Time          `json:"updated_at" yaml:"-"`
}
