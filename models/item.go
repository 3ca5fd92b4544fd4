package models

import "gorm.io/gorm"

// Item is a marketplace listing. ImageURL may hold a data URL produced by the
// client, so it gets a text column rather than a bounded varchar.
type Item struct {
	gorm.Model
	Title       string `gorm:"size:200;not null"`
	Description string `gorm:"type:text;not null"`
	ImageURL    string `gorm:"type:text"`
	PostedBy    string `gorm:"size:80;index;not null"`
}
