package entities

import "time"

// Link is immutable after creation; there is no update path.
type Link struct {
	ID          string    `gorm:"primaryKey;size:64"`
	AppScheme   string    `gorm:"size:64;not null"`
	AppPackage  string    `gorm:"size:256;not null"`
	DeepLink    string    `gorm:"size:2048;not null"`
	FallbackURL string    `gorm:"size:2048;not null"`
	Title       string    `gorm:"size:256"`
	CreatedAt   time.Time `gorm:"not null"`
}
