package entities

import "time"

// ScanEvent is append-only; rows are never updated or deleted.
type ScanEvent struct {
	ID         uint       `gorm:"primaryKey"`
	LinkID     string     `gorm:"size:64;index;not null"`
	CreatedAt  time.Time  `gorm:"index;not null"`
	UserAgent  string     `gorm:"size:512"`
	IPAddress  string     `gorm:"size:64"`
	Referrer   string     `gorm:"size:512"`
	DeviceType DeviceType `gorm:"size:16;index;not null"`
}
