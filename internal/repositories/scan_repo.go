package repositories

import (
	"gorm.io/gorm"

	"deeplinkqr/internal/entities"
)

type ScanRepo struct {
	db *gorm.DB
}

func NewScanRepo(db *gorm.DB) *ScanRepo {
	return &ScanRepo{db: db}
}

func (r *ScanRepo) Create(evt *entities.ScanEvent) error {
	return r.db.Create(evt).Error
}

func (r *ScanRepo) CountTotal(linkID string) (int64, error) {
	var total int64
	err := r.db.Model(&entities.ScanEvent{}).
		Where("link_id = ?", linkID).
		Count(&total).Error
	return total, err
}

type DeviceRow struct {
	DeviceType entities.DeviceType
	Count      int64
}

func (r *ScanRepo) CountByDevice(linkID string) ([]DeviceRow, error) {
	var rows []DeviceRow
	err := r.db.Model(&entities.ScanEvent{}).
		Select("device_type, COUNT(*) as count").
		Where("link_id = ?", linkID).
		Group("device_type").
		Scan(&rows).Error
	return rows, err
}

// Recent returns at most limit events, newest first.
func (r *ScanRepo) Recent(linkID string, limit int) ([]entities.ScanEvent, error) {
	var events []entities.ScanEvent
	err := r.db.
		Where("link_id = ?", linkID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&events).Error
	return events, err
}
