package repositories

import (
	"time"

	"gorm.io/gorm"

	"deeplinkqr/internal/entities"
)

type LinkRepo struct {
	db *gorm.DB
}

func NewLinkRepo(db *gorm.DB) *LinkRepo {
	return &LinkRepo{db: db}
}

func (r *LinkRepo) Create(l *entities.Link) error {
	return r.db.Create(l).Error
}

func (r *LinkRepo) GetByID(id string) (*entities.Link, error) {
	var l entities.Link
	if err := r.db.Where("id = ?", id).First(&l).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LinkRepo) ExistsID(id string) (bool, error) {
	var l entities.Link
	err := r.db.Select("id").Where("id = ?", id).First(&l).Error
	if err == nil {
		return true, nil
	}
	if err == gorm.ErrRecordNotFound {
		return false, nil
	}
	return false, err
}

func (r *LinkRepo) Delete(id string) (bool, error) {
	res := r.db.Where("id = ?", id).Delete(&entities.Link{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

type ListRow struct {
	ID          string
	Title       string
	DeepLink    string
	FallbackURL string
	CreatedAt   time.Time
	Scans       int64
}

func (r *LinkRepo) ListWithScans() ([]ListRow, error) {
	var rows []ListRow
	err := r.db.Table("links").
		Select(`
			links.id,
			links.title,
			links.deep_link,
			links.fallback_url,
			links.created_at,
			COUNT(scan_events.id) AS scans
		`).
		Joins("LEFT JOIN scan_events ON scan_events.link_id = links.id").
		Group("links.id").
		Order("links.created_at DESC").
		Scan(&rows).Error

	return rows, err
}
