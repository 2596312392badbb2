package repository

import (
	"github.com/melodia/melodia-backend/internal/models"
	"gorm.io/gorm"
)

type CreditBundleRepository struct {
	db *gorm.DB
}

func NewCreditBundleRepository(db *gorm.DB) *CreditBundleRepository {
	return &CreditBundleRepository{
		db: db,
	}
}

func (r *CreditBundleRepository) GetByID(id uint) (*models.CreditBundle, error) {
	var bundle models.CreditBundle
	err := r.db.First(&bundle, id).Error
	return &bundle, err
}

func (r *CreditBundleRepository) GetBySlug(slug string) (*models.CreditBundle, error) {
	var bundle models.CreditBundle
	err := r.db.Where("slug = ?", slug).First(&bundle).Error
	return &bundle, err
}

func (r *CreditBundleRepository) GetAll() ([]models.CreditBundle, error) {
	var bundles []models.CreditBundle
	err := r.db.Where("is_active = ?", true).Order("credits ASC").Find(&bundles).Error
	return bundles, err
}
