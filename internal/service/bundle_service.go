package service

import (
	"errors"

	"github.com/melodia/melodia-backend/internal/models"
	"gorm.io/gorm"
)

// BundleCatalog is the read surface of the credit bundle catalog.
type BundleCatalog interface {
	GetByID(id uint) (*models.CreditBundle, error)
	GetBySlug(slug string) (*models.CreditBundle, error)
	GetAll() ([]models.CreditBundle, error)
}

type BundleService struct {
	bundles BundleCatalog
}

func NewBundleService(bundles BundleCatalog) *BundleService {
	return &BundleService{
		bundles: bundles,
	}
}

func (s *BundleService) GetAllBundles() ([]models.CreditBundle, error) {
	return s.bundles.GetAll()
}

func (s *BundleService) GetBundleByID(id uint) (*models.CreditBundle, error) {
	bundle, err := s.bundles.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBundleNotFound
		}
		return nil, err
	}
	return bundle, nil
}

// GetBundleBySlug resolves a catalog slug like "starter" or "popular".
func (s *BundleService) GetBundleBySlug(slug string) (*models.CreditBundle, error) {
	bundle, err := s.bundles.GetBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBundleNotFound
		}
		return nil, err
	}
	return bundle, nil
}
