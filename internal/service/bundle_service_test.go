package service

import (
	"testing"

	"github.com/melodia/melodia-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBundleFixture() *BundleService {
	return NewBundleService(&stubBundleStore{bundles: map[uint]*models.CreditBundle{
		1: {ID: 1, Slug: "starter", Name: "Starter Pack", Credits: 100, Price: 6.99},
		2: popularBundle(),
	}})
}

func TestGetBundleByID(t *testing.T) {
	svc := newBundleFixture()

	bundle, err := svc.GetBundleByID(2)
	require.NoError(t, err)
	assert.Equal(t, "popular", bundle.Slug)

	_, err = svc.GetBundleByID(99)
	assert.ErrorIs(t, err, ErrBundleNotFound)
}

func TestGetBundleBySlug(t *testing.T) {
	svc := newBundleFixture()

	bundle, err := svc.GetBundleBySlug("starter")
	require.NoError(t, err)
	assert.Equal(t, uint(1), bundle.ID)
	assert.Equal(t, 100, bundle.TotalCredits())

	_, err = svc.GetBundleBySlug("mega")
	assert.ErrorIs(t, err, ErrBundleNotFound)
}

func TestGetAllBundles(t *testing.T) {
	svc := newBundleFixture()

	bundles, err := svc.GetAllBundles()
	require.NoError(t, err)
	assert.Len(t, bundles, 2)
}
