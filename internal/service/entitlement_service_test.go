package service

import (
	"testing"

	"github.com/melodia/melodia-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntitlementValidate_MusicModelMatrix(t *testing.T) {
	svc := NewEntitlementService()

	tests := []struct {
		tier    models.PlanTier
		model   string
		allowed bool
	}{
		{models.PlanFree, "V3_5", true},
		{models.PlanFree, "V4", true},
		{models.PlanFree, "V4_5", false},
		{models.PlanFree, "V5", false},
		{models.PlanStudio, "V4_5", true},
		{models.PlanStudio, "V5", false},
		{models.PlanCreator, "V5", true},
		{models.PlanAllAccess, "V5", true},
	}
	for _, tt := range tests {
		denial := svc.Validate(tt.tier, models.DimensionMusicModel, tt.model)
		if tt.allowed {
			assert.Nil(t, denial, "%s should allow %s", tt.tier, tt.model)
		} else {
			assert.NotNil(t, denial, "%s should deny %s", tt.tier, tt.model)
		}
	}
}

func TestEntitlementValidate_VideoResolutionMatrix(t *testing.T) {
	svc := NewEntitlementService()

	assert.Nil(t, svc.Validate(models.PlanFree, models.DimensionVideoResolution, "480p"))
	assert.NotNil(t, svc.Validate(models.PlanFree, models.DimensionVideoResolution, "720p"))
	assert.Nil(t, svc.Validate(models.PlanStudio, models.DimensionVideoResolution, "720p"))
	assert.NotNil(t, svc.Validate(models.PlanStudio, models.DimensionVideoResolution, "1080p"))
	assert.Nil(t, svc.Validate(models.PlanCreator, models.DimensionVideoResolution, "1080p"))
	assert.Nil(t, svc.Validate(models.PlanAllAccess, models.DimensionVideoResolution, "1080p"))
}

func TestEntitlementValidate_ImageEngineMatrix(t *testing.T) {
	svc := NewEntitlementService()

	assert.Nil(t, svc.Validate(models.PlanFree, models.DimensionImageEngine, "classic"))
	assert.NotNil(t, svc.Validate(models.PlanFree, models.DimensionImageEngine, "flux"))
	assert.Nil(t, svc.Validate(models.PlanStudio, models.DimensionImageEngine, "flux"))
}

func TestEntitlementValidate_DenialCarriesAllowedSet(t *testing.T) {
	svc := NewEntitlementService()

	denial := svc.Validate(models.PlanFree, models.DimensionMusicModel, "V5")
	require.NotNil(t, denial)
	assert.Equal(t, models.DimensionMusicModel, denial.Dimension)
	assert.Equal(t, "V5", denial.Requested)
	assert.Equal(t, models.PlanFree, denial.PlanTier)
	assert.Equal(t, []string{"V3_5", "V4"}, denial.Allowed)
	assert.Contains(t, denial.Error(), "V5")
	assert.Contains(t, denial.Error(), "free")
}

func TestEntitlementValidate_UnknownValueDenied(t *testing.T) {
	svc := NewEntitlementService()

	// Values outside the closed set are denied even on the top tier.
	assert.NotNil(t, svc.Validate(models.PlanAllAccess, models.DimensionMusicModel, "V99"))
	assert.NotNil(t, svc.Validate(models.PlanAllAccess, models.DimensionVideoResolution, "4k"))
}

func TestEntitlementFeatureEnabled(t *testing.T) {
	svc := NewEntitlementService()

	assert.False(t, svc.FeatureEnabled(models.PlanFree, models.FeatureWAVConversion))
	assert.True(t, svc.FeatureEnabled(models.PlanStudio, models.FeatureWAVConversion))
	assert.False(t, svc.FeatureEnabled(models.PlanStudio, models.FeatureCommercialLicense))
	assert.True(t, svc.FeatureEnabled(models.PlanCreator, models.FeatureCommercialLicense))
	assert.False(t, svc.FeatureEnabled(models.PlanCreator, models.FeatureAPIAccess))
	assert.True(t, svc.FeatureEnabled(models.PlanAllAccess, models.FeatureAPIAccess))
}

func TestEntitlementCapabilities_CoversEveryTier(t *testing.T) {
	svc := NewEntitlementService()

	defs := svc.Capabilities()
	require.Len(t, defs, len(models.AllPlanTiers))
	for i, tier := range models.AllPlanTiers {
		assert.Equal(t, tier, defs[i].Tier)
	}
}
