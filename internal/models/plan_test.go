package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapabilitiesFor_EveryTierDefined(t *testing.T) {
	for _, tier := range AllPlanTiers {
		def := CapabilitiesFor(tier)
		assert.Equal(t, tier, def.Tier)
		assert.NotEmpty(t, def.MusicModels, "tier %s has no music models", tier)
		assert.NotEmpty(t, def.VideoResolutions, "tier %s has no video resolutions", tier)
		assert.NotEmpty(t, def.ImageEngines, "tier %s has no image engines", tier)
	}
}

func TestCapabilitiesFor_UnknownTierPanics(t *testing.T) {
	assert.Panics(t, func() {
		CapabilitiesFor(PlanTier("enterprise"))
	})
}

func TestCapabilitiesFor_DailyAllowances(t *testing.T) {
	assert.Equal(t, Metered(50), CapabilitiesFor(PlanFree).DailyAllowance)
	assert.Equal(t, Metered(2500), CapabilitiesFor(PlanStudio).DailyAllowance)
	assert.Equal(t, Metered(10000), CapabilitiesFor(PlanCreator).DailyAllowance)
	assert.Equal(t, Unlimited(), CapabilitiesFor(PlanAllAccess).DailyAllowance)
}

func TestCapabilitiesFor_MusicModelsWidenByTier(t *testing.T) {
	assert.Equal(t, []MusicModel{MusicModelV3_5, MusicModelV4}, CapabilitiesFor(PlanFree).MusicModels)
	assert.Contains(t, CapabilitiesFor(PlanStudio).MusicModels, MusicModelV4_5)
	assert.NotContains(t, CapabilitiesFor(PlanStudio).MusicModels, MusicModelV5)
	assert.Contains(t, CapabilitiesFor(PlanCreator).MusicModels, MusicModelV5)
	assert.Contains(t, CapabilitiesFor(PlanAllAccess).MusicModels, MusicModelV5)
}

func TestCapabilitiesFor_FeatureFlags(t *testing.T) {
	free := CapabilitiesFor(PlanFree)
	assert.False(t, free.WAVConversion)
	assert.False(t, free.CommercialLicense)
	assert.False(t, free.APIAccess)

	studio := CapabilitiesFor(PlanStudio)
	assert.True(t, studio.WAVConversion)
	assert.False(t, studio.CommercialLicense)

	creator := CapabilitiesFor(PlanCreator)
	assert.True(t, creator.WAVConversion)
	assert.True(t, creator.CommercialLicense)
	assert.False(t, creator.APIAccess)

	allAccess := CapabilitiesFor(PlanAllAccess)
	assert.True(t, allAccess.WAVConversion)
	assert.True(t, allAccess.CommercialLicense)
	assert.True(t, allAccess.APIAccess)
}

func TestPlanTier_Valid(t *testing.T) {
	for _, tier := range AllPlanTiers {
		assert.True(t, tier.Valid())
	}
	assert.False(t, PlanTier("enterprise").Valid())
	assert.False(t, PlanTier("").Valid())
}

func TestCostOf_KnownKinds(t *testing.T) {
	assert.Equal(t, 5, CostOf(OpMusicGeneration))
	assert.Equal(t, 3, CostOf(OpMusicExtension))
	assert.Equal(t, 2, CostOf(OpWAVConversion))
	assert.Equal(t, 10, CostOf(OpVideoGeneration))
	assert.Equal(t, 3, CostOf(OpImageGeneration))
	assert.Equal(t, 1, CostOf(OpLyricsGeneration))
}

func TestCostOf_UnknownKindPanics(t *testing.T) {
	assert.Panics(t, func() {
		CostOf(OperationKind("stem_separation"))
	})
}

func TestIsUnlimitedFor_MusicExemptions(t *testing.T) {
	assert.False(t, IsUnlimitedFor(OpMusicGeneration, PlanFree))
	assert.True(t, IsUnlimitedFor(OpMusicGeneration, PlanStudio))
	assert.True(t, IsUnlimitedFor(OpMusicGeneration, PlanCreator))
	assert.True(t, IsUnlimitedFor(OpMusicGeneration, PlanAllAccess))
}

func TestIsUnlimitedFor_VideoHasNoExemptions(t *testing.T) {
	for _, tier := range AllPlanTiers {
		assert.False(t, IsUnlimitedFor(OpVideoGeneration, tier), "tier %s", tier)
	}
}

func TestIsUnlimitedFor_UnknownKindPanics(t *testing.T) {
	assert.Panics(t, func() {
		IsUnlimitedFor(OperationKind("stem_separation"), PlanFree)
	})
}

func TestParseMusicModel(t *testing.T) {
	m, err := ParseMusicModel("V4_5")
	require.NoError(t, err)
	assert.Equal(t, MusicModelV4_5, m)

	_, err = ParseMusicModel("v4")
	assert.Error(t, err)
}

func TestParseVideoResolution(t *testing.T) {
	r, err := ParseVideoResolution("1080p")
	require.NoError(t, err)
	assert.Equal(t, Resolution1080p, r)

	_, err = ParseVideoResolution("4k")
	assert.Error(t, err)
}

func TestParseImageEngine(t *testing.T) {
	e, err := ParseImageEngine("flux")
	require.NoError(t, err)
	assert.Equal(t, EngineFlux, e)

	_, err = ParseImageEngine("dalle")
	assert.Error(t, err)
}

func TestGenerationTask_Terminal(t *testing.T) {
	assert.False(t, (&GenerationTask{Status: TaskStatusPending}).Terminal())
	assert.False(t, (&GenerationTask{Status: TaskStatusProcessing}).Terminal())
	assert.True(t, (&GenerationTask{Status: TaskStatusComplete}).Terminal())
	assert.True(t, (&GenerationTask{Status: TaskStatusFailed}).Terminal())
}

func TestCreditBundle_TotalCredits(t *testing.T) {
	b := &CreditBundle{Credits: 350, BonusCredits: 50}
	assert.Equal(t, 400, b.TotalCredits())
}
