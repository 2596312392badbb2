package models

import "fmt"

// PlanTier is the subscription level of an account.
type PlanTier string

const (
	PlanFree      PlanTier = "free"
	PlanStudio    PlanTier = "studio"
	PlanCreator   PlanTier = "creator"
	PlanAllAccess PlanTier = "all_access"
)

// AllPlanTiers lists every valid tier, used for catalog endpoints and tests.
var AllPlanTiers = []PlanTier{PlanFree, PlanStudio, PlanCreator, PlanAllAccess}

func (t PlanTier) Valid() bool {
	switch t {
	case PlanFree, PlanStudio, PlanCreator, PlanAllAccess:
		return true
	}
	return false
}

// Dimension names a plan-restricted request parameter.
type Dimension string

const (
	DimensionMusicModel      Dimension = "music_model"
	DimensionVideoResolution Dimension = "video_resolution"
	DimensionImageEngine     Dimension = "image_engine"
)

// PlanFeature names a boolean plan flag.
type PlanFeature string

const (
	FeatureWAVConversion     PlanFeature = "wav_conversion"
	FeatureCommercialLicense PlanFeature = "commercial_license"
	FeatureAPIAccess         PlanFeature = "api_access"
)

// CreditAllowance is the daily credit grant of a plan: either a metered
// per-day amount or unlimited. Modeled as an explicit variant instead of a
// numeric sentinel so callers cannot compare against magic values.
type CreditAllowance struct {
	Unlimited bool `json:"unlimited"`
	PerDay    int  `json:"per_day"`
}

func Metered(perDay int) CreditAllowance {
	return CreditAllowance{PerDay: perDay}
}

func Unlimited() CreditAllowance {
	return CreditAllowance{Unlimited: true}
}

// PlanDefinition is the immutable capability set of one plan tier.
type PlanDefinition struct {
	Tier              PlanTier          `json:"tier"`
	MusicModels       []MusicModel      `json:"music_models"`
	VideoResolutions  []VideoResolution `json:"video_resolutions"`
	ImageEngines      []ImageEngine     `json:"image_engines"`
	WAVConversion     bool              `json:"wav_conversion"`
	CommercialLicense bool              `json:"commercial_license"`
	APIAccess         bool              `json:"api_access"`
	DailyAllowance    CreditAllowance   `json:"daily_allowance"`
}

// planCatalog is the single source of truth for what each tier allows.
// Defined at process start, never mutated at runtime.
var planCatalog = map[PlanTier]PlanDefinition{
	PlanFree: {
		Tier:             PlanFree,
		MusicModels:      []MusicModel{MusicModelV3_5, MusicModelV4},
		VideoResolutions: []VideoResolution{Resolution480p},
		ImageEngines:     []ImageEngine{EngineClassic},
		DailyAllowance:   Metered(50),
	},
	PlanStudio: {
		Tier:             PlanStudio,
		MusicModels:      []MusicModel{MusicModelV3_5, MusicModelV4, MusicModelV4_5},
		VideoResolutions: []VideoResolution{Resolution480p, Resolution720p},
		ImageEngines:     []ImageEngine{EngineClassic, EngineFlux},
		WAVConversion:    true,
		DailyAllowance:   Metered(2500),
	},
	PlanCreator: {
		Tier:              PlanCreator,
		MusicModels:       []MusicModel{MusicModelV3_5, MusicModelV4, MusicModelV4_5, MusicModelV5},
		VideoResolutions:  []VideoResolution{Resolution480p, Resolution720p, Resolution1080p},
		ImageEngines:      []ImageEngine{EngineClassic, EngineFlux},
		WAVConversion:     true,
		CommercialLicense: true,
		DailyAllowance:    Metered(10000),
	},
	PlanAllAccess: {
		Tier:              PlanAllAccess,
		MusicModels:       []MusicModel{MusicModelV3_5, MusicModelV4, MusicModelV4_5, MusicModelV5},
		VideoResolutions:  []VideoResolution{Resolution480p, Resolution720p, Resolution1080p},
		ImageEngines:      []ImageEngine{EngineClassic, EngineFlux},
		WAVConversion:     true,
		CommercialLicense: true,
		APIAccess:         true,
		DailyAllowance:    Unlimited(),
	},
}

// CapabilitiesFor returns the plan definition for the given tier.
// An unknown tier is a programming error and panics.
func CapabilitiesFor(tier PlanTier) PlanDefinition {
	def, ok := planCatalog[tier]
	if !ok {
		panic(fmt.Sprintf("models: unknown plan tier %q", tier))
	}
	return def
}
