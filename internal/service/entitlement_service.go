package service

import (
	"github.com/melodia/melodia-backend/internal/models"
)

// EntitlementService is the guard between an incoming request and the credit
// ledger: it rejects parameter values the account's plan does not allow.
// It is pure over the static plan catalog and must run before any ledger
// call, so a disallowed request never consumes credits.
type EntitlementService struct{}

func NewEntitlementService() *EntitlementService {
	return &EntitlementService{}
}

// Validate returns nil when the requested value is allowed for the tier, or
// a denial carrying the allowed set for the client's upgrade prompt.
func (s *EntitlementService) Validate(tier models.PlanTier, dimension models.Dimension, requested string) *EntitlementDenial {
	allowed := s.AllowedValues(tier, dimension)
	for _, v := range allowed {
		if v == requested {
			return nil
		}
	}
	return &EntitlementDenial{
		Dimension: dimension,
		Requested: requested,
		PlanTier:  tier,
		Allowed:   allowed,
	}
}

// AllowedValues lists the values the tier may use for a dimension.
func (s *EntitlementService) AllowedValues(tier models.PlanTier, dimension models.Dimension) []string {
	def := models.CapabilitiesFor(tier)
	switch dimension {
	case models.DimensionMusicModel:
		out := make([]string, len(def.MusicModels))
		for i, m := range def.MusicModels {
			out[i] = string(m)
		}
		return out
	case models.DimensionVideoResolution:
		out := make([]string, len(def.VideoResolutions))
		for i, r := range def.VideoResolutions {
			out[i] = string(r)
		}
		return out
	case models.DimensionImageEngine:
		out := make([]string, len(def.ImageEngines))
		for i, e := range def.ImageEngines {
			out[i] = string(e)
		}
		return out
	}
	return nil
}

// FeatureEnabled reports whether a boolean plan flag is on for the tier.
func (s *EntitlementService) FeatureEnabled(tier models.PlanTier, feature models.PlanFeature) bool {
	def := models.CapabilitiesFor(tier)
	switch feature {
	case models.FeatureWAVConversion:
		return def.WAVConversion
	case models.FeatureCommercialLicense:
		return def.CommercialLicense
	case models.FeatureAPIAccess:
		return def.APIAccess
	}
	return false
}

// Capabilities exposes the full catalog for the client capability endpoints.
func (s *EntitlementService) Capabilities() []models.PlanDefinition {
	out := make([]models.PlanDefinition, 0, len(models.AllPlanTiers))
	for _, tier := range models.AllPlanTiers {
		out = append(out, models.CapabilitiesFor(tier))
	}
	return out
}
