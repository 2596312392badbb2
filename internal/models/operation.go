package models

import "fmt"

// OperationKind is a category of paid action with a fixed server-side cost.
// Costs are never supplied by the client.
type OperationKind string

const (
	OpMusicGeneration  OperationKind = "music_generation"
	OpMusicExtension   OperationKind = "music_extension"
	OpWAVConversion    OperationKind = "wav_conversion"
	OpVideoGeneration  OperationKind = "video_generation"
	OpImageGeneration  OperationKind = "image_generation"
	OpLyricsGeneration OperationKind = "lyrics_generation"
)

// ServiceCost maps one operation kind to its credit cost and the tiers that
// are exempt from metering for it.
type ServiceCost struct {
	Credits        int        `json:"credits"`
	UnlimitedTiers []PlanTier `json:"unlimited_tiers"`
}

var serviceCosts = map[OperationKind]ServiceCost{
	OpMusicGeneration: {
		Credits:        5,
		UnlimitedTiers: []PlanTier{PlanStudio, PlanCreator, PlanAllAccess},
	},
	OpMusicExtension: {
		Credits:        3,
		UnlimitedTiers: []PlanTier{PlanCreator, PlanAllAccess},
	},
	OpWAVConversion: {
		Credits:        2,
		UnlimitedTiers: []PlanTier{PlanAllAccess},
	},
	OpVideoGeneration: {
		Credits: 10,
	},
	OpImageGeneration: {
		Credits:        3,
		UnlimitedTiers: []PlanTier{PlanAllAccess},
	},
	OpLyricsGeneration: {
		Credits:        1,
		UnlimitedTiers: []PlanTier{PlanStudio, PlanCreator, PlanAllAccess},
	},
}

// CostOf returns the credit cost of an operation kind.
// An unknown kind is a programming error and panics.
func CostOf(kind OperationKind) int {
	cost, ok := serviceCosts[kind]
	if !ok {
		panic(fmt.Sprintf("models: unknown operation kind %q", kind))
	}
	return cost.Credits
}

// IsUnlimitedFor reports whether the given tier is exempt from metering for
// the given operation kind.
func IsUnlimitedFor(kind OperationKind, tier PlanTier) bool {
	cost, ok := serviceCosts[kind]
	if !ok {
		panic(fmt.Sprintf("models: unknown operation kind %q", kind))
	}
	for _, t := range cost.UnlimitedTiers {
		if t == tier {
			return true
		}
	}
	return false
}
