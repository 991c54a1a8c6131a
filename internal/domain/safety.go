package domain

// SafetyFeature is one entry of the fixed safety vocabulary a warden can declare on a listing.
type SafetyFeature string

const (
	FeatureCCTV             SafetyFeature = "CCTV"
	FeatureSecurityGuard    SafetyFeature = "Security Guard"
	FeatureBiometric        SafetyFeature = "Biometric"
	FeatureFireExtinguisher SafetyFeature = "Fire Extinguisher"
)

// MaxSafetyScore caps the sum of feature weights.
const MaxSafetyScore = 100

var safetyWeights = map[SafetyFeature]int{
	FeatureCCTV:             30,
	FeatureSecurityGuard:    40,
	FeatureBiometric:        20,
	FeatureFireExtinguisher: 10,
}

// SafetyFeatures returns the vocabulary in display order.
func SafetyFeatures() []SafetyFeature {
	return []SafetyFeature{FeatureCCTV, FeatureSecurityGuard, FeatureBiometric, FeatureFireExtinguisher}
}

// Weight returns the points the feature contributes, 0 for unknown features.
func (f SafetyFeature) Weight() int {
	return safetyWeights[f]
}

// Known reports whether f is part of the vocabulary.
func (f SafetyFeature) Known() bool {
	_, ok := safetyWeights[f]
	return ok
}

// Score maps a feature set to [0, MaxSafetyScore]. Unknown features are ignored and a feature
// listed twice counts once. The sum is clamped, never wrapped.
func Score(features []SafetyFeature) int {
	seen := make(map[SafetyFeature]struct{}, len(features))
	total := 0
	for _, f := range features {
		w, ok := safetyWeights[f]
		if !ok {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		total += w
	}
	if total > MaxSafetyScore {
		return MaxSafetyScore
	}
	return total
}

type SafetyTier string

const (
	TierHigh     SafetyTier = "high"
	TierModerate SafetyTier = "moderate"
	TierLow      SafetyTier = "low"
)

// SafetyLevel is the qualitative reading of a score.
type SafetyLevel struct {
	Tier  SafetyTier `json:"tier"`
	Label string     `json:"label"`
}

// Classify buckets a score: >= 80 high, 50..79 moderate, below 50 low.
func Classify(score int) SafetyLevel {
	switch {
	case score >= 80:
		return SafetyLevel{Tier: TierHigh, Label: "Extremely Safe"}
	case score >= 50:
		return SafetyLevel{Tier: TierModerate, Label: "Moderate Safety"}
	default:
		return SafetyLevel{Tier: TierLow, Label: "Incomplete Safety"}
	}
}
