package safety

import (
	"fmt"
	"strings"

	"hostel-backend/internal/domain"
	"hostel-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct{}

type scoreResult struct {
	Features []domain.SafetyFeature `json:"features"`
	Score    int                    `json:"score"`
	Level    domain.SafetyLevel     `json:"level"`
}

type featureWeight struct {
	Feature domain.SafetyFeature `json:"feature"`
	Weight  int                  `json:"weight"`
}

// GET /api/v1/safety/score?feature=CCTV&feature=Biometric (or feature=CCTV,Biometric)
func (h *Handlers) Score(c *fiber.Ctx) error {
	features := []domain.SafetyFeature{}
	for _, raw := range c.Context().QueryArgs().PeekMulti("feature") {
		for _, part := range strings.Split(string(raw), ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			f := domain.SafetyFeature(part)
			if !f.Known() {
				return response.DomainError(c, fmt.Errorf("%w: %q", domain.ErrUnknownFeature, part))
			}
			features = append(features, f)
		}
	}
	score := domain.Score(features)
	return response.Success(c, "Safety score computed", scoreResult{
		Features: features,
		Score:    score,
		Level:    domain.Classify(score),
	}, nil)
}

// GET /api/v1/safety/features
func (h *Handlers) Features(c *fiber.Ctx) error {
	all := domain.SafetyFeatures()
	out := make([]featureWeight, 0, len(all))
	for _, f := range all {
		out = append(out, featureWeight{Feature: f, Weight: f.Weight()})
	}
	return response.Success(c, "Safety features fetched successfully", out, fiber.Map{"maxScore": domain.MaxSafetyScore})
}
