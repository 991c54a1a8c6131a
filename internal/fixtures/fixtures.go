// Package fixtures loads the seed state used when no snapshot has been persisted yet.
package fixtures

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"hostel-backend/internal/domain"

	"gopkg.in/yaml.v3"
)

//go:embed fixtures.yaml
var defaultFixture []byte

// Fixture is the seed: the initial snapshot plus the read-only student profiles.
type Fixture struct {
	Snapshot domain.Snapshot
	Students []domain.StudentProfile
}

type seedApplication struct {
	ID        string                   `yaml:"id"`
	StudentID string                   `yaml:"student_id"`
	ListingID string                   `yaml:"listing_id"`
	Status    domain.ApplicationStatus `yaml:"status"`
	Age       string                   `yaml:"age"`
}

type seedFile struct {
	Listings     []domain.Listing        `yaml:"listings"`
	Students     []domain.StudentProfile `yaml:"students"`
	Applications []seedApplication       `yaml:"applications"`
}

// Default returns the embedded fixture. Application timestamps are relative to now.
func Default(now time.Time) (Fixture, error) {
	return Parse(defaultFixture, now)
}

// Load reads a fixture from path, or the embedded one when path is empty.
func Load(path string, now time.Time) (Fixture, error) {
	if path == "" {
		return Default(now)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data, now)
}

// Parse decodes a YAML fixture, derives safety scores and validates every listing.
func Parse(data []byte, now time.Time) (Fixture, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Fixture{}, fmt.Errorf("decode seed: %w", err)
	}
	out := Fixture{
		Snapshot: domain.Snapshot{
			Listings:     make([]domain.Listing, 0, len(f.Listings)),
			Applications: make([]domain.Application, 0, len(f.Applications)),
		},
		Students: f.Students,
	}
	for _, l := range f.Listings {
		if l.Floors == nil {
			l.Floors = []domain.Floor{}
		}
		l.SafetyScore = domain.Score(l.SafetyFeatures)
		if err := l.Validate(); err != nil {
			return Fixture{}, fmt.Errorf("seed listing %s: %w", l.ID, err)
		}
		out.Snapshot.Listings = append(out.Snapshot.Listings, l)
	}
	for _, a := range f.Applications {
		var age time.Duration
		if a.Age != "" {
			d, err := time.ParseDuration(a.Age)
			if err != nil {
				return Fixture{}, fmt.Errorf("seed application %s age: %w", a.ID, err)
			}
			age = d
		}
		out.Snapshot.Applications = append(out.Snapshot.Applications, domain.Application{
			ID:        a.ID,
			StudentID: a.StudentID,
			ListingID: a.ListingID,
			Status:    a.Status,
			CreatedAt: now.Add(-age).UTC(),
		})
	}
	return out, nil
}
