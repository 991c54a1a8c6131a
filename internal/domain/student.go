package domain

// Habits is the fixed lifestyle vector used for roommate matching.
type Habits struct {
	EarlyRiser  bool `json:"earlyRiser" yaml:"early_riser"`
	NightOwl    bool `json:"nightOwl" yaml:"night_owl"`
	Clean       bool `json:"clean" yaml:"clean"`
	PartyPerson bool `json:"partyPerson" yaml:"party_person"`
}

type StudentProfile struct {
	ID     string `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Habits Habits `json:"habits" yaml:"habits"`
	Bio    string `json:"bio" yaml:"bio"`
}

const (
	matchBase       = 50
	matchEarlyRiser = 15
	matchClean      = 15
	matchNightOwl   = 10
	matchParty      = 10
	maxMatchScore   = 100
)

// MatchScore rates roommate compatibility from shared habits, capped at 100.
func MatchScore(a, b StudentProfile) int {
	score := matchBase
	if a.Habits.EarlyRiser == b.Habits.EarlyRiser {
		score += matchEarlyRiser
	}
	if a.Habits.Clean == b.Habits.Clean {
		score += matchClean
	}
	if a.Habits.NightOwl == b.Habits.NightOwl {
		score += matchNightOwl
	}
	if a.Habits.PartyPerson == b.Habits.PartyPerson {
		score += matchParty
	}
	return min(score, maxMatchScore)
}

type RoommateMatch struct {
	Student StudentProfile `json:"student"`
	Score   int            `json:"score"`
}
