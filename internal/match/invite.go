package match

import (
	"math"
	"sort"
	"strings"

	"github.com/teamforge/reputation-engine/pkg/models"
)

// MaxInviteCandidates caps how many suggestions a leader sees at once.
const MaxInviteCandidates = 5

// Candidate is one suggested invitee with their reputation distance to
// the leader.
type Candidate struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Reputation float64 `json:"reputation"`
	Distance   float64 `json:"distance"`
}

// InviteCandidates scores eligible users against the leader's overall
// reputation and returns the closest MaxInviteCandidates, ties broken by
// case-insensitive name. Callers exclude current members, the leader and
// already-invited users before calling.
func InviteCandidates(leaderID int64, eligible []models.User, overallByID map[int64]float64) []Candidate {
	leaderRep := overallByID[leaderID]

	scored := make([]Candidate, 0, len(eligible))
	for _, u := range eligible {
		rep := overallByID[u.ID]
		scored = append(scored, Candidate{
			ID:         u.ID,
			Name:       u.Name,
			Email:      u.Email,
			Reputation: rep,
			Distance:   math.Round(math.Abs(rep-leaderRep)*100) / 100,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Distance != scored[j].Distance {
			return scored[i].Distance < scored[j].Distance
		}
		return strings.ToLower(scored[i].Name) < strings.ToLower(scored[j].Name)
	})

	if len(scored) > MaxInviteCandidates {
		scored = scored[:MaxInviteCandidates]
	}
	return scored
}
