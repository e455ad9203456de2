// Package match ranks lobbies and invite candidates by reputation
// proximity: people team up best with peers of similar standing, so
// both orderings minimize |candidate score − viewer score|.
package match

import (
	"math"
	"sort"

	"github.com/teamforge/reputation-engine/pkg/models"
)

// Viewer roles within a lobby.
const (
	RoleLeader = "Leader"
	RoleMember = "Member"
)

// LobbyInfo is one lobby plus the membership facts ranking needs.
type LobbyInfo struct {
	Lobby             models.Lobby
	MemberIDs         []int64
	TeamLocked        bool
	JoinRequestStatus string // viewer's pending request status, "" if none
}

// RankedLobby is a lobby annotated for the viewer and ordered for display.
type RankedLobby struct {
	models.Lobby
	ParticipantCount  int      `json:"participantCount"`
	TeamLocked        bool     `json:"teamLocked"`
	Role              string   `json:"role,omitempty"`
	JoinRequestStatus string   `json:"joinRequestStatus,omitempty"`
	TeamReputation    float64  `json:"teamReputation"`
	RepDistance       *float64 `json:"repDistance,omitempty"`
}

// TeamReputation is the mean overall score of a team's members, 0 for an
// empty team, rounded to two decimals.
func TeamReputation(memberIDs []int64, overallByID map[int64]float64) float64 {
	if len(memberIDs) == 0 {
		return 0
	}
	sum := 0.0
	for _, id := range memberIDs {
		sum += overallByID[id]
	}
	return math.Round(sum/float64(len(memberIDs))*100) / 100
}

// RankLobbies annotates and orders lobbies for a viewer: joinable
// lobbies first, then by reputation distance between the viewer and the
// team average, then by the caller's baseline order (created_at
// descending) as a stable tiebreaker.
//
// A lobby is joinable when the viewer is neither leader nor member, the
// contest is not finished and the team is not locked. viewerID ≤ 0 means
// an anonymous viewer: annotations stay role-less and the baseline order
// is preserved.
func RankLobbies(viewerID int64, lobbies []LobbyInfo, overallByID map[int64]float64) []RankedLobby {
	ranked := make([]RankedLobby, len(lobbies))
	order := make([]int, len(lobbies))

	var viewerRep float64
	if viewerID > 0 {
		viewerRep = overallByID[viewerID]
	}

	for i, li := range lobbies {
		r := RankedLobby{
			Lobby:            li.Lobby,
			ParticipantCount: len(li.MemberIDs),
			TeamLocked:       li.TeamLocked,
			TeamReputation:   TeamReputation(li.MemberIDs, overallByID),
		}
		if viewerID > 0 {
			if li.Lobby.LeaderID == viewerID {
				r.Role = RoleLeader
			} else {
				for _, m := range li.MemberIDs {
					if m == viewerID {
						r.Role = RoleMember
						break
					}
				}
			}
			r.JoinRequestStatus = li.JoinRequestStatus
			dist := math.Round(math.Abs(r.TeamReputation-viewerRep)*100) / 100
			r.RepDistance = &dist
		}
		ranked[i] = r
		order[i] = i
	}

	if viewerID <= 0 {
		return ranked
	}

	joinBucket := func(r RankedLobby) int {
		if r.Role == "" && !r.Finished && !r.TeamLocked {
			return 0
		}
		return 1
	}

	sort.SliceStable(order, func(a, b int) bool {
		ra, rb := ranked[order[a]], ranked[order[b]]
		ba, bb := joinBucket(ra), joinBucket(rb)
		if ba != bb {
			return ba < bb
		}
		if *ra.RepDistance != *rb.RepDistance {
			return *ra.RepDistance < *rb.RepDistance
		}
		return order[a] < order[b]
	})

	out := make([]RankedLobby, len(ranked))
	for i, idx := range order {
		out[i] = ranked[idx]
	}
	return out
}
