package match

import (
	"testing"
	"time"

	"github.com/teamforge/reputation-engine/pkg/models"
)

func lobby(id, leader int64, finished bool) models.Lobby {
	return models.Lobby{
		ID:        id,
		Title:     "lobby",
		LeaderID:  leader,
		Finished:  finished,
		CreatedAt: time.Unix(1700000000+id, 0),
	}
}

func TestTeamReputation(t *testing.T) {
	scores := map[int64]float64{1: 4.0, 2: 6.0}

	if got := TeamReputation(nil, scores); got != 0 {
		t.Errorf("empty team: got %v, want 0", got)
	}
	if got := TeamReputation([]int64{1, 2}, scores); got != 5.0 {
		t.Errorf("mean: got %v, want 5.0", got)
	}
	// Unknown members count as 0.
	if got := TeamReputation([]int64{1, 99}, scores); got != 2.0 {
		t.Errorf("unknown member: got %v, want 2.0", got)
	}
}

func TestRankLobbies_JoinableClosestFirst(t *testing.T) {
	// Viewer reputation 5.0. L1 joinable at distance 0.2, L2 joinable at
	// distance 4.0, L3 has the viewer as a member. Expected: L1, L2, L3.
	viewer := int64(100)
	scores := map[int64]float64{100: 5.0, 1: 4.8, 2: 9.0, 3: 5.0}

	infos := []LobbyInfo{
		{Lobby: lobby(10, 1, false), MemberIDs: []int64{1}},
		{Lobby: lobby(11, 2, false), MemberIDs: []int64{2}},
		{Lobby: lobby(12, 3, false), MemberIDs: []int64{3, 100}},
	}

	ranked := RankLobbies(viewer, infos, scores)
	want := []int64{10, 11, 12}
	for i, id := range want {
		if ranked[i].ID != id {
			t.Fatalf("position %d: got lobby %d, want %d (order %v)", i, ranked[i].ID, id, ranked)
		}
	}
	if ranked[2].Role != RoleMember {
		t.Errorf("viewer should be Member of lobby 12, got %q", ranked[2].Role)
	}
	if *ranked[0].RepDistance != 0.2 {
		t.Errorf("rep distance: got %v, want 0.2", *ranked[0].RepDistance)
	}
}

func TestRankLobbies_FinishedAndLockedAreNotJoinable(t *testing.T) {
	viewer := int64(100)
	scores := map[int64]float64{100: 5.0, 1: 5.0, 2: 5.0, 3: 0.0}

	infos := []LobbyInfo{
		{Lobby: lobby(10, 1, true), MemberIDs: []int64{1}},                   // finished
		{Lobby: lobby(11, 2, false), MemberIDs: []int64{2}, TeamLocked: true}, // locked
		{Lobby: lobby(12, 3, false), MemberIDs: []int64{3}},                  // joinable, distance 5.0
	}

	ranked := RankLobbies(viewer, infos, scores)
	if ranked[0].ID != 12 {
		t.Errorf("only joinable lobby should rank first despite its distance, got %d", ranked[0].ID)
	}
}

func TestRankLobbies_LeaderIsNotJoinable(t *testing.T) {
	viewer := int64(1)
	scores := map[int64]float64{1: 5.0, 2: 5.0}

	infos := []LobbyInfo{
		{Lobby: lobby(10, 1, false), MemberIDs: []int64{1}},
		{Lobby: lobby(11, 2, false), MemberIDs: []int64{2}},
	}

	ranked := RankLobbies(viewer, infos, scores)
	if ranked[0].ID != 11 {
		t.Errorf("viewer-led lobby must sort behind joinable ones, got %d first", ranked[0].ID)
	}
	if ranked[1].Role != RoleLeader {
		t.Errorf("expected Leader role, got %q", ranked[1].Role)
	}
}

func TestRankLobbies_TiesKeepBaselineOrder(t *testing.T) {
	viewer := int64(100)
	scores := map[int64]float64{100: 5.0, 1: 5.0, 2: 5.0}

	infos := []LobbyInfo{
		{Lobby: lobby(10, 1, false), MemberIDs: []int64{1}},
		{Lobby: lobby(11, 2, false), MemberIDs: []int64{2}},
	}

	ranked := RankLobbies(viewer, infos, scores)
	if ranked[0].ID != 10 || ranked[1].ID != 11 {
		t.Errorf("equal distances must preserve baseline order, got %d,%d", ranked[0].ID, ranked[1].ID)
	}
}

func TestRankLobbies_AnonymousViewerKeepsBaseline(t *testing.T) {
	scores := map[int64]float64{1: 9.0, 2: 1.0}

	infos := []LobbyInfo{
		{Lobby: lobby(10, 1, false), MemberIDs: []int64{1}},
		{Lobby: lobby(11, 2, false), MemberIDs: []int64{2}},
	}

	ranked := RankLobbies(0, infos, scores)
	if ranked[0].ID != 10 || ranked[1].ID != 11 {
		t.Errorf("anonymous viewer must keep baseline order, got %d,%d", ranked[0].ID, ranked[1].ID)
	}
	if ranked[0].RepDistance != nil {
		t.Errorf("anonymous viewer should get no rep distance")
	}
	if ranked[0].TeamReputation != 9.0 {
		t.Errorf("team reputation still annotated: got %v, want 9.0", ranked[0].TeamReputation)
	}
}

func TestRankLobbies_PendingJoinRequestAnnotated(t *testing.T) {
	viewer := int64(100)
	scores := map[int64]float64{100: 5.0, 1: 5.0}

	infos := []LobbyInfo{
		{Lobby: lobby(10, 1, false), MemberIDs: []int64{1}, JoinRequestStatus: models.StatusPending},
	}

	ranked := RankLobbies(viewer, infos, scores)
	if ranked[0].JoinRequestStatus != models.StatusPending {
		t.Errorf("join request status lost: got %q", ranked[0].JoinRequestStatus)
	}
}
