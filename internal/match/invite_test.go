package match

import (
	"testing"

	"github.com/teamforge/reputation-engine/pkg/models"
)

func user(id int64, name string) models.User {
	return models.User{ID: id, Name: name, Email: name + "@example.com"}
}

func TestInviteCandidates_ClosestFirst(t *testing.T) {
	scores := map[int64]float64{1: 5.0, 2: 4.5, 3: 9.0, 4: 5.2}
	eligible := []models.User{user(2, "Bob"), user(3, "Carol"), user(4, "Dave")}

	got := InviteCandidates(1, eligible, scores)
	if len(got) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(got))
	}
	if got[0].ID != 4 || got[1].ID != 2 || got[2].ID != 3 {
		t.Errorf("order: got %d,%d,%d, want 4,2,3", got[0].ID, got[1].ID, got[2].ID)
	}
	if got[0].Distance != 0.2 {
		t.Errorf("distance: got %v, want 0.2", got[0].Distance)
	}
}

func TestInviteCandidates_TieBreaksOnName(t *testing.T) {
	scores := map[int64]float64{1: 5.0, 2: 6.0, 3: 4.0}
	eligible := []models.User{user(2, "zoe"), user(3, "Adam")}

	got := InviteCandidates(1, eligible, scores)
	if got[0].Name != "Adam" {
		t.Errorf("equal distances must tie-break case-insensitively on name, got %q first", got[0].Name)
	}
}

func TestInviteCandidates_CapsAtFive(t *testing.T) {
	scores := map[int64]float64{}
	eligible := make([]models.User, 8)
	for i := range eligible {
		eligible[i] = user(int64(i+2), string(rune('a'+i)))
	}

	got := InviteCandidates(1, eligible, scores)
	if len(got) != MaxInviteCandidates {
		t.Errorf("expected cap of %d, got %d", MaxInviteCandidates, len(got))
	}
}

func TestInviteCandidates_EmptyPool(t *testing.T) {
	if got := InviteCandidates(1, nil, map[int64]float64{1: 5}); len(got) != 0 {
		t.Errorf("expected no candidates, got %v", got)
	}
}
