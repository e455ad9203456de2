package trust

import (
	"math"
	"testing"

	"github.com/teamforge/reputation-engine/pkg/models"
)

func ip(v int) *int { return &v }

func idp(v int64) *int64 { return &v }

func rating(rater, target int64, contrib, comm int, wwa bool) models.Rating {
	return models.Rating{
		RaterID:        idp(rater),
		TargetUserID:   idp(target),
		Contribution:   ip(contrib),
		Communication:  ip(comm),
		WouldWorkAgain: wwa,
	}
}

func TestNormalizeRating_Bounds(t *testing.T) {
	// A perfect rating normalizes to exactly 1.
	if got := NormalizeRating(ip(10), ip(10), true); got != 1.0 {
		t.Errorf("perfect rating: got %v, want 1.0", got)
	}

	// An empty rating carries no edge mass.
	if got := NormalizeRating(nil, nil, false); got != 0.0 {
		t.Errorf("empty rating: got %v, want 0.0", got)
	}

	// Out-of-range axes clamp instead of failing.
	if got := NormalizeRating(ip(99), ip(-5), false); got != 1.0/3.0 {
		t.Errorf("clamped rating: got %v, want 1/3", got)
	}
}

func TestCollapse_DropsSelfAndNullAndZero(t *testing.T) {
	rows := []models.Rating{
		rating(1, 1, 10, 10, true),                       // self-rating
		{RaterID: nil, TargetUserID: idp(2)},             // null rater
		{RaterID: idp(1), TargetUserID: nil},             // null target
		rating(1, 2, 0, 0, false),                        // zero local trust
	}
	if edges := Collapse(rows); len(edges) != 0 {
		t.Fatalf("expected no edges, got %d", len(edges))
	}
}

func TestCollapse_AveragesDuplicatePairs(t *testing.T) {
	// Two A→B rows: local trusts 1.0 and (0.5+0.5+0)/3 = 1/3.
	rows := []models.Rating{
		rating(1, 2, 10, 10, true),
		rating(1, 2, 5, 5, false),
	}

	edges := Collapse(rows)
	if len(edges) != 1 {
		t.Fatalf("expected 1 collapsed edge, got %d", len(edges))
	}
	e := edges[0]
	if e.Count != 2 {
		t.Errorf("count: got %d, want 2", e.Count)
	}
	want := (1.0 + 1.0/3.0) / 2.0
	if math.Abs(e.Weight-want) > 1e-12 {
		t.Errorf("weight: got %v, want %v", e.Weight, want)
	}
	if e.ContributionAvg == nil || *e.ContributionAvg != 7.5 {
		t.Errorf("contribution avg: got %v, want 7.5", e.ContributionAvg)
	}
	if e.CommunicationAvg == nil || *e.CommunicationAvg != 7.5 {
		t.Errorf("communication avg: got %v, want 7.5", e.CommunicationAvg)
	}
	if e.WouldWorkAgainRatio != 0.5 {
		t.Errorf("wwa ratio: got %v, want 0.5", e.WouldWorkAgainRatio)
	}
}

func TestCollapse_MissingAxisOmittedFromAverages(t *testing.T) {
	rows := []models.Rating{
		{RaterID: idp(1), TargetUserID: idp(2), Contribution: ip(8), WouldWorkAgain: true},
	}
	edges := Collapse(rows)
	if len(edges) != 1 {
		t.Fatalf("expected 1 edge, got %d", len(edges))
	}
	if edges[0].CommunicationAvg != nil {
		t.Errorf("communication avg should be nil when no row answered the axis")
	}
	if edges[0].ContributionAvg == nil || *edges[0].ContributionAvg != 8.0 {
		t.Errorf("contribution avg: got %v, want 8.0", edges[0].ContributionAvg)
	}
}

func TestCollapse_OrderInsensitive(t *testing.T) {
	rows := []models.Rating{
		rating(1, 2, 10, 10, true),
		rating(2, 3, 7, 6, false),
		rating(1, 2, 4, 4, true),
		rating(3, 1, 9, 9, true),
	}
	reversed := make([]models.Rating, len(rows))
	for i, r := range rows {
		reversed[len(rows)-1-i] = r
	}

	a := Collapse(rows)
	b := Collapse(reversed)
	if len(a) != len(b) {
		t.Fatalf("edge counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Rater != b[i].Rater || a[i].Target != b[i].Target ||
			math.Abs(a[i].Weight-b[i].Weight) > 1e-12 || a[i].Count != b[i].Count {
			t.Errorf("edge %d differs between orderings: %+v vs %+v", i, a[i], b[i])
		}
	}
}
