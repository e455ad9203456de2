package trust

import (
	"context"
	"math"
	"testing"

	"github.com/teamforge/reputation-engine/pkg/models"
)

func TestReputation_NoIncomingRows(t *testing.T) {
	rep := Reputation(1, nil, map[int64]float64{1: 1.0})
	if rep.ContributionAvg != 0 || rep.CommunicationAvg != 0 {
		t.Errorf("averages should be 0, got %+v", rep)
	}
	if rep.WouldWorkAgainRatio != nil {
		t.Errorf("wwa ratio should be nil, got %v", *rep.WouldWorkAgainRatio)
	}
	if rep.RatingCount != 0 {
		t.Errorf("rating count should be 0, got %d", rep.RatingCount)
	}
}

func TestReputation_Star(t *testing.T) {
	// Scenario 2: two perfect ratings from equally trusted raters.
	rows := []models.Rating{
		rating(1, 2, 10, 10, true),
		rating(3, 2, 10, 10, true),
	}
	scores := ComputeTrust(context.Background(), []int64{1, 2, 3}, Collapse(rows))

	rep := Reputation(2, rows, scores)
	if rep.ContributionAvg != 10.0 {
		t.Errorf("contribution avg: got %v, want 10.0", rep.ContributionAvg)
	}
	if rep.CommunicationAvg != 10.0 {
		t.Errorf("communication avg: got %v, want 10.0", rep.CommunicationAvg)
	}
	if rep.WouldWorkAgainRatio == nil || *rep.WouldWorkAgainRatio != 1.0 {
		t.Errorf("wwa ratio: got %v, want 1.0", rep.WouldWorkAgainRatio)
	}
	if rep.RatingCount != 2 {
		t.Errorf("rating count: got %d, want 2", rep.RatingCount)
	}
	if got := Overall(rep); got != 10.0 {
		t.Errorf("overall: got %v, want 10.0", got)
	}
}

func TestReputation_DuplicateImmunity(t *testing.T) {
	// Scenario 3: a duplicate row raises the count but cannot shift the
	// averages — the rater's opinion is collapsed before weighting.
	base := []models.Rating{
		rating(1, 2, 10, 10, true),
		rating(3, 2, 10, 10, true),
	}
	withDup := append(append([]models.Rating{}, base...), rating(1, 2, 10, 10, true))

	scores := ComputeTrust(context.Background(), []int64{1, 2, 3}, Collapse(base))
	before := Reputation(2, base, scores)
	after := Reputation(2, withDup, scores)

	if before.ContributionAvg != after.ContributionAvg ||
		before.CommunicationAvg != after.CommunicationAvg {
		t.Errorf("averages moved on duplicate: %+v → %+v", before, after)
	}
	if *before.WouldWorkAgainRatio != *after.WouldWorkAgainRatio {
		t.Errorf("wwa ratio moved on duplicate")
	}
	if after.RatingCount != before.RatingCount+1 {
		t.Errorf("rating count: got %d, want %d", after.RatingCount, before.RatingCount+1)
	}
}

func TestReputation_SelfRatingsNotCounted(t *testing.T) {
	rows := []models.Rating{
		rating(1, 2, 8, 8, true),
		rating(2, 2, 10, 10, true), // self-rating must be invisible
	}
	scores := map[int64]float64{1: 0.5, 2: 0.5}

	rep := Reputation(2, rows, scores)
	if rep.RatingCount != 1 {
		t.Errorf("rating count: got %d, want 1", rep.RatingCount)
	}
	if rep.ContributionAvg != 8.0 {
		t.Errorf("contribution avg: got %v, want 8.0", rep.ContributionAvg)
	}
}

func TestReputation_TrustWeighting(t *testing.T) {
	// A highly trusted rater says 10, a barely trusted one says 0.
	// The weighted mean must sit near the trusted opinion:
	// (0.9·10 + 0.1·0) / 1.0 = 9.0.
	rows := []models.Rating{
		rating(1, 3, 10, 10, true),
		rating(2, 3, 0, 0, true), // wwa=true keeps the row's local > 0
	}
	scores := map[int64]float64{1: 0.9, 2: 0.1, 3: 0.0}

	rep := Reputation(3, rows, scores)
	if math.Abs(rep.ContributionAvg-9.0) > 1e-9 {
		t.Errorf("contribution avg: got %v, want 9.0", rep.ContributionAvg)
	}
	if rep.WouldWorkAgainRatio == nil || math.Abs(*rep.WouldWorkAgainRatio-1.0) > 1e-9 {
		t.Errorf("wwa ratio: got %v, want 1.0", rep.WouldWorkAgainRatio)
	}
}

func TestReputation_ZeroTrustRaterIgnored(t *testing.T) {
	rows := []models.Rating{
		rating(1, 3, 10, 10, true),
		rating(2, 3, 0, 0, false),
	}
	scores := map[int64]float64{1: 1.0, 2: 0.0, 3: 0.0}

	rep := Reputation(3, rows, scores)
	if rep.ContributionAvg != 10.0 {
		t.Errorf("zero-trust rater leaked into average: got %v", rep.ContributionAvg)
	}
	if rep.RatingCount != 2 {
		t.Errorf("rating count stays raw: got %d, want 2", rep.RatingCount)
	}
}

func TestReputation_Cycle(t *testing.T) {
	// Scenario 4: everyone rates their successor 8/6/true.
	rows := []models.Rating{
		rating(1, 2, 8, 6, true),
		rating(2, 3, 8, 6, true),
		rating(3, 1, 8, 6, true),
	}
	scores := ComputeTrust(context.Background(), []int64{1, 2, 3}, Collapse(rows))

	for _, id := range []int64{1, 2, 3} {
		rep := Reputation(id, rows, scores)
		if rep.ContributionAvg != 8.0 || rep.CommunicationAvg != 6.0 {
			t.Errorf("user %d: got %+v, want 8.0/6.0", id, rep)
		}
		if rep.WouldWorkAgainRatio == nil || *rep.WouldWorkAgainRatio != 1.0 {
			t.Errorf("user %d: wwa ratio should be 1.0", id)
		}
		if rep.RatingCount != 1 {
			t.Errorf("user %d: rating count should be 1", id)
		}
	}
}

func TestOverall_Bounds(t *testing.T) {
	ratio := 1.0
	cases := []models.Reputation{
		{},
		{ContributionAvg: 10, CommunicationAvg: 10, WouldWorkAgainRatio: &ratio},
		{ContributionAvg: 99, CommunicationAvg: -3},
		{ContributionAvg: 5.55, CommunicationAvg: 3.33},
	}
	for _, rep := range cases {
		got := Overall(rep)
		if got < 0 || got > 10 {
			t.Errorf("overall out of range for %+v: %v", rep, got)
		}
	}
}

func TestOverallRatio_PreScaling(t *testing.T) {
	ratio := 1.0
	rep := models.Reputation{ContributionAvg: 10, CommunicationAvg: 10, WouldWorkAgainRatio: &ratio}
	if got := OverallRatio(rep); got != 1.0 {
		t.Errorf("overall ratio: got %v, want 1.0", got)
	}

	// Nil wwa ratio counts as 0, matching the graph export.
	rep.WouldWorkAgainRatio = nil
	if got := OverallRatio(rep); math.Abs(got-2.0/3.0) > 1e-12 {
		t.Errorf("overall ratio: got %v, want 2/3", got)
	}
}
