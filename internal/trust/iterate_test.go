package trust

import (
	"context"
	"math"
	"testing"

	"github.com/teamforge/reputation-engine/pkg/models"
)

// checkDistribution asserts the universal trust vector invariants:
// every component nonnegative, total mass 1.
func checkDistribution(t *testing.T, scores map[int64]float64) {
	t.Helper()
	sum := 0.0
	for id, v := range scores {
		if v < 0 {
			t.Errorf("trust[%d] = %v, want >= 0", id, v)
		}
		sum += v
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("trust mass: got %v, want 1.0", sum)
	}
}

func TestComputeTrust_EmptyUserSet(t *testing.T) {
	scores := ComputeTrust(context.Background(), nil, nil)
	if len(scores) != 0 {
		t.Errorf("expected empty vector, got %v", scores)
	}
}

func TestComputeTrust_NoEdgesIsUniform(t *testing.T) {
	// Scenario 1: 3 users, 0 ratings → 1/3 each.
	scores := ComputeTrust(context.Background(), []int64{1, 2, 3}, nil)
	checkDistribution(t, scores)
	for id, v := range scores {
		if math.Abs(v-1.0/3.0) > 1e-12 {
			t.Errorf("trust[%d] = %v, want 1/3", id, v)
		}
	}
}

func TestComputeTrust_Star(t *testing.T) {
	// Scenario 2: A→B and C→B with perfect ratings. B accumulates the
	// edge mass; A and C stay symmetric.
	rows := []models.Rating{
		rating(1, 2, 10, 10, true),
		rating(3, 2, 10, 10, true),
	}
	scores := ComputeTrust(context.Background(), []int64{1, 2, 3}, Collapse(rows))
	checkDistribution(t, scores)

	if scores[2] <= scores[1] || scores[2] <= scores[3] {
		t.Errorf("expected B to dominate: got %v", scores)
	}
	if math.Abs(scores[1]-scores[3]) > 1e-12 {
		t.Errorf("A and C should be equal: %v vs %v", scores[1], scores[3])
	}

	// Analytic fixed point: b = 2.7a, 2a + b = 1 → b = 2.7/4.7.
	if math.Abs(scores[2]-2.7/4.7) > 1e-3 {
		t.Errorf("trust[B]: got %v, want ≈ %v", scores[2], 2.7/4.7)
	}
}

func TestComputeTrust_DuplicateRowDoesNotMove(t *testing.T) {
	// Scenario 3: an exact duplicate row collapses into the same edge,
	// so the vector must not move.
	base := []models.Rating{
		rating(1, 2, 10, 10, true),
		rating(3, 2, 10, 10, true),
	}
	withDup := append(append([]models.Rating{}, base...), rating(1, 2, 10, 10, true))

	a := ComputeTrust(context.Background(), []int64{1, 2, 3}, Collapse(base))
	b := ComputeTrust(context.Background(), []int64{1, 2, 3}, Collapse(withDup))
	for id := range a {
		if math.Abs(a[id]-b[id]) > 1e-9 {
			t.Errorf("trust[%d] moved on duplicate: %v → %v", id, a[id], b[id])
		}
	}
}

func TestComputeTrust_SelfRatingIsInert(t *testing.T) {
	base := []models.Rating{rating(1, 2, 10, 10, true)}
	withSelf := append(append([]models.Rating{}, base...), rating(2, 2, 10, 10, true))

	a := ComputeTrust(context.Background(), []int64{1, 2}, Collapse(base))
	b := ComputeTrust(context.Background(), []int64{1, 2}, Collapse(withSelf))
	for id := range a {
		if a[id] != b[id] {
			t.Errorf("trust[%d] moved on self-rating: %v → %v", id, a[id], b[id])
		}
	}
}

func TestComputeTrust_Cycle(t *testing.T) {
	// Scenario 4: A→B→C→A with identical ratings keeps full symmetry.
	rows := []models.Rating{
		rating(1, 2, 8, 6, true),
		rating(2, 3, 8, 6, true),
		rating(3, 1, 8, 6, true),
	}
	scores := ComputeTrust(context.Background(), []int64{1, 2, 3}, Collapse(rows))
	checkDistribution(t, scores)
	for id, v := range scores {
		if math.Abs(v-1.0/3.0) > 1e-9 {
			t.Errorf("trust[%d] = %v, want 1/3", id, v)
		}
	}
}

func TestComputeTrust_DanglingSink(t *testing.T) {
	// Scenario 5: A→B, B rates nobody. The dangling-mass clause must
	// keep total mass at 1 while B still outranks A.
	rows := []models.Rating{rating(1, 2, 10, 10, true)}
	scores := ComputeTrust(context.Background(), []int64{1, 2}, Collapse(rows))
	checkDistribution(t, scores)
	if scores[2] <= scores[1] {
		t.Errorf("expected sink to outrank its rater: %v", scores)
	}
}

func TestComputeTrust_UnknownEndpointsIgnored(t *testing.T) {
	// Edges referencing users outside the node set carry no mass.
	rows := []models.Rating{
		rating(1, 99, 10, 10, true),
		rating(98, 2, 10, 10, true),
	}
	scores := ComputeTrust(context.Background(), []int64{1, 2}, Collapse(rows))
	checkDistribution(t, scores)
	for id, v := range scores {
		if math.Abs(v-0.5) > 1e-9 {
			t.Errorf("trust[%d] = %v, want 0.5", id, v)
		}
	}
}

func TestComputeTrust_CancelledContextStillYieldsDistribution(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rows := []models.Rating{rating(1, 2, 10, 10, true)}
	scores := ComputeTrust(ctx, []int64{1, 2, 3}, Collapse(rows))
	checkDistribution(t, scores)
}
