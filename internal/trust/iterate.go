package trust

import (
	"context"
	"log"
	"math"

	"github.com/teamforge/reputation-engine/pkg/models"
)

// Transitive Trust Iteration
//
// Global trust is the stationary distribution of a damped random walk
// over the collapsed rating graph (the EigenTrust/PageRank family):
//
//   t'_j = (1-d)/n  +  d·D/n  +  d · Σ_i (w_ij / S_i) · t_i
//
// where S_i is rater i's outgoing weight sum and D is the total mass
// held by dangling users (no outgoing edges), redistributed uniformly
// so the vector keeps summing to 1.
//
// Damping bounds the influence any single edge can exert and guarantees
// convergence regardless of graph shape; cycles need no special
// handling. Because edges are collapsed averages, a rater spamming one
// target gains nothing — their edge weight is a mean, not a sum.
//
// References:
//   - Page et al., "The PageRank Citation Ranking" (1999)
//   - Kamvar et al., "The EigenTrust Algorithm for Reputation Management
//     in P2P Networks" (WWW 2003)

const (
	// DampingFactor is the probability of following an edge rather than
	// teleporting to the uniform personalization vector.
	DampingFactor = 0.85

	// MaxIterations caps the power iteration; hitting the cap is logged
	// but not an error — the last vector is renormalized and returned.
	MaxIterations = 50

	// ConvergenceTol is the L1 delta below which iteration stops.
	ConvergenceTol = 1e-10
)

// ComputeTrust runs the damped power iteration and returns a trust score
// per user, nonnegative and summing to 1 whenever at least one user
// exists. An empty user set yields an empty map; an empty edge set
// yields the uniform 1/n vector.
//
// Cancellation is checked at iteration boundaries; on cancellation the
// current vector is renormalized and returned, so callers always get a
// usable distribution.
func ComputeTrust(ctx context.Context, userIDs []int64, edges []models.CollapsedEdge) map[int64]float64 {
	n := len(userIDs)
	if n == 0 {
		return map[int64]float64{}
	}

	index := make(map[int64]int, n)
	for i, id := range userIDs {
		index[id] = i
	}

	// Outgoing adjacency, dropping edges whose endpoints are unknown users.
	type out struct {
		to     int
		weight float64
	}
	outgoing := make([][]out, n)
	rowSum := make([]float64, n)
	for _, e := range edges {
		i, ok := index[e.Rater]
		if !ok {
			continue
		}
		j, ok := index[e.Target]
		if !ok {
			continue
		}
		if e.Weight <= 0 {
			continue
		}
		outgoing[i] = append(outgoing[i], out{to: j, weight: e.Weight})
		rowSum[i] += e.Weight
	}

	uniform := 1.0 / float64(n)
	t := make([]float64, n)
	for i := range t {
		t[i] = uniform
	}

	next := make([]float64, n)
	converged := false

	for iter := 0; iter < MaxIterations; iter++ {
		if ctx.Err() != nil {
			log.Printf("Trust iteration cancelled after %d iterations", iter)
			break
		}

		dangling := 0.0
		for i := range t {
			if rowSum[i] == 0 {
				dangling += t[i]
			}
		}

		base := (1.0-DampingFactor)*uniform + DampingFactor*dangling*uniform
		for j := range next {
			next[j] = base
		}
		for i, links := range outgoing {
			if rowSum[i] == 0 {
				continue
			}
			spread := DampingFactor * t[i] / rowSum[i]
			for _, l := range links {
				next[l.to] += spread * l.weight
			}
		}

		delta := 0.0
		for i := range t {
			delta += math.Abs(next[i] - t[i])
		}
		t, next = next, t

		if delta < ConvergenceTol {
			converged = true
			break
		}
	}

	if !converged {
		log.Printf("Trust iteration stopped before convergence (max %d iterations, tol %g)", MaxIterations, ConvergenceTol)
	}

	// Renormalize against accumulated floating-point drift.
	total := 0.0
	for _, v := range t {
		total += v
	}
	if total > 0 {
		for i := range t {
			t[i] /= total
		}
	}

	scores := make(map[int64]float64, n)
	for id, i := range index {
		scores[id] = t[i]
	}
	return scores
}
