package trust

import (
	"sort"

	"github.com/teamforge/reputation-engine/pkg/models"
)

// Edge Collapsing
//
// Multiple rating rows for the same ordered (rater, target) pair fold
// into a single averaged edge. This is the first de-duplication layer:
// a rater who rates the same teammate fifty times moves the edge weight
// toward their average opinion, never multiplies their influence.
//
// Rows are discarded before accumulation when:
//   - either endpoint is null (dangling foreign key),
//   - rater == target (self-rating),
//   - the normalized local trust is ≤ 0 (no edge mass).
//
// Per-axis averages are carried alongside the weight so the graph
// export can show why an edge is strong without re-reading raw rows.

type pairKey struct {
	rater  int64
	target int64
}

type edgeAccum struct {
	localSum   float64
	count      int
	contribSum float64
	contribN   int
	commSum    float64
	commN      int
	wwaSum     float64
	wwaN       int
}

// Collapse folds raw rating rows into averaged rater→target edges.
// The result is sorted by (rater, target) so downstream consumers are
// insensitive to input row order.
func Collapse(rows []models.Rating) []models.CollapsedEdge {
	acc := make(map[pairKey]*edgeAccum)

	for _, r := range rows {
		if r.RaterID == nil || r.TargetUserID == nil {
			continue
		}
		if *r.RaterID == *r.TargetUserID {
			continue
		}

		local := NormalizeRating(r.Contribution, r.Communication, r.WouldWorkAgain)
		if local <= 0 {
			continue
		}

		key := pairKey{rater: *r.RaterID, target: *r.TargetUserID}
		a := acc[key]
		if a == nil {
			a = &edgeAccum{}
			acc[key] = a
		}

		a.localSum += local
		a.count++

		if r.Contribution != nil {
			a.contribSum += float64(*r.Contribution)
			a.contribN++
		}
		if r.Communication != nil {
			a.commSum += float64(*r.Communication)
			a.commN++
		}
		if r.WouldWorkAgain {
			a.wwaSum += 1.0
		}
		a.wwaN++
	}

	edges := make([]models.CollapsedEdge, 0, len(acc))
	for key, a := range acc {
		e := models.CollapsedEdge{
			Rater:               key.rater,
			Target:              key.target,
			Weight:              a.localSum / float64(a.count),
			Count:               a.count,
			WouldWorkAgainRatio: a.wwaSum / float64(a.wwaN),
		}
		if a.contribN > 0 {
			avg := a.contribSum / float64(a.contribN)
			e.ContributionAvg = &avg
		}
		if a.commN > 0 {
			avg := a.commSum / float64(a.commN)
			e.CommunicationAvg = &avg
		}
		edges = append(edges, e)
	}

	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Rater != edges[j].Rater {
			return edges[i].Rater < edges[j].Rater
		}
		return edges[i].Target < edges[j].Target
	})

	return edges
}
