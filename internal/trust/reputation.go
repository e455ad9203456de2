package trust

import (
	"math"

	"github.com/teamforge/reputation-engine/pkg/models"
)

// Trust-Weighted Reputation Aggregation
//
// A target's reputation is combined across raters, not across rows:
// each rater is first reduced to their own per-axis means and
// would-work-again ratio, then raters are blended with their global
// trust score as the weight. This is the second de-duplication layer —
// one rater counts once per target no matter how many rows they wrote —
// and it makes low-trust raters nearly invisible in the averages.
//
// rating_count deliberately stays the raw pre-collapse row count so the
// UI can show activity volume; only the averages are trust-scaled.

// raterSummary is one rater's collapsed opinion of a single target.
type raterSummary struct {
	contribSum float64
	contribN   int
	commSum    float64
	commN      int
	wwaTrue    int
	rows       int
}

// Reputation aggregates the trust-weighted reputation of target from the
// full rating row set. Rows with a null endpoint or rater == target are
// not counted. A target with no valid incoming rows gets zero averages,
// a null would-work-again ratio and a zero count.
func Reputation(target int64, rows []models.Rating, scores map[int64]float64) models.Reputation {
	byRater := make(map[int64]*raterSummary)
	total := 0

	for _, r := range rows {
		if r.RaterID == nil || r.TargetUserID == nil {
			continue
		}
		if *r.TargetUserID != target || *r.RaterID == target {
			continue
		}

		total++
		s := byRater[*r.RaterID]
		if s == nil {
			s = &raterSummary{}
			byRater[*r.RaterID] = s
		}
		s.rows++
		if r.Contribution != nil {
			s.contribSum += float64(*r.Contribution)
			s.contribN++
		}
		if r.Communication != nil {
			s.commSum += float64(*r.Communication)
			s.commN++
		}
		if r.WouldWorkAgain {
			s.wwaTrue++
		}
	}

	var (
		contribWeighted, contribWeight float64
		commWeighted, commWeight       float64
		wwaWeighted, wwaWeight         float64
	)

	for rater, s := range byRater {
		w := scores[rater]
		if w <= 0 {
			continue
		}
		if s.contribN > 0 {
			contribWeighted += w * (s.contribSum / float64(s.contribN))
			contribWeight += w
		}
		if s.commN > 0 {
			commWeighted += w * (s.commSum / float64(s.commN))
			commWeight += w
		}
		wwaWeighted += w * (float64(s.wwaTrue) / float64(s.rows))
		wwaWeight += w
	}

	rep := models.Reputation{RatingCount: total}
	if contribWeight > 0 {
		rep.ContributionAvg = round2(contribWeighted / contribWeight)
	}
	if commWeight > 0 {
		rep.CommunicationAvg = round2(commWeighted / commWeight)
	}
	if wwaWeight > 0 {
		ratio := wwaWeighted / wwaWeight
		rep.WouldWorkAgainRatio = &ratio
	}
	return rep
}

// OverallRatio is the pre-scaling scalar in [0, 1]: the mean of the two
// normalized axis averages and the would-work-again ratio (nil → 0).
func OverallRatio(rep models.Reputation) float64 {
	contrib := clamp01(rep.ContributionAvg / AxisMax)
	comm := clamp01(rep.CommunicationAvg / AxisMax)
	wwa := 0.0
	if rep.WouldWorkAgainRatio != nil {
		wwa = clamp01(*rep.WouldWorkAgainRatio)
	}
	return (contrib + comm + wwa) / 3.0
}

// Overall is the 0..10 scalar reputation score used by the matcher.
func Overall(rep models.Reputation) float64 {
	return round2(10.0 * OverallRatio(rep))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
