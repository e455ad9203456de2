package trust

// Rating Normalization
//
// Every rating row is reduced to a single local-trust scalar in [0, 1]:
//
//   local = (contribution/10 + communication/10 + wwa) / 3
//
// Axis scores are clamped to [0, 10] before scaling; a missing axis
// contributes 0 rather than being skipped, so a rating that answers
// nothing carries no edge mass. would_work_again maps true→1, false→0.
//
// The clamp-and-coerce policy means the normalizer never fails on
// historical rows: out-of-range and missing values degrade to safe
// defaults instead of poisoning the trust iteration.

const (
	// AxisMax is the upper bound of the contribution/communication scales.
	AxisMax = 10.0

	// axisCount is the number of components averaged into the local score.
	axisCount = 3.0
)

// NormalizeAxis clamps a 0..10 axis score to range and scales it to [0, 1].
// A nil score (unanswered axis) normalizes to 0.
func NormalizeAxis(score *int) float64 {
	if score == nil {
		return 0
	}
	v := float64(*score)
	if v < 0 {
		v = 0
	}
	if v > AxisMax {
		v = AxisMax
	}
	return v / AxisMax
}

// NormalizeRating maps one rating row's axes to its local trust in [0, 1].
func NormalizeRating(contribution, communication *int, wouldWorkAgain bool) float64 {
	wwa := 0.0
	if wouldWorkAgain {
		wwa = 1.0
	}
	return (NormalizeAxis(contribution) + NormalizeAxis(communication) + wwa) / axisCount
}
