package feedback

// Score band lower bounds.
const (
	excellentFrom = 85
	goodFrom      = 70
	cautionFrom   = 50
)

// StatusForScore maps a score onto its band: 85 and up is excellent, 70 good, 50 caution, else poor.
func StatusForScore(score int) Status {
	switch {
	case score >= excellentFrom:
		return StatusExcellent
	case score >= goodFrom:
		return StatusGood
	case score >= cautionFrom:
		return StatusCaution
	default:
		return StatusPoor
	}
}

// StatusFor applies the category polarity before banding.
func (s CategorySpec) StatusFor(score int) Status {
	if s.Polarity == LowerIsBetter {
		return StatusForScore(100 - score)
	}
	return StatusForScore(score)
}

// ClampScore limits a score to [0, 100].
func ClampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
