package feedback

const (
	notAssessed         = "not assessed"
	fallbackImprovement = "Record a complete spoken answer so it can be evaluated."
)

// Fallback returns the document used when no usable critique exists. It is fully populated
// and always identical, so callers can compare against it.
func Fallback() Document {
	var d Document
	for _, s := range d.slots() {
		spec, _ := ContractV1.Spec(s.key)
		*s.base = fallbackCategory(spec)
	}

	d.FillerWords.CommonWords = []string{}
	d.Vocabulary.Level = notAssessed
	d.PowerWords.Words = []string{}
	d.NegativeTone.Phrases = []string{}
	d.Length.Duration = formatDuration(0)
	d.AuthenticityScore.ConversationalLevel = notAssessed

	d.Strengths = []string{}
	d.Improvements = []string{fallbackImprovement}
	return d
}

func fallbackCategory(spec CategorySpec) Category {
	tips := make([]string, len(spec.FallbackTips))
	copy(tips, spec.FallbackTips)
	return Category{
		Score:            0,
		Status:           spec.StatusFor(0),
		Summary:          spec.FallbackSummary,
		Description:      spec.FallbackDescription,
		DetailedAnalysis: fallbackAnalysis,
		Examples:         []string{},
		Tips:             tips,
	}
}
