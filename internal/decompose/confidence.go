package decompose

// Confidence aggregation terms.
const (
	consistencyWeight = 0.3
	qualityWeight     = 0.3

	dagTermValid   = 0.2
	dagTermInvalid = 0.05

	warningBudget         = 0.2
	highSeverityPenalty   = 0.1
	mediumSeverityPenalty = 0.05
)

// Confidence combines generator self-consistency, average INVEST quality,
// graph validity, and anti-pattern severity into the single scalar that
// gates auto-acceptance. Clamped to [0,1]. Each high-severity warning
// costs twice a medium one, and the warning term floors at zero so a
// noisy decomposition cannot push confidence negative on its own.
func Confidence(consistency, avgComposite float64, graphValid bool, highWarnings, mediumWarnings int) float64 {
	dagTerm := dagTermInvalid
	if graphValid {
		dagTerm = dagTermValid
	}

	warningTerm := warningBudget -
		highSeverityPenalty*float64(highWarnings) -
		mediumSeverityPenalty*float64(mediumWarnings)
	if warningTerm < 0 {
		warningTerm = 0
	}

	c := consistencyWeight*consistency + qualityWeight*avgComposite + dagTerm + warningTerm
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
