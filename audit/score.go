package audit

// scorecard accumulates findings for one validator run. Scoring is
// penalty based: start at 100, subtract a fixed amount per finding,
// clamp at zero.
type scorecard struct {
	warnings []string
	errors   []string
	score    int
}

func newScorecard() *scorecard {
	return &scorecard{score: 100}
}

// warn records a soft finding. The page stays valid.
func (s *scorecard) warn(msg string, penalty int) {
	s.warnings = append(s.warnings, msg)
	s.score -= penalty
}

// fail records a hard finding. The page becomes invalid.
func (s *scorecard) fail(msg string, penalty int) {
	s.errors = append(s.errors, msg)
	s.score -= penalty
}

// result freezes the scorecard into a ValidationResult. Warning and
// error slices are always non-nil so they serialize as [] rather than
// null.
func (s *scorecard) result() ValidationResult {
	score := s.score
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return ValidationResult{
		IsValid:  len(s.errors) == 0,
		Warnings: append([]string{}, s.warnings...),
		Errors:   append([]string{}, s.errors...),
		Score:    score,
	}
}
