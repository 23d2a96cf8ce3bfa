package ranking

// Score is one candidate's correlation with the query.
type Score struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// Verdict is the outcome of one ranking pass.
type Verdict struct {
	Best     Score `json:"best"`
	Reliable bool  `json:"reliable"`
	// AmbiguousWith is the runner-up when it scored within DeltaSecond of
	// Best, nil otherwise.
	AmbiguousWith *Score `json:"ambiguous_with,omitempty"`
	// Scores holds every candidate, best first.
	Scores []Score `json:"scores"`
	Policy Policy  `json:"-"`
}

// Ambiguous reports whether a runner-up was flagged.
func (v Verdict) Ambiguous() bool {
	return v.AmbiguousWith != nil
}

// Status is "reliable" or "unreliable".
func (v Verdict) Status() string {
	if v.Reliable {
		return "reliable"
	}
	return "unreliable"
}

// Classify applies the reliability and ambiguity rules to scores that are
// already ordered best first. It is exposed separately so the policy can be
// checked against fixed scores.
func Classify(ordered []Score, policy Policy) (Verdict, error) {
	if len(ordered) == 0 {
		return Verdict{}, ErrEmptyGallery
	}
	policy = policy.normalized()

	verdict := Verdict{
		Best:     ordered[0],
		Reliable: ordered[0].Score >= policy.Threshold,
		Scores:   append([]Score(nil), ordered...),
		Policy:   policy,
	}
	if len(ordered) > 1 {
		second := ordered[1]
		if withinDelta(verdict.Best.Score, second.Score, policy.DeltaSecond) {
			verdict.AmbiguousWith = &second
		}
	}
	return verdict, nil
}

// deltaSlack absorbs binary rounding so that, e.g., 0.70 and 0.67 with a
// 0.03 window count as within the window.
const deltaSlack = 1e-9

func withinDelta(best, second, delta float64) bool {
	diff := best - second
	if diff < 0 {
		diff = -diff
	}
	return diff <= delta+deltaSlack
}
