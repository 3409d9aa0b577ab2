package dialect

// Classification is the result of scoring evidence for a file.
type Classification struct {
	Kind          Kind
	Score         int
	TotalScore    int
	Confidence    float64
	RunnerUp      Kind
	RunnerUpScore int
}

// minScore is the evidence a dialect needs before a hint is shown; one
// stray `uniform` or `let` is not enough.
const minScore = 8

// Classify scores evidence and chooses the dominant dialect.
func Classify(e *Evidence) Classification {
	hints := e.Hints()
	if len(hints) == 0 {
		return Classification{Kind: Unknown}
	}

	var scores [kindCount]int
	total := 0
	for _, h := range hints {
		if h.Score <= 0 || h.Dialect <= Unknown || h.Dialect >= kindCount {
			continue
		}
		scores[h.Dialect] += h.Score
		total += h.Score
	}

	c := Classification{TotalScore: total}
	for k := GLSL; k < kindCount; k++ {
		score := scores[k]
		if score > c.Score {
			c.RunnerUp, c.RunnerUpScore = c.Kind, c.Score
			c.Kind, c.Score = k, score
			continue
		}
		if score > c.RunnerUpScore {
			c.RunnerUp, c.RunnerUpScore = k, score
		}
	}
	if total > 0 {
		c.Confidence = float64(c.Score) / float64(total)
	}
	return c
}

// Eligible reports whether c is strong and clear enough to report.
func (c Classification) Eligible() bool {
	return c.Kind != Unknown && c.Score >= minScore && c.Confidence >= 0.6
}
