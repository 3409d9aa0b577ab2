package dialect

import "sdslc/internal/source"

// Hint is a small piece of evidence suggesting a particular dialect.
type Hint struct {
	Dialect Kind
	Kind    HintKind
	Score   int
	Reason  string
	Span    source.Span
}

// Evidence aggregates the hints of one file.
type Evidence struct {
	hints []Hint
}

func NewEvidence() *Evidence {
	return &Evidence{hints: make([]Hint, 0, 16)}
}

func (e *Evidence) Add(h Hint) {
	if e == nil {
		return
	}
	e.hints = append(e.hints, h)
}

func (e *Evidence) Hints() []Hint {
	if e == nil {
		return nil
	}
	return e.hints
}

// Strongest returns the highest scoring hint for d; ties keep the first.
func (e *Evidence) Strongest(d Kind) (Hint, bool) {
	var best Hint
	found := false
	for _, h := range e.Hints() {
		if h.Dialect == d && (!found || h.Score > best.Score) {
			best, found = h, true
		}
	}
	return best, found
}
