package recognition

import "strings"

// segmentList tracks the results of a session the way browser engines report
// them: a trailing interim result is replaced until it is finalized, then a
// new segment starts. Segments after the first carry a leading space so the
// plain concatenation reads as text.
type segmentList struct {
	results ResultSet
}

func (l *segmentList) apply(r Result) {
	// the list owns its alternatives; the caller's slice is never written
	r.Alternatives = append([]Alternative(nil), r.Alternatives...)

	n := len(l.results)
	replace := n > 0 && !l.results[n-1].IsFinal

	idx := n
	if replace {
		idx = n - 1
	}
	if idx > 0 {
		for i, alt := range r.Alternatives {
			if alt.Transcript != "" && !strings.HasPrefix(alt.Transcript, " ") {
				r.Alternatives[i].Transcript = " " + alt.Transcript
			}
		}
	}

	if replace {
		l.results[n-1] = r
		return
	}
	l.results = append(l.results, r)
}

// dropInterim removes a trailing interim result, used when the provider
// finalizes a segment as silence.
func (l *segmentList) dropInterim() bool {
	n := len(l.results)
	if n == 0 || l.results[n-1].IsFinal {
		return false
	}
	l.results = l.results[:n-1]
	return true
}

func (l *segmentList) snapshot() ResultSet {
	return l.results.clone()
}
