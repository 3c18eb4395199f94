// Package scoring maps a test type and a raw score to a verdict text.
//
// Each known test type has a Scale: a threshold table whose bands are checked
// from the highest minimum down. Test types without a scale fall back to
// reporting the raw score.
package scoring

import (
	"fmt"
	"sort"
	"sync"
)

// Band applies when score >= Min.
type Band struct {
	Min     int
	Verdict string
}

type Scale struct {
	bands []Band
}

// NewScale sorts bands by descending Min. The lowest band should have Min 0
// so every non-negative score is covered.
func NewScale(bands ...Band) Scale {
	sorted := append([]Band(nil), bands...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Min > sorted[j].Min })
	return Scale{bands: sorted}
}

func (s Scale) Verdict(score int) (string, bool) {
	for _, b := range s.bands {
		if score >= b.Min {
			return b.Verdict, true
		}
	}
	return "", false
}

// Table is safe for concurrent use.
type Table struct {
	mu     sync.RWMutex
	scales map[string]Scale
}

func NewTable() *Table {
	return &Table{scales: make(map[string]Scale)}
}

// Register adds or replaces the scale for testType.
func (t *Table) Register(testType string, s Scale) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.scales[testType] = s
}

func (t *Table) Known(testType string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.scales[testType]
	return ok
}

func (t *Table) Evaluate(testType string, score int) string {
	t.mu.RLock()
	s, ok := t.scales[testType]
	t.mu.RUnlock()

	if ok {
		if v, matched := s.Verdict(score); matched {
			return v
		}
	}
	return RawScore(score)
}

// RawScore is the verdict for test types without a scale.
func RawScore(score int) string {
	return fmt.Sprintf("Score: %d", score)
}

const Depression = "depression"

// Default returns the table with the built-in scales.
func Default() *Table {
	t := NewTable()
	t.Register(Depression, NewScale(
		Band{Min: 20, Verdict: "high probability of depression"},
		Band{Min: 10, Verdict: "moderate risk"},
		Band{Min: 0, Verdict: "low risk"},
	))
	return t
}
