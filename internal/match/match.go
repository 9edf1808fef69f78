package match

import (
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/gmcculloug/mixtape/internal/services"
)

// DefaultThreshold is the minimum similarity score for a match when none is configured.
const DefaultThreshold = 0.70

// Config holds matching policy settings.
type Config struct {
	// Threshold is the minimum similarity score in [0,1]; candidates scoring
	// below it are rejected rather than forced onto a poor match.
	Threshold float64
}

// DefaultConfig returns the default matching configuration.
func DefaultConfig() Config {
	return Config{Threshold: DefaultThreshold}
}

// Result holds the outcome of matching one requested title against the
// candidate pool. Track is nil when no candidate cleared the threshold.
type Result struct {
	Requested string // Raw requested title, as supplied
	Track     *services.Track
	Score     float64
}

// Matched reports whether a candidate was selected.
func (r Result) Matched() bool {
	return r.Track != nil
}

// Matcher scores requested titles against candidate tracks.
type Matcher struct {
	config Config
}

// NewMatcher creates a matcher with the given configuration. A non-positive
// threshold falls back to DefaultThreshold.
func NewMatcher(config Config) *Matcher {
	if config.Threshold <= 0 {
		config.Threshold = DefaultThreshold
	}
	return &Matcher{config: config}
}

// Threshold returns the configured minimum score.
func (m *Matcher) Threshold() float64 {
	return m.config.Threshold
}

// FindBestMatch scores the requested title against every candidate's display
// name and selects the strictly highest score at or above the threshold.
// Ties keep the earliest candidate. Deterministic and side-effect free; an
// empty candidate pool yields a no-match Result.
func (m *Matcher) FindBestMatch(requested string, candidates []services.Track) Result {
	result := Result{Requested: requested}

	normalized := Normalize(requested)
	if normalized == "" {
		return result
	}

	best := -1.0
	for i := range candidates {
		score := Similarity(normalized, Normalize(candidates[i].DisplayName()))
		if score > best {
			best = score
			if score >= m.config.Threshold {
				result.Track = &candidates[i]
				result.Score = score
			}
		}
	}

	return result
}

// containedScore is the score for one title's tokens all appearing in the
// other. A requested title is routinely a strict subset of a candidate's
// "Artist - Title" display name; whole-string edit distance would punish
// the artist prefix. Kept below 1.0 so exact matches still win ties.
const containedScore = 0.95

// Similarity computes a score in [0,1] between two normalized strings.
// Equality up to token order scores 1.0; one side's tokens contained in the
// other scores containedScore; otherwise Jaro-Winkler over both the given
// and the token-sorted forms, taking the larger. Symmetric in its arguments.
func Similarity(a, b string) float64 {
	if a == "" || b == "" {
		if a == b {
			return 1.0
		}
		return 0.0
	}

	sa, sb := sortTokens(a), sortTokens(b)
	if sa == sb {
		return 1.0
	}

	best := 0.0
	if tokensContained(a, b) || tokensContained(b, a) {
		best = containedScore
	}

	if direct, err := edlib.StringsSimilarity(a, b, edlib.JaroWinkler); err == nil && float64(direct) > best {
		best = float64(direct)
	}
	if sorted, err := edlib.StringsSimilarity(sa, sb, edlib.JaroWinkler); err == nil && float64(sorted) > best {
		best = float64(sorted)
	}

	return best
}

// tokensContained reports whether every token of a occurs in b, counting
// repeats.
func tokensContained(a, b string) bool {
	have := make(map[string]int)
	for _, tok := range strings.Fields(b) {
		have[tok]++
	}
	for _, tok := range strings.Fields(a) {
		if have[tok] == 0 {
			return false
		}
		have[tok]--
	}
	return true
}
