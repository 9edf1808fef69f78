// package songlist loads the plain-text song lists that drive a reconcile run.
//
// Each non-blank line names one desired track, typically "Title - Artist".
// Only the title participates in matching; the raw line is preserved for
// reporting so unmatched songs can be copied back into a list verbatim.
package songlist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gmcculloug/mixtape/internal/shared"
)

// Entry is a single requested song from an input list.
type Entry struct {
	Raw   string // Line as it appeared in the input, trimmed
	Title string // Title portion used for matching
}

// Parse reads entries from r, one per line. Blank and whitespace-only lines
// are skipped. Lines of the form "Title - Artist" keep only the title; the
// separator is the first " - " so titles containing dashes survive.
func Parse(r io.Reader) ([]Entry, error) {
	var entries []Entry

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		title := line
		if idx := strings.Index(line, " - "); idx >= 0 {
			title = strings.TrimSpace(line[:idx])
		}

		entries = append(entries, Entry{Raw: line, Title: title})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading song list: %v", shared.ErrInvalidInput, err)
	}

	return entries, nil
}

// Load reads a song list from the file at path.
func Load(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	defer f.Close()

	return Parse(f)
}
