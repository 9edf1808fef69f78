// package formatter renders reconcile reports to various formats (plain text, Markdown, CSV)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gmcculloug/mixtape/internal/tasks"
)

// ReportToText renders a run report as plain text: a summary block followed
// by one line per requested song.
func ReportToText(result *tasks.RunResult) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Target: %s", result.Target.Name))
	if result.TargetCreated {
		buf.WriteString(" (created)")
	}
	if result.DryRun {
		buf.WriteString(" [dry run]")
	}
	buf.WriteString("\n")

	names := make([]string, len(result.MasterPlaylists))
	for i, pl := range result.MasterPlaylists {
		names[i] = pl.Name
	}
	buf.WriteString(fmt.Sprintf("Candidates: %d tracks from %s\n", result.CandidateCount, strings.Join(names, ", ")))

	if result.Removed > 0 {
		buf.WriteString(fmt.Sprintf("Removed: %d\n", result.Removed))
	}
	buf.WriteString(fmt.Sprintf("Added: %d  Present: %d  Unmatched: %d  Failed: %d\n\n", result.Added, result.Present, result.Unmatched, result.Failed))

	for _, sr := range result.Results {
		buf.WriteString(songLine(sr))
		buf.WriteString("\n")
	}

	if unmatched := result.UnmatchedEntries(); len(unmatched) > 0 {
		buf.WriteString("\nUnmatched songs:\n")
		for _, entry := range unmatched {
			buf.WriteString(fmt.Sprintf("  %s\n", entry.Raw))
		}
	}

	return buf.Bytes()
}

func songLine(sr tasks.SongResult) string {
	switch sr.Status {
	case tasks.StatusAdded:
		return fmt.Sprintf("+ %s => %s (%.2f)", sr.Entry.Raw, sr.Match.Track.DisplayName(), sr.Match.Score)
	case tasks.StatusPresent:
		return fmt.Sprintf("= %s => %s (%.2f)", sr.Entry.Raw, sr.Match.Track.DisplayName(), sr.Match.Score)
	case tasks.StatusFailed:
		return fmt.Sprintf("! %s => %s: %v", sr.Entry.Raw, sr.Match.Track.DisplayName(), sr.Err)
	default:
		return fmt.Sprintf("? %s", sr.Entry.Raw)
	}
}

// ReportToMarkdown renders a run report as a Markdown document.
func ReportToMarkdown(result *tasks.RunResult) []byte {
	var buf bytes.Buffer

	title := result.Target.Name
	if result.DryRun {
		title += " (dry run)"
	}
	buf.WriteString(fmt.Sprintf("# Reconcile: %s\n\n", title))

	buf.WriteString(fmt.Sprintf("**Candidates**: %d\n", result.CandidateCount))
	buf.WriteString(fmt.Sprintf("**Added**: %d\n", result.Added))
	buf.WriteString(fmt.Sprintf("**Present**: %d\n", result.Present))
	buf.WriteString(fmt.Sprintf("**Unmatched**: %d\n", result.Unmatched))
	buf.WriteString(fmt.Sprintf("**Failed**: %d\n\n", result.Failed))

	buf.WriteString("## Songs\n\n")
	buf.WriteString("| Requested | Matched | Score | Status |\n")
	buf.WriteString("|---|---|---|---|\n")
	for _, sr := range result.Results {
		matched, score := "", ""
		if sr.Match.Matched() {
			matched = sr.Match.Track.DisplayName()
			score = fmt.Sprintf("%.2f", sr.Match.Score)
		}
		buf.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n", sr.Entry.Raw, matched, score, sr.Status))
	}

	return buf.Bytes()
}

// ReportToCSV renders a run report as CSV with columns:
// Requested, MatchedTitle, MatchedArtist, TrackID, Score, Status
func ReportToCSV(result *tasks.RunResult) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Requested", "MatchedTitle", "MatchedArtist", "TrackID", "Score", "Status"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, sr := range result.Results {
		record := []string{sr.Entry.Raw, "", "", "", "", sr.Status.String()}
		if sr.Match.Matched() {
			record[1] = sr.Match.Track.Title
			record[2] = sr.Match.Track.Artist
			record[3] = sr.Match.Track.ID
			record[4] = strconv.FormatFloat(sr.Match.Score, 'f', 2, 64)
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// WriteUnmatched writes the unmatched input lines verbatim, one per line, so
// the file can be fed straight back in as a song list. Returns the path, or
// "" when every song matched.
func WriteUnmatched(result *tasks.RunResult, path string) (string, error) {
	unmatched := result.UnmatchedEntries()
	if len(unmatched) == 0 {
		return "", nil
	}

	if path == "" {
		path = "unmatched_songs.txt"
	}

	var buf bytes.Buffer
	for _, entry := range unmatched {
		buf.WriteString(entry.Raw)
		buf.WriteString("\n")
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to write unmatched file: %w", err)
	}

	return path, nil
}
