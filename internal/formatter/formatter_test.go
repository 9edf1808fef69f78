package formatter

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gmcculloug/mixtape/internal/match"
	"github.com/gmcculloug/mixtape/internal/services"
	"github.com/gmcculloug/mixtape/internal/songlist"
	"github.com/gmcculloug/mixtape/internal/tasks"
)

func sampleResult() *tasks.RunResult {
	tainted := services.Track{ID: "t1", Title: "Tainted Love", Artist: "Soft Cell"}
	silence := services.Track{ID: "t2", Title: "Enjoy the Silence", Artist: "Depeche Mode"}

	return &tasks.RunResult{
		Target:          services.Playlist{ID: "tgt", Name: "Road Trip"},
		MasterPlaylists: []services.Playlist{{ID: "m1", Name: "Master Song List"}},
		CandidateCount:  3,
		Results: []tasks.SongResult{
			{
				Entry:  songlist.Entry{Raw: "Tainted Love - Soft Cell", Title: "Tainted Love"},
				Match:  match.Result{Requested: "Tainted Love", Track: &tainted, Score: 0.97},
				Status: tasks.StatusAdded,
			},
			{
				Entry:  songlist.Entry{Raw: "Enjoy the Silence", Title: "Enjoy the Silence"},
				Match:  match.Result{Requested: "Enjoy the Silence", Track: &silence, Score: 1.0},
				Status: tasks.StatusPresent,
			},
			{
				Entry:  songlist.Entry{Raw: "Nonexistent Song XYZ", Title: "Nonexistent Song XYZ"},
				Match:  match.Result{Requested: "Nonexistent Song XYZ"},
				Status: tasks.StatusUnmatched,
			},
		},
		Added:     1,
		Present:   1,
		Unmatched: 1,
	}
}

func TestReportToText(t *testing.T) {
	out := string(ReportToText(sampleResult()))

	for _, want := range []string{
		"Target: Road Trip",
		"Candidates: 3 tracks from Master Song List",
		"Added: 1  Present: 1  Unmatched: 1  Failed: 0",
		"+ Tainted Love - Soft Cell => Soft Cell - Tainted Love (0.97)",
		"? Nonexistent Song XYZ",
		"Unmatched songs:",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text report missing %q\n%s", want, out)
		}
	}
}

func TestReportToTextDryRun(t *testing.T) {
	result := sampleResult()
	result.DryRun = true
	result.TargetCreated = true

	out := string(ReportToText(result))
	if !strings.Contains(out, "(created) [dry run]") {
		t.Errorf("expected dry run marker in report:\n%s", out)
	}
}

func TestReportToTextFailed(t *testing.T) {
	result := sampleResult()
	result.Results[0].Status = tasks.StatusFailed
	result.Results[0].Err = errors.New("quota exceeded")
	result.Added = 0
	result.Failed = 1

	out := string(ReportToText(result))
	if !strings.Contains(out, "! Tainted Love - Soft Cell => Soft Cell - Tainted Love: quota exceeded") {
		t.Errorf("expected failure line in report:\n%s", out)
	}
}

func TestReportToMarkdown(t *testing.T) {
	out := string(ReportToMarkdown(sampleResult()))

	for _, want := range []string{
		"# Reconcile: Road Trip",
		"**Added**: 1",
		"| Requested | Matched | Score | Status |",
		"| Tainted Love - Soft Cell | Soft Cell - Tainted Love | 0.97 | added |",
		"| Nonexistent Song XYZ |  |  | unmatched |",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown report missing %q\n%s", want, out)
		}
	}
}

func TestReportToCSV(t *testing.T) {
	data, err := ReportToCSV(sampleResult())
	if err != nil {
		t.Fatalf("ReportToCSV() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want header plus 3 records", len(lines))
	}
	if lines[0] != "Requested,MatchedTitle,MatchedArtist,TrackID,Score,Status" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "Tainted Love - Soft Cell,Tainted Love,Soft Cell,t1,0.97,added" {
		t.Errorf("first record = %q", lines[1])
	}
	if lines[3] != "Nonexistent Song XYZ,,,,,unmatched" {
		t.Errorf("unmatched record = %q", lines[3])
	}
}

func TestWriteUnmatched(t *testing.T) {
	t.Run("writes raw lines", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "unmatched.txt")

		written, err := WriteUnmatched(sampleResult(), path)
		if err != nil {
			t.Fatalf("WriteUnmatched() error = %v", err)
		}
		if written != path {
			t.Errorf("path = %q, want %q", written, path)
		}

		content, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read unmatched file: %v", err)
		}
		if string(content) != "Nonexistent Song XYZ\n" {
			t.Errorf("content = %q", content)
		}
	})

	t.Run("skips when everything matched", func(t *testing.T) {
		result := sampleResult()
		result.Results = result.Results[:2]
		result.Unmatched = 0

		path, err := WriteUnmatched(result, filepath.Join(t.TempDir(), "unmatched.txt"))
		if err != nil {
			t.Fatalf("WriteUnmatched() error = %v", err)
		}
		if path != "" {
			t.Errorf("expected empty path, got %q", path)
		}
	})
}
