package tasks

import (
	"context"
	"errors"
	"testing"

	"github.com/gmcculloug/mixtape/internal/match"
	"github.com/gmcculloug/mixtape/internal/services"
	"github.com/gmcculloug/mixtape/internal/shared"
	"github.com/gmcculloug/mixtape/internal/songlist"
	internaltest "github.com/gmcculloug/mixtape/internal/testing"
)

func newLibraryMock() *internaltest.MockService {
	return &internaltest.MockService{
		Playlists: []services.Playlist{
			{ID: "m1", Name: "Master Song List", TrackCount: 3},
			{ID: "m2", Name: "80s master", TrackCount: 1},
			{ID: "p1", Name: "Workout Mix", TrackCount: 1},
		},
		TracksByID: map[string][]services.Track{
			"m1": {
				{ID: "t1", Title: "Tainted Love", Artist: "Soft Cell"},
				{ID: "t2", Title: "Enjoy the Silence", Artist: "Depeche Mode"},
				{ID: "t3", Title: "Blue Monday", Artist: "New Order"},
			},
			"m2": {
				{ID: "t1", Title: "Tainted Love", Artist: "Soft Cell"},
			},
			"p1": {
				{ID: "t9", Title: "Eye of the Tiger", Artist: "Survivor"},
			},
		},
	}
}

func newTestEngine(svc services.Service) *ReconcileEngine {
	return NewReconcileEngine(EngineOpts{
		Service: svc,
		Matcher: match.NewMatcher(match.Config{Threshold: 0.6}),
	})
}

func entries(lines ...string) []songlist.Entry {
	out := make([]songlist.Entry, len(lines))
	for i, line := range lines {
		out[i] = songlist.Entry{Raw: line, Title: line}
	}
	return out
}

func TestCollectCandidates(t *testing.T) {
	t.Run("pools master playlists and dedupes", func(t *testing.T) {
		engine := newTestEngine(newLibraryMock())

		pool, err := engine.CollectCandidates(context.Background(), nil)
		if err != nil {
			t.Fatalf("CollectCandidates() error = %v", err)
		}

		if len(pool.Masters) != 2 {
			t.Errorf("got %d master playlists, want 2", len(pool.Masters))
		}
		if len(pool.Tracks) != 3 {
			t.Errorf("got %d candidates, want 3 after dedupe", len(pool.Tracks))
		}
		if pool.Tracks[0].ID != "t1" {
			t.Errorf("first candidate = %s, want t1 (first occurrence wins)", pool.Tracks[0].ID)
		}
	})

	t.Run("no master playlist is fatal", func(t *testing.T) {
		svc := &internaltest.MockService{
			Playlists: []services.Playlist{{ID: "p1", Name: "Workout Mix"}},
		}
		engine := newTestEngine(svc)

		_, err := engine.CollectCandidates(context.Background(), nil)
		if !errors.Is(err, shared.ErrNoMasterPlaylist) {
			t.Errorf("error = %v, want ErrNoMasterPlaylist", err)
		}
	})

	t.Run("custom keyword", func(t *testing.T) {
		svc := &internaltest.MockService{
			Playlists: []services.Playlist{{ID: "p1", Name: "Library Pool"}},
			TracksByID: map[string][]services.Track{
				"p1": {{ID: "t1", Title: "Song"}},
			},
		}
		engine := NewReconcileEngine(EngineOpts{Service: svc, MasterKeyword: "pool"})

		pool, err := engine.CollectCandidates(context.Background(), nil)
		if err != nil {
			t.Fatalf("CollectCandidates() error = %v", err)
		}
		if len(pool.Masters) != 1 {
			t.Errorf("got %d masters, want 1", len(pool.Masters))
		}
	})

	t.Run("listing failure propagates", func(t *testing.T) {
		svc := &internaltest.MockService{PlaylistErr: errors.New("network down")}
		engine := newTestEngine(svc)

		if _, err := engine.CollectCandidates(context.Background(), nil); !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("error = %v, want ErrAPIRequest", err)
		}
	})
}

func TestRunCreatesTargetAndAdds(t *testing.T) {
	svc := newLibraryMock()
	engine := newTestEngine(svc)

	result, err := engine.Run(context.Background(), nil, RunOptions{
		TargetName: "Road Trip",
		Entries:    entries("Tainted Love", "Blue Monday", "Nonexistent Song XYZ"),
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if !result.TargetCreated {
		t.Error("expected target to be created")
	}
	if len(svc.CreateCalls) != 1 || svc.CreateCalls[0] != "Road Trip" {
		t.Errorf("CreateCalls = %v, want [Road Trip]", svc.CreateCalls)
	}
	if result.Added != 2 || result.Unmatched != 1 {
		t.Errorf("Added = %d, Unmatched = %d, want 2 and 1", result.Added, result.Unmatched)
	}

	added := svc.AddCalls[result.Target.ID]
	if len(added) != 2 || added[0] != "t1" || added[1] != "t3" {
		t.Errorf("added tracks = %v, want [t1 t3] in input order", added)
	}

	unmatched := result.UnmatchedEntries()
	if len(unmatched) != 1 || unmatched[0].Raw != "Nonexistent Song XYZ" {
		t.Errorf("unmatched = %v, want the unmatchable line", unmatched)
	}
}

func TestRunIdempotent(t *testing.T) {
	svc := newLibraryMock()
	svc.Playlists = append(svc.Playlists, services.Playlist{ID: "tgt", Name: "Road Trip"})
	svc.TracksByID["tgt"] = []services.Track{
		{ID: "t1", Title: "Tainted Love", Artist: "Soft Cell"},
	}
	engine := newTestEngine(svc)

	result, err := engine.Run(context.Background(), nil, RunOptions{
		TargetName: "Road Trip",
		Entries:    entries("Tainted Love", "Blue Monday"),
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.TargetCreated {
		t.Error("expected existing target to be reused")
	}
	if result.Present != 1 || result.Added != 1 {
		t.Errorf("Present = %d, Added = %d, want 1 and 1", result.Present, result.Added)
	}

	added := svc.AddCalls["tgt"]
	if len(added) != 1 || added[0] != "t3" {
		t.Errorf("added = %v, want only the missing track t3", added)
	}
}

func TestRunDryRun(t *testing.T) {
	svc := newLibraryMock()
	engine := newTestEngine(svc)

	result, err := engine.Run(context.Background(), nil, RunOptions{
		TargetName: "Road Trip",
		Entries:    entries("Tainted Love", "Nonexistent Song XYZ"),
		DryRun:     true,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if svc.Mutated() {
		t.Error("dry run must not call any write operation")
	}
	if !result.TargetCreated {
		t.Error("dry run should report the target would be created")
	}
	if result.Added != 1 || result.Unmatched != 1 {
		t.Errorf("Added = %d, Unmatched = %d, want 1 and 1", result.Added, result.Unmatched)
	}
	if result.Results[0].Status != StatusAdded {
		t.Errorf("status = %v, want StatusAdded for planned track", result.Results[0].Status)
	}
}

func TestRunReset(t *testing.T) {
	t.Run("clears existing target", func(t *testing.T) {
		svc := newLibraryMock()
		svc.Playlists = append(svc.Playlists, services.Playlist{ID: "tgt", Name: "Road Trip"})
		svc.TracksByID["tgt"] = []services.Track{
			{ID: "t1", Title: "Tainted Love", Artist: "Soft Cell"},
			{ID: "t2", Title: "Enjoy the Silence", Artist: "Depeche Mode"},
		}
		engine := newTestEngine(svc)

		result, err := engine.Run(context.Background(), nil, RunOptions{
			TargetName: "Road Trip",
			Entries:    entries("Tainted Love"),
			Reset:      true,
		})
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		if len(svc.RemoveCalls) != 1 || svc.RemoveCalls[0] != "tgt" {
			t.Errorf("RemoveCalls = %v, want [tgt]", svc.RemoveCalls)
		}
		if result.Removed != 2 {
			t.Errorf("Removed = %d, want 2", result.Removed)
		}
		if added := svc.AddCalls["tgt"]; len(added) != 1 || added[0] != "t1" {
			t.Errorf("added = %v, want [t1] re-added after reset", added)
		}
	})

	t.Run("reset with dry run stays read-only", func(t *testing.T) {
		svc := newLibraryMock()
		svc.Playlists = append(svc.Playlists, services.Playlist{ID: "tgt", Name: "Road Trip"})
		svc.TracksByID["tgt"] = []services.Track{
			{ID: "t1", Title: "Tainted Love", Artist: "Soft Cell"},
		}
		engine := newTestEngine(svc)

		result, err := engine.Run(context.Background(), nil, RunOptions{
			TargetName: "Road Trip",
			Entries:    entries("Tainted Love"),
			Reset:      true,
			DryRun:     true,
		})
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		if svc.Mutated() {
			t.Error("dry run reset must not remove tracks")
		}
		if result.Removed != 1 {
			t.Errorf("Removed = %d, want 1 reported", result.Removed)
		}
		if result.Added != 1 {
			t.Errorf("Added = %d, want 1 planned against emptied target", result.Added)
		}
	})
}

func TestRunPartialFailure(t *testing.T) {
	svc := newLibraryMock()
	svc.AddErrByTrack = map[string]error{"t1": errors.New("quota exceeded")}
	engine := newTestEngine(svc)

	result, err := engine.Run(context.Background(), nil, RunOptions{
		TargetName: "Road Trip",
		Entries:    entries("Tainted Love", "Blue Monday"),
	})
	if err != nil {
		t.Fatalf("Run() error = %v, partial failure should not abort", err)
	}

	if result.Failed != 1 || result.Added != 1 {
		t.Errorf("Failed = %d, Added = %d, want 1 and 1", result.Failed, result.Added)
	}

	var failed *SongResult
	for i := range result.Results {
		if result.Results[i].Status == StatusFailed {
			failed = &result.Results[i]
		}
	}
	if failed == nil {
		t.Fatal("expected a failed result")
	}
	if failed.Err == nil {
		t.Error("failed result should carry the add error")
	}

	if added := svc.AddCalls[result.Target.ID]; len(added) != 1 || added[0] != "t3" {
		t.Errorf("added = %v, want remaining track t3 despite earlier failure", added)
	}
}

func TestRunDuplicateEntries(t *testing.T) {
	svc := newLibraryMock()
	engine := newTestEngine(svc)

	result, err := engine.Run(context.Background(), nil, RunOptions{
		TargetName: "Road Trip",
		Entries:    entries("Tainted Love", "Tainted Love"),
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Added != 1 || result.Present != 1 {
		t.Errorf("Added = %d, Present = %d, want duplicate collapsed to 1 and 1", result.Added, result.Present)
	}
	if len(result.Results) != 2 {
		t.Errorf("got %d results, want one per input line", len(result.Results))
	}
}

func TestRunValidation(t *testing.T) {
	t.Run("missing target name", func(t *testing.T) {
		engine := newTestEngine(newLibraryMock())
		if _, err := engine.Run(context.Background(), nil, RunOptions{}); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("error = %v, want ErrMissingArgument", err)
		}
	})

	t.Run("nil service", func(t *testing.T) {
		engine := NewReconcileEngine(EngineOpts{})
		_, err := engine.Run(context.Background(), nil, RunOptions{TargetName: "x"})
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("error = %v, want ErrServiceUnavailable", err)
		}
	})
}

func TestRunProgressUpdates(t *testing.T) {
	svc := newLibraryMock()
	engine := newTestEngine(svc)

	progress := make(chan ProgressUpdate, 64)
	_, err := engine.Run(context.Background(), progress, RunOptions{
		TargetName: "Road Trip",
		Entries:    entries("Tainted Love"),
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	close(progress)

	phases := make(map[Phase]bool)
	for update := range progress {
		phases[update.Phase] = true
	}
	for _, want := range []Phase{ListPlaylists, PoolCandidates, ResolveTarget, MatchTracks, AddTracks, Done} {
		if !phases[want] {
			t.Errorf("missing progress phase %s", want)
		}
	}
}

type recordingCache struct {
	calls map[string]int
}

func (c *recordingCache) RecordTracks(ctx context.Context, service, playlistID string, tracks []services.Track) error {
	if c.calls == nil {
		c.calls = make(map[string]int)
	}
	c.calls[playlistID] += len(tracks)
	return errors.New("cache unavailable")
}

func TestRunCacheFailuresIgnored(t *testing.T) {
	svc := newLibraryMock()
	engine := NewReconcileEngine(EngineOpts{
		Service: svc,
		Matcher: match.NewMatcher(match.Config{Threshold: 0.6}),
		Cache:   &recordingCache{},
	})

	result, err := engine.Run(context.Background(), nil, RunOptions{
		TargetName: "Road Trip",
		Entries:    entries("Tainted Love"),
	})
	if err != nil {
		t.Fatalf("Run() error = %v, cache errors must not surface", err)
	}
	if result.Added != 1 {
		t.Errorf("Added = %d, want 1", result.Added)
	}
}
