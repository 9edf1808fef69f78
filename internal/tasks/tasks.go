// package tasks implements playlist reconciliation against a music service.
//
// The core abstraction is ReconcileEngine, which pools candidate tracks from
// master playlists, fuzzy-matches a requested song list against the pool, and
// converges a target playlist on the matched set. Operations emit progress
// updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"

	"github.com/gmcculloug/mixtape/internal/match"
	"github.com/gmcculloug/mixtape/internal/services"
	"github.com/gmcculloug/mixtape/internal/shared"
	"github.com/gmcculloug/mixtape/internal/songlist"
)

// Status classifies the outcome for a single requested song.
type Status int

const (
	// StatusAdded means the track was added to the target (or would be, in a
	// dry run).
	StatusAdded Status = iota
	// StatusPresent means the matched track was already in the target, or was
	// already planned by an earlier line of the same run.
	StatusPresent
	// StatusUnmatched means no candidate cleared the similarity threshold.
	StatusUnmatched
	// StatusFailed means the add call for a matched track failed.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusAdded:
		return "added"
	case StatusPresent:
		return "present"
	case StatusUnmatched:
		return "unmatched"
	case StatusFailed:
		return "failed"
	default:
		return ""
	}
}

// SongResult is the per-line outcome of a reconcile run.
type SongResult struct {
	Entry  songlist.Entry // Requested song, raw line preserved
	Match  match.Result   // Match outcome, Track nil when unmatched
	Status Status
	Err    error // Set only for StatusFailed
}

// RunOptions configures a reconcile run.
type RunOptions struct {
	TargetName string          // Target playlist name, resolved or created by exact name
	Entries    []songlist.Entry
	DryRun     bool // Report the plan without mutating the service
	Reset      bool // Empty the target before adding
}

// RunResult aggregates everything a reconcile run observed and did.
type RunResult struct {
	Target        services.Playlist
	TargetCreated bool

	MasterPlaylists []services.Playlist // Playlists pooled as candidates
	CandidateCount  int                 // Distinct tracks in the pool

	Results   []SongResult // One per input entry, in input order
	Added     int
	Present   int
	Unmatched int
	Failed    int
	Removed   int // Tracks cleared by reset, 0 otherwise

	DryRun bool
}

// Unmatched returns the entries that found no candidate, in input order.
func (r *RunResult) UnmatchedEntries() []songlist.Entry {
	var out []songlist.Entry
	for _, sr := range r.Results {
		if sr.Status == StatusUnmatched {
			out = append(out, sr.Entry)
		}
	}
	return out
}

// TrackCacher records observed tracks for offline inspection. Recording is
// best-effort; reconciliation never depends on cached state.
type TrackCacher interface {
	RecordTracks(ctx context.Context, service, playlistID string, tracks []services.Track) error
}

// Reconciler defines the reconcile operations exposed to CLI/UI layers.
type Reconciler interface {
	// CollectCandidates pools tracks from every master playlist on the service.
	CollectCandidates(ctx context.Context, progress chan<- ProgressUpdate) (*CandidatePool, error)

	// Run reconciles the target playlist against the requested song list.
	Run(ctx context.Context, progress chan<- ProgressUpdate, opts RunOptions) (*RunResult, error)
}

// CandidatePool holds the deduplicated tracks gathered from master playlists,
// along with the full playlist listing so callers can resolve targets without
// a second round trip.
type CandidatePool struct {
	Tracks    []services.Track    // First occurrence wins on duplicate track IDs
	Masters   []services.Playlist // Playlists that contributed, listing order
	Playlists []services.Playlist // Every playlist on the account
}

// ReconcileEngine implements Reconciler against a single music service.
type ReconcileEngine struct {
	service       services.Service
	matcher       *match.Matcher
	cache         TrackCacher
	masterKeyword string
}

// EngineOpts configures a ReconcileEngine.
type EngineOpts struct {
	Service       services.Service
	Matcher       *match.Matcher
	Cache         TrackCacher // Optional
	MasterKeyword string      // Defaults to "master"
}

// NewReconcileEngine creates an engine with the provided dependencies.
func NewReconcileEngine(opts EngineOpts) *ReconcileEngine {
	if opts.Matcher == nil {
		opts.Matcher = match.NewMatcher(match.DefaultConfig())
	}
	return &ReconcileEngine{
		service:       opts.Service,
		matcher:       opts.Matcher,
		cache:         opts.Cache,
		masterKeyword: opts.MasterKeyword,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *ReconcileEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// CollectCandidates lists the account's playlists, selects those whose name
// contains the master keyword, and pools their tracks. Duplicate track IDs
// keep the first occurrence. Returns shared.ErrNoMasterPlaylist when no
// playlist qualifies.
func (e *ReconcileEngine) CollectCandidates(ctx context.Context, progress chan<- ProgressUpdate) (*CandidatePool, error) {
	if e.service == nil {
		return nil, fmt.Errorf("%w: music service not initialized", shared.ErrServiceUnavailable)
	}

	e.sendProgress(progress, listPlaylistsUpdate(e.service.Name()))

	playlists, err := e.service.ListPlaylists(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list playlists: %v", shared.ErrAPIRequest, err)
	}

	var masters []services.Playlist
	for _, pl := range playlists {
		if shared.IsMasterPlaylist(pl.Name, e.masterKeyword) {
			masters = append(masters, pl)
		}
	}

	if len(masters) == 0 {
		return nil, fmt.Errorf("%w: no playlist name contains %q", shared.ErrNoMasterPlaylist, e.keyword())
	}

	pool := &CandidatePool{Masters: masters, Playlists: playlists}
	seen := make(map[string]struct{})

	for i, pl := range masters {
		e.sendProgress(progress, poolPlaylistUpdate(i+1, len(masters), pl.Name))

		tracks, err := e.service.PlaylistTracks(ctx, pl.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to fetch tracks for %q: %v", shared.ErrAPIRequest, pl.Name, err)
		}

		for _, tr := range tracks {
			if _, dup := seen[tr.ID]; dup {
				continue
			}
			seen[tr.ID] = struct{}{}
			pool.Tracks = append(pool.Tracks, tr)
		}

		e.recordTracks(ctx, pl.ID, tracks)
	}

	e.sendProgress(progress, pooledUpdate(len(pool.Tracks), len(masters)))
	return pool, nil
}

// Run executes a full reconcile: collect candidates, resolve the target
// playlist, match every requested entry, and converge the target on the
// matched set. A failed add records the failure and continues with the
// remaining tracks.
func (e *ReconcileEngine) Run(ctx context.Context, progress chan<- ProgressUpdate, opts RunOptions) (*RunResult, error) {
	if e.service == nil {
		return nil, fmt.Errorf("%w: music service not initialized", shared.ErrServiceUnavailable)
	}
	if opts.TargetName == "" {
		return nil, fmt.Errorf("%w: target playlist name", shared.ErrMissingArgument)
	}

	pool, err := e.CollectCandidates(ctx, progress)
	if err != nil {
		return nil, err
	}

	result := &RunResult{
		MasterPlaylists: pool.Masters,
		CandidateCount:  len(pool.Tracks),
		DryRun:          opts.DryRun,
	}

	target, created, err := e.resolveTarget(ctx, progress, pool.Playlists, opts)
	if err != nil {
		return nil, err
	}
	result.Target = target
	result.TargetCreated = created

	existing, removed, err := e.targetState(ctx, progress, target, created, opts)
	if err != nil {
		return nil, err
	}
	result.Removed = removed

	plan := e.buildPlan(progress, pool.Tracks, existing, opts.Entries, result)

	if !opts.DryRun {
		e.applyPlan(ctx, progress, target.ID, plan, result)
	}

	for _, sr := range result.Results {
		switch sr.Status {
		case StatusAdded:
			result.Added++
		case StatusPresent:
			result.Present++
		case StatusUnmatched:
			result.Unmatched++
		case StatusFailed:
			result.Failed++
		}
	}

	e.sendProgress(progress, doneUpdate(result))
	return result, nil
}

// resolveTarget finds the playlist with the exact target name, creating it
// when absent. In a dry run the creation is reported but not performed; the
// returned playlist then carries an empty ID.
func (e *ReconcileEngine) resolveTarget(ctx context.Context, progress chan<- ProgressUpdate, playlists []services.Playlist, opts RunOptions) (services.Playlist, bool, error) {
	for _, pl := range playlists {
		if pl.Name == opts.TargetName {
			e.sendProgress(progress, targetFoundUpdate(pl.Name))
			return pl, false, nil
		}
	}

	e.sendProgress(progress, targetCreateUpdate(opts.TargetName, opts.DryRun))

	if opts.DryRun {
		return services.Playlist{Name: opts.TargetName}, true, nil
	}

	created, err := e.service.CreatePlaylist(ctx, opts.TargetName)
	if err != nil {
		return services.Playlist{}, false, fmt.Errorf("%w: failed to create %q: %v", shared.ErrTargetResolution, opts.TargetName, err)
	}
	return *created, true, nil
}

// targetState determines the target's current track IDs. A freshly created
// target is empty. Reset empties the target, skipping the remove call in a
// dry run, and reports how many tracks it cleared.
func (e *ReconcileEngine) targetState(ctx context.Context, progress chan<- ProgressUpdate, target services.Playlist, created bool, opts RunOptions) (map[string]struct{}, int, error) {
	existing := make(map[string]struct{})
	if created {
		return existing, 0, nil
	}

	tracks, err := e.service.PlaylistTracks(ctx, target.ID)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: failed to fetch target tracks: %v", shared.ErrAPIRequest, err)
	}
	e.recordTracks(ctx, target.ID, tracks)

	if opts.Reset {
		e.sendProgress(progress, resetUpdate(target.Name, len(tracks), opts.DryRun))
		if !opts.DryRun {
			if err := e.service.RemoveAllTracks(ctx, target.ID); err != nil {
				return nil, 0, fmt.Errorf("%w: failed to reset target: %v", shared.ErrAPIRequest, err)
			}
		}
		return existing, len(tracks), nil
	}

	for _, tr := range tracks {
		existing[tr.ID] = struct{}{}
	}
	return existing, 0, nil
}

// buildPlan matches every entry against the candidate pool and records one
// SongResult per entry. Matched tracks absent from both the target and the
// plan so far are marked StatusAdded and returned as the ordered plan;
// duplicates within the run collapse to StatusPresent.
func (e *ReconcileEngine) buildPlan(progress chan<- ProgressUpdate, candidates []services.Track, existing map[string]struct{}, entries []songlist.Entry, result *RunResult) []SongResult {
	planned := make(map[string]struct{})
	var plan []SongResult

	for i, entry := range entries {
		e.sendProgress(progress, matchUpdate(i+1, len(entries), entry.Title))

		m := e.matcher.FindBestMatch(entry.Title, candidates)
		sr := SongResult{Entry: entry, Match: m}

		switch {
		case !m.Matched():
			sr.Status = StatusUnmatched
		default:
			_, inTarget := existing[m.Track.ID]
			_, inPlan := planned[m.Track.ID]
			if inTarget || inPlan {
				sr.Status = StatusPresent
			} else {
				sr.Status = StatusAdded
				planned[m.Track.ID] = struct{}{}
			}
		}

		result.Results = append(result.Results, sr)
		if sr.Status == StatusAdded {
			plan = append(plan, sr)
		}
	}

	return plan
}

// applyPlan adds each planned track to the target. Failures downgrade the
// corresponding SongResult to StatusFailed and the run continues.
func (e *ReconcileEngine) applyPlan(ctx context.Context, progress chan<- ProgressUpdate, targetID string, plan []SongResult, result *RunResult) {
	for i, sr := range plan {
		e.sendProgress(progress, addTrackUpdate(i+1, len(plan), sr.Match.Track.DisplayName()))

		if err := e.service.AddTrack(ctx, targetID, sr.Match.Track.ID); err != nil {
			for j := range result.Results {
				if result.Results[j].Status == StatusAdded && result.Results[j].Match.Track != nil &&
					result.Results[j].Match.Track.ID == sr.Match.Track.ID {
					result.Results[j].Status = StatusFailed
					result.Results[j].Err = err
					break
				}
			}
		}
	}
}

// recordTracks forwards observed tracks to the cache, if one is configured.
// Cache failures never affect the run.
func (e *ReconcileEngine) recordTracks(ctx context.Context, playlistID string, tracks []services.Track) {
	if e.cache == nil || len(tracks) == 0 {
		return
	}
	_ = e.cache.RecordTracks(ctx, e.service.Name(), playlistID, tracks)
}

func (e *ReconcileEngine) keyword() string {
	if e.masterKeyword == "" {
		return "master"
	}
	return e.masterKeyword
}
