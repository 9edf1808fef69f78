package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ListPlaylists Phase = iota
	PoolCandidates
	ResolveTarget
	ResetTarget
	MatchTracks
	AddTracks
	Done
)

func (p Phase) String() string {
	switch p {
	case ListPlaylists:
		return "list_playlists"
	case PoolCandidates:
		return "pool_candidates"
	case ResolveTarget:
		return "resolve_target"
	case ResetTarget:
		return "reset_target"
	case MatchTracks:
		return "match_tracks"
	case AddTracks:
		return "add_tracks"
	case Done:
		return "done"
	default:
		return ""
	}
}

func listPlaylistsUpdate(service string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ListPlaylists,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Listing playlists on %s...", service),
	}
}

func poolPlaylistUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PoolCandidates,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Pooling tracks from %s...", step, total, name),
	}
}

func pooledUpdate(trackCount, playlistCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PoolCandidates,
		Step:    playlistCount,
		Total:   playlistCount,
		Message: fmt.Sprintf("Pooled %d candidate tracks from %d master playlists", trackCount, playlistCount),
	}
}

func targetFoundUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveTarget,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found target playlist: %s", name),
	}
}

func targetCreateUpdate(name string, dryRun bool) ProgressUpdate {
	msg := fmt.Sprintf("Creating target playlist: %s", name)
	if dryRun {
		msg = fmt.Sprintf("Would create target playlist: %s", name)
	}
	return ProgressUpdate{
		Phase:   ResolveTarget,
		Step:    1,
		Total:   1,
		Message: msg,
	}
}

func resetUpdate(name string, trackCount int, dryRun bool) ProgressUpdate {
	msg := fmt.Sprintf("Removing %d tracks from %s", trackCount, name)
	if dryRun {
		msg = fmt.Sprintf("Would remove %d tracks from %s", trackCount, name)
	}
	return ProgressUpdate{
		Phase:   ResetTarget,
		Step:    1,
		Total:   1,
		Message: msg,
	}
}

func matchUpdate(step, total int, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   MatchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Matching: %s", step, total, title),
	}
}

func addTrackUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AddTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Adding: %s", step, total, name),
	}
}

func doneUpdate(result *RunResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Done,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Reconcile complete: %d added, %d present, %d unmatched, %d failed", result.Added, result.Present, result.Unmatched, result.Failed),
		Data:    result,
	}
}
