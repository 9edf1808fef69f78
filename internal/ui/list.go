package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/gmcculloug/mixtape/internal/tasks"
)

var _ list.Item = songItem{}

// songItem wraps [tasks.SongResult] to implement [list.Item].
type songItem struct {
	result tasks.SongResult
}

func (i songItem) FilterValue() string { return i.result.Entry.Raw }

func (i songItem) Title() string {
	switch i.result.Status {
	case tasks.StatusAdded:
		return fmt.Sprintf("+ %s", i.result.Entry.Raw)
	case tasks.StatusPresent:
		return fmt.Sprintf("= %s", i.result.Entry.Raw)
	default:
		return fmt.Sprintf("? %s", i.result.Entry.Raw)
	}
}

func (i songItem) Description() string {
	if !i.result.Match.Matched() {
		return "no match in master playlists"
	}
	return fmt.Sprintf("%s • score %.2f", i.result.Match.Track.DisplayName(), i.result.Match.Score)
}
