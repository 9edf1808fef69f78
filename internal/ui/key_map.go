package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the bindings for the review-then-apply workflow. List
// navigation (j/k, filtering) is handled by the bubbles list widget itself.
type keyMap struct {
	apply key.Binding // plan view: proceed to confirmation
	yes   key.Binding // confirm view: run the apply
	no    key.Binding // confirm view: back to the plan
	quit  key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		apply: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply plan")),
		yes:   key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "apply")),
		no:    key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "back to plan")),
		quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}
