// Package list provides the recents list component for the TUI.
package list

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/arrivals/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/arrivals/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/arrivals/internal/core/domain"
)

// ItemList displays recent items in a navigable list.
type ItemList struct {
	items    []domain.RecentItem
	selected int
	expanded bool
	styles   *styles.Styles
	keymap   *keymap.KeyMap
	width    int
}

// NewItemList creates a new item list component.
func NewItemList(s *styles.Styles, km *keymap.KeyMap) *ItemList {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &ItemList{
		styles: s,
		keymap: km,
		width:  80,
	}
}

// Update handles list navigation keys.
func (l *ItemList) Update(msg tea.Msg) (*ItemList, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return l, nil
	}
	switch {
	case key.Matches(keyMsg, l.keymap.Up):
		l.MoveUp()
	case key.Matches(keyMsg, l.keymap.Down):
		l.MoveDown()
	case key.Matches(keyMsg, l.keymap.Select):
		l.expanded = !l.expanded
	}
	return l, nil
}

// View renders the list.
func (l *ItemList) View() string {
	if len(l.items) == 0 {
		return l.styles.Muted.Render("No arrivals recorded yet")
	}

	maxName := l.width - 8
	if maxName < 10 {
		maxName = 10
	}

	lines := make([]string, 0, len(l.items)+1)
	for i, item := range l.items {
		name := truncate(item.DisplayName(), maxName)
		if name == "" {
			name = item.ID
		}
		line := fmt.Sprintf("%d. %s", i+1, name)
		if i == l.selected {
			lines = append(lines, l.styles.Selected.Render("> "+line))
			if l.expanded && item.URL != "" {
				lines = append(lines, "     "+l.styles.Link.Render(item.URL))
			}
			continue
		}
		lines = append(lines, l.styles.Normal.Render("  "+line))
	}
	return strings.Join(lines, "\n")
}

// SetItems replaces the items. The selection is kept when it still fits.
func (l *ItemList) SetItems(items []domain.RecentItem) {
	l.items = items
	if l.selected >= len(items) {
		l.selected = 0
		l.expanded = false
	}
}

// Items returns the current items.
func (l *ItemList) Items() []domain.RecentItem {
	return l.items
}

// Selected returns the index of the selected item.
func (l *ItemList) Selected() int {
	return l.selected
}

// SelectedItem returns the selected item, or nil if the list is empty.
func (l *ItemList) SelectedItem() *domain.RecentItem {
	if l.selected < 0 || l.selected >= len(l.items) {
		return nil
	}
	return &l.items[l.selected]
}

// Expanded reports whether the selected item's link is shown.
func (l *ItemList) Expanded() bool {
	return l.expanded
}

// MoveUp moves selection up.
func (l *ItemList) MoveUp() {
	if l.selected > 0 {
		l.selected--
		l.expanded = false
	}
}

// MoveDown moves selection down.
func (l *ItemList) MoveDown() {
	if l.selected < len(l.items)-1 {
		l.selected++
		l.expanded = false
	}
}

// SetWidth sets the component width.
func (l *ItemList) SetWidth(width int) {
	l.width = width
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
