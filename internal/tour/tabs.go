package tour

import (
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/conneroisu/codetour/internal/loader"
	"github.com/conneroisu/codetour/internal/selection"
)

// Tab is one entry of the file tab strip.
type Tab struct {
	Label string
	File  loader.FileDescriptor
}

// TabGroup tracks which file tab is showing. The active index follows the
// store's selected file; choosing a tab selects its file.
type TabGroup struct {
	tabs     []Tab
	selected int
	mutex    sync.RWMutex
}

// NewTabGroup creates a tab per file, labelled by display name.
func NewTabGroup(files []loader.FileDescriptor, titleCase bool) *TabGroup {
	caser := cases.Title(language.English, cases.NoLower)
	tabs := make([]Tab, len(files))
	for i, file := range files {
		label := file.DisplayName
		if titleCase {
			label = caser.String(label)
		}
		tabs[i] = Tab{Label: label, File: file}
	}
	return &TabGroup{tabs: tabs}
}

// Tabs returns the tabs in order.
func (g *TabGroup) Tabs() []Tab {
	return g.tabs
}

// Len returns the number of tabs.
func (g *TabGroup) Len() int {
	return len(g.tabs)
}

// SelectedIndex returns the active tab.
func (g *TabGroup) SelectedIndex() int {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return g.selected
}

// Sync makes the tab of the selected file active. A selection outside the
// tab list leaves the previous tab active.
func (g *TabGroup) Sync(state selection.State) (int, bool) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if !state.HasFile() {
		return g.selected, false
	}
	for i, tab := range g.tabs {
		if tab.File.Path == state.SelectedFile {
			changed := g.selected != i
			g.selected = i
			return i, changed
		}
	}
	return g.selected, false
}

// Select makes tab i active, reporting false when i is out of range.
func (g *TabGroup) Select(i int) (Tab, bool) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if i < 0 || i >= len(g.tabs) {
		return Tab{}, false
	}
	g.selected = i
	return g.tabs[i], true
}

// IndexOf returns the index of the tab with the given label or path.
func (g *TabGroup) IndexOf(ref string) int {
	for i, tab := range g.tabs {
		if tab.Label == ref || tab.File.Matches(ref) {
			return i
		}
	}
	return -1
}

// Find is IndexOf with a case-insensitive label fallback, for names typed
// by people.
func (g *TabGroup) Find(name string) int {
	if i := g.IndexOf(name); i >= 0 {
		return i
	}
	for i, tab := range g.tabs {
		if strings.EqualFold(tab.Label, name) {
			return i
		}
	}
	return -1
}
