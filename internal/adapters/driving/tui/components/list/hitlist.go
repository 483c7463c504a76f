// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/ragdesk/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/ragdesk/internal/core/domain"
)

// HitList displays the passages retrieved for a question in a navigable list.
type HitList struct {
	hits     []domain.RetrievalHit
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewHitList creates a new hit list component.
func NewHitList(s *styles.Styles) *HitList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &HitList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the list.
func (r *HitList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (r *HitList) Update(msg tea.Msg) (*HitList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			r.MoveUp()
		case "down", "j":
			r.MoveDown()
		}
	}
	return r, nil
}

// View renders the list.
func (r *HitList) View() string {
	if len(r.hits) == 0 {
		return r.styles.Muted.Render("No sources")
	}

	lines := make([]string, 0, len(r.hits)+2)

	header := r.styles.Subtitle.Render(fmt.Sprintf("Sources (%d)", len(r.hits)))
	lines = append(lines, header, "")

	// Each hit takes two lines
	visibleCount := (r.height - 2) / 2
	if visibleCount < 1 {
		visibleCount = 1
	}

	start := 0
	if r.selected >= visibleCount {
		start = r.selected - visibleCount + 1
	}
	end := min(start+visibleCount, len(r.hits))

	for i := start; i < end; i++ {
		lines = append(lines, r.renderHit(i, &r.hits[i]))
	}

	return strings.Join(lines, "\n")
}

// renderHit formats a single hit with a preview of its chunk.
func (r *HitList) renderHit(index int, hit *domain.RetrievalHit) string {
	indicator := "  "
	if index == r.selected {
		indicator = "> "
	}

	name := hit.Document.Name
	if name == "" {
		name = fmt.Sprintf("document %d", hit.Document.ID)
	}

	maxNameLen := r.width - 24
	if maxNameLen < 10 {
		maxNameLen = 10
	}
	name = truncate(name, maxNameLen)

	meta := fmt.Sprintf("#%d  d=%.3f", hit.Chunk.Position, hit.Distance)

	var titleLine string
	if index == r.selected {
		titleLine = r.styles.Selected.Render(fmt.Sprintf("%s%-*s  %s", indicator, maxNameLen, name, meta))
	} else {
		titleLine = r.styles.Source.Render(fmt.Sprintf("%s%-*s  ", indicator, maxNameLen, name)) +
			r.styles.Distance(hit.Distance).Render(meta)
	}

	maxPreviewLen := r.width - 6
	if maxPreviewLen < 20 {
		maxPreviewLen = 20
	}
	preview := truncate(strings.Join(strings.Fields(hit.Chunk.Content), " "), maxPreviewLen)

	return titleLine + "\n" + r.styles.Muted.Render("    "+preview)
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}

// SetHits replaces the listed hits and resets the selection.
func (r *HitList) SetHits(hits []domain.RetrievalHit) {
	r.hits = hits
	r.selected = 0
}

// Hits returns the current hits.
func (r *HitList) Hits() []domain.RetrievalHit {
	return r.hits
}

// Selected returns the index of the selected hit.
func (r *HitList) Selected() int {
	return r.selected
}

// SelectedHit returns the currently selected hit, or nil if none.
func (r *HitList) SelectedHit() *domain.RetrievalHit {
	if len(r.hits) == 0 || r.selected < 0 || r.selected >= len(r.hits) {
		return nil
	}
	return &r.hits[r.selected]
}

// MoveUp moves selection up.
func (r *HitList) MoveUp() {
	if r.selected > 0 {
		r.selected--
	}
}

// MoveDown moves selection down.
func (r *HitList) MoveDown() {
	if r.selected < len(r.hits)-1 {
		r.selected++
	}
}

// SetDimensions sets the component dimensions.
func (r *HitList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}

// Count returns the number of hits.
func (r *HitList) Count() int {
	return len(r.hits)
}
