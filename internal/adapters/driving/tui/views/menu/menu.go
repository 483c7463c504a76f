// Package menu provides the main navigation menu view for the TUI.
package menu

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/ragdesk/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ragdesk/internal/adapters/driving/tui/styles"
)

// Item is one entry of the menu.
type Item struct {
	Label       string
	Description string
	View        messages.ViewType
	Quit        bool
}

// View is the landing screen. It lists the top-level views and, once the
// document list has been loaded, a one-line summary of the corpus.
type View struct {
	styles   *styles.Styles
	items    []Item
	selected int
	width    int
	height   int
	ready    bool

	documents int
	vectors   int
	known     bool
}

// NewView creates a new menu view.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &View{
		styles: s,
		items: []Item{
			{Label: "Ask", Description: "Ask a question and read the cited sources", View: messages.ViewAsk},
			{Label: "Documents", Description: "Browse, add and delete documents", View: messages.ViewDocuments},
			{Label: "Help", Description: "Key bindings", View: messages.ViewHelp},
			{Label: "Quit", Description: "Leave ragdesk", Quit: true},
		},
		width:  80,
		height: 24,
	}
}

// Init initialises the menu view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		key := msg.String()
		switch key {
		case "up", "k":
			v.selected = (v.selected + len(v.items) - 1) % len(v.items)
		case "down", "j":
			v.selected = (v.selected + 1) % len(v.items)
		case "enter":
			return v, v.choose(v.selected)
		case "q":
			return v, tea.Quit
		default:
			// Digits jump straight to the numbered entry.
			if len(key) == 1 && key[0] >= '1' && int(key[0]-'0') <= len(v.items) {
				v.selected = int(key[0] - '1')
				return v, v.choose(v.selected)
			}
		}
	}

	return v, nil
}

func (v *View) choose(i int) tea.Cmd {
	item := v.items[i]
	if item.Quit {
		return tea.Quit
	}
	return func() tea.Msg {
		return messages.ViewChanged{View: item.View}
	}
}

// View renders the menu.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("ragdesk"))
	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render("Ask questions about your documents"))
	b.WriteString("\n\n")

	for i, item := range v.items {
		label := fmt.Sprintf("%d. %-10s", i+1, item.Label)
		if i == v.selected {
			b.WriteString("> " + v.styles.Selected.Render(label))
		} else {
			b.WriteString("  " + v.styles.Normal.Render(label))
		}
		b.WriteString(" " + v.styles.Muted.Render(item.Description) + "\n")
	}

	b.WriteString("\n")
	if v.known {
		b.WriteString(v.styles.Subtitle.Render(v.Summary()))
		b.WriteString("\n")
	}
	b.WriteString(v.styles.Help.Render("[j/k] Navigate  [1-4/Enter] Select  [q] Quit"))

	return b.String()
}

// SetCorpus records the corpus size shown under the menu.
func (v *View) SetCorpus(documents, vectors int) {
	v.documents = documents
	v.vectors = vectors
	v.known = true
}

// Summary describes the corpus size, or is empty before SetCorpus.
func (v *View) Summary() string {
	if !v.known {
		return ""
	}
	noun := "documents"
	if v.documents == 1 {
		noun = "document"
	}
	return fmt.Sprintf("%d %s, %d vectors indexed", v.documents, noun, v.vectors)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Selected returns the currently selected index.
func (v *View) Selected() int {
	return v.selected
}
