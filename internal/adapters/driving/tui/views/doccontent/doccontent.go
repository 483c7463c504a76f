// Package doccontent provides the document content view for the TUI.
package doccontent

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/ragdesk/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ragdesk/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/ragdesk/internal/core/domain"
	"github.com/custodia-labs/ragdesk/internal/postprocessors/chunker"
)

// reservedLines covers the title, metadata, separator, position and help.
const reservedLines = 7

// View shows the cleaned text stored for a document. Pressing c marks the
// boundaries of the chunks the text is embedded as.
type View struct {
	styles   *styles.Styles
	viewport viewport.Model

	document  *domain.Document
	chunkSize int
	markers   bool
	lines     []string
	width     int
	height    int
	ready     bool
	err       error
}

// NewView creates a new document content view.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:    s,
		viewport:  viewport.New(76, 17),
		chunkSize: domain.DefaultChunkSize,
	}
}

// WithChunkSize sets the chunk size used for the chunk count and markers.
// Non-positive sizes are ignored.
func (v *View) WithChunkSize(size int) *View {
	if size > 0 {
		v.chunkSize = size
		v.render()
	}
	return v
}

// SetDocument shows doc from the top.
func (v *View) SetDocument(doc *domain.Document) {
	v.document = doc
	v.err = nil
	v.render()
	v.viewport.GotoTop()
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the document content view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.DocumentSelected:
		doc := msg.Document
		v.SetDocument(&doc)
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewDocuments}
		}
	case "c":
		v.markers = !v.markers
		v.render()
		return v, nil
	case "home", "g":
		v.viewport.GotoTop()
		return v, nil
	case "end", "G":
		v.viewport.GotoBottom()
		return v, nil
	}

	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return v, cmd
}

// render rebuilds the wrapped lines and hands them to the viewport.
func (v *View) render() {
	v.lines = nil
	if v.document != nil && v.document.Content != "" {
		width := max(v.width-4, 20)
		if v.markers {
			for i, piece := range chunker.Split(v.document.Content, v.chunkSize) {
				v.lines = append(v.lines, v.styles.Muted.Render(fmt.Sprintf("── chunk %d ──", i+1)))
				v.lines = append(v.lines, wrap(piece, width)...)
			}
		} else {
			v.lines = wrap(v.document.Content, width)
		}
	}
	v.viewport.SetContent(strings.Join(v.lines, "\n"))
}

// wrap splits text on newlines and hard-wraps each line at width runes.
func wrap(text string, width int) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		runes := []rune(line)
		for len(runes) > width {
			lines = append(lines, string(runes[:width]))
			runes = runes[width:]
		}
		if len(runes) > 0 || line == "" {
			lines = append(lines, string(runes))
		}
	}
	return lines
}

// View renders the document content view.
func (v *View) View() string {
	var b strings.Builder

	title := "Document Content"
	if v.document != nil {
		title = v.document.Name
		if title == "" {
			title = fmt.Sprintf("Document %d", v.document.ID)
		}
	}
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n")
	if v.document != nil {
		b.WriteString(v.styles.Muted.Render(v.metadata()))
		b.WriteString("\n")
	}
	b.WriteString(strings.Repeat("─", max(min(v.width-4, 60), 0)))
	b.WriteString("\n\n")

	switch {
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n\n")
	case len(v.lines) == 0:
		b.WriteString(v.styles.Muted.Render("(No content)"))
		b.WriteString("\n\n")
	default:
		b.WriteString(v.viewport.View())
		b.WriteString("\n")
		if total := v.viewport.TotalLineCount(); total > v.viewport.Height {
			first := v.viewport.YOffset + 1
			last := min(v.viewport.YOffset+v.viewport.Height, total)
			b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [%d%%] Line %d-%d of %d",
				int(v.viewport.ScrollPercent()*100), first, last, total)))
		}
		b.WriteString("\n")
	}

	b.WriteString(v.styles.Help.Render("[↑/↓/PgUp/PgDn] scroll  [g/G] top/bottom  [c] chunks  [esc] back"))
	return b.String()
}

func (v *View) metadata() string {
	meta := "Uploaded " + v.document.FormatUploadDate()
	if v.document.Protected {
		meta += "  [protected]"
	}
	chars := len([]rune(v.document.Content))
	chunks := chunker.Count(v.document.Content, v.chunkSize)
	return meta + fmt.Sprintf("  %d characters in %d chunks of %d", chars, chunks, v.chunkSize)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.viewport.Width = max(width-4, 20)
	v.viewport.Height = max(height-reservedLines, 1)
	v.render()
}

// Document returns the current document.
func (v *View) Document() *domain.Document {
	return v.document
}

// Content returns the document content.
func (v *View) Content() string {
	if v.document == nil {
		return ""
	}
	return v.document.Content
}

// Lines returns the rendered lines, including chunk markers when shown.
func (v *View) Lines() []string {
	return v.lines
}

// ScrollOffset returns the index of the first visible line.
func (v *View) ScrollOffset() int {
	return v.viewport.YOffset
}

// ShowingChunks reports whether chunk markers are shown.
func (v *View) ShowingChunks() bool {
	return v.markers
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
