// Package documents provides the documents list view component for the TUI.
package documents

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/ragdesk/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/ragdesk/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ragdesk/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/ragdesk/internal/core/domain"
	"github.com/custodia-labs/ragdesk/internal/core/ports/driving"
)

var (
	errNoDocumentService = errors.New("document service not available")
	errNoIngestService   = errors.New("ingest service not available")
)

// ActionOption represents a document action.
type ActionOption int

const (
	ActionShowContent ActionOption = iota
	ActionDelete
	ActionCancel
)

// View is the documents list view.
type View struct {
	styles          *styles.Styles
	documentService driving.DocumentService
	ingestService   driving.IngestService
	ctx             context.Context

	documents    []domain.Document
	indexSize    int
	selected     int
	width        int
	height       int
	ready        bool
	err          error
	notice       string
	loading      bool
	busy         string
	showingMenu  bool
	menuSelected ActionOption
	adding       bool
	path         *input.TextInput
	scrollOffset int
}

// NewView creates a new documents view.
func NewView(s *styles.Styles, documentService driving.DocumentService, ingestService driving.IngestService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:          s,
		documentService: documentService,
		ingestService:   ingestService,
		ctx:             context.Background(),
		documents:       []domain.Document{},
		path:            input.NewPathInput(s),
	}
}

// WithContext sets the context used for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Load resets the view and returns a command that loads the documents.
func (v *View) Load() tea.Cmd {
	v.selected = 0
	v.scrollOffset = 0
	v.err = nil
	v.notice = ""
	v.showingMenu = false
	v.adding = false
	v.loading = true
	return v.loadDocuments()
}

// loadDocuments returns a command that lists the stored documents.
func (v *View) loadDocuments() tea.Cmd {
	svc, ctx := v.documentService, v.ctx
	return func() tea.Msg {
		if svc == nil {
			return messages.DocumentsLoaded{Err: errNoDocumentService}
		}

		docs, err := svc.List(ctx)
		return messages.DocumentsLoaded{
			Documents: docs,
			IndexSize: svc.IndexSize(),
			Err:       err,
		}
	}
}

// Update handles messages for the documents view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		switch {
		case v.busy != "":
			return v, nil
		case v.adding:
			return v.handleAddKeyMsg(msg)
		case v.showingMenu:
			return v.handleMenuKeyMsg(msg)
		}
		return v.handleKeyMsg(msg)

	case messages.DocumentsLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.documents = msg.Documents
		v.indexSize = msg.IndexSize
		v.err = nil
		if v.selected >= len(v.documents) {
			v.selected = max(len(v.documents)-1, 0)
		}
		v.adjustScroll()
		return v, nil

	case messages.DocumentAdded:
		v.busy = ""
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.notice = fmt.Sprintf("Added %s (%d chunks)", msg.Result.Document.Name, msg.Result.Chunks)
		return v, v.loadDocuments()

	case messages.DocumentDeleted:
		v.busy = ""
		if msg.Err != nil {
			v.err = msg.Err
			// A failed rebuild still removed the row
			if errors.Is(msg.Err, domain.ErrRebuild) {
				return v, v.loadDocuments()
			}
			return v, nil
		}
		v.notice = fmt.Sprintf("Deleted document %d", msg.ID)
		return v, v.loadDocuments()

	case messages.IndexRebuilt:
		v.busy = ""
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.notice = fmt.Sprintf("Indexed %d vectors from %d documents", msg.Stats.Vectors, msg.Stats.Documents)
		return v, v.loadDocuments()

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	if v.adding {
		var cmd tea.Cmd
		v.path, cmd = v.path.Update(msg)
		return v, cmd
	}
	return v, nil
}

// handleKeyMsg handles key presses in list mode.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
			v.adjustScroll()
		}
	case "down", "j":
		if v.selected < len(v.documents)-1 {
			v.selected++
			v.adjustScroll()
		}
	case "enter":
		if len(v.documents) > 0 {
			v.showingMenu = true
			v.menuSelected = ActionShowContent
		}
	case "a":
		v.adding = true
		v.err = nil
		v.path.Reset()
		return v, v.path.Focus()
	case "d":
		if len(v.documents) > 0 {
			v.showingMenu = true
			v.menuSelected = ActionDelete
		}
	case "r":
		v.err = nil
		v.notice = ""
		v.busy = "Rebuilding index..."
		return v, v.rebuild()
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	return v, nil
}

// handleAddKeyMsg handles key presses while typing a file path.
func (v *View) handleAddKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		v.adding = false
		v.path.Blur()
		return v, nil
	case tea.KeyEnter:
		path := strings.TrimSpace(v.path.Value())
		if path == "" {
			return v, nil
		}
		v.adding = false
		v.path.Blur()
		v.err = nil
		v.notice = ""
		v.busy = "Adding " + filepath.Base(path) + "..."
		return v, v.addDocument(path)
	default:
		var cmd tea.Cmd
		v.path, cmd = v.path.Update(msg)
		return v, cmd
	}
}

// handleMenuKeyMsg handles key presses in action menu mode.
func (v *View) handleMenuKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.menuSelected > ActionShowContent {
			v.menuSelected--
		}
	case "down", "j":
		if v.menuSelected < ActionCancel {
			v.menuSelected++
		}
	case "enter":
		return v.handleMenuSelect()
	case "esc":
		v.showingMenu = false
	}

	return v, nil
}

// handleMenuSelect handles selection of an action.
func (v *View) handleMenuSelect() (*View, tea.Cmd) {
	v.showingMenu = false
	if v.selected >= len(v.documents) {
		return v, nil
	}

	doc := v.documents[v.selected]

	switch v.menuSelected {
	case ActionShowContent:
		return v, func() tea.Msg {
			return messages.DocumentSelected{Document: doc}
		}
	case ActionDelete:
		v.err = nil
		v.notice = ""
		v.busy = fmt.Sprintf("Deleting %s...", doc.Name)
		return v, v.deleteDocument(doc.ID)
	case ActionCancel:
	}

	return v, nil
}

// addDocument returns a command that reads a file and ingests it.
func (v *View) addDocument(path string) tea.Cmd {
	svc, ctx := v.ingestService, v.ctx
	return func() tea.Msg {
		if svc == nil {
			return messages.DocumentAdded{Path: path, Err: errNoIngestService}
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return messages.DocumentAdded{Path: path, Err: fmt.Errorf("failed to read file: %w", err)}
		}

		result, err := svc.Ingest(ctx, driving.IngestRequest{
			Name:    filepath.Base(path),
			Content: content,
		})
		return messages.DocumentAdded{Path: path, Result: result, Err: err}
	}
}

// deleteDocument returns a command that deletes a document.
func (v *View) deleteDocument(id int64) tea.Cmd {
	svc, ctx := v.documentService, v.ctx
	return func() tea.Msg {
		if svc == nil {
			return messages.DocumentDeleted{ID: id, Err: errNoDocumentService}
		}
		return messages.DocumentDeleted{ID: id, Err: svc.Delete(ctx, id)}
	}
}

// rebuild returns a command that rebuilds the vector index.
func (v *View) rebuild() tea.Cmd {
	svc, ctx := v.documentService, v.ctx
	return func() tea.Msg {
		if svc == nil {
			return messages.IndexRebuilt{Err: errNoDocumentService}
		}
		stats, err := svc.Rebuild(ctx)
		return messages.IndexRebuilt{Stats: stats, Err: err}
	}
}

// adjustScroll adjusts the scroll offset to keep the selected item visible.
func (v *View) adjustScroll() {
	visibleItems := v.visibleItemCount()
	if v.selected < v.scrollOffset {
		v.scrollOffset = v.selected
	} else if v.selected >= v.scrollOffset+visibleItems {
		v.scrollOffset = v.selected - visibleItems + 1
	}
}

// visibleItemCount returns the number of items that can be displayed.
func (v *View) visibleItemCount() int {
	// Reserve lines for title, status line, help, and padding
	reserved := 10
	available := v.height - reserved
	if available < 1 {
		available = 1
	}
	return available
}

// View renders the documents view.
func (v *View) View() string {
	var b strings.Builder

	title := fmt.Sprintf("Documents (%d)", len(v.documents))
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render(fmt.Sprintf("%d vectors indexed", v.indexSize)))
	b.WriteString("\n\n")

	if v.loading {
		b.WriteString(v.styles.Muted.Render("Loading documents..."))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	if v.busy != "" {
		b.WriteString(v.styles.Muted.Render(v.busy))
		b.WriteString("\n\n")
	}
	if v.err != nil {
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
		b.WriteString("\n\n")
	} else if v.notice != "" {
		b.WriteString(v.styles.Success.Render(v.notice))
		b.WriteString("\n\n")
	}

	if v.adding {
		b.WriteString(v.path.View())
		b.WriteString("\n\n")
		b.WriteString(v.styles.Help.Render("[enter] add  [esc] cancel"))
		return b.String()
	}

	if v.showingMenu {
		b.WriteString(v.renderActionMenu())
		return b.String()
	}

	if len(v.documents) == 0 {
		b.WriteString(v.styles.Muted.Render("No documents yet. Press [a] to add one."))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	visibleItems := v.visibleItemCount()
	for i := v.scrollOffset; i < len(v.documents) && i < v.scrollOffset+visibleItems; i++ {
		b.WriteString(v.renderDocument(i, &v.documents[i]))
		b.WriteString("\n")
	}

	if len(v.documents) > visibleItems {
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [%d-%d of %d]",
			v.scrollOffset+1,
			min(v.scrollOffset+visibleItems, len(v.documents)),
			len(v.documents))))
	}

	b.WriteString("\n\n")
	b.WriteString(v.renderHelp())

	return b.String()
}

// renderDocument renders a single document line.
func (v *View) renderDocument(index int, doc *domain.Document) string {
	indicator := "  "
	if index == v.selected {
		indicator = "> "
	}

	name := doc.Name
	maxNameLen := v.width - 36
	if maxNameLen < 10 {
		maxNameLen = 10
	}
	if runes := []rune(name); len(runes) > maxNameLen {
		name = string(runes[:maxNameLen-3]) + "..."
	}

	meta := fmt.Sprintf("#%-4d %s", doc.ID, doc.FormatUploadDate())
	if doc.Protected {
		meta += " [protected]"
	}

	if index == v.selected {
		return v.styles.Selected.Render(fmt.Sprintf("%s%-*s  %s", indicator, maxNameLen, name, meta))
	}

	return v.styles.Normal.Render(indicator) +
		v.styles.Normal.Render(fmt.Sprintf("%-*s  ", maxNameLen, name)) +
		v.styles.Muted.Render(meta)
}

// renderActionMenu renders the action menu overlay.
func (v *View) renderActionMenu() string {
	var b strings.Builder

	if v.selected < len(v.documents) {
		doc := v.documents[v.selected]
		b.WriteString(v.styles.Subtitle.Render(fmt.Sprintf("Actions for: %s", doc.Name)))
		b.WriteString("\n\n")
	}

	options := []struct {
		action ActionOption
		label  string
	}{
		{ActionShowContent, "Show Content"},
		{ActionDelete, "Delete"},
		{ActionCancel, "Cancel"},
	}

	for _, opt := range options {
		indicator := "  "
		if v.menuSelected == opt.action {
			indicator = "> "
			b.WriteString(v.styles.Selected.Render(fmt.Sprintf("%s%s", indicator, opt.label)))
		} else {
			b.WriteString(v.styles.Normal.Render(fmt.Sprintf("%s%s", indicator, opt.label)))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[↑/↓] navigate  [enter] select  [esc] cancel"))

	return b.String()
}

// renderHelp renders the help footer.
func (v *View) renderHelp() string {
	return v.styles.Help.Render("[↑/↓] navigate  [enter] actions  [a] add  [d] delete  [r] rebuild  [esc] back")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.path.SetWidth(width)
}

// Documents returns the current list of documents.
func (v *View) Documents() []domain.Document {
	return v.documents
}

// IndexSize returns the vector count reported with the last load.
func (v *View) IndexSize() int {
	return v.indexSize
}

// SelectedIndex returns the currently selected document index.
func (v *View) SelectedIndex() int {
	return v.selected
}

// SelectedDocument returns the currently selected document.
func (v *View) SelectedDocument() *domain.Document {
	if v.selected < len(v.documents) {
		return &v.documents[v.selected]
	}
	return nil
}

// IsShowingMenu returns true if the action menu is visible.
func (v *View) IsShowingMenu() bool {
	return v.showingMenu
}

// IsAdding returns true while the file path input is open.
func (v *View) IsAdding() bool {
	return v.adding
}

// Busy returns the progress message of a running operation, if any.
func (v *View) Busy() string {
	return v.busy
}

// Notice returns the outcome of the last completed operation.
func (v *View) Notice() string {
	return v.notice
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
