package doccontent

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragdesk/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ragdesk/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/ragdesk/internal/core/domain"
)

func testDocument(lines int) *domain.Document {
	content := make([]string, lines)
	for i := range content {
		content[i] = fmt.Sprintf("line %d", i+1)
	}
	return &domain.Document{
		ID:         5,
		Name:       "handbook.txt",
		UploadedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Content:    strings.Join(content, "\n"),
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "pgdown":
		return tea.KeyMsg{Type: tea.KeyPgDown}
	case "pgup":
		return tea.KeyMsg{Type: tea.KeyPgUp}
	case "home":
		return tea.KeyMsg{Type: tea.KeyHome}
	case "end":
		return tea.KeyMsg{Type: tea.KeyEnd}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewView(t *testing.T) {
	view := NewView(styles.DefaultStyles())

	require.NotNil(t, view)
	assert.False(t, view.ready)
	assert.Nil(t, view.Document())
	assert.Equal(t, "", view.Content())
	assert.False(t, view.ShowingChunks())
}

func TestNewView_NilStyles(t *testing.T) {
	view := NewView(nil)

	require.NotNil(t, view)
	assert.NotNil(t, view.styles)
}

func TestView_Init(t *testing.T) {
	assert.Nil(t, NewView(nil).Init())
}

func TestView_SetDocument(t *testing.T) {
	view := NewView(nil)
	view.SetDimensions(80, 24)

	view.SetDocument(testDocument(3))

	require.NotNil(t, view.Document())
	assert.Equal(t, "line 1\nline 2\nline 3", view.Content())
	out := view.View()
	assert.Contains(t, out, "handbook.txt")
	assert.Contains(t, out, "Uploaded 2024-01-02 03:04:05")
	assert.Contains(t, out, "line 3")
	assert.NotContains(t, out, "[protected]")
}

func TestView_SetDocument_Nil(t *testing.T) {
	view := NewView(nil)
	view.SetDocument(testDocument(3))

	view.SetDocument(nil)

	assert.Equal(t, "", view.Content())
	assert.Contains(t, view.View(), "Document Content")
}

func TestView_DocumentSelectedMessage(t *testing.T) {
	view := NewView(nil)
	view.SetDimensions(80, 24)
	doc := testDocument(2)
	doc.Protected = true

	_, cmd := view.Update(messages.DocumentSelected{Document: *doc})

	assert.Nil(t, cmd)
	assert.Equal(t, int64(5), view.Document().ID)
	assert.Contains(t, view.View(), "[protected]")
}

func TestView_UnnamedDocument(t *testing.T) {
	view := NewView(nil)

	view.SetDocument(&domain.Document{ID: 9})

	assert.Contains(t, view.View(), "Document 9")
}

func TestView_EmptyContent(t *testing.T) {
	view := NewView(nil)
	view.SetDimensions(80, 24)

	view.SetDocument(&domain.Document{ID: 1, Name: "empty.txt"})

	assert.Contains(t, view.View(), "(No content)")
}

func TestView_Scrolling(t *testing.T) {
	view := NewView(nil)
	view.SetDimensions(80, 17) // 10 visible lines
	view.SetDocument(testDocument(50))

	view.Update(key("up"))
	assert.Equal(t, 0, view.ScrollOffset())

	view.Update(key("down"))
	view.Update(key("j"))
	assert.Equal(t, 2, view.ScrollOffset())

	view.Update(key("k"))
	assert.Equal(t, 1, view.ScrollOffset())

	view.Update(key("pgdown"))
	assert.Equal(t, 11, view.ScrollOffset())

	view.Update(key("pgup"))
	view.Update(key("pgup"))
	assert.Equal(t, 0, view.ScrollOffset())

	view.Update(key("G"))
	assert.Equal(t, 40, view.ScrollOffset())
	assert.Contains(t, view.View(), "line 50")
	assert.Contains(t, view.View(), "[100%] Line 41-50 of 50")

	view.Update(key("down"))
	assert.Equal(t, 40, view.ScrollOffset(), "stops at the bottom")

	view.Update(key("g"))
	assert.Equal(t, 0, view.ScrollOffset())

	view.Update(key("end"))
	view.Update(key("home"))
	assert.Equal(t, 0, view.ScrollOffset())
}

func TestView_WrapsLongLines(t *testing.T) {
	view := NewView(nil)
	view.SetDimensions(24, 40) // 20 columns of content
	view.SetDocument(&domain.Document{ID: 1, Content: strings.Repeat("é", 45)})

	require.Len(t, view.lines, 3)
	assert.Equal(t, strings.Repeat("é", 20), view.lines[0])
	assert.Equal(t, strings.Repeat("é", 5), view.lines[2])
}

func TestView_Resize_Rewraps(t *testing.T) {
	view := NewView(nil)
	view.SetDocument(&domain.Document{ID: 1, Content: strings.Repeat("x", 100)})
	view.SetDimensions(124, 40)
	require.Len(t, view.lines, 1)

	view.Update(tea.WindowSizeMsg{Width: 54, Height: 40})

	assert.Len(t, view.lines, 2)
	assert.True(t, view.ready)
}

func TestView_Esc(t *testing.T) {
	view := NewView(nil)

	_, cmd := view.Update(key("esc"))

	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewDocuments}, cmd())
}

func TestView_ErrorOccurred(t *testing.T) {
	view := NewView(nil)

	view.Update(messages.ErrorOccurred{Err: errors.New("broken")})

	assert.EqualError(t, view.Err(), "broken")
	assert.Contains(t, view.View(), "Error: broken")
}

func TestView_WrapKeepsBlankLines(t *testing.T) {
	assert.Equal(t, []string{"ab", "", "cdef", "gh"}, wrap("ab\n\ncdefgh", 4))
	assert.Equal(t, []string{"abcd"}, wrap("abcd", 4), "no trailing empty line at an exact fit")
}

func TestView_ChunkMarkers(t *testing.T) {
	view := NewView(nil).WithChunkSize(4)
	view.SetDimensions(80, 24)
	view.SetDocument(&domain.Document{ID: 1, Name: "abc.txt", Content: "abcdefghij"})

	assert.Contains(t, view.View(), "10 characters in 3 chunks of 4")
	assert.Equal(t, []string{"abcdefghij"}, view.Lines())

	_, cmd := view.Update(key("c"))

	assert.Nil(t, cmd)
	assert.True(t, view.ShowingChunks())
	lines := view.Lines()
	require.Len(t, lines, 6)
	assert.Contains(t, lines[0], "chunk 1")
	assert.Equal(t, "abcd", lines[1])
	assert.Contains(t, lines[4], "chunk 3")
	assert.Equal(t, "ij", lines[5])

	view.Update(key("c"))
	assert.False(t, view.ShowingChunks())
	assert.Len(t, view.Lines(), 1)
}

func TestView_WithChunkSize_IgnoresNonPositive(t *testing.T) {
	view := NewView(nil).WithChunkSize(0).WithChunkSize(-3)
	view.SetDocument(&domain.Document{ID: 1, Content: "x"})

	assert.Contains(t, view.View(), fmt.Sprintf("1 characters in 1 chunks of %d", domain.DefaultChunkSize))
}
