// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/ragdesk/internal/core/domain"
)

// QuestionSubmitted is sent when the user submits a question.
type QuestionSubmitted struct {
	Question string
}

// AnswerReady carries the answer to a submitted question.
// Fallback answers arrive here too, with Answer.Err set.
type AnswerReady struct {
	Question string
	Answer   domain.Answer
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewAsk is the question input and answer view.
	ViewAsk
	// ViewDocuments lists stored documents.
	ViewDocuments
	// ViewDocContent shows the cleaned text of a document.
	ViewDocContent
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewAsk:
		return "ask"
	case ViewDocuments:
		return "documents"
	case ViewDocContent:
		return "doc_content"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// DocumentsLoaded carries the stored documents and the index size.
type DocumentsLoaded struct {
	Documents []domain.Document
	IndexSize int
	Err       error
}

// DocumentSelected signals a document was selected.
type DocumentSelected struct {
	Document domain.Document
}

// DocumentAdded signals an upload finished.
type DocumentAdded struct {
	Path   string
	Result *domain.IngestResult
	Err    error
}

// DocumentDeleted signals a delete finished.
type DocumentDeleted struct {
	ID  int64
	Err error
}

// IndexRebuilt signals a full index rebuild finished.
type IndexRebuilt struct {
	Stats *domain.RebuildStats
	Err   error
}
