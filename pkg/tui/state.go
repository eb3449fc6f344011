// Package tui is the interactive terminal client for the catalog.
package tui

import (
	"github.com/pkg/errors"
	"github.com/shishobooks/catalog/pkg/client"
	"github.com/shishobooks/catalog/pkg/models"
)

const (
	msgFetchFailed   = "Failed to load books. Please check if the server is running."
	msgCreateFailed  = "Failed to add book. Please try again."
	msgDeleteFailed  = "Failed to delete book. Please try again."
	msgCreateSuccess = "Book added successfully!"
	msgDeleteSuccess = "Book deleted successfully!"
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseLoaded
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseLoaded:
		return "loaded"
	case PhaseError:
		return "error"
	default:
		return "unknown"
	}
}

// State is everything the client shows. It only changes through Reduce.
type State struct {
	Phase  Phase
	Books  []*models.Book
	Err    string
	Notice string
}

// Event is something that happened to the client: a request starting or one
// of the API calls finishing. Events double as bubbletea messages.
type Event interface {
	event()
}

type (
	FetchStarted    struct{}
	FetchSucceeded  struct{ Books []*models.Book }
	FetchFailed     struct{ Err error }
	CreateSucceeded struct{ Book *models.Book }
	CreateFailed    struct{ Err error }
	DeleteSucceeded struct{ ID string }
	DeleteFailed    struct{ Err error }
	NoticeExpired   struct{}
	ErrorDismissed  struct{}
)

func (FetchStarted) event()    {}
func (FetchSucceeded) event()  {}
func (FetchFailed) event()     {}
func (CreateSucceeded) event() {}
func (CreateFailed) event()    {}
func (DeleteSucceeded) event() {}
func (DeleteFailed) event()    {}
func (NoticeExpired) event()   {}
func (ErrorDismissed) event()  {}

// Reduce returns the state that follows s after ev. It never modifies s.
func Reduce(s State, ev Event) State {
	switch ev := ev.(type) {
	case FetchStarted:
		s.Phase = PhaseLoading
		s.Err = ""
	case FetchSucceeded:
		s.Phase = PhaseLoaded
		s.Books = append([]*models.Book{}, ev.Books...)
		s.Err = ""
	case FetchFailed:
		s.Phase = PhaseError
		s.Err = msgFetchFailed
	case CreateSucceeded:
		books := make([]*models.Book, 0, len(s.Books)+1)
		books = append(books, ev.Book)
		s.Books = append(books, s.Books...)
		s.Phase = PhaseLoaded
		s.Err = ""
		s.Notice = msgCreateSuccess
	case CreateFailed:
		s.Phase = PhaseError
		s.Err = serverMessage(ev.Err, msgCreateFailed)
		s.Notice = ""
	case DeleteSucceeded:
		books := make([]*models.Book, 0, len(s.Books))
		for _, b := range s.Books {
			if b.ID != ev.ID {
				books = append(books, b)
			}
		}
		s.Books = books
		s.Phase = PhaseLoaded
		s.Err = ""
		s.Notice = msgDeleteSuccess
	case DeleteFailed:
		s.Phase = PhaseError
		s.Err = msgDeleteFailed
		s.Notice = ""
	case NoticeExpired:
		s.Notice = ""
	case ErrorDismissed:
		if s.Phase == PhaseError {
			s.Phase = PhaseLoaded
			s.Err = ""
		}
	}
	return s
}

func serverMessage(err error, fallback string) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Code != "" && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
