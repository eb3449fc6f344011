package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"
	"github.com/shishobooks/catalog/pkg/client"
	"github.com/shishobooks/catalog/pkg/models"
)

const (
	defaultListWidth  = 72
	defaultListHeight = 20

	noticeTimeout = 3 * time.Second
	errorTimeout  = 5 * time.Second
)

var runProgram = func(m tea.Model) (tea.Model, error) {
	return tea.NewProgram(m, tea.WithAltScreen()).Run()
}

// BookAPI is the subset of the API client the UI needs.
type BookAPI interface {
	ListBooks(ctx context.Context) ([]*models.Book, error)
	CreateBook(ctx context.Context, book client.NewBook) (*models.Book, error)
	DeleteBook(ctx context.Context, id string) (*client.DeleteResult, error)
}

type mode int

const (
	modeBrowse mode = iota
	modeAdd
	modeConfirmDelete
)

type bookItem struct {
	*models.Book
}

func (i bookItem) Title() string { return i.Book.Title }

func (i bookItem) Description() string {
	return fmt.Sprintf("%s | ISBN %s | %d", i.Author, i.ISBN, i.Year)
}

func (i bookItem) FilterValue() string { return i.Book.Title + " " + i.Author }

var formLabels = []string{"Book Title", "Author Name", "ISBN Number", "Publication Year"}

type Model struct {
	api   BookAPI
	now   func() time.Time
	state State

	mode       mode
	list       list.Model
	inputs     []textinput.Model
	focus      int
	formErr    string
	submitting bool
}

func NewModel(api BookAPI) *Model {
	l := list.New(nil, list.NewDefaultDelegate(), defaultListWidth, defaultListHeight)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.SetShowTitle(false)
	l.DisableQuitKeybindings()

	inputs := make([]textinput.Model, len(formLabels))
	for i, label := range formLabels {
		in := textinput.New()
		in.Prompt = ""
		in.Placeholder = "Enter " + strings.ToLower(label)
		in.CharLimit = 200
		inputs[i] = in
	}

	return &Model{
		api:    api,
		now:    time.Now,
		state:  Reduce(State{}, FetchStarted{}),
		list:   l,
		inputs: inputs,
	}
}

// State returns the current client state.
func (m *Model) State() State { return m.state }

func (m *Model) Init() tea.Cmd {
	return m.fetch()
}

func (m *Model) fetch() tea.Cmd {
	api := m.api
	return func() tea.Msg {
		books, err := api.ListBooks(context.Background())
		if err != nil {
			return FetchFailed{Err: err}
		}
		return FetchSucceeded{Books: books}
	}
}

func (m *Model) create(book client.NewBook) tea.Cmd {
	api := m.api
	return func() tea.Msg {
		created, err := api.CreateBook(context.Background(), book)
		if err != nil {
			return CreateFailed{Err: err}
		}
		return CreateSucceeded{Book: created}
	}
}

func (m *Model) remove(id string) tea.Cmd {
	api := m.api
	return func() tea.Msg {
		if _, err := api.DeleteBook(context.Background(), id); err != nil {
			return DeleteFailed{Err: err}
		}
		return DeleteSucceeded{ID: id}
	}
}

func after(d time.Duration, ev Event) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return ev })
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case Event:
		return m, m.apply(msg)
	case tea.WindowSizeMsg:
		m.list.SetSize(clamp(defaultListWidth, msg.Width-4, 40), clamp(defaultListHeight, msg.Height-10, 5))
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeAdd:
			return m, m.updateForm(msg)
		case modeConfirmDelete:
			return m, m.updateConfirm(msg)
		default:
			return m, m.updateBrowse(msg)
		}
	}
	return m, nil
}

func (m *Model) apply(ev Event) tea.Cmd {
	m.state = Reduce(m.state, ev)

	items := make([]list.Item, len(m.state.Books))
	for i, b := range m.state.Books {
		items[i] = bookItem{b}
	}
	cmds := []tea.Cmd{m.list.SetItems(items)}

	switch ev.(type) {
	case CreateSucceeded:
		m.submitting = false
		m.resetForm()
		m.mode = modeBrowse
		m.list.Select(0)
		cmds = append(cmds, after(noticeTimeout, NoticeExpired{}))
	case DeleteSucceeded:
		cmds = append(cmds, after(noticeTimeout, NoticeExpired{}))
	case CreateFailed:
		m.submitting = false
		cmds = append(cmds, after(errorTimeout, ErrorDismissed{}))
	case DeleteFailed:
		cmds = append(cmds, after(errorTimeout, ErrorDismissed{}))
	}
	return tea.Batch(cmds...)
}

func (m *Model) updateBrowse(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q":
		return tea.Quit
	case "a":
		m.mode = modeAdd
		m.formErr = ""
		return m.focusInput(0)
	case "r":
		m.state = Reduce(m.state, FetchStarted{})
		return m.fetch()
	case "d", "delete":
		if _, ok := m.list.SelectedItem().(bookItem); ok {
			m.mode = modeConfirmDelete
		}
		return nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return cmd
}

func (m *Model) updateConfirm(msg tea.KeyMsg) tea.Cmd {
	m.mode = modeBrowse
	switch msg.String() {
	case "y", "enter":
		if item, ok := m.list.SelectedItem().(bookItem); ok {
			return m.remove(item.ID)
		}
	}
	return nil
}

func (m *Model) updateForm(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.mode = modeBrowse
		m.formErr = ""
		m.inputs[m.focus].Blur()
		return nil
	case "tab", "down":
		return m.focusInput((m.focus + 1) % len(m.inputs))
	case "shift+tab", "up":
		return m.focusInput((m.focus + len(m.inputs) - 1) % len(m.inputs))
	case "enter":
		if m.focus < len(m.inputs)-1 {
			return m.focusInput(m.focus + 1)
		}
		return m.submit()
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return cmd
}

func (m *Model) submit() tea.Cmd {
	if m.submitting {
		return nil
	}
	book, err := ValidateForm(m.inputs[0].Value(), m.inputs[1].Value(), m.inputs[2].Value(), m.inputs[3].Value(), m.now())
	if err != nil {
		m.formErr = err.Error()
		return nil
	}
	m.formErr = ""
	m.submitting = true
	return m.create(book)
}

func (m *Model) focusInput(idx int) tea.Cmd {
	m.inputs[m.focus].Blur()
	m.focus = idx
	return m.inputs[idx].Focus()
}

func (m *Model) resetForm() {
	for i := range m.inputs {
		m.inputs[i].Reset()
		m.inputs[i].Blur()
	}
	m.focus = 0
	m.formErr = ""
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214")).
			MarginBottom(1)

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("161")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("110"))

	helpStyle = lipgloss.NewStyle().
			MarginTop(1).
			Foreground(lipgloss.Color("244"))
)

func (m *Model) View() string {
	parts := []string{headerStyle.Render("Smart Library System")}

	if m.state.Notice != "" {
		parts = append(parts, noticeStyle.Render(m.state.Notice))
	}
	if m.state.Err != "" {
		parts = append(parts, errorStyle.Render(m.state.Err))
	}

	switch m.mode {
	case modeAdd:
		parts = append(parts, m.formView())
	default:
		parts = append(parts, m.listView())
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *Model) listView() string {
	var body string
	switch {
	case m.state.Phase == PhaseLoading && len(m.state.Books) == 0:
		body = "Loading books..."
	case len(m.state.Books) == 0:
		body = "No books in the library yet\nPress a to add your first book!"
	default:
		body = m.list.View()
	}

	help := "Up/Down navigate | a add | d delete | r refresh | q quit"
	if m.mode == modeConfirmDelete {
		help = "Delete this book? y yes | any other key cancels"
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, helpStyle.Render(help))
}

func (m *Model) formView() string {
	rows := make([]string, 0, len(m.inputs)+2)
	for i, in := range m.inputs {
		rows = append(rows, labelStyle.Render(formLabels[i]+" *"), in.View())
	}
	if m.formErr != "" {
		rows = append(rows, errorStyle.Render(m.formErr))
	}
	submit := "Enter on the last field adds the book | Tab next | Esc cancel"
	if m.submitting {
		submit = "Adding Book..."
	}
	rows = append(rows, helpStyle.Render(submit))
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// Run starts the interactive client and blocks until the user quits.
func Run(api BookAPI) error {
	finalModel, err := runProgram(NewModel(api))
	if err != nil {
		return errors.WithStack(err)
	}
	if _, ok := finalModel.(*Model); !ok {
		return errors.New("unexpected program result")
	}
	return nil
}

func clamp(defaultValue, available, minimum int) int {
	size := defaultValue
	if available > 0 && available < defaultValue {
		size = available
	}
	if size < minimum {
		size = minimum
	}
	return size
}
