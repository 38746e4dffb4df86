package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/semsearch/internal/core/domain"
)

// Mode is the active screen.
type Mode int

// Screens.
const (
	ModeInput Mode = iota
	ModeResults
	ModeDocument
)

// chromeLines is the height taken by the title, input and status rows.
const chromeLines = 6

// App is the TUI model.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *Styles
	keys   *KeyMap
	help   help.Model

	input    textinput.Model
	document viewport.Model

	mode     Mode
	query    string
	hits     []domain.QueryHit
	selected int
	opened   *domain.Document
	loading  bool
	err      error

	width  int
	height int
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates the TUI with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	ti := textinput.New()
	ti.Placeholder = "Enter query..."
	ti.CharLimit = 1024
	ti.Width = 60
	ti.Focus()

	return &App{
		ports:    ports,
		ctx:      context.Background(),
		styles:   DefaultStyles(),
		keys:     DefaultKeyMap(),
		help:     help.New(),
		input:    ti,
		document: viewport.New(80, 18),
		mode:     ModeInput,
		width:    80,
		height:   24,
	}, nil
}

// WithContext sets the context passed to service calls.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tea.SetWindowTitle("semsearch"))
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.setDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		switch a.mode {
		case ModeResults:
			return a.updateResults(msg)
		case ModeDocument:
			return a.updateDocument(msg)
		default:
			return a.updateInput(msg)
		}

	case QueryCompleted:
		a.loading = false
		if msg.Query != a.query {
			return a, nil
		}
		a.err = msg.Err
		a.hits = msg.Hits
		a.selected = 0
		if msg.Err == nil && len(msg.Hits) > 0 {
			a.mode = ModeResults
			a.input.Blur()
		}
		return a, nil

	case DocumentLoaded:
		a.loading = false
		if msg.Err != nil {
			a.err = msg.Err
			return a, nil
		}
		a.err = nil
		a.opened = msg.Document
		a.document.SetContent(msg.Document.Text)
		a.document.GotoTop()
		a.mode = ModeDocument
		return a, nil
	}

	var cmd tea.Cmd
	if a.mode == ModeInput {
		a.input, cmd = a.input.Update(msg)
	}
	return a, cmd
}

func (a *App) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Search):
		text := strings.TrimSpace(a.input.Value())
		if text == "" {
			return a, nil
		}
		a.query = text
		a.loading = true
		a.err = nil
		return a, a.runQuery(text)

	case key.Matches(msg, a.keys.Back):
		if len(a.hits) > 0 {
			a.mode = ModeResults
			a.input.Blur()
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) updateResults(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, a.keys.Up):
		if a.selected > 0 {
			a.selected--
		}
	case key.Matches(msg, a.keys.Down):
		if a.selected < len(a.hits)-1 {
			a.selected++
		}
	case key.Matches(msg, a.keys.Open):
		if a.selected < len(a.hits) {
			a.loading = true
			return a, a.loadDocument(a.hits[a.selected].DocumentID)
		}
	case key.Matches(msg, a.keys.Edit), key.Matches(msg, a.keys.Back):
		a.mode = ModeInput
		return a, a.input.Focus()
	}
	return a, nil
}

func (a *App) updateDocument(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, a.keys.Back):
		a.mode = ModeResults
		return a, nil
	}

	var cmd tea.Cmd
	a.document, cmd = a.document.Update(msg)
	return a, cmd
}

// runQuery returns a command that runs the query with the default k.
func (a *App) runQuery(text string) tea.Cmd {
	ctx, svc := a.ctx, a.ports.Query
	return func() tea.Msg {
		hits, err := svc.Query(ctx, text, 0)
		return QueryCompleted{Query: text, Hits: hits, Err: err}
	}
}

// loadDocument returns a command that fetches one document.
func (a *App) loadDocument(id string) tea.Cmd {
	ctx, svc := a.ctx, a.ports.Document
	return func() tea.Msg {
		if svc == nil {
			return DocumentLoaded{DocumentID: id, Err: ErrDocumentServiceUnavailable}
		}
		doc, err := svc.Get(ctx, id)
		return DocumentLoaded{DocumentID: id, Document: doc, Err: err}
	}
}

func (a *App) setDimensions(width, height int) {
	a.width = width
	a.height = height
	a.input.Width = max(width-12, 10)
	a.document.Width = width
	a.document.Height = max(height-chromeLines, 1)
	a.help.Width = width
}

// View implements tea.Model.
func (a *App) View() string {
	var b strings.Builder

	b.WriteString(a.styles.Title.Render("semsearch"))
	b.WriteString("\n")
	b.WriteString(a.styles.Input.Render(a.input.View()))
	b.WriteString("\n")

	switch a.mode {
	case ModeResults:
		b.WriteString(a.viewResults())
	case ModeDocument:
		b.WriteString(a.viewDocument())
	default:
		if a.query != "" && !a.loading && a.err == nil && len(a.hits) == 0 {
			b.WriteString(a.styles.Muted.Render("No results found."))
			b.WriteString("\n")
		}
	}

	b.WriteString(a.viewStatus())
	return b.String()
}

func (a *App) viewResults() string {
	var b strings.Builder
	b.WriteString(a.styles.Subtitle.Render(fmt.Sprintf("%d results for %q", len(a.hits), a.query)))
	b.WriteString("\n")
	for i, hit := range a.hits {
		line := fmt.Sprintf(" %2d. %s ", i+1, hit.DocumentID)
		score := a.styles.Score.Render(fmt.Sprintf("%.4f", hit.Score))
		if i == a.selected {
			b.WriteString(a.styles.Selected.Render(line))
		} else {
			b.WriteString(a.styles.Normal.Render(line))
		}
		b.WriteString(" " + score + "\n")
	}
	return b.String()
}

func (a *App) viewDocument() string {
	if a.opened == nil {
		return ""
	}
	header := a.styles.Subtitle.Render(a.opened.ID) + " " + a.styles.Muted.Render(a.opened.SourceLocator)
	return header + "\n" + a.document.View() + "\n"
}

func (a *App) viewStatus() string {
	var left string
	switch {
	case a.loading:
		left = a.styles.Muted.Render("Searching...")
	case a.err != nil:
		left = a.styles.Error.Render("Error: " + a.err.Error())
	}

	var bindings []key.Binding
	switch a.mode {
	case ModeResults:
		bindings = a.keys.ResultsHelp()
	case ModeDocument:
		bindings = a.keys.DocumentHelp()
	default:
		bindings = a.keys.InputHelp()
	}
	return a.styles.Status.Render(left) + "\n" + a.help.ShortHelpView(bindings)
}

// Mode returns the active screen.
func (a *App) Mode() Mode { return a.mode }

// Hits returns the last query's results.
func (a *App) Hits() []domain.QueryHit { return a.hits }

// Selected returns the highlighted hit index.
func (a *App) Selected() int { return a.selected }

// Err returns the last error.
func (a *App) Err() error { return a.err }
