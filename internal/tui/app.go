// internal/tui/app.go
//
// The review screen for pending approvals. It lists every received file
// under a root directory, previews how it differs from its approved file,
// and lets the developer open a diff tool, approve or reject without leaving
// the terminal. The list refreshes itself when tests write new received
// files.

package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/kingrea/assent/internal/logbook"
	"github.com/kingrea/assent/internal/pending"
	"github.com/kingrea/assent/internal/reporter"
)

// DiffFunc opens a diff UI for one file pair.
type DiffFunc func(receivedPath, approvedPath string) reporter.Report

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithDiff overrides how diffs are opened. The default tries no tools and
// always reports manual review.
func WithDiff(fn DiffFunc) AppOption {
	return func(a *App) {
		if fn != nil {
			a.diff = fn
		}
	}
}

// WithLogbook records approve and reject decisions.
func WithLogbook(lb *logbook.Logbook) AppOption {
	return func(a *App) {
		a.logbook = lb
	}
}

// WithChanges refreshes the list whenever a value arrives on changes,
// typically pending.Watcher.Changes().
func WithChanges(changes <-chan struct{}) AppOption {
	return func(a *App) {
		a.changes = changes
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(logger *zap.Logger) AppOption {
	return func(a *App) {
		if logger != nil {
			a.logger = logger
		}
	}
}

type itemsLoadedMsg struct {
	items []pending.Item
	err   error
}

type previewMsg struct {
	received string
	text     string
	err      error
}

type actionDoneMsg struct {
	status string
	err    error
}

type changedMsg struct{}

// pendingItem implements list.Item for one received file.
type pendingItem struct {
	item pending.Item
	name string
}

func (i pendingItem) Title() string { return i.name }
func (i pendingItem) Description() string {
	if i.item.NewTest {
		return "new test"
	}
	return "changed"
}
func (i pendingItem) FilterValue() string { return i.name }

// App is the review application model.
type App struct {
	root    string
	diff    DiffFunc
	logbook *logbook.Logbook
	logger  *zap.Logger
	changes <-chan struct{}

	items       []pending.Item
	list        list.Model
	preview     string
	previewPath string
	statusMsg   string
	err         error

	width  int
	height int
}

// NewApp creates a review app for received files under root.
func NewApp(root string, opts ...AppOption) *App {
	menu := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	menu.Title = "Pending approvals"
	menu.SetShowStatusBar(false)
	menu.SetFilteringEnabled(false)
	menu.SetShowHelp(false)

	app := &App{
		root:   root,
		logger: zap.NewNop(),
		list:   menu,
		diff: func(received, approved string) reporter.Report {
			return reporter.NewChain(nil).Report(received, approved)
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}
	return app
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.loadItems(), a.waitForChange())
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.list.SetSize(max(20, a.listWidth()), max(5, msg.Height-6))
		return a, nil

	case itemsLoadedMsg:
		if msg.err != nil {
			a.err = msg.err
			return a, nil
		}
		a.err = nil
		a.setItems(msg.items)
		return a, a.loadPreview()

	case previewMsg:
		if msg.received != a.selectedPath() {
			return a, nil
		}
		a.previewPath = msg.received
		if msg.err != nil {
			a.preview = "preview unavailable: " + msg.err.Error()
		} else {
			a.preview = msg.text
		}
		return a, nil

	case actionDoneMsg:
		a.statusMsg = msg.status
		a.err = msg.err
		return a, a.loadItems()

	case changedMsg:
		return a, tea.Batch(a.loadItems(), a.waitForChange())

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return a, tea.Quit
		case "r":
			a.statusMsg = "Refreshing..."
			return a, a.loadItems()
		case "enter", "d":
			if item, ok := a.selected(); ok {
				return a, a.openDiff(item)
			}
			return a, nil
		case "a":
			if item, ok := a.selected(); ok {
				return a, a.approve(item)
			}
			return a, nil
		case "x":
			if item, ok := a.selected(); ok {
				return a, a.reject(item)
			}
			return a, nil
		case "A":
			if len(a.items) > 0 {
				return a, a.approveAll(append([]pending.Item(nil), a.items...))
			}
			return a, nil
		}
	}

	before := a.selectedPath()
	var cmd tea.Cmd
	a.list, cmd = a.list.Update(msg)
	if a.selectedPath() != before {
		return a, tea.Batch(cmd, a.loadPreview())
	}
	return a, cmd
}

func (a *App) setItems(items []pending.Item) {
	selected := a.selectedPath()
	a.items = items
	listItems := make([]list.Item, len(items))
	index := 0
	for i, item := range items {
		listItems[i] = pendingItem{item: item, name: item.Name(a.root)}
		if item.Received == selected {
			index = i
		}
	}
	a.list.SetItems(listItems)
	if len(listItems) > 0 {
		a.list.Select(index)
	} else {
		a.preview = ""
		a.previewPath = ""
	}
}

func (a *App) selected() (pending.Item, bool) {
	item, ok := a.list.SelectedItem().(pendingItem)
	if !ok {
		return pending.Item{}, false
	}
	return item.item, true
}

func (a *App) selectedPath() string {
	item, ok := a.selected()
	if !ok {
		return ""
	}
	return item.Received
}

func (a *App) loadItems() tea.Cmd {
	root := a.root
	return func() tea.Msg {
		items, err := pending.Scan(root)
		return itemsLoadedMsg{items: items, err: err}
	}
}

func (a *App) loadPreview() tea.Cmd {
	item, ok := a.selected()
	if !ok {
		return nil
	}
	return func() tea.Msg {
		text, err := pending.Preview(item)
		return previewMsg{received: item.Received, text: text, err: err}
	}
}

func (a *App) waitForChange() tea.Cmd {
	if a.changes == nil {
		return nil
	}
	changes := a.changes
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return changedMsg{}
	}
}

func (a *App) openDiff(item pending.Item) tea.Cmd {
	diff := a.diff
	return func() tea.Msg {
		report := diff(item.Received, item.Approved)
		if report.Launched() {
			return actionDoneMsg{status: fmt.Sprintf("Opened %s in %s", filepath.Base(item.Received), report.Final.Reporter)}
		}
		return actionDoneMsg{status: "No diff tool found; compare the files manually"}
	}
}

func (a *App) approve(item pending.Item) tea.Cmd {
	return func() tea.Msg {
		if err := pending.Approve(item); err != nil {
			a.record(logbook.ActionError, item.Received, err.Error())
			return actionDoneMsg{err: err}
		}
		a.record(logbook.ActionApprove, item.Approved, "")
		return actionDoneMsg{status: "Approved " + filepath.Base(item.Approved)}
	}
}

func (a *App) reject(item pending.Item) tea.Cmd {
	return func() tea.Msg {
		if err := pending.Reject(item); err != nil {
			a.record(logbook.ActionError, item.Received, err.Error())
			return actionDoneMsg{err: err}
		}
		a.record(logbook.ActionReject, item.Received, "")
		return actionDoneMsg{status: "Rejected " + filepath.Base(item.Received)}
	}
}

func (a *App) approveAll(items []pending.Item) tea.Cmd {
	return func() tea.Msg {
		err := pending.ApproveAll(context.Background(), items, 0, func(item pending.Item) {
			a.record(logbook.ActionApprove, item.Approved, "bulk")
		})
		if err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{status: fmt.Sprintf("Approved %d files", len(items))}
	}
}

func (a *App) record(action logbook.Action, path, note string) {
	if err := a.logbook.Record(action, path, note); err != nil {
		a.logger.Warn("logbook write failed", zap.Error(err))
	}
}

func (a *App) listWidth() int {
	width := a.width
	if width <= 0 {
		width = 100
	}
	return max(30, width/3)
}

// View renders the list, the preview of the selected file and a footer.
func (a *App) View() string {
	width := a.width
	if width <= 0 {
		width = 100
	}
	leftWidth := a.listWidth()
	rightWidth := max(20, width-leftWidth-6)

	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FF6B6B")).
		Render(fmt.Sprintf("ASSENT · %s", a.root))

	var left string
	if len(a.items) == 0 {
		left = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Render("Nothing to review. Every received file has been approved or rejected.")
	} else {
		left = a.list.View()
	}
	leftBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Width(leftWidth).
		Render(left)

	body := leftBox
	if len(a.items) > 0 {
		rightBox := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Width(rightWidth).
			Render(a.renderPreview())
		body = lipgloss.JoinHorizontal(lipgloss.Top, leftBox, rightBox)
	}

	sections := []string{header, body}
	if status := a.renderStatus(); status != "" {
		sections = append(sections, status)
	}
	if panel := a.renderLogPanel(); panel != "" {
		sections = append(sections, panel)
	}
	sections = append(sections, lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		Render("enter diff · a approve · x reject · A approve all · r refresh · q quit"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (a *App) renderPreview() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render("Preview")
	text := a.preview
	if text == "" {
		text = "Loading..."
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, text)
}

func (a *App) renderStatus() string {
	if a.err != nil {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Render("Error: " + a.err.Error())
	}
	if strings.TrimSpace(a.statusMsg) == "" {
		return ""
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA")).Render(a.statusMsg)
}

func (a *App) renderLogPanel() string {
	if a.logbook == nil {
		return ""
	}
	lines, total := a.logbook.Tail(5)
	if len(lines) == 0 {
		return ""
	}
	head := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render(fmt.Sprintf("LOG · %s (%d entries)", filepath.Base(a.logbook.Path()), total))
	bodyText := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		Render(strings.Join(lines, "\n"))
	return lipgloss.JoinVertical(lipgloss.Left, head, bodyText)
}
