package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/assent/internal/logbook"
	"github.com/kingrea/assent/internal/reporter"
)

func TestAppListsPendingFiles(t *testing.T) {
	root := seedProject(t)
	app := startApp(t, root)

	if len(app.items) != 2 {
		t.Fatalf("expected 2 pending files, got %d", len(app.items))
	}
	if !strings.Contains(app.preview, "line 1") {
		t.Fatalf("expected preview of first file, got %q", app.preview)
	}
	view := app.View()
	for _, want := range []string{"TestA.received.txt", "new test", "enter diff"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestAppApproveRecordsAndRefreshes(t *testing.T) {
	root := seedProject(t)
	lb, err := logbook.New(filepath.Join(root, ".assent", "logs", logbook.FileName))
	if err != nil {
		t.Fatalf("logbook: %v", err)
	}
	app := startApp(t, root, WithLogbook(lb))

	app = sendKey(t, app, "a")

	if len(app.items) != 1 {
		t.Fatalf("expected one file left after approve, got %d", len(app.items))
	}
	data, err := os.ReadFile(filepath.Join(root, "testdata", "TestA.approved.txt"))
	if err != nil {
		t.Fatalf("read approved: %v", err)
	}
	if string(data) != "changed\n" {
		t.Fatalf("approved content not promoted: %q", data)
	}
	lines, _ := lb.Tail(5)
	if len(lines) != 1 || !strings.Contains(lines[0], "APPROVE") {
		t.Fatalf("expected approve entry, got %v", lines)
	}
	if !strings.Contains(app.statusMsg, "Approved") {
		t.Fatalf("unexpected status %q", app.statusMsg)
	}
}

func TestAppRejectKeepsApproved(t *testing.T) {
	root := seedProject(t)
	app := startApp(t, root)

	app = sendKey(t, app, "x")

	if len(app.items) != 1 {
		t.Fatalf("expected one file left after reject, got %d", len(app.items))
	}
	data, err := os.ReadFile(filepath.Join(root, "testdata", "TestA.approved.txt"))
	if err != nil {
		t.Fatalf("read approved: %v", err)
	}
	if string(data) != "original\n" {
		t.Fatalf("approved file changed by reject: %q", data)
	}
}

func TestAppApproveAll(t *testing.T) {
	root := seedProject(t)
	app := startApp(t, root)

	app = sendKey(t, app, "A")

	if len(app.items) != 0 {
		t.Fatalf("expected nothing pending, got %d", len(app.items))
	}
	if !strings.Contains(app.View(), "Nothing to review") {
		t.Fatalf("empty view not rendered")
	}
}

func TestAppOpensDiffForSelection(t *testing.T) {
	root := seedProject(t)
	var opened []string
	diff := func(received, approved string) reporter.Report {
		opened = append(opened, received, approved)
		final := reporter.Result{Status: reporter.StatusLaunched, Reporter: "fake"}
		return reporter.Report{Final: final, Attempts: []reporter.Result{final}}
	}
	app := startApp(t, root, WithDiff(diff))

	app = sendKey(t, app, "down")
	app = sendKey(t, app, "enter")

	if len(opened) != 2 || filepath.Base(opened[0]) != "TestB.received.txt" {
		t.Fatalf("diff not opened for second file: %v", opened)
	}
	if !strings.Contains(app.statusMsg, "fake") {
		t.Fatalf("status should name the tool, got %q", app.statusMsg)
	}
}

func TestAppDefaultDiffIsManual(t *testing.T) {
	root := seedProject(t)
	app := startApp(t, root)

	app = sendKey(t, app, "enter")

	if !strings.Contains(app.statusMsg, "manually") {
		t.Fatalf("expected manual fallback status, got %q", app.statusMsg)
	}
}

func TestAppRefreshesOnChange(t *testing.T) {
	root := seedProject(t)
	changes := make(chan struct{}, 1)
	app := NewApp(root, WithChanges(changes))
	app = runCommands(t, app, app.loadItems())

	writeFile(t, filepath.Join(root, "testdata", "TestC.received.txt"), "third\n")
	changes <- struct{}{}
	msg := app.waitForChange()()
	if _, ok := msg.(changedMsg); !ok {
		t.Fatalf("expected changedMsg, got %T", msg)
	}
	model, cmd := app.Update(msg)
	app = runCommands(t, model, onlyLoad(cmd))

	if len(app.items) != 3 {
		t.Fatalf("expected refreshed list of 3, got %d", len(app.items))
	}
}

func TestAppQuit(t *testing.T) {
	app := NewApp(t.TempDir())
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}

func seedProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "testdata", "TestA.approved.txt"), "original\n")
	writeFile(t, filepath.Join(root, "testdata", "TestA.received.txt"), "changed\n")
	writeFile(t, filepath.Join(root, "testdata", "TestB.received.txt"), "brand new\n")
	return root
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func startApp(t *testing.T, root string, opts ...AppOption) *App {
	t.Helper()
	app := NewApp(root, opts...)
	model, _ := app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return runCommands(t, model, app.Init())
}

func sendKey(t *testing.T, app *App, key string) *App {
	t.Helper()
	var msg tea.KeyMsg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	model, cmd := app.Update(msg)
	return runCommands(t, model, cmd)
}

// onlyLoad drops the watcher command from a batch so tests do not block on
// the changes channel.
func onlyLoad(cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	return func() tea.Msg {
		msg := cmd()
		if batch, ok := msg.(tea.BatchMsg); ok && len(batch) > 0 {
			return batch[0]()
		}
		return msg
	}
}

// runCommands executes cmd and feeds every resulting message back into the
// model until no commands remain. Batches are flattened.
func runCommands(t *testing.T, model tea.Model, cmd tea.Cmd) *App {
	t.Helper()
	app, ok := model.(*App)
	if !ok {
		t.Fatalf("unexpected model type: %T", model)
	}
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 100 {
			t.Fatalf("command loop did not settle")
		}
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		msg := next()
		if msg == nil {
			continue
		}
		if batch, ok := msg.(tea.BatchMsg); ok {
			queue = append(queue, batch...)
			continue
		}
		nextModel, nextCmd := app.Update(msg)
		app, ok = nextModel.(*App)
		if !ok {
			t.Fatalf("unexpected model type: %T", nextModel)
		}
		queue = append(queue, nextCmd)
	}
	return app
}
