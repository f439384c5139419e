package progress

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"
)

// WatchModel is a bubbletea model that follows a batch live: it counts
// task directories under the output root as the external dispatcher
// creates them and renders a progress bar against the expected total.
// It holds no durable state; quitting it never affects the run.
type WatchModel struct {
	root    string
	total   int
	watcher *fsnotify.Watcher
	bar     progress.Model
	seen    map[string]struct{}
	done    bool
	err     error
}

// taskDirMsg reports a newly observed task directory.
type taskDirMsg string

// watchErrMsg reports a watcher failure; the model quits on it.
type watchErrMsg struct{ err error }

// NewWatchModel creates a watch model over a task output root. total is
// the expected number of task directories; zero means watch until
// interrupted.
func NewWatchModel(root string, total, barWidth int) (*WatchModel, error) {
	if barWidth <= 0 {
		barWidth = DefaultBarWidth
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(root); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", root, err)
	}

	m := &WatchModel{
		root:    root,
		total:   total,
		watcher: watcher,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(barWidth)),
		seen:    make(map[string]struct{}),
	}

	// Pick up directories that already exist, including one level of
	// numbered batch grouping; those group dirs are watched too so task
	// dirs created inside them are seen.
	m.scanExisting(root)
	return m, nil
}

// scanExisting records directories already present under root.
func (m *WatchModel) scanExisting(root string) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := filepath.Join(root, entry.Name())
		if isNumericName(entry.Name()) {
			_ = m.watcher.Add(path)
			m.scanExisting(path)
			continue
		}
		m.seen[path] = struct{}{}
	}
}

// Init starts listening for filesystem events.
func (m *WatchModel) Init() tea.Cmd {
	return m.waitForEvent()
}

// waitForEvent blocks on the next watcher event.
func (m *WatchModel) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		for {
			select {
			case event, ok := <-m.watcher.Events:
				if !ok {
					return watchErrMsg{err: fmt.Errorf("watcher closed")}
				}
				if !event.Has(fsnotify.Create) {
					continue
				}
				info, err := os.Stat(event.Name)
				if err != nil || !info.IsDir() {
					continue
				}
				if isNumericName(filepath.Base(event.Name)) {
					// A new batch group: watch inside it instead of
					// counting it as a task.
					_ = m.watcher.Add(event.Name)
					continue
				}
				return taskDirMsg(event.Name)
			case err, ok := <-m.watcher.Errors:
				if !ok {
					return watchErrMsg{err: fmt.Errorf("watcher closed")}
				}
				return watchErrMsg{err: err}
			}
		}
	}
}

// Update handles watcher and key events.
func (m *WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.close()
			return m, tea.Quit
		}

	case taskDirMsg:
		m.seen[string(msg)] = struct{}{}
		if m.total > 0 && len(m.seen) >= m.total {
			m.done = true
			m.close()
			return m, tea.Quit
		}
		return m, m.waitForEvent()

	case watchErrMsg:
		m.err = msg.err
		m.close()
		return m, tea.Quit
	}

	return m, nil
}

func (m *WatchModel) close() {
	if m.watcher != nil {
		m.watcher.Close()
		m.watcher = nil
	}
}

// Done reports whether the expected total was reached.
func (m *WatchModel) Done() bool {
	return m.done
}

// Err returns the watcher error that ended the session, if any.
func (m *WatchModel) Err() error {
	return m.err
}

// Count returns the number of task directories observed so far.
func (m *WatchModel) Count() int {
	return len(m.seen)
}

var watchTitleStyle = lipgloss.NewStyle().Bold(true)

// View renders the live progress display.
func (m *WatchModel) View() string {
	count := len(m.seen)

	var pct float64
	counter := fmt.Sprintf("%d task(s) dispatched", count)
	if m.total > 0 {
		pct = float64(count) / float64(m.total)
		counter = fmt.Sprintf("%d/%d tasks dispatched", count, m.total)
	}

	s := watchTitleStyle.Render("Watching "+m.root) + "\n\n"
	s += "  " + m.bar.ViewAs(pct) + "\n"
	s += "  " + counter + "\n"
	if m.done {
		s += "\n  " + okStyle.Render("✓ All expected tasks observed") + "\n"
	} else {
		s += "\n  press q to quit\n"
	}
	return s
}

func isNumericName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
