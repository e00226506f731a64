package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Popup titles double as SetValue keys; the controller switches on them.
const (
	titleRetentionDays  = "Retention Days"
	titleScanPath       = "Scan Path"
	titlePasswordPrompt = "Enter sudo password"
)

// cmdKind enumerates the commands a popup can hand back to the controller.
type cmdKind int

const (
	cmdOpenInput cmdKind = iota
	cmdOpenDirBrowse
	cmdToggleRemoval
	cmdOpenExcludedPaths
	cmdSetValue
	cmdDeleteArtifact
	cmdRebuildArtifact
	cmdClearAllBuilds
	cmdConfirmAction
)

// command is emitted by a popup when a key press resolves into an action the
// controller must perform. Most commands close their originating popup.
type command struct {
	kind   cmdKind
	title  string // input title / SetValue key
	value  string // SetValue payload
	action string // ConfirmAction tag
}

// popup is the modal overlay state machine. A nil popup means no overlay is
// active and main keybindings apply. handleKey is the sole interpreter of
// key input while a popup is open: it returns the next state (nil closes)
// and an optional command for the controller.
type popup interface {
	handleKey(msg tea.KeyMsg) (popup, *command)
	view(width, height int) string
}

// settingsPopup lists the editable settings.
type settingsPopup struct {
	selected int
}

var settingsOptions = []string{
	titleRetentionDays,
	titleScanPath,
	"Automatic Removal",
	"Excluded Paths",
}

func (p *settingsPopup) handleKey(msg tea.KeyMsg) (popup, *command) {
	switch msg.String() {
	case "up":
		p.selected = (p.selected + len(settingsOptions) - 1) % len(settingsOptions)
	case "down":
		p.selected = (p.selected + 1) % len(settingsOptions)
	case "enter":
		switch p.selected {
		case 0:
			return nil, &command{kind: cmdOpenInput, title: titleRetentionDays}
		case 1:
			return nil, &command{kind: cmdOpenDirBrowse}
		case 2:
			return nil, &command{kind: cmdToggleRemoval}
		case 3:
			return nil, &command{kind: cmdOpenExcludedPaths}
		}
	case "esc":
		return nil, nil
	}
	return p, nil
}

// inputPopup edits a single free-form value. The credential prompt masks its
// echo so the password never appears on screen.
type inputPopup struct {
	title string
	input textinput.Model
}

func newInputPopup(title, initial string) *inputPopup {
	ti := textinput.New()
	ti.SetValue(initial)
	ti.Prompt = ""
	ti.Focus()
	if title == titlePasswordPrompt {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '*'
	}
	return &inputPopup{title: title, input: ti}
}

func (p *inputPopup) handleKey(msg tea.KeyMsg) (popup, *command) {
	switch msg.String() {
	case "enter":
		return nil, &command{kind: cmdSetValue, title: p.title, value: p.input.Value()}
	case "esc":
		return nil, nil
	}
	p.input, _ = p.input.Update(msg)
	return p, nil
}

// dirBrowsePopup navigates the filesystem to pick a scan root.
type dirBrowsePopup struct {
	path     string
	entries  []string
	selected int
}

const parentMarker = ".."

func newDirBrowsePopup(path string) *dirBrowsePopup {
	return &dirBrowsePopup{path: path, entries: listDirEntries(path)}
}

// listDirEntries returns the parent marker followed by the directory's
// subdirectories. Read errors yield just the parent marker.
func listDirEntries(path string) []string {
	items := []string{parentMarker}
	entries, err := os.ReadDir(path)
	if err != nil {
		return items
	}
	for _, entry := range entries {
		if entry.IsDir() {
			items = append(items, entry.Name())
		}
	}
	return items
}

func (p *dirBrowsePopup) resolve(entry string) string {
	if entry == parentMarker {
		return filepath.Dir(p.path)
	}
	return filepath.Join(p.path, entry)
}

func (p *dirBrowsePopup) handleKey(msg tea.KeyMsg) (popup, *command) {
	switch msg.String() {
	case "up":
		if p.selected > 0 {
			p.selected--
		}
	case "down":
		if p.selected < len(p.entries)-1 {
			p.selected++
		}
	case "enter":
		if p.selected < len(p.entries) {
			next := p.resolve(p.entries[p.selected])
			if info, err := os.Stat(next); err == nil && info.IsDir() {
				p.path = next
				p.entries = listDirEntries(next)
				p.selected = 0
			}
		}
	case "s":
		if p.selected < len(p.entries) {
			return nil, &command{kind: cmdSetValue, title: titleScanPath, value: p.resolve(p.entries[p.selected])}
		}
	case " ":
		return nil, &command{kind: cmdSetValue, title: titleScanPath, value: p.path}
	case "esc":
		return nil, nil
	}
	return p, nil
}

// logsPopup shows the tail of the shared log buffer.
type logsPopup struct {
	logs *logBuffer
}

func (p *logsPopup) handleKey(msg tea.KeyMsg) (popup, *command) {
	if msg.String() == "esc" {
		return nil, nil
	}
	return p, nil
}

// scanningPopup shows live scan progress; any key dismisses it without
// touching the scan itself.
type scanningPopup struct {
	logs *logBuffer
	spin spinner.Model
}

func newScanningPopup(logs *logBuffer) *scanningPopup {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	return &scanningPopup{logs: logs, spin: sp}
}

func (p *scanningPopup) handleKey(tea.KeyMsg) (popup, *command) {
	return nil, nil
}

// actionsPopup offers per-artifact actions.
type actionsPopup struct {
	selected int
}

var artifactActions = []string{"Delete", "Rebuild"}

func (p *actionsPopup) handleKey(msg tea.KeyMsg) (popup, *command) {
	switch msg.String() {
	case "up":
		p.selected = (p.selected + len(artifactActions) - 1) % len(artifactActions)
	case "down":
		p.selected = (p.selected + 1) % len(artifactActions)
	case "enter":
		if p.selected == 0 {
			return nil, &command{kind: cmdDeleteArtifact}
		}
		return nil, &command{kind: cmdRebuildArtifact}
	case "esc":
		return nil, nil
	}
	return p, nil
}

// clearAllPopup is the destructive-batch confirmation.
type clearAllPopup struct{}

func (p *clearAllPopup) handleKey(msg tea.KeyMsg) (popup, *command) {
	switch msg.String() {
	case "y", "Y":
		return nil, &command{kind: cmdClearAllBuilds}
	case "n", "N", "esc":
		return nil, nil
	}
	return p, nil
}

// confirmPopup gates a single tagged action behind Enter.
type confirmPopup struct {
	message string
	action  string
}

func (p *confirmPopup) handleKey(msg tea.KeyMsg) (popup, *command) {
	switch msg.String() {
	case "enter":
		return nil, &command{kind: cmdConfirmAction, action: p.action}
	case "esc":
		return nil, nil
	}
	return p, nil
}

// progressPopup reports a long-running operation.
type progressPopup struct {
	message string
}

func (p *progressPopup) handleKey(msg tea.KeyMsg) (popup, *command) {
	if msg.String() == "esc" {
		return nil, nil
	}
	return p, nil
}

// infoPopup reports an outcome; any key dismisses it.
type infoPopup struct {
	message string
}

func (p *infoPopup) handleKey(tea.KeyMsg) (popup, *command) {
	return nil, nil
}

// excludedPopup lists exclusion substrings and lets the user remove one.
type excludedPopup struct {
	paths    []string
	selected int
}

func (p *excludedPopup) handleKey(msg tea.KeyMsg) (popup, *command) {
	switch msg.String() {
	case "up":
		if len(p.paths) > 0 {
			p.selected = (p.selected + len(p.paths) - 1) % len(p.paths)
		}
	case "down":
		if len(p.paths) > 0 {
			p.selected = (p.selected + 1) % len(p.paths)
		}
	case "enter":
		if len(p.paths) > 0 {
			path := p.paths[p.selected]
			return &confirmPopup{
				message: fmt.Sprintf("Remove '%s' from exclusion list?", path),
				action:  actionRemoveExcludedPrefix + path,
			}, nil
		}
	case "esc":
		return nil, nil
	}
	return p, nil
}

// Popup rendering. Each popup draws a centered bordered box; the controller
// places it over the main view.

var (
	popupBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(1, 2)
	popupTitleStyle  = lipgloss.NewStyle().Bold(true)
	popupSelected    = lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57")).Bold(true)
	popupDangerBox   = popupBorder.BorderForeground(lipgloss.Color("203"))
	popupWarningBox  = popupBorder.BorderForeground(lipgloss.Color("214"))
	popupDangerText  = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	popupWarningText = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	popupMuted       = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
)

func renderList(title string, items []string, selected int, hint string) string {
	var b strings.Builder
	b.WriteString(popupTitleStyle.Render(title))
	b.WriteString("\n\n")
	for i, item := range items {
		if i == selected {
			b.WriteString(popupSelected.Render("> " + item))
		} else {
			b.WriteString("  " + item)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(popupMuted.Render(hint))
	return popupBorder.Render(b.String())
}

func (p *settingsPopup) view(int, int) string {
	return renderList("Settings", settingsOptions, p.selected, "↑/↓ move · enter select · esc close")
}

func (p *inputPopup) view(int, int) string {
	var b strings.Builder
	b.WriteString(popupTitleStyle.Render(p.title))
	b.WriteString("\n\n")
	b.WriteString(p.input.View())
	b.WriteString("\n\n")
	b.WriteString(popupMuted.Render("enter apply · esc cancel"))
	return popupBorder.Render(b.String())
}

func (p *dirBrowsePopup) view(_, height int) string {
	visible := p.entries
	limit := height / 2
	if limit > 4 && len(visible) > limit {
		visible = visible[:limit]
	}
	return renderList(
		fmt.Sprintf("Browse: %s", p.path),
		visible,
		p.selected,
		"↑/↓ move · enter descend · s select entry · space select current · esc cancel",
	)
}

func renderLogTail(title string, logs *logBuffer, footer string) string {
	var b strings.Builder
	b.WriteString(popupTitleStyle.Render(title))
	b.WriteString("\n\n")
	b.WriteString(strings.Join(logs.Tail(20), "\n"))
	if footer != "" {
		b.WriteString("\n\n")
		b.WriteString(popupMuted.Render(footer))
	}
	return popupBorder.Render(b.String())
}

func (p *logsPopup) view(int, int) string {
	return renderLogTail("Logs", p.logs, "esc close")
}

func (p *scanningPopup) view(int, int) string {
	title := fmt.Sprintf("%s Scanning for new artifacts", p.spin.View())
	return renderLogTail(title, p.logs, "press any key to dismiss")
}

func (p *actionsPopup) view(int, int) string {
	return renderList(popupDangerText.Render("Select action"), artifactActions, p.selected, "↑/↓ move · enter run · esc close")
}

func (p *clearAllPopup) view(int, int) string {
	text := popupDangerText.Render("CLEAR ALL BUILDS - PERMANENT DELETION") +
		"\n\nThis will delete ALL artifacts from the filesystem.\nThis action cannot be undone.\n\n" +
		popupMuted.Render("y confirm · n cancel")
	return popupDangerBox.Render(text)
}

func (p *confirmPopup) view(int, int) string {
	text := popupWarningText.Render("Confirm action") + "\n\n" + p.message + "\n\n" +
		popupMuted.Render("enter confirm · esc cancel")
	return popupWarningBox.Render(text)
}

func (p *progressPopup) view(int, int) string {
	return popupBorder.Render(p.message + "\n\n" + popupMuted.Render("esc close"))
}

func (p *infoPopup) view(int, int) string {
	return popupBorder.Render(popupTitleStyle.Render("Info") + "\n\n" + p.message + "\n\n" + popupMuted.Render("any key to close"))
}

func (p *excludedPopup) view(int, int) string {
	items := p.paths
	if len(items) == 0 {
		items = []string{"(No excluded paths yet)"}
	}
	return renderList("Excluded Paths", items, p.selected, "↑/↓ move · enter remove · esc close")
}
