package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
	panelFocusedStyle = panelStyle.BorderForeground(lipgloss.Color("212"))

	panelTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("111"))
	selectedRow     = lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57")).Bold(true)
	footerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))

	// Artifact rows are colored by the toolchain family of the directory name.
	langColors = map[string]lipgloss.Style{
		"target":       lipgloss.NewStyle().Foreground(lipgloss.Color("208")), // rust
		"node_modules": lipgloss.NewStyle().Foreground(lipgloss.Color("220")), // js
		"dist":         lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		".next":        lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		"__pycache__":  lipgloss.NewStyle().Foreground(lipgloss.Color("75")), // python
		".eggs":        lipgloss.NewStyle().Foreground(lipgloss.Color("75")),
		"build":        lipgloss.NewStyle().Foreground(lipgloss.Color("145")), // c/c++
		".gradle":      lipgloss.NewStyle().Foreground(lipgloss.Color("114")), // java
		"vendor":       lipgloss.NewStyle().Foreground(lipgloss.Color("176")), // php
	}
	defaultRowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
)

const footerHints = "tab focus · ↑/↓ move · enter actions · s scan · d delete · x exclude · r rebuild · e settings · l logs · D clear all · q quit"

func (a *App) View() string {
	if a.width == 0 {
		return "loading..."
	}

	leftWidth := a.width * 3 / 5
	rightWidth := a.width - leftWidth - 4
	if rightWidth < 20 {
		rightWidth = 20
	}

	artifacts := a.renderPanel(panelArtifacts, "Artifacts", a.artifactLines(), leftWidth)
	history := a.renderPanel(panelHistory, "Build History", a.buildHistory, rightWidth)
	charts := a.renderPanel(panelCharts, "Largest Artifacts", a.chartLines(rightWidth), rightWidth)
	settings := a.renderPanel(panelSettings, "Settings", a.settingsLines(), leftWidth)
	summary := a.renderPanel(panelSummary, "Summary", a.summaryLines(), rightWidth)

	left := lipgloss.JoinVertical(lipgloss.Left, artifacts, settings)
	right := lipgloss.JoinVertical(lipgloss.Left, history, charts, summary)
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	view := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(" buildsweep "),
		body,
		footerStyle.Render(footerHints),
	)

	if a.popup != nil {
		overlay := a.popup.view(a.width, a.height)
		return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, overlay)
	}
	return view
}

func (a *App) renderPanel(id int, title string, lines []string, width int) string {
	style := panelStyle
	if a.focused == id {
		style = panelFocusedStyle
	}
	if len(lines) == 0 {
		lines = []string{footerStyle.Render("(empty)")}
	}
	content := panelTitleStyle.Render(title) + "\n" + strings.Join(lines, "\n")
	return style.Width(width).Render(content)
}

// artifactLines renders the artifact list with the selection highlighted and
// scan-root prefixes stripped for readability.
func (a *App) artifactLines() []string {
	lines := make([]string, 0, len(a.artifacts))
	for i, path := range a.artifacts {
		display := a.stripScanPrefix(path)
		style := rowStyle(path)
		if i == a.selected && a.focused == panelArtifacts {
			lines = append(lines, selectedRow.Render("> "+display))
		} else {
			lines = append(lines, style.Render("  "+display))
		}
	}
	return lines
}

// stripScanPrefix drops the configured scan root from a path so rows show
// only the project-relative part.
func (a *App) stripScanPrefix(path string) string {
	for _, root := range a.cfg.ScanPaths {
		if root == "" || root == "." {
			continue
		}
		if rest, ok := strings.CutPrefix(path, root); ok {
			return strings.TrimPrefix(rest, "/")
		}
	}
	return path
}

func rowStyle(path string) lipgloss.Style {
	base := path[strings.LastIndex(path, "/")+1:]
	if style, ok := langColors[base]; ok {
		return style
	}
	return defaultRowStyle
}

// chartLines renders a horizontal size bar per artifact, scaled to the
// largest entry and truncated to the panel width.
func (a *App) chartLines(width int) []string {
	if len(a.chartData) == 0 {
		return nil
	}
	maxSize := a.chartData[0].size
	for _, e := range a.chartData {
		if e.size > maxSize {
			maxSize = e.size
		}
	}
	labelWidth := width / 2
	barWidth := width - labelWidth - 14
	if barWidth < 4 {
		barWidth = 4
	}

	lines := make([]string, 0, len(a.chartData))
	for i, e := range a.chartData {
		label := runewidth.Truncate(a.stripScanPrefix(e.path), labelWidth, "…")
		filled := 0
		if maxSize > 0 {
			filled = int(int64(barWidth) * e.size / maxSize)
		}
		bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
		line := fmt.Sprintf("%-*s %s %s", labelWidth, label, bar, formatBytes(e.size))
		if i == a.chartSelected && a.focused == panelCharts {
			line = selectedRow.Render(line)
		}
		lines = append(lines, line)
	}
	return lines
}

func (a *App) settingsLines() []string {
	removal := "off"
	if a.automaticRemoval {
		removal = "on"
	}
	scanPath := "."
	if len(a.cfg.ScanPaths) > 0 {
		scanPath = strings.Join(a.cfg.ScanPaths, ", ")
	}
	return []string{
		fmt.Sprintf("Retention Days:     %d", a.cfg.RetentionDays),
		fmt.Sprintf("Scan Path:          %s", scanPath),
		fmt.Sprintf("Automatic Removal:  %s", removal),
		fmt.Sprintf("Excluded Paths:     %d", len(a.cfg.ExcludedPaths)),
		fmt.Sprintf("Database:           %s", maskHomePath(a.cfg.DatabasePath)),
	}
}

func (a *App) summaryLines() []string {
	var total int64
	for _, e := range a.chartData {
		total += e.size
	}
	status := "idle"
	if a.scanning {
		status = "scanning"
	}
	return []string{
		fmt.Sprintf("Artifacts found:  %d", len(a.artifacts)),
		fmt.Sprintf("Total builds:     %d", a.totalBuilds),
		fmt.Sprintf("Reclaimable:      %s", formatBytes(total)),
		fmt.Sprintf("Scanner:          %s", status),
	}
}

// maskHomePath shows paths under the home directory as ~/... so the view
// never prints the full user path.
func maskHomePath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if rest, ok := strings.CutPrefix(path, home); ok {
		return "~" + rest
	}
	return path
}

func formatBytes(n int64) string {
	const mb = 1024 * 1024
	if n < mb {
		return fmt.Sprintf("%.1f KB", float64(n)/1024)
	}
	return fmt.Sprintf("%.1f MB", float64(n)/float64(mb))
}
