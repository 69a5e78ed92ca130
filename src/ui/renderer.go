package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const Logo = `
█▀█ █▀█ █▀█ █▀▄▀█ █▀█ ▀█▀ █   █▄█
█▀▀ █▀▄ █▄█ █ ▀ █ █▀▀  █  █▄▄  █
      D E S C R I B E  ·  G E N E R A T E  ·  S H I P
`

// Render generates the full UI string based on the provided state.
func Render(s State, styles Styles) string {
	header := renderHeader(s, styles)
	body := renderBody(s, styles)
	footer := renderFooter(s, styles)

	return lipgloss.JoinVertical(lipgloss.Left, header, body, renderBanner(s, styles), footer)
}

func renderHeader(s State, styles Styles) string {
	logoStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AD8CFF")).Bold(true).
		Background(lipgloss.Color("#000000")).UnsetBackground()
	subtitle := "PromptlyDone"
	if s.SessionID != "" {
		subtitle += " · session " + s.SessionID
	}
	return lipgloss.JoinVertical(lipgloss.Left, logoStyle.Render(Logo), styles.Header.Render(subtitle))
}

func renderFooter(s State, styles Styles) string {
	help := []string{"ctrl+c: quit"}
	switch s.Mode {
	case ModePrompt:
		help = append(help, "enter: optimize", "ctrl+x: example")
	case ModeOptimized:
		help = append(help, "enter: generate", "ctrl+r: start over")
	case ModeIDE:
		help = append(help,
			"tab: focus", "ctrl+g: diff", "ctrl+t: terminal", "ctrl+y: copy",
			"ctrl+z: zip", "ctrl+o: file", "ctrl+e: local zip", "ctrl+p: preview", "ctrl+r: reset")
		if s.TerminalOpen {
			help = append(help, "ctrl+l: clear terminal")
		}
	}
	for i, h := range help {
		if k, desc, ok := strings.Cut(h, ": "); ok {
			help[i] = styles.Help.Render(k) + styles.Footer.Render(": "+desc)
		}
	}
	return strings.Join(help, styles.Footer.Render(" | "))
}

func renderBanner(s State, styles Styles) string {
	var lines []string
	if s.IsBusy {
		lines = append(lines, styles.Thinking.Render(fmt.Sprintf("%s %s", s.Spinner.View(), s.BusyText)))
	}
	switch {
	case s.ErrorText != "":
		lines = append(lines, styles.Error.Render("✗ "+s.ErrorText))
	case s.SuccessText != "":
		lines = append(lines, styles.Success.Render("✓ "+s.SuccessText))
	}
	if s.Notice != "" {
		lines = append(lines, styles.Accent.Render(s.Notice))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderBody(s State, styles Styles) string {
	switch s.Mode {
	case ModePrompt:
		return renderPrompt(s, styles)
	case ModeOptimized:
		return renderOptimized(s, styles)
	case ModeIDE:
		return renderIDE(s, styles)
	default:
		return ""
	}
}

func renderPrompt(s State, styles Styles) string {
	lines := []string{
		styles.ListHeader.Render("What do you want to build?"),
		s.Prompt.View(),
	}
	if s.ExampleTitle != "" {
		lines = append(lines, styles.Subtle.Render("Example: "+s.ExampleTitle))
	}
	return styles.ChatContainer.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func renderOptimized(s State, styles Styles) string {
	return styles.ChatContainer.Render(lipgloss.JoinVertical(lipgloss.Left,
		styles.ListHeader.Render("Optimized prompt"),
		styles.Subtle.Render("Review and edit if needed, then generate."),
		s.Optimized.View(),
	))
}

func renderIDE(s State, styles Styles) string {
	files := pane(s.Focus == FocusFiles, styles).Render(s.Files.View())

	var main string
	if s.ShowDiff {
		main = renderDiff(s.Diff, styles)
	} else {
		main = s.Editor.View()
	}
	main = pane(s.Focus == FocusEditor, styles).Render(lipgloss.JoinVertical(lipgloss.Left,
		styles.Subtitle.Render(editorTitle(s)),
		main,
		renderStatusBar(s, styles),
	))

	body := lipgloss.JoinHorizontal(lipgloss.Top, files, main)
	if s.TerminalOpen {
		body = lipgloss.JoinVertical(lipgloss.Left, body, renderTerminal(s, styles))
	}
	return body
}

func editorTitle(s State) string {
	if s.SelectedPath == "" {
		return "Select a file to view and edit"
	}
	if s.ShowDiff {
		return s.SelectedPath + " (diff)"
	}
	return s.SelectedPath
}

func pane(focused bool, styles Styles) lipgloss.Style {
	if focused {
		return styles.PaneFocused
	}
	return styles.Pane
}

func renderStatusBar(s State, styles Styles) string {
	if s.SelectedPath == "" {
		return ""
	}
	items := []string{
		styles.Status.Render(fmt.Sprintf("Lines: %d", s.Lines)),
		styles.Status.Render(fmt.Sprintf("Characters: %d", s.Chars)),
	}
	if s.Added > 0 || s.Removed > 0 {
		items = append(items, styles.Status.Render(fmt.Sprintf("+%d -%d", s.Added, s.Removed)))
	}
	if s.Modified > 0 {
		items = append(items, styles.StatusRight.Render(fmt.Sprintf("%d modified", s.Modified)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, items...)
}

func renderDiff(diff string, styles Styles) string {
	if diff == "" {
		return styles.Subtle.Render("No changes")
	}
	lines := strings.Split(strings.TrimSuffix(diff, "\n"), "\n")
	for i, l := range lines {
		switch {
		case strings.HasPrefix(l, "+++"), strings.HasPrefix(l, "---"):
			lines[i] = styles.Subtle.Render(l)
		case strings.HasPrefix(l, "@@"):
			lines[i] = styles.DiffHunk.Render(l)
		case strings.HasPrefix(l, "+"):
			lines[i] = styles.DiffAdd.Render(l)
		case strings.HasPrefix(l, "-"):
			lines[i] = styles.DiffDel.Render(l)
		}
	}
	return strings.Join(lines, "\n")
}

func renderTerminal(s State, styles Styles) string {
	return styles.Terminal.Render(lipgloss.JoinVertical(lipgloss.Left,
		s.Terminal.View(),
		s.TerminalInput.View(),
	))
}
