package src

import (
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Protocol-Lattice/promptly/src/terminal"
	"github.com/Protocol-Lattice/promptly/src/ui"
	"github.com/Protocol-Lattice/promptly/src/workflow"
)

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		if m.busyText() != "" {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case optimizeDoneMsg:
		if err := m.ctrl.CompleteOptimize(msg.req, msg.res, msg.err); err != nil {
			return m, nil
		}
		m.optimized.SetValue(m.ctrl.OptimizedPrompt())
		m.prompt.Blur()
		m.optimized.Focus()
		return m, nil

	case generateDoneMsg:
		if err := m.ctrl.CompleteGenerate(msg.req, msg.res, msg.err); err != nil {
			return m, nil
		}
		m.optimized.Blur()
		m.refreshFiles()
		m.setFocus(ui.FocusFiles)
		return m, nil

	case downloadDoneMsg:
		_ = m.ctrl.CompleteDownload(msg.req, msg.saved, msg.err)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "ctrl+r":
			m.reset()
			return m, nil
		}

		switch m.screen() {
		case ui.ModePrompt:
			return m.updatePrompt(msg)
		case ui.ModeOptimized:
			return m.updateOptimized(msg)
		case ui.ModeIDE:
			return m.updateIDE(msg)
		}
	}
	return m, m.forward(msg)
}

// forward hands non-key messages, such as cursor blinks, to the focused input.
func (m *model) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.screen() {
	case ui.ModePrompt:
		m.prompt, cmd = m.prompt.Update(msg)
	case ui.ModeOptimized:
		m.optimized, cmd = m.optimized.Update(msg)
	case ui.ModeIDE:
		switch m.focus {
		case ui.FocusEditor:
			m.editor, cmd = m.editor.Update(msg)
		case ui.FocusTerminal:
			m.termInput, cmd = m.termInput.Update(msg)
		}
	}
	return cmd
}

func (m *model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if m.ctrl.Busy(workflow.ActionOptimize) || strings.TrimSpace(m.prompt.Value()) == "" {
			return m, nil
		}
		m.ctrl.SetPrompt(m.prompt.Value())
		return m, m.startOptimize()

	case "ctrl+x":
		examples := workflow.Examples()
		m.exampleIdx = (m.exampleIdx + 1) % len(examples)
		m.ctrl.UseExample(m.exampleIdx)
		m.prompt.SetValue(m.ctrl.Prompt())
		return m, nil
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	m.ctrl.SetPrompt(m.prompt.Value())
	return m, cmd
}

func (m *model) startOptimize() tea.Cmd {
	req, err := m.ctrl.BeginOptimize()
	if err != nil {
		return nil
	}
	ctx, ctrl := m.ctx, m.ctrl
	run := func() tea.Msg {
		res, err := ctrl.RunOptimize(ctx, req)
		return optimizeDoneMsg{req: req, res: res, err: err}
	}
	return tea.Batch(run, m.spinner.Tick)
}

func (m *model) updateOptimized(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.ctrl.Busy(workflow.ActionGenerate) {
		return m, nil
	}
	if msg.String() == "enter" {
		m.ctrl.SetOptimizedPrompt(m.optimized.Value())
		req, err := m.ctrl.BeginGenerate()
		if err != nil {
			return m, nil
		}
		ctx, ctrl := m.ctx, m.ctrl
		run := func() tea.Msg {
			res, err := ctrl.RunGenerate(ctx, req)
			return generateDoneMsg{req: req, res: res, err: err}
		}
		return m, tea.Batch(run, m.spinner.Tick)
	}

	var cmd tea.Cmd
	m.optimized, cmd = m.optimized.Update(msg)
	m.ctrl.SetOptimizedPrompt(m.optimized.Value())
	return m, cmd
}

func (m *model) updateIDE(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	sel := m.ctrl.Editor().Selected()

	switch msg.String() {
	case "tab":
		m.cycleFocus()
		return m, nil

	case "ctrl+g":
		m.showDiff = !m.showDiff
		return m, nil

	case "ctrl+t":
		if m.ctrl.Shell().Toggle() {
			m.refreshTerminal()
			m.setFocus(ui.FocusTerminal)
		} else if m.focus == ui.FocusTerminal {
			m.setFocus(ui.FocusFiles)
		}
		m.resize(m.width, m.height)
		return m, nil

	case "ctrl+l":
		m.ctrl.Shell().Clear()
		m.refreshTerminal()
		return m, nil

	case "ctrl+y":
		if sel != "" {
			_ = m.ctrl.CopyToClipboard(sel)
		}
		return m, nil

	case "ctrl+z":
		req, err := m.ctrl.BeginDownloadArchive()
		if err != nil {
			return m, nil
		}
		return m, m.runDownload(req)

	case "ctrl+o":
		if sel == "" {
			return m, nil
		}
		req, err := m.ctrl.BeginDownloadFile(sel)
		if err != nil {
			return m, nil
		}
		return m, m.runDownload(req)

	case "ctrl+e":
		_, _ = m.ctrl.SaveLocalArchive()
		return m, nil

	case "ctrl+p":
		m.notice = "Preview: " + m.ctrl.PreviewURL()
		return m, nil
	}

	var cmd tea.Cmd
	switch m.focus {
	case ui.FocusFiles:
		if msg.String() == "enter" {
			if item, ok := m.files.SelectedItem().(fileItem); ok && m.ctrl.Editor().Select(item.path) {
				m.openEditor(m.ctrl.Editor().Content())
				m.showDiff = false
				m.setFocus(ui.FocusEditor)
			}
			return m, nil
		}
		m.files, cmd = m.files.Update(msg)

	case ui.FocusEditor:
		if sel == "" {
			return m, nil
		}
		if !m.editable {
			m.notice = "File is too large to edit here"
			return m, nil
		}
		before := m.editor.Value()
		m.editor, cmd = m.editor.Update(msg)
		if after := m.editor.Value(); after != before {
			m.ctrl.Editor().Edit(m.buf.apply(after))
		}

	case ui.FocusTerminal:
		if msg.String() == "enter" {
			m.ctrl.Shell().Run(m.termInput.Value())
			m.termInput.Reset()
			m.refreshTerminal()
			return m, nil
		}
		m.termInput, cmd = m.termInput.Update(msg)
	}
	return m, cmd
}

func (m *model) openEditor(content string) {
	m.buf = newEditBuffer(content)
	m.editor.SetValue(m.buf.view)
	m.editable = m.editor.Value() == m.buf.view
}

func (m *model) runDownload(req workflow.DownloadRequest) tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	run := func() tea.Msg {
		saved, err := ctrl.RunDownload(ctx, req)
		return downloadDoneMsg{req: req, saved: saved, err: err}
	}
	return tea.Batch(run, m.spinner.Tick)
}

func (m *model) cycleFocus() {
	next := m.focus + 1
	if next == ui.FocusTerminal && !m.ctrl.Shell().IsOpen() {
		next++
	}
	if next > ui.FocusTerminal {
		next = ui.FocusFiles
	}
	m.setFocus(next)
}

func (m *model) setFocus(f ui.Focus) {
	m.focus = f
	m.editor.Blur()
	m.termInput.Blur()
	switch f {
	case ui.FocusEditor:
		m.editor.Focus()
	case ui.FocusTerminal:
		m.termInput.Focus()
	}
}

func (m *model) refreshFiles() {
	files := m.ctrl.Store().Files()
	items := make([]list.Item, len(files))
	for i, f := range files {
		items[i] = fileItem{path: f.Path, index: f.Index, first: i == 0}
	}
	m.files.SetItems(items)
	m.files.Select(0)
	m.editor.Reset()
	m.buf, m.editable = editBuffer{}, false
}

func (m *model) refreshTerminal() {
	lines := append([]string{terminal.WelcomeLine, terminal.HintLine}, m.ctrl.Shell().Transcript()...)
	m.terminal.SetContent(strings.Join(lines, "\n"))
	m.terminal.GotoBottom()
}

func (m *model) reset() {
	m.ctrl.Reset()
	m.prompt.Reset()
	m.optimized.Reset()
	m.optimized.Blur()
	m.editor.Reset()
	m.buf, m.editable = editBuffer{}, false
	m.termInput.Reset()
	m.files.SetItems(nil)
	m.showDiff = false
	m.notice = ""
	m.exampleIdx = -1
	m.setFocus(ui.FocusFiles)
	m.prompt.Focus()
}

func (m *model) resize(w, h int) {
	m.width, m.height = w, h
	headerHeight := lipgloss.Height(ui.Logo) + 1
	footerHeight := 3
	avail := h - headerHeight - footerHeight - 4
	if avail < 6 {
		avail = 6
	}
	m.prompt.SetWidth(w - 6)
	m.optimized.SetWidth(w - 6)

	filesWidth := w / 4
	if filesWidth < 20 {
		filesWidth = 20
	}
	termHeight := 0
	if m.ctrl.Shell().IsOpen() {
		termHeight = m.terminal.Height + 3
	}
	m.files.SetSize(filesWidth, avail-termHeight)
	m.editor.SetWidth(w - filesWidth - 6)
	m.editor.SetHeight(avail - termHeight - 4)
	m.terminal.Width = w - 4
	m.termInput.Width = w - 8
}
