package src

import (
	"github.com/Protocol-Lattice/promptly/src/ui"
	"github.com/Protocol-Lattice/promptly/src/workflow"
)

func (m *model) View() string {
	return ui.Render(m.uiState(), m.style)
}

// uiState snapshots the controller for the renderer.
func (m *model) uiState() ui.State {
	st := ui.State{
		Mode:          m.screen(),
		Focus:         m.focus,
		SessionID:     m.ctrl.SessionID(),
		IsBusy:        m.busyText() != "",
		BusyText:      m.busyText(),
		Notice:        m.notice,
		ShowDiff:      m.showDiff,
		TerminalOpen:  m.ctrl.Shell().IsOpen(),
		Prompt:        m.prompt,
		Optimized:     m.optimized,
		Files:         m.files,
		Editor:        m.editor,
		Terminal:      m.terminal,
		TerminalInput: m.termInput,
		Spinner:       m.spinner,
	}

	switch status := m.ctrl.Status(); status.Kind {
	case workflow.StatusError:
		st.ErrorText = status.Message
	case workflow.StatusSuccess:
		st.SuccessText = status.Message
	}

	if m.exampleIdx >= 0 {
		st.ExampleTitle = workflow.Examples()[m.exampleIdx].Title
	}

	if sel := m.ctrl.Editor().Selected(); sel != "" {
		st.SelectedPath = sel
		if met, ok := m.ctrl.Editor().Metrics(sel); ok {
			st.Lines, st.Chars = met.Lines, met.Chars
		}
		st.Added, st.Removed = m.ctrl.Store().Stats(sel)
		if m.showDiff {
			st.Diff = m.ctrl.Editor().Diff(sel)
		}
	}
	st.Modified = len(m.ctrl.Store().Modified())
	return st
}
