package main

import (
	tea "github.com/charmbracelet/bubbletea"
)

// pendingAction is a navigation step deferred until outstanding flushes
// finish. Unsynced edits always reach the server before the view that
// holds them goes away.
type pendingAction int

const (
	pendingNone pendingAction = iota
	pendingSeedSlide
	pendingLeaveStage
	pendingApplyAll
	pendingQuit
)

// flushThen starts a flush of every dirty group and defers action until
// all of them report back. With nothing dirty the action runs at once.
func (m model) flushThen(action pendingAction, seedIndex int) (tea.Model, tea.Cmd) {
	cmd, count := m.sched.Flush()
	if count == 0 {
		return m.performPending(action, seedIndex)
	}
	m.pending = action
	m.pendingSeed = seedIndex
	m.flushesLeft = count
	m.loading = "Saving..."
	return m, cmd
}

func (m model) performPending(action pendingAction, seedIndex int) (tea.Model, tea.Cmd) {
	m.pending = pendingNone
	m.loading = ""
	switch action {
	case pendingSeedSlide:
		m.selectedSlide = seedIndex
		seedCmd := m.ed.seedSlide(seedIndex)
		var fetchCmd tea.Cmd
		if slide := m.ed.slide(); slide != nil {
			fetchCmd = m.fetchImageCmd(slide.ImageURL)
		}
		return m, tea.Batch(seedCmd, fetchCmd)
	case pendingLeaveStage:
		m.stage = StageImages
		return m, nil
	case pendingApplyAll:
		m.loading = "Applying style to all slides..."
		return m, m.applyAllCmd()
	case pendingQuit:
		return m, tea.Quit
	}
	return m, nil
}

func (m model) enterTypography() (tea.Model, tea.Cmd) {
	m.stage = StageTypography
	m.mode = ModeNormal
	m.ed.setProject(m.project)
	index := clampInt(m.selectedSlide, 0, len(m.project.Slides)-1)
	m.selectedSlide = index
	seedCmd := m.ed.seedSlide(index)
	var fetchCmd tea.Cmd
	if slide := m.ed.slide(); slide != nil {
		fetchCmd = m.fetchImageCmd(slide.ImageURL)
	}
	return m, tea.Batch(seedCmd, fetchCmd)
}

func (m model) switchSlide(index int) (tea.Model, tea.Cmd) {
	if m.project == nil || index < 0 || index >= len(m.project.Slides) {
		return m, nil
	}
	return m.flushThen(pendingSeedSlide, index)
}

func (m model) leaveTypography() (tea.Model, tea.Cmd) {
	return m.flushThen(pendingLeaveStage, 0)
}

func (m model) startApplyAll() (tea.Model, tea.Cmd) {
	return m.flushThen(pendingApplyAll, 0)
}

func (m model) confirmQuit() (tea.Model, tea.Cmd) {
	unsynced := m.sched.Busy()
	if m.cfg.Confirmations && (unsynced || m.stage == StageTypography) {
		m.mode = ModeConfirm
		m.confirmAction = ConfirmQuit
		return m, nil
	}
	if unsynced {
		return m.flushThen(pendingQuit, 0)
	}
	return m, tea.Quit
}

func (m model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		m.mode = ModeNormal
		switch m.confirmAction {
		case ConfirmApplyAll:
			return m.startApplyAll()
		case ConfirmQuit:
			return m.flushThen(pendingQuit, 0)
		case ConfirmDiscardDrafts:
			if m.store != nil {
				if err := m.store.ClearProject(m.project.ID); err != nil {
					m.errorMessage = "Failed to clear drafts: " + err.Error()
					return m, nil
				}
			}
			m.ed.drafts = map[int]Draft{}
			m.successMessage = "Local drafts discarded"
			return m, nil
		}
	case "n", "N", "esc", "q":
		m.mode = ModeNormal
	}
	return m, nil
}

func (m model) confirmPrompt() string {
	switch m.confirmAction {
	case ConfirmApplyAll:
		return "Apply current style to every slide and re-render? (y/n)"
	case ConfirmQuit:
		return "Quit? Unsaved edits will be flushed first. (y/n)"
	case ConfirmDiscardDrafts:
		return "Discard locally journaled drafts for this project? (y/n)"
	}
	return ""
}
