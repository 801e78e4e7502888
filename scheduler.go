package main

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type syncGroup int

const (
	groupText syncGroup = iota
	groupStyle
	groupCount
)

func (g syncGroup) String() string {
	if g == groupText {
		return "text"
	}
	return "style"
}

// syncPhase is the per-group state: Clean -> Dirty (pending timer) ->
// Syncing -> Rendering -> Clean. Dirty is re-entrant: a new edit resets
// the pending timer instead of queuing a second one.
type syncPhase int

const (
	syncClean syncPhase = iota
	syncDirty
	syncSyncing
	syncRendering
)

// syncTarget is the slice of the remote API the scheduler needs.
type syncTarget interface {
	SaveText(projectID string, slide int, title *string, body string) (*Project, error)
	SaveStyle(projectID string, slide int, patch StylePatch) (*Project, error)
	RenderSlide(projectID string, slide int) (*Slide, error)
}

type groupState struct {
	phase syncPhase
	gen   int // bumped on every schedule; stale timer fires are ignored
	slide int // slide index captured at schedule time

	// Latest payload. Read at fire time, not capture time, so edits made
	// during the debounce wait win.
	title *string
	body  string
	patch StylePatch
}

// scheduler coalesces bursts of local edits into one persist-then-render
// round trip per field group. The two groups (text, style) are independent
// and may each be mid-flight at the same time, but within a group the
// render request is never issued before the persist resolves.
type scheduler struct {
	target    syncTarget
	projectID string
	delay     time.Duration
	groups    [groupCount]groupState
}

func newScheduler(target syncTarget, projectID string, delay time.Duration) *scheduler {
	return &scheduler{target: target, projectID: projectID, delay: delay}
}

// Messages produced by scheduler commands.

type debounceFiredMsg struct {
	group syncGroup
	gen   int
}

type syncDoneMsg struct {
	group   syncGroup
	slide   int
	project *Project
	err     error
}

type renderDoneMsg struct {
	group     syncGroup
	slide     int
	slideData *Slide
	err       error
}

type flushDoneMsg struct {
	group     syncGroup
	slide     int
	project   *Project
	slideData *Slide
	err       error
}

// ScheduleText records the latest text payload for a slide and restarts
// the debounce timer.
func (s *scheduler) ScheduleText(slide int, title *string, body string) tea.Cmd {
	g := &s.groups[groupText]
	g.title = title
	g.body = body
	return s.arm(groupText, slide)
}

// ScheduleStyle folds a style patch into the pending payload and restarts
// the debounce timer.
func (s *scheduler) ScheduleStyle(slide int, patch StylePatch) tea.Cmd {
	g := &s.groups[groupStyle]
	if g.phase == syncDirty && g.slide == slide {
		g.patch = g.patch.merge(patch)
	} else {
		g.patch = patch
	}
	return s.arm(groupStyle, slide)
}

func (s *scheduler) arm(group syncGroup, slide int) tea.Cmd {
	g := &s.groups[group]
	g.phase = syncDirty
	g.slide = slide
	g.gen++
	gen := g.gen
	return tea.Tick(s.delay, func(time.Time) tea.Msg {
		return debounceFiredMsg{group: group, gen: gen}
	})
}

// Fired handles a debounce timer expiry. A stale generation means the
// timer was superseded by a later edit or a flush; nothing happens.
func (s *scheduler) Fired(msg debounceFiredMsg) tea.Cmd {
	g := &s.groups[msg.group]
	if msg.gen != g.gen || g.phase != syncDirty {
		return nil
	}
	g.phase = syncSyncing
	return s.persistCmd(msg.group, g.slide, g.title, g.body, g.patch)
}

func (s *scheduler) persistCmd(group syncGroup, slide int, title *string, body string, patch StylePatch) tea.Cmd {
	target := s.target
	projectID := s.projectID
	return func() tea.Msg {
		var project *Project
		var err error
		if group == groupText {
			project, err = target.SaveText(projectID, slide, title, body)
		} else {
			project, err = target.SaveStyle(projectID, slide, patch)
		}
		return syncDoneMsg{group: group, slide: slide, project: project, err: err}
	}
}

// SyncDone handles persist completion. Failure rolls the group back to
// Dirty so the payload is retried on the next edit or flush; success moves
// to Rendering and issues the render request.
func (s *scheduler) SyncDone(msg syncDoneMsg) tea.Cmd {
	g := &s.groups[msg.group]
	if msg.err != nil {
		if g.phase == syncSyncing {
			g.phase = syncDirty
		}
		return nil
	}
	if g.phase != syncSyncing {
		// A reset or newer edit raced ahead. The persist still landed, so
		// render the slide it targeted; the response path is index-scoped
		// and cannot touch whatever is current now. Phase is left alone.
		return s.renderCmd(msg.group, msg.slide)
	}
	g.phase = syncRendering
	return s.renderCmd(msg.group, msg.slide)
}

func (s *scheduler) renderCmd(group syncGroup, slide int) tea.Cmd {
	target := s.target
	projectID := s.projectID
	return func() tea.Msg {
		slideData, err := target.RenderSlide(projectID, slide)
		return renderDoneMsg{group: group, slide: slide, slideData: slideData, err: err}
	}
}

// RenderDone handles render completion. A render failure rolls the group
// back to Dirty with the payload intact: the next edit or an explicit
// flush re-persists (idempotent) and renders again, so the composite never
// stays stale without a retry path.
func (s *scheduler) RenderDone(msg renderDoneMsg) {
	g := &s.groups[msg.group]
	if g.phase != syncRendering {
		return
	}
	if msg.err != nil {
		g.phase = syncDirty
		return
	}
	g.phase = syncClean
}

// Flush cancels any pending timers and performs the persist-then-render
// sequence for every dirty group immediately. Returns a nil command and a
// zero count when everything is clean, so a second flush with no edit in
// between issues no network traffic. The count lets the caller wait for
// that many flushDoneMsg results before proceeding.
func (s *scheduler) Flush() (tea.Cmd, int) {
	var cmds []tea.Cmd
	for group := syncGroup(0); group < groupCount; group++ {
		g := &s.groups[group]
		if g.phase != syncDirty {
			continue
		}
		g.gen++ // invalidate the pending timer
		g.phase = syncSyncing
		cmds = append(cmds, s.flushCmd(group, g.slide, g.title, g.body, g.patch))
	}
	switch len(cmds) {
	case 0:
		return nil, 0
	case 1:
		return cmds[0], 1
	}
	return tea.Batch(cmds...), len(cmds)
}

// flushCmd runs persist and render sequentially inside one command so the
// ordering guarantee holds even when no further Update cycles run before
// navigation.
func (s *scheduler) flushCmd(group syncGroup, slide int, title *string, body string, patch StylePatch) tea.Cmd {
	target := s.target
	projectID := s.projectID
	return func() tea.Msg {
		var project *Project
		var err error
		if group == groupText {
			project, err = target.SaveText(projectID, slide, title, body)
		} else {
			project, err = target.SaveStyle(projectID, slide, patch)
		}
		if err != nil {
			return flushDoneMsg{group: group, slide: slide, err: err}
		}
		slideData, err := target.RenderSlide(projectID, slide)
		return flushDoneMsg{group: group, slide: slide, project: project, slideData: slideData, err: err}
	}
}

// FlushDone resolves a flush command's result.
func (s *scheduler) FlushDone(msg flushDoneMsg) {
	g := &s.groups[msg.group]
	if g.phase != syncSyncing {
		return
	}
	if msg.err != nil && msg.project == nil {
		// Persist itself failed; keep the payload for retry.
		g.phase = syncDirty
		return
	}
	g.phase = syncClean
}

// Dirty reports whether a group has unsynced edits (pending or rolled back).
func (s *scheduler) Dirty(group syncGroup) bool {
	return s.groups[group].phase == syncDirty
}

// InFlight reports whether a group is mid persist or render.
func (s *scheduler) InFlight(group syncGroup) bool {
	phase := s.groups[group].phase
	return phase == syncSyncing || phase == syncRendering
}

// Busy reports whether any group is not clean.
func (s *scheduler) Busy() bool {
	for group := syncGroup(0); group < groupCount; group++ {
		if s.groups[group].phase != syncClean {
			return true
		}
	}
	return false
}

// Reset drops all pending state. Used when a freshly seeded slide makes
// the recorded payloads meaningless (the caller is responsible for
// flushing first).
func (s *scheduler) Reset() {
	for group := syncGroup(0); group < groupCount; group++ {
		g := &s.groups[group]
		g.gen++
		g.phase = syncClean
		g.title = nil
		g.body = ""
		g.patch = StylePatch{}
	}
}

// SetProject points the scheduler at a project after load or creation.
func (s *scheduler) SetProject(projectID string) {
	s.projectID = projectID
	s.Reset()
}

// Pending returns the latest recorded payload for journaling when a
// persist fails or the process exits dirty.
func (s *scheduler) Pending(group syncGroup) (slide int, title *string, body string, patch StylePatch) {
	g := &s.groups[group]
	return g.slide, g.title, g.body, g.patch
}
