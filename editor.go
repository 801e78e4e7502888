package main

import (
	tea "github.com/charmbracelet/bubbletea"
)

// editor owns the typography stage: the selected slide, the selected
// region, and the optimistic local copy of its text and style. The local
// copy is the only state allowed to diverge from the server; it is seeded
// when the selection changes and reconciled through the scheduler's flush
// discipline before it may be discarded.
type editor struct {
	cfg   *Config
	sched *scheduler
	store *draftStore // nil when the journal is unavailable

	project    *Project
	slideIndex int
	region     Region

	localTitle *string
	localBody  string
	localStyle Style

	drag   *DragSession
	resize *ResizeSession

	editing    bool
	editCursor int

	undoStack []Style

	// Overlay placement in terminal cells; the view keeps this current so
	// mouse coordinates can be mapped to canvas fractions.
	canvasX, canvasY, canvasW, canvasH int

	// Journal rows recovered at project load, replayed on first selection.
	drafts map[int]Draft
}

func newEditor(cfg *Config, sched *scheduler, store *draftStore) *editor {
	return &editor{cfg: cfg, sched: sched, store: store, slideIndex: -1}
}

func (e *editor) slide() *Slide {
	if e.project == nil || e.slideIndex < 0 || e.slideIndex >= len(e.project.Slides) {
		return nil
	}
	return &e.project.Slides[e.slideIndex]
}

// setProject installs a fresh authoritative snapshot without disturbing
// the editable local copy.
func (e *editor) setProject(p *Project) {
	if p != nil {
		e.project = p
	}
}

// seedSlide makes a slide current, seeding the local editable state from
// the authoritative slide with config defaults merged into sentinel
// fields. The caller must have flushed pending edits first. Returns a
// command when a journaled draft is replayed.
func (e *editor) seedSlide(index int) tea.Cmd {
	if e.project == nil || index < 0 || index >= len(e.project.Slides) {
		return nil
	}
	e.slideIndex = index
	slide := &e.project.Slides[index]

	e.localStyle = mergeConfigDefaults(slide.Style, e.cfg)
	e.localTitle = nil
	if slide.Title != nil {
		title := *slide.Title
		e.localTitle = &title
	}
	e.localBody = slide.Body

	e.region = RegionTitle
	if e.localTitle == nil {
		e.region = RegionBody
	}

	e.drag = nil
	e.resize = nil
	e.editing = false
	e.editCursor = 0
	e.undoStack = e.undoStack[:0]
	e.sched.Reset()

	// Replay a journaled draft from a previous crash or failed sync.
	if draft, ok := e.drafts[index]; ok {
		delete(e.drafts, index)
		var cmds []tea.Cmd
		if draft.HasText {
			e.localTitle = draft.Title
			e.localBody = draft.Body
			cmds = append(cmds, e.sched.ScheduleText(index, e.localTitle, e.localBody))
		}
		if draft.Style != nil {
			e.localStyle = *draft.Style
			cmds = append(cmds, e.sched.ScheduleStyle(index, fullStylePatch(e.localStyle)))
		}
		if len(cmds) > 0 {
			return tea.Batch(cmds...)
		}
	}
	return nil
}

// ensureRegion auto-corrects the selection when a slide has no title.
func (e *editor) ensureRegion() {
	if e.region == RegionTitle && e.localTitle == nil {
		e.region = RegionBody
	}
}

func (e *editor) regionBox(region Region) BoxGeometry {
	if region == RegionTitle {
		return e.localStyle.TitleBox
	}
	return e.localStyle.BodyBox
}

func (e *editor) regionText(region Region) string {
	if region == RegionTitle {
		if e.localTitle == nil {
			return ""
		}
		return *e.localTitle
	}
	return e.localBody
}

// handleTextChange replaces one region's text in the local copy and
// schedules a debounced persist.
func (e *editor) handleTextChange(region Region, text string) tea.Cmd {
	if region == RegionTitle {
		if e.localTitle == nil {
			return nil
		}
		e.localTitle = &text
	} else {
		e.localBody = text
	}
	return e.sched.ScheduleText(e.slideIndex, e.localTitle, e.localBody)
}

// handleStyleChange merges a partial style into the local copy and
// schedules a debounced persist. Safe to call on every frame of a drag.
func (e *editor) handleStyleChange(patch StylePatch) tea.Cmd {
	e.localStyle = e.localStyle.Apply(patch)
	return e.sched.ScheduleStyle(e.slideIndex, patch)
}

// applyLocalBox updates geometry during a drag or resize without touching
// the dirty bookkeeping; the schedule happens once at session end.
func (e *editor) applyLocalBox(region Region, box BoxGeometry) {
	if region == RegionTitle {
		e.localStyle.TitleBox = box
	} else {
		e.localStyle.BodyBox = box
	}
}

// --- Mouse interaction ---

// Corner handles accept a hit within one cell of the exact corner.
func (e *editor) cornerAt(fx, fy float64, box BoxGeometry) (Corner, bool) {
	radX := 1.5 / float64(maxInt(e.canvasW, 1))
	radY := 1.5 / float64(maxInt(e.canvasH, 1))
	corners := []struct {
		corner Corner
		x, y   float64
	}{
		{CornerTL, box.X, box.Y},
		{CornerTR, box.X + box.Width, box.Y},
		{CornerBL, box.X, box.Y + box.Height},
		{CornerBR, box.X + box.Width, box.Y + box.Height},
	}
	for _, c := range corners {
		if absFloat(fx-c.x) <= radX && absFloat(fy-c.y) <= radY {
			return c.corner, true
		}
	}
	return CornerTL, false
}

func (b BoxGeometry) contains(fx, fy float64) bool {
	return fx >= b.X && fx <= b.X+b.Width && fy >= b.Y && fy <= b.Y+b.Height
}

// toCanvasFraction maps a terminal cell to canvas fractions; ok is false
// outside the canvas area.
func (e *editor) toCanvasFraction(cellX, cellY int) (float64, float64, bool) {
	if e.canvasW < 1 || e.canvasH < 1 {
		return 0, 0, false
	}
	localX := cellX - e.canvasX
	localY := cellY - e.canvasY
	if localX < 0 || localY < 0 || localX >= e.canvasW || localY >= e.canvasH {
		return 0, 0, false
	}
	fx, fy := cellToFraction(localX, localY, e.canvasW, e.canvasH)
	return fx, fy, true
}

// mouseDown starts a resize when a handle of the selected region is hit,
// otherwise selects the region under the pointer and starts a drag.
func (e *editor) mouseDown(cellX, cellY int) {
	fx, fy, ok := e.toCanvasFraction(cellX, cellY)
	if !ok {
		return
	}
	e.editing = false

	selectedBox := e.regionBox(e.region)
	if corner, hit := e.cornerAt(fx, fy, selectedBox); hit {
		e.pushUndo()
		session := beginResize(e.region, corner, fx, fy, selectedBox)
		e.resize = &session
		return
	}

	// Title draws on top of body, so it wins the hit test.
	if e.localTitle != nil && e.localStyle.TitleBox.contains(fx, fy) {
		e.region = RegionTitle
	} else if e.localStyle.BodyBox.contains(fx, fy) {
		e.region = RegionBody
	} else {
		return
	}

	e.pushUndo()
	session := beginDrag(e.region, fx, fy, e.regionBox(e.region))
	e.drag = &session
}

// mouseMotion feeds an active session. Intermediate frames only update
// the local copy; dirty bookkeeping waits for session end.
func (e *editor) mouseMotion(cellX, cellY int) {
	if e.drag == nil && e.resize == nil {
		return
	}
	if e.canvasW < 1 || e.canvasH < 1 {
		return
	}
	// The pointer may leave the canvas mid-drag; clamp instead of dropping
	// the frame so the box tracks to the edge.
	fx, fy := cellToFraction(cellX-e.canvasX, cellY-e.canvasY, e.canvasW, e.canvasH)
	fx = clampFloat(fx, 0, 1)
	fy = clampFloat(fy, 0, 1)
	if e.drag != nil {
		e.applyLocalBox(e.drag.region, e.drag.pointerMove(fx, fy))
	} else {
		e.applyLocalBox(e.resize.region, e.resize.pointerMove(fx, fy))
	}
}

// mouseUp ends the session and schedules one persist carrying the final
// geometry.
func (e *editor) mouseUp() tea.Cmd {
	var region Region
	switch {
	case e.drag != nil:
		region = e.drag.region
		e.drag = nil
	case e.resize != nil:
		region = e.resize.region
		e.resize = nil
	default:
		return nil
	}
	return e.handleStyleChange(boxPatch(region, e.regionBox(region)))
}

// --- Undo ---

const maxUndoDepth = 64

func (e *editor) pushUndo() {
	e.undoStack = append(e.undoStack, e.localStyle)
	if len(e.undoStack) > maxUndoDepth {
		e.undoStack = e.undoStack[1:]
	}
}

func (e *editor) undo() tea.Cmd {
	if len(e.undoStack) == 0 {
		return nil
	}
	last := len(e.undoStack) - 1
	restored := e.undoStack[last]
	e.undoStack = e.undoStack[:last]
	e.localStyle = restored
	return e.sched.ScheduleStyle(e.slideIndex, fullStylePatch(restored))
}

// --- Reconciliation ---

// applyRenderedSlide installs a render result into the project snapshot.
// The result is scoped by the slide index captured at schedule time, so a
// late response for a slide the user already left only refreshes that
// slide's stored data and never touches the editable local copy.
func (e *editor) applyRenderedSlide(index int, rendered *Slide) {
	if e.project == nil || rendered == nil || index < 0 || index >= len(e.project.Slides) {
		return
	}
	e.project.Slides[index] = *rendered
	e.project.Slides[index].Index = index
}

// journalPending records the latest unsynced payload for a group in the
// draft journal after a failed persist. The in-memory draft map is kept
// in step so re-selecting the slide later in the same session replays it.
// A failed durable write is reported; the in-memory draft still stands.
func (e *editor) journalPending(group syncGroup) error {
	if e.project == nil {
		return nil
	}
	slide, title, body, _ := e.sched.Pending(group)
	if e.drafts == nil {
		e.drafts = map[int]Draft{}
	}
	draft := e.drafts[slide]
	draft.ProjectID = e.project.ID
	draft.SlideIndex = slide
	var err error
	if group == groupText {
		draft.Title = title
		draft.Body = body
		draft.HasText = true
		if e.store != nil {
			err = e.store.SaveText(e.project.ID, slide, title, body)
		}
	} else {
		// Journal the merged local style rather than the sparse patch so
		// replay needs no base to apply against.
		style := e.localStyle
		draft.Style = &style
		if e.store != nil {
			err = e.store.SaveStyle(e.project.ID, slide, style)
		}
	}
	e.drafts[slide] = draft
	return err
}

// clearJournal drops the journal row once both groups are clean.
func (e *editor) clearJournal(slide int) error {
	if e.project == nil {
		return nil
	}
	if e.sched.Dirty(groupText) || e.sched.InFlight(groupText) {
		return nil
	}
	if e.sched.Dirty(groupStyle) || e.sched.InFlight(groupStyle) {
		return nil
	}
	delete(e.drafts, slide)
	if e.store != nil {
		return e.store.Clear(e.project.ID, slide)
	}
	return nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
