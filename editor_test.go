package main

import (
	"testing"
	"time"
)

func testProject() *Project {
	title0 := "First slide"
	style := defaultStyle()
	style.TitleBox = BoxGeometry{X: 0.1, Y: 0.1, Width: 0.4, Height: 0.2, Padding: 0.02}
	return &Project{
		ID: "p1",
		Slides: []Slide{
			{Index: 0, Title: &title0, Body: "first body", Style: style},
			{Index: 1, Body: "second body", Style: style},
		},
	}
}

func newTestEditor(target syncTarget) *editor {
	ed := newEditor(&Config{}, newScheduler(target, "p1", time.Millisecond), nil)
	ed.setProject(testProject())
	ed.drafts = map[int]Draft{}
	ed.canvasX, ed.canvasY = 0, 0
	ed.canvasW, ed.canvasH = 100, 100
	return ed
}

// drain runs the debounce timer and the persist/render round trip to
// completion so a test can inspect the fake's recorded calls.
func drain(t *testing.T, ed *editor, group syncGroup) {
	t.Helper()
	s := ed.sched
	fired := debounceFiredMsg{group: group, gen: s.groups[group].gen}
	persistCmd := s.Fired(fired)
	if persistCmd == nil {
		t.Fatal("nothing scheduled")
	}
	syncMsg := persistCmd().(syncDoneMsg)
	if syncMsg.err != nil {
		t.Fatalf("persist: %v", syncMsg.err)
	}
	renderCmd := s.SyncDone(syncMsg)
	if renderCmd == nil {
		t.Fatal("no render after persist")
	}
	renderMsg := renderCmd().(renderDoneMsg)
	s.RenderDone(renderMsg)
	ed.applyRenderedSlide(renderMsg.slide, renderMsg.slideData)
}

func TestSeedSlideCopiesAuthoritativeState(t *testing.T) {
	ed := newTestEditor(&fakeTarget{})

	if cmd := ed.seedSlide(0); cmd != nil {
		t.Error("seed without drafts returned a replay command")
	}
	if ed.localTitle == nil || *ed.localTitle != "First slide" {
		t.Error("title not copied")
	}
	if ed.localBody != "first body" {
		t.Error("body not copied")
	}
	if ed.region != RegionTitle {
		t.Error("slide with a title should select the title region")
	}

	// Mutating the local copy must not write through to the snapshot.
	*ed.localTitle = "changed"
	if *ed.project.Slides[0].Title == "changed" {
		t.Error("local title aliases the snapshot")
	}
}

func TestSeedSlideWithoutTitleSelectsBody(t *testing.T) {
	ed := newTestEditor(&fakeTarget{})
	ed.seedSlide(1)
	if ed.localTitle != nil {
		t.Error("untitled slide grew a local title")
	}
	if ed.region != RegionBody {
		t.Error("untitled slide should select the body region")
	}
}

func TestSeedSlideMergesConfigDefaults(t *testing.T) {
	ed := newTestEditor(&fakeTarget{})
	ed.cfg = &Config{DefaultFontFamily: "Lora", DefaultTitleSize: 88}

	ed.seedSlide(0)
	if ed.localStyle.FontFamily != "Lora" {
		t.Error("config font not merged into sentinel field")
	}
	if ed.localStyle.TitleSize != 88 {
		t.Error("config size not merged into sentinel field")
	}

	// A non-sentinel value in the snapshot survives.
	ed.project.Slides[0].Style.FontFamily = "Oswald"
	ed.seedSlide(0)
	if ed.localStyle.FontFamily != "Oswald" {
		t.Error("config default clobbered a customized font")
	}
}

func TestTextEditIsOptimisticAndDebounced(t *testing.T) {
	target := &fakeTarget{}
	ed := newTestEditor(target)
	ed.seedSlide(0)

	cmd := ed.handleTextChange(RegionBody, "first body!")
	if cmd == nil {
		t.Fatal("no debounce command")
	}
	if ed.localBody != "first body!" {
		t.Error("local copy not updated immediately")
	}
	if len(target.calls) != 0 {
		t.Error("persist issued before the debounce fired")
	}

	drain(t, ed, groupText)
	if len(target.texts) != 1 || target.texts[0].body != "first body!" {
		t.Errorf("persisted %+v", target.texts)
	}
}

func TestTextChangeOnMissingTitleIsIgnored(t *testing.T) {
	ed := newTestEditor(&fakeTarget{})
	ed.seedSlide(1)
	if cmd := ed.handleTextChange(RegionTitle, "ghost"); cmd != nil {
		t.Error("edit to a missing title was scheduled")
	}
}

func TestDragSchedulesOnePatchWithFinalGeometry(t *testing.T) {
	target := &fakeTarget{}
	ed := newTestEditor(target)
	ed.seedSlide(0)

	// Press inside the title box, drag right in several frames, release.
	ed.mouseDown(20, 20)
	if ed.drag == nil {
		t.Fatal("press inside the title box did not start a drag")
	}
	ed.mouseMotion(25, 20)
	ed.mouseMotion(32, 20)
	ed.mouseMotion(40, 20)
	cmd := ed.mouseUp()
	if cmd == nil {
		t.Fatal("release did not schedule a persist")
	}
	if !almostEqual(ed.localStyle.TitleBox.X, 0.3) {
		t.Errorf("local x %v, want 0.3", ed.localStyle.TitleBox.X)
	}

	drain(t, ed, groupStyle)
	if len(target.styles) != 1 {
		t.Fatalf("got %d persists for one drag, want 1", len(target.styles))
	}
	patch := target.styles[0].patch
	if patch.TitleBox == nil || !almostEqual(*patch.TitleBox.X, 0.3) {
		t.Errorf("persisted patch %+v, want final x 0.3", patch.TitleBox)
	}
}

func TestCornerPressStartsResize(t *testing.T) {
	ed := newTestEditor(&fakeTarget{})
	ed.seedSlide(0)

	// The test title box bottom-right corner sits at (0.5, 0.3).
	x, y := 50, 30
	ed.mouseDown(x, y)
	if ed.resize == nil {
		t.Fatal("press on a corner handle did not start a resize")
	}
	if ed.resize.corner != CornerBR {
		t.Errorf("corner %v, want bottom-right", ed.resize.corner)
	}

	ed.mouseMotion(x+10, y+10)
	cmd := ed.mouseUp()
	if cmd == nil {
		t.Fatal("release did not schedule a persist")
	}
	if !almostEqual(ed.localStyle.TitleBox.Width, 0.5) {
		t.Errorf("width %v, want 0.5", ed.localStyle.TitleBox.Width)
	}
}

func TestPressSelectsRegionUnderPointer(t *testing.T) {
	ed := newTestEditor(&fakeTarget{})
	ed.seedSlide(0)
	if ed.region != RegionTitle {
		t.Fatal("expected title selected after seed")
	}

	// Default body box spans y 0.45..0.85.
	ed.mouseDown(30, 60)
	if ed.region != RegionBody {
		t.Error("press inside the body box did not select it")
	}
	ed.mouseUp()

	// Press outside both boxes changes nothing.
	ed.mouseDown(1, 98)
	if ed.drag != nil || ed.resize != nil {
		t.Error("press outside every box started a session")
	}
	if ed.region != RegionBody {
		t.Error("press outside every box changed the selection")
	}
}

func TestMotionDuringDragDoesNotSchedule(t *testing.T) {
	target := &fakeTarget{}
	ed := newTestEditor(target)
	ed.seedSlide(0)

	ed.mouseDown(20, 20)
	startGen := ed.sched.groups[groupStyle].gen
	ed.mouseMotion(30, 20)
	ed.mouseMotion(35, 20)
	if ed.sched.groups[groupStyle].gen != startGen {
		t.Error("intermediate drag frames armed the debounce timer")
	}
	if ed.sched.Dirty(groupStyle) {
		t.Error("intermediate drag frames marked the group dirty")
	}
}

func TestUndoRestoresStyleAndSchedules(t *testing.T) {
	target := &fakeTarget{}
	ed := newTestEditor(target)
	ed.seedSlide(0)
	before := ed.localStyle

	ed.pushUndo()
	ed.handleStyleChange(StylePatch{TitleSize: floatPtr(120)})

	cmd := ed.undo()
	if cmd == nil {
		t.Fatal("undo with history returned no command")
	}
	if ed.localStyle.TitleSize != before.TitleSize {
		t.Error("undo did not restore the style")
	}
	if !ed.sched.Dirty(groupStyle) {
		t.Error("undo did not schedule a persist of the restored style")
	}

	ed.undoStack = nil
	if cmd := ed.undo(); cmd != nil {
		t.Error("undo with empty history returned a command")
	}
}

func TestLateRenderResultNeverTouchesLocalCopy(t *testing.T) {
	ed := newTestEditor(&fakeTarget{})
	ed.seedSlide(1)
	ed.localBody = "freshly typed"

	// A render for slide 0 resolves after the user moved to slide 1.
	title := "First slide"
	ed.applyRenderedSlide(0, &Slide{
		Title: &title, Body: "stale", RenderedURL: "http://x/0.png", Style: defaultStyle(),
	})

	if ed.localBody != "freshly typed" {
		t.Error("stale render clobbered the local copy")
	}
	if ed.project.Slides[0].RenderedURL != "http://x/0.png" {
		t.Error("stale render result was dropped instead of stored")
	}
	if ed.project.Slides[0].Index != 0 {
		t.Error("stored slide lost its index")
	}
}

func TestSeedReplaysJournaledDraft(t *testing.T) {
	target := &fakeTarget{}
	ed := newTestEditor(target)

	draftTitle := "Recovered title"
	style := defaultStyle()
	style.TitleSize = 99
	ed.drafts[0] = Draft{
		ProjectID:  "p1",
		SlideIndex: 0,
		Title:      &draftTitle,
		Body:       "recovered body",
		HasText:    true,
		Style:      &style,
	}

	cmd := ed.seedSlide(0)
	if cmd == nil {
		t.Fatal("seed with a journaled draft returned no replay command")
	}
	if ed.localBody != "recovered body" || ed.localTitle == nil || *ed.localTitle != draftTitle {
		t.Error("journaled text not restored")
	}
	if ed.localStyle.TitleSize != 99 {
		t.Error("journaled style not restored")
	}
	if !ed.sched.Dirty(groupText) || !ed.sched.Dirty(groupStyle) {
		t.Error("replayed draft not scheduled for sync")
	}
	if _, ok := ed.drafts[0]; ok {
		t.Error("draft left in the replay map")
	}
}

func TestJournalPendingMirrorsIntoDraftMap(t *testing.T) {
	ed := newTestEditor(&fakeTarget{failSave: true})
	ed.seedSlide(0)

	ed.handleTextChange(RegionBody, "doomed edit")
	ed.journalPending(groupText)

	draft, ok := ed.drafts[0]
	if !ok || !draft.HasText || draft.Body != "doomed edit" {
		t.Fatalf("draft map %+v after failed persist", ed.drafts)
	}

	// Seeding another slide and coming back replays the journaled edit.
	ed.seedSlide(1)
	ed.seedSlide(0)
	if ed.localBody != "doomed edit" {
		t.Error("journaled edit lost across slide switches")
	}
}

func TestJournalWriteFailureIsReported(t *testing.T) {
	ed := newTestEditor(&fakeTarget{failSave: true})
	ed.store = newTestStore(t)
	ed.seedSlide(0)
	ed.handleTextChange(RegionBody, "offline edit")

	ed.store.Close()
	if err := ed.journalPending(groupText); err == nil {
		t.Fatal("closed journal reported no error")
	}
	// The in-memory draft still stands even when the durable write fails.
	draft, ok := ed.drafts[0]
	if !ok || draft.Body != "offline edit" {
		t.Errorf("draft map %+v after failed journal write", ed.drafts)
	}
}
