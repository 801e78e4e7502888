package main

import (
	"errors"
	"testing"
	"time"
)

type textCall struct {
	slide int
	title *string
	body  string
}

type styleCall struct {
	slide int
	patch StylePatch
}

// fakeTarget records calls in arrival order so tests can assert that a
// render is never issued before its persist.
type fakeTarget struct {
	calls      []string
	texts      []textCall
	styles     []styleCall
	failSave   bool
	failRender bool
	project    *Project // snapshot returned on success; minimal when nil
}

func (f *fakeTarget) snapshot(projectID string) *Project {
	if f.project != nil {
		return f.project
	}
	return &Project{ID: projectID}
}

func (f *fakeTarget) SaveText(projectID string, slide int, title *string, body string) (*Project, error) {
	f.calls = append(f.calls, "saveText")
	f.texts = append(f.texts, textCall{slide: slide, title: title, body: body})
	if f.failSave {
		return nil, errors.New("save failed")
	}
	return f.snapshot(projectID), nil
}

func (f *fakeTarget) SaveStyle(projectID string, slide int, patch StylePatch) (*Project, error) {
	f.calls = append(f.calls, "saveStyle")
	f.styles = append(f.styles, styleCall{slide: slide, patch: patch})
	if f.failSave {
		return nil, errors.New("save failed")
	}
	return f.snapshot(projectID), nil
}

func (f *fakeTarget) RenderSlide(projectID string, slide int) (*Slide, error) {
	f.calls = append(f.calls, "render")
	if f.failRender {
		return nil, errors.New("render failed")
	}
	return &Slide{Index: slide, RenderedURL: "http://x/rendered.png"}, nil
}

func newTestScheduler(target syncTarget) *scheduler {
	return newScheduler(target, "p1", time.Millisecond)
}

// fire simulates the current debounce timer expiring for a group.
func fire(s *scheduler, group syncGroup) debounceFiredMsg {
	return debounceFiredMsg{group: group, gen: s.groups[group].gen}
}

func TestCoalescesBurstIntoOnePersist(t *testing.T) {
	target := &fakeTarget{}
	s := newTestScheduler(target)

	title := "Hello"
	s.ScheduleText(2, &title, "H")
	gen1 := fire(s, groupText)
	s.ScheduleText(2, &title, "He")
	gen2 := fire(s, groupText)
	s.ScheduleText(2, &title, "Hello world")

	// Superseded timers fire with stale generations and must be ignored.
	if cmd := s.Fired(gen1); cmd != nil {
		t.Fatal("stale timer produced a command")
	}
	if cmd := s.Fired(gen2); cmd != nil {
		t.Fatal("stale timer produced a command")
	}

	cmd := s.Fired(fire(s, groupText))
	if cmd == nil {
		t.Fatal("live timer produced no command")
	}
	msg := cmd().(syncDoneMsg)
	if msg.err != nil {
		t.Fatalf("persist: %v", msg.err)
	}

	if len(target.texts) != 1 {
		t.Fatalf("got %d persists, want 1", len(target.texts))
	}
	if target.texts[0].body != "Hello world" {
		t.Errorf("persisted body %q, want latest edit", target.texts[0].body)
	}

	renderCmd := s.SyncDone(msg)
	if renderCmd == nil {
		t.Fatal("no render command after persist")
	}
	rendered := renderCmd().(renderDoneMsg)
	s.RenderDone(rendered)

	want := []string{"saveText", "render"}
	if len(target.calls) != len(want) {
		t.Fatalf("calls %v, want %v", target.calls, want)
	}
	for i := range want {
		if target.calls[i] != want[i] {
			t.Fatalf("calls %v, want %v", target.calls, want)
		}
	}
	if s.Busy() {
		t.Error("scheduler still busy after render completes")
	}
}

func TestStylePatchesMergeWhileDirty(t *testing.T) {
	target := &fakeTarget{}
	s := newTestScheduler(target)

	s.ScheduleStyle(0, StylePatch{TitleSize: floatPtr(80)})
	s.ScheduleStyle(0, StylePatch{TitleBox: &BoxPatch{X: floatPtr(0.3)}})
	s.ScheduleStyle(0, StylePatch{TitleBox: &BoxPatch{Y: floatPtr(0.2)}})

	cmd := s.Fired(fire(s, groupStyle))
	if cmd == nil {
		t.Fatal("no persist command")
	}
	cmd()

	if len(target.styles) != 1 {
		t.Fatalf("got %d persists, want 1", len(target.styles))
	}
	patch := target.styles[0].patch
	if patch.TitleSize == nil || *patch.TitleSize != 80 {
		t.Error("earlier size edit lost in merge")
	}
	if patch.TitleBox == nil || patch.TitleBox.X == nil || *patch.TitleBox.X != 0.3 {
		t.Error("box x lost when later patch touched only y")
	}
	if patch.TitleBox.Y == nil || *patch.TitleBox.Y != 0.2 {
		t.Error("box y missing from merged patch")
	}
}

func TestGroupsAreIndependent(t *testing.T) {
	target := &fakeTarget{}
	s := newTestScheduler(target)

	title := "T"
	s.ScheduleText(0, &title, "body")
	s.ScheduleStyle(0, StylePatch{TitleSize: floatPtr(60)})

	textCmd := s.Fired(fire(s, groupText))
	textMsg := textCmd().(syncDoneMsg)

	// Text is mid-flight; a style edit must still be schedulable.
	s.ScheduleStyle(0, StylePatch{BodySize: floatPtr(30)})
	if !s.Dirty(groupStyle) {
		t.Error("style group not dirty while text group syncs")
	}
	if !s.InFlight(groupText) {
		t.Error("text group not in flight")
	}

	renderCmd := s.SyncDone(textMsg)
	s.RenderDone(renderCmd().(renderDoneMsg))

	styleCmd := s.Fired(fire(s, groupStyle))
	styleMsg := styleCmd().(syncDoneMsg)
	s.RenderDone(s.SyncDone(styleMsg)().(renderDoneMsg))

	if s.Busy() {
		t.Error("scheduler busy after both groups completed")
	}
}

func TestPersistFailureRollsBackToDirty(t *testing.T) {
	target := &fakeTarget{failSave: true}
	s := newTestScheduler(target)

	title := "T"
	s.ScheduleText(1, &title, "body")
	cmd := s.Fired(fire(s, groupText))
	msg := cmd().(syncDoneMsg)
	if msg.err == nil {
		t.Fatal("expected persist error")
	}
	if renderCmd := s.SyncDone(msg); renderCmd != nil {
		t.Error("render issued after failed persist")
	}
	if !s.Dirty(groupText) {
		t.Error("failed persist did not roll back to dirty")
	}

	// The payload survives for retry.
	slide, gotTitle, body, _ := s.Pending(groupText)
	if slide != 1 || gotTitle == nil || *gotTitle != "T" || body != "body" {
		t.Error("pending payload lost after failed persist")
	}
}

func TestRenderFailureLeavesGroupDirtyForRetry(t *testing.T) {
	target := &fakeTarget{failRender: true}
	s := newTestScheduler(target)

	s.ScheduleStyle(0, StylePatch{TitleSize: floatPtr(50)})
	msg := s.Fired(fire(s, groupStyle))().(syncDoneMsg)
	rendered := s.SyncDone(msg)().(renderDoneMsg)
	if rendered.err == nil {
		t.Fatal("expected render error")
	}
	s.RenderDone(rendered)

	// Persisted but not recomposited: the group rolls back to dirty so
	// the stale composite can be retried.
	if !s.Dirty(groupStyle) {
		t.Fatal("render failure did not leave the group dirty")
	}

	target.failRender = false
	cmd, count := s.Flush()
	if count != 1 {
		t.Fatalf("flush count %d, want 1", count)
	}
	retry := cmd().(flushDoneMsg)
	if retry.err != nil {
		t.Fatalf("retry: %v", retry.err)
	}
	s.FlushDone(retry)

	want := []string{"saveStyle", "render", "saveStyle", "render"}
	if len(target.calls) != len(want) {
		t.Fatalf("calls %v, want %v", target.calls, want)
	}
	if s.Busy() {
		t.Error("scheduler busy after successful retry")
	}
}

func TestPersistResolvingAfterResetStillRenders(t *testing.T) {
	target := &fakeTarget{}
	s := newTestScheduler(target)

	title := "T"
	s.ScheduleText(0, &title, "typed on old slide")
	cmd := s.Fired(fire(s, groupText))
	// A slide switch seeds before the persist resolves.
	s.Reset()

	msg := cmd().(syncDoneMsg)
	if msg.err != nil {
		t.Fatalf("persist: %v", msg.err)
	}
	renderCmd := s.SyncDone(msg)
	if renderCmd == nil {
		t.Fatal("render dropped for a persist that landed")
	}
	rendered := renderCmd().(renderDoneMsg)
	if rendered.slide != 0 {
		t.Errorf("render targeted slide %d, want 0", rendered.slide)
	}
	s.RenderDone(rendered)

	if s.Busy() {
		t.Error("orphan render disturbed the reset state")
	}
	want := []string{"saveText", "render"}
	if len(target.calls) != len(want) || target.calls[1] != "render" {
		t.Fatalf("calls %v, want %v", target.calls, want)
	}
}

func TestFlushRunsPersistThenRenderImmediately(t *testing.T) {
	target := &fakeTarget{}
	s := newTestScheduler(target)

	title := "T"
	s.ScheduleText(3, &title, "typed text")
	cmd, count := s.Flush()
	if count != 1 {
		t.Fatalf("flush count %d, want 1", count)
	}
	msg := cmd().(flushDoneMsg)
	if msg.err != nil {
		t.Fatalf("flush: %v", msg.err)
	}
	s.FlushDone(msg)

	want := []string{"saveText", "render"}
	for i := range want {
		if i >= len(target.calls) || target.calls[i] != want[i] {
			t.Fatalf("calls %v, want %v", target.calls, want)
		}
	}
	if target.texts[0].body != "typed text" {
		t.Errorf("flushed body %q", target.texts[0].body)
	}

	// The cancelled timer fires later; it must be a no-op.
	if cmd := s.Fired(debounceFiredMsg{group: groupText, gen: s.groups[groupText].gen - 1}); cmd != nil {
		t.Error("stale timer fired after flush")
	}
}

func TestFlushWithNothingDirtyIsFree(t *testing.T) {
	target := &fakeTarget{}
	s := newTestScheduler(target)

	cmd, count := s.Flush()
	if cmd != nil || count != 0 {
		t.Fatal("clean flush produced work")
	}

	// Flush, complete, flush again with no edit in between.
	s.ScheduleStyle(0, StylePatch{TitleSize: floatPtr(44)})
	flushCmd, _ := s.Flush()
	s.FlushDone(flushCmd().(flushDoneMsg))

	cmd, count = s.Flush()
	if cmd != nil || count != 0 {
		t.Error("second flush re-sent already synced payload")
	}
	if len(target.styles) != 1 {
		t.Errorf("got %d style persists, want 1", len(target.styles))
	}
}

func TestFlushBothGroups(t *testing.T) {
	target := &fakeTarget{}
	s := newTestScheduler(target)

	title := "T"
	s.ScheduleText(0, &title, "b")
	s.ScheduleStyle(0, StylePatch{TitleSize: floatPtr(44)})

	_, count := s.Flush()
	if count != 2 {
		t.Fatalf("flush count %d, want 2", count)
	}
	if !s.InFlight(groupText) || !s.InFlight(groupStyle) {
		t.Error("groups not marked in flight during flush")
	}
}

func TestFlushPersistFailureKeepsPayload(t *testing.T) {
	target := &fakeTarget{failSave: true}
	s := newTestScheduler(target)

	s.ScheduleStyle(2, StylePatch{TitleSize: floatPtr(44)})
	cmd, _ := s.Flush()
	msg := cmd().(flushDoneMsg)
	if msg.err == nil {
		t.Fatal("expected flush error")
	}
	s.FlushDone(msg)

	if !s.Dirty(groupStyle) {
		t.Error("failed flush did not keep the group dirty")
	}
	slide, _, _, patch := s.Pending(groupStyle)
	if slide != 2 || patch.TitleSize == nil {
		t.Error("pending payload lost after failed flush")
	}
}

func TestResetDropsPendingState(t *testing.T) {
	target := &fakeTarget{}
	s := newTestScheduler(target)

	title := "T"
	s.ScheduleText(0, &title, "b")
	gen := fire(s, groupText)
	s.Reset()

	if s.Busy() {
		t.Error("busy after reset")
	}
	if cmd := s.Fired(gen); cmd != nil {
		t.Error("pre-reset timer still live")
	}
	if len(target.calls) != 0 {
		t.Errorf("reset issued network calls: %v", target.calls)
	}
}
