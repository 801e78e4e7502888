package main

import (
	"fmt"
	"image"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

var fontFamilies = []string{
	"Inter", "Poppins", "Montserrat", "Roboto", "Playfair Display",
	"Oswald", "Lora", "Bebas Neue",
}

var fontWeights = []int{400, 500, 600, 700, 800}

var textColors = []string{
	"#FFFFFF", "#000000", "#FFD166", "#EF476F", "#06D6A0", "#118AB2",
}

type appliedAllMsg struct {
	project *Project
	err     error
}

type exportReadyMsg struct {
	url string
	err error
}

type previewSavedMsg struct {
	path string
	err  error
}

type imageFetchedMsg struct {
	url string
	img image.Image
	err error
}

func (m *model) applyAllCmd() tea.Cmd {
	api, projectID, style := m.api, m.project.ID, m.ed.localStyle
	return func() tea.Msg {
		project, err := api.ApplyStyleAndRenderAll(projectID, style)
		return appliedAllMsg{project: project, err: err}
	}
}

func (m *model) exportCmd() tea.Cmd {
	api, projectID := m.api, m.project.ID
	return func() tea.Msg {
		url, err := api.ExportArchive(projectID)
		return exportReadyMsg{url: url, err: err}
	}
}

func (m *model) previewCmd() tea.Cmd {
	slide := m.ed.slide()
	if slide == nil {
		return nil
	}
	background := m.bgImages[slide.ImageURL]
	outPath := m.cfg.GetSavePath(fmt.Sprintf("%s-slide-%d-preview.png", m.project.ID, m.ed.slideIndex+1))
	title, body, style := m.ed.localTitle, m.ed.localBody, m.ed.localStyle
	fontDir := m.cfg.FontDirectory
	return func() tea.Msg {
		err := renderSlidePNG(outPath, background, title, body, style, fontDir)
		return previewSavedMsg{path: outPath, err: err}
	}
}

func (m *model) fetchImageCmd(url string) tea.Cmd {
	if url == "" {
		return nil
	}
	if _, ok := m.bgImages[url]; ok {
		return nil
	}
	api := m.api
	return func() tea.Msg {
		img, err := api.FetchImage(url)
		return imageFetchedMsg{url: url, img: img, err: err}
	}
}

// backgroundCells returns the luminance preview for a URL at the given
// size, computing and caching it on first use.
func (m model) backgroundCells(url string, width, height int) []string {
	if url == "" {
		return nil
	}
	key := fmt.Sprintf("%s|%dx%d", url, width, height)
	if cells, ok := m.bgCells[key]; ok {
		return cells
	}
	img, ok := m.bgImages[url]
	if !ok {
		return nil
	}
	cells := imageToCells(img, width, height)
	m.bgCells[key] = cells
	return cells
}

func (m model) updateTypography(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ed := m.ed

	if m.mode == ModeConfirm {
		return m.updateConfirm(msg)
	}

	if ed.editing {
		return m.updateInlineEdit(msg)
	}

	switch msg.String() {
	case "1":
		if ed.localTitle != nil {
			ed.region = RegionTitle
		}
	case "2":
		ed.region = RegionBody
	case "tab":
		if ed.region == RegionBody && ed.localTitle != nil {
			ed.region = RegionTitle
		} else {
			ed.region = RegionBody
		}
	case "e", "enter":
		ed.editing = true
		ed.editCursor = len([]rune(ed.regionText(ed.region)))
	case "h", "left":
		return m, m.nudgeSelected(-nudgeStep, 0)
	case "l", "right":
		return m, m.nudgeSelected(nudgeStep, 0)
	case "k", "up":
		return m, m.nudgeSelected(0, -nudgeStep)
	case "j", "down":
		return m, m.nudgeSelected(0, nudgeStep)
	case "f":
		return m, m.cycleStyle(func(s Style) StylePatch {
			return StylePatch{FontFamily: stringPtr(nextInList(fontFamilies, s.FontFamily))}
		})
	case "F":
		return m, m.cycleStyle(func(s Style) StylePatch {
			return StylePatch{FontWeight: intPtr(nextInIntList(fontWeights, s.FontWeight))}
		})
	case "+", "=":
		return m, m.bumpFontSize(4)
	case "-", "_":
		return m, m.bumpFontSize(-4)
	case "t":
		return m, m.cycleStyle(func(s Style) StylePatch {
			return StylePatch{TextColor: stringPtr(nextInList(textColors, s.TextColor))}
		})
	case "a":
		return m, m.cycleStyle(func(s Style) StylePatch {
			return StylePatch{Alignment: stringPtr(nextAlignment(s.Alignment))}
		})
	case "L":
		return m, m.cycleStyle(func(s Style) StylePatch {
			return StylePatch{LineSpacing: floatPtr(clampFloat(s.LineSpacing+0.1, 0.8, 3))}
		})
	case "ctrl+l":
		return m, m.cycleStyle(func(s Style) StylePatch {
			return StylePatch{LineSpacing: floatPtr(clampFloat(s.LineSpacing-0.1, 0.8, 3))}
		})
	case "o":
		return m, m.cycleStyle(func(s Style) StylePatch {
			return StylePatch{Stroke: &StrokePatch{Enabled: boolPtr(!s.Stroke.Enabled)}}
		})
	case "O":
		return m, m.cycleStyle(func(s Style) StylePatch {
			return StylePatch{Shadow: &ShadowPatch{Enabled: boolPtr(!s.Shadow.Enabled)}}
		})
	case "M":
		return m, m.cycleStyle(func(s Style) StylePatch {
			return StylePatch{MaxLines: intPtr((s.MaxLines + 1) % 6)}
		})
	case "u":
		return m, ed.undo()
	case "D":
		if len(m.ed.drafts) > 0 {
			m.mode = ModeConfirm
			m.confirmAction = ConfirmDiscardDrafts
		} else {
			m.successMessage = "No local drafts to discard"
		}
	case "[":
		return m.switchSlide(ed.slideIndex - 1)
	case "]":
		return m.switchSlide(ed.slideIndex + 1)
	case "A":
		if m.cfg.Confirmations {
			m.mode = ModeConfirm
			m.confirmAction = ConfirmApplyAll
			return m, nil
		}
		return m.startApplyAll()
	case "P":
		m.loading = "Writing preview..."
		return m, m.previewCmd()
	case "E":
		m.loading = "Requesting export..."
		return m, m.exportCmd()
	case "b", "esc":
		return m.leaveTypography()
	case "q", "ctrl+c":
		return m.confirmQuit()
	}
	return m, nil
}

// updateInlineEdit routes keystrokes into the selected region's text.
// Every change goes through the editor's text entry point, so the
// debounced persist keeps pace with typing.
func (m model) updateInlineEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ed := m.ed
	text := []rune(ed.regionText(ed.region))
	cursor := clampInt(ed.editCursor, 0, len(text))

	switch msg.String() {
	case "esc":
		ed.editing = false
		return m, nil
	case "enter":
		if ed.region == RegionTitle {
			ed.editing = false
			return m, nil
		}
		text = insertRunes(text, cursor, '\n')
		cursor++
	case "backspace":
		if cursor > 0 {
			text = append(text[:cursor-1], text[cursor:]...)
			cursor--
		}
	case "left":
		cursor = clampInt(cursor-1, 0, len(text))
	case "right":
		cursor = clampInt(cursor+1, 0, len(text))
	case "home":
		cursor = 0
	case "end":
		cursor = len(text)
	case "ctrl+v":
		pasted, err := readClipboardText()
		if err != nil {
			return m, nil
		}
		runes := []rune(cleanClipboardText(pasted))
		out := make([]rune, 0, len(text)+len(runes))
		out = append(out, text[:cursor]...)
		out = append(out, runes...)
		out = append(out, text[cursor:]...)
		text = out
		cursor += len(runes)
	default:
		key := []rune(msg.String())
		if len(key) != 1 {
			return m, nil
		}
		text = insertRunes(text, cursor, key[0])
		cursor++
	}

	ed.editCursor = cursor
	return m, ed.handleTextChange(ed.region, string(text))
}

func insertRunes(text []rune, pos int, r rune) []rune {
	out := make([]rune, 0, len(text)+1)
	out = append(out, text[:pos]...)
	out = append(out, r)
	out = append(out, text[pos:]...)
	return out
}

func (m *model) nudgeSelected(dx, dy float64) tea.Cmd {
	ed := m.ed
	box := ed.regionBox(ed.region)
	ed.pushUndo()
	x := clampFloat(box.X+dx, 0, 1-box.Width)
	y := clampFloat(box.Y+dy, 0, 1-box.Height)
	patch := StylePatch{}
	boxP := &BoxPatch{X: floatPtr(x), Y: floatPtr(y)}
	if ed.region == RegionTitle {
		patch.TitleBox = boxP
	} else {
		patch.BodyBox = boxP
	}
	return ed.handleStyleChange(patch)
}

func (m *model) cycleStyle(build func(Style) StylePatch) tea.Cmd {
	m.ed.pushUndo()
	return m.ed.handleStyleChange(build(m.ed.localStyle))
}

func (m *model) bumpFontSize(delta float64) tea.Cmd {
	ed := m.ed
	ed.pushUndo()
	if ed.region == RegionTitle {
		size := clampFloat(ed.localStyle.TitleSize+delta, 12, 200)
		return ed.handleStyleChange(StylePatch{TitleSize: floatPtr(size)})
	}
	size := clampFloat(ed.localStyle.BodySize+delta, 10, 160)
	return ed.handleStyleChange(StylePatch{BodySize: floatPtr(size)})
}

func nextInList(list []string, current string) string {
	for i, item := range list {
		if item == current {
			return list[(i+1)%len(list)]
		}
	}
	return list[0]
}

func nextInIntList(list []int, current int) int {
	for i, item := range list {
		if item == current {
			return list[(i+1)%len(list)]
		}
	}
	return list[0]
}

func nextAlignment(current string) string {
	switch current {
	case "left":
		return "center"
	case "center":
		return "right"
	default:
		return "left"
	}
}

func (m model) viewTypography() string {
	ed := m.ed
	slide := ed.slide()
	if slide == nil {
		return m.stageBar() + "\n  (no slide selected)"
	}
	ed.ensureRegion()

	canvasW := m.width
	canvasH := m.height - 3
	if canvasW < 10 {
		canvasW = 10
	}
	if canvasH < 5 {
		canvasH = 5
	}
	ed.canvasX, ed.canvasY = 0, 1
	ed.canvasW, ed.canvasH = canvasW, canvasH

	lines := renderOverlay(overlayInput{
		width:      canvasW,
		height:     canvasH,
		background: m.backgroundCells(slide.ImageURL, canvasW, canvasH),
		style:      ed.localStyle,
		title:      ed.localTitle,
		body:       ed.localBody,
		selected:   ed.region,
		editing:    ed.editing,
		editCursor: ed.editCursor,
	})

	var b strings.Builder
	b.WriteString(m.stageBar())
	b.WriteString("\n")
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n")
	b.WriteString(m.typographyToolbar())
	return b.String()
}

func (m model) typographyToolbar() string {
	ed := m.ed
	region := "title"
	if ed.region == RegionBody {
		region = "body"
	}
	size := ed.localStyle.TitleSize
	if ed.region == RegionBody {
		size = ed.localStyle.BodySize
	}
	return dimStyle.Render(fmt.Sprintf(
		"slide %d/%d  [%s]  %s %d  %.0fpx  %s  spacing %.1f  stroke:%s shadow:%s  %s",
		ed.slideIndex+1, len(m.project.Slides), region,
		ed.localStyle.FontFamily, ed.localStyle.FontWeight, size,
		ed.localStyle.Alignment, ed.localStyle.LineSpacing,
		onOff(ed.localStyle.Stroke.Enabled), onOff(ed.localStyle.Shadow.Enabled),
		m.syncIndicator()))
}

func onOff(enabled bool) string {
	if enabled {
		return "on"
	}
	return "off"
}

func (m model) syncIndicator() string {
	var parts []string
	for group := syncGroup(0); group < groupCount; group++ {
		switch {
		case m.sched.Dirty(group):
			parts = append(parts, group.String()+" unsaved")
		case m.sched.InFlight(group):
			parts = append(parts, group.String()+" saving")
		}
	}
	if len(parts) == 0 {
		return "synced"
	}
	return strings.Join(parts, ", ")
}
