package main

import (
	"fmt"
	"image"
	"log"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"
)

func main() {
	m := initialModel()
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err := p.Run()
	if m.store != nil {
		m.store.Close()
	}
	if m.watcher != nil {
		m.watcher.Close()
	}
	if err != nil {
		log.Fatal(err)
	}
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("211"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	stageOn    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	stageOff   = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
)

type model struct {
	width  int
	height int

	stage Stage
	mode  Mode

	cfg     *Config
	watcher *fsnotify.Watcher

	api   *Client
	sched *scheduler
	store *draftStore
	ed    *editor

	project *Project

	templates        []Template
	selectedTemplate int
	selectedSlide    int

	inputText      string
	inputCursor    int
	inputPrompt    string
	editingTitle   bool
	openingProject bool

	loading        string
	errorMessage   string
	successMessage string

	confirmAction ConfirmAction

	pending     pendingAction
	pendingSeed int
	flushesLeft int

	bgImages map[string]image.Image
	bgCells  map[string][]string

	exportURL string
}

func initialModel() model {
	cfg := loadConfig()
	api := NewClient(cfg.ServerURL)
	sched := newScheduler(api, "", debounceDelay)

	store, err := openDraftStore(defaultDraftPath())
	if err != nil {
		// The journal is a recovery aid; the editor works without it.
		store = nil
	}

	m := model{
		stage:    StageStartup,
		mode:     ModeNormal,
		cfg:      cfg,
		watcher:  newConfigWatcher(),
		api:      api,
		sched:    sched,
		store:    store,
		ed:       newEditor(cfg, sched, store),
		bgImages: map[string]image.Image{},
		bgCells:  map[string][]string{},
	}
	if err != nil {
		m.errorMessage = "Draft journal unavailable: " + err.Error()
	}
	return m
}

func (m model) Init() tea.Cmd {
	if m.watcher != nil {
		return waitForConfigChange(m.watcher)
	}
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		m.errorMessage = ""
		m.successMessage = ""
		switch m.stage {
		case StageStartup:
			return m.updateStartup(msg)
		case StageDraft:
			return m.updateDraft(msg)
		case StageTemplate:
			return m.updateTemplate(msg)
		case StageImages:
			return m.updateImages(msg)
		case StageTypography:
			return m.updateTypography(msg)
		}
		return m, nil

	case debounceFiredMsg:
		return m, m.sched.Fired(msg)

	case syncDoneMsg:
		cmd := m.sched.SyncDone(msg)
		if msg.err != nil {
			m.errorMessage = "Save failed: " + msg.err.Error()
			if jerr := m.ed.journalPending(msg.group); jerr != nil {
				m.errorMessage += "; " + jerr.Error()
			}
			return m, nil
		}
		m.installProject(msg.project)
		return m, cmd

	case renderDoneMsg:
		m.sched.RenderDone(msg)
		if msg.err != nil {
			m.errorMessage = "Render failed: " + msg.err.Error()
			return m, nil
		}
		m.ed.applyRenderedSlide(msg.slide, msg.slideData)
		if jerr := m.ed.clearJournal(msg.slide); jerr != nil {
			m.errorMessage = jerr.Error()
		}
		return m, nil

	case flushDoneMsg:
		return m.handleFlushDone(msg)

	case configChangedMsg:
		m.cfg = loadConfig()
		m.ed.cfg = m.cfg
		m.api.SetBaseURL(m.cfg.ServerURL)
		m.successMessage = "Config reloaded"
		return m, waitForConfigChange(m.watcher)

	case projectLoadedMsg:
		m.loading = ""
		if msg.err != nil {
			m.errorMessage = "Project load failed: " + msg.err.Error()
			return m, nil
		}
		m.project = msg.project
		m.sched.SetProject(msg.project.ID)
		m.ed.setProject(msg.project)
		m.ed.drafts = msg.drafts
		if m.ed.drafts == nil {
			m.ed.drafts = map[int]Draft{}
		}
		m.selectedSlide = 0
		m.stage = StageDraft
		if len(msg.project.Slides) == 0 {
			m.loading = "Drafting slides..."
			return m, m.generateSlidesCmd()
		}
		return m, nil

	case slidesGeneratedMsg:
		m.loading = ""
		if msg.err != nil {
			m.errorMessage = "Slide generation failed: " + msg.err.Error()
			return m, nil
		}
		m.installProject(msg.project)
		m.selectedSlide = clampInt(m.selectedSlide, 0, len(m.project.Slides)-1)
		m.successMessage = fmt.Sprintf("%d slides drafted", len(m.project.Slides))
		return m, nil

	case textSavedMsg:
		if msg.err != nil {
			m.errorMessage = "Save failed: " + msg.err.Error()
			return m, nil
		}
		m.installProject(msg.project)
		return m, nil

	case templatesMsg:
		m.loading = ""
		if msg.err != nil {
			m.errorMessage = "Template list failed: " + msg.err.Error()
			return m, nil
		}
		m.templates = msg.templates
		m.selectedTemplate = 0
		return m, nil

	case templateSelectedMsg:
		m.loading = ""
		if msg.err != nil {
			m.errorMessage = "Template apply failed: " + msg.err.Error()
			return m, nil
		}
		m.installProject(msg.project)
		m.successMessage = "Template applied"
		return m, nil

	case promptSavedMsg:
		if msg.err != nil {
			m.errorMessage = "Prompt save failed: " + msg.err.Error()
			return m, nil
		}
		m.installProject(msg.project)
		return m, nil

	case imageGeneratedMsg:
		m.loading = ""
		if msg.err != nil {
			m.errorMessage = "Image generation failed: " + msg.err.Error()
			return m, nil
		}
		m.installProject(msg.project)
		m.successMessage = fmt.Sprintf("Image ready for slide %d", msg.slide+1)
		return m, nil

	case imageFetchedMsg:
		if msg.err != nil {
			m.errorMessage = "Background fetch failed: " + msg.err.Error()
			return m, nil
		}
		m.bgImages[msg.url] = msg.img
		return m, nil

	case appliedAllMsg:
		m.loading = ""
		if msg.err != nil {
			m.errorMessage = "Apply to all failed: " + msg.err.Error()
			return m, nil
		}
		m.installProject(msg.project)
		m.successMessage = "Style applied to all slides"
		if m.stage == StageTypography {
			return m, m.ed.seedSlide(m.ed.slideIndex)
		}
		return m, nil

	case exportReadyMsg:
		m.loading = ""
		if msg.err != nil {
			m.errorMessage = "Export failed: " + msg.err.Error()
			return m, nil
		}
		m.exportURL = msg.url
		m.successMessage = "Export ready: " + msg.url
		if err := openURL(msg.url); err != nil {
			m.errorMessage = "Could not open browser: " + err.Error()
		}
		return m, nil

	case previewSavedMsg:
		m.loading = ""
		if msg.err != nil {
			m.errorMessage = "Preview failed: " + msg.err.Error()
			return m, nil
		}
		m.successMessage = "Preview written to " + msg.path
		return m, nil
	}

	return m, nil
}

// installProject replaces the authoritative snapshot everywhere it is
// held. The editor's local editable copy is left alone.
func (m *model) installProject(p *Project) {
	if p == nil {
		return
	}
	m.project = p
	m.ed.setProject(p)
}

func (m model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.stage != StageTypography || m.mode == ModeConfirm {
		return m, nil
	}
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft {
			m.ed.mouseDown(msg.X, msg.Y)
		}
	case tea.MouseActionMotion:
		m.ed.mouseMotion(msg.X, msg.Y)
	case tea.MouseActionRelease:
		return m, m.ed.mouseUp()
	}
	return m, nil
}

func (m model) handleFlushDone(msg flushDoneMsg) (tea.Model, tea.Cmd) {
	m.sched.FlushDone(msg)
	if msg.err != nil {
		m.errorMessage = "Save failed: " + msg.err.Error()
		if jerr := m.ed.journalPending(msg.group); jerr != nil {
			m.errorMessage += "; " + jerr.Error()
		}
	} else {
		m.installProject(msg.project)
		m.ed.applyRenderedSlide(msg.slide, msg.slideData)
		if jerr := m.ed.clearJournal(msg.slide); jerr != nil {
			m.errorMessage = jerr.Error()
		}
	}
	if m.flushesLeft > 0 {
		m.flushesLeft--
	}
	if m.flushesLeft == 0 && m.pending != pendingNone {
		// A failed persist is journaled locally; navigation proceeds.
		return m.performPending(m.pending, m.pendingSeed)
	}
	return m, nil
}

func (m model) View() string {
	var body string
	switch m.stage {
	case StageStartup:
		body = m.viewStartup()
	case StageDraft:
		body = m.viewDraft()
	case StageTemplate:
		body = m.viewTemplate()
	case StageImages:
		body = m.viewImages()
	case StageTypography:
		body = m.viewTypography()
	}
	return body + "\n" + m.statusLine()
}

func (m model) stageBar() string {
	names := []struct {
		stage Stage
		label string
	}{
		{StageDraft, "Draft"},
		{StageTemplate, "Template"},
		{StageImages, "Images"},
		{StageTypography, "Typography"},
	}
	parts := make([]string, 0, len(names))
	for _, n := range names {
		if n.stage == m.stage {
			parts = append(parts, stageOn.Render(n.label))
		} else {
			parts = append(parts, stageOff.Render(n.label))
		}
	}
	return " " + strings.Join(parts, stageOff.Render(" > "))
}

func (m model) statusLine() string {
	if m.mode == ModeConfirm {
		return errStyle.Render(" " + m.confirmPrompt())
	}
	switch {
	case m.errorMessage != "":
		return errStyle.Render(" " + m.errorMessage)
	case m.loading != "":
		return dimStyle.Render(" " + m.loading)
	case m.successMessage != "":
		return okStyle.Render(" " + m.successMessage)
	}
	return dimStyle.Render(" " + m.stageHelp())
}

func (m model) stageHelp() string {
	switch m.stage {
	case StageStartup:
		return "n: new carousel  o: open project  q: quit"
	case StageDraft:
		return "j/k: select  i: title  e: body  g: regenerate  n: templates  q: quit"
	case StageTemplate:
		return "j/k: select  enter: apply  r: reload  b: back  n: images  q: quit"
	case StageImages:
		return "j/k: select  e: prompt  g: generate  c: copy  n: typography  q: quit"
	case StageTypography:
		return "drag/resize with mouse  e: edit text  1/2: region  u: undo  [/]: slide  A: apply all  P: preview  E: export  b: back  q: quit"
	}
	return ""
}
