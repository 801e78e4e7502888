package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// The draft, template and image stages are thin glue: render state, call
// an endpoint, install the returned snapshot. All carousel intelligence
// lives server-side; the typography stage is the only one with real
// client-side state (see editor.go).

type projectLoadedMsg struct {
	project *Project
	drafts  map[int]Draft
	err     error
}

type slidesGeneratedMsg struct {
	project *Project
	err     error
}

type textSavedMsg struct {
	project *Project
	err     error
}

type templatesMsg struct {
	templates []Template
	err       error
}

type templateSelectedMsg struct {
	project *Project
	err     error
}

type promptSavedMsg struct {
	project *Project
	err     error
}

type imageGeneratedMsg struct {
	slide   int
	project *Project
	err     error
}

func (m *model) createProjectCmd(topic string) tea.Cmd {
	api, store := m.api, m.store
	return func() tea.Msg {
		project, err := api.CreateProject(topic)
		if err != nil {
			return projectLoadedMsg{err: err}
		}
		var drafts map[int]Draft
		if store != nil {
			drafts, _ = store.Load(project.ID)
		}
		return projectLoadedMsg{project: project, drafts: drafts}
	}
}

func (m *model) openProjectCmd(projectID string) tea.Cmd {
	api, store := m.api, m.store
	return func() tea.Msg {
		project, err := api.GetProject(projectID)
		if err != nil {
			return projectLoadedMsg{err: err}
		}
		var drafts map[int]Draft
		if store != nil {
			drafts, _ = store.Load(project.ID)
		}
		return projectLoadedMsg{project: project, drafts: drafts}
	}
}

func (m *model) generateSlidesCmd() tea.Cmd {
	api, projectID := m.api, m.project.ID
	return func() tea.Msg {
		project, err := api.GenerateSlides(projectID)
		return slidesGeneratedMsg{project: project, err: err}
	}
}

func (m *model) saveDraftTextCmd(slide int, title *string, body string) tea.Cmd {
	api, projectID := m.api, m.project.ID
	return func() tea.Msg {
		project, err := api.SaveText(projectID, slide, title, body)
		return textSavedMsg{project: project, err: err}
	}
}

func (m *model) listTemplatesCmd() tea.Cmd {
	api := m.api
	return func() tea.Msg {
		templates, err := api.ListTemplates()
		return templatesMsg{templates: templates, err: err}
	}
}

func (m *model) selectTemplateCmd(templateID string) tea.Cmd {
	api, projectID := m.api, m.project.ID
	return func() tea.Msg {
		project, err := api.SelectTemplate(projectID, templateID)
		return templateSelectedMsg{project: project, err: err}
	}
}

func (m *model) savePromptCmd(slide int, prompt string) tea.Cmd {
	api, projectID := m.api, m.project.ID
	return func() tea.Msg {
		project, err := api.SavePrompt(projectID, slide, prompt)
		return promptSavedMsg{project: project, err: err}
	}
}

func (m *model) generateImageCmd(slide int) tea.Cmd {
	api, projectID := m.api, m.project.ID
	return func() tea.Msg {
		project, err := api.GenerateImage(projectID, slide)
		return imageGeneratedMsg{slide: slide, project: project, err: err}
	}
}

// --- Startup stage ---

func (m model) updateStartup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.mode == ModeTopicInput {
		switch msg.String() {
		case "enter":
			value := strings.TrimSpace(m.inputText)
			if value == "" {
				m.errorMessage = "Input cannot be empty"
				return m, nil
			}
			m.mode = ModeNormal
			if m.openingProject {
				m.loading = "Opening project..."
				return m, m.openProjectCmd(value)
			}
			m.loading = "Creating project..."
			return m, m.createProjectCmd(value)
		case "esc":
			m.mode = ModeNormal
			m.inputText = ""
			m.inputCursor = 0
			return m, nil
		default:
			m.inputText, m.inputCursor = editLine(m.inputText, m.inputCursor, msg)
			return m, nil
		}
	}

	switch msg.String() {
	case "n":
		m.mode = ModeTopicInput
		m.openingProject = false
		m.inputText = ""
		m.inputCursor = 0
		m.inputPrompt = "Topic: "
		return m, nil
	case "o":
		m.mode = ModeTopicInput
		m.openingProject = true
		m.inputText = ""
		m.inputCursor = 0
		m.inputPrompt = "Project ID: "
		return m, nil
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m model) viewStartup() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("caro :: carousel studio"))
	b.WriteString("\n\n")
	b.WriteString("  'n'  Start a new carousel\n")
	b.WriteString("  'o'  Open an existing project\n")
	b.WriteString("  'q'  Quit\n")
	if m.mode == ModeTopicInput {
		b.WriteString("\n  " + m.inputPrompt + m.inputText + "█\n")
	}
	return b.String()
}

// --- Draft stage ---

func (m model) updateDraft(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.mode == ModeEditing {
		switch msg.String() {
		case "enter":
			m.mode = ModeNormal
			slide := &m.project.Slides[m.selectedSlide]
			if m.editingTitle {
				title := m.inputText
				slide.Title = &title
			} else {
				slide.Body = m.inputText
			}
			return m, m.saveDraftTextCmd(m.selectedSlide, slide.Title, slide.Body)
		case "esc":
			m.mode = ModeNormal
			return m, nil
		case "ctrl+v":
			if pasted, err := readClipboardText(); err == nil {
				pasted = cleanClipboardText(pasted)
				m.inputText = m.inputText[:m.inputCursor] + pasted + m.inputText[m.inputCursor:]
				m.inputCursor += len(pasted)
			}
			return m, nil
		default:
			m.inputText, m.inputCursor = editLine(m.inputText, m.inputCursor, msg)
			return m, nil
		}
	}

	switch msg.String() {
	case "j", "down":
		m.selectedSlide = clampInt(m.selectedSlide+1, 0, len(m.project.Slides)-1)
	case "k", "up":
		m.selectedSlide = clampInt(m.selectedSlide-1, 0, len(m.project.Slides)-1)
	case "i":
		slide := m.project.Slides[m.selectedSlide]
		m.mode = ModeEditing
		m.editingTitle = true
		m.inputText = ""
		if slide.Title != nil {
			m.inputText = *slide.Title
		}
		m.inputCursor = len(m.inputText)
	case "e":
		m.mode = ModeEditing
		m.editingTitle = false
		m.inputText = m.project.Slides[m.selectedSlide].Body
		m.inputCursor = len(m.inputText)
	case "g":
		m.loading = "Drafting slides..."
		return m, m.generateSlidesCmd()
	case "n", "tab":
		m.stage = StageTemplate
		m.loading = "Loading templates..."
		return m, m.listTemplatesCmd()
	case "q", "ctrl+c":
		return m.confirmQuit()
	}
	return m, nil
}

func (m model) viewDraft() string {
	var b strings.Builder
	b.WriteString(m.stageBar())
	b.WriteString("\n")
	for i, slide := range m.project.Slides {
		marker := "  "
		if i == m.selectedSlide {
			marker = "> "
		}
		title := "(no title)"
		if slide.Title != nil {
			title = *slide.Title
		}
		b.WriteString(fmt.Sprintf("%s%d. %s\n", marker, i+1, truncate(title, m.width-8)))
		b.WriteString(fmt.Sprintf("     %s\n", truncate(strings.ReplaceAll(slide.Body, "\n", " "), m.width-8)))
	}
	if m.mode == ModeEditing {
		field := "body"
		if m.editingTitle {
			field = "title"
		}
		b.WriteString("\nEditing " + field + ": " + m.inputText + "█\n")
	}
	return b.String()
}

// --- Template stage ---

func (m model) updateTemplate(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if len(m.templates) > 0 {
			m.selectedTemplate = clampInt(m.selectedTemplate+1, 0, len(m.templates)-1)
		}
	case "k", "up":
		if len(m.templates) > 0 {
			m.selectedTemplate = clampInt(m.selectedTemplate-1, 0, len(m.templates)-1)
		}
	case "enter":
		if m.selectedTemplate >= 0 && m.selectedTemplate < len(m.templates) {
			m.loading = "Applying template..."
			return m, m.selectTemplateCmd(m.templates[m.selectedTemplate].ID)
		}
	case "r":
		m.loading = "Loading templates..."
		return m, m.listTemplatesCmd()
	case "b", "esc":
		m.stage = StageDraft
	case "n", "tab":
		m.stage = StageImages
	case "q", "ctrl+c":
		return m.confirmQuit()
	}
	return m, nil
}

func (m model) viewTemplate() string {
	var b strings.Builder
	b.WriteString(m.stageBar())
	b.WriteString("\n")
	if len(m.templates) == 0 {
		b.WriteString("  (no templates; 'r' to reload)\n")
	}
	for i, tmpl := range m.templates {
		marker := "  "
		if i == m.selectedTemplate {
			marker = "> "
		}
		selected := ""
		if m.project != nil && m.project.TemplateID == tmpl.ID {
			selected = "  [selected]"
		}
		b.WriteString(fmt.Sprintf("%s%s  %s / weight %d%s\n", marker, tmpl.Name,
			tmpl.Style.FontFamily, tmpl.Style.FontWeight, selected))
	}
	return b.String()
}

// --- Images stage ---

func (m model) updateImages(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.mode == ModePromptInput {
		switch msg.String() {
		case "enter":
			m.mode = ModeNormal
			return m, m.savePromptCmd(m.selectedSlide, m.inputText)
		case "esc":
			m.mode = ModeNormal
			return m, nil
		default:
			m.inputText, m.inputCursor = editLine(m.inputText, m.inputCursor, msg)
			return m, nil
		}
	}

	switch msg.String() {
	case "j", "down":
		m.selectedSlide = clampInt(m.selectedSlide+1, 0, len(m.project.Slides)-1)
	case "k", "up":
		m.selectedSlide = clampInt(m.selectedSlide-1, 0, len(m.project.Slides)-1)
	case "e":
		m.mode = ModePromptInput
		m.inputText = m.project.Slides[m.selectedSlide].ImagePrompt
		m.inputCursor = len(m.inputText)
	case "g":
		m.loading = fmt.Sprintf("Generating image for slide %d...", m.selectedSlide+1)
		return m, m.generateImageCmd(m.selectedSlide)
	case "c":
		if err := copyToClipboard(m.project.Slides[m.selectedSlide].ImagePrompt); err != nil {
			m.errorMessage = "Clipboard unavailable: " + err.Error()
		} else {
			m.successMessage = "Prompt copied"
		}
	case "b", "esc":
		m.stage = StageTemplate
	case "n", "tab", "enter":
		return m.enterTypography()
	case "q", "ctrl+c":
		return m.confirmQuit()
	}
	return m, nil
}

func (m model) viewImages() string {
	var b strings.Builder
	b.WriteString(m.stageBar())
	b.WriteString("\n")
	for i, slide := range m.project.Slides {
		marker := "  "
		if i == m.selectedSlide {
			marker = "> "
		}
		status := "no image"
		if slide.ImageURL != "" {
			status = "image ready"
		}
		b.WriteString(fmt.Sprintf("%s%d. [%s] %s\n", marker, i+1, status,
			truncate(slide.ImagePrompt, m.width-20)))
	}
	if m.mode == ModePromptInput {
		b.WriteString("\nPrompt: " + m.inputText + "█\n")
	}
	return b.String()
}

// editLine applies one keystroke to a single-line input buffer.
func editLine(text string, cursor int, msg tea.KeyMsg) (string, int) {
	switch msg.String() {
	case "backspace":
		if cursor > 0 {
			text = text[:cursor-1] + text[cursor:]
			cursor--
		}
	case "left":
		if cursor > 0 {
			cursor--
		}
	case "right":
		if cursor < len(text) {
			cursor++
		}
	case "home", "ctrl+a":
		cursor = 0
	case "end", "ctrl+e":
		cursor = len(text)
	default:
		key := msg.String()
		if len(key) == 1 {
			text = text[:cursor] + key + text[cursor:]
			cursor++
		}
	}
	return text, cursor
}

func truncate(text string, width int) string {
	if width < 4 {
		width = 4
	}
	runes := []rune(text)
	if len(runes) <= width {
		return text
	}
	return string(runes[:width-3]) + "..."
}
