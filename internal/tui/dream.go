package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/moonbound/moonbound/internal/browser"
	"github.com/moonbound/moonbound/pkg/api"
	"github.com/moonbound/moonbound/pkg/domain"
)

type dreamField int

const (
	dreamFieldText dreamField = iota
	dreamFieldContext
	dreamFieldFilename
	numDreamFields
)

type dreamInterpretedMsg struct {
	result *domain.InterpretationResult
	err    error
}

type imageGeneratedMsg struct {
	image *domain.GeneratedImage
	err   error
}

// dreamModel is the interpretation form: dream text, emotional context, the
// optional save-to-file flag, plus the returned interpretation and any
// generated illustration. Image failures never touch an already-displayed
// interpretation, and vice versa.
type dreamModel struct {
	client     *api.Client
	imageStyle string

	fields  [numDreamFields]string
	focus   dreamField
	save    bool
	editing bool

	loading bool
	errMsg  string
	result  *domain.InterpretationResult

	imgLoading bool
	imgErr     string
	image      *domain.GeneratedImage

	status string
	width  int
	height int
}

func newDreamModel(c *api.Client, imageStyle string) dreamModel {
	return dreamModel{client: c, imageStyle: imageStyle, editing: true}
}

func (m dreamModel) Init() tea.Cmd {
	return nil
}

func (m dreamModel) Update(msg tea.Msg) (dreamModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case dreamInterpretedMsg:
		m.loading = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.result = msg.result
		if msg.result.SessionID != "" {
			m.status = fmt.Sprintf("session %s created", shortID(msg.result.SessionID))
		}
		return m, nil

	case imageGeneratedMsg:
		m.imgLoading = false
		if msg.err != nil {
			m.imgErr = msg.err.Error()
			return m, nil
		}
		m.image = msg.image
		return m, nil

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m dreamModel) updateKeys(msg tea.KeyMsg) (dreamModel, tea.Cmd) {
	key := msg.String()

	// Bindings that work in both modes.
	switch key {
	case "ctrl+s":
		return m.submit()
	case "ctrl+g":
		return m.generateImage()
	case "ctrl+f":
		m.save = !m.save
		return m, nil
	}

	if m.editing {
		switch key {
		case "esc":
			m.editing = false
		case "tab", "down":
			m.focus = (m.focus + 1) % numDreamFields
		case "shift+tab", "up":
			m.focus = (m.focus - 1 + numDreamFields) % numDreamFields
		case "enter":
			if m.focus == dreamFieldText {
				m.fields[dreamFieldText] += "\n"
			} else {
				m.focus = (m.focus + 1) % numDreamFields
			}
		case "backspace":
			m.fields[m.focus] = editRune(m.fields[m.focus], "backspace")
		default:
			m.fields[m.focus] = editRune(m.fields[m.focus], key)
		}
		return m, nil
	}

	switch key {
	case "enter", "i":
		m.editing = true
	case "n":
		m = newDreamModel(m.client, m.imageStyle)
	case "c":
		if m.result != nil && m.result.Interpretation != "" {
			clipboard.WriteAll(m.result.Interpretation) //nolint:errcheck // best-effort copy
			m.status = "interpretation copied"
		}
	case "o":
		if u := m.imageURL(); strings.HasPrefix(u, "http") {
			browser.Open(u) //nolint:errcheck // best-effort browser open
			m.status = "opening image in browser"
		}
	case "w":
		return m.saveImage()
	}
	return m, nil
}

func (m dreamModel) submit() (dreamModel, tea.Cmd) {
	text := strings.TrimSpace(m.fields[dreamFieldText])
	if text == "" {
		m.errMsg = "dream text is required"
		return m, nil
	}
	if m.loading {
		return m, nil
	}

	filename := strings.TrimSpace(m.fields[dreamFieldFilename])
	if m.save && filename == "" {
		filename = fmt.Sprintf("dream-%s.txt", uuid.NewString()[:8])
	}

	m.loading = true
	m.errMsg = ""
	m.result = nil
	m.status = ""

	req := domain.InterpretationRequest{
		DreamText:        text,
		EmotionalContext: strings.TrimSpace(m.fields[dreamFieldContext]),
		Save:             m.save,
		Filename:         filename,
	}
	c := m.client
	return m, func() tea.Msg {
		result, err := c.Interpret(context.Background(), req)
		return dreamInterpretedMsg{result: result, err: err}
	}
}

func (m dreamModel) generateImage() (dreamModel, tea.Cmd) {
	text := strings.TrimSpace(m.fields[dreamFieldText])
	if text == "" {
		m.imgErr = "describe your dream first"
		return m, nil
	}
	if m.imgLoading {
		return m, nil
	}

	m.imgLoading = true
	m.imgErr = ""
	m.image = nil

	c := m.client
	style := m.imageStyle
	return m, func() tea.Msg {
		img, err := c.GenerateImage(context.Background(), text, style)
		return imageGeneratedMsg{image: img, err: err}
	}
}

// imageURL returns the freshest image payload: an explicit generation wins
// over the one attached to the interpretation.
func (m dreamModel) imageURL() string {
	if m.image != nil && m.image.ImageURL != "" {
		return m.image.ImageURL
	}
	if m.result != nil {
		return m.result.ImageURL
	}
	return ""
}

func (m dreamModel) saveImage() (dreamModel, tea.Cmd) {
	u := m.imageURL()
	switch {
	case u == "":
		// nothing to save
	case strings.HasPrefix(u, "http"):
		m.status = "image is a URL; press o to open it in the browser"
	default:
		name := "dream-image.png"
		if m.result != nil && m.result.SessionID != "" {
			name = fmt.Sprintf("dream-%s.png", shortID(m.result.SessionID))
		}
		if err := writeInlineImage(u, name); err != nil {
			m.errMsg = err.Error()
		} else {
			m.status = "image saved to " + name
		}
	}
	return m, nil
}

func (m dreamModel) View() string {
	var b strings.Builder
	wrap := lipgloss.NewStyle().Width(max(20, m.width-4))

	b.WriteString("  " + selectedStyle.Render("Interpret your dream") + "\n")
	b.WriteString("  " + metaStyle.Render("describe what you dreamed and discover its meaning") + "\n\n")

	b.WriteString("  " + labelStyle.Render("dream") + "\n")
	text := m.fields[dreamFieldText]
	switch {
	case m.editing && m.focus == dreamFieldText:
		b.WriteString(wrap.Render("  "+normalStyle.Render(text)+accentStyle.Render("█")) + "\n")
	case text == "":
		b.WriteString("  " + inputPlaceholderStyle.Render("last night I was flying over a glowing city...") + "\n")
	default:
		b.WriteString(wrap.Render("  "+dimStyle.Render(text)) + "\n")
	}
	b.WriteString("\n")

	b.WriteString(renderField("context ", m.fields[dreamFieldContext], "joy, anxiety, nostalgia... (optional)", m.editing && m.focus == dreamFieldContext, false) + "\n")

	check := "[ ]"
	if m.save {
		check = "[x]"
	}
	b.WriteString("  " + dimStyle.Render(check+" save transcript server-side (ctrl+f)") + "\n")
	if m.save {
		b.WriteString(renderField("filename", m.fields[dreamFieldFilename], "auto-generated when empty", m.editing && m.focus == dreamFieldFilename, false) + "\n")
	}
	b.WriteString("\n")

	switch {
	case m.loading:
		b.WriteString("  " + dimStyle.Render("interpreting your dream...") + "\n")
	case m.errMsg != "":
		b.WriteString("  " + errorStyle.Render(m.errMsg) + "\n")
	}

	if m.result != nil {
		b.WriteString("\n  " + labelStyle.Render("INTERPRETATION") + "\n")
		b.WriteString(wrap.Render("  "+interpretationStyle.Render(m.result.Interpretation)) + "\n")
		if m.result.ImageURL != "" {
			b.WriteString("  " + accentStyle.Render(describeImage(m.result.ImageURL)) + "\n")
		}
		if m.result.SavedFile != "" {
			b.WriteString("  " + metaStyle.Render("saved server-side: "+m.result.SavedFile) + "\n")
		}
	}

	switch {
	case m.imgLoading:
		b.WriteString("\n  " + dimStyle.Render("painting your dream...") + "\n")
	case m.imgErr != "":
		b.WriteString("\n  " + errorStyle.Render(m.imgErr) + "\n")
	case m.image != nil:
		b.WriteString("\n  " + labelStyle.Render("VISUALIZATION") + "\n")
		b.WriteString("  " + accentStyle.Render(describeImage(m.image.ImageURL)) + "\n")
		if m.image.Description != "" {
			b.WriteString(wrap.Render("  "+metaStyle.Render(m.image.Description)) + "\n")
		}
	}

	if m.status != "" {
		b.WriteString("\n  " + successStyle.Render(m.status) + "\n")
	}

	return b.String()
}

// describeImage summarizes an image payload for a text terminal.
func describeImage(u string) string {
	if strings.HasPrefix(u, "http") {
		return "illustration: " + truncStr(u, 70) + "  (o to open)"
	}
	return "inline illustration received  (w to save as PNG)"
}
