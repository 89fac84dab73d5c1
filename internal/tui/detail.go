package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/moonbound/moonbound/internal/browser"
	"github.com/moonbound/moonbound/pkg/api"
	"github.com/moonbound/moonbound/pkg/domain"
)

type sessionLoadedMsg struct {
	id      string
	session *domain.Session
	err     error
}

type followupSentMsg struct {
	id       string
	question string
	answer   string
	err      error
}

// detailModel is one dream conversation. After every follow-up the session is
// reloaded from the server rather than appended locally, so the transcript
// always matches server state; the posted answer is shown immediately as an
// optimistic preview until the reload lands. Responses carry the session id
// they were requested for, and anything addressed to a different id than the
// open one is dropped.
type detailModel struct {
	client *api.Client

	sessionID string
	session   *domain.Session
	loading   bool
	errMsg    string

	input        string
	inputFocused bool
	sending      bool
	preview      *domain.Followup

	status string
	closed bool
	width  int
	height int
}

func newDetailModel(c *api.Client) detailModel {
	return detailModel{client: c}
}

// open points the model at a session and starts the initial load.
func (m *detailModel) open(id string) tea.Cmd {
	m.sessionID = id
	m.session = nil
	m.preview = nil
	m.errMsg = ""
	m.loading = true
	m.inputFocused = false
	m.input = ""
	m.closed = false
	return m.load()
}

func (m detailModel) load() tea.Cmd {
	c := m.client
	id := m.sessionID
	return func() tea.Msg {
		session, err := c.GetSession(context.Background(), id)
		return sessionLoadedMsg{id: id, session: session, err: err}
	}
}

func (m detailModel) Update(msg tea.Msg) (detailModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case sessionLoadedMsg:
		if msg.id != m.sessionID {
			return m, nil // stale response for a previously open session
		}
		m.loading = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.errMsg = ""
		m.session = msg.session
		m.preview = nil // the authoritative transcript now includes the pair
		return m, nil

	case followupSentMsg:
		if msg.id != m.sessionID {
			return m, nil
		}
		m.sending = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.errMsg = ""
		m.input = ""
		m.preview = &domain.Followup{Question: msg.question, Answer: msg.answer}
		m.loading = true
		return m, m.load()

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m detailModel) updateKeys(msg tea.KeyMsg) (detailModel, tea.Cmd) {
	key := msg.String()

	if m.inputFocused {
		switch key {
		case "esc":
			m.inputFocused = false
		case "enter":
			return m.send()
		case "backspace":
			m.input = editRune(m.input, "backspace")
		default:
			m.input = editRune(m.input, key)
		}
		return m, nil
	}

	switch key {
	case "esc", "q":
		m.closed = true
	case "enter", "i":
		m.inputFocused = true
	case "r":
		m.loading = true
		m.errMsg = ""
		return m, m.load()
	case "c":
		if m.session != nil && m.session.Interpretation != "" {
			clipboard.WriteAll(m.session.Interpretation) //nolint:errcheck // best-effort copy
			m.status = "interpretation copied"
		}
	case "o":
		if m.session != nil && strings.HasPrefix(m.session.ImageURL, "http") {
			browser.Open(m.session.ImageURL) //nolint:errcheck // best-effort browser open
			m.status = "opening image in browser"
		}
	case "w":
		if m.session != nil && m.session.HasInlineImage() {
			name := fmt.Sprintf("dream-%s.png", shortID(m.sessionID))
			if err := writeInlineImage(m.session.ImageURL, name); err != nil {
				m.errMsg = err.Error()
			} else {
				m.status = "image saved to " + name
			}
		}
	}
	return m, nil
}

func (m detailModel) send() (detailModel, tea.Cmd) {
	question := strings.TrimSpace(m.input)
	if question == "" || m.sending {
		return m, nil
	}
	m.sending = true
	m.errMsg = ""
	m.status = ""

	c := m.client
	id := m.sessionID
	return m, func() tea.Msg {
		answer, err := c.SendFollowup(context.Background(), id, question)
		return followupSentMsg{id: id, question: question, answer: answer, err: err}
	}
}

func (m detailModel) View() string {
	var b strings.Builder
	wrap := lipgloss.NewStyle().Width(clampWidth(m.width))

	b.WriteString("  " + selectedStyle.Render("Conversation") + "  " + metaStyle.Render(shortID(m.sessionID)) + "\n\n")

	if m.errMsg != "" {
		b.WriteString("  " + errorStyle.Render(m.errMsg) + "\n")
		if strings.Contains(m.errMsg, "404") || strings.Contains(strings.ToLower(m.errMsg), "not found") {
			b.WriteString("  " + metaStyle.Render("the session may have been deleted, or it belongs to another account") + "\n")
		}
		b.WriteString("\n")
	}

	if m.session == nil {
		if m.loading {
			b.WriteString("  " + dimStyle.Render("loading conversation...") + "\n")
		}
		return b.String()
	}

	s := m.session

	if s.DreamText != "" {
		b.WriteString("  " + labelStyle.Render("YOUR DREAM") + "\n")
		b.WriteString(wrap.Render("  "+dreamBubbleStyle.Render(s.DreamText)) + "\n\n")
	}
	if s.ImageURL != "" {
		b.WriteString("  " + accentStyle.Render(describeImage(s.ImageURL)) + "\n")
		if s.ImageDescription != "" {
			b.WriteString("  " + metaStyle.Render(truncStr(oneLine(s.ImageDescription), 70)) + "\n")
		}
		b.WriteString("\n")
	}
	if s.Interpretation != "" {
		b.WriteString("  " + labelStyle.Render("INTERPRETATION") + "\n")
		b.WriteString(wrap.Render("  "+interpretationStyle.Render(s.Interpretation)) + "\n\n")
	}

	for _, f := range s.Followups {
		line := "  " + accentStyle.Render("? "+f.Question)
		if ts := formatTime(f.Timestamp); ts != "" {
			line += "  " + metaStyle.Render(ts)
		}
		b.WriteString(line + "\n")
		b.WriteString(wrap.Render("    "+normalStyle.Render(f.Answer)) + "\n\n")
	}

	if m.preview != nil {
		b.WriteString("  " + successStyle.Render("new answer") + "\n")
		b.WriteString("  " + accentStyle.Render("? "+m.preview.Question) + "\n")
		b.WriteString(wrap.Render("    "+normalStyle.Render(m.preview.Answer)) + "\n\n")
	}

	switch {
	case m.sending:
		b.WriteString("  " + dimStyle.Render("asking...") + "\n")
	case m.loading:
		b.WriteString("  " + dimStyle.Render("refreshing...") + "\n")
	case m.status != "":
		b.WriteString("  " + successStyle.Render(m.status) + "\n")
	}

	b.WriteString("\n")
	prompt := "  " + inputPromptStyle.Render("> ")
	switch {
	case m.inputFocused:
		b.WriteString(prompt + normalStyle.Render(m.input) + accentStyle.Render("█") + "\n")
	case m.input != "":
		b.WriteString(prompt + dimStyle.Render(m.input) + "\n")
	default:
		b.WriteString(prompt + inputPlaceholderStyle.Render("ask a follow-up... (enter to type)") + "\n")
	}

	return b.String()
}

func clampWidth(w int) int {
	if w < 24 {
		return 76
	}
	return w - 4
}
