package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func keyMsg(s string) tea.KeyMsg {
	if len([]rune(s)) == 1 {
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+g":
		return tea.KeyMsg{Type: tea.KeyCtrlG}
	case "ctrl+f":
		return tea.KeyMsg{Type: tea.KeyCtrlF}
	case "ctrl+l":
		return tea.KeyMsg{Type: tea.KeyCtrlL}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	panic("unhandled test key: " + s)
}

func typeString(m loginModel, s string) loginModel {
	for _, r := range s {
		m, _ = m.Update(keyMsg(string(r)))
	}
	return m
}

func TestLoginFieldCycling(t *testing.T) {
	m := newLoginModel(nil)
	if m.focus != loginFieldEmail {
		t.Fatalf("initial focus = %v", m.focus)
	}
	m, _ = m.Update(keyMsg("tab"))
	if m.focus != loginFieldPassword {
		t.Errorf("focus after tab = %v, want password", m.focus)
	}
	// Sign-in mode has two fields, so a second tab wraps around.
	m, _ = m.Update(keyMsg("tab"))
	if m.focus != loginFieldEmail {
		t.Errorf("focus after wrap = %v, want email", m.focus)
	}
	m, _ = m.Update(keyMsg("shift+tab"))
	if m.focus != loginFieldPassword {
		t.Errorf("focus after shift+tab = %v, want password", m.focus)
	}
}

func TestLoginTyping(t *testing.T) {
	m := newLoginModel(nil)
	m = typeString(m, "luna@x.io")
	if m.fields[loginFieldEmail] != "luna@x.io" {
		t.Errorf("email = %q", m.fields[loginFieldEmail])
	}
	m, _ = m.Update(keyMsg("backspace"))
	if m.fields[loginFieldEmail] != "luna@x.i" {
		t.Errorf("email after backspace = %q", m.fields[loginFieldEmail])
	}
}

func TestLoginRegisterToggle(t *testing.T) {
	m := newLoginModel(nil)
	if !strings.Contains(m.View(), "Sign in") {
		t.Error("expected sign-in heading")
	}

	m, _ = m.Update(keyMsg("ctrl+r"))
	if !m.registering {
		t.Fatal("ctrl+r should enter register mode")
	}
	view := m.View()
	if !strings.Contains(view, "Create your account") {
		t.Error("expected register heading")
	}
	if !strings.Contains(view, "name") {
		t.Error("register mode should show the name field")
	}

	// The extra field becomes reachable.
	m, _ = m.Update(keyMsg("tab"))
	m, _ = m.Update(keyMsg("tab"))
	if m.focus != loginFieldName {
		t.Errorf("focus = %v, want name", m.focus)
	}

	// Toggling back clamps focus onto a visible field.
	m, _ = m.Update(keyMsg("ctrl+r"))
	if m.focus != loginFieldEmail {
		t.Errorf("focus after toggle back = %v, want email", m.focus)
	}
}

func TestLoginPasswordMasked(t *testing.T) {
	m := newLoginModel(nil)
	m, _ = m.Update(keyMsg("tab"))
	m = typeString(m, "secret")
	view := m.View()
	if strings.Contains(view, "secret") {
		t.Error("password must not appear in the view")
	}
	if !strings.Contains(view, "••••••") {
		t.Error("expected masked password")
	}
}

func TestLoginShowsFailure(t *testing.T) {
	m := newLoginModel(nil)
	m.submitting = true
	m, _ = m.Update(authDoneMsg{err: errors.New("bad credentials")})
	if m.submitting {
		t.Error("submitting should clear on authDoneMsg")
	}
	if !strings.Contains(m.View(), "bad credentials") {
		t.Error("expected failure message in view")
	}
}

func TestLoginIgnoresKeysWhileSubmitting(t *testing.T) {
	m := newLoginModel(nil)
	m.submitting = true
	m, _ = m.Update(keyMsg("a"))
	if m.fields[loginFieldEmail] != "" {
		t.Error("keystrokes should be ignored while submitting")
	}
}
