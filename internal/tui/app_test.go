package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/moonbound/moonbound/internal/auth"
	"github.com/moonbound/moonbound/internal/config"
	"github.com/moonbound/moonbound/pkg/api"
)

func newTestApp(t *testing.T) App {
	t.Helper()
	client := api.New("http://127.0.0.1:1", nil)
	store := auth.NewStore(client, auth.NewTokenFile(t.TempDir()), nil)
	cfg := &config.Config{SessionLimit: 20, ImageStyle: api.DefaultImageStyle}
	a := NewApp(client, store, cfg, "test")
	model, _ := a.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return model.(App)
}

func update(t *testing.T, a App, msg tea.Msg) (App, tea.Cmd) {
	t.Helper()
	model, cmd := a.Update(msg)
	return model.(App), cmd
}

func TestAppStartsHydrating(t *testing.T) {
	a := newTestApp(t)
	if a.phase != phaseHydrating {
		t.Fatalf("phase = %v, want hydrating", a.phase)
	}
	if !strings.Contains(a.View(), "restoring your session") {
		t.Error("expected hydration splash")
	}
}

func TestAppAnonymousGoesToLogin(t *testing.T) {
	a := newTestApp(t)
	a, _ = update(t, a, hydratedMsg{state: auth.StateAnonymous})
	if a.phase != phaseLogin {
		t.Fatalf("phase = %v, want login", a.phase)
	}
	if !strings.Contains(a.View(), "Sign in") {
		t.Error("expected the auth form")
	}
}

func TestAppAuthenticatedEntersShell(t *testing.T) {
	a := newTestApp(t)
	a, cmd := update(t, a, hydratedMsg{state: auth.StateAuthenticated})
	if a.phase != phaseShell {
		t.Fatalf("phase = %v, want shell", a.phase)
	}
	if a.view != viewDream {
		t.Error("shell should open on the interpret tab")
	}
	if cmd == nil {
		t.Error("entering the shell should kick off the health check and list load")
	}
}

func TestAppLoginSuccessEntersShell(t *testing.T) {
	a := newTestApp(t)
	a, _ = update(t, a, hydratedMsg{state: auth.StateAnonymous})
	a, _ = update(t, a, authDoneMsg{err: nil})
	if a.phase != phaseShell {
		t.Fatalf("phase = %v, want shell after successful auth", a.phase)
	}
}

func TestAppTabSwitching(t *testing.T) {
	a := newTestApp(t)
	a, _ = update(t, a, hydratedMsg{state: auth.StateAuthenticated})

	// The dream form starts in editing mode, so the tab digits type instead
	// of navigating.
	a, _ = update(t, a, keyMsg("2"))
	if a.view != viewDream {
		t.Fatal("digit keys must not navigate while a field is focused")
	}
	if a.dream.fields[dreamFieldText] != "2" {
		t.Errorf("dream text = %q, want the typed digit", a.dream.fields[dreamFieldText])
	}

	a, _ = update(t, a, keyMsg("esc"))
	a, cmd := update(t, a, keyMsg("2"))
	if a.view != viewSessions {
		t.Fatal("2 should switch to the dreams tab")
	}
	if cmd == nil {
		t.Error("switching to the dreams tab should refresh the list")
	}

	a, _ = update(t, a, keyMsg("1"))
	if a.view != viewDream {
		t.Error("1 should switch back to the interpret tab")
	}
}

func TestAppHealthBannerDismissedByNavigation(t *testing.T) {
	a := newTestApp(t)
	a, _ = update(t, a, hydratedMsg{state: auth.StateAuthenticated})
	a, _ = update(t, a, healthMsg{err: &api.NetworkError{Message: "cannot reach the api"}})

	if !strings.Contains(a.View(), "cannot reach the api") {
		t.Fatal("expected the advisory banner")
	}

	a, _ = update(t, a, keyMsg("esc"))
	a, _ = update(t, a, keyMsg("2"))
	if strings.Contains(a.View(), "cannot reach the api") {
		t.Error("navigation should dismiss the banner")
	}
}

func TestAppOpenAndCloseDetail(t *testing.T) {
	a := newTestApp(t)
	a, _ = update(t, a, hydratedMsg{state: auth.StateAuthenticated})
	a, _ = update(t, a, keyMsg("esc"))
	a, _ = update(t, a, keyMsg("2"))

	a, cmd := update(t, a, openSessionMsg{id: "s1"})
	if !a.detailOpen {
		t.Fatal("openSessionMsg should open the conversation")
	}
	if cmd == nil {
		t.Error("opening a conversation should start its load")
	}
	if a.detail.sessionID != "s1" {
		t.Errorf("detail session = %q, want s1", a.detail.sessionID)
	}

	a, _ = update(t, a, keyMsg("esc"))
	if a.detailOpen {
		t.Error("esc should close the conversation")
	}
	if a.view != viewSessions {
		t.Error("closing the conversation should land back on the list")
	}
}

func TestAppLogout(t *testing.T) {
	a := newTestApp(t)
	a, _ = update(t, a, hydratedMsg{state: auth.StateAuthenticated})
	a.dream.fields[dreamFieldText] = "private dream"

	a, _ = update(t, a, keyMsg("ctrl+l"))
	if a.phase != phaseLogin {
		t.Fatal("ctrl+l should return to the auth form")
	}
	if a.dream.fields[dreamFieldText] != "" {
		t.Error("logout should discard form state")
	}
	if a.store.State() != auth.StateAnonymous {
		t.Error("logout should clear the session")
	}
}

func TestAppQuitKeys(t *testing.T) {
	a := newTestApp(t)
	_, cmd := update(t, a, keyMsg("ctrl+c"))
	if cmd == nil {
		t.Fatal("ctrl+c should quit")
	}
	if msg := cmd(); msg == nil {
		t.Error("expected a quit message")
	}
}
