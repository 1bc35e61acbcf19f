package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/merrow/brim/internal/control"
	"github.com/merrow/brim/internal/prefs"
)

func pressClear(t *testing.T, m ClearDataModel, msg tea.KeyMsg) (ClearDataModel, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	return updated.(ClearDataModel), cmd
}

func TestClearDataSelectionDefaults(t *testing.T) {
	m := NewClearDataModel(prefs.NewMemoryStore())

	want := control.ClearDataPayload{Cache: true, Cookies: true, History: true}
	if got := m.selection(); got != want {
		t.Errorf("selection = %+v, want %+v", got, want)
	}
}

func TestToggleCategoryPersistsSelection(t *testing.T) {
	store := prefs.NewMemoryStore()
	m := NewClearDataModel(store)

	// Downloads is the last category and defaults to unselected.
	m.Cursor = len(clearDataCategories) - 1
	m, _ = pressClear(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if !store.Bool(prefs.KeyClearDataDownloads) {
		t.Error("downloads not selected after toggle")
	}

	m, _ = pressClear(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if store.Bool(prefs.KeyClearDataDownloads) {
		t.Error("downloads still selected after second toggle")
	}
}

func TestClearButtonNeedsSelection(t *testing.T) {
	store := prefs.NewMemoryStore()
	for _, category := range clearDataCategories {
		if err := store.SetBool(category.key, false); err != nil {
			t.Fatal(err)
		}
	}

	m := NewClearDataModel(store)
	m.Cursor = len(clearDataCategories)

	m, _ = pressClear(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.Confirming {
		t.Error("confirmation armed with nothing selected")
	}
	if !m.StatusError || m.Status == "" {
		t.Errorf("status = %q (error=%v), want a selection warning", m.Status, m.StatusError)
	}
}

func TestClearFlowSendsStoredSelection(t *testing.T) {
	store := prefs.NewMemoryStore()
	if err := store.SetBool(prefs.KeyClearDataCookies, false); err != nil {
		t.Fatal(err)
	}

	m := NewClearDataModel(store)
	var got control.ClearDataPayload
	called := 0
	m.Clear = func(selection control.ClearDataPayload) (string, int, error) {
		called++
		got = selection
		return "study", 2, nil
	}

	m.Cursor = len(clearDataCategories)
	m, _ = pressClear(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if !m.Confirming {
		t.Fatal("clear button did not ask for confirmation")
	}

	m, cmd := pressClear(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	if m.Confirming {
		t.Error("still confirming after y")
	}
	if !m.Clearing {
		t.Error("not clearing after confirmation")
	}
	if cmd == nil {
		t.Fatal("confirmation returned no command")
	}

	// Run the request path directly rather than unpacking the batch.
	raw := clearCmd(m.Clear, m.selection())()
	done, ok := raw.(clearDoneMsg)
	if !ok {
		t.Fatalf("clear produced %T, want clearDoneMsg", raw)
	}
	if called != 1 {
		t.Fatalf("clear called %d times, want 1", called)
	}
	want := control.ClearDataPayload{Cache: true, History: true}
	if got != want {
		t.Errorf("cleared selection = %+v, want %+v", got, want)
	}

	updated, _ := m.Update(done)
	m = updated.(ClearDataModel)
	if m.Clearing {
		t.Error("still clearing after completion")
	}
	if m.Status != "Cleared 2 categories on study" {
		t.Errorf("status = %q", m.Status)
	}
	if m.StatusError {
		t.Error("successful clear flagged as error")
	}
}

func TestClearDeclinedLeavesEverything(t *testing.T) {
	store := prefs.NewMemoryStore()
	m := NewClearDataModel(store)
	called := false
	m.Clear = func(control.ClearDataPayload) (string, int, error) {
		called = true
		return "", 0, nil
	}

	m.Cursor = len(clearDataCategories)
	m, _ = pressClear(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, cmd := pressClear(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})

	if m.Confirming || m.Clearing {
		t.Error("decline left the model armed")
	}
	if cmd != nil {
		t.Error("decline produced a command")
	}
	if called {
		t.Error("decline still ran the clear")
	}
}

func TestClearFailureShowsError(t *testing.T) {
	m := NewClearDataModel(prefs.NewMemoryStore())
	m.Clearing = true

	updated, _ := m.Update(clearDoneMsg{err: errors.New("connection refused")})
	m = updated.(ClearDataModel)

	if m.Clearing {
		t.Error("still clearing after failure")
	}
	if !m.StatusError {
		t.Error("failure not flagged as error")
	}
	if m.Status == "" {
		t.Error("failure left no status")
	}
}

func TestClearDataCursorWrapsOverButton(t *testing.T) {
	m := NewClearDataModel(prefs.NewMemoryStore())

	m, _ = pressClear(t, m, tea.KeyMsg{Type: tea.KeyUp})
	if m.Cursor != len(clearDataCategories) {
		t.Errorf("Cursor after wrapping up = %d, want %d", m.Cursor, len(clearDataCategories))
	}

	m, _ = pressClear(t, m, tea.KeyMsg{Type: tea.KeyDown})
	if m.Cursor != 0 {
		t.Errorf("Cursor after wrapping down = %d, want 0", m.Cursor)
	}
}

func TestClearDataEscGoesBack(t *testing.T) {
	m := NewClearDataModel(prefs.NewMemoryStore())

	_, cmd := pressClear(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("esc returned no command")
	}
	if _, ok := cmd().(goBackMsg); !ok {
		t.Error("esc did not go back")
	}
}
