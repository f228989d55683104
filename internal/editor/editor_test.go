package editor

import "testing"

func TestDetectEditorPrefersEditorEnv(t *testing.T) {
	t.Setenv("EDITOR", "my-editor")
	t.Setenv("VISUAL", "other-editor")

	if got := detectEditor(); got != "my-editor" {
		t.Errorf("detectEditor() = %q, want %q", got, "my-editor")
	}
}

func TestDetectEditorFallsBackToVisual(t *testing.T) {
	t.Setenv("EDITOR", "")
	t.Setenv("VISUAL", "other-editor")

	if got := detectEditor(); got != "other-editor" {
		t.Errorf("detectEditor() = %q, want %q", got, "other-editor")
	}
}

func TestDetectEditorDefault(t *testing.T) {
	t.Setenv("EDITOR", "")
	t.Setenv("VISUAL", "")

	got := detectEditor()
	if got != "nano" && got != "vi" {
		t.Errorf("detectEditor() = %q, want nano or vi", got)
	}
}
