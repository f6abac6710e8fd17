package tui

import (
	"strings"
	"testing"

	xansi "github.com/charmbracelet/x/ansi"
)

func clearThemeEnv(t *testing.T) {
	t.Helper()
	t.Setenv("CARDWRITE_TUI_MD_STYLE", "")
	t.Setenv("CARDWRITE_TUI_THEME", "")
	t.Setenv("CARDWRITE_TUI_DARKBG", "")
	t.Setenv("COLORFGBG", "")
}

func TestMarkdownStyle_RespectsTUITheme(t *testing.T) {
	clearThemeEnv(t)

	t.Setenv("CARDWRITE_TUI_THEME", "light")
	if got := markdownStyle(""); got != "light" {
		t.Fatalf("expected light; got %q", got)
	}

	t.Setenv("CARDWRITE_TUI_THEME", "dark")
	if got := markdownStyle("auto"); got != "dark" {
		t.Fatalf("expected dark; got %q", got)
	}
}

func TestMarkdownStyle_Precedence(t *testing.T) {
	clearThemeEnv(t)
	t.Setenv("CARDWRITE_TUI_THEME", "light")

	t.Setenv("CARDWRITE_TUI_MD_STYLE", "dark")
	if got := markdownStyle(""); got != "dark" {
		t.Fatalf("expected the env style to win over the theme; got %q", got)
	}
	if got := markdownStyle("Notty"); got != "notty" {
		t.Fatalf("expected the configured style to win; got %q", got)
	}
}

func TestThemeOverride_FromColorFGBG(t *testing.T) {
	clearThemeEnv(t)

	t.Setenv("COLORFGBG", "15;0")
	if got := themeOverride(); got != "dark" {
		t.Fatalf("expected dark for a black background; got %q", got)
	}
	t.Setenv("COLORFGBG", "0;15")
	if got := themeOverride(); got != "light" {
		t.Fatalf("expected light for a white background; got %q", got)
	}
	t.Setenv("CARDWRITE_TUI_DARKBG", "false")
	if got := themeOverride(); got != "light" {
		t.Fatalf("expected the explicit flag to win; got %q", got)
	}
}

func TestMarkdownStyleConfig_HeadingsFollowText(t *testing.T) {
	for _, name := range []string{"light", "dark"} {
		cfg := markdownStyleConfig(name)
		if cfg.H1.Color == nil || cfg.Text.Color == nil || *cfg.H1.Color != *cfg.Text.Color {
			t.Fatalf("%s: expected H1 to use the text color", name)
		}
		if cfg.Link.Underline == nil || !*cfg.Link.Underline {
			t.Fatalf("%s: expected underlined links", name)
		}
	}
}

func TestRenderPreview_StripsMarkup(t *testing.T) {
	clearThemeEnv(t)

	out := xansi.Strip(renderPreview("# Title\n\nSome **bold** words.", "dark", 30))
	if strings.Contains(out, "#") || strings.Contains(out, "**") {
		t.Fatalf("expected markup to be rendered away; got %q", out)
	}
	if !strings.Contains(out, "Title") || !strings.Contains(out, "bold") {
		t.Fatalf("expected text to survive; got %q", out)
	}
	if renderPreview("   \n", "dark", 30) != "" {
		t.Fatalf("expected blank input to render empty")
	}
}
