package prompt

import (
	"errors"
	"strings"
	"testing"
)

func TestComposeMinimalistNoColorScheme(t *testing.T) {
	got, err := Compose("Top 10 Gadgets", StyleMinimalist, "", "", "16:9")
	if err != nil {
		t.Fatalf("Compose returned error: %v", err)
	}

	if !strings.Contains(got, "minimalist thumbnail") {
		t.Errorf("prompt missing minimalist style fragment: %s", got)
	}
	if !strings.Contains(got, `"Top 10 Gadgets"`) {
		t.Errorf("prompt missing title: %s", got)
	}
	if !strings.Contains(got, "The thumbnail should be 16:9") {
		t.Errorf("prompt missing closing clause with aspect ratio: %s", got)
	}
	if strings.Contains(got, "color scheme") {
		t.Errorf("prompt should not contain a color-scheme clause: %s", got)
	}
}

func TestComposeIsDeterministic(t *testing.T) {
	first, err := Compose("Go in 100 Seconds", StyleTechFuturistic, ColorNeon, "include a gopher", "1:1")
	if err != nil {
		t.Fatalf("Compose returned error: %v", err)
	}
	second, err := Compose("Go in 100 Seconds", StyleTechFuturistic, ColorNeon, "include a gopher", "1:1")
	if err != nil {
		t.Fatalf("Compose returned error: %v", err)
	}
	if first != second {
		t.Fatalf("Compose is not deterministic:\n%s\n%s", first, second)
	}
}

func TestComposeClauseOrder(t *testing.T) {
	got, err := Compose("My Video", StyleIllustrated, ColorPastel, "add confetti", "16:9")
	if err != nil {
		t.Fatalf("Compose returned error: %v", err)
	}

	styleIdx := strings.Index(got, "illustrated thumbnail")
	colorIdx := strings.Index(got, "soft pastel colors")
	userIdx := strings.Index(got, "add confetti")
	closeIdx := strings.Index(got, "maximize click-through rate")

	for name, idx := range map[string]int{"style": styleIdx, "color": colorIdx, "user": userIdx, "closing": closeIdx} {
		if idx < 0 {
			t.Fatalf("prompt missing %s clause: %s", name, got)
		}
	}
	if !(styleIdx < colorIdx && colorIdx < userIdx && userIdx < closeIdx) {
		t.Fatalf("clauses out of order: style=%d color=%d user=%d closing=%d", styleIdx, colorIdx, userIdx, closeIdx)
	}
}

func TestComposeRejectsUnknownTags(t *testing.T) {
	if _, err := Compose("title", Style("InvalidTag"), "", "", "16:9"); !errors.Is(err, ErrInvalidStyle) {
		t.Fatalf("expected ErrInvalidStyle, got %v", err)
	}
	if _, err := Compose("title", StyleBoldGraphic, ColorScheme("plaid"), "", "16:9"); !errors.Is(err, ErrInvalidColorScheme) {
		t.Fatalf("expected ErrInvalidColorScheme, got %v", err)
	}
}

func TestParseStyle(t *testing.T) {
	tests := []struct {
		in      string
		want    Style
		wantErr bool
	}{
		{"Minimalist", StyleMinimalist, false},
		{"Bold & Graphic", StyleBoldGraphic, false},
		{"Tech/Futuristic", StyleTechFuturistic, false},
		{"InvalidTag", "", true},
		{"minimalist", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStyle(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidStyle) {
					t.Fatalf("expected ErrInvalidStyle for %q, got %v", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("ParseStyle(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseColorScheme(t *testing.T) {
	for _, valid := range []string{"vibrant", "sunset", "forest", "neon", "purple", "monochrome", "ocean", "pastel"} {
		if _, err := ParseColorScheme(valid); err != nil {
			t.Errorf("ParseColorScheme(%q) returned error: %v", valid, err)
		}
	}
	if _, err := ParseColorScheme("sepia"); !errors.Is(err, ErrInvalidColorScheme) {
		t.Fatalf("expected ErrInvalidColorScheme, got %v", err)
	}
}
