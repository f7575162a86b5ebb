// Package prompt composes the natural-language prompt sent to the image
// model from the structured fields of a thumbnail request.
package prompt

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrInvalidStyle       = errors.New("invalid style")
	ErrInvalidColorScheme = errors.New("invalid color scheme")
)

// Style selects the base prompt fragment for a thumbnail. The set is closed;
// anything outside it is rejected at the request boundary.
type Style string

const (
	StyleBoldGraphic    Style = "Bold & Graphic"
	StyleTechFuturistic Style = "Tech/Futuristic"
	StyleMinimalist     Style = "Minimalist"
	StylePhotorealistic Style = "Photorealistic"
	StyleIllustrated    Style = "Illustrated"
)

var stylePrompts = map[Style]string{
	StyleBoldGraphic:    "eye-catching thumbnail, bold typography, vibrant colors, expressive facial reaction, dramatic lighting, high contrast, click-worthy composition, professional style",
	StyleTechFuturistic: "futuristic thumbnail, sleek modern design, digital UI elements, glowing accents, holographic effects, cyber-tech aesthetic, sharp lighting, high-tech atmosphere",
	StyleMinimalist:     "minimalist thumbnail, clean layout, simple shapes, limited color palette, plenty of negative space, modern flat design, clean focal point",
	StylePhotorealistic: "photorealistic thumbnail, ultra-realistic lighting, natural skin tones, candid moment, DSLR-style photography, lifestyle realism, shallow depth of field",
	StyleIllustrated:    "illustrated thumbnail, custom digital illustration, stylized characters, bold outlines, vibrant colors, creative cartoon or vector art style",
}

// ColorScheme selects an optional color-description fragment.
type ColorScheme string

const (
	ColorVibrant    ColorScheme = "vibrant"
	ColorSunset     ColorScheme = "sunset"
	ColorForest     ColorScheme = "forest"
	ColorNeon       ColorScheme = "neon"
	ColorPurple     ColorScheme = "purple"
	ColorMonochrome ColorScheme = "monochrome"
	ColorOcean      ColorScheme = "ocean"
	ColorPastel     ColorScheme = "pastel"
)

var colorSchemeDescriptions = map[ColorScheme]string{
	ColorVibrant:    "vibrant and energetic colors, high saturation, bold contrasts, eye-catching palette",
	ColorSunset:     "warm sunset tones, orange pink and purple hues, soft gradients, cinematic glow",
	ColorForest:     "natural green tones, earthy colors, calm and organic palette, fresh atmosphere",
	ColorNeon:       "neon glow effects, electric blues and pinks, cyberpunk lighting, high contrast glow",
	ColorPurple:     "purple-dominant color palette, magenta and violet tones, modern and stylish mood",
	ColorMonochrome: "black and white color scheme, high contrast, dramatic lighting, timeless aesthetic",
	ColorOcean:      "cool blue and teal tones, aquatic color palette, fresh and clean atmosphere",
	ColorPastel:     "soft pastel colors, low saturation, gentle tones, calm and friendly aesthetic",
}

// Styles returns the known style tags, sorted.
func Styles() []string {
	out := make([]string, 0, len(stylePrompts))
	for s := range stylePrompts {
		out = append(out, string(s))
	}
	sort.Strings(out)
	return out
}

// ColorSchemes returns the known color scheme tags, sorted.
func ColorSchemes() []string {
	out := make([]string, 0, len(colorSchemeDescriptions))
	for s := range colorSchemeDescriptions {
		out = append(out, string(s))
	}
	sort.Strings(out)
	return out
}

// ParseStyle validates a raw style tag from a request body.
func ParseStyle(s string) (Style, error) {
	style := Style(s)
	if _, ok := stylePrompts[style]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidStyle, s)
	}
	return style, nil
}

// ParseColorScheme validates a raw color-scheme tag from a request body.
func ParseColorScheme(s string) (ColorScheme, error) {
	scheme := ColorScheme(s)
	if _, ok := colorSchemeDescriptions[scheme]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidColorScheme, s)
	}
	return scheme, nil
}

// Compose builds the final prompt string. The concatenation order is fixed:
// style fragment bound to the title, optional color-scheme clause, optional
// user clause, then the closing click-through clause naming the aspect ratio.
// scheme and userPrompt may be empty. Compose has no side effects.
func Compose(title string, style Style, scheme ColorScheme, userPrompt, aspectRatio string) (string, error) {
	fragment, ok := stylePrompts[style]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidStyle, style)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Create a %s for: %q. ", fragment, title)

	if scheme != "" {
		desc, ok := colorSchemeDescriptions[scheme]
		if !ok {
			return "", fmt.Errorf("%w: %q", ErrInvalidColorScheme, scheme)
		}
		fmt.Fprintf(&b, "Use a %s color scheme. ", desc)
	}

	if userPrompt != "" {
		fmt.Fprintf(&b, "Additional details: %s. ", userPrompt)
	}

	fmt.Fprintf(&b, "The thumbnail should be %s, visually stunning, and designed to maximize click-through rate. Make it bold, professional, and impossible to ignore.", aspectRatio)

	return b.String(), nil
}
