// Package colorspec parses marker color specifications and decides whether a
// shape color is close enough to the configured target. Colors are handled as
// plain 8-bit RGB tuples; hex parsing is delegated to go-colorful.
package colorspec

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// RGB is an 8-bit-per-channel color.
type RGB struct {
	R, G, B uint8
}

// DefaultTolerance is the per-channel tolerance used when none is configured.
// It matches what works well in practice for PowerPoint theme colors, which
// are rarely the exact named value.
const DefaultTolerance = 30

// presets maps the color names accepted on the command line to their RGB
// values. Anything not listed here must be given as hex.
var presets = map[string]RGB{
	"cyan":    {0, 255, 255},
	"red":     {255, 0, 0},
	"green":   {0, 255, 0},
	"blue":    {0, 0, 255},
	"magenta": {255, 0, 255},
	"yellow":  {255, 255, 0},
	"orange":  {255, 165, 0},
	"purple":  {128, 0, 128},
	"pink":    {255, 192, 203},
	"lime":    {0, 255, 0},
	"black":   {0, 0, 0},
	"white":   {255, 255, 255},
}

// Parse converts a color specification into an RGB value. The specification is
// either a preset name ("cyan", "red", ...) or a hex string ("#00FFFF",
// "#0FF"). Parsing is case-insensitive and ignores surrounding whitespace.
func Parse(spec string) (RGB, error) {
	s := strings.ToLower(strings.TrimSpace(spec))

	if c, ok := presets[s]; ok {
		return c, nil
	}

	// colorful.Hex scans greedily and would accept odd lengths like #12345,
	// so the 3- or 6-digit shape is checked here first.
	if strings.HasPrefix(s, "#") && (len(s) == 4 || len(s) == 7) {
		c, err := colorful.Hex(s)
		if err == nil {
			return fromColorful(c), nil
		}
	}

	return RGB{}, fmt.Errorf("invalid color %q: use a color name (%s) or hex (#RRGGBB)",
		spec, strings.Join(Names(), ", "))
}

// Names returns the accepted preset color names in sorted order.
func Names() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Within reports whether every channel of c is within tolerance of the
// corresponding channel of target. The comparison is inclusive: a channel
// difference exactly equal to the tolerance still matches.
func (c RGB) Within(target RGB, tolerance float64) bool {
	if tolerance < 0 {
		return false
	}
	return channelDiff(c.R, target.R) <= tolerance &&
		channelDiff(c.G, target.G) <= tolerance &&
		channelDiff(c.B, target.B) <= tolerance
}

// Hex returns the color in #RRGGBB form.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

func (c RGB) String() string { return c.Hex() }

func channelDiff(a, b uint8) float64 {
	return math.Abs(float64(a) - float64(b))
}

func fromColorful(c colorful.Color) RGB {
	return RGB{
		R: uint8(math.Round(c.R * 255)),
		G: uint8(math.Round(c.G * 255)),
		B: uint8(math.Round(c.B * 255)),
	}
}
