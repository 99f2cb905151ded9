// Package theme holds the color palette and font families a deck is rendered
// with, together with their defaults.
package theme

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bbiangul/go-deck/highlight"
)

// ErrInvalidColor is returned for color values that are not 6-digit hex RGB.
var ErrInvalidColor = errors.New("theme: invalid hex color")

// Colors maps named roles to hex RGB strings ("1E2761", no leading '#').
type Colors struct {
	Primary    string `mapstructure:"primary" json:"primary" yaml:"primary"`
	Secondary  string `mapstructure:"secondary" json:"secondary" yaml:"secondary"`
	Accent     string `mapstructure:"accent" json:"accent" yaml:"accent"`
	White      string `mapstructure:"white" json:"white" yaml:"white"`
	LightBg    string `mapstructure:"lightBg" json:"lightBg" yaml:"lightBg"`
	DarkText   string `mapstructure:"darkText" json:"darkText" yaml:"darkText"`
	MutedText  string `mapstructure:"mutedText" json:"mutedText" yaml:"mutedText"`
	CodeBlock  string `mapstructure:"codeBlock" json:"codeBlock" yaml:"codeBlock"`
	CodeBorder string `mapstructure:"codeBorder" json:"codeBorder" yaml:"codeBorder"`

	SyntaxKeyword  string `mapstructure:"syntaxKeyword" json:"syntaxKeyword" yaml:"syntaxKeyword"`
	SyntaxString   string `mapstructure:"syntaxString" json:"syntaxString" yaml:"syntaxString"`
	SyntaxComment  string `mapstructure:"syntaxComment" json:"syntaxComment" yaml:"syntaxComment"`
	SyntaxNumber   string `mapstructure:"syntaxNumber" json:"syntaxNumber" yaml:"syntaxNumber"`
	SyntaxFunction string `mapstructure:"syntaxFunction" json:"syntaxFunction" yaml:"syntaxFunction"`
	SyntaxType     string `mapstructure:"syntaxType" json:"syntaxType" yaml:"syntaxType"`
	SyntaxDiffAdd  string `mapstructure:"syntaxDiffAdd" json:"syntaxDiffAdd" yaml:"syntaxDiffAdd"`
	SyntaxDiffDel  string `mapstructure:"syntaxDiffDel" json:"syntaxDiffDel" yaml:"syntaxDiffDel"`
}

// Fonts names the font families used for headings, body text and code.
type Fonts struct {
	Header string `mapstructure:"header" json:"header" yaml:"header"`
	Body   string `mapstructure:"body" json:"body" yaml:"body"`
	Code   string `mapstructure:"code" json:"code" yaml:"code"`
}

// DefaultColors returns the built-in palette.
func DefaultColors() Colors {
	return Colors{
		Primary:    "1E2761",
		Secondary:  "CADCFC",
		Accent:     "0891B2",
		White:      "FFFFFF",
		LightBg:    "F8FAFC",
		DarkText:   "1E293B",
		MutedText:  "64748B",
		CodeBlock:  "F1F5F9",
		CodeBorder: "E2E8F0",

		SyntaxKeyword:  "7C3AED", // purple
		SyntaxString:   "059669", // green
		SyntaxComment:  "6B7280", // gray
		SyntaxNumber:   "DC2626", // red
		SyntaxFunction: "2563EB", // blue
		SyntaxType:     "D97706", // orange
		SyntaxDiffAdd:  "059669",
		SyntaxDiffDel:  "DC2626",
	}
}

// DefaultFonts returns the built-in font families.
func DefaultFonts() Fonts {
	return Fonts{
		Header: "Trebuchet MS",
		Body:   "Calibri",
		Code:   "Consolas",
	}
}

// Palette returns the subset of colors the syntax highlighter needs.
func (c Colors) Palette() highlight.Palette {
	return highlight.Palette{
		Text:     c.DarkText,
		Keyword:  c.SyntaxKeyword,
		String:   c.SyntaxString,
		Comment:  c.SyntaxComment,
		Number:   c.SyntaxNumber,
		Function: c.SyntaxFunction,
		Type:     c.SyntaxType,
		DiffAdd:  c.SyntaxDiffAdd,
		DiffDel:  c.SyntaxDiffDel,
	}
}

// Normalize returns a copy with every color upper-cased and stripped of a
// leading '#'. Empty or invalid values are replaced by the default for that
// role; each invalid value is reported in the returned error slice.
func (c Colors) Normalize() (Colors, []error) {
	def := DefaultColors()
	out := c
	var errs []error
	dst := out.roles()
	fallback := def.roles()
	for i, r := range dst {
		if *r.value == "" {
			*r.value = *fallback[i].value
			continue
		}
		hex, err := NormalizeHex(*r.value)
		if err != nil {
			errs = append(errs, fmt.Errorf("color %s: %w", r.name, err))
			*r.value = *fallback[i].value
			continue
		}
		*r.value = hex
	}
	return out, errs
}

// Map returns the palette keyed by role name.
func (c Colors) Map() map[string]string {
	cp := c
	out := make(map[string]string, 17)
	for _, r := range cp.roles() {
		out[r.name] = *r.value
	}
	return out
}

type role struct {
	name  string
	value *string
}

func (c *Colors) roles() []role {
	return []role{
		{"primary", &c.Primary},
		{"secondary", &c.Secondary},
		{"accent", &c.Accent},
		{"white", &c.White},
		{"lightBg", &c.LightBg},
		{"darkText", &c.DarkText},
		{"mutedText", &c.MutedText},
		{"codeBlock", &c.CodeBlock},
		{"codeBorder", &c.CodeBorder},
		{"syntaxKeyword", &c.SyntaxKeyword},
		{"syntaxString", &c.SyntaxString},
		{"syntaxComment", &c.SyntaxComment},
		{"syntaxNumber", &c.SyntaxNumber},
		{"syntaxFunction", &c.SyntaxFunction},
		{"syntaxType", &c.SyntaxType},
		{"syntaxDiffAdd", &c.SyntaxDiffAdd},
		{"syntaxDiffDel", &c.SyntaxDiffDel},
	}
}

// Normalize fills empty font families with the defaults.
func (f Fonts) Normalize() Fonts {
	def := DefaultFonts()
	if strings.TrimSpace(f.Header) == "" {
		f.Header = def.Header
	}
	if strings.TrimSpace(f.Body) == "" {
		f.Body = def.Body
	}
	if strings.TrimSpace(f.Code) == "" {
		f.Code = def.Code
	}
	return f
}

// NormalizeHex validates a hex RGB color ("#0891b2", "0891B2") and returns it
// upper-cased without the '#'.
func NormalizeHex(s string) (string, error) {
	if _, _, _, err := ParseHex(s); err != nil {
		return "", err
	}
	return strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(s), "#")), nil
}

// ParseHex converts a hex RGB color to its components.
func ParseHex(s string) (r, g, b uint8, err error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) != 6 {
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v), nil
}
