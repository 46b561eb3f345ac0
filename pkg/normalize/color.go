package normalize

import (
	"strings"
)

// Canonical color tokens.
const (
	ColorBlack   = "BLK"
	ColorWhite   = "WHT"
	ColorBlue    = "BLU"
	ColorRed     = "RED"
	ColorGreen   = "GRN"
	ColorPurple  = "PUR"
	ColorPink    = "PNK"
	ColorGold    = "GLD"
	ColorSilver  = "SLV"
	ColorGray    = "GRY"
	ColorHaze    = "HAZ"
	ColorUnknown = "UNKNOWN"
)

// colorWords maps compacted color names and abbreviations to canonical tokens.
var colorWords = map[string]string{
	"BLACK":    ColorBlack,
	"BLK":      ColorBlack,
	"BK":       ColorBlack,
	"JETBLACK": ColorBlack,
	"WHITE":    ColorWhite,
	"WHT":      ColorWhite,
	"WH":       ColorWhite,
	"BLUE":     ColorBlue,
	"BLU":      ColorBlue,
	"RED":      ColorRed,
	"RD":       ColorRed,
	"GREEN":    ColorGreen,
	"GRN":      ColorGreen,
	"PURPLE":   ColorPurple,
	"PUR":      ColorPurple,
	"PRPL":     ColorPurple,
	"VIOLET":   ColorPurple,
	"LAVENDER": ColorPurple,
	"PINK":     ColorPink,
	"PNK":      ColorPink,
	"ROSE":     ColorPink,
	"GOLD":     ColorGold,
	"GLD":      ColorGold,
	"SILVER":   ColorSilver,
	"SLV":      ColorSilver,
	"SIL":      ColorSilver,
	"GRAY":     ColorGray,
	"GREY":     ColorGray,
	"GRY":      ColorGray,
	"GRAPHITE": ColorGray,
	"HAZE":     ColorHaze,
	"HAZ":      ColorHaze,
}

// phantomColors are the only trailing words that make a Phantom color concrete.
var phantomColors = map[string]string{
	"BLACK": ColorBlack,
	"BLK":   ColorBlack,
	"GREEN": ColorGreen,
	"GRN":   ColorGreen,
	"BLUE":  ColorBlue,
	"BLU":   ColorBlue,
	"WHITE": ColorWhite,
	"WHT":   ColorWhite,
	"RED":   ColorRed,
}

// phantomPrefixes are the spellings of Phantom seen in notes and SKU fields,
// longest first so "PHANTOMBLACK" strips the whole word.
var phantomPrefixes = []string{"PHANTOM", "PHAN", "PHA"}

// Color maps a color name or abbreviation to a canonical token.
//
// Phantom-family colors resolve only when a specific color word follows the
// Phantom word, whether spaced ("PHANTOM BLACK") or compacted as in SKU fields
// ("PHANTOMBLACK", "PHABLK"). A bare or truncated Phantom, or one followed by
// an unlisted color, resolves to ColorUnknown rather than guessing.
// Unrecognized input is returned compacted and upper-cased. Empty input
// yields "".
func Color(s string) string {
	words := strings.Fields(strings.ToUpper(Text(s)))
	if len(words) == 0 {
		return ""
	}

	for i, w := range words {
		if rest, ok := trimPhantom(w); ok {
			return phantomColor(append([]string{rest}, words[i+1:]...))
		}
	}

	if tok, ok := colorWords[strings.Join(words, "")]; ok {
		return tok
	}
	for _, w := range words {
		if tok, ok := colorWords[w]; ok {
			return tok
		}
	}

	return strings.Join(words, "")
}

// trimPhantom strips a Phantom prefix from w and reports whether one was
// found. The remainder is empty for a bare Phantom word.
func trimPhantom(w string) (string, bool) {
	for _, p := range phantomPrefixes {
		if rest, ok := strings.CutPrefix(w, p); ok {
			return rest, true
		}
	}
	return "", false
}

// phantomColor resolves the words following a Phantom prefix.
func phantomColor(tail []string) string {
	if tok, ok := phantomColors[strings.Join(tail, "")]; ok {
		return tok
	}
	for _, w := range tail {
		if tok, ok := phantomColors[w]; ok {
			return tok
		}
	}
	return ColorUnknown
}
