package models

import "strings"

type Alignment string

const (
	AlignLeft   Alignment = "left"
	AlignCenter Alignment = "center"
	AlignRight  Alignment = "right"
)

func (a Alignment) Valid() bool {
	switch a {
	case AlignLeft, AlignCenter, AlignRight:
		return true
	}
	return false
}

type TextBlockSpec struct {
	Content   string    `json:"content"`
	Alignment Alignment `json:"alignment"`
	FontSize  int       `json:"font_size"`
}

// Empty reports whether the block contributes nothing to the canvas.
// A block whose content trims to the empty string is skipped entirely.
func (t TextBlockSpec) Empty() bool {
	return strings.TrimSpace(t.Content) == ""
}

// Lines splits the content on newlines verbatim. No re-wrapping happens
// anywhere; the author's line breaks are the layout.
func (t TextBlockSpec) Lines() []string {
	return strings.Split(t.Content, "\n")
}

const (
	TopFontSizeMin    = 36
	TopFontSizeMax    = 96
	BottomFontSizeMin = 28
	BottomFontSizeMax = 84

	DefaultTopFontSize    = 64
	DefaultBottomFontSize = 44
)

func ClampTopFontSize(size int) int {
	return clampInt(size, TopFontSizeMin, TopFontSizeMax)
}

func ClampBottomFontSize(size int) int {
	return clampInt(size, BottomFontSizeMin, BottomFontSizeMax)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
