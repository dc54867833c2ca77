// Package format tidies generated VHDL text without changing its tokens.
package format

import (
	"regexp"
	"strings"

	"github.com/mattn/go-runewidth"
)

// LineWidth is the display width that comment lines are wrapped to.
const LineWidth = 80

var commentLine = regexp.MustCompile(`^(\s*)-- (.*)$`)

var declLine = regexp.MustCompile(`^(\s*)((?:SIGNAL |CONSTANT |VARIABLE )?[A-Za-z][A-Za-z0-9_]*) : (.*)$`)

// Format returns text tidied for output. Trailing blanks and repeated empty
// lines are dropped, long comments are wrapped and declarations aligned.
func Format(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, l := range lines {
		l = strings.TrimRight(l, " \t")
		if l == "" {
			if blank || len(out) == 0 {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, l)
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	out = wrapComments(out)
	alignDeclarations(out)
	return strings.Join(out, "\n") + "\n"
}

// alignDeclarations pads names so that the colons of consecutive declaration
// lines sharing an indentation line up.
func alignDeclarations(lines []string) {
	start := 0
	for start < len(lines) {
		m := declLine.FindStringSubmatch(lines[start])
		if m == nil {
			start++
			continue
		}
		end := start + 1
		width := runewidth.StringWidth(m[2])
		for end < len(lines) {
			n := declLine.FindStringSubmatch(lines[end])
			if n == nil || n[1] != m[1] {
				break
			}
			width = max(width, runewidth.StringWidth(n[2]))
			end++
		}
		if end-start > 1 {
			for i := start; i < end; i++ {
				n := declLine.FindStringSubmatch(lines[i])
				lines[i] = n[1] + runewidth.FillRight(n[2], width) + " : " + n[3]
			}
		}
		start = end
	}
}

// wrapComments splits comment lines wider than LineWidth. Widths are counted
// in terminal cells, so wide characters take two.
func wrapComments(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		m := commentLine.FindStringSubmatch(l)
		if m == nil || runewidth.StringWidth(l) <= LineWidth {
			out = append(out, l)
			continue
		}
		prefix := m[1] + "-- "
		room := max(LineWidth-runewidth.StringWidth(prefix), 1)
		for _, part := range wrapText(m[2], room) {
			out = append(out, prefix+part)
		}
	}
	return out
}

// wrapText breaks text at spaces into pieces at most room cells wide. Words
// that do not fit on a line of their own are split between characters.
func wrapText(text string, room int) []string {
	var parts []string
	var cur strings.Builder
	width := 0
	flush := func() {
		if cur.Len() > 0 {
			parts = append(parts, strings.TrimRight(cur.String(), " "))
			cur.Reset()
			width = 0
		}
	}
	for _, word := range strings.Fields(text) {
		if width > 0 && width+1+runewidth.StringWidth(word) > room {
			flush()
		}
		if width > 0 {
			cur.WriteByte(' ')
			width++
		}
		for _, r := range word {
			rw := runewidth.RuneWidth(r)
			if width > 0 && width+rw > room {
				flush()
			}
			cur.WriteRune(r)
			width += rw
		}
	}
	flush()
	return parts
}
