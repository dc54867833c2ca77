package vhdl

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// reserved owns every keyword entry in the base level.
type reserved struct{}

// NameScope allocates identifiers that are unique across a stack of lexical
// levels. Level 0 holds the reserved keywords and level 1 is the global
// (design unit) level; Push adds levels for processes.
//
// Lookups are case-insensitive because the target language is.
type NameScope struct {
	levels []map[string]any
	names  map[any]string
}

// BaseScope returns a scope seeded with the reserved keywords.
func BaseScope() *NameScope {
	kw := make(map[string]any, len(keywords))
	for _, k := range keywords {
		kw[k] = reserved{}
	}
	return &NameScope{
		levels: []map[string]any{kw, {}},
		names:  make(map[any]string),
	}
}

// Push opens a nested level.
func (s *NameScope) Push() {
	s.levels = append(s.levels, map[string]any{})
}

// Pop discards the innermost level. The keyword and global levels are never
// removed. Owners named in the dropped level keep their recorded names.
func (s *NameScope) Pop() {
	if len(s.levels) > 2 {
		s.levels = s.levels[:len(s.levels)-1]
	}
}

// Depth returns the number of levels, keywords included.
func (s *NameScope) Depth() int { return len(s.levels) }

// NameOf returns the name previously allocated for owner.
func (s *NameScope) NameOf(owner any) (string, bool) {
	n, ok := s.names[owner]
	return n, ok
}

// CheckedName returns a legal identifier for owner derived from candidate.
// An owner that already has a name keeps it. Otherwise the sanitized
// candidate is suffixed with _0, _1, ... until it collides with nothing
// visible, and the result is recorded in the innermost level, or in the
// global level when isGlobal is set.
func (s *NameScope) CheckedName(candidate string, owner any, isGlobal bool) string {
	if n, ok := s.names[owner]; ok {
		return n
	}
	base := Sanitize(candidate)
	name := base
	for i := 0; s.taken(name); i++ {
		name = base + "_" + strconv.Itoa(i)
	}
	level := s.levels[len(s.levels)-1]
	if isGlobal {
		level = s.levels[1]
	}
	level[strings.ToLower(name)] = owner
	s.names[owner] = name
	return name
}

// Release forgets the name allocated for owner so that it can be handed out
// again.
func (s *NameScope) Release(owner any) {
	n, ok := s.names[owner]
	if !ok {
		return
	}
	delete(s.names, owner)
	key := strings.ToLower(n)
	for _, level := range s.levels[1:] {
		if level[key] == owner {
			delete(level, key)
		}
	}
}

func (s *NameScope) taken(name string) bool {
	key := strings.ToLower(name)
	for _, level := range s.levels {
		if _, ok := level[key]; ok {
			return true
		}
	}
	return false
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Sanitize maps an arbitrary string onto the basic identifier alphabet:
// letters, digits and single underscores, starting with a letter.
func Sanitize(name string) string {
	if folded, _, err := transform.String(stripMarks, name); err == nil {
		name = folded
	}
	var b strings.Builder
	lastUnderscore := false
	for _, r := range name {
		ok := r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r))
		if !ok {
			if !lastUnderscore {
				b.WriteByte('_')
			}
			lastUnderscore = true
			continue
		}
		b.WriteRune(r)
		lastUnderscore = false
	}
	out := strings.Trim(b.String(), "_")
	if out == "" {
		return "unnamed"
	}
	if out[0] >= '0' && out[0] <= '9' {
		out = "n" + out
	}
	return out
}

// Bind records name for owner without reserving it in any level. It is used
// for objects that are declared elsewhere, such as ports of an entity that
// is not emitted again.
func (s *NameScope) Bind(owner any, name string) {
	if _, ok := s.names[owner]; !ok {
		s.names[owner] = name
	}
}
