// Package locales defines the set of locales a build supports.
//
// Every localized string in configuration must cover the full set, and the
// search index builder emits one index per member.
package locales

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Default is the locale set used when the CLI does not override it.
var Default = []string{"en", "nb"}

// Set is an ordered collection of validated locale codes.
//
// Order is the order given at construction and is preserved everywhere the
// pipeline iterates locales, so output artifacts are deterministic.
type Set struct {
	codes []string
	index map[string]int
}

// Parse validates locale codes (BCP 47) and returns the ordered set.
// Duplicates and unparsable tags are rejected.
func Parse(codes []string) (*Set, error) {
	if len(codes) == 0 {
		return nil, fmt.Errorf("locale set must not be empty")
	}
	s := &Set{index: make(map[string]int, len(codes))}
	for _, code := range codes {
		code = strings.TrimSpace(code)
		if _, err := language.Parse(code); err != nil {
			return nil, fmt.Errorf("invalid locale %q: %w", code, err)
		}
		if _, dup := s.index[code]; dup {
			return nil, fmt.Errorf("duplicate locale %q", code)
		}
		s.index[code] = len(s.codes)
		s.codes = append(s.codes, code)
	}
	return s, nil
}

// MustParse is Parse for compiled-in defaults; it panics on error.
func MustParse(codes []string) *Set {
	s, err := Parse(codes)
	if err != nil {
		panic(err)
	}
	return s
}

// Codes returns the locale codes in declaration order.
func (s *Set) Codes() []string {
	out := make([]string, len(s.codes))
	copy(out, s.codes)
	return out
}

// Has returns true if code is a member.
func (s *Set) Has(code string) bool {
	_, ok := s.index[code]
	return ok
}

// Missing returns the members not present in have, in declaration order.
func (s *Set) Missing(have map[string]string) []string {
	var missing []string
	for _, code := range s.codes {
		if _, ok := have[code]; !ok {
			missing = append(missing, code)
		}
	}
	return missing
}

// Len returns the number of members.
func (s *Set) Len() int { return len(s.codes) }
