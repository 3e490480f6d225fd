// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package match

import (
	"iter"
	"regexp"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// DefaultQuotes is the delimiter alphabet of generated JavaScript strings
const DefaultQuotes = "'\"`"

// LocalPrefix marks a path relative to the importing chunk
const LocalPrefix = "./"

var (
	// ErrEmptyLiteral is returned when a configured literal is empty
	ErrEmptyLiteral = errors.Base("literal must not be empty")

	// ErrInvalidLiteral is returned when a configured literal can never occur inside a quoted path
	ErrInvalidLiteral = errors.Base("literal contains characters that cannot appear in a quoted path")
)

// 🎯 Match is one located occurrence. [Start, End) spans the whole
// expression; [PathStart, PathEnd) spans the quoted path without its quotes.
type Match struct {
	Start     int
	End       int
	PathStart int
	PathEnd   int
	Quote     byte
	Path      string
}

// ModuleName returns the path without its local-relative prefix
func (m Match) ModuleName() string {
	return strings.TrimPrefix(m.Path, LocalPrefix)
}

// Valid reports whether m is a well-formed match against text: offsets in
// range and the same quote on both sides of the path.
func (m Match) Valid(text string) bool {
	if m.Start < 0 || m.Start >= m.End || m.End > len(text) {
		return false
	}
	if m.PathStart <= m.Start || m.PathEnd >= m.End || m.PathStart > m.PathEnd {
		return false
	}
	return text[m.PathStart-1] == m.Quote && text[m.PathEnd] == m.Quote && text[m.PathStart:m.PathEnd] == m.Path
}

// 🔍 Spec is an immutable, compiled description of one rewrite pattern
type Spec struct {
	name   string
	quotes string
	re     *regexp.Regexp
}

// Name identifies the pattern in diagnostics
func (s *Spec) Name() string {
	return s.name
}

// Quotes returns the delimiter alphabet the pattern accepts
func (s *Spec) Quotes() string {
	return s.quotes
}

// String returns the compiled expression
func (s *Spec) String() string {
	return s.re.String()
}

// 🔄 All yields every match in text from left to right. Matches never
// overlap. The sequence holds no state between calls.
func (s *Spec) All(text string) iter.Seq[Match] {
	return func(yield func(Match) bool) {
		pos := 0
		for pos <= len(text) {
			loc := s.re.FindStringSubmatchIndex(text[pos:])
			if loc == nil {
				return
			}

			m, ok := s.build(text, pos, loc)
			if ok && !yield(m) {
				return
			}

			if loc[1] == loc[0] {
				pos++
				continue
			}
			pos += loc[1]
		}
	}
}

// Find collects All into a slice
func (s *Spec) Find(text string) []Match {
	var out []Match
	for m := range s.All(text) {
		out = append(out, m)
	}
	return out
}

// build turns submatch indexes relative to text[base:] into a Match. Group i
// (one based) belongs to quote i-1.
func (s *Spec) build(text string, base int, loc []int) (Match, bool) {
	for i := 0; i < len(s.quotes); i++ {
		gs, ge := loc[2*(i+1)], loc[2*(i+1)+1]
		if gs < 0 {
			continue
		}
		m := Match{
			Start:     base + loc[0],
			End:       base + loc[1],
			PathStart: base + gs,
			PathEnd:   base + ge,
			Quote:     s.quotes[i],
			Path:      text[base+gs : base+ge],
		}
		return m, m.Valid(text)
	}
	return Match{}, false
}

// quoted builds one alternative per quote kind around inner, each capturing
// the path. RE2 has no back-references, so pairing is structural.
func quoted(quotes, inner string) string {
	alts := make([]string, 0, len(quotes))
	for i := 0; i < len(quotes); i++ {
		q := regexp.QuoteMeta(quotes[i : i+1])
		alts = append(alts, q+"("+inner+")"+q)
	}
	return "(?:" + strings.Join(alts, "|") + ")"
}

// pathClass excludes every delimiter and parenthesis so a path never spans
// into a neighbouring string or call.
func pathClass(quotes string) string {
	return "[^" + regexp.QuoteMeta(quotes) + `()\r\n]`
}

func checkLiteral(kind, literal, quotes string) error {
	if literal == "" {
		return errors.Errorf("%s: %w", kind, ErrEmptyLiteral)
	}
	if strings.ContainsAny(literal, quotes+"()\r\n") {
		return errors.Errorf("%s %q: %w", kind, literal, ErrInvalidLiteral)
	}
	return nil
}

func compile(name, quotes, pattern string) (*Spec, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errors.Errorf("compiling %s pattern: %w", name, err)
	}
	return &Spec{name: name, quotes: quotes, re: re}, nil
}

// 🚀 DynamicImport matches import('./<name><suffix>') with any quote kind and
// whitespace inside the parentheses. suffix is a literal.
func DynamicImport(suffix string) (*Spec, error) {
	if err := checkLiteral("chunk suffix", suffix, DefaultQuotes); err != nil {
		return nil, err
	}
	inner := regexp.QuoteMeta(LocalPrefix) + pathClass(DefaultQuotes) + "+?" + regexp.QuoteMeta(suffix)
	return compile("dynamic-import", DefaultQuotes, `import\(\s*`+quoted(DefaultQuotes, inner)+`\s*\)`)
}

// 📥 StaticImport matches from './<entryFileName>' exactly, with optional
// whitespace after the keyword. entryFileName is a literal.
func StaticImport(entryFileName string) (*Spec, error) {
	if err := checkLiteral("entry file name", entryFileName, DefaultQuotes); err != nil {
		return nil, err
	}
	inner := regexp.QuoteMeta(LocalPrefix + entryFileName)
	return compile("static-import", DefaultQuotes, `from\s*`+quoted(DefaultQuotes, inner))
}
