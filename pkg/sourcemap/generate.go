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

package sourcemap

import (
	"unicode/utf16"

	"github.com/walteh/chunkrebase/pkg/edit"
)

// 🔧 GenerateOptions controls how a map is derived from an edit buffer
type GenerateOptions struct {
	// File is the generated file name recorded in the map
	File string
	// Source is the name the pre-edit text is recorded under
	Source string
	// IncludeContent embeds the pre-edit text as sourcesContent
	IncludeContent bool
	// Hires maps every untouched character instead of only line starts
	Hires bool
}

// cursor tracks a line/column position where columns count UTF-16 code units
type cursor struct {
	line   int
	column int
}

func (c *cursor) advance(r rune) {
	if r == '\n' {
		c.line++
		c.column = 0
		return
	}
	n := utf16.RuneLen(r)
	if n < 0 {
		n = 1
	}
	c.column += n
}

// locate resolves a byte offset into a cursor position by scanning forward
// from a known earlier position.
func locate(text string, from int, at cursor, to int) cursor {
	for _, r := range text[from:to] {
		at.advance(r)
	}
	return at
}

// 🗺️ Generate derives a map from the edited text of buf back to its
// original text.
func Generate(buf *edit.Buffer, opts GenerateOptions) *Map {
	original := buf.Original()

	var (
		mappings []Mapping
		gen      cursor
		orig     cursor
		origAt   int
	)

	add := func(src cursor) {
		mappings = append(mappings, Mapping{
			GenLine:      gen.line,
			GenColumn:    gen.column,
			Source:       0,
			SourceLine:   src.line,
			SourceColumn: src.column,
			Name:         -1,
		})
	}

	for _, seg := range buf.Segments() {
		orig = locate(original, origAt, orig, seg.Start)
		origAt = seg.Start

		if seg.Replaced {
			start := orig
			pending := true
			for _, r := range seg.Text {
				if pending && r != '\n' {
					add(start)
					pending = false
				}
				gen.advance(r)
				if r == '\n' {
					pending = true
				}
			}
			orig = locate(original, origAt, orig, seg.End)
			origAt = seg.End
			continue
		}

		first := true
		for _, r := range seg.Text {
			if r != '\n' && (opts.Hires || first || gen.column == 0) {
				add(orig)
			}
			first = false
			gen.advance(r)
			orig.advance(r)
		}
		origAt = seg.End
	}

	m := &Map{
		Version:  3,
		File:     opts.File,
		Sources:  []string{opts.Source},
		Names:    []string{},
		Mappings: EncodeMappings(mappings, gen.line+1),
	}
	if opts.IncludeContent {
		m.SourcesContent = []string{original}
	}
	return m
}
