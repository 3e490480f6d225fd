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
	"cmp"
	"slices"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// 🔗 Compose pushes every segment of next through prev, so a map that points
// into an intermediate text points at the sources prev was built from.
// Segments prev cannot resolve are dropped.
func Compose(next, prev *Map) (*Map, error) {
	prevLines, err := prev.Decode()
	if err != nil {
		return nil, errors.Errorf("decoding previous mappings: %w", err)
	}
	for _, line := range prevLines {
		slices.SortStableFunc(line, func(a, b Mapping) int { return cmp.Compare(a.GenColumn, b.GenColumn) })
	}

	lines, err := next.Decode()
	if err != nil {
		return nil, errors.Errorf("decoding mappings: %w", err)
	}

	out := &Map{
		Version: 3,
		File:    next.File,
		Sources: []string{},
		Names:   []string{},
	}
	sourceIdx := map[int]int{}
	nameIdx := map[int]int{}
	var carried []int

	var mappings []Mapping
	for _, line := range lines {
		for _, m := range line {
			if m.Source < 0 {
				continue
			}
			seg, ok := trace(prevLines, m.SourceLine, m.SourceColumn)
			if !ok || seg.Source < 0 || seg.Source >= len(prev.Sources) {
				continue
			}

			si, seen := sourceIdx[seg.Source]
			if !seen {
				si = len(out.Sources)
				sourceIdx[seg.Source] = si
				out.Sources = append(out.Sources, sourceName(prev, seg.Source))
				carried = append(carried, seg.Source)
			}

			ni := -1
			if seg.Name >= 0 && seg.Name < len(prev.Names) {
				var seenName bool
				ni, seenName = nameIdx[seg.Name]
				if !seenName {
					ni = len(out.Names)
					nameIdx[seg.Name] = ni
					out.Names = append(out.Names, prev.Names[seg.Name])
				}
			}

			mappings = append(mappings, Mapping{
				GenLine:      m.GenLine,
				GenColumn:    m.GenColumn,
				Source:       si,
				SourceLine:   seg.SourceLine,
				SourceColumn: seg.SourceColumn,
				Name:         ni,
			})
		}
	}
	out.Mappings = EncodeMappings(mappings, len(lines))
	out.SourcesContent = carryContent(prev, carried)

	return out, nil
}

// trace finds the segment of lines covering a generated position: the one
// with the greatest column not after column on that line.
func trace(lines [][]Mapping, line, column int) (Mapping, bool) {
	if line < 0 || line >= len(lines) {
		return Mapping{}, false
	}
	segs := lines[line]
	i, _ := slices.BinarySearchFunc(segs, column+1, func(m Mapping, target int) int {
		return cmp.Compare(m.GenColumn, target)
	})
	if i == 0 {
		return Mapping{}, false
	}
	return segs[i-1], true
}

// sourceName resolves a source of m against its sourceRoot
func sourceName(m *Map, i int) string {
	s := m.Sources[i]
	if m.SourceRoot == "" {
		return s
	}
	return strings.TrimSuffix(m.SourceRoot, "/") + "/" + s
}

// carryContent picks the previous map's embedded content for each carried
// source index. It returns nil unless every one is present.
func carryContent(prev *Map, indexes []int) []string {
	if len(indexes) == 0 {
		return nil
	}
	contents := make([]string, 0, len(indexes))
	for _, i := range indexes {
		if i >= len(prev.SourcesContent) {
			return nil
		}
		contents = append(contents, prev.SourcesContent[i])
	}
	return contents
}
