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
	"strings"

	"gitlab.com/tozd/go/errors"
)

const base64Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

const (
	vlqShift    = 5
	vlqBase     = 1 << vlqShift
	vlqMask     = vlqBase - 1
	vlqContinue = vlqBase
)

// 📍 Mapping is one decoded segment. Lines and columns are zero based;
// Source and Name are -1 when the segment does not carry them.
type Mapping struct {
	GenLine      int
	GenColumn    int
	Source       int
	SourceLine   int
	SourceColumn int
	Name         int
}

func encodeVLQ(sb *strings.Builder, value int) {
	v := value << 1
	if value < 0 {
		v = (-value << 1) | 1
	}
	for {
		digit := v & vlqMask
		v >>= vlqShift
		if v > 0 {
			digit |= vlqContinue
		}
		sb.WriteByte(base64Alphabet[digit])
		if v == 0 {
			return
		}
	}
}

func decodeVLQ(s string, pos int) (int, int, error) {
	result, shift := 0, 0
	for {
		if pos >= len(s) {
			return 0, pos, errors.Errorf("unterminated VLQ value at offset %d", pos)
		}
		digit := strings.IndexByte(base64Alphabet, s[pos])
		if digit < 0 {
			return 0, pos, errors.Errorf("invalid base64 character %q at offset %d", s[pos], pos)
		}
		pos++
		result += (digit & vlqMask) << shift
		shift += vlqShift
		if digit&vlqContinue == 0 {
			break
		}
	}
	if result&1 == 1 {
		return -(result >> 1), pos, nil
	}
	return result >> 1, pos, nil
}

// EncodeMappings serializes mappings ordered by generated position into the
// "mappings" field. lines is the number of generated lines to cover.
func EncodeMappings(mappings []Mapping, lines int) string {
	var sb strings.Builder
	var prevSource, prevSourceLine, prevSourceColumn, prevName int

	i := 0
	for line := 0; line < lines || i < len(mappings); line++ {
		if line > 0 {
			sb.WriteByte(';')
		}
		prevColumn := 0
		first := true
		for ; i < len(mappings) && mappings[i].GenLine <= line; i++ {
			m := mappings[i]
			if !first {
				sb.WriteByte(',')
			}
			first = false

			encodeVLQ(&sb, m.GenColumn-prevColumn)
			prevColumn = m.GenColumn
			if m.Source < 0 {
				continue
			}
			encodeVLQ(&sb, m.Source-prevSource)
			encodeVLQ(&sb, m.SourceLine-prevSourceLine)
			encodeVLQ(&sb, m.SourceColumn-prevSourceColumn)
			prevSource, prevSourceLine, prevSourceColumn = m.Source, m.SourceLine, m.SourceColumn
			if m.Name >= 0 {
				encodeVLQ(&sb, m.Name-prevName)
				prevName = m.Name
			}
		}
	}
	return sb.String()
}

// DecodeMappings parses a "mappings" field into segments grouped by generated line
func DecodeMappings(s string) ([][]Mapping, error) {
	var lines [][]Mapping
	var current []Mapping
	var line, column, source, sourceLine, sourceColumn, name int

	pos := 0
	for pos <= len(s) {
		if pos == len(s) || s[pos] == ';' {
			lines = append(lines, current)
			current = nil
			line++
			column = 0
			pos++
			continue
		}
		if s[pos] == ',' {
			pos++
			continue
		}

		var fields [5]int
		n := 0
		for pos < len(s) && s[pos] != ',' && s[pos] != ';' {
			if n == len(fields) {
				return nil, errors.Errorf("segment with more than %d fields at offset %d", len(fields), pos)
			}
			v, next, err := decodeVLQ(s, pos)
			if err != nil {
				return nil, err
			}
			fields[n] = v
			n++
			pos = next
		}

		m := Mapping{GenLine: line, Source: -1, Name: -1}
		column += fields[0]
		m.GenColumn = column
		switch n {
		case 1:
		case 4, 5:
			source += fields[1]
			sourceLine += fields[2]
			sourceColumn += fields[3]
			m.Source, m.SourceLine, m.SourceColumn = source, sourceLine, sourceColumn
			if n == 5 {
				name += fields[4]
				m.Name = name
			}
		default:
			return nil, errors.Errorf("segment with %d fields on line %d", n, line)
		}
		current = append(current, m)
	}
	return lines, nil
}
