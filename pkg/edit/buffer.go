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

package edit

import (
	"slices"
	"strings"

	"gitlab.com/tozd/go/errors"
)

var (
	// ErrOverlap is returned when an overwrite intersects an edit already recorded
	ErrOverlap = errors.Base("overlapping edit")

	// ErrOutOfRange is returned when an overwrite span is empty or outside the text
	ErrOutOfRange = errors.Base("edit span out of range")
)

// ✂️ Edit replaces the original span [Start, End) with Text
type Edit struct {
	Start int
	End   int
	Text  string
}

// Segment is one contiguous piece of the edited output. Untouched segments
// carry Text equal to Original[Start:End].
type Segment struct {
	Start    int
	End      int
	Text     string
	Replaced bool
}

// 📝 Buffer collects non-overlapping overwrites against an immutable original
// text and materializes the result in a single pass.
type Buffer struct {
	original string
	edits    []Edit
}

// 🏭 NewBuffer creates a buffer over the original text
func NewBuffer(original string) *Buffer {
	return &Buffer{original: original}
}

// Original returns the text the buffer was created with
func (b *Buffer) Original() string {
	return b.original
}

// Len returns the number of recorded edits
func (b *Buffer) Len() int {
	return len(b.edits)
}

// 🔄 Overwrite records a replacement of [start, end). The buffer is left
// unchanged when the span is invalid or overlaps a recorded edit.
func (b *Buffer) Overwrite(start, end int, text string) error {
	if start < 0 || end > len(b.original) || start >= end {
		return errors.Errorf("%w: [%d, %d) in text of length %d", ErrOutOfRange, start, end, len(b.original))
	}

	i, _ := slices.BinarySearchFunc(b.edits, start, func(e Edit, target int) int {
		return e.Start - target
	})

	if i > 0 && b.edits[i-1].End > start {
		prev := b.edits[i-1]
		return errors.Errorf("%w: [%d, %d) intersects [%d, %d)", ErrOverlap, start, end, prev.Start, prev.End)
	}
	if i < len(b.edits) && b.edits[i].Start < end {
		next := b.edits[i]
		return errors.Errorf("%w: [%d, %d) intersects [%d, %d)", ErrOverlap, start, end, next.Start, next.End)
	}

	b.edits = slices.Insert(b.edits, i, Edit{Start: start, End: end, Text: text})
	return nil
}

// Edits returns a copy of the recorded edits ordered by start offset
func (b *Buffer) Edits() []Edit {
	return slices.Clone(b.edits)
}

// Segments returns the output as an ordered list of untouched and replaced pieces
func (b *Buffer) Segments() []Segment {
	segs := make([]Segment, 0, 2*len(b.edits)+1)
	pos := 0
	for _, e := range b.edits {
		if pos < e.Start {
			segs = append(segs, Segment{Start: pos, End: e.Start, Text: b.original[pos:e.Start]})
		}
		segs = append(segs, Segment{Start: e.Start, End: e.End, Text: e.Text, Replaced: true})
		pos = e.End
	}
	if pos < len(b.original) {
		segs = append(segs, Segment{Start: pos, End: len(b.original), Text: b.original[pos:]})
	}
	return segs
}

// 📦 String materializes the edited text
func (b *Buffer) String() string {
	if len(b.edits) == 0 {
		return b.original
	}

	size := len(b.original)
	for _, e := range b.edits {
		size += len(e.Text) - (e.End - e.Start)
	}

	var sb strings.Builder
	sb.Grow(size)
	pos := 0
	for _, e := range b.edits {
		sb.WriteString(b.original[pos:e.Start])
		sb.WriteString(e.Text)
		pos = e.End
	}
	sb.WriteString(b.original[pos:])
	return sb.String()
}
