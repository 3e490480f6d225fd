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
	"testing"

	gosourcemap "github.com/go-sourcemap/sourcemap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/chunkrebase/pkg/edit"
)

func TestVLQ(t *testing.T) {
	tests := []struct {
		value int
		want  string
	}{
		{value: 0, want: "A"},
		{value: 1, want: "C"},
		{value: -1, want: "D"},
		{value: 15, want: "e"},
		{value: 16, want: "gB"},
		{value: 123, want: "2H"},
		{value: -123, want: "3H"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			var sb strings.Builder
			encodeVLQ(&sb, tt.value)
			assert.Equal(t, tt.want, sb.String())

			got, next, err := decodeVLQ(tt.want, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.value, got)
			assert.Equal(t, len(tt.want), next)
		})
	}
}

func TestDecodeMappings_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		mappings string
	}{
		{name: "bad_character", mappings: "AA!A"},
		{name: "two_fields", mappings: "AA"},
		{name: "unterminated", mappings: "g"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeMappings(tt.mappings)
			require.Error(t, err)
		})
	}
}

func TestGenerate(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		edits []edit.Edit
		hires bool
		want  string
	}{
		{
			name:  "no_edits_hires",
			text:  "abc",
			hires: true,
			want:  "AAAA,CAAC,CAAC",
		},
		{
			name: "no_edits_coarse",
			text: "abc",
			want: "AAAA",
		},
		{
			name:  "replacement_on_second_line",
			text:  "a\nbc",
			edits: []edit.Edit{{Start: 2, End: 3, Text: "XY"}},
			hires: true,
			want:  "AAAA;AACA,EAAC",
		},
		{
			name:  "astral_character_counts_two_columns",
			text:  "😀a",
			edits: []edit.Edit{{Start: 4, End: 5, Text: "b"}},
			hires: true,
			want:  "AAAA,EAAE",
		},
		{
			name:  "bmp_character_counts_one_column",
			text:  "éa",
			edits: []edit.Edit{{Start: 2, End: 3, Text: "b"}},
			hires: true,
			want:  "AAAA,CAAC",
		},
		{
			name:  "multiline_replacement",
			text:  "ab",
			edits: []edit.Edit{{Start: 0, End: 1, Text: "x\ny"}},
			want:  "AAAA;AAAA,CAAC",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := edit.NewBuffer(tt.text)
			for _, e := range tt.edits {
				require.NoError(t, buf.Overwrite(e.Start, e.End, e.Text))
			}

			m := Generate(buf, GenerateOptions{File: "out.js", Source: "chunk.js", IncludeContent: true, Hires: tt.hires})

			assert.Equal(t, 3, m.Version)
			assert.Equal(t, "out.js", m.File)
			assert.Equal(t, []string{"chunk.js"}, m.Sources)
			assert.Equal(t, []string{tt.text}, m.SourcesContent)
			assert.Equal(t, tt.want, m.Mappings)
		})
	}
}

func TestGenerate_ReadableByConsumer(t *testing.T) {
	buf := edit.NewBuffer("a\nbc")
	require.NoError(t, buf.Overwrite(2, 3, "XY"))

	m := Generate(buf, GenerateOptions{File: "out.js", Source: "chunk.js", Hires: true})
	data, err := m.Marshal()
	require.NoError(t, err)

	consumer, err := gosourcemap.Parse("", data)
	require.NoError(t, err)

	source, _, line, _, ok := consumer.Source(2, 2)
	require.True(t, ok, "second line should be mapped")
	assert.True(t, strings.HasSuffix(source, "chunk.js"), "source should be chunk.js, got %s", source)
	assert.Equal(t, 2, line)
}

func TestCompose(t *testing.T) {
	prev := &Map{
		Version:        3,
		File:           "chunk.js",
		Sources:        []string{"src/original.ts"},
		SourcesContent: []string{"const a = 1;\nconst b = 2;\n"},
		Names:          []string{},
		Mappings:       "AAAA;AACA",
	}

	buf := edit.NewBuffer("a\nbc")
	require.NoError(t, buf.Overwrite(2, 3, "XY"))
	next := Generate(buf, GenerateOptions{File: "chunk.js", Source: "chunk.js", Hires: true})

	composed, err := Compose(next, prev)
	require.NoError(t, err)

	assert.Equal(t, []string{"src/original.ts"}, composed.Sources, "composed source should come from the previous map")
	assert.Equal(t, prev.SourcesContent, composed.SourcesContent, "content should be carried over")
	assert.Equal(t, "chunk.js", composed.File)
	assert.Equal(t, "AAAA;AACA,EAAA", composed.Mappings)
}

func TestCompose_Trace(t *testing.T) {
	tests := []struct {
		name        string
		prev        *Map
		next        string
		wantMap     string
		wantSources []string
		wantNames   []string
		wantContent []string
	}{
		{
			name:        "identity_previous_keeps_first_position",
			prev:        &Map{Version: 3, Sources: []string{"src/app.ts"}, SourcesContent: []string{"foo();\nbar();"}, Mappings: "AAAA;AACA"},
			next:        "AAAA;AACA,GAAG",
			wantMap:     "AAAA;AACA,GAAA",
			wantSources: []string{"src/app.ts"},
			wantNames:   []string{},
			wantContent: []string{"foo();\nbar();"},
		},
		{
			name:        "past_last_segment_of_final_line",
			prev:        &Map{Version: 3, Sources: []string{"src/main.ts"}, Mappings: "AAAA"},
			next:        "AAAU",
			wantMap:     "AAAA",
			wantSources: []string{"src/main.ts"},
			wantNames:   []string{},
		},
		{
			name:        "before_first_segment_is_dropped",
			prev:        &Map{Version: 3, Sources: []string{"src/main.ts"}, Mappings: "CAAA"},
			next:        "AAAA",
			wantMap:     "",
			wantSources: []string{},
			wantNames:   []string{},
		},
		{
			name:        "line_outside_previous_is_dropped",
			prev:        &Map{Version: 3, Sources: []string{"src/main.ts"}, Mappings: "AAAA"},
			next:        "AAKA",
			wantMap:     "",
			wantSources: []string{},
			wantNames:   []string{},
		},
		{
			name:        "source_root_and_names",
			prev:        &Map{Version: 3, SourceRoot: "webpack:///", Sources: []string{"src/a.ts"}, Names: []string{"foo"}, Mappings: "AAAAA"},
			next:        "AAAA",
			wantMap:     "AAAAA",
			wantSources: []string{"webpack:///src/a.ts"},
			wantNames:   []string{"foo"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := &Map{Version: 3, File: "out.js", Sources: []string{"chunk.js"}, Names: []string{}, Mappings: tt.next}

			composed, err := Compose(next, tt.prev)
			require.NoError(t, err, "Compose should succeed")

			assert.Equal(t, tt.wantMap, composed.Mappings, "mappings should match")
			assert.Equal(t, tt.wantSources, composed.Sources, "sources should match")
			assert.Equal(t, tt.wantNames, composed.Names, "names should match")
			assert.Equal(t, tt.wantContent, composed.SourcesContent, "content should match")
		})
	}
}

func TestCompose_InvalidPrevious(t *testing.T) {
	next := &Map{Version: 3, Sources: []string{"chunk.js"}, Mappings: "AAAA"}
	_, err := Compose(next, &Map{Version: 3, Sources: []string{"a.ts"}, Mappings: "AA"})
	require.Error(t, err, "Compose should fail on broken previous mappings")
	assert.Contains(t, err.Error(), "decoding previous mappings")
}

func TestParse(t *testing.T) {
	m, err := Parse([]byte(`{"version":3,"file":"a.js","sources":["a.ts"],"names":[],"mappings":"AAAA"}`))
	require.NoError(t, err)
	assert.Equal(t, "a.js", m.File)
	assert.Equal(t, []string{"a.ts"}, m.Sources)

	_, err = Parse([]byte(`{"version":2,"sources":[],"names":[],"mappings":""}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrVersion))

	_, err = Parse([]byte(`{`))
	require.Error(t, err)
}
