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

package bundle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

func TestBundle(t *testing.T) {
	b, err := New(
		&Artifact{FileName: "main.js", Kind: KindCode, IsEntry: true},
		&Artifact{FileName: "style.css", Kind: KindAsset},
		&Artifact{FileName: "a.chunk.js", Kind: KindCode},
	)
	require.NoError(t, err)

	assert.Equal(t, 3, b.Len())

	names := []string{}
	for _, a := range b.Code() {
		names = append(names, a.FileName)
	}
	assert.Equal(t, []string{"main.js", "a.chunk.js"}, names, "code artifacts should keep bundle order")

	got, ok := b.Get("style.css")
	require.True(t, ok)
	assert.Equal(t, KindAsset, got.Kind)

	_, ok = b.Get("missing.js")
	assert.False(t, ok)
}

func TestBundle_Add(t *testing.T) {
	tests := []struct {
		name      string
		artifacts []*Artifact
		wantErr   string
		wantIs    error
	}{
		{
			name: "duplicate_name",
			artifacts: []*Artifact{
				{FileName: "main.js"},
				{FileName: "main.js"},
			},
			wantErr: "duplicate artifact: main.js",
			wantIs:  ErrDuplicate,
		},
		{
			name:      "missing_name",
			artifacts: []*Artifact{{Kind: KindCode}},
			wantErr:   "artifact file name is required",
		},
		{
			name:      "nil_artifact",
			artifacts: []*Artifact{nil},
			wantErr:   "artifact is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.artifacts...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			if tt.wantIs != nil {
				assert.True(t, errors.Is(err, tt.wantIs))
			}
		})
	}
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "chunk", KindCode.String())
	assert.Equal(t, "asset", KindAsset.String())
	assert.Equal(t, "unknown", Kind(7).String())
}
