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

// Package sourcemap reads, writes and derives Source Map v3 documents for
// rewritten artifacts.
package sourcemap

import (
	"encoding/json"

	"gitlab.com/tozd/go/errors"
)

// ErrVersion is returned for documents that are not Source Map v3
var ErrVersion = errors.Base("unsupported source map version")

// 🗺️ Map is a Source Map v3 document
type Map struct {
	Version        int      `json:"version"`
	File           string   `json:"file,omitempty"`
	SourceRoot     string   `json:"sourceRoot,omitempty"`
	Sources        []string `json:"sources"`
	SourcesContent []string `json:"sourcesContent,omitempty"`
	Names          []string `json:"names"`
	Mappings       string   `json:"mappings"`
}

// 📝 Parse decodes a Source Map v3 document
func Parse(data []byte) (*Map, error) {
	var m Map
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Errorf("decoding source map: %w", err)
	}
	if m.Version != 3 {
		return nil, errors.Errorf("%w: %d", ErrVersion, m.Version)
	}
	return &m, nil
}

// Marshal encodes the map as JSON
func (m *Map) Marshal() ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, errors.Errorf("encoding source map: %w", err)
	}
	return data, nil
}

// String returns the JSON form of the map, or an empty string if it cannot be encoded
func (m *Map) String() string {
	data, err := m.Marshal()
	if err != nil {
		return ""
	}
	return string(data)
}

// Decode returns the decoded mappings grouped by generated line
func (m *Map) Decode() ([][]Mapping, error) {
	return DecodeMappings(m.Mappings)
}
