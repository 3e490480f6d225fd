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

package host

import (
	"encoding/json"
	"os"
	"path"
	"path/filepath"

	"github.com/tidwall/jsonc"
	"gitlab.com/tozd/go/errors"
)

// manifestLocations are tried in order when no manifest is configured
var manifestLocations = []string{".vite/manifest.json", "manifest.json"}

// ManifestChunk is the part of a Vite manifest entry the host reads
type ManifestChunk struct {
	File    string `json:"file"`
	IsEntry bool   `json:"isEntry,omitempty"`
}

// ParseManifest returns the set of output files marked as entries
func ParseManifest(data []byte) (map[string]bool, error) {
	var chunks map[string]ManifestChunk
	if err := json.Unmarshal(jsonc.ToJSON(data), &chunks); err != nil {
		return nil, errors.Errorf("parsing manifest: %w", err)
	}

	entries := map[string]bool{}
	for _, c := range chunks {
		if c.IsEntry && c.File != "" {
			entries[path.Clean(c.File)] = true
		}
	}
	return entries, nil
}

// loadManifest returns the entries and the slash path of the manifest that was
// read, or an empty path when there is none
func loadManifest(root, configured string) (map[string]bool, string, error) {
	candidates := manifestLocations
	if configured != "" {
		candidates = []string{filepath.ToSlash(configured)}
	}

	for _, rel := range candidates {
		data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			if os.IsNotExist(err) && configured == "" {
				continue
			}
			return nil, "", errors.Errorf("reading manifest %s: %w", rel, err)
		}

		entries, err := ParseManifest(data)
		if err != nil {
			return nil, "", errors.Errorf("%s: %w", rel, err)
		}
		return entries, path.Clean(rel), nil
	}

	return nil, "", nil
}
