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
	"github.com/walteh/chunkrebase/pkg/sourcemap"
	"gitlab.com/tozd/go/errors"
)

// ErrDuplicate is returned when two artifacts share a file name
var ErrDuplicate = errors.Base("duplicate artifact")

// 🏷️ Kind distinguishes code chunks from every other emitted file
type Kind int

const (
	KindCode Kind = iota
	KindAsset
)

func (k Kind) String() string {
	switch k {
	case KindCode:
		return "chunk"
	case KindAsset:
		return "asset"
	default:
		return "unknown"
	}
}

// 📦 Artifact is one file produced by the bundler. Only Code and Map are
// written by the rewrite pass.
type Artifact struct {
	FileName string
	Kind     Kind
	Code     string
	IsEntry  bool
	Map      *sourcemap.Map
}

// IsCode reports whether the artifact is a code chunk
func (a *Artifact) IsCode() bool {
	return a.Kind == KindCode
}

// 📚 Bundle is the ordered set of artifacts for one build
type Bundle struct {
	artifacts []*Artifact
	index     map[string]int
}

// 🏭 New creates a bundle from artifacts, keeping their order
func New(artifacts ...*Artifact) (*Bundle, error) {
	b := &Bundle{index: make(map[string]int, len(artifacts))}
	for _, a := range artifacts {
		if err := b.Add(a); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Add appends an artifact
func (b *Bundle) Add(a *Artifact) error {
	if a == nil {
		return errors.New("artifact is required")
	}
	if a.FileName == "" {
		return errors.New("artifact file name is required")
	}
	if b.index == nil {
		b.index = map[string]int{}
	}
	if _, ok := b.index[a.FileName]; ok {
		return errors.Errorf("%w: %s", ErrDuplicate, a.FileName)
	}
	b.index[a.FileName] = len(b.artifacts)
	b.artifacts = append(b.artifacts, a)
	return nil
}

// Get returns the artifact with the given file name
func (b *Bundle) Get(fileName string) (*Artifact, bool) {
	i, ok := b.index[fileName]
	if !ok {
		return nil, false
	}
	return b.artifacts[i], true
}

// Artifacts returns every artifact in bundle order
func (b *Bundle) Artifacts() []*Artifact {
	return b.artifacts
}

// Code returns the code artifacts in bundle order
func (b *Bundle) Code() []*Artifact {
	var out []*Artifact
	for _, a := range b.artifacts {
		if a.IsCode() {
			out = append(out, a)
		}
	}
	return out
}

// Len returns the number of artifacts
func (b *Bundle) Len() int {
	return len(b.artifacts)
}
