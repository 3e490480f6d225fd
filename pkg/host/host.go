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

// Package host loads a build output directory into a bundle and writes
// rewritten artifacts back.
package host

import (
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/chunkrebase/pkg/bundle"
	"github.com/walteh/chunkrebase/pkg/sourcemap"
)

const mapSuffix = ".map"

// DefaultCodeGlobs returns the globs that classify a file as code
func DefaultCodeGlobs() []string {
	return []string{"**/*.{js,mjs,cjs}"}
}

// 📂 LoadOptions controls how a directory becomes a bundle
type LoadOptions struct {
	// CodeGlobs classify files as code, everything else is an asset
	CodeGlobs []string

	// IgnorePatterns exclude files and directories entirely
	IgnorePatterns []string

	// Manifest is a Vite manifest path relative to the root. When empty the
	// usual locations are tried.
	Manifest string

	// EntryFileName marks entries by base name when there is no manifest
	EntryFileName string
}

// 🔍 LoadDir walks root and builds a bundle in lexical path order
func LoadDir(ctx context.Context, root string, opts LoadOptions) (*bundle.Bundle, error) {
	logger := zerolog.Ctx(ctx).With().Str("root", root).Logger()

	if len(opts.CodeGlobs) == 0 {
		opts.CodeGlobs = DefaultCodeGlobs()
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Errorf("reading output directory: %w", err)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("output path is not a directory: %s", root)
	}

	entries, manifestPath, err := loadManifest(root, opts.Manifest)
	if err != nil {
		return nil, err
	}
	if manifestPath != "" {
		logger.Debug().Str("manifest", manifestPath).Int("entries", len(entries)).Msg("using manifest")
	}

	var files []string
	maps := map[string]string{}

	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}

		if matchAny(opts.IgnorePatterns, rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || rel == manifestPath {
			return nil
		}

		if strings.HasSuffix(rel, mapSuffix) {
			maps[strings.TrimSuffix(rel, mapSuffix)] = rel
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, errors.Errorf("walking output directory: %w", err)
	}

	present := make(map[string]bool, len(files))
	for _, rel := range files {
		present[rel] = true
	}

	b, err := bundle.New()
	if err != nil {
		return nil, err
	}
	for _, rel := range files {
		// a map with a sibling artifact travels with it
		if owner, ok := strings.CutSuffix(rel, mapSuffix); ok && present[owner] {
			continue
		}

		a := &bundle.Artifact{FileName: rel, Kind: bundle.KindAsset}

		if matchAny(opts.CodeGlobs, rel) {
			code, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
			if err != nil {
				return nil, errors.Errorf("reading %s: %w", rel, err)
			}
			a.Kind = bundle.KindCode
			a.Code = string(code)

			if manifestPath != "" {
				a.IsEntry = entries[rel]
			} else {
				a.IsEntry = opts.EntryFileName != "" && path.Base(rel) == opts.EntryFileName
			}

			if mapRel, ok := maps[rel]; ok {
				m, err := readMap(root, mapRel)
				if err != nil {
					logger.Warn().Err(err).Str("file", mapRel).Msg("ignoring unreadable source map")
				} else {
					a.Map = m
				}
			}
		}

		if err := b.Add(a); err != nil {
			return nil, errors.Errorf("adding %s: %w", rel, err)
		}
	}

	logger.Debug().Int("artifacts", b.Len()).Int("code", len(b.Code())).Msg("directory loaded")

	return b, nil
}

// 📝 WriteOptions controls what WriteDir writes besides the code
type WriteOptions struct {
	// SourceMaps writes each artifact's map to its .map sibling
	SourceMaps bool
}

// 💾 WriteDir writes the named artifacts of b back under root
func WriteDir(ctx context.Context, root string, b *bundle.Bundle, names []string, opts WriteOptions) error {
	logger := zerolog.Ctx(ctx)

	for _, name := range names {
		a, ok := b.Get(name)
		if !ok {
			return errors.Errorf("artifact not in bundle: %s", name)
		}

		target := filepath.Join(root, filepath.FromSlash(a.FileName))
		if err := WriteFileAtomic(target, []byte(a.Code)); err != nil {
			return errors.Errorf("writing %s: %w", a.FileName, err)
		}

		if opts.SourceMaps && a.Map != nil {
			data, err := a.Map.Marshal()
			if err != nil {
				return errors.Errorf("encoding source map of %s: %w", a.FileName, err)
			}
			if err := WriteFileAtomic(target+mapSuffix, data); err != nil {
				return errors.Errorf("writing source map of %s: %w", a.FileName, err)
			}
		}

		logger.Debug().Str("file", a.FileName).Msg("artifact written")
	}

	return nil
}

// WriteFileAtomic writes content to a temp file next to target and renames it into place
func WriteFileAtomic(target string, content []byte) error {
	mode := fs.FileMode(0644)
	if info, err := os.Stat(target); err == nil {
		mode = info.Mode().Perm()
	}

	tempPath := target + ".tmp"

	if err := os.WriteFile(tempPath, content, mode); err != nil {
		return errors.Errorf("writing temp file: %w", err)
	}

	if err := os.Rename(tempPath, target); err != nil {
		os.Remove(tempPath)
		return errors.Errorf("renaming temp file: %w", err)
	}

	return nil
}

func readMap(root, rel string) (*sourcemap.Map, error) {
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		return nil, errors.Errorf("reading source map: %w", err)
	}
	return sourcemap.Parse(data)
}

func matchAny(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}
