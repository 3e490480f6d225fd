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

package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/chunkrebase/pkg/bundle"
	"github.com/walteh/chunkrebase/pkg/host"
	"github.com/walteh/chunkrebase/pkg/rewrite"
)

// PlaceholderToken is replaced by the widget placeholder in ResourceBaseExpr
const PlaceholderToken = "{placeholder}"

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 📚 Config is the file form of the rewrite and host options
type Config struct {
	ResourceBaseExpr        string   `json:"resource_base_expr,omitempty" yaml:"resource_base_expr,omitempty" hcl:"resource_base_expr,optional"`
	EntryChunks             []string `json:"entry_chunks,omitempty" yaml:"entry_chunks,omitempty" hcl:"entry_chunks,optional"`
	EnableSourceMap         bool     `json:"enable_source_map,omitempty" yaml:"enable_source_map,omitempty" hcl:"enable_source_map,optional"`
	CoarseSourceMap         bool     `json:"coarse_source_map,omitempty" yaml:"coarse_source_map,omitempty" hcl:"coarse_source_map,optional"`
	WidgetPlaceholder       string   `json:"widget_placeholder,omitempty" yaml:"widget_placeholder,omitempty" hcl:"widget_placeholder,optional"`
	ChunkFilePattern        string   `json:"chunk_file_pattern,omitempty" yaml:"chunk_file_pattern,omitempty" hcl:"chunk_file_pattern,optional"`
	EntryFileName           string   `json:"entry_file_name,omitempty" yaml:"entry_file_name,omitempty" hcl:"entry_file_name,optional"`
	StaticImportURLTemplate string   `json:"static_import_url_template,omitempty" yaml:"static_import_url_template,omitempty" hcl:"static_import_url_template,optional"`
	CodeGlobs               []string `json:"code_globs,omitempty" yaml:"code_globs,omitempty" hcl:"code_globs,optional"`
	IgnorePatterns          []string `json:"ignore_patterns,omitempty" yaml:"ignore_patterns,omitempty" hcl:"ignore_patterns,optional"`
	Manifest                string   `json:"manifest,omitempty" yaml:"manifest,omitempty" hcl:"manifest,optional"`
	Concurrency             int      `json:"concurrency,omitempty" yaml:"concurrency,omitempty" hcl:"concurrency,optional"`
}

// 🏭 Default returns a validated config with every default applied
func Default() *Config {
	cfg := &Config{}
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("default config is invalid: %v", err))
	}
	return cfg
}

// 🎯 Load loads the configuration from a file
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// 🔍 Validate checks the configuration and fills in defaults
func (cfg *Config) Validate() error {
	if cfg.Concurrency < 0 {
		return errors.Errorf("concurrency must not be negative")
	}

	globs := map[string][]string{
		"entry_chunks":    cfg.EntryChunks,
		"code_globs":      cfg.CodeGlobs,
		"ignore_patterns": cfg.IgnorePatterns,
	}
	for field, patterns := range globs {
		for i, pattern := range patterns {
			if !doublestar.ValidatePattern(pattern) {
				return errors.Errorf("%s[%d]: invalid glob %q", field, i, pattern)
			}
		}
	}

	if cfg.ResourceBaseExpr != "" && strings.TrimSpace(cfg.ResourceBaseExpr) == "" {
		return errors.Errorf("resource_base_expr must not be blank")
	}

	if cfg.WidgetPlaceholder == "" {
		cfg.WidgetPlaceholder = rewrite.DefaultWidgetPlaceholder
	}
	if cfg.ChunkFilePattern == "" {
		cfg.ChunkFilePattern = rewrite.DefaultChunkFilePattern
	}
	if cfg.EntryFileName == "" {
		cfg.EntryFileName = rewrite.DefaultEntryFileName
	}
	if cfg.StaticImportURLTemplate == "" {
		cfg.StaticImportURLTemplate = rewrite.DefaultStaticImportURLTemplate
	}
	if len(cfg.CodeGlobs) == 0 {
		cfg.CodeGlobs = host.DefaultCodeGlobs()
	}

	return nil
}

// 🔧 RewriteOptions converts the config into rewriter options
func (cfg *Config) RewriteOptions(reporter rewrite.Reporter) rewrite.Options {
	opts := rewrite.Options{
		EnableSourceMap:         cfg.EnableSourceMap,
		CoarseSourceMap:         cfg.CoarseSourceMap,
		WidgetPlaceholder:       cfg.WidgetPlaceholder,
		ChunkFilePattern:        cfg.ChunkFilePattern,
		EntryFileName:           cfg.EntryFileName,
		StaticImportURLTemplate: cfg.StaticImportURLTemplate,
		Concurrency:             cfg.Concurrency,
		Reporter:                reporter,
	}

	if expr := cfg.ResourceBaseExpr; expr != "" {
		opts.ResourceBaseVar = func(placeholder string) string {
			return strings.ReplaceAll(expr, PlaceholderToken, placeholder)
		}
	}

	if len(cfg.EntryChunks) > 0 {
		patterns := append([]string(nil), cfg.EntryChunks...)
		opts.EntryPredicate = func(a *bundle.Artifact) bool {
			for _, pattern := range patterns {
				if ok, err := doublestar.Match(pattern, a.FileName); err == nil && ok {
					return true
				}
			}
			return false
		}
	}

	return opts
}

// 📂 LoadOptions converts the config into directory host options
func (cfg *Config) LoadOptions() host.LoadOptions {
	return host.LoadOptions{
		CodeGlobs:      cfg.CodeGlobs,
		IgnorePatterns: cfg.IgnorePatterns,
		Manifest:       cfg.Manifest,
		EntryFileName:  cfg.EntryFileName,
	}
}

// 📝 String returns a short description of the config
func (cfg *Config) String() string {
	return fmt.Sprintf("%s -> %s (chunks *%s)", "./"+cfg.EntryFileName, cfg.StaticImportURLTemplate, cfg.ChunkFilePattern)
}
