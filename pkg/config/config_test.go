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
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/chunkrebase/pkg/bundle"
	"github.com/walteh/chunkrebase/pkg/host"
	"github.com/walteh/chunkrebase/pkg/rewrite"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		file        string
		config      string
		wantErr     bool
		errContains string
		check       func(t *testing.T, cfg *Config)
	}{
		{
			name: "yaml_full",
			file: ".chunkrebase.yaml",
			config: `
resource_base_expr: "window.__base['{placeholder}']"
entry_chunks:
  - "widgets/*.js"
enable_source_map: true
coarse_source_map: true
widget_placeholder: "{{wid}}"
chunk_file_pattern: ".part.js"
entry_file_name: "index.js"
static_import_url_template: "https://cdn.example.com/index.js"
code_globs:
  - "**/*.js"
ignore_patterns:
  - "vendor/**"
manifest: ".vite/manifest.json"
concurrency: 4
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "window.__base['{placeholder}']", cfg.ResourceBaseExpr, "resource base expr should match")
				assert.Equal(t, []string{"widgets/*.js"}, cfg.EntryChunks, "entry chunks should match")
				assert.True(t, cfg.EnableSourceMap, "source maps should be enabled")
				assert.True(t, cfg.CoarseSourceMap, "coarse maps should be enabled")
				assert.Equal(t, "{{wid}}", cfg.WidgetPlaceholder, "placeholder should match")
				assert.Equal(t, ".part.js", cfg.ChunkFilePattern, "chunk pattern should match")
				assert.Equal(t, "index.js", cfg.EntryFileName, "entry file name should match")
				assert.Equal(t, "https://cdn.example.com/index.js", cfg.StaticImportURLTemplate, "template should match")
				assert.Equal(t, []string{"**/*.js"}, cfg.CodeGlobs, "code globs should match")
				assert.Equal(t, []string{"vendor/**"}, cfg.IgnorePatterns, "ignore patterns should match")
				assert.Equal(t, ".vite/manifest.json", cfg.Manifest, "manifest should match")
				assert.Equal(t, 4, cfg.Concurrency, "concurrency should match")
			},
		},
		{
			name:   "yaml_defaults",
			file:   ".chunkrebase.yml",
			config: "enable_source_map: false\n",
			check: func(t *testing.T, cfg *Config) {
				assert.Empty(t, cfg.ResourceBaseExpr, "resource base expr should stay empty")
				assert.Equal(t, rewrite.DefaultWidgetPlaceholder, cfg.WidgetPlaceholder, "placeholder should default")
				assert.Equal(t, rewrite.DefaultChunkFilePattern, cfg.ChunkFilePattern, "chunk pattern should default")
				assert.Equal(t, rewrite.DefaultEntryFileName, cfg.EntryFileName, "entry file name should default")
				assert.Equal(t, rewrite.DefaultStaticImportURLTemplate, cfg.StaticImportURLTemplate, "template should default")
				assert.Equal(t, host.DefaultCodeGlobs(), cfg.CodeGlobs, "code globs should default")
			},
		},
		{
			name:   "yaml_empty",
			file:   "empty.yaml",
			config: "",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, rewrite.DefaultEntryFileName, cfg.EntryFileName, "entry file name should default")
			},
		},
		{
			name:        "yaml_unknown_key",
			file:        "config.yaml",
			config:      "chunk_pattern: .part.js\n",
			wantErr:     true,
			errContains: "chunk_pattern",
		},
		{
			name: "hcl",
			file: "chunkrebase.hcl",
			config: `
resource_base_expr         = "window.__base['{placeholder}']"
entry_chunks               = ["**/main.js"]
enable_source_map          = true
concurrency                = 2
static_import_url_template = "${defaults.site_url}/widgets/${defaults.entry_file_name}"
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "window.__base['{placeholder}']", cfg.ResourceBaseExpr, "resource base expr should match")
				assert.Equal(t, []string{"**/main.js"}, cfg.EntryChunks, "entry chunks should match")
				assert.True(t, cfg.EnableSourceMap, "source maps should be enabled")
				assert.Equal(t, 2, cfg.Concurrency, "concurrency should match")
				assert.Equal(t, "{{site.url}}/widgets/main.js", cfg.StaticImportURLTemplate, "template should use the defaults variables")
			},
		},
		{
			name:        "hcl_unknown_attribute",
			file:        "chunkrebase.hcl",
			config:      `chunk_pattern = ".part.js"`,
			wantErr:     true,
			errContains: "decoding HCL",
		},
		{
			name: "jsonc",
			file: ".chunkrebase.jsonc",
			config: `{
	// chunks from the legacy pipeline
	"chunk_file_pattern": ".part.js",
	"code_globs": ["**/*.js",],
}`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, ".part.js", cfg.ChunkFilePattern, "chunk pattern should match")
				assert.Equal(t, []string{"**/*.js"}, cfg.CodeGlobs, "code globs should match")
			},
		},
		{
			name:        "json_unknown_key",
			file:        "config.json",
			config:      `{"chunks": []}`,
			wantErr:     true,
			errContains: "unknown field",
		},
		{
			name:        "invalid_glob",
			file:        "config.yaml",
			config:      "entry_chunks: ['widgets/[main.js']\n",
			wantErr:     true,
			errContains: "entry_chunks[0]: invalid glob",
		},
		{
			name:        "negative_concurrency",
			file:        "config.yaml",
			config:      "concurrency: -1\n",
			wantErr:     true,
			errContains: "concurrency must not be negative",
		},
		{
			name:        "blank_resource_base_expr",
			file:        "config.yaml",
			config:      "resource_base_expr: '   '\n",
			wantErr:     true,
			errContains: "resource_base_expr must not be blank",
		},
		{
			name:        "unknown_format",
			file:        "config.toml",
			config:      "concurrency = 1",
			wantErr:     true,
			errContains: "no parser found",
		},
	}

	ctx := zerolog.New(os.Stderr).Level(zerolog.Disabled).WithContext(context.Background())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Create temporary config file
			tmpDir := t.TempDir()
			configPath := filepath.Join(tmpDir, tt.file)
			err := os.WriteFile(configPath, []byte(tt.config), 0644)
			require.NoError(t, err, "writing config file should succeed")

			// Load config
			cfg, err := Load(ctx, configPath)
			if tt.wantErr {
				require.Error(t, err, "Load should return error")
				assert.Contains(t, err.Error(), tt.errContains, "error should contain expected message")
				return
			}

			require.NoError(t, err, "Load should succeed")
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err, "Load should fail for a missing file")
	assert.Contains(t, err.Error(), "reading config file", "error should name the step")
}

func TestGetParser(t *testing.T) {
	tests := []struct {
		file string
		want Parser
	}{
		{file: ".chunkrebase.yaml", want: &YAMLParser{}},
		{file: "a/b/c.YML", want: &YAMLParser{}},
		{file: "chunkrebase.hcl", want: &HCLParser{}},
		{file: "config.json", want: &JSONParser{}},
		{file: "config.jsonc", want: &JSONParser{}},
		{file: "config.toml", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			got := GetParser(tt.file)
			if tt.want == nil {
				assert.Nil(t, got, "no parser should match")
				return
			}
			assert.IsType(t, tt.want, got, "parser type should match")
		})
	}
}

func TestRewriteOptions(t *testing.T) {
	cfg := &Config{
		ResourceBaseExpr: "window.__base['{placeholder}']",
		EntryChunks:      []string{"widgets/*.js"},
	}
	require.NoError(t, cfg.Validate(), "Validate should succeed")

	opts := cfg.RewriteOptions(rewrite.NopReporter{})
	require.NotNil(t, opts.ResourceBaseVar, "resource base var should be set")
	assert.Equal(t, "window.__base['{{widget.wid}}']", opts.ResourceBaseVar(cfg.WidgetPlaceholder), "placeholder token should be replaced")

	require.NotNil(t, opts.EntryPredicate, "entry predicate should be set")
	assert.True(t, opts.EntryPredicate(&bundle.Artifact{FileName: "widgets/app.js"}), "glob match should be an entry")
	assert.False(t, opts.EntryPredicate(&bundle.Artifact{FileName: "main.js", IsEntry: true}), "globs replace the bundler flag")

	rw, err := rewrite.New(opts)
	require.NoError(t, err, "rewrite.New should accept the converted options")

	app := &bundle.Artifact{FileName: "widgets/app.js", Kind: bundle.KindCode, Code: `import("./x.chunk.js")`}
	b, err := bundle.New(app)
	require.NoError(t, err)

	report, err := rw.Process(context.Background(), b)
	require.NoError(t, err, "Process should succeed")
	assert.Equal(t, 1, report.Total(), "one import should be rewritten")
	assert.Equal(t, `import(((typeof window !== 'undefined' && window) ? window.__base['{{widget.wid}}'] : '') + "x.chunk.js")`, app.Code, "import should use the configured expression")
}

func TestRewriteOptions_Defaults(t *testing.T) {
	opts := Default().RewriteOptions(nil)
	assert.Nil(t, opts.ResourceBaseVar, "resource base var should fall back to the rewriter default")
	assert.Nil(t, opts.EntryPredicate, "entry predicate should fall back to the rewriter default")
	assert.Equal(t, rewrite.DefaultChunkFilePattern, opts.ChunkFilePattern, "chunk pattern should default")
}

func TestLoadOptions(t *testing.T) {
	cfg := &Config{
		IgnorePatterns: []string{"vendor/**"},
		Manifest:       "manifest.json",
	}
	require.NoError(t, cfg.Validate(), "Validate should succeed")

	got := cfg.LoadOptions()
	assert.Equal(t, host.LoadOptions{
		CodeGlobs:      host.DefaultCodeGlobs(),
		IgnorePatterns: []string{"vendor/**"},
		Manifest:       "manifest.json",
		EntryFileName:  rewrite.DefaultEntryFileName,
	}, got, "load options should match")
}

func TestConfigString(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
		want string
	}{
		{
			name: "defaults",
			cfg:  Default(),
			want: "./main.js -> {{site.url}}/widget_manager/{{widget.wid}}/{{widget.version}}.js (chunks *.chunk.js)",
		},
		{
			name: "custom",
			cfg: &Config{
				EntryFileName:           "index.js",
				StaticImportURLTemplate: "/static/index.js",
				ChunkFilePattern:        ".part.js",
			},
			want: "./index.js -> /static/index.js (chunks *.part.js)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.cfg.String()
			assert.Equal(t, tt.want, got, "String() should match")
		})
	}
}
