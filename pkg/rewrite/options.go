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

package rewrite

import (
	"fmt"

	"github.com/walteh/chunkrebase/pkg/bundle"
)

const (
	DefaultWidgetPlaceholder       = "{{widget.wid}}"
	DefaultChunkFilePattern        = ".chunk.js"
	DefaultEntryFileName           = "main.js"
	DefaultStaticImportURLTemplate = "{{site.url}}/widget_manager/{{widget.wid}}/{{widget.version}}.js"
)

// 🌐 DefaultResourceBaseVar reads the base path from a per-widget window global
func DefaultResourceBaseVar(placeholder string) string {
	return fmt.Sprintf("window['resourceBasePath-%s']", placeholder)
}

// 🚪 DefaultEntryPredicate trusts the bundler's entry flag
func DefaultEntryPredicate(a *bundle.Artifact) bool {
	return a.IsEntry
}

// 🔧 Options configures a Rewriter. Zero values select the defaults.
type Options struct {
	// ResourceBaseVar returns the expression that evaluates to the base path
	// at runtime. It may reference window; the generated code guards it.
	ResourceBaseVar func(placeholder string) string

	// EntryPredicate decides which artifacts get the dynamic import pass
	EntryPredicate func(a *bundle.Artifact) bool

	// EnableSourceMap regenerates maps of artifacts that already carry one
	EnableSourceMap bool

	// CoarseSourceMap maps line starts only instead of every character
	CoarseSourceMap bool

	// WidgetPlaceholder is handed to ResourceBaseVar
	WidgetPlaceholder string

	// ChunkFilePattern is the split chunk suffix. It is matched literally.
	ChunkFilePattern string

	// EntryFileName is the file static imports are retargeted away from
	EntryFileName string

	// StaticImportURLTemplate replaces the source of matching static imports.
	// Placeholders in it are left for a later stage.
	StaticImportURLTemplate string

	// Concurrency is the number of artifacts rewritten at once; 0 or 1 is sequential
	Concurrency int

	// Reporter receives operator facing diagnostics
	Reporter Reporter
}

func (o Options) withDefaults() Options {
	if o.ResourceBaseVar == nil {
		o.ResourceBaseVar = DefaultResourceBaseVar
	}
	if o.EntryPredicate == nil {
		o.EntryPredicate = DefaultEntryPredicate
	}
	if o.WidgetPlaceholder == "" {
		o.WidgetPlaceholder = DefaultWidgetPlaceholder
	}
	if o.ChunkFilePattern == "" {
		o.ChunkFilePattern = DefaultChunkFilePattern
	}
	if o.EntryFileName == "" {
		o.EntryFileName = DefaultEntryFileName
	}
	if o.StaticImportURLTemplate == "" {
		o.StaticImportURLTemplate = DefaultStaticImportURLTemplate
	}
	if o.Reporter == nil {
		o.Reporter = NopReporter{}
	}
	return o
}

// ConfigError reports an option that makes every artifact fail identically
type ConfigError struct {
	Option string
	Err    error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Option, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
