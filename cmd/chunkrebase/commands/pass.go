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

package commands

import (
	"context"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/chunkrebase/cmd/chunkrebase/opts"
	"github.com/walteh/chunkrebase/pkg/bundle"
	"github.com/walteh/chunkrebase/pkg/config"
	"github.com/walteh/chunkrebase/pkg/host"
	"github.com/walteh/chunkrebase/pkg/log"
	"github.com/walteh/chunkrebase/pkg/rewrite"
)

// ErrStrict is returned by --strict when a pass rewrote nothing or hit a conflict
var ErrStrict = errors.Base("strict check failed")

// passFlags override config file values for a single invocation
type passFlags struct {
	chunkPattern string
	entry        string
	template     string
	placeholder  string
	sourceMap    bool
	concurrency  int
	strict       bool
}

func (f *passFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.chunkPattern, "chunk-pattern", "", "split chunk file suffix (default "+rewrite.DefaultChunkFilePattern+")")
	cmd.Flags().StringVar(&f.entry, "entry", "", "entry file name (default "+rewrite.DefaultEntryFileName+")")
	cmd.Flags().StringVar(&f.template, "template", "", "URL template for static imports of the entry")
	cmd.Flags().StringVar(&f.placeholder, "placeholder", "", "widget placeholder (default "+rewrite.DefaultWidgetPlaceholder+")")
	cmd.Flags().BoolVar(&f.sourceMap, "sourcemap", false, "regenerate source maps of chunks that have one")
	cmd.Flags().IntVar(&f.concurrency, "concurrency", 0, "number of chunks rewritten at once")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "fail when nothing was rewritten or a chunk was skipped")
}

// apply copies changed flags into cfg and revalidates it
func (f *passFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("chunk-pattern") {
		cfg.ChunkFilePattern = f.chunkPattern
	}
	if flags.Changed("entry") {
		cfg.EntryFileName = f.entry
	}
	if flags.Changed("template") {
		cfg.StaticImportURLTemplate = f.template
	}
	if flags.Changed("placeholder") {
		cfg.WidgetPlaceholder = f.placeholder
	}
	if flags.Changed("sourcemap") {
		cfg.EnableSourceMap = f.sourceMap
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency = f.concurrency
	}

	if err := cfg.Validate(); err != nil {
		return errors.Errorf("validating flags: %w", err)
	}
	return nil
}

// pass is one load and rewrite of an output directory
type pass struct {
	root   string
	cfg    *config.Config
	bundle *bundle.Bundle
	report *rewrite.Report
}

// loadPass resolves the config and loads dir into a bundle
func loadPass(ctx context.Context, o *opts.RootOpts, cmd *cobra.Command, f *passFlags, dir string) (*pass, error) {
	cfg, err := o.LoadConfig(ctx)
	if err != nil {
		return nil, err
	}
	if err := f.apply(cmd, cfg); err != nil {
		return nil, err
	}

	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Errorf("getting absolute output path: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Str("config", cfg.String()).Str("dir", root).Msg("configuration resolved")

	b, err := host.LoadDir(ctx, root, cfg.LoadOptions())
	if err != nil {
		return nil, errors.Errorf("loading output directory: %w", err)
	}

	return &pass{root: root, cfg: cfg, bundle: b}, nil
}

// process rewrites the loaded bundle in memory, reporting through reporter
func (p *pass) process(ctx context.Context, reporter rewrite.Reporter) error {
	rw, err := rewrite.New(p.cfg.RewriteOptions(reporter))
	if err != nil {
		return errors.Errorf("creating rewriter: %w", err)
	}

	report, err := rw.Process(ctx, p.bundle)
	if err != nil {
		return errors.Errorf("rewriting bundle: %w", err)
	}
	p.report = report
	return nil
}

// strictCheck fails a pass that changed nothing or skipped an artifact
func strictCheck(report *rewrite.Report) error {
	if conflicts := report.Conflicts(); len(conflicts) > 0 {
		return errors.Errorf("%w: %d artifact(s) left unchanged because of conflicting edits", ErrStrict, len(conflicts))
	}
	if report.Total() == 0 {
		return errors.Errorf("%w: no imports were rewritten", ErrStrict)
	}
	return nil
}

// artifactOperation converts a rewrite result into a console line
func artifactOperation(res rewrite.ArtifactResult, dryRun bool) log.ArtifactOperation {
	op := log.ArtifactOperation{
		Path:     res.FileName,
		Dynamic:  res.Dynamic,
		Static:   res.Static,
		IsDryRun: dryRun,
	}
	switch {
	case res.Err != nil:
		op.Status = "CONFLICT"
		op.IsConflict = true
	case res.Count() > 0 && dryRun:
		op.Status = "WOULD REWRITE"
		op.IsModified = true
	case res.Count() > 0:
		op.Status = "REWRITTEN"
		op.IsModified = true
	default:
		op.Status = "unchanged"
	}
	return op
}
