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
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/walteh/chunkrebase/pkg/bundle"
	"github.com/walteh/chunkrebase/pkg/edit"
	"github.com/walteh/chunkrebase/pkg/match"
	"github.com/walteh/chunkrebase/pkg/sourcemap"
)

// ZeroMatchMessage is reported once when a whole pass rewrote nothing
const ZeroMatchMessage = "No dynamic imports were transformed. This may be expected if there are no code-split chunks, " +
	"or it could indicate that the regex patterns do not match the generated code."

// passKind names the two rewrite passes
type passKind int

const (
	passDynamic passKind = iota
	passStatic
)

// pass binds a pattern to the artifacts it applies to and the text it writes
type pass struct {
	kind    passKind
	spec    *match.Spec
	applies func(a *bundle.Artifact) bool
	replace func(m match.Match) string
}

// 🔄 Rewriter retargets module loads in bundler output. It is immutable
// after New and safe to reuse across bundles.
type Rewriter struct {
	opts   Options
	passes []pass
}

// 🏭 New validates opts and compiles the rewrite passes
func New(opts Options) (*Rewriter, error) {
	opts = opts.withDefaults()

	if opts.Concurrency < 0 {
		return nil, &ConfigError{Option: "concurrency", Err: errors.Errorf("must not be negative, got %d", opts.Concurrency)}
	}

	ref := strings.TrimSpace(opts.ResourceBaseVar(opts.WidgetPlaceholder))
	if ref == "" {
		return nil, &ConfigError{Option: "resource base variable", Err: errors.New("generator returned an empty expression")}
	}

	if strings.ContainsAny(opts.StaticImportURLTemplate, match.DefaultQuotes+"\r\n") {
		return nil, &ConfigError{
			Option: "static import URL template",
			Err:    errors.Errorf("%q must not contain quotes or line breaks", opts.StaticImportURLTemplate),
		}
	}

	dynamic, err := match.DynamicImport(opts.ChunkFilePattern)
	if err != nil {
		return nil, &ConfigError{Option: "chunk file pattern", Err: err}
	}

	static, err := match.StaticImport(opts.EntryFileName)
	if err != nil {
		return nil, &ConfigError{Option: "entry file name", Err: err}
	}

	template := opts.StaticImportURLTemplate
	chunkMarker := opts.ChunkFilePattern

	return &Rewriter{
		opts: opts,
		passes: []pass{
			{
				kind:    passDynamic,
				spec:    dynamic,
				applies: opts.EntryPredicate,
				replace: func(m match.Match) string {
					return DynamicReplacement(ref, m.Quote, m.ModuleName())
				},
			},
			{
				kind: passStatic,
				spec: static,
				applies: func(a *bundle.Artifact) bool {
					return strings.Contains(a.FileName, chunkMarker)
				},
				replace: func(m match.Match) string {
					return StaticReplacement(template, m.Quote)
				},
			},
		},
	}, nil
}

// 🚀 DynamicReplacement builds an import whose argument is prefixed with the
// base path when a window global exists at runtime, and with nothing otherwise.
func DynamicReplacement(ref string, quote byte, moduleName string) string {
	q := string(quote)
	return "import(((typeof window !== 'undefined' && window) ? " + ref + " : '') + " + q + moduleName + q + ")"
}

// 📥 StaticReplacement builds a from clause sourcing the URL template
func StaticReplacement(template string, quote byte) string {
	q := string(quote)
	return "from " + q + template + q
}

// result is the outcome of rewriting one artifact before it is committed
type result struct {
	ArtifactResult
	code string
	m    *sourcemap.Map
}

// 🏃 Process rewrites every code artifact of b in place and reports per
// artifact counts followed by one summary.
func (r *Rewriter) Process(ctx context.Context, b *bundle.Bundle) (*Report, error) {
	if b == nil {
		return nil, errors.New("bundle is required")
	}

	logger := zerolog.Ctx(ctx)
	code := b.Code()
	logger.Debug().Int("artifacts", b.Len()).Int("chunks", len(code)).Msg("rewriting bundle")

	results := make([]result, len(code))
	if r.opts.Concurrency > 1 {
		var g errgroup.Group
		g.SetLimit(r.opts.Concurrency)
		for i, a := range code {
			g.Go(func() error {
				results[i] = r.rewrite(ctx, a)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, errors.Errorf("rewriting artifacts: %w", err)
		}
	} else {
		for i, a := range code {
			results[i] = r.rewrite(ctx, a)
		}
	}

	report := &Report{}
	for i, a := range code {
		res := results[i]
		r.commit(a, res)
		report.Artifacts = append(report.Artifacts, res.ArtifactResult)
	}

	total := report.Total()
	if total == 0 {
		r.opts.Reporter.Warning(ZeroMatchMessage)
	} else {
		r.opts.Reporter.Info(fmt.Sprintf("Total transformations applied: %d", total))
	}
	logger.Debug().Int("total", total).Int("conflicts", len(report.Conflicts())).Msg("bundle rewritten")

	return report, nil
}

// rewrite computes the new text of a without touching it
func (r *Rewriter) rewrite(ctx context.Context, a *bundle.Artifact) result {
	logger := zerolog.Ctx(ctx).With().Str("file", a.FileName).Logger()
	res := result{ArtifactResult: ArtifactResult{FileName: a.FileName}}
	buf := edit.NewBuffer(a.Code)

	for _, p := range r.passes {
		if !p.applies(a) {
			continue
		}
		n := 0
		for m := range p.spec.All(a.Code) {
			if err := buf.Overwrite(m.Start, m.End, p.replace(m)); err != nil {
				logger.Debug().Err(err).Str("pass", p.spec.Name()).Msg("edit rejected")
				return result{ArtifactResult: ArtifactResult{
					FileName: a.FileName,
					Err:      errors.Errorf("%s pass at offset %d: %w", p.spec.Name(), m.Start, err),
				}}
			}
			n++
		}
		switch p.kind {
		case passDynamic:
			res.Dynamic += n
		case passStatic:
			res.Static += n
		}
		logger.Debug().Str("pass", p.spec.Name()).Int("matches", n).Msg("pass complete")
	}

	if buf.Len() == 0 {
		return res
	}
	res.code = buf.String()

	if r.opts.EnableSourceMap && a.Map != nil {
		generated := sourcemap.Generate(buf, sourcemap.GenerateOptions{
			File:           a.FileName,
			Source:         a.FileName,
			IncludeContent: true,
			Hires:          !r.opts.CoarseSourceMap,
		})
		composed, err := sourcemap.Compose(generated, a.Map)
		if err != nil {
			res.MapErr = err
			res.m = generated
		} else {
			res.m = composed
		}
	}

	return res
}

// commit writes a computed result back into its artifact and reports it
func (r *Rewriter) commit(a *bundle.Artifact, res result) {
	if res.Err != nil {
		r.opts.Reporter.Warning(fmt.Sprintf("Skipped %s, left unchanged: %v", a.FileName, res.Err))
		return
	}
	if res.Count() == 0 {
		return
	}

	a.Code = res.code
	if res.m != nil {
		a.Map = res.m
	}
	if res.MapErr != nil {
		r.opts.Reporter.Warning(fmt.Sprintf("Could not compose the source map of %s, mapping to the pre-rewrite chunk instead: %v", a.FileName, res.MapErr))
	}
	r.opts.Reporter.Info(fmt.Sprintf("Transformed %d import(s) in %s", res.Count(), a.FileName))
}
