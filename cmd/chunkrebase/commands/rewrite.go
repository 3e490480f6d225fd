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
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/chunkrebase/cmd/chunkrebase/opts"
	"github.com/walteh/chunkrebase/pkg/host"
	"github.com/walteh/chunkrebase/pkg/log"
)

// NewRewriteCmd creates a new rewrite command
func NewRewriteCmd(o *opts.RootOpts) *cobra.Command {
	f := &passFlags{}

	cmd := &cobra.Command{
		Use:   "rewrite <dir>",
		Short: "Rewrite chunk imports in a build output directory",
		Long: `Rewrite retargets the imports of a build output directory in place.
It will:
1. Load every code file and its source map
2. Prefix dynamic chunk imports of entries with the runtime base path
3. Point static imports of the entry from chunks at the URL template
4. Write back the files that changed`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := log.New(cmd.OutOrStdout(), o.ConsoleLevel())
			ctx = log.NewContext(ctx, logger)

			logger.Header("rewriting chunk imports")

			p, err := loadPass(ctx, o, cmd, f, args[0])
			if err != nil {
				return err
			}

			logger.StartBundleOperation(ctx, log.BundleOperation{
				Root:      p.root,
				Artifacts: p.bundle.Len(),
				Chunks:    len(p.bundle.Code()),
			})
			if err := p.process(ctx, logger); err != nil {
				return err
			}
			for _, res := range p.report.Artifacts {
				logger.LogArtifactOperation(ctx, artifactOperation(res, false))
			}

			changed := p.report.Changed()
			if err := host.WriteDir(ctx, p.root, p.bundle, changed, host.WriteOptions{SourceMaps: p.cfg.EnableSourceMap}); err != nil {
				return errors.Errorf("writing output directory: %w", err)
			}
			logger.EndBundleOperation(ctx)

			if f.strict {
				if err := strictCheck(p.report); err != nil {
					logger.Error(err.Error())
					return err
				}
			}

			logger.Successf("Rewrote %d import(s) in %d file(s)", p.report.Total(), len(changed))
			return nil
		},
	}

	f.register(cmd)

	return cmd
}
