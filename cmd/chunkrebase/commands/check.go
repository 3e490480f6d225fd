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
	"fmt"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/chunkrebase/cmd/chunkrebase/opts"
	"github.com/walteh/chunkrebase/pkg/rewrite"
)

// NewCheckCmd creates a new check command
func NewCheckCmd(o *opts.RootOpts) *cobra.Command {
	f := &passFlags{}

	cmd := &cobra.Command{
		Use:   "check <dir>",
		Short: "Show what rewrite would change without writing",
		Long: `Check runs the same pass as rewrite against a build output directory
and prints a table of the imports that would be rewritten. Nothing is written.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			p, err := loadPass(ctx, o, cmd, f, args[0])
			if err != nil {
				return err
			}
			if err := p.process(ctx, rewrite.NewLogReporter(ctx)); err != nil {
				return err
			}

			table, err := pterm.DefaultTable.WithHasHeader().WithData(checkTable(p.report)).Srender()
			if err != nil {
				return errors.Errorf("rendering table: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), table)

			if p.report.Total() == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), rewrite.ZeroMatchMessage)
			}

			if f.strict {
				return strictCheck(p.report)
			}
			return nil
		},
	}

	f.register(cmd)

	return cmd
}

// checkTable lays out one row per code artifact plus a total row
func checkTable(report *rewrite.Report) pterm.TableData {
	data := pterm.TableData{{"File", "Dynamic", "Static", "Status"}}
	dynamic, static := 0, 0
	for _, res := range report.Artifacts {
		op := artifactOperation(res, true)
		data = append(data, []string{res.FileName, strconv.Itoa(res.Dynamic), strconv.Itoa(res.Static), op.Status})
		dynamic += res.Dynamic
		static += res.Static
	}
	data = append(data, []string{"total", strconv.Itoa(dynamic), strconv.Itoa(static), ""})
	return data
}
