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

package opts

import (
	"context"
	"io/fs"
	"os"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/chunkrebase/pkg/config"
)

// DefaultConfigFile is read when present and --config is not given
const DefaultConfigFile = ".chunkrebase.yaml"

// RootOpts contains shared options used by all commands
type RootOpts struct {
	ConfigFile string
	Debug      bool

	// ConfigExplicit is set when --config was passed, making a missing file an error
	ConfigExplicit bool
}

// LoadConfig loads the configured file, falling back to defaults when the
// implicit default file does not exist
func (o *RootOpts) LoadConfig(ctx context.Context) (*config.Config, error) {
	if !o.ConfigExplicit {
		if _, err := os.Stat(o.ConfigFile); errors.Is(err, fs.ErrNotExist) {
			zerolog.Ctx(ctx).Debug().Str("path", o.ConfigFile).Msg("no config file, using defaults")
			return config.Default(), nil
		}
	}

	cfg, err := config.Load(ctx, o.ConfigFile)
	if err != nil {
		return nil, errors.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// ConsoleLevel is the level the console logger mirrors to zerolog at
func (o *RootOpts) ConsoleLevel() zerolog.Level {
	if o.Debug {
		return zerolog.DebugLevel
	}
	return zerolog.Disabled
}
