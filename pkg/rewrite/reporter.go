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

	"github.com/rs/zerolog"
)

// 📢 Reporter is the host's diagnostic channel
type Reporter interface {
	Info(msg string)
	Warning(msg string)
}

// NopReporter drops every message
type NopReporter struct{}

func (NopReporter) Info(string)    {}
func (NopReporter) Warning(string) {}

// 📝 LogReporter writes diagnostics to a zerolog logger
type LogReporter struct {
	log zerolog.Logger
}

// NewLogReporter reports through the logger carried by ctx
func NewLogReporter(ctx context.Context) *LogReporter {
	return &LogReporter{log: zerolog.Ctx(ctx).With().Str("component", "rewrite").Logger()}
}

func (r *LogReporter) Info(msg string) {
	r.log.Info().Msg(msg)
}

func (r *LogReporter) Warning(msg string) {
	r.log.Warn().Msg(msg)
}
