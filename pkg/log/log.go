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

package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// 🎨 Display configuration
const (
	fileIndent  = 4  // spaces to indent artifact entries
	nameWidth   = 35 // width for the artifact name
	countWidth  = 20 // width for the rewrite counts
	statusWidth = 15 // width for status text
)

// 🎯 ArtifactOperation is the outcome of rewriting one artifact
type ArtifactOperation struct {
	Path       string // artifact file name
	Dynamic    int    // dynamic imports rewritten
	Static     int    // static imports retargeted
	Status     string // short status text
	IsModified bool   // text was rewritten
	IsConflict bool   // edits conflicted, artifact left unchanged
	IsDryRun   bool   // nothing was written
}

// 📦 BundleOperation is one pass over a build output directory
type BundleOperation struct {
	Root      string // output directory
	Artifacts int    // number of artifacts found
	Chunks    int    // number of code artifacts
}

// 🎯 Logger prints operator facing output and mirrors it to zerolog
type Logger struct {
	zlog       zerolog.Logger
	console    io.Writer
	mu         sync.Mutex
	current    *BundleOperation
	operations []ArtifactOperation
}

// 🏭 New creates a new logger
func New(console io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stderr
	})).With().Timestamp().Logger().Level(level)
	return &Logger{
		zlog:    zlog,
		console: console,
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

func (l *Logger) formatArtifactOperation(op ArtifactOperation) string {
	var symbol rune
	var symbolColor color.Attribute
	switch {
	case op.IsConflict:
		symbol = '✗'
		symbolColor = color.FgRed
	case op.IsModified && op.IsDryRun:
		symbol = '?'
		symbolColor = color.FgYellow
	case op.IsModified:
		symbol = '⟳'
		symbolColor = color.FgBlue
	default:
		symbol = '•'
		symbolColor = color.FgCyan
	}

	counts := fmt.Sprintf("%d dyn / %d static", op.Dynamic, op.Static)

	return fmt.Sprintf("%s%s %s %s %s",
		fmt.Sprintf("%*s", fileIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", nameWidth, op.Path),
		color.New(color.Faint).Sprint(fmt.Sprintf("%-*s", countWidth, counts)),
		fmt.Sprintf("%-*s", statusWidth, op.Status))
}

// 📝 LogArtifactOperation prints one artifact line
func (l *Logger) LogArtifactOperation(ctx context.Context, op ArtifactOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.operations = append(l.operations, op)

	fmt.Fprintln(l.console, l.formatArtifactOperation(op))

	l.zlog.Info().
		Str("file", op.Path).
		Str("status", op.Status).
		Int("dynamic", op.Dynamic).
		Int("static", op.Static).
		Bool("is_modified", op.IsModified).
		Bool("is_conflict", op.IsConflict).
		Bool("dry_run", op.IsDryRun).
		Msg("artifact operation")
}

// 📝 StartBundleOperation prints the header for a pass over a directory
func (l *Logger) StartBundleOperation(ctx context.Context, op BundleOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.current = &op
	l.operations = nil

	fmt.Fprintf(l.console, "[rewriting %s]\n",
		color.New(color.FgCyan).Sprint(op.Root))

	fmt.Fprintf(l.console, "%s %s %s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprint(fmt.Sprintf("%d artifacts", op.Artifacts)),
		color.New(color.Faint).Sprint("•"),
		color.New(color.FgYellow).Sprint(fmt.Sprintf("%d chunks", op.Chunks)))

	l.zlog.Info().
		Str("root", op.Root).
		Int("artifacts", op.Artifacts).
		Int("chunks", op.Chunks).
		Msg("starting bundle operation")
}

// 📝 EndBundleOperation closes the current pass
func (l *Logger) EndBundleOperation(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.current == nil {
		return
	}

	l.zlog.Info().
		Str("root", l.current.Root).
		Int("reported", len(l.operations)).
		Msg("bundle operation complete")

	l.current = nil
	l.operations = nil
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("chunkrebase")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}
