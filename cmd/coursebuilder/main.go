package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/coursebuilder/internal/build"
	"git.home.luguber.info/inful/coursebuilder/internal/diagnostics"
	"git.home.luguber.info/inful/coursebuilder/internal/history"
	"git.home.luguber.info/inful/coursebuilder/internal/locales"
	"git.home.luguber.info/inful/coursebuilder/internal/logfields"
	"git.home.luguber.info/inful/coursebuilder/internal/metrics"
	"git.home.luguber.info/inful/coursebuilder/internal/version"
	"git.home.luguber.info/inful/coursebuilder/internal/watch"
)

const (
	exitOK         = 0
	exitValidation = 1
	exitUsage      = 2
)

var CLI struct {
	Verbose bool     `short:"v" help:"Enable verbose logging"`
	Locales []string `help:"Locale codes every localized field must cover" default:"en,nb"`

	Build struct {
		Content   string   `short:"c" help:"Content root directory" default:"./content"`
		Output    string   `short:"o" help:"Output directory for build artifacts" default:"./dist"`
		Jobs      int      `short:"j" help:"Parallel compile workers (0 = all CPUs)"`
		Exclude   []string `help:"Glob patterns of content sources to skip"`
		History   bool     `help:"Record builds in the history database"`
		HistoryDB string   `help:"Build history database path" default:".coursebuilder/history.db"`
	} `cmd:"" help:"Validate and build the full content artifact"`

	Validate struct {
		Dir    string `arg:"" help:"Directory to validate"`
		Type   string `help:"Treat the directory as a single entity: subject, teacher, teachers or system" enum:",subject,teacher,teachers,system" default:""`
		Format string `help:"Report format" enum:"text,json" default:"text"`
	} `cmd:"" help:"Validate content without producing output"`

	Watch struct {
		Content     string        `short:"c" help:"Content root directory" default:"./content"`
		Output      string        `short:"o" help:"Output directory for build artifacts" default:"./dist"`
		Interval    time.Duration `help:"Force a full rebuild at this interval (0 disables)"`
		MetricsAddr string        `help:"Serve Prometheus metrics on this address"`
	} `cmd:"" help:"Rebuild continuously as content changes"`

	Version struct{} `cmd:"" help:"Print version information"`
}

func main() {
	// Best effort; a missing .env file is the normal case.
	_ = godotenv.Load()

	parser := kong.Must(&CLI,
		kong.Name("coursebuilder"),
		kong.Description("Content build and validation pipeline."))
	kctx, err := parser.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUsage)
	}

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	locs, err := locales.Parse(CLI.Locales)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUsage)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch kctx.Command() {
	case "build":
		os.Exit(runBuild(ctx, locs))
	case "validate <dir>":
		os.Exit(runValidate(ctx, locs))
	case "watch":
		os.Exit(runWatch(ctx, locs))
	case "version":
		fmt.Printf("coursebuilder %s (commit %s, built %s)\n",
			version.Version, version.GitCommit, version.BuildTime)
		os.Exit(exitOK)
	}
}

func runBuild(ctx context.Context, locs *locales.Set) int {
	opts := build.Options{
		ContentRoot: CLI.Build.Content,
		OutputDir:   CLI.Build.Output,
		Locales:     locs,
		Exclude:     CLI.Build.Exclude,
		Jobs:        CLI.Build.Jobs,
	}
	if CLI.Build.History {
		if err := os.MkdirAll(filepath.Dir(CLI.Build.HistoryDB), 0o755); err != nil {
			slog.Error("Failed to create history directory", logfields.Error(err))
			return exitValidation
		}
		store, err := history.Open(CLI.Build.HistoryDB)
		if err != nil {
			slog.Error("Failed to open build history", logfields.Error(err))
			return exitValidation
		}
		defer store.Close()
		opts.History = store
	}

	result, err := build.Run(ctx, opts)
	if err != nil {
		slog.Error("Build failed", logfields.Error(err))
		return exitValidation
	}
	if result.Diagnostics.Len() > 0 {
		formatter := diagnostics.NewFormatter("text")
		if err := formatter.Format(os.Stdout, result.Diagnostics, CLI.Build.Content); err != nil {
			slog.Error("Failed to render report", logfields.Error(err))
		}
	}
	if result.Diagnostics.HasErrors() {
		return exitValidation
	}
	slog.Info("Build complete",
		logfields.BuildID(result.Manifest.ID),
		logfields.Hash(result.Manifest.ContentHash))
	return exitOK
}

func runValidate(ctx context.Context, locs *locales.Set) int {
	diags, err := build.Validate(ctx, CLI.Validate.Dir, CLI.Validate.Type, locs)
	if err != nil {
		slog.Error("Validation failed to run", logfields.Error(err))
		return exitUsage
	}
	formatter := diagnostics.NewFormatter(CLI.Validate.Format)
	if err := formatter.Format(os.Stdout, diags, CLI.Validate.Dir); err != nil {
		slog.Error("Failed to render report", logfields.Error(err))
	}
	if diags.HasErrors() {
		return exitValidation
	}
	return exitOK
}

func runWatch(ctx context.Context, locs *locales.Set) int {
	opts := watch.Options{
		Build: build.Options{
			ContentRoot: CLI.Watch.Content,
			OutputDir:   CLI.Watch.Output,
			Locales:     locs,
		},
		Interval:    CLI.Watch.Interval,
		MetricsAddr: CLI.Watch.MetricsAddr,
	}
	if CLI.Watch.MetricsAddr != "" {
		opts.Metrics = metrics.NewPrometheusRecorder()
	}

	w, err := watch.New(opts)
	if err != nil {
		slog.Error("Failed to start watcher", logfields.Error(err))
		return exitValidation
	}
	if err := w.Run(ctx); err != nil && ctx.Err() == nil {
		slog.Error("Watcher stopped", logfields.Error(err))
		return exitValidation
	}
	slog.Info("Watcher stopped")
	return exitOK
}
