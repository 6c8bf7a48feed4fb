// Command mlpipe fits, applies, draws and stores serialized pipelines using
// the local in-memory engine.
//
// Usage:
//
//	mlpipe [-config config.yaml] fit|apply|draw|list
//
// fit reads the pipeline document and the input CSV, fits the pipeline and
// writes the fitted document to the output file or to the registry. apply
// loads a fitted pipeline (file or registry), transforms the input CSV and
// writes the result CSV. draw renders the pipeline as a Graphviz DOT file.
// list prints the registry's contents.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/pkg/errors"

	"github.com/youngwookim/mlpipe/pkg/engine/local"
	"github.com/youngwookim/mlpipe/pkg/pipeline"
	"github.com/youngwookim/mlpipe/pkg/pipeline/drawer"
	"github.com/youngwookim/mlpipe/pkg/registry"
)

func main() {
	configPath := flag.String("config", "", "path to a yaml config file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		level = slog.LevelInfo
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: mlpipe [-config file] fit|apply|draw|list")
		os.Exit(2)
	}

	err = run(context.Background(), flag.Arg(0), cfg, logger)
	if err != nil {
		logger.Error("command failed", "command", flag.Arg(0), "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, command string, cfg *config, logger *slog.Logger) error {
	switch command {
	case "fit":
		return runFit(ctx, cfg, logger)
	case "apply":
		return runApply(ctx, cfg, logger)
	case "draw":
		return runDraw(ctx, cfg)
	case "list":
		return runList(ctx, cfg)
	default:
		return errors.Errorf("unknown command %q", command)
	}
}

func runFit(ctx context.Context, cfg *config, logger *slog.Logger) error {
	pipe, err := loadPipeline(ctx, cfg)
	if err != nil {
		return err
	}

	input, err := readInput(cfg.Input)
	if err != nil {
		return err
	}

	fitted, err := pipe.Fit(local.NewEnv(), input)
	if err != nil {
		return err
	}

	document, err := fitted.ToJSON()
	if err != nil {
		return err
	}

	logger.Info("pipeline fitted", "stages", len(fitted.Stages()), "rows", input.NumRows())

	if cfg.Registry.Path != "" && cfg.Registry.Name != "" {
		store, err := registry.Open(cfg.Registry.Path, logger)
		if err != nil {
			return err
		}
		defer store.Close()

		return store.Save(ctx, cfg.Registry.Name, cfg.Registry.Version, document)
	}

	if cfg.Output == "" {
		return errors.New("fit needs an output file or a registry")
	}

	return errors.Wrapf(os.WriteFile(cfg.Output, document, 0o644), "unable to write %s", cfg.Output)
}

func runApply(ctx context.Context, cfg *config, logger *slog.Logger) error {
	pipe, err := loadPipeline(ctx, cfg)
	if err != nil {
		return err
	}

	if pipe.NeedFit() {
		return errors.WithStack(pipeline.ErrNotFitted)
	}

	input, err := readInput(cfg.Input)
	if err != nil {
		return err
	}

	output, err := pipe.Transform(local.NewEnv(), input)
	if err != nil {
		return err
	}

	table, ok := output.(*local.Table)
	if !ok {
		return errors.Errorf("unexpected output table %T", output)
	}

	logger.Info("pipeline applied", "rows", table.NumRows(), "columns", table.NumColumns())

	out := os.Stdout

	if cfg.Output != "" {
		file, err := os.Create(cfg.Output)
		if err != nil {
			return errors.Wrapf(err, "unable to create %s", cfg.Output)
		}
		defer file.Close()

		out = file
	}

	return local.WriteCSV(out, table)
}

func runDraw(ctx context.Context, cfg *config) error {
	pipe, err := loadPipeline(ctx, cfg)
	if err != nil {
		return err
	}

	if cfg.Output == "" {
		return errors.New("draw needs an output file")
	}

	drw := drawer.NewDOTDrawer(cfg.Output)

	err = drawer.Sketch(drw, pipe)
	if err != nil {
		return err
	}

	return drw.Draw()
}

func runList(ctx context.Context, cfg *config) error {
	if cfg.Registry.Path == "" {
		return errors.New("list needs a registry path")
	}

	store, err := registry.Open(cfg.Registry.Path, slog.Default())
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.List(ctx)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		fmt.Printf("%s\tv%d\t%s\n", entry.Name, entry.Version, entry.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	return nil
}

// loadPipeline reads a pipeline document from the registry when configured,
// from the pipeline file otherwise.
func loadPipeline(ctx context.Context, cfg *config) (*pipeline.Pipeline, error) {
	var (
		document []byte
		err      error
	)

	switch {
	case cfg.Registry.Path != "" && cfg.Registry.Name != "" && cfg.Pipeline == "":
		store, err := registry.Open(cfg.Registry.Path, slog.Default())
		if err != nil {
			return nil, err
		}
		defer store.Close()

		if cfg.Registry.Version > 0 {
			document, err = store.Load(ctx, cfg.Registry.Name, cfg.Registry.Version)
		} else {
			_, document, err = store.Latest(ctx, cfg.Registry.Name)
		}

		if err != nil {
			return nil, err
		}
	case cfg.Pipeline != "":
		document, err = os.ReadFile(cfg.Pipeline)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to read %s", cfg.Pipeline)
		}
	default:
		return nil, errors.New("no pipeline file or registry configured")
	}

	return pipeline.FromJSON(document)
}

func readInput(path string) (*local.Table, error) {
	if path == "" {
		return nil, errors.New("no input file configured")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open %s", path)
	}
	defer file.Close()

	return local.ReadCSV(file)
}
