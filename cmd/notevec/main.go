// Copyright 2025 Poiesic Systems
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


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/poiesic/notevec"
	"github.com/poiesic/notevec/config"
	"github.com/poiesic/notevec/core"
	"github.com/poiesic/notevec/doc2vec"
	"github.com/poiesic/notevec/notes"
	"github.com/poiesic/notevec/pipeline"
	"github.com/poiesic/notevec/search"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	modelFlag := &cli.StringFlag{
		Name:    "model",
		Aliases: []string{"m"},
		Usage:   "Path to the model artifact",
		Value:   pipeline.DefaultArtifactPath,
	}
	topFlag := &cli.IntFlag{
		Name:  "top",
		Usage: "Number of results to show",
		Value: 10,
	}

	return &cli.App{
		Name:  "notevec",
		Usage: "Sentence embeddings for clinical notes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "train",
				Usage:  "Build the sentence corpus from the notes database and save a doc2vec model",
				Action: trainCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to a YAML configuration file",
					},
					&cli.StringFlag{
						Name:  "driver",
						Usage: "database/sql driver (mysql, sqlite3)",
						Value: "mysql",
					},
					&cli.StringFlag{
						Name:    "dsn",
						Usage:   "Data source name of the notes database",
						EnvVars: []string{config.EnvDSN},
					},
					&cli.StringFlag{
						Name:  "table",
						Usage: "Notes table",
						Value: notes.DefaultTable,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Path of the model artifact",
						Value:   pipeline.DefaultArtifactPath,
					},
					&cli.IntFlag{
						Name:  "epochs",
						Usage: "Training epochs (0 builds the vocabulary only)",
					},
					&cli.StringFlag{
						Name:  "state",
						Usage: "BadgerDB directory for run records and exported vectors",
					},
					&cli.StringFlag{
						Name:  "metrics-file",
						Usage: "Write Prometheus textfile metrics to this path",
					},
					&cli.BoolFlag{
						Name:  "legacy-index",
						Usage: "Give repeated sentences the index of their first occurrence",
					},
					&cli.StringFlag{
						Name:  "language",
						Usage: "Language of the notes (BCP 47)",
						Value: "en",
					},
				},
			},
			{
				Name:   "similar",
				Usage:  "List the sentences most similar to a tagged sentence",
				Action: similarCommand,
				Flags: []cli.Flag{
					modelFlag,
					&cli.StringFlag{
						Name:     "tag",
						Aliases:  []string{"t"},
						Usage:    "Sentence tag ({note_id}-{sentence_index})",
						Required: true,
					},
					topFlag,
				},
			},
			{
				Name:   "infer",
				Usage:  "Infer a vector for free text and list the most similar sentences",
				Action: inferCommand,
				Flags: []cli.Flag{
					modelFlag,
					&cli.StringFlag{
						Name:     "text",
						Usage:    "Text to infer a vector for",
						Required: true,
					},
					topFlag,
				},
			},
			{
				Name:   "export",
				Usage:  "Store a model's sentence vectors in the state directory",
				Action: exportCommand,
				Flags: []cli.Flag{
					modelFlag,
					&cli.StringFlag{
						Name:     "state",
						Aliases:  []string{"s"},
						Usage:    "BadgerDB state directory",
						Required: true,
					},
				},
			},
			{
				Name:   "runs",
				Usage:  "List recent pipeline runs",
				Action: runsCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "state",
						Aliases:  []string{"s"},
						Usage:    "BadgerDB state directory",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Number of runs to show",
						Value: 10,
					},
				},
			},
		},
	}
}

// loadConfig merges the config file, the environment and explicit flags,
// in increasing precedence.
func loadConfig(c *cli.Context) (*config.Config, error) {
	if err := config.LoadEnv(); err != nil {
		return nil, err
	}

	cfg := config.DefaultConfig()
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if c.IsSet("driver") {
		cfg.Source.Driver = c.String("driver")
	}
	if c.IsSet("dsn") {
		cfg.Source.DSN = c.String("dsn")
	}
	if c.IsSet("table") {
		cfg.Source.Table = c.String("table")
	}
	if c.IsSet("output") {
		cfg.Artifact = c.String("output")
	}
	if c.IsSet("epochs") {
		cfg.Epochs = c.Int("epochs")
	}
	if c.IsSet("state") {
		cfg.StateDir = c.String("state")
	}
	if c.IsSet("metrics-file") {
		cfg.MetricsFile = c.String("metrics-file")
	}
	if c.Bool("legacy-index") {
		cfg.IndexMode = config.IndexFirstOccurrence
	}
	if c.IsSet("language") {
		cfg.Language = c.String("language")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func trainCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := loadConfig(c)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	lang, _ := cfg.LanguageTag()
	mode, _ := cfg.SentenceIndexMode()

	opts := []pipeline.Option{
		pipeline.WithLogger(slog.Default()),
		pipeline.WithArtifactPath(cfg.Artifact),
		pipeline.WithEpochs(cfg.Epochs),
		pipeline.WithIndexMode(mode),
		pipeline.WithLanguage(lang),
		pipeline.WithProgress(c.App.ErrWriter),
	}

	var metrics *pipeline.Metrics
	if cfg.MetricsFile != "" {
		metrics = pipeline.NewMetrics()
		opts = append(opts, pipeline.WithMetrics(metrics))
	}

	opener := pipeline.SQLOpener(cfg.Source.Driver, cfg.Source.DSN,
		notes.WithTable(cfg.Source.Table),
		notes.WithLogger(slog.Default()))

	var p *pipeline.Pipeline
	if cfg.StateDir != "" {
		ws, err := notevec.OpenWorkspace(cfg.StateDir)
		if err != nil {
			return fmt.Errorf("failed to open state directory: %w", err)
		}
		defer ws.Close()
		p, err = ws.NewPipeline(opener, opts...)
		if err != nil {
			return fmt.Errorf("failed to create pipeline: %w", err)
		}
	} else {
		p, err = pipeline.NewPipeline(opener, opts...)
		if err != nil {
			return fmt.Errorf("failed to create pipeline: %w", err)
		}
	}

	report, runErr := p.Run(ctx)

	if metrics != nil {
		if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			slog.Warn("failed to write metrics", "path", cfg.MetricsFile, "err", err)
		}
	}
	if runErr != nil {
		return fmt.Errorf("training failed: %w", runErr)
	}

	run := report.Run
	fmt.Fprintf(c.App.ErrWriter, "Saved %s: %d notes, %d sentences (%d labeled), vocabulary %d, %d tags\n",
		run.Artifact, run.Notes, run.Sentences, run.Labeled, run.VocabSize, run.Tags)
	if report.Exported > 0 {
		fmt.Fprintf(c.App.ErrWriter, "Exported %d tag vectors to %s\n", report.Exported, cfg.StateDir)
	}
	return nil
}

func loadModel(c *cli.Context) (*doc2vec.Model, error) {
	model, err := doc2vec.Load(c.String("model"), doc2vec.WithLogger(slog.Default()))
	if err != nil {
		return nil, fmt.Errorf("failed to load model: %w", err)
	}
	return model, nil
}

func printMatches(c *cli.Context, matches []core.SimilarityMatch) {
	for _, m := range matches {
		fmt.Fprintf(c.App.Writer, "%s\t%.4f\n", m.Tag, m.Score)
	}
}

func similarCommand(c *cli.Context) error {
	model, err := loadModel(c)
	if err != nil {
		return err
	}

	index, err := search.FromModel(model)
	if err != nil {
		return fmt.Errorf("failed to index model: %w", err)
	}
	matches, err := index.Similar(c.String("tag"), c.Int("top"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	printMatches(c, matches)
	return nil
}

func inferCommand(c *cli.Context) error {
	model, err := loadModel(c)
	if err != nil {
		return err
	}

	searcher, err := search.NewSearcher(model, search.WithLogger(slog.Default()))
	if err != nil {
		return fmt.Errorf("failed to create searcher: %w", err)
	}
	matches, err := searcher.FindSimilar(c.Context, c.String("text"), c.Int("top"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	printMatches(c, matches)
	return nil
}

func exportCommand(c *cli.Context) error {
	model, err := loadModel(c)
	if err != nil {
		return err
	}

	ws, err := notevec.OpenWorkspace(c.String("state"))
	if err != nil {
		return fmt.Errorf("failed to open state directory: %w", err)
	}
	defer ws.Close()

	n, err := ws.ExportModel(c.Context, model)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	fmt.Fprintf(c.App.ErrWriter, "Exported %d tag vectors to %s\n", n, c.String("state"))
	return nil
}

func runsCommand(c *cli.Context) error {
	ws, err := notevec.OpenWorkspace(c.String("state"))
	if err != nil {
		return fmt.Errorf("failed to open state directory: %w", err)
	}
	defer ws.Close()

	runs, err := ws.RunRepository().RecentRuns(c.Context, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	for _, run := range runs {
		status := "ok"
		if run.Failed() {
			status = "error: " + run.Error
		}
		fmt.Fprintf(c.App.Writer, "%s  %s  %-11s  notes=%d sentences=%d vocab=%d  %s\n",
			run.Id, run.StartedAt.Local().Format(time.DateTime), run.Stage, run.Notes, run.Labeled, run.VocabSize, status)
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
