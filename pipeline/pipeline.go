package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/poiesic/notevec/core"
	"github.com/poiesic/notevec/doc2vec"
	"github.com/poiesic/notevec/sentence"
	"github.com/poiesic/notevec/storage"
	"golang.org/x/text/language"
)

const (
	// DefaultArtifactPath is where the model artifact is written by default.
	DefaultArtifactPath = "d2v-200"
)

// Pipeline turns the notes of a source into a saved doc2vec model.
//
// Stages run strictly in order: load, label, build vocabulary, train (only
// when epochs are configured), save, compact and release. The first error
// aborts the run.
type Pipeline struct {
	open      SourceOpener
	artifact  string
	trainer   doc2vec.Config
	indexMode sentence.IndexMode
	language  language.Tag
	runs      storage.RunRepository
	vectors   storage.VectorRepository
	metrics   *Metrics
	progress  io.Writer
	logger    *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithArtifactPath sets where the model is saved.
// Default is DefaultArtifactPath.
func WithArtifactPath(path string) Option {
	return func(p *Pipeline) error {
		if path == "" {
			return ErrArtifactPathRequired
		}
		p.artifact = path
		return nil
	}
}

// WithTrainerConfig replaces the model hyperparameters.
// Default is doc2vec.DefaultConfig().
func WithTrainerConfig(cfg doc2vec.Config) Option {
	return func(p *Pipeline) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		p.trainer = cfg
		return nil
	}
}

// WithEpochs sets the number of training epochs. Zero builds the vocabulary
// and initial weights only.
func WithEpochs(epochs int) Option {
	return func(p *Pipeline) error {
		if epochs < 0 {
			return ErrInvalidEpochs
		}
		p.trainer.Epochs = epochs
		return nil
	}
}

// WithIndexMode sets how sentence indices are derived.
// Default is sentence.PositionalIndex.
func WithIndexMode(mode sentence.IndexMode) Option {
	return func(p *Pipeline) error {
		p.indexMode = mode
		return nil
	}
}

// WithLanguage sets the language used for sentence boundaries.
// Default is English.
func WithLanguage(tag language.Tag) Option {
	return func(p *Pipeline) error {
		p.language = tag
		return nil
	}
}

// WithRunRepository records every run and its stage transitions.
func WithRunRepository(runs storage.RunRepository) Option {
	return func(p *Pipeline) error {
		p.runs = runs
		return nil
	}
}

// WithVectorRepository exports the trained tag vectors after saving.
func WithVectorRepository(vectors storage.VectorRepository) Option {
	return func(p *Pipeline) error {
		p.vectors = vectors
		return nil
	}
}

// WithMetrics records run measurements into m.
func WithMetrics(m *Metrics) Option {
	return func(p *Pipeline) error {
		p.metrics = m
		return nil
	}
}

// WithProgress reports training progress to w.
func WithProgress(w io.Writer) Option {
	return func(p *Pipeline) error {
		p.progress = w
		return nil
	}
}

// NewPipeline creates a new training pipeline reading notes from open.
func NewPipeline(open SourceOpener, opts ...Option) (*Pipeline, error) {
	if open == nil {
		return nil, ErrSourceRequired
	}

	p := &Pipeline{
		open:      open,
		artifact:  DefaultArtifactPath,
		trainer:   doc2vec.DefaultConfig(),
		indexMode: sentence.PositionalIndex,
		language:  language.English,
		logger:    slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	p.logger = p.logger.With("component", "pipeline")
	return p, nil
}

// Report describes a completed run.
type Report struct {
	Run      *core.Run
	Stats    sentence.Stats
	Exported int
	// Model is the saved model after compaction. It keeps its tag vectors
	// and can infer vectors for new text.
	Model *doc2vec.Model
}

// Run executes every stage once. On failure no later stage runs, the error
// is recorded on the run record and returned.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	run := &core.Run{
		Id:        uuid.New().String(),
		Stage:     core.StageIdle,
		Artifact:  p.artifact,
		StartedAt: time.Now().UTC(),
	}
	p.logger.Info("starting run", "run", run.Id, "artifact", p.artifact, "epochs", p.trainer.Epochs)
	p.saveRun(ctx, run)

	report, err := p.execute(ctx, run)
	p.metrics.observeRun(err)
	if err != nil {
		run.Error = err.Error()
		p.saveRun(ctx, run)
		p.logger.Error("run failed", "run", run.Id, "stage", run.Stage, "err", err)
		return nil, err
	}
	p.logger.Info("run complete",
		"run", run.Id,
		"notes", run.Notes,
		"sentences", run.Labeled,
		"vocabulary", run.VocabSize,
		"tags", run.Tags)
	return report, nil
}

func (p *Pipeline) execute(ctx context.Context, run *core.Run) (*Report, error) {
	mark := time.Now()

	records, err := p.load(ctx)
	if err != nil {
		return nil, err
	}
	run.Notes = len(records)
	p.metrics.observeNotes(records)
	mark = p.advance(ctx, run, core.StageLoaded, mark)

	corpus, stats := p.label(records)
	run.Sentences = stats.Sentences
	run.Labeled = stats.Labeled
	run.MaxSentences = stats.MaxSentences
	run.CorpusDigest = corpus.Digest()
	p.metrics.observeLabeling(stats)
	mark = p.advance(ctx, run, core.StageLabeled, mark)

	model, err := doc2vec.New(p.trainer, doc2vec.WithLogger(p.logger))
	if err != nil {
		return nil, err
	}
	if err := model.BuildVocab(ctx, corpus); err != nil {
		return nil, fmt.Errorf("failed to build vocabulary: %w", err)
	}
	run.VocabSize = model.VocabSize()
	run.Tags = len(model.Tags())
	p.metrics.observeVocabulary(run.VocabSize, run.Tags)
	mark = p.advance(ctx, run, core.StageVocabBuilt, mark)

	if p.trainer.Epochs > 0 {
		if err := p.train(ctx, model, corpus); err != nil {
			return nil, fmt.Errorf("failed to train model: %w", err)
		}
		mark = p.advance(ctx, run, core.StageTrained, mark)
	}

	if err := doc2vec.Save(p.artifact, model); err != nil {
		return nil, err
	}
	mark = p.advance(ctx, run, core.StageSaved, mark)

	exported, err := p.export(ctx, model)
	if err != nil {
		return nil, fmt.Errorf("failed to export tag vectors: %w", err)
	}

	model.Compact(doc2vec.CompactOptions{KeepDocVectors: true, KeepInference: true})
	mark = p.advance(ctx, run, core.StageCompacted, mark)

	p.advance(ctx, run, core.StageReleased, mark)
	return &Report{Run: run, Stats: stats, Exported: exported, Model: model}, nil
}

// load reads every note and closes the source before returning.
func (p *Pipeline) load(ctx context.Context) ([]core.NoteRecord, error) {
	src, err := p.open(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := src.Close(); err != nil {
			p.logger.Warn("error closing note source", "err", err)
		}
	}()

	records, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("loaded notes", "count", len(records))
	return records, nil
}

func (p *Pipeline) label(records []core.NoteRecord) (core.Corpus, sentence.Stats) {
	labeler := sentence.NewLabeler(
		sentence.WithIndexMode(p.indexMode),
		sentence.WithLanguage(p.language),
		sentence.WithLogger(p.logger),
	)
	return labeler.Label(records)
}

func (p *Pipeline) train(ctx context.Context, model *doc2vec.Model, corpus core.Corpus) error {
	if p.progress == nil {
		return model.Train(ctx, corpus)
	}

	total := int64(p.trainer.Epochs) * int64(corpus.Tokens())
	tracker := NewProgressTracker(p.progress, total, total/100)
	tracker.Start()
	err := model.Train(ctx, corpus, doc2vec.WithProgress(func(done, _ int64) {
		tracker.Update(done)
	}))
	if err != nil {
		fmt.Fprintln(p.progress)
		return err
	}
	tracker.Finish()
	return nil
}

func (p *Pipeline) export(ctx context.Context, model *doc2vec.Model) (int, error) {
	if p.vectors == nil {
		return 0, nil
	}
	exported, err := ExportTagVectors(ctx, p.vectors, model)
	if err != nil {
		return exported, err
	}
	p.logger.Debug("exported tag vectors", "count", exported)
	return exported, nil
}

// advance moves the run to stage and returns the start of the next stage.
func (p *Pipeline) advance(ctx context.Context, run *core.Run, stage core.Stage, since time.Time) time.Time {
	now := time.Now()
	run.Stage = stage
	p.metrics.observeStage(stage, now.Sub(since))
	p.logger.Info("stage complete", "run", run.Id, "stage", stage.String(), "elapsed", now.Sub(since))
	p.saveRun(ctx, run)
	return now
}

// saveRun persists the run record. Failures are logged; the record is
// auxiliary to the artifact.
func (p *Pipeline) saveRun(ctx context.Context, run *core.Run) {
	if p.runs == nil {
		return
	}
	if err := p.runs.SaveRun(context.WithoutCancel(ctx), run); err != nil {
		p.logger.Warn("error saving run record", "run", run.Id, "err", err)
	}
}
