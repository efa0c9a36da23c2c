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


package notevec

import (
	"context"
	"log/slog"

	"github.com/poiesic/notevec/doc2vec"
	"github.com/poiesic/notevec/pipeline"
	"github.com/poiesic/notevec/search"
	"github.com/poiesic/notevec/storage"
	"github.com/poiesic/notevec/storage/badger"
)

// Workspace is a state directory holding run records and exported tag vectors.
type Workspace struct {
	backend *badger.Backend
	runs    storage.RunRepository
	vectors storage.VectorRepository
	logger  *slog.Logger
}

// WorkspaceOption configures a Workspace.
type WorkspaceOption func(*workspaceOptions)

type workspaceOptions struct {
	inMemory bool
	logger   *slog.Logger
}

// InMemory keeps the workspace state in memory. The directory is ignored.
func InMemory() WorkspaceOption {
	return func(o *workspaceOptions) {
		o.inMemory = true
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) WorkspaceOption {
	return func(o *workspaceOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// OpenWorkspace opens or creates the workspace in dir.
func OpenWorkspace(dir string, opts ...WorkspaceOption) (*Workspace, error) {
	options := &workspaceOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(dir, options.inMemory)
	if err != nil {
		return nil, err
	}

	return &Workspace{
		backend: backend,
		runs:    badger.NewRunRepository(backend),
		vectors: badger.NewVectorRepository(backend),
		logger:  options.logger,
	}, nil
}

func (w *Workspace) Close() error {
	// Close repositories
	if err := w.vectors.Close(); err != nil {
		w.logger.Error("error closing vector repository", "err", err)
		return err
	}
	if err := w.runs.Close(); err != nil {
		w.logger.Error("error closing run repository", "err", err)
		return err
	}

	// Close backend
	if err := w.backend.Close(); err != nil {
		w.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (w *Workspace) RunRepository() storage.RunRepository {
	return w.runs
}

func (w *Workspace) VectorRepository() storage.VectorRepository {
	return w.vectors
}

// NewPipeline creates a pipeline that records its runs and exports its tag
// vectors into the workspace.
func (w *Workspace) NewPipeline(open pipeline.SourceOpener, opts ...pipeline.Option) (*pipeline.Pipeline, error) {
	opts = append([]pipeline.Option{
		pipeline.WithLogger(w.logger),
		pipeline.WithRunRepository(w.runs),
		pipeline.WithVectorRepository(w.vectors),
	}, opts...)
	return pipeline.NewPipeline(open, opts...)
}

// ExportModel replaces the workspace's tag vectors with those of model.
func (w *Workspace) ExportModel(ctx context.Context, model *doc2vec.Model) (int, error) {
	return pipeline.ExportTagVectors(ctx, w.vectors, model)
}

// NewSearcher creates a searcher over a model.
func (w *Workspace) NewSearcher(model *doc2vec.Model, opts ...search.Option) (*search.Searcher, error) {
	opts = append([]search.Option{search.WithLogger(w.logger)}, opts...)
	return search.NewSearcher(model, opts...)
}
