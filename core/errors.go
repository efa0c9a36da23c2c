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


package core

import "errors"

// Pipeline errors
var (
	// ErrConnection indicates the notes store could not be reached.
	ErrConnection = errors.New("cannot connect to notes store")

	// ErrQuery indicates a notes query was rejected or failed while reading rows.
	ErrQuery = errors.New("notes query failed")

	// ErrEmptyCorpus indicates there is nothing to train on: no labeled
	// sentences, or no token reaching the minimum count.
	ErrEmptyCorpus = errors.New("empty corpus")

	// ErrArtifact indicates the model artifact could not be written or read.
	ErrArtifact = errors.New("model artifact error")
)

// Domain validation errors
var (
	// ErrInvalidNote indicates a NoteRecord failed validation.
	ErrInvalidNote = errors.New("invalid note record")

	// ErrInvalidCategory indicates an unknown note category.
	ErrInvalidCategory = errors.New("invalid note category")

	// ErrInvalidTag indicates a tag not of the form "{note_id}-{sentence_index}".
	ErrInvalidTag = errors.New("invalid sentence tag")

	// ErrEmptyTokens indicates a labeled sentence without tokens.
	ErrEmptyTokens = errors.New("labeled sentence has no tokens")
)
