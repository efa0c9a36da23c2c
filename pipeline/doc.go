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


// Package pipeline trains a sentence embedding model from clinical notes.
//
// A run loads notes from a NoteSource, splits them into sentences, cleans and
// tags each sentence "{note_id}-{sentence_index}", builds a doc2vec
// vocabulary (and trains, when epochs are configured), saves the artifact,
// then compacts the model to the state needed for lookup and inference.
//
// Basic usage:
//
//	p, err := pipeline.NewPipeline(pipeline.SQLOpener("mysql", dsn))
//	if err != nil {
//	    return err
//	}
//	report, err := p.Run(ctx)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(report.Run.Artifact, report.Run.VocabSize)
//
// The note source is opened at the start of the run and closed as soon as
// the notes are loaded. Run records, tag vector export, metrics and a
// progress display are enabled through options.
package pipeline
