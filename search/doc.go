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


// Package search finds sentences similar to a sentence or to free text.
//
// Index holds a trained model's tag vectors in an HNSW graph with cosine
// distance. Searcher adds free-text queries on top: the query is cleaned the
// same way the training corpus was, a vector is inferred for it, and the
// nearest tags are returned with their cosine similarity.
//
//	model, err := doc2vec.Load("d2v-200")
//	if err != nil {
//	    return err
//	}
//	searcher, err := search.NewSearcher(model)
//	if err != nil {
//	    return err
//	}
//	matches, err := searcher.FindSimilar(ctx, "pt denied chest pain", 10)
package search
