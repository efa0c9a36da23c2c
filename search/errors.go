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


package search

import "errors"

var (
	// ErrModelRequired is returned when a model is not provided.
	ErrModelRequired = errors.New("model required")

	// ErrNoDocVectors is returned when the model carries no tag vectors to index.
	ErrNoDocVectors = errors.New("model has no tag vectors")

	// ErrUnknownTag is returned when a tag is not in the index.
	ErrUnknownTag = errors.New("unknown tag")

	// ErrDimensionMismatch is returned when a vector's length differs from the index dimension.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)
