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


package badger

// MemoryStore bundles an in-memory backend with its repositories.
type MemoryStore struct {
	Backend *Backend
	Vectors *VectorRepository
	Runs    *RunRepository
}

// NewMemoryStore creates in-memory vector and run repositories for testing.
// Caller must Close the store when done.
func NewMemoryStore() (*MemoryStore, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, err
	}
	return &MemoryStore{
		Backend: backend,
		Vectors: NewVectorRepository(backend),
		Runs:    NewRunRepository(backend),
	}, nil
}

// Close closes the repositories and the backend.
func (s *MemoryStore) Close() error {
	s.Vectors.Close()
	s.Runs.Close()
	return s.Backend.Close()
}
