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


package storage

import (
	"fmt"

	"github.com/poiesic/notevec/core"
)

// MarshalTagVector serializes a TagVector to bytes.
func MarshalTagVector(vector *core.TagVector) []byte {
	buf := make([]byte, core.TagVectorMUS.Size(*vector))
	core.TagVectorMUS.Marshal(*vector, buf)
	return buf
}

// UnmarshalTagVector deserializes a TagVector from bytes.
func UnmarshalTagVector(data []byte) (*core.TagVector, error) {
	vector, _, err := core.TagVectorMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: tag vector: %w", ErrSerializationFailed, err)
	}
	return &vector, nil
}

// MarshalRun serializes a Run to bytes.
func MarshalRun(run *core.Run) []byte {
	buf := make([]byte, core.RunMUS.Size(*run))
	core.RunMUS.Marshal(*run, buf)
	return buf
}

// UnmarshalRun deserializes a Run from bytes.
func UnmarshalRun(data []byte) (*core.Run, error) {
	run, _, err := core.RunMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: run: %w", ErrSerializationFailed, err)
	}
	return &run, nil
}
