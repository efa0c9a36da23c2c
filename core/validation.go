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

import (
	"fmt"
)

// ValidateNoteRecord validates a NoteRecord according to domain rules.
//
// Validation rules:
//   - ID must be positive (ROW_ID)
//   - Category must be Physician or Social Work
//
// NOT validated:
//   - Text (empty text is a valid note that yields no sentences)
func ValidateNoteRecord(note *NoteRecord) error {
	if note == nil {
		return fmt.Errorf("%w: note is nil", ErrInvalidNote)
	}

	if note.ID <= 0 {
		return fmt.Errorf("%w: row id %d", ErrInvalidNote, note.ID)
	}

	if err := ValidateCategory(note.Category); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidNote, err)
	}

	return nil
}

// ValidateCategory validates that a Category has a known value.
func ValidateCategory(c Category) error {
	if c != CategoryPhysician && c != CategorySocialWork {
		return fmt.Errorf("%w: value %d", ErrInvalidCategory, c)
	}
	return nil
}

// ValidateLabeledSentence checks the corpus invariants of one entry:
// at least one token and a well-formed tag.
func ValidateLabeledSentence(s *LabeledSentence) error {
	if s == nil {
		return fmt.Errorf("%w: sentence is nil", ErrInvalidTag)
	}
	if len(s.Tokens) == 0 {
		return fmt.Errorf("%w: tag %q", ErrEmptyTokens, s.Tag)
	}
	if _, _, err := ParseTag(s.Tag); err != nil {
		return err
	}
	return nil
}
