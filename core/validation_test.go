package core

import (
	"errors"
	"testing"
)

func TestValidateNoteRecord(t *testing.T) {
	tests := []struct {
		name    string
		note    *NoteRecord
		wantErr error
	}{
		{
			name:    "valid physician note",
			note:    &NoteRecord{ID: 1, Category: CategoryPhysician, Text: "Pt stable."},
			wantErr: nil,
		},
		{
			name:    "valid note with empty text",
			note:    &NoteRecord{ID: 2, Category: CategorySocialWork},
			wantErr: nil,
		},
		{
			name:    "nil note",
			note:    nil,
			wantErr: ErrInvalidNote,
		},
		{
			name:    "zero row id",
			note:    &NoteRecord{ID: 0, Category: CategoryPhysician},
			wantErr: ErrInvalidNote,
		},
		{
			name:    "unknown category",
			note:    &NoteRecord{ID: 3, Category: Category(9)},
			wantErr: ErrInvalidCategory,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNoteRecord(tt.note)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateNoteRecord() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateNoteRecord() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateLabeledSentence(t *testing.T) {
	tests := []struct {
		name     string
		sentence *LabeledSentence
		wantErr  error
	}{
		{
			name:     "valid",
			sentence: &LabeledSentence{Tokens: []string{"pt", "stable"}, Tag: "5-0"},
		},
		{
			name:     "no tokens",
			sentence: &LabeledSentence{Tag: "5-0"},
			wantErr:  ErrEmptyTokens,
		},
		{
			name:     "bad tag",
			sentence: &LabeledSentence{Tokens: []string{"pt"}, Tag: "five"},
			wantErr:  ErrInvalidTag,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLabeledSentence(tt.sentence)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateLabeledSentence() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateLabeledSentence() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
