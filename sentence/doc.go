// Package sentence turns clinical note text into the labeled sentences that
// make up a training corpus.
//
// Each note is split into sentences, each sentence is cleaned into lowercase
// ASCII-letter tokens, and every sentence with at least one token is tagged
// "{note_id}-{sentence_index}". Sentences that clean to nothing are dropped
// but still count toward the indices of later sentences in the note.
package sentence
