package models

import (
	"encoding/json"
	"strings"
)

// NotesKind discriminates the two historical shapes of session notes: a plain
// freeform string on the session row, or threaded rows in session_notes.
type NotesKind string

const (
	NotesKindNone     NotesKind = "none"
	NotesKindFreeform NotesKind = "freeform"
	NotesKindThreaded NotesKind = "threaded"
)

// Notes is a tagged variant over the two note shapes. The source relied on
// runtime type inspection; here the shape is explicit and conversion goes
// through Flatten.
type Notes struct {
	Kind   NotesKind      `json:"kind"`
	Text   string         `json:"text,omitempty"`
	Thread []*SessionNote `json:"thread,omitempty"`
}

// NoNotes returns the empty variant
func NoNotes() Notes {
	return Notes{Kind: NotesKindNone}
}

// FreeformNotes wraps a plain-text note; empty text collapses to NoNotes
func FreeformNotes(text string) Notes {
	if text == "" {
		return NoNotes()
	}
	return Notes{Kind: NotesKindFreeform, Text: text}
}

// ThreadedNotes wraps structured note rows; an empty thread collapses to NoNotes
func ThreadedNotes(thread []*SessionNote) Notes {
	if len(thread) == 0 {
		return NoNotes()
	}
	return Notes{Kind: NotesKindThreaded, Thread: thread}
}

// Flatten converts either variant to plain text. Threaded notes join their
// contents with blank lines, oldest first.
func (n Notes) Flatten() string {
	switch n.Kind {
	case NotesKindFreeform:
		return n.Text
	case NotesKindThreaded:
		parts := make([]string, 0, len(n.Thread))
		for _, note := range n.Thread {
			parts = append(parts, note.Content)
		}
		return strings.Join(parts, "\n\n")
	default:
		return ""
	}
}

// IsEmpty reports whether there is no note content at all
func (n Notes) IsEmpty() bool {
	return n.Kind == NotesKindNone
}

// MarshalJSON keeps the zero value compact
func (n Notes) MarshalJSON() ([]byte, error) {
	type alias Notes
	return json.Marshal(alias(n))
}

// UnmarshalJSON restores the variant, normalizing an absent kind to none
func (n *Notes) UnmarshalJSON(data []byte) error {
	type alias Notes
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*n = Notes(a)
	if n.Kind == "" {
		n.Kind = NotesKindNone
	}
	return nil
}
