// Package types holds the shared data model for the practice engine.
package types

import "fmt"

// LessonKind identifies which practice flow a session belongs to.
type LessonKind string

const (
	// KindTuner is the string-by-string tuning flow.
	KindTuner LessonKind = "tuner"
	// KindChordLesson is the chord practice flow.
	KindChordLesson LessonKind = "chord-lesson"
	// KindNoteLesson is the single-note practice flow.
	KindNoteLesson LessonKind = "note-lesson"
)

// Target is the thing being practiced this turn: a string number, a chord
// name, or a note name. Immutable per turn; the processor replaces it each
// turn with the server's decision.
type Target struct {
	// Kind is the lesson flow this target belongs to.
	Kind LessonKind `json:"kind"`

	// Name identifies the target: "6" for a string, "C" for a note or chord.
	Name string `json:"name"`

	// WholeChord marks a chord practiced as one strum rather than
	// string-by-string. Chord lessons only.
	WholeChord bool `json:"whole_chord,omitempty"`

	// StringNum is the sub-string being checked when a chord is practiced
	// string-by-string. Zero when not applicable.
	StringNum int `json:"string_num,omitempty"`

	// Bootstrap marks the sentinel target used for the very first call of a
	// session, which requests the initial prompt without a real recording.
	Bootstrap bool `json:"bootstrap,omitempty"`
}

// BootstrapTarget returns the sentinel target that opens a session. The
// sentinel value is lesson-specific ("0" for the tuner, "AA" for the
// single-note lesson).
func BootstrapTarget(kind LessonKind, sentinel string) Target {
	return Target{Kind: kind, Name: sentinel, Bootstrap: true}
}

// Key returns the progress bookkeeping key for the target. Chord sub-string
// turns roll up to their chord, matching how completion is tracked.
func (t Target) Key() string {
	return t.Name
}

// String returns a human-readable target description.
func (t Target) String() string {
	if t.Bootstrap {
		return fmt.Sprintf("%s bootstrap(%s)", t.Kind, t.Name)
	}
	if t.Kind == KindChordLesson && !t.WholeChord && t.StringNum > 0 {
		return fmt.Sprintf("%s %s/string-%d", t.Kind, t.Name, t.StringNum)
	}
	return fmt.Sprintf("%s %s", t.Kind, t.Name)
}

// IsZero reports whether the target is unset.
func (t Target) IsZero() bool {
	return t.Name == "" && !t.Bootstrap
}
