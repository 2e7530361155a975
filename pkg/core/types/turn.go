package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// TurnResult is the analysis response for one submitted recording. It is
// transient: consumed once by the processor and then discarded.
type TurnResult struct {
	// Success reports whether the learner's attempt passed analysis.
	Success bool `json:"success"`

	// NextTarget is the server's choice of target for the next turn. Empty
	// means the lesson has nothing further to practice.
	NextTarget string `json:"next_target"`

	// PromptAsset references the audio prompt to play next. May name an
	// asset that has not finished generating yet; empty means no prompt.
	PromptAsset string `json:"audio_path"`

	// SessionFinished is authoritative: when set the session terminates
	// regardless of per-target state.
	SessionFinished bool `json:"session_finished"`

	// Deviation is the optional numeric error for UI feedback, e.g. tuning
	// cents offset. Nil when the lesson does not measure one.
	Deviation *float64 `json:"deviation,omitempty"`

	// WholeChord, when present, switches the chord flow between whole-strum
	// and string-by-string practice for the next turn.
	WholeChord *bool `json:"whole_chord,omitempty"`

	// NextString is the sub-string to check next in string-by-string chord
	// practice. Zero when not applicable.
	NextString int `json:"next_string,omitempty"`
}

// TurnDecodeError is returned when a turn response violates the contract.
type TurnDecodeError struct {
	Field   string
	Message string
}

func (e *TurnDecodeError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

func decodeErr(field, msg string) error {
	return &TurnDecodeError{Field: field, Message: msg}
}

func isNullOrEmptyJSON(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// DecodeTurnResult deserializes a turn response and rejects payloads missing
// the required fields. audio_path and next_target may be null or empty; the
// presence of success and session_finished is mandatory.
func DecodeTurnResult(data []byte) (*TurnResult, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, decodeErr("", "response is not a JSON object")
	}

	for _, field := range []string{"success", "session_finished"} {
		v, ok := raw[field]
		if !ok || isNullOrEmptyJSON(v) {
			return nil, decodeErr(field, "required field missing")
		}
	}
	if _, ok := raw["next_target"]; !ok {
		return nil, decodeErr("next_target", "required field missing")
	}

	var result TurnResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, decodeErr("", err.Error())
	}
	return &result, nil
}
