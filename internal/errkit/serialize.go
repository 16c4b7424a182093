package errkit

import (
	"encoding/json"
	"fmt"
)

// SerializableError is the JSON wire form of a CoreError.
type SerializableError struct {
	Code         string            `json:"code"`
	Class        string            `json:"class"`
	Message      string            `json:"message"`
	RecoveryHint string            `json:"recovery_hint,omitempty"`
	Context      map[string]string `json:"context,omitempty"`
	Cause        string            `json:"cause,omitempty"`
}

// ToSerializable converts any error to its wire form. Non-CoreErrors are
// wrapped as an internal error so callers always get a well-formed
// document back.
func ToSerializable(err error) *SerializableError {
	if err == nil {
		return nil
	}
	ce, ok := err.(*CoreError)
	if !ok {
		return &SerializableError{
			Code:    string(ErrInternal),
			Class:   string(ClassRuntime),
			Message: err.Error(),
		}
	}
	out := &SerializableError{
		Code:         string(ce.Code),
		Class:        string(ce.Class()),
		Message:      ce.Message,
		RecoveryHint: ce.RecoveryHint(),
		Context:      ce.Context,
	}
	if ce.Cause != nil {
		out.Cause = ce.Cause.Error()
	}
	return out
}

// FromSerializable reconstructs a CoreError from its wire form.
func FromSerializable(se *SerializableError) *CoreError {
	if se == nil {
		return nil
	}
	code := ErrorCode(se.Code)
	if !code.IsValid() {
		code = ErrInternal
	}
	var cause error
	if se.Cause != "" {
		cause = fmt.Errorf("%s", se.Cause)
	}
	return &CoreError{Code: code, Message: se.Message, Cause: cause, Context: se.Context}
}

// MarshalJSON implements json.Marshaler.
func (e *CoreError) MarshalJSON() ([]byte, error) {
	return json.Marshal(ToSerializable(e))
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *CoreError) UnmarshalJSON(data []byte) error {
	var se SerializableError
	if err := json.Unmarshal(data, &se); err != nil {
		return err
	}
	parsed := FromSerializable(&se)
	e.Code = parsed.Code
	e.Message = parsed.Message
	e.Cause = parsed.Cause
	e.Context = parsed.Context
	return nil
}

// ToJSON renders err as an indented JSON document.
func ToJSON(err error) (string, error) {
	data, mErr := json.MarshalIndent(ToSerializable(err), "", "  ")
	if mErr != nil {
		return "", fmt.Errorf("marshal error: %w", mErr)
	}
	return string(data), nil
}

// FromJSON parses an error document previously produced by ToJSON.
func FromJSON(s string) (*CoreError, error) {
	var se SerializableError
	if err := json.Unmarshal([]byte(s), &se); err != nil {
		return nil, fmt.Errorf("unmarshal error: %w", err)
	}
	return FromSerializable(&se), nil
}

// ValidateSerializationContract round-trips a CoreError and reports any
// mismatch; used by tests to guard the wire-contract invariant.
func ValidateSerializationContract(ce *CoreError) error {
	s, err := ToJSON(ce)
	if err != nil {
		return fmt.Errorf("serialize: %w", err)
	}
	parsed, err := FromJSON(s)
	if err != nil {
		return fmt.Errorf("deserialize: %w", err)
	}
	if parsed.Code != ce.Code {
		return fmt.Errorf("code mismatch: got %s, want %s", parsed.Code, ce.Code)
	}
	if parsed.Message != ce.Message {
		return fmt.Errorf("message mismatch: got %s, want %s", parsed.Message, ce.Message)
	}
	return nil
}
