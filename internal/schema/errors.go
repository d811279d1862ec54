package schema

import (
	"errors"
	"fmt"
)

var (
	ErrMissingPacketKey    = errors.New("missing 'packet' key")
	ErrBadPacketDefinition = errors.New("missing switch or mapper definition for packets")
)

// BadStructureError reports a document node that does not have the expected shape.
type BadStructureError struct {
	What string
}

func (e *BadStructureError) Error() string {
	return "bad structure: " + e.What
}

// DeserializeError reports a node that could not be decoded into What.
type DeserializeError struct {
	What string
	Err  error
}

func (e *DeserializeError) Error() string {
	return fmt.Sprintf("failed to deserialize %s: %v", e.What, e.Err)
}

func (e *DeserializeError) Unwrap() error { return e.Err }

// DuplicateError reports a second mapper or switch in one packet definition.
type DuplicateError struct {
	What string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate object '%s'", e.What)
}

type UnknownMapperError struct {
	Type string
}

func (e *UnknownMapperError) Error() string {
	return fmt.Sprintf("unknown mapper type '%s'", e.Type)
}

type UnknownDefinitionError struct {
	Tag string
}

func (e *UnknownDefinitionError) Error() string {
	return fmt.Sprintf("unknown packet definition '%s'", e.Tag)
}

type UnknownFieldTypeError struct {
	Type string
}

func (e *UnknownFieldTypeError) Error() string {
	return fmt.Sprintf("unknown field type '%s'", e.Type)
}

// MissingSwitchKeyError reports a mapped packet name with no body in the switch.
type MissingSwitchKeyError struct {
	Key    string
	Switch string
}

func (e *MissingSwitchKeyError) Error() string {
	return fmt.Sprintf("missing key '%s' in switch %s", e.Key, e.Switch)
}

type InvalidPacketIDError struct {
	ID int64
}

func (e *InvalidPacketIDError) Error() string {
	return fmt.Sprintf("invalid packet ID %#x", e.ID)
}

// BadArrayCountError reports an array whose count is malformed.
type BadArrayCountError struct {
	Reason string
}

func (e *BadArrayCountError) Error() string {
	return "bad array count: " + e.Reason
}

// ContextualError pairs a resolution failure with the innermost step that was
// running when it happened.
type ContextualError struct {
	Err   error
	Trail string
}

func (e *ContextualError) Error() string {
	if e.Trail == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%v (while %s)", e.Err, e.Trail)
}

func (e *ContextualError) Unwrap() error { return e.Err }
