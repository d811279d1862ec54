package schema

import (
	"fmt"
	"strings"
)

// FieldType is a resolved field layout. The set of implementations is closed:
// Terminal, Placeholder, Buffer, Array, Switch, Option and Container.
type FieldType interface {
	fmt.Stringer
	isFieldType()
}

// Terminal is a field kind with a fixed codec.
type Terminal uint8

const (
	Varint Terminal = iota
	VarLong
	U8
	U16
	I8
	I16
	I32
	I64
	F32
	F64
	Bool
	String
	UUID
	Position
	RestBuffer
	NBT
	OptionalNBT
	EntityMetadata
	Void
)

var terminalNames = [...]string{
	Varint:         "Varint",
	VarLong:        "VarLong",
	U8:             "U8",
	U16:            "U16",
	I8:             "I8",
	I16:            "I16",
	I32:            "I32",
	I64:            "I64",
	F32:            "F32",
	F64:            "F64",
	Bool:           "Bool",
	String:         "String",
	UUID:           "UUID",
	Position:       "Position",
	RestBuffer:     "RestBuffer",
	NBT:            "NBT",
	OptionalNBT:    "OptionalNBT",
	EntityMetadata: "EntityMetadata",
	Void:           "Void",
}

func (t Terminal) String() string {
	if int(t) < len(terminalNames) {
		return terminalNames[t]
	}
	return fmt.Sprintf("Terminal(%d)", uint8(t))
}

// Placeholder marks kinds that are deliberately left undecomposed.
type Placeholder uint8

const (
	ParticleData Placeholder = iota
	Bitfield
	Slot
	TopBitSetTerminatedArray
	Tags
	SmeltingRecipe
	Ingredient
)

var placeholderNames = [...]string{
	ParticleData:             "ParticleData",
	Bitfield:                 "Bitfield",
	Slot:                     "Slot",
	TopBitSetTerminatedArray: "TopBitSetTerminatedArray",
	Tags:                     "Tags",
	SmeltingRecipe:           "SmeltingRecipe",
	Ingredient:               "Ingredient",
}

func (p Placeholder) String() string {
	if int(p) < len(placeholderNames) {
		return placeholderNames[p]
	}
	return fmt.Sprintf("Placeholder(%d)", uint8(p))
}

// Buffer is a byte buffer prefixed by a count of CountType.
type Buffer struct {
	CountType FieldType
}

// Array is a sequence of Elem whose length is given by Count.
type Array struct {
	Count ArrayCount
	Elem  FieldType
}

// ArrayCount is one of PrefixedCount, ConstantCount or FieldRefCount.
type ArrayCount interface {
	fmt.Stringer
	isArrayCount()
}

// PrefixedCount: the length is written before the elements.
type PrefixedCount struct {
	Type FieldType
}

// ConstantCount: the length is fixed by the schema.
type ConstantCount struct {
	N int
}

// FieldRefCount: the length is the value of an earlier sibling field.
type FieldRefCount struct {
	Name string
}

// Switch picks its layout from the runtime value of CompareTo.
type Switch struct {
	CompareTo string
	Cases     []SwitchCase
	Default   *VoidableType // nil when the schema has no default
}

// SwitchCase is one `value: type` entry of a switch, in document order.
type SwitchCase struct {
	Value string
	Type  VoidableType
}

// VoidableType distinguishes a case that legitimately carries nothing (Void)
// from one that is absent altogether.
type VoidableType struct {
	Void    bool
	Present FieldType
}

// Voidable wraps ft, folding the Void terminal into the Void flag.
func Voidable(ft FieldType) VoidableType {
	if ft == Void {
		return VoidableType{Void: true}
	}
	return VoidableType{Present: ft}
}

func (v VoidableType) String() string {
	if v.Void {
		return "Void"
	}
	return v.Present.String()
}

// Option is a bool-prefixed optional value.
type Option struct {
	Inner FieldType
}

// Container is an ordered, named sequence of fields.
type Container struct {
	Fields []Field
}

// Field is a named member of a packet body or container.
type Field struct {
	Name string
	Type FieldType
}

func (Terminal) isFieldType()    {}
func (Placeholder) isFieldType() {}
func (Buffer) isFieldType()      {}
func (Array) isFieldType()       {}
func (Switch) isFieldType()      {}
func (Option) isFieldType()      {}
func (Container) isFieldType()   {}

func (PrefixedCount) isArrayCount() {}
func (ConstantCount) isArrayCount() {}
func (FieldRefCount) isArrayCount() {}

func (b Buffer) String() string { return fmt.Sprintf("Buffer<%s>", b.CountType) }

func (a Array) String() string { return fmt.Sprintf("Array<%s; %s>", a.Elem, a.Count) }

func (c PrefixedCount) String() string { return "prefixed " + c.Type.String() }
func (c ConstantCount) String() string { return fmt.Sprintf("%d", c.N) }
func (c FieldRefCount) String() string { return "field " + c.Name }

func (o Option) String() string { return fmt.Sprintf("Option<%s>", o.Inner) }

func (s Switch) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Switch<%s>{", s.CompareTo)
	for i, c := range s.Cases {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %s", c.Value, c.Type)
	}
	if s.Default != nil {
		if len(s.Cases) > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "default: %s", s.Default)
	}
	b.WriteByte('}')
	return b.String()
}

func (c Container) String() string {
	var b strings.Builder
	b.WriteString("Container{")
	for i, f := range c.Fields {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %s", f.Name, f.Type)
	}
	b.WriteByte('}')
	return b.String()
}

// IsPlaceholder reports whether ft is, or contains, an opaque placeholder kind.
func IsPlaceholder(ft FieldType) bool {
	switch t := ft.(type) {
	case Placeholder:
		return true
	case Buffer:
		return IsPlaceholder(t.CountType)
	case Array:
		if p, ok := t.Count.(PrefixedCount); ok && IsPlaceholder(p.Type) {
			return true
		}
		return IsPlaceholder(t.Elem)
	case Option:
		return IsPlaceholder(t.Inner)
	case Switch:
		for _, c := range t.Cases {
			if !c.Type.Void && IsPlaceholder(c.Type.Present) {
				return true
			}
		}
		return t.Default != nil && !t.Default.Void && IsPlaceholder(t.Default.Present)
	case Container:
		for _, f := range t.Fields {
			if IsPlaceholder(f.Type) {
				return true
			}
		}
	}
	return false
}

// PacketDirection says who sends a packet.
type PacketDirection uint8

const (
	Clientbound PacketDirection = iota
	Serverbound
)

func (d PacketDirection) String() string {
	if d == Serverbound {
		return "serverbound"
	}
	return "clientbound"
}

// Packet is one resolved packet of a state and direction.
type Packet struct {
	ID        uint8
	Direction PacketDirection
	Name      string // snake case, as in the schema
	Fields    []Field
}
