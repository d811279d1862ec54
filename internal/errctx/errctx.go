// Package errctx records a one-line "what was happening" trail for the first
// error that escapes a multi-step operation.
//
// A Slot is owned by the outermost operation. Each nested step opens a Guard,
// describes what it is doing, and defers Close. Steps that succeed call Defuse
// so that nothing is recorded. When an error unwinds through several guards,
// the innermost one closes first and its description is kept.
package errctx

import "fmt"

// Slot holds at most one description. It is not safe for concurrent use.
type Slot struct {
	desc string
	set  bool
}

// Enter opens a guard bound to s.
func (s *Slot) Enter() Guard {
	return Guard{slot: s}
}

// Take returns the recorded description, if any, and empties the slot.
func (s *Slot) Take() (string, bool) {
	desc, ok := s.desc, s.set
	s.desc, s.set = "", false
	return desc, ok
}

// Guard is one scoped step. Use it through a local variable:
//
//	g := slot.Enter()
//	defer g.Close()
//	g.Currently("parsing switch")
//	...
//	g.Defuse()
type Guard struct {
	slot    *Slot
	what    string
	arg     fmt.Stringer
	defused bool
}

// Currently replaces the step description.
func (g *Guard) Currently(what string) {
	g.what, g.arg = what, nil
}

// CurrentlyWith replaces the step description and attaches arg, which is only
// rendered if the description ends up in the slot. Pass a pointer to data that
// already lives on the heap so that successful steps do not allocate.
func (g *Guard) CurrentlyWith(what string, arg fmt.Stringer) {
	g.what, g.arg = what, arg
}

// Defuse marks the step as successful.
func (g *Guard) Defuse() {
	g.defused = true
}

// Close writes the description into the slot unless the guard was defused,
// has nothing to say, or a deeper guard already wrote one.
func (g *Guard) Close() {
	if g.defused || g.what == "" || g.slot.set {
		return
	}
	g.slot.set = true
	if g.arg != nil {
		g.slot.desc = g.what + ": " + g.arg.String()
	} else {
		g.slot.desc = g.what
	}
}
