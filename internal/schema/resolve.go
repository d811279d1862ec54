package schema

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/go-theft-craft/protocol/internal/errctx"
	"github.com/go-theft-craft/protocol/internal/rawdoc"
)

var terminals = map[string]FieldType{
	"varint":                    Varint,
	"varlong":                   VarLong,
	"u8":                        U8,
	"u16":                       U16,
	"i8":                        I8,
	"i16":                       I16,
	"i32":                       I32,
	"i64":                       I64,
	"f32":                       F32,
	"f64":                       F64,
	"bool":                      Bool,
	"string":                    String,
	"UUID":                      UUID,
	"position":                  Position,
	"restBuffer":                RestBuffer,
	"nbt":                       NBT,
	"optionalNbt":               OptionalNBT,
	"entityMetadata":            EntityMetadata,
	"void":                      Void,
	"slot":                      Slot,
	"tags":                      Tags,
	"minecraft_smelting_format": SmeltingRecipe,
	"ingredient":                Ingredient,
}

var placeholderTags = map[string]Placeholder{
	"particleData":             ParticleData,
	"bitfield":                 Bitfield,
	"topBitSetTerminatedArray": TopBitSetTerminatedArray,
}

type mapping struct {
	id   int64
	name string
}

func (m *mapping) String() string { return m.name }

type packetSwitch struct {
	compareTo string
	fields    rawdoc.Value
}

type resolver struct {
	trail *errctx.Slot
}

// ResolveDirection resolves every packet of one direction namespace and hands
// them to fn in ascending id order. The first failure aborts the walk and is
// returned as *ContextualError.
func ResolveDirection(ns Namespace, dir PacketDirection, fn func(Packet) error) error {
	var trail errctx.Slot
	r := resolver{trail: &trail}
	if err := r.direction(ns, dir, fn); err != nil {
		desc, _ := trail.Take()
		return &ContextualError{Err: err, Trail: desc}
	}
	return nil
}

// ResolveFieldType resolves a single raw type. Sibling references in array
// counts are not checked because there is no enclosing container.
func ResolveFieldType(v rawdoc.Value) (FieldType, error) {
	var trail errctx.Slot
	r := resolver{trail: &trail}
	ft, err := r.fieldType(&v, nil)
	if err != nil {
		desc, _ := trail.Take()
		return nil, &ContextualError{Err: err, Trail: desc}
	}
	return ft, nil
}

func (r resolver) direction(ns Namespace, dir PacketDirection, fn func(Packet) error) error {
	g := r.trail.Enter()
	defer g.Close()

	g.Currently("finding packet map")
	packet, ok := ns.Lookup("packet")
	if !ok {
		return ErrMissingPacketKey
	}
	defs, ok := containerMembers(packet)
	if !ok {
		return &BadStructureError{What: "packet"}
	}

	var (
		mappings []mapping
		sw       *packetSwitch
	)
	for i := range defs {
		def := &defs[i]
		g.CurrentlyWith("parsing packet definition", def)
		ty, ok := def.Get("type")
		if !ok {
			return &DeserializeError{What: "packet definition", Err: fmt.Errorf("missing field `type`")}
		}
		tag, payload, ok := ty.Pair()
		if !ok {
			return &BadStructureError{What: "packet definition"}
		}

		switch tag {
		case "switch":
			g.Currently("parsing packet switch")
			s, err := parsePacketSwitch(payload)
			if err != nil {
				return err
			}
			if sw != nil {
				return &DuplicateError{What: "switch"}
			}
			sw = s
		case "mapper":
			g.Currently("parsing packet mapper")
			m, err := parseMapper(payload)
			if err != nil {
				return err
			}
			if mappings != nil {
				return &DuplicateError{What: "mapper"}
			}
			mappings = m
		default:
			return &UnknownDefinitionError{Tag: tag}
		}
	}

	g.Currently("validating mapper and switch")
	if sw == nil || mappings == nil {
		return ErrBadPacketDefinition
	}

	for i := range mappings {
		m := &mappings[i]
		g.CurrentlyWith("mapping packet", m)
		p, err := r.packet(ns, sw, *m, dir)
		if err != nil {
			return err
		}
		if err := fn(p); err != nil {
			return err
		}
	}

	g.Defuse()
	return nil
}

func (r resolver) packet(ns Namespace, sw *packetSwitch, m mapping, dir PacketDirection) (Packet, error) {
	keyVal, ok := sw.fields.Get(m.name)
	if !ok {
		return Packet{}, &MissingSwitchKeyError{Key: m.name, Switch: "packet lookup"}
	}
	key, ok := keyVal.AsString()
	if !ok {
		return Packet{}, &MissingSwitchKeyError{Key: m.name, Switch: "packet lookup"}
	}
	body, ok := ns.Lookup(key)
	if !ok {
		return Packet{}, &BadStructureError{What: "packet body"}
	}
	members, ok := containerMembers(body)
	if !ok {
		return Packet{}, &BadStructureError{What: "container"}
	}
	if m.id < 0 || m.id > math.MaxUint8 {
		return Packet{}, &InvalidPacketIDError{ID: m.id}
	}

	fields, err := r.members(members)
	if err != nil {
		return Packet{}, err
	}
	return Packet{
		ID:        uint8(m.id),
		Direction: dir,
		Name:      m.name,
		Fields:    fields,
	}, nil
}

// members resolves the `{name, type}` entries of a container in order.
func (r resolver) members(raw []rawdoc.Value) ([]Field, error) {
	fields := make([]Field, 0, len(raw))
	seen := make([]string, 0, len(raw))
	for i := range raw {
		rf := &raw[i]
		name, err := memberName(*rf)
		if err != nil {
			return nil, err
		}
		ty, ok := rf.Lookup("type")
		if !ok {
			return nil, &DeserializeError{What: "field", Err: fmt.Errorf("missing field `type`")}
		}
		ft, err := r.fieldType(ty, seen)
		if err != nil {
			return nil, err
		}
		fields = append(fields, Field{Name: name, Type: ft})
		seen = append(seen, name)
	}
	return fields, nil
}

func memberName(rf rawdoc.Value) (string, error) {
	if rf.Kind() != rawdoc.KindObject {
		return "", &BadStructureError{What: "container field"}
	}
	if n, ok := rf.Get("name"); ok {
		name, ok := n.AsString()
		if !ok {
			return "", &BadStructureError{What: "field name"}
		}
		return name, nil
	}
	if anon, ok := rf.Get("anon"); ok {
		if b, _ := anon.AsBool(); b {
			return "anon", nil
		}
	}
	return "", &BadStructureError{What: "field without name"}
}

// fieldType resolves one raw type. siblings lists the names declared before
// it in the nearest enclosing container; nil disables sibling checks.
func (r resolver) fieldType(v *rawdoc.Value, siblings []string) (FieldType, error) {
	g := r.trail.Enter()
	defer g.Close()
	g.CurrentlyWith("parsing field", v)

	if s, ok := v.AsString(); ok {
		ft, err := terminal(s)
		if err != nil {
			return nil, err
		}
		g.Defuse()
		return ft, nil
	}

	tag, payload, ok := v.PairRef()
	if !ok {
		return nil, &UnknownFieldTypeError{Type: v.String()}
	}

	var (
		ft  FieldType
		err error
	)
	switch tag {
	case "buffer":
		ft, err = r.buffer(payload)
	case "array":
		ft, err = r.array(payload, siblings)
	case "switch":
		ft, err = r.fieldSwitch(payload, siblings)
	case "container":
		elems, ok := payload.AsArray()
		if !ok {
			return nil, &BadStructureError{What: "container"}
		}
		var fields []Field
		fields, err = r.members(elems)
		ft = Container{Fields: fields}
	case "option":
		var inner FieldType
		inner, err = r.fieldType(payload, siblings)
		ft = Option{Inner: inner}
	default:
		p, ok := placeholderTags[tag]
		if !ok {
			return nil, &UnknownFieldTypeError{Type: tag}
		}
		ft = p
	}
	if err != nil {
		return nil, err
	}

	g.Defuse()
	return ft, nil
}

func terminal(s string) (FieldType, error) {
	ft, ok := terminals[s]
	if !ok {
		return nil, &UnknownFieldTypeError{Type: s}
	}
	return ft, nil
}

func (r resolver) buffer(payload *rawdoc.Value) (FieldType, error) {
	ctv, ok := payload.Lookup("countType")
	if !ok {
		return nil, &DeserializeError{What: "buffer", Err: fmt.Errorf("missing field `countType`")}
	}
	if _, ok := ctv.AsString(); !ok {
		return nil, &DeserializeError{What: "buffer", Err: fmt.Errorf("countType is %s, not string", ctv.Kind())}
	}
	ct, err := r.fieldType(ctv, nil)
	if err != nil {
		return nil, err
	}
	return Buffer{CountType: ct}, nil
}

func (r resolver) array(payload *rawdoc.Value, siblings []string) (FieldType, error) {
	if payload.Kind() != rawdoc.KindObject {
		return nil, &BadStructureError{What: "array"}
	}
	countType, hasCountType := payload.Lookup("countType")
	count, hasCount := payload.Lookup("count")

	var ac ArrayCount
	switch {
	case hasCountType && hasCount:
		return nil, &BadArrayCountError{Reason: "both countType and count given"}
	case hasCountType:
		if _, ok := countType.AsString(); !ok {
			return nil, &BadArrayCountError{Reason: "countType must be a type name"}
		}
		ct, err := r.fieldType(countType, nil)
		if err != nil {
			return nil, err
		}
		ac = PrefixedCount{Type: ct}
	case hasCount:
		c, err := arrayCount(*count, siblings)
		if err != nil {
			return nil, err
		}
		ac = c
	default:
		return nil, &BadArrayCountError{Reason: "expected either countType or count"}
	}

	elem, ok := payload.Lookup("type")
	if !ok {
		return nil, &DeserializeError{What: "array", Err: fmt.Errorf("missing field `type`")}
	}
	et, err := r.fieldType(elem, siblings)
	if err != nil {
		return nil, err
	}
	return Array{Count: ac, Elem: et}, nil
}

func arrayCount(count rawdoc.Value, siblings []string) (ArrayCount, error) {
	if n, ok := count.AsInt(); ok {
		if n < 0 {
			return nil, &BadArrayCountError{Reason: fmt.Sprintf("negative count %d", n)}
		}
		return ConstantCount{N: int(n)}, nil
	}
	name, ok := count.AsString()
	if !ok {
		return nil, &BadArrayCountError{Reason: "count must be an integer or a field name, got " + count.String()}
	}
	// Path references ("../x") point outside the container and are left to
	// the consumer.
	if siblings != nil && !strings.Contains(name, "/") && !contains(siblings, name) {
		return nil, &BadArrayCountError{Reason: fmt.Sprintf("count field '%s' is not declared before the array", name)}
	}
	return FieldRefCount{Name: name}, nil
}

func (r resolver) fieldSwitch(payload *rawdoc.Value, siblings []string) (FieldType, error) {
	cmp, ok := payload.Get("compareTo")
	if !ok {
		return nil, &DeserializeError{What: "switch", Err: fmt.Errorf("missing field `compareTo`")}
	}
	compareTo, ok := cmp.AsString()
	if !ok {
		return nil, &DeserializeError{What: "switch", Err: fmt.Errorf("compareTo is %s, not string", cmp.Kind())}
	}

	sw := Switch{CompareTo: compareTo}
	if fv, ok := payload.Get("fields"); ok {
		cases, ok := fv.AsObject()
		if !ok {
			return nil, &DeserializeError{What: "switch", Err: fmt.Errorf("fields is %s, not object", fv.Kind())}
		}
		sw.Cases = make([]SwitchCase, 0, len(cases))
		for i := range cases {
			c := &cases[i]
			ft, err := r.fieldType(&c.Value, siblings)
			if err != nil {
				return nil, err
			}
			sw.Cases = append(sw.Cases, SwitchCase{Value: c.Key, Type: Voidable(ft)})
		}
	} else {
		return nil, &DeserializeError{What: "switch", Err: fmt.Errorf("missing field `fields`")}
	}

	if dv, ok := payload.Lookup("default"); ok {
		ft, err := r.fieldType(dv, siblings)
		if err != nil {
			return nil, err
		}
		def := Voidable(ft)
		sw.Default = &def
	}
	return sw, nil
}

func parsePacketSwitch(payload rawdoc.Value) (*packetSwitch, error) {
	cmp, ok := payload.Get("compareTo")
	if !ok {
		return nil, &DeserializeError{What: "switch", Err: fmt.Errorf("missing field `compareTo`")}
	}
	compareTo, ok := cmp.AsString()
	if !ok {
		return nil, &DeserializeError{What: "switch", Err: fmt.Errorf("compareTo is %s, not string", cmp.Kind())}
	}
	fields, ok := payload.Get("fields")
	if !ok || fields.Kind() != rawdoc.KindObject {
		return nil, &DeserializeError{What: "switch", Err: fmt.Errorf("missing field `fields`")}
	}
	return &packetSwitch{compareTo: compareTo, fields: fields}, nil
}

// parseMapper decodes `{type: "varint", mappings: {"0x00": "name", ...}}` into
// mappings sorted by id.
func parseMapper(payload rawdoc.Value) ([]mapping, error) {
	tv, ok := payload.Get("type")
	if !ok {
		return nil, &DeserializeError{What: "mapper", Err: fmt.Errorf("missing field `type`")}
	}
	ty, ok := tv.AsString()
	if !ok {
		return nil, &DeserializeError{What: "mapper", Err: fmt.Errorf("type is %s, not string", tv.Kind())}
	}
	mv, ok := payload.Get("mappings")
	if !ok {
		return nil, &DeserializeError{What: "mapper", Err: fmt.Errorf("missing field `mappings`")}
	}
	raw, ok := mv.AsObject()
	if !ok {
		return nil, &DeserializeError{What: "mapper", Err: fmt.Errorf("mappings is %s, not object", mv.Kind())}
	}
	if ty != "varint" {
		return nil, &UnknownMapperError{Type: ty}
	}

	mappings := make([]mapping, 0, len(raw))
	seen := make(map[int64]bool, len(raw))
	for _, m := range raw {
		id, err := strconv.ParseInt(strings.TrimPrefix(m.Key, "0x"), 16, 32)
		if err != nil {
			return nil, &BadStructureError{What: "packet mappings"}
		}
		name, ok := m.Value.AsString()
		if !ok || seen[id] {
			return nil, &BadStructureError{What: "packet mappings"}
		}
		seen[id] = true
		mappings = append(mappings, mapping{id: id, name: name})
	}
	sort.Slice(mappings, func(i, j int) bool { return mappings[i].id < mappings[j].id })
	return mappings, nil
}

func containerMembers(v rawdoc.Value) ([]rawdoc.Value, bool) {
	payload, ok := v.PairOf("container")
	if !ok {
		return nil, false
	}
	return payload.AsArray()
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
