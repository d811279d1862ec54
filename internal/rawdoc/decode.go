package rawdoc

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// ErrTrailingData is returned when a JSON document has content after its root value.
var ErrTrailingData = errors.New("rawdoc: trailing data after document")

// DecodeJSON reads one JSON document. Object member order is preserved,
// which encoding/json's map decoding would lose.
func DecodeJSON(r io.Reader) (Value, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return Value{}, fmt.Errorf("read json: %w", err)
	}
	v, err := decodeToken(dec, tok)
	if err != nil {
		return Value{}, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err != nil {
			return Value{}, fmt.Errorf("read json: %w", err)
		}
		return Value{}, ErrTrailingData
	}
	return v, nil
}

func decodeToken(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		default:
			return Value{}, fmt.Errorf("read json: unexpected delimiter %q", rune(t))
		}
	case string:
		return String(t), nil
	case json.Number:
		return Number(string(t)), nil
	case float64:
		return Number(strconv.FormatFloat(t, 'g', -1, 64)), nil
	case bool:
		return Bool(t), nil
	case nil:
		return Null(), nil
	default:
		return Value{}, fmt.Errorf("read json: unexpected token %T", tok)
	}
}

func decodeObject(dec *json.Decoder) (Value, error) {
	var members []Member
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return Value{}, fmt.Errorf("read json object key: %w", err)
		}
		key, ok := kt.(string)
		if !ok {
			return Value{}, fmt.Errorf("read json: object key is %T, not string", kt)
		}
		vt, err := dec.Token()
		if err != nil {
			return Value{}, fmt.Errorf("read json member %q: %w", key, err)
		}
		v, err := decodeToken(dec, vt)
		if err != nil {
			return Value{}, err
		}
		members = append(members, Member{Key: key, Value: v})
	}
	if _, err := dec.Token(); err != nil {
		return Value{}, fmt.Errorf("read json object end: %w", err)
	}
	return Object(members...), nil
}

func decodeArray(dec *json.Decoder) (Value, error) {
	var elems []Value
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Value{}, fmt.Errorf("read json array element: %w", err)
		}
		v, err := decodeToken(dec, tok)
		if err != nil {
			return Value{}, err
		}
		elems = append(elems, v)
	}
	if _, err := dec.Token(); err != nil {
		return Value{}, fmt.Errorf("read json array end: %w", err)
	}
	return Array(elems...), nil
}

// DecodeYAML reads the first YAML document. Mapping order is preserved.
func DecodeYAML(r io.Reader) (Value, error) {
	var node yaml.Node
	if err := yaml.NewDecoder(r).Decode(&node); err != nil {
		return Value{}, fmt.Errorf("read yaml: %w", err)
	}
	return fromYAML(&node)
}

func fromYAML(n *yaml.Node) (Value, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Null(), nil
		}
		return fromYAML(n.Content[0])
	case yaml.AliasNode:
		return fromYAML(n.Alias)
	case yaml.SequenceNode:
		elems := make([]Value, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := fromYAML(c)
			if err != nil {
				return Value{}, err
			}
			elems = append(elems, v)
		}
		return Array(elems...), nil
	case yaml.MappingNode:
		if len(n.Content)%2 != 0 {
			return Value{}, fmt.Errorf("read yaml: line %d: odd mapping content", n.Line)
		}
		members := make([]Member, 0, len(n.Content)/2)
		for i := 0; i < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if k.Kind != yaml.ScalarNode {
				return Value{}, fmt.Errorf("read yaml: line %d: mapping key is not a scalar", k.Line)
			}
			val, err := fromYAML(v)
			if err != nil {
				return Value{}, err
			}
			members = append(members, Member{Key: k.Value, Value: val})
		}
		return Object(members...), nil
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!null":
			return Null(), nil
		case "!!bool":
			var b bool
			if err := n.Decode(&b); err != nil {
				return Value{}, fmt.Errorf("read yaml: line %d: %w", n.Line, err)
			}
			return Bool(b), nil
		case "!!int", "!!float":
			return Number(n.Value), nil
		default:
			return String(n.Value), nil
		}
	default:
		return Value{}, fmt.Errorf("read yaml: line %d: unsupported node kind %d", n.Line, n.Kind)
	}
}
