// Package schema resolves a minecraft-data protocol description into typed
// packet layouts.
package schema

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/go-theft-craft/protocol/internal/rawdoc"
)

// StateNames lists the connection states in traversal order.
var StateNames = [...]string{"handshaking", "status", "login", "play"}

// Version is the content of version.json.
type Version struct {
	MinecraftVersion string `json:"minecraftVersion" yaml:"minecraftVersion"`
	Version          int    `json:"version" yaml:"version"`
	MajorVersion     string `json:"majorVersion" yaml:"majorVersion"`
}

// Namespace is an ordered set of named type definitions.
type Namespace struct {
	members []rawdoc.Member
	index   map[string]int
}

// NewNamespace indexes members. On duplicate names the first one wins.
func NewNamespace(members []rawdoc.Member) Namespace {
	index := make(map[string]int, len(members))
	for i, m := range members {
		if _, ok := index[m.Key]; !ok {
			index[m.Key] = i
		}
	}
	return Namespace{members: members, index: index}
}

func (n Namespace) Lookup(name string) (rawdoc.Value, bool) {
	i, ok := n.index[name]
	if !ok {
		return rawdoc.Value{}, false
	}
	return n.members[i].Value, true
}

func (n Namespace) Len() int { return len(n.members) }

// Names returns the type names in document order.
func (n Namespace) Names() []string {
	names := make([]string, len(n.members))
	for i, m := range n.members {
		names[i] = m.Key
	}
	return names
}

// State is one connection state with its two direction namespaces.
type State struct {
	Name     string
	ToClient Namespace
	ToServer Namespace
}

// Schema is a parsed protocol and version document pair. It is immutable.
type Schema struct {
	types   Namespace
	states  [len(StateNames)]State
	version Version
}

// Load parses protocol.json and version.json documents.
func Load(protocol, version io.Reader) (*Schema, error) {
	var v Version
	if err := json.NewDecoder(version).Decode(&v); err != nil {
		return nil, &DeserializeError{What: "version", Err: err}
	}
	root, err := rawdoc.DecodeJSON(protocol)
	if err != nil {
		return nil, &DeserializeError{What: "protocol", Err: err}
	}
	return New(root, v)
}

// LoadYAML is Load for YAML renditions of the same documents.
func LoadYAML(protocol, version io.Reader) (*Schema, error) {
	var v Version
	if err := yaml.NewDecoder(version).Decode(&v); err != nil {
		return nil, &DeserializeError{What: "version", Err: err}
	}
	root, err := rawdoc.DecodeYAML(protocol)
	if err != nil {
		return nil, &DeserializeError{What: "protocol", Err: err}
	}
	return New(root, v)
}

// LoadDir loads protocol and version documents from a minecraft-data version
// directory such as data/pc/1.12.2. JSON is preferred over YAML.
func LoadDir(fsys afero.Fs, dir string) (*Schema, error) {
	for _, ext := range []string{".json", ".yaml", ".yml"} {
		protoPath := filepath.Join(dir, "protocol"+ext)
		ok, err := afero.Exists(fsys, protoPath)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", protoPath, err)
		}
		if !ok {
			continue
		}

		versionPath := filepath.Join(dir, "version"+ext)
		pf, err := fsys.Open(protoPath)
		if err != nil {
			return nil, fmt.Errorf("open protocol: %w", err)
		}
		defer pf.Close()
		vf, err := fsys.Open(versionPath)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("version%s not found within protocol dir '%s'", ext, dir)
			}
			return nil, fmt.Errorf("open version: %w", err)
		}
		defer vf.Close()

		if ext == ".json" {
			return Load(pf, vf)
		}
		return LoadYAML(pf, vf)
	}
	return nil, fmt.Errorf("protocol.json not found within protocol dir '%s'", dir)
}

// New builds a Schema from an already decoded protocol document.
func New(root rawdoc.Value, v Version) (*Schema, error) {
	if root.Kind() != rawdoc.KindObject {
		return nil, &BadStructureError{What: "protocol root"}
	}
	s := &Schema{version: v}

	types, err := typesOf(root, "types")
	if err != nil {
		return nil, err
	}
	s.types = types

	for i, name := range StateNames {
		raw, ok := root.Get(name)
		if !ok {
			return nil, &BadStructureError{What: "state " + name}
		}
		toClient, err := directionOf(raw, name, "toClient")
		if err != nil {
			return nil, err
		}
		toServer, err := directionOf(raw, name, "toServer")
		if err != nil {
			return nil, err
		}
		s.states[i] = State{Name: name, ToClient: toClient, ToServer: toServer}
	}
	return s, nil
}

func directionOf(state rawdoc.Value, stateName, dir string) (Namespace, error) {
	raw, ok := state.Get(dir)
	if !ok {
		return Namespace{}, &BadStructureError{What: stateName + "." + dir}
	}
	return typesOf(raw, stateName+"."+dir+".types")
}

func typesOf(v rawdoc.Value, what string) (Namespace, error) {
	raw, ok := v.Get("types")
	if !ok {
		return Namespace{}, &BadStructureError{What: what}
	}
	members, ok := raw.AsObject()
	if !ok {
		return Namespace{}, &BadStructureError{What: what}
	}
	return NewNamespace(members), nil
}

func (s *Schema) Version() Version { return s.version }

// Types is the protocol-wide type namespace.
func (s *Schema) Types() Namespace { return s.types }

// PerState calls fn for each state in traversal order, stopping at the first error.
func (s *Schema) PerState(fn func(name string, st State) error) error {
	for _, st := range s.states {
		if err := fn(st.Name, st); err != nil {
			return err
		}
	}
	return nil
}

// PerPacket resolves the clientbound then the serverbound packets of the
// state, handing each to fn in ascending id order. Errors are returned as
// *ContextualError.
func (st State) PerPacket(fn func(Packet) error) error {
	if err := ResolveDirection(st.ToClient, Clientbound, fn); err != nil {
		return err
	}
	return ResolveDirection(st.ToServer, Serverbound, fn)
}
