package generator

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"go/format"
	"log/slog"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/serenize/snaker"
	"github.com/spf13/afero"

	"github.com/go-theft-craft/protocol/internal/schema"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Target says where the packages for one protocol version are written:
// <OutDir>/<Package>/version.go and <OutDir>/<Package>/<state>/packets.go.
type Target struct {
	OutDir  string
	Package string
}

// Stats summarises one Run.
type Stats struct {
	Packets int
	Markers int // fields left as TODO markers
}

// Generator turns resolved schemas into Go packages built on pkg/protocol.
// It is safe for concurrent use as long as targets do not overlap.
type Generator struct {
	fs   afero.Fs
	log  *slog.Logger
	tmpl *template.Template
}

func New(fs afero.Fs, log *slog.Logger) (*Generator, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"hex":   func(id uint8) string { return fmt.Sprintf("0x%02X", id) },
		"lower": strings.ToLower,
	}).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Generator{fs: fs, log: log, tmpl: tmpl}, nil
}

type versionTmpl struct {
	Package string
	Version schema.Version
	States  []string
}

type stateTmpl struct {
	State   string
	Version schema.Version
	Packets []packetTmpl
}

// Run writes the packages for sch. Any previous content of the target
// directory is removed first; on failure the half-written directory is
// removed too.
func (g *Generator) Run(ctx context.Context, sch *schema.Schema, t Target) (stats Stats, err error) {
	outPath := filepath.Join(t.OutDir, t.Package)
	log := g.log.With(slog.String("package", t.Package))

	if err := g.fs.RemoveAll(outPath); err != nil {
		return Stats{}, fmt.Errorf("remove output directory: %w", err)
	}
	if err := g.fs.MkdirAll(outPath, 0o755); err != nil {
		return Stats{}, fmt.Errorf("create output directory: %w", err)
	}
	defer func() {
		if err == nil {
			return
		}
		if rmErr := g.fs.RemoveAll(outPath); rmErr != nil {
			log.Warn("remove partial output", slog.String("dir", outPath), slog.Any("error", rmErr))
		}
	}()

	var states []string
	err = sch.PerState(func(name string, st schema.State) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		var resolved []schema.Packet
		if err := st.PerPacket(func(p schema.Packet) error {
			resolved = append(resolved, p)
			return ctx.Err()
		}); err != nil {
			return fmt.Errorf("resolve %s: %w", name, err)
		}

		packets := buildPackets(resolved)
		for _, p := range packets {
			for _, l := range p.Lines {
				if l.Marker {
					stats.Markers++
					log.Debug("field left as marker",
						slog.String("state", name),
						slog.String("packet", p.Name),
						slog.String("field", l.Name),
						slog.String("type", l.Type))
				}
			}
		}
		stats.Packets += len(packets)

		file := filepath.Join(outPath, name, "packets.go")
		if err := g.render("packets.go.tmpl", file, stateTmpl{
			State:   name,
			Version: sch.Version(),
			Packets: packets,
		}); err != nil {
			return err
		}
		log.Info("generated", slog.String("file", file), slog.Int("packets", len(packets)))
		states = append(states, name)
		return nil
	})
	if err != nil {
		return Stats{}, err
	}

	file := filepath.Join(outPath, "version.go")
	if err := g.render("version.go.tmpl", file, versionTmpl{
		Package: t.Package,
		Version: sch.Version(),
		States:  states,
	}); err != nil {
		return Stats{}, err
	}
	log.Info("generated", slog.String("file", file))

	return stats, nil
}

func (g *Generator) render(name, outFile string, data any) error {
	var buf bytes.Buffer
	if err := g.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("execute template %s: %w", name, err)
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return fmt.Errorf("format %s: %w", outFile, err)
	}
	if err := g.fs.MkdirAll(filepath.Dir(outFile), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(outFile), err)
	}
	if err := afero.WriteFile(g.fs, outFile, src, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outFile, err)
	}
	return nil
}

type packetTmpl struct {
	StructName string
	Name       string
	ID         uint8
	Direction  string // "Clientbound" or "Serverbound", as in pkg/protocol
	Lines      []lineTmpl
}

// lineTmpl is either a struct field or a TODO marker for a field whose
// bytes end up in the Unparsed tail.
type lineTmpl struct {
	Marker bool
	Name   string
	Type   string
	GoName string
	GoType string
}

var fieldTypes = map[schema.FieldType]string{
	schema.Varint:   "VarInt",
	schema.VarLong:  "VarLong",
	schema.U8:       "UByte",
	schema.U16:      "UShort",
	schema.I8:       "Byte",
	schema.I16:      "Short",
	schema.I32:      "Int",
	schema.I64:      "Long",
	schema.F32:      "Float",
	schema.F64:      "Double",
	schema.Bool:     "Bool",
	schema.String:   "String",
	schema.UUID:     "UUID",
	schema.Position: "Position",
	schema.NBT:      "NBT",
}

// goType maps a field kind to its pkg/protocol type. last reports whether the
// field is the final one of the packet.
func goType(ft schema.FieldType, last bool) (string, bool) {
	switch t := ft.(type) {
	case schema.Terminal:
		if t == schema.RestBuffer {
			return "RestOfBuffer", last
		}
		name, ok := fieldTypes[t]
		return name, ok
	case schema.Buffer:
		if t.CountType == schema.Varint {
			return "ByteArray", true
		}
	}
	return "", false
}

func buildPackets(resolved []schema.Packet) []packetTmpl {
	names := map[schema.PacketDirection]map[string]bool{
		schema.Clientbound: {},
		schema.Serverbound: {},
	}
	for _, p := range resolved {
		names[p.Direction][p.Name] = true
	}

	packets := make([]packetTmpl, 0, len(resolved))
	for _, p := range resolved {
		suffix := ""
		switch p.Direction {
		case schema.Clientbound:
			if names[schema.Serverbound][p.Name] {
				suffix = "CB"
			}
		case schema.Serverbound:
			if names[schema.Clientbound][p.Name] {
				suffix = "SB"
			}
		}
		packets = append(packets, buildPacket(p, suffix))
	}
	return packets
}

func buildPacket(p schema.Packet, suffix string) packetTmpl {
	direction := "Clientbound"
	if p.Direction == schema.Serverbound {
		direction = "Serverbound"
	}

	used := map[string]int{}
	unique := func(name string) string {
		if reservedNames[name] {
			name += "Field"
		}
		used[name]++
		if n := used[name]; n > 1 {
			return fmt.Sprintf("%s%d", name, n)
		}
		return name
	}

	var lines []lineTmpl
	unparsed := false
	for i, f := range p.Fields {
		if f.Type == schema.Void {
			continue
		}
		if !unparsed {
			if gt, ok := goType(f.Type, i == len(p.Fields)-1); ok {
				lines = append(lines, lineTmpl{Name: f.Name, GoName: unique(goName(f.Name)), GoType: gt})
				continue
			}
			unparsed = true
		}
		lines = append(lines, lineTmpl{Marker: true, Name: f.Name, Type: f.Type.String()})
	}
	if unparsed {
		lines = append(lines, lineTmpl{Name: "unparsed", GoName: unique("Unparsed"), GoType: "Unparsed"})
	}

	return packetTmpl{
		StructName: goName(p.Name) + suffix,
		Name:       p.Name,
		ID:         p.ID,
		Direction:  direction,
		Lines:      lines,
	}
}

// reservedNames are the methods every generated packet has.
var reservedNames = map[string]bool{"PacketID": true, "Direction": true}

// goName turns schema names ("spawn_entity", "entityId") into exported Go
// identifiers ("SpawnEntity", "EntityID").
func goName(s string) string {
	name := fixAbbreviations(snaker.SnakeToCamel(s))
	if name == "" {
		return "Field"
	}
	if c := name[0]; !(c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z') {
		name = "F" + name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

func fixAbbreviations(s string) string {
	s = strings.ReplaceAll(s, "Uuid", "UUID")
	s = strings.ReplaceAll(s, "Nbt", "NBT")
	s = strings.ReplaceAll(s, "Url", "URL")

	// Fix "Id" at word boundaries (end of string or before uppercase letter).
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if i+1 < len(s) && s[i] == 'I' && s[i+1] == 'd' {
			atEnd := i+2 >= len(s)
			beforeUpper := !atEnd && s[i+2] >= 'A' && s[i+2] <= 'Z'
			if atEnd || beforeUpper {
				b.WriteString("ID")
				i++ // skip 'd'
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
