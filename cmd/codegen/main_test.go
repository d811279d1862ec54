package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const emptyDirection = `{"types":{"packet":["container",[
	{"name":"name","type":["mapper",{"type":"varint","mappings":{}}]},
	{"name":"params","type":["switch",{"compareTo":"name","fields":{}}]}
]]}}`

const handshakeToServer = `{"types":{
	"packet":["container",[
		{"name":"name","type":["mapper",{"type":"varint","mappings":{"0x00":"set_protocol"}}]},
		{"name":"params","type":["switch",{"compareTo":"name","fields":{"set_protocol":"packet_set_protocol"}}]}
	]],
	"packet_set_protocol":["container",[
		{"name":"protocolVersion","type":"varint"},
		{"name":"serverHost","type":"string"},
		{"name":"serverPort","type":"u16"},
		{"name":"nextState","type":"varint"}
	]]
}}`

func writeProtocolDir(t *testing.T, fs afero.Fs, dir, mcVersion string) {
	t.Helper()
	empty := `{"toClient":` + emptyDirection + `,"toServer":` + emptyDirection + `}`
	protocol := `{"types":{},` +
		`"handshaking":{"toClient":` + emptyDirection + `,"toServer":` + handshakeToServer + `},` +
		`"status":` + empty + `,"login":` + empty + `,"play":` + empty + `}`
	version := `{"minecraftVersion":"` + mcVersion + `","version":340,"majorVersion":"1.12"}`
	require.NoError(t, afero.WriteFile(fs, dir+"/protocol.json", []byte(protocol), 0o644))
	require.NoError(t, afero.WriteFile(fs, dir+"/version.json", []byte(version), 0o644))
}

func execute(fs afero.Fs, args ...string) (string, error) {
	var out bytes.Buffer
	cmd := newRootCmd(fs)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestGenerate(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeProtocolDir(t, fs, "scheme/pc-1.12.2", "1.12.2")
	writeProtocolDir(t, fs, "scheme/pc-1.12.1", "1.12.1")

	out, err := execute(fs, "generate", "--out", "gen", "--concurrency", "2", "scheme/pc-1.12.2", "scheme/pc-1.12.1")
	require.NoError(t, err, out)
	assert.Contains(t, out, "codegen done")

	for _, path := range []string{
		"gen/pc_1_12_2/version.go",
		"gen/pc_1_12_2/handshaking/packets.go",
		"gen/pc_1_12_1/play/packets.go",
	} {
		ok, err := afero.Exists(fs, path)
		require.NoError(t, err)
		assert.True(t, ok, path)
	}
}

func TestGenerateFromConfigFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeProtocolDir(t, fs, "scheme/pc-1.12.2", "1.12.2")
	require.NoError(t, afero.WriteFile(fs, "codegen.toml", []byte(`
protocol_dirs = ["scheme/pc-1.12.2"]
out_dir = "from-file"
package = "mc"
log_format = "json"
`), 0o644))

	out, err := execute(fs, "generate", "--config", "codegen.toml", "--out", "from-flag")
	require.NoError(t, err, out)
	assert.Contains(t, out, `"msg":"codegen done"`)

	ok, err := afero.Exists(fs, "from-flag/mc/version.go")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGenerateErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeProtocolDir(t, fs, "a/pc-1.12.2", "1.12.2")
	writeProtocolDir(t, fs, "b/pc-1.12.2", "1.12.2")

	_, err := execute(fs, "generate")
	assert.ErrorContains(t, err, "no protocol dirs given")

	_, err = execute(fs, "generate", "a/pc-1.12.2", "b/pc-1.12.2")
	assert.ErrorContains(t, err, "both map to package pc_1_12_2")

	_, err = execute(fs, "generate", "missing")
	assert.ErrorContains(t, err, "protocol.json not found within protocol dir 'missing'")

	_, err = execute(fs, "generate", "--log-format", "xml", "a/pc-1.12.2")
	assert.ErrorContains(t, err, `unknown log format "xml"`)
}

func TestInspect(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeProtocolDir(t, fs, "scheme/pc-1.12.2", "1.12.2")

	out, err := execute(fs, "inspect", "--no-color", "--state", "handshaking", "scheme/pc-1.12.2")
	require.NoError(t, err)

	assert.Contains(t, out, "minecraft 1.12.2 (protocol 340)\n")
	assert.Contains(t, out, "\nhandshaking\n")
	assert.Contains(t, out, "  serverbound 0x00 set_protocol\n")
	assert.Contains(t, out, "      serverPort: U16\n")
	assert.NotContains(t, out, "play")
}
