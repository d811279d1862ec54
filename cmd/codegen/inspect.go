package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/go-theft-craft/protocol/internal/config"
	"github.com/go-theft-craft/protocol/internal/schema"
)

var (
	stateColor  = color.New(color.FgCyan, color.Bold)
	idColor     = color.New(color.FgYellow)
	nameColor   = color.New(color.FgGreen)
	typeColor   = color.New(color.Faint)
	opaqueColor = color.New(color.FgRed) // placeholder kinds
)

func newInspectCmd(fs afero.Fs, gf *globalFlags) *cobra.Command {
	var (
		state   string
		noColor bool
	)

	cmd := &cobra.Command{
		Use:   "inspect PROTOCOL_DIR",
		Short: "Print the resolved packets of a protocol version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.DefaultConfig()
			if err := loadConfig(cmd, fs, gf, cfg); err != nil {
				return err
			}
			if noColor {
				color.NoColor = true
			}
			log, err := newLogger(cmd, cfg)
			if err != nil {
				return err
			}
			sch, err := schema.LoadDir(fs, args[0])
			if err != nil {
				return err
			}
			log.Debug("loaded schema", slog.String("dir", args[0]), slog.Int("types", sch.Types().Len()))
			return inspect(cmd.OutOrStdout(), sch, state)
		},
	}

	cmd.Flags().StringVar(&state, "state", "", "only print this state")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")
	return cmd
}

func inspect(w io.Writer, sch *schema.Schema, only string) error {
	v := sch.Version()
	fmt.Fprintf(w, "minecraft %s (protocol %d)\n", v.MinecraftVersion, v.Version)

	return sch.PerState(func(name string, st schema.State) error {
		if only != "" && name != only {
			return nil
		}
		stateColor.Fprintf(w, "\n%s\n", name)
		return st.PerPacket(func(p schema.Packet) error {
			fmt.Fprintf(w, "  %s %s %s\n",
				typeColor.Sprint(p.Direction),
				idColor.Sprintf("0x%02X", p.ID),
				nameColor.Sprint(p.Name))
			for _, f := range p.Fields {
				c := typeColor
				if schema.IsPlaceholder(f.Type) {
					c = opaqueColor
				}
				fmt.Fprintf(w, "      %s: %s\n", f.Name, c.Sprint(f.Type))
			}
			return nil
		})
	})
}
