package main

import (
	"io"

	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"
	"github.com/willabides/yamlstream"
	"github.com/willabides/yamlstream/internal/eventfmt"
)

type EmitOptions struct {
	*RootOptions
}

func NewEmitCmd(o *EmitOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "emit [file]",
		Short: "Write YAML from events in the format printed by events",
		Args:  cobra.MaximumNArgs(1),
		RunE:  func(cmd *cobra.Command, args []string) error { return o.Run(cmd, args) },
	}
	return cmd
}

func (o *EmitOptions) Run(cmd *cobra.Command, args []string) error {
	cfg, err := o.emitterConfig(cmd)
	if err != nil {
		return err
	}
	e := yamlstream.NewEmitter(cmd.OutOrStdout())
	if err = cfg.Apply(e); err != nil {
		return err
	}

	err = eachInput(cmd, args, func(in namedInput) error {
		r := eventfmt.NewReader(in.r)
		count := 0
		for {
			event, err := r.Parse()
			if err == io.EOF {
				break
			}
			if err != nil {
				return err
			}
			if err = e.Emit(event); err != nil {
				return err
			}
			count++
		}
		level.Debug(o.logger).Log("msg", "emitted events", "input", in.name, "events", count)
		return e.Flush()
	})
	if err != nil {
		return err
	}
	return e.Finish()
}
