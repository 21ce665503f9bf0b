package main

import (
	"io"

	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"
	"github.com/willabides/yamlstream"
)

type NormalizeOptions struct {
	*RootOptions

	KeepLineBreak bool
}

func NewNormalizeCmd(o *NormalizeOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "normalize [file...]",
		Aliases: []string{"dump"},
		Short:   "Compose YAML documents and write them back out",
		Long: `Compose YAML documents and write them back out.

Aliases are resolved while composing. Nodes that are referenced more than
once are written with generated anchors (&id001, &id002, ...). All inputs
are written as a single stream.`,
		RunE: func(cmd *cobra.Command, args []string) error { return o.Run(cmd, args) },
	}
	cmd.Flags().BoolVar(&o.KeepLineBreak, "keep-line-break", false, "Write the line break found in the first input unless --line-break is set")
	return cmd
}

func (o *NormalizeOptions) Run(cmd *cobra.Command, args []string) error {
	cfg, err := o.emitterConfig(cmd)
	if err != nil {
		return err
	}
	enc := yamlstream.NewEncoder(cmd.OutOrStdout())
	if err = enc.Configure(cfg); err != nil {
		return err
	}

	first := true
	err = eachInput(cmd, args, func(in namedInput) error {
		dec := yamlstream.NewDecoder(in.r)
		count := 0
		for {
			doc, err := dec.Decode()
			if err == io.EOF {
				break
			}
			if err != nil {
				return err
			}
			if first && o.KeepLineBreak && cfg.LineBreak == "" && dec.LineBreak() != yamlstream.ANY_BREAK {
				enc.SetLineBreak(dec.LineBreak())
			}
			first = false
			if err = enc.Encode(doc); err != nil {
				return err
			}
			doc.Release()
			count++
		}
		level.Debug(o.logger).Log("msg", "normalized input", "input", in.name, "documents", count, "line_break", dec.LineBreak())
		return nil
	})
	if err != nil {
		return err
	}
	return enc.Close()
}
