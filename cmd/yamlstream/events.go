package main

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/go-kit/log/level"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/willabides/yamlstream"
	"github.com/willabides/yamlstream/internal/eventfmt"
)

type EventsOptions struct {
	*RootOptions

	Color string
}

func NewEventsCmd(o *EventsOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events [file...]",
		Short: "Print the parse events of YAML input, one per line",
		Long: `Print the parse events of YAML input, one per line.

Each line is one event: +STR -STR +DOC -DOC +MAP -MAP +SEQ -SEQ =VAL =ALI.
Scalar values are prefixed with their style (: ' " | >).`,
		RunE: func(cmd *cobra.Command, args []string) error { return o.Run(cmd, args) },
	}
	cmd.Flags().StringVar(&o.Color, "color", "auto", "Colorize output (auto, always, never)")
	return cmd
}

func (o *EventsOptions) Run(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	w := eventfmt.NewWriter(out)
	colorize, err := o.useColor(out)
	if err != nil {
		return err
	}
	if colorize {
		w.Decorate = newEventColors().decorate
	}

	return eachInput(cmd, args, func(in namedInput) error {
		p := yamlstream.NewParser(in.r)
		count := 0
		for {
			event, err := p.Parse()
			if err != nil {
				return err
			}
			if err = w.Write(event); err != nil {
				return err
			}
			count++
			if event.Type == yamlstream.STREAM_END_EVENT {
				break
			}
		}
		level.Debug(o.logger).Log("msg", "parsed input", "input", in.name, "events", count, "encoding", p.Encoding())
		return nil
	})
}

func (o *EventsOptions) useColor(out io.Writer) (bool, error) {
	switch o.Color {
	case "always":
		return true, nil
	case "never":
		return false, nil
	case "auto":
		f, ok := out.(*os.File)
		if !ok {
			return false, nil
		}
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()), nil
	}
	return false, errors.Errorf("unknown color mode %q", o.Color)
}

type eventColors struct {
	stream     *color.Color
	collection *color.Color
	scalar     *color.Color
	alias      *color.Color
}

func newEventColors() *eventColors {
	c := &eventColors{
		stream:     color.New(color.Bold),
		collection: color.New(color.FgCyan),
		scalar:     color.New(color.FgGreen),
		alias:      color.New(color.FgYellow),
	}
	// The mode was already decided by the caller.
	for _, cc := range []*color.Color{c.stream, c.collection, c.scalar, c.alias} {
		cc.EnableColor()
	}
	return c
}

func (c *eventColors) decorate(event *yamlstream.Event, line string) string {
	switch event.Type {
	case yamlstream.STREAM_START_EVENT, yamlstream.STREAM_END_EVENT,
		yamlstream.DOCUMENT_START_EVENT, yamlstream.DOCUMENT_END_EVENT:
		return c.stream.Sprint(line)
	case yamlstream.SEQUENCE_START_EVENT, yamlstream.SEQUENCE_END_EVENT,
		yamlstream.MAPPING_START_EVENT, yamlstream.MAPPING_END_EVENT:
		return c.collection.Sprint(line)
	case yamlstream.SCALAR_EVENT:
		return c.scalar.Sprint(line)
	case yamlstream.ALIAS_EVENT:
		return c.alias.Sprint(line)
	}
	return line
}
