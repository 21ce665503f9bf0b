package main

import (
	"io"
	"os"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/willabides/yamlstream"
)

// RootOptions holds the flags shared by every subcommand.
type RootOptions struct {
	LogLevel string

	ConfigFile string
	Canonical  bool
	Indent     int
	Width      int
	Unicode    bool
	LineBreak  string
	Encoding   string

	logger log.Logger
}

func NewDefaultYamlstreamCmd() *cobra.Command {
	return NewYamlstreamCmd(&RootOptions{})
}

func NewYamlstreamCmd(o *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "yamlstream",
		Short: "yamlstream parses and emits YAML 1.1 streams",
		Long: `yamlstream parses and emits YAML 1.1 streams.

Input is read from the named files, or from stdin when no file (or "-") is
given.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return o.setupLogger(cmd.ErrOrStderr())
		},
	}

	// Affects children as well
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	cmd.DisableAutoGenTag = true

	pf := cmd.PersistentFlags()
	pf.StringVar(&o.LogLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	pf.StringVar(&o.ConfigFile, "config", "", "TOML file with emitter options")
	pf.BoolVar(&o.Canonical, "canonical", false, "Write canonical YAML")
	pf.IntVar(&o.Indent, "indent", 2, "Indentation width (2 to 9)")
	pf.IntVar(&o.Width, "width", 80, "Preferred line width, negative for unlimited")
	pf.BoolVar(&o.Unicode, "unicode", true, "Write non-ASCII characters unescaped")
	pf.StringVar(&o.LineBreak, "line-break", "", "Line break to write (lf, cr, crlf)")
	pf.StringVar(&o.Encoding, "encoding", "", "Output encoding (utf-8, utf-16le, utf-16be)")

	cmd.AddCommand(NewEventsCmd(&EventsOptions{RootOptions: o}))
	cmd.AddCommand(NewEmitCmd(&EmitOptions{RootOptions: o}))
	cmd.AddCommand(NewNormalizeCmd(&NormalizeOptions{RootOptions: o}))

	return cmd
}

func (o *RootOptions) setupLogger(w io.Writer) error {
	var allow level.Option
	switch strings.ToLower(o.LogLevel) {
	case "debug":
		allow = level.AllowDebug()
	case "info":
		allow = level.AllowInfo()
	case "warn", "warning":
		allow = level.AllowWarn()
	case "error":
		allow = level.AllowError()
	default:
		return errors.Errorf("unknown log level %q", o.LogLevel)
	}
	logger := log.NewLogfmtLogger(log.NewSyncWriter(w))
	o.logger = level.NewFilter(logger, allow)
	return nil
}

// emitterConfig starts from the --config file, if any, and lets flags given
// on the command line override it.
func (o *RootOptions) emitterConfig(cmd *cobra.Command) (yamlstream.EmitterConfig, error) {
	var cfg yamlstream.EmitterConfig
	if o.ConfigFile != "" {
		f, err := os.Open(o.ConfigFile)
		if err != nil {
			return cfg, errors.Wrap(err, "open config")
		}
		defer f.Close()
		cfg, err = yamlstream.DecodeEmitterConfig(f)
		if err != nil {
			return cfg, errors.Wrapf(err, "config %s", o.ConfigFile)
		}
		level.Debug(o.logger).Log("msg", "loaded emitter config", "file", o.ConfigFile)
	}

	flags := cmd.Flags()
	if flags.Changed("canonical") {
		cfg.Canonical = o.Canonical
	}
	if flags.Changed("indent") {
		cfg.Indent = o.Indent
	}
	if flags.Changed("width") {
		cfg.Width = o.Width
	}
	if flags.Changed("unicode") {
		unicode := o.Unicode
		cfg.Unicode = &unicode
	}
	if flags.Changed("line-break") {
		cfg.LineBreak = o.LineBreak
	}
	if flags.Changed("encoding") {
		cfg.Encoding = o.Encoding
	}
	return cfg, nil
}

type namedInput struct {
	name string
	r    io.Reader
}

// eachInput calls fn for stdin when args is empty, and for every named file
// otherwise. "-" stands for stdin.
func eachInput(cmd *cobra.Command, args []string, fn func(in namedInput) error) error {
	if len(args) == 0 {
		args = []string{"-"}
	}
	for _, name := range args {
		if name == "-" {
			if err := fn(namedInput{name: "stdin", r: cmd.InOrStdin()}); err != nil {
				return err
			}
			continue
		}
		f, err := os.Open(name)
		if err != nil {
			return errors.Wrap(err, "open input")
		}
		err = fn(namedInput{name: name, r: f})
		f.Close()
		if err != nil {
			return errors.Wrap(err, name)
		}
	}
	return nil
}
