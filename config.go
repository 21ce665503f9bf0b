package yamlstream

import (
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// EmitterConfig holds emitter options in a form that can be read from a
// TOML file:
//
//	encoding = "utf-16le"
//	canonical = false
//	indent = 4
//	width = -1
//	unicode = true
//	line_break = "crlf"
//
// Zero values keep the emitter defaults.
type EmitterConfig struct {
	Encoding  string `toml:"encoding"`
	Canonical bool   `toml:"canonical"`
	Indent    int    `toml:"indent"`
	Width     int    `toml:"width"`
	Unicode   *bool  `toml:"unicode"`
	LineBreak string `toml:"line_break"`
}

// DecodeEmitterConfig reads an EmitterConfig from TOML. Unknown keys are an
// error.
func DecodeEmitterConfig(r io.Reader) (EmitterConfig, error) {
	var cfg EmitterConfig
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return cfg, errors.Wrap(err, "decode emitter config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, errors.Errorf("unknown emitter config key %q", undecoded[0].String())
	}
	if _, err = cfg.encoding(); err != nil {
		return cfg, err
	}
	if _, err = cfg.lineBreak(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c EmitterConfig) encoding() (Encoding, error) {
	switch strings.ToLower(c.Encoding) {
	case "":
		return ANY_ENCODING, nil
	case "utf-8", "utf8":
		return UTF8_ENCODING, nil
	case "utf-16le", "utf16le":
		return UTF16LE_ENCODING, nil
	case "utf-16be", "utf16be":
		return UTF16BE_ENCODING, nil
	}
	return ANY_ENCODING, errors.Errorf("unknown encoding %q", c.Encoding)
}

func (c EmitterConfig) lineBreak() (Break, error) {
	switch strings.ToLower(c.LineBreak) {
	case "":
		return ANY_BREAK, nil
	case "lf", "ln":
		return LN_BREAK, nil
	case "cr":
		return CR_BREAK, nil
	case "crlf", "crln":
		return CRLN_BREAK, nil
	}
	return ANY_BREAK, errors.Errorf("unknown line break %q", c.LineBreak)
}

// Apply sets the configured options on e. It must be called before the
// first event is emitted.
func (c EmitterConfig) Apply(e *Emitter) error {
	encoding, err := c.encoding()
	if err != nil {
		return err
	}
	lineBreak, err := c.lineBreak()
	if err != nil {
		return err
	}
	if encoding != ANY_ENCODING {
		if err = e.SetEncoding(encoding); err != nil {
			return err
		}
	}
	if lineBreak != ANY_BREAK {
		e.SetLineBreak(lineBreak)
	}
	e.SetCanonical(c.Canonical)
	if c.Indent != 0 {
		e.SetIndent(c.Indent)
	}
	if c.Width != 0 {
		e.SetWidth(c.Width)
	}
	if c.Unicode != nil {
		e.SetUnicode(*c.Unicode)
	}
	return nil
}
