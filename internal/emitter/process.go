package emitter

import "github.com/willabides/yamlstream/internal/yamlh"

// processAnchor writes the analyzed "&anchor" or "*alias", if any.
func processAnchor(e *Emitter) error {
	anchor := e.anchorData.Anchor
	if anchor == nil {
		return nil
	}
	indicator := "&"
	if e.anchorData.Alias {
		indicator = "*"
	}
	if err := writeIndicator(e, []byte(indicator), true, false, false); err != nil {
		return err
	}
	return writeAnchor(e, anchor)
}

// processTag writes the analyzed tag, either as handle plus suffix or, when
// no directive matched, verbatim as "!<suffix>".
func processTag(e *Emitter) error {
	handle, suffix := e.tagData.Handle, e.tagData.Suffix
	switch {
	case len(handle) > 0:
		if err := writeTagHandle(e, handle); err != nil {
			return err
		}
		if len(suffix) == 0 {
			return nil
		}
		return writeTagContent(e, suffix, false)
	case len(suffix) > 0:
		if err := writeIndicator(e, []byte("!<"), true, false, false); err != nil {
			return err
		}
		if err := writeTagContent(e, suffix, false); err != nil {
			return err
		}
		return writeIndicator(e, []byte(">"), false, false, false)
	}
	return nil
}

// processScalar writes the scalar text in the style chosen by
// selectScalarStyle.
func processScalar(e *Emitter) error {
	value := e.scalarData.value
	allowBreaks := !e.simpleKeyContext
	switch e.scalarData.style {
	case yamlh.PLAIN_SCALAR_STYLE:
		return writePlainScalar(e, value, allowBreaks)
	case yamlh.SINGLE_QUOTED_SCALAR_STYLE:
		return writeSingleQuotedScalar(e, value, allowBreaks)
	case yamlh.DOUBLE_QUOTED_SCALAR_STYLE:
		return writeDoubleQuotedScalar(e, value, allowBreaks)
	case yamlh.LITERAL_SCALAR_STYLE:
		return writeLiteralScalar(e, value)
	case yamlh.FOLDED_SCALAR_STYLE:
		return writeFoldedScalar(e, value)
	}
	return e.fail(yamlh.NewError(yamlh.EMITTER_ERROR, "unknown scalar style "+e.scalarData.style.String(), yamlh.Mark{}))
}
