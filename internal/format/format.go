// Package format loads the catalogue of match formats.
//
// Formats are declared in CUE. The built-in catalogue (T20, ODI, T10) is
// embedded; an operator may unify an extra CUE file on top of it to add club
// formats or tighten constraints. Every format is validated against the
// #Format definition before use.
package format

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

//go:embed formats.cue
var builtinCUE string

// Format is a concrete, validated match format.
type Format struct {
	Name              string `json:"name"`
	OversLimit        int    `json:"overs_limit"`
	TeamSize          int    `json:"team_size"`
	MaxOversPerBowler int    `json:"max_overs_per_bowler"`
}

// WicketCap is the number of wickets that ends an innings.
func (f Format) WicketCap() int {
	return f.TeamSize - 1
}

// Catalog is an immutable set of formats keyed by name.
type Catalog struct {
	formats map[string]Format
}

// Error reports an invalid format definition with its source position.
type Error struct {
	Path    string
	Message string
	Pos     token.Pos
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Path, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Load builds the catalogue from the embedded formats, unified with the CUE
// file at extraPath when it is non-empty.
func Load(extraPath string) (*Catalog, error) {
	if extraPath == "" {
		return LoadSource("", nil)
	}
	data, err := os.ReadFile(extraPath)
	if err != nil {
		return nil, fmt.Errorf("read formats file: %w", err)
	}
	return LoadSource(extraPath, data)
}

// LoadSource is Load with the extra CUE given as source text. name labels
// positions in error messages; empty src adds nothing.
func LoadSource(name string, src []byte) (*Catalog, error) {
	ctx := cuecontext.New()

	v := ctx.CompileString(builtinCUE, cue.Filename("formats.cue"))
	if err := v.Err(); err != nil {
		return nil, formatCUEError("formats", err)
	}

	if len(src) > 0 {
		extra := ctx.CompileBytes(src, cue.Filename(name))
		if err := extra.Err(); err != nil {
			return nil, formatCUEError("formats", err)
		}
		v = v.Unify(extra)
	}

	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError("formats", err)
	}

	iter, err := v.LookupPath(cue.ParsePath("formats")).Fields()
	if err != nil {
		return nil, formatCUEError("formats", err)
	}

	c := &Catalog{formats: make(map[string]Format)}
	for iter.Next() {
		var f Format
		if err := iter.Value().Decode(&f); err != nil {
			return nil, formatCUEError("formats."+iter.Label(), err)
		}
		c.formats[f.Name] = f
	}
	if len(c.formats) == 0 {
		return nil, &Error{Path: "formats", Message: "no formats defined"}
	}
	return c, nil
}

// Get returns the named format.
func (c *Catalog) Get(name string) (Format, error) {
	f, ok := c.formats[name]
	if !ok {
		return Format{}, fmt.Errorf("unknown format %q (available: %v)", name, c.Names())
	}
	return f, nil
}

// Names lists format names in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.formats))
	for name := range c.formats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// formatCUEError keeps the first CUE error along with its position.
func formatCUEError(path string, err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	e := &Error{Path: path, Message: first.Error()}
	if positions := errors.Positions(first); len(positions) > 0 {
		e.Pos = positions[0]
	}
	return e
}
