// Package emit renders a resolved store directory as a Go source file: a
// constant address-to-coordinate map plus a lookup accessor.
package emit

import (
	"bufio"
	"bytes"
	"go/format"
	"go/token"
	"io"
	"math"
	"strconv"
	"text/template"

	"github.com/rotisserie/eris"

	"github.com/sells-group/storegeo/internal/directory"
)

// Options fix the declarations around the entry list. They depend only on
// configuration, never on the data.
type Options struct {
	Package    string // package clause
	TypeImport string // import path of the coordinate type; empty for none
	TypeName   string // coordinate type with Latitude/Longitude fields
	VarName    string // map variable
	FuncName   string // accessor function
	Comment    string // doc comment on the map variable
	// Gofmt runs the output through go/format, aligning the map values.
	Gofmt bool
}

// Validate reports options that would produce uncompilable output.
func (o Options) Validate() error {
	for _, id := range []struct{ field, val string }{
		{"package", o.Package},
		{"var name", o.VarName},
		{"func name", o.FuncName},
	} {
		if !token.IsIdentifier(id.val) {
			return eris.Errorf("emit: %s %q is not a Go identifier", id.field, id.val)
		}
	}
	if o.TypeName == "" {
		return eris.New("emit: type name is required")
	}
	return nil
}

var preamble = template.Must(template.New("preamble").Parse(`// Code generated by storegeo; DO NOT EDIT.

package {{.Package}}
{{if .TypeImport}}
import {{printf "%q" .TypeImport}}
{{end}}
{{if .Comment}}// {{.Comment}}
{{end}}var {{.VarName}} = map[string]{{.TypeName}}{
`))

var postamble = template.Must(template.New("postamble").Parse(`}

// {{.FuncName}} returns the coordinates for a store address.
func {{.FuncName}}(address string) ({{.TypeName}}, bool) {
	if loc, ok := {{.VarName}}[address]; ok {
		return loc, true
	}
	return {{.TypeName}}{}, false
}
`))

// Emitter writes directory artifacts.
type Emitter struct {
	opts Options
}

// New returns an Emitter for opts.
func New(opts Options) (*Emitter, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Emitter{opts: opts}, nil
}

// Emit writes dir to w. Entries appear in ascending byte order of address,
// one per line, so the same directory always yields the same bytes.
func (e *Emitter) Emit(w io.Writer, dir directory.Directory) error {
	if !e.opts.Gofmt {
		return e.render(w, dir)
	}

	var buf bytes.Buffer
	if err := e.render(&buf, dir); err != nil {
		return err
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return eris.Wrap(err, "emit: gofmt")
	}
	_, err = w.Write(src)
	return eris.Wrap(err, "emit: write")
}

// EmitFile renders dir and atomically replaces path with the result.
func (e *Emitter) EmitFile(path string, dir directory.Directory) error {
	var buf bytes.Buffer
	if err := e.Emit(&buf, dir); err != nil {
		return err
	}
	return directory.WriteFileAtomic(path, buf.Bytes())
}

func (e *Emitter) render(w io.Writer, dir directory.Directory) error {
	bw := bufio.NewWriter(w)
	if err := preamble.Execute(bw, e.opts); err != nil {
		return eris.Wrap(err, "emit: preamble")
	}
	for _, addr := range dir.Addresses() {
		c := dir[addr].Coordinate
		if !finite(c.Latitude) || !finite(c.Longitude) {
			return eris.Errorf("emit: non-finite coordinate for %q", addr)
		}
		bw.WriteString("\t")
		bw.WriteString(strconv.Quote(addr))
		bw.WriteString(": {Latitude: ")
		bw.WriteString(formatFloat(c.Latitude))
		bw.WriteString(", Longitude: ")
		bw.WriteString(formatFloat(c.Longitude))
		bw.WriteString("},\n")
	}
	if err := postamble.Execute(bw, e.opts); err != nil {
		return eris.Wrap(err, "emit: postamble")
	}
	return eris.Wrap(bw.Flush(), "emit: write")
}

// formatFloat uses the shortest decimal that parses back to f.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
