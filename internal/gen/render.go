// Package gen renders Go source for records described by schema files. The
// output declares one struct per record with idx tags, so the struct-tag
// front-end rebuilds the same schema at run time.
package gen

import (
	"bytes"
	"fmt"
	"go/format"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"unicode"

	"github.com/reoring/idxcodec/schemafile"
)

// File is one generated Go file.
type File struct {
	Package string
	Types   []TypeDef
}

// TypeDef is one generated struct.
type TypeDef struct {
	Name   string
	Record string // idx tag of the blank record field, empty when not needed
	Fields []Field
}

// Field is one generated struct field.
type Field struct {
	GoName string
	GoType string
	Tag    string
}

var fileTmpl = template.Must(template.New("file").Parse(`// Code generated by idxcodec gen. DO NOT EDIT.

package {{.Package}}
{{if .Imports}}
import (
{{range .Imports}}	"{{.}}"
{{end}})
{{end}}
{{range .Types}}
type {{.Name}} struct {
{{- if .Record}}
	_ struct{} ` + "`" + `idx:"{{.Record}}"` + "`" + `
{{- end}}
{{- range .Fields}}
	{{.GoName}} {{.GoType}} ` + "`" + `idx:"{{.Tag}}"` + "`" + `
{{- end}}
}
{{end}}`))

// RenderFile renders f as gofmt-ed Go source.
func RenderFile(f File) ([]byte, error) {
	if f.Package == "" {
		return nil, fmt.Errorf("gen: package name is empty")
	}
	data := struct {
		File
		Imports []string
	}{File: f, Imports: imports(f)}
	var buf bytes.Buffer
	if err := fileTmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	out, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("gen: format: %w\n%s", err, buf.Bytes())
	}
	return out, nil
}

func imports(f File) []string {
	set := map[string]struct{}{}
	for _, t := range f.Types {
		for _, fd := range t.Fields {
			if strings.Contains(fd.GoType, "time.Time") {
				set["time"] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// FromSchemaFile converts a parsed descriptor into a TypeDef. The descriptor
// is validated first so that only buildable schemas are rendered.
func FromSchemaFile(sf *schemafile.File) (TypeDef, error) {
	if _, err := sf.Schema(); err != nil {
		return TypeDef{}, err
	}
	td := TypeDef{Name: ExportedName(sf.Name)}
	var rec []string
	if sf.AutoIndex {
		rec = append(rec, "auto_index")
	}
	if sf.Offset != 0 {
		rec = append(rec, "offset="+strconv.FormatUint(sf.Offset, 10))
	}
	td.Record = strings.Join(rec, ",")

	for _, fe := range sf.Fields {
		goType := "any"
		if fe.Type != "" {
			t, err := schemafile.ParseType(fe.Type)
			if err != nil {
				return TypeDef{}, err
			}
			goType = typeString(t)
		}
		td.Fields = append(td.Fields, Field{
			GoName: ExportedName(fe.Name),
			GoType: goType,
			Tag:    fieldTag(fe),
		})
	}
	return td, nil
}

func fieldTag(fe schemafile.Field) string {
	var items []string
	if fe.Index != nil {
		items = append(items, "index="+strconv.FormatUint(*fe.Index, 10))
	}
	switch {
	case fe.Skip && fe.NoIncrement:
		items = append(items, "skip=no_increment")
	case fe.Skip:
		items = append(items, "skip")
	}
	for _, kv := range [][2]string{
		{"skip_if", fe.SkipIf},
		{"with", fe.With},
		{"serialize_with", fe.SerializeWith},
		{"deserialize_with", fe.DeserializeWith},
	} {
		if kv[1] != "" {
			items = append(items, kv[0]+"="+kv[1])
		}
	}
	if ExportedName(fe.Name) != fe.Name {
		items = append(items, "name="+fe.Name)
	}
	return strings.Join(items, ",")
}

func typeString(t reflect.Type) string {
	if t == nil {
		return "any"
	}
	return strings.ReplaceAll(t.String(), "interface {}", "any")
}

// ExportedName turns a snake_case or kebab-case label into an exported Go
// identifier: "some_keys" -> "SomeKeys", "id" -> "ID".
func ExportedName(label string) string {
	parts := strings.FieldsFunc(label, func(r rune) bool {
		return r == '_' || r == '-' || r == '.' || r == ' '
	})
	var b strings.Builder
	for _, p := range parts {
		if up := strings.ToUpper(p); commonInitialisms[up] {
			b.WriteString(up)
			continue
		}
		r := []rune(p)
		r[0] = unicode.ToUpper(r[0])
		b.WriteString(string(r))
	}
	s := b.String()
	if s == "" || !unicode.IsLetter([]rune(s)[0]) {
		s = "F" + s
	}
	return s
}

var commonInitialisms = map[string]bool{
	"ID": true, "URL": true, "URI": true, "HTTP": true, "JSON": true, "CBOR": true, "IP": true, "UUID": true,
}
