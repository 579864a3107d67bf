package lang

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"
)

// Format writes the document in native configuration language syntax.
//
// Constants are written first as declarations, followed by each top-level
// dictionary as a begin/end block. Nested lines are indented by indent
// spaces per level. Parsing the output yields an equal document.
func (doc *Document) Format(_ context.Context, w io.Writer, indent int) error {
	put := writer(w)

	for name, v := range doc.constants.All() {
		if err := put(0, v.String()+" -> "+name+";"); err != nil {
			return err
		}
	}

	count := 0

	for name, dict := range doc.All() {
		// Separate top-level blocks (and the constants) with a blank line
		if count > 0 || doc.constants.Len() > 0 {
			if err := put(0, ""); err != nil {
				return err
			}
		}

		if err := formatDictionary(put, name, dict, indent, 0); err != nil {
			return err
		}

		count++
	}

	return nil
}

// writer returns a function that writes one line of text at the given
// indentation.
func writer(w io.Writer) func(pad int, line string) error {
	return func(pad int, line string) error {
		_, err := io.WriteString(w, strings.Repeat(" ", pad)+line+"\n")

		return err
	}
}

// formatDictionary writes a begin/end block. Blank lines are never written
// inside a block.
func formatDictionary(
	put func(int, string) error,
	name string,
	dict *Dictionary,
	indent, depth int,
) error {
	pad := depth * indent

	if err := put(pad, "begin "+name); err != nil {
		return err
	}

	for key, v := range dict.All() {
		if v.Kind == KindDictionary {
			err := formatDictionary(put, key, v.Dict, indent, depth+1)
			if err != nil {
				return err
			}

			continue
		}

		if err := put(pad+indent, key+" := "+v.String()+";"); err != nil {
			return err
		}
	}

	return put(pad, "end;")
}

// FormatJSON writes the document as JSON, keeping key order.
func (doc *Document) FormatJSON(_ context.Context, w io.Writer, indent int) error {
	data, err := doc.MarshalJSON()
	if err != nil {
		return err
	}

	if indent > 0 {
		var buf bytes.Buffer

		err = json.Indent(&buf, data, "", strings.Repeat(" ", indent))
		if err != nil {
			return err
		}

		data = buf.Bytes()
	}

	_, err = fmt.Fprintln(w, string(data))

	return err
}

// FormatYAML writes the document as YAML, keeping key order.
func (doc *Document) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	yamlData, err := yaml.MarshalContext(ctx, doc.MapSlice(), opts...)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(w, string(yamlData))

	return err
}

// FormatTOML writes the document as TOML. Each top-level dictionary becomes
// a table. TOML tables are written with sorted keys.
func (doc *Document) FormatTOML(_ context.Context, w io.Writer, indent int) error {
	enc := toml.NewEncoder(w)
	enc.Indent = strings.Repeat(" ", max(indent, 0))

	return enc.Encode(doc.ToMap())
}
