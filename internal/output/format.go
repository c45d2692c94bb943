package output

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/itchyny/gojq"
	"gopkg.in/yaml.v3"

	"github.com/salmonumbrella/famtree/internal/tree"
)

// Format represents the output format type.
type Format string

const (
	// FormatText is human-readable output; trees are drawn with connectors.
	FormatText Format = "text"
	// FormatJSON is pretty-printed JSON format.
	FormatJSON Format = "json"
	// FormatNDJSON is newline-delimited JSON format.
	FormatNDJSON Format = "ndjson"
	// FormatTable is tabular format for lists.
	FormatTable Format = "table"
	// FormatYAML is YAML format.
	FormatYAML Format = "yaml"
)

// ParseFormat converts a string to a Format type.
// Empty string defaults to FormatText.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatText, "":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatNDJSON:
		return FormatNDJSON, nil
	case FormatTable:
		return FormatTable, nil
	case FormatYAML:
		return FormatYAML, nil
	default:
		return "", errors.New("invalid --output format (expected text|json|ndjson|table|yaml)")
	}
}

// IsStructured reports whether the format is machine-readable structured output.
func IsStructured(format Format) bool {
	switch format {
	case FormatJSON, FormatNDJSON, FormatYAML:
		return true
	default:
		return false
	}
}

// Table is a pre-rendered table for table output formatting.
type Table struct {
	Headers []string   `json:"headers,omitempty" yaml:"headers,omitempty"`
	Rows    [][]string `json:"rows,omitempty" yaml:"rows,omitempty"`
}

// Printer handles output formatting across different formats.
type Printer struct {
	w      io.Writer
	format Format
	indent string
}

// NewPrinter creates a new Printer that writes to w in the given format.
func NewPrinter(w io.Writer, format Format) *Printer {
	return &Printer{
		w:      w,
		format: format,
		indent: "  ",
	}
}

// SetIndent sets the number of spaces used to indent JSON output.
func (p *Printer) SetIndent(spaces int) {
	if spaces < 0 {
		spaces = 0
	}
	p.indent = strings.Repeat(" ", spaces)
}

// Print outputs data in the configured format.
// A nil *tree.Node is the empty tree and prints as an empty object in the
// structured formats.
func (p *Printer) Print(ctx context.Context, data interface{}) error {
	if data == nil {
		return nil
	}
	if n, ok := data.(*tree.Node); ok && n == nil && p.format != FormatText {
		data = map[string]interface{}{}
	}

	data = ApplyAgentOptions(ctx, data)

	switch p.format {
	case FormatJSON:
		return p.printJSON(ctx, data)
	case FormatNDJSON:
		return p.printNDJSON(ctx, data)
	case FormatYAML:
		return p.printYAML(data)
	case FormatTable:
		return p.printTable(data)
	case FormatText:
		return p.printText(data)
	default:
		return fmt.Errorf("unsupported format: %s", p.format)
	}
}

// printJSON outputs data as indented JSON, or the jq query results when a
// query is present in the context.
func (p *Printer) printJSON(ctx context.Context, data interface{}) error {
	query := QueryFromContext(ctx)
	enc := json.NewEncoder(p.w)
	enc.SetEscapeHTML(false)
	if query == "" {
		enc.SetIndent("", p.indent)
		return enc.Encode(data)
	}
	return runQuery(query, data, enc.Encode)
}

// printNDJSON writes one JSON value per line: query results, slice
// elements, or the value itself.
func (p *Printer) printNDJSON(ctx context.Context, data interface{}) error {
	enc := json.NewEncoder(p.w)
	enc.SetEscapeHTML(false)

	if query := QueryFromContext(ctx); query != "" {
		return runQuery(query, data, enc.Encode)
	}

	v := reflect.ValueOf(data)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}

	if v.Kind() == reflect.Slice || v.Kind() == reflect.Array {
		for i := 0; i < v.Len(); i++ {
			if err := enc.Encode(v.Index(i).Interface()); err != nil {
				return err
			}
		}
		return nil
	}

	return enc.Encode(data)
}

// runQuery feeds data through a jq expression. gojq only understands plain
// maps, slices and scalars, so data is normalised through JSON first.
func runQuery(query string, data interface{}, emit func(interface{}) error) error {
	parsed, err := gojq.Parse(query)
	if err != nil {
		return fmt.Errorf("invalid --query: %w", err)
	}
	code, err := gojq.Compile(parsed)
	if err != nil {
		return fmt.Errorf("invalid --query: %w", err)
	}

	input, err := normalize(data)
	if err != nil {
		return err
	}

	iter := code.Run(input)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			return fmt.Errorf("query error: %w", err)
		}
		if err := emit(v); err != nil {
			return err
		}
	}
	return nil
}

func normalize(data interface{}) (interface{}, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode query input: %w", err)
	}
	var out interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode query input: %w", err)
	}
	return out, nil
}

func (p *Printer) printYAML(data interface{}) error {
	enc := yaml.NewEncoder(p.w)
	enc.SetIndent(2)
	defer func() { _ = enc.Close() }()
	return enc.Encode(data)
}

// printText outputs data as human-readable text.
// Trees are drawn with connectors, maps and structs as key-value pairs,
// slices one item per line.
func (p *Printer) printText(data interface{}) error {
	if n, ok := data.(*tree.Node); ok {
		_, err := fmt.Fprintln(p.w, RenderTree(n))
		return err
	}

	v := reflect.ValueOf(data)
	if !v.IsValid() {
		return nil
	}

	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Map:
		return p.printTextMap(v)
	case reflect.Struct:
		return p.printTextStruct(v)
	case reflect.Slice, reflect.Array:
		return p.printTextSlice(v)
	default:
		_, err := fmt.Fprintln(p.w, v.Interface())
		return err
	}
}

func (p *Printer) printTextMap(v reflect.Value) error {
	if v.Len() == 0 {
		return nil
	}

	keys := v.MapKeys()
	sort.Slice(keys, func(i, j int) bool {
		return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
	})

	for _, key := range keys {
		val := v.MapIndex(key)
		if !val.IsValid() {
			continue
		}
		if _, err := fmt.Fprintf(p.w, "%s: %v\n", key.Interface(), val.Interface()); err != nil {
			return err
		}
	}
	return nil
}

func (p *Printer) printTextStruct(v reflect.Value) error {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		value := v.Field(i)

		tag := field.Tag.Get("json")
		if strings.Contains(tag, "omitempty") && value.IsZero() {
			continue
		}
		if _, err := fmt.Fprintf(p.w, "%s: %v\n", fieldLabel(field), value.Interface()); err != nil {
			return err
		}
	}
	return nil
}

func (p *Printer) printTextSlice(v reflect.Value) error {
	for i := 0; i < v.Len(); i++ {
		item := v.Index(i)
		for item.Kind() == reflect.Ptr && !item.IsNil() {
			item = item.Elem()
		}
		if item.Kind() == reflect.Struct {
			if err := p.printTextStruct(item); err != nil {
				return err
			}
			if i < v.Len()-1 {
				if _, err := fmt.Fprintln(p.w); err != nil {
					return err
				}
			}
			continue
		}
		if _, err := fmt.Fprintln(p.w, item.Interface()); err != nil {
			return err
		}
	}
	return nil
}

func (p *Printer) printTable(data interface{}) error {
	if table, ok := data.(Table); ok {
		return p.printTableData(table.Headers, table.Rows)
	}

	v := reflect.ValueOf(data)
	if !v.IsValid() {
		return nil
	}
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}

	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return fmt.Errorf("table format requires a list of items")
	}
	if v.Len() == 0 {
		return nil
	}

	headers, rows := buildTable(v)
	return p.printTableData(headers, rows)
}

func (p *Printer) printTableData(headers []string, rows [][]string) error {
	w := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, strings.Join(headers, "\t"))
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}

	return w.Flush()
}

func buildTable(v reflect.Value) ([]string, [][]string) {
	first := v.Index(0)
	for first.Kind() == reflect.Ptr && !first.IsNil() {
		first = first.Elem()
	}

	if first.Kind() != reflect.Struct {
		rows := make([][]string, 0, v.Len())
		for i := 0; i < v.Len(); i++ {
			rows = append(rows, []string{fmt.Sprint(v.Index(i).Interface())})
		}
		return []string{"value"}, rows
	}

	type column struct {
		name string
		idx  int
	}
	columns := make([]column, 0, first.NumField())
	for i := 0; i < first.NumField(); i++ {
		f := first.Type().Field(i)
		if !f.IsExported() {
			continue
		}
		columns = append(columns, column{name: fieldLabel(f), idx: i})
	}

	headers := make([]string, 0, len(columns))
	for _, c := range columns {
		headers = append(headers, c.name)
	}

	rows := make([][]string, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		item := v.Index(i)
		for item.Kind() == reflect.Ptr && !item.IsNil() {
			item = item.Elem()
		}
		if item.Kind() != reflect.Struct {
			rows = append(rows, []string{fmt.Sprint(item.Interface())})
			continue
		}
		row := make([]string, 0, len(columns))
		for _, c := range columns {
			row = append(row, cellText(item.Field(c.idx)))
		}
		rows = append(rows, row)
	}

	return headers, rows
}

func cellText(v reflect.Value) string {
	if v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.String {
		parts := make([]string, v.Len())
		for i := range parts {
			parts[i] = v.Index(i).String()
		}
		return strings.Join(parts, " > ")
	}
	return fmt.Sprint(v.Interface())
}

func fieldLabel(f reflect.StructField) string {
	if tag := f.Tag.Get("json"); tag != "" {
		name := strings.Split(tag, ",")[0]
		if name != "" && name != "-" {
			return name
		}
	}
	return f.Name
}
