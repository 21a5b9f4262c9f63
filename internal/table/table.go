package table

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ErrUnknownColumn is returned when a caller asks for a column name that was
// never configured for the dataset.
var ErrUnknownColumn = errors.New("unknown column")

// ParseError reports a malformed line in a source file. Loading is
// all-or-nothing: the first ParseError aborts the load.
type ParseError struct {
	Path string
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: line %d: %s", e.Path, e.Line, e.Msg)
}

// Kind is the inferred value type of a column.
type Kind int

const (
	KindInt Kind = iota
	KindFloat
)

func (k Kind) String() string {
	if k == KindInt {
		return "int"
	}
	return "float"
}

// Column holds one parsed column. Values are float64 regardless of kind so
// downstream statistics work uniformly; Kind records whether every source
// field was a whole number.
type Column struct {
	Name   string
	Kind   Kind
	Values []float64
}

// Dataset is an immutable, ordered tabular dataset parsed from one file.
type Dataset struct {
	path    string
	names   []string
	columns map[string]*Column
	rows    int
}

func (d *Dataset) Path() string    { return d.path }
func (d *Dataset) NumRows() int    { return d.rows }
func (d *Dataset) Names() []string { return append([]string(nil), d.names...) }

// Column returns the named column or ErrUnknownColumn.
func (d *Dataset) Column(name string) (*Column, error) {
	col, ok := d.columns[name]
	if !ok {
		return nil, fmt.Errorf("column %q: %w", name, ErrUnknownColumn)
	}
	return col, nil
}

// Load parses a whitespace-aligned fixed-width file into a Dataset. Column
// boundaries are inferred from the content: a character position belongs to a
// separator run iff it is blank on every non-empty line. The file carries no
// header; names come from the caller and must match the inferred column count.
func Load(path string, columns []string) (*Dataset, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}

	spans, err := inferSpans(path, lines, len(columns))
	if err != nil {
		return nil, err
	}

	return build(path, columns, lines, spans)
}

// LoadWidths parses with explicit column widths instead of inferring
// boundaries, for files whose alignment is too irregular for inference.
// Widths are in characters, left to right; the last column runs to
// end-of-line.
func LoadWidths(path string, columns []string, widths []int) (*Dataset, error) {
	if len(widths) != len(columns) {
		return nil, fmt.Errorf("got %d widths for %d columns", len(widths), len(columns))
	}

	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}

	spans := make([]span, len(widths))
	start := 0
	for i, w := range widths {
		if w <= 0 {
			return nil, fmt.Errorf("column %q: width must be positive", columns[i])
		}
		spans[i] = span{start: start, end: start + w}
		start += w
	}
	spans[len(spans)-1].end = maxLineLen(lines)

	return build(path, columns, lines, spans)
}

type numberedLine struct {
	num  int
	text string
}

func readLines(path string) ([]numberedLine, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []numberedLine
	scanner := bufio.NewScanner(file)
	num := 0
	for scanner.Scan() {
		num++
		text := strings.TrimRight(scanner.Text(), " \t\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		lines = append(lines, numberedLine{num: num, text: text})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

type span struct {
	start int
	end   int
}

// inferSpans finds maximal runs of character positions that are non-blank on
// at least one line. Each run is one column.
func inferSpans(path string, lines []numberedLine, want int) ([]span, error) {
	if len(lines) == 0 {
		return nil, &ParseError{Path: path, Line: 0, Msg: "file has no data lines"}
	}

	width := maxLineLen(lines)
	blank := make([]bool, width)
	for i := range blank {
		blank[i] = true
	}
	for _, line := range lines {
		for i, r := range line.text {
			if r != ' ' && r != '\t' {
				blank[i] = false
			}
		}
	}

	var spans []span
	inCol := false
	for i := 0; i < width; i++ {
		if !blank[i] && !inCol {
			spans = append(spans, span{start: i})
			inCol = true
		}
		if blank[i] && inCol {
			spans[len(spans)-1].end = i
			inCol = false
		}
	}
	if inCol {
		spans[len(spans)-1].end = width
	}

	if len(spans) != want {
		return nil, &ParseError{
			Path: path,
			Line: lines[0].num,
			Msg:  fmt.Sprintf("inferred %d columns, want %d", len(spans), want),
		}
	}
	return spans, nil
}

func maxLineLen(lines []numberedLine) int {
	width := 0
	for _, line := range lines {
		if len(line.text) > width {
			width = len(line.text)
		}
	}
	return width
}

func build(path string, columns []string, lines []numberedLine, spans []span) (*Dataset, error) {
	fields := make([][]string, len(columns))
	for i := range fields {
		fields[i] = make([]string, 0, len(lines))
	}

	for _, line := range lines {
		for i, sp := range spans {
			field := strings.TrimSpace(slice(line.text, sp))
			if field == "" {
				return nil, &ParseError{
					Path: path,
					Line: line.num,
					Msg:  fmt.Sprintf("missing field for column %q", columns[i]),
				}
			}
			fields[i] = append(fields[i], field)
		}
	}

	ds := &Dataset{
		path:    path,
		names:   append([]string(nil), columns...),
		columns: make(map[string]*Column, len(columns)),
		rows:    len(lines),
	}
	for i, name := range columns {
		col, err := parseColumn(path, name, fields[i], lines)
		if err != nil {
			return nil, err
		}
		ds.columns[name] = col
	}
	return ds, nil
}

func slice(text string, sp span) string {
	if sp.start >= len(text) {
		return ""
	}
	end := sp.end
	if end > len(text) {
		end = len(text)
	}
	return text[sp.start:end]
}

// parseColumn types a column as int when every field parses as a whole
// number, otherwise as float. A field that is neither fails the whole load.
func parseColumn(path, name string, raw []string, lines []numberedLine) (*Column, error) {
	col := &Column{Name: name, Kind: KindInt, Values: make([]float64, len(raw))}

	for i, field := range raw {
		if col.Kind == KindInt {
			if v, err := strconv.ParseInt(field, 10, 64); err == nil {
				col.Values[i] = float64(v)
				continue
			}
			// Earlier whole-number values are already exact as float64.
			col.Kind = KindFloat
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, &ParseError{
				Path: path,
				Line: lines[i].num,
				Msg:  fmt.Sprintf("column %q: cannot parse %q as a number", name, field),
			}
		}
		col.Values[i] = v
	}
	return col, nil
}
