package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Parser converts decoded CSV rows into canonical records.
type Parser interface {
	Parse(rows [][]string) ([]Record, error)
	Format() string
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
}

// FileInfo describes a CSV file in the import directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// Formats lists registered format names in sorted order.
func (r *Registry) Formats() []string {
	out := make([]string, 0, len(r.parsers))
	for k := range r.parsers {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&CreditasParser{})
	r.Register(&RaiffeisenParser{})
	r.Register(&GenericParser{})
	return r
}

// DefaultDelimiter separates fields in Czech bank exports.
const DefaultDelimiter = ';'

// Options controls how a statement is read.
type Options struct {
	// Delimiter defaults to DefaultDelimiter.
	Delimiter rune
	// Format skips detection when set.
	Format string
}

// Result is a parsed statement.
type Result struct {
	Format  string
	Records []Record
}

// Parse decodes, tokenizes, classifies and parses a bank statement.
func (r *Registry) Parse(src io.Reader, opts Options) (*Result, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("reading statement: %w", err)
	}
	text, err := Decode(data)
	if err != nil {
		return nil, err
	}

	delim := opts.Delimiter
	if delim == 0 {
		delim = DefaultDelimiter
	}
	rows, err := ReadRows(strings.NewReader(text), delim)
	if err != nil {
		return nil, err
	}

	format := opts.Format
	if format == "" {
		var first []string
		if len(rows) > 0 {
			first = trimAll(rows[0])
		}
		format = Detect(first)
	}
	p := r.Get(format)
	if p == nil {
		return nil, fmt.Errorf("unknown format %q (available: %s)", format, strings.Join(r.Formats(), ", "))
	}

	records, err := p.Parse(rows)
	if err != nil {
		return nil, fmt.Errorf("parsing %s statement: %w", p.Format(), err)
	}
	return &Result{Format: p.Format(), Records: records}, nil
}

// ReadRows tokenizes CSV text. Rows may have differing widths.
func ReadRows(r io.Reader, delim rune) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	return rows, nil
}

// importDir is the subdirectory for import CSVs.
const importDir = "import"

// processedDir is the subdirectory for processed CSVs.
const processedDir = "import/processed"

// Scan returns CSV files in <root>/import/.
func Scan(root string) ([]FileInfo, error) {
	dir := filepath.Join(root, importDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(e.Name()), ".csv") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// MarkProcessed moves a file from import/ to import/processed/.
func MarkProcessed(root, fileName string) error {
	src := filepath.Join(root, importDir, fileName)
	dstDir := filepath.Join(root, processedDir)

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	dst := filepath.Join(dstDir, fileName)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}
