package tabular

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/commerce-reconciler/internal/core/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Reader decodes an upload into raw records plus the cheap profile stored on
// the registry row. The format comes from the filename extension; .txt is
// treated as CSV because several sources ship delimited text under it.
type Reader struct{}

func NewReader() *Reader {
	return &Reader{}
}

func (r *Reader) Read(ctx context.Context, filename string, src io.Reader) ([]domain.RawRecord, domain.FileProfile, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, domain.FileProfile{}, fmt.Errorf("read upload: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, domain.FileProfile{}, domain.WrapError(domain.ErrInvalidInput, "read tabular file", fmt.Errorf("%s is empty", filename))
	}

	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".csv", ".txt":
		return readCSV(data)
	case ".xlsx":
		return readXLSX(data)
	case ".json":
		return readJSON(data)
	default:
		return nil, domain.FileProfile{}, domain.WrapError(domain.ErrInvalidInput, "read tabular file", fmt.Errorf("unsupported extension %q", ext))
	}
}

func readCSV(data []byte) ([]domain.RawRecord, domain.FileProfile, error) {
	encoding := "utf-8"
	if bytes.HasPrefix(data, utf8BOM) {
		data = data[len(utf8BOM):]
		encoding = "utf-8-sig"
	} else if !utf8.Valid(data) {
		encoding = "unknown"
	}

	delim := sniffDelimiter(data)
	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = delim
	cr.FieldsPerRecord = -1

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, domain.FileProfile{}, fmt.Errorf("parse csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, domain.FileProfile{}, domain.WrapError(domain.ErrInvalidInput, "read tabular file", fmt.Errorf("no header row"))
	}

	headers := normalizeHeaders(rows[0])
	records := make([]domain.RawRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		fields := make(map[string]domain.Value, len(headers))
		for j, name := range headers {
			if j >= len(row) {
				fields[name] = domain.NullValue()
				continue
			}
			fields[name] = cellValue(row[j])
		}
		records = append(records, domain.RawRecord{Index: i, Fields: fields})
	}

	profile := domain.FileProfile{
		RowCount:       len(records),
		ColCount:       len(headers),
		DelimiterGuess: string(delim),
		EncodingGuess:  encoding,
	}
	return records, profile, nil
}

func readXLSX(data []byte) ([]domain.RawRecord, domain.FileProfile, error) {
	book, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, domain.FileProfile{}, fmt.Errorf("open workbook: %w", err)
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, domain.FileProfile{}, domain.WrapError(domain.ErrInvalidInput, "read tabular file", fmt.Errorf("workbook has no sheets"))
	}
	rows, err := book.GetRows(sheets[0])
	if err != nil {
		return nil, domain.FileProfile{}, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, domain.FileProfile{}, domain.WrapError(domain.ErrInvalidInput, "read tabular file", fmt.Errorf("sheet %s has no header row", sheets[0]))
	}

	headers := normalizeHeaders(rows[0])
	records := make([]domain.RawRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		fields := make(map[string]domain.Value, len(headers))
		for j, name := range headers {
			if j >= len(row) {
				fields[name] = domain.NullValue()
				continue
			}
			fields[name] = cellValue(row[j])
		}
		records = append(records, domain.RawRecord{Index: i, Fields: fields})
	}

	profile := domain.FileProfile{
		RowCount:      len(records),
		ColCount:      len(headers),
		EncodingGuess: "utf-8",
	}
	return records, profile, nil
}

// readJSON accepts either an array of flat objects or newline-delimited
// objects. Numbers and booleans keep their JSON type so the normalizers see
// them untouched.
func readJSON(data []byte) ([]domain.RawRecord, domain.FileProfile, error) {
	trimmed := bytes.TrimSpace(data)

	var objects []map[string]interface{}
	if trimmed[0] == '[' {
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		if err := dec.Decode(&objects); err != nil {
			return nil, domain.FileProfile{}, fmt.Errorf("parse json array: %w", err)
		}
	} else {
		for lineNo, line := range bytes.Split(trimmed, []byte("\n")) {
			line = bytes.TrimSpace(line)
			if len(line) == 0 {
				continue
			}
			dec := json.NewDecoder(bytes.NewReader(line))
			dec.UseNumber()
			var obj map[string]interface{}
			if err := dec.Decode(&obj); err != nil {
				return nil, domain.FileProfile{}, fmt.Errorf("parse json line %d: %w", lineNo+1, err)
			}
			objects = append(objects, obj)
		}
	}

	columns := make(map[string]struct{})
	records := make([]domain.RawRecord, 0, len(objects))
	for i, obj := range objects {
		fields := make(map[string]domain.Value, len(obj))
		for key, raw := range obj {
			name := snakeCase(key)
			if name == "" {
				continue
			}
			columns[name] = struct{}{}
			fields[name] = jsonValue(raw)
		}
		records = append(records, domain.RawRecord{Index: i, Fields: fields})
	}

	profile := domain.FileProfile{
		RowCount:      len(records),
		ColCount:      len(columns),
		EncodingGuess: "utf-8",
	}
	return records, profile, nil
}

func jsonValue(raw interface{}) domain.Value {
	switch v := raw.(type) {
	case nil:
		return domain.NullValue()
	case string:
		return cellValue(v)
	case bool:
		return domain.BoolValue(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return domain.UnparseableValue(v.String())
		}
		return domain.NumberValue(f)
	default:
		// Nested structures are not tabular cells; keep the raw JSON for
		// diagnostics.
		encoded, err := json.Marshal(v)
		if err != nil {
			return domain.UnparseableValue(fmt.Sprintf("%v", v))
		}
		return domain.UnparseableValue(string(encoded))
	}
}

func cellValue(raw string) domain.Value {
	if strings.TrimSpace(raw) == "" {
		return domain.NullValue()
	}
	return domain.StringValue(raw)
}

// sniffDelimiter counts candidate separators on the header line and picks the
// most frequent; comma wins ties and empty lines.
func sniffDelimiter(data []byte) rune {
	line := data
	if idx := bytes.IndexByte(data, '\n'); idx >= 0 {
		line = data[:idx]
	}

	best, bestCount := ',', 0
	for _, candidate := range []rune{',', ';', '\t', '|'} {
		if n := bytes.Count(line, []byte(string(candidate))); n > bestCount {
			best, bestCount = candidate, n
		}
	}
	return best
}

// normalizeHeaders snake_cases every header and keeps the result unique so a
// duplicated source column does not silently shadow the first one.
func normalizeHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	for i, h := range raw {
		name := snakeCase(h)
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		seen[name]++
		if n := seen[name]; n > 1 {
			name = fmt.Sprintf("%s_%d", name, n)
		}
		headers[i] = name
	}
	return headers
}

func snakeCase(s string) string {
	var b strings.Builder
	pendingUnderscore := false
	for _, r := range strings.TrimSpace(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingUnderscore && b.Len() > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			pendingUnderscore = false
			continue
		}
		pendingUnderscore = true
	}
	return b.String()
}
