package excel

// RawRowData represents a row of raw spreadsheet data as header -> cell text
type RawRowData map[string]string

// ExcelData represents a complete tabular dataset read from CSV or XLSX
type ExcelData struct {
	Headers    []string          // Column headers, trimmed and made unique
	Rows       []RawRowData      // Data rows
	Duplicates []DuplicateHeader // Repeated headers that were renamed
}

// DuplicateHeader records a repeated column header renamed on read. Index is
// the zero-based column position.
type DuplicateHeader struct {
	Index    int
	Original string
	Renamed  string
}

// HasColumn reports whether header is present
func (d *ExcelData) HasColumn(header string) bool {
	for _, h := range d.Headers {
		if h == header {
			return true
		}
	}
	return false
}

// Column returns every row's cell for header, in row order
func (d *ExcelData) Column(header string) []string {
	values := make([]string, len(d.Rows))
	for i, row := range d.Rows {
		values[i] = row[header]
	}
	return values
}
