package excel

import (
	"bytes"
	"encoding/csv"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	apperrors "github.com/keatontom/salesforce-opportunity-analysis/internal/errors"

	"github.com/xuri/excelize/v2"
)

// Supported file types
const (
	FileTypeCSV  = "csv"
	FileTypeXLSX = "xlsx"
)

const utf8BOM = "\ufeff"

// DetectFileType maps a filename to a supported file type, or "" when unsupported
func DetectFileType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return FileTypeCSV
	case ".xlsx", ".xlsm":
		return FileTypeXLSX
	default:
		return ""
	}
}

// ReadBytes parses an uploaded file held in memory; filename selects the format
func ReadBytes(filename string, content []byte) (*ExcelData, error) {
	fileType := DetectFileType(filename)
	if fileType == "" {
		return nil, apperrors.UnsupportedFormat("only .csv and .xlsx files are supported: " + filename)
	}
	return read(fileType, bytes.NewReader(content))
}

func read(fileType string, src io.Reader) (*ExcelData, error) {
	switch fileType {
	case FileTypeCSV:
		return readCSVData(src)
	case FileTypeXLSX:
		return readExcelData(src)
	}
	return nil, apperrors.UnsupportedFormat("unsupported file type: " + fileType)
}

// readExcelData reads the first worksheet of a workbook
func readExcelData(src io.Reader) (*ExcelData, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, apperrors.WithCode(apperrors.CodeInvalidInput, apperrors.Wrap(err, "failed to open Excel workbook"))
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.InvalidInput("Excel workbook has no worksheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperrors.WithCode(apperrors.CodeInvalidInput, apperrors.Wrapf(err, "failed to read sheet %q", sheets[0]))
	}
	return processRows(rows)
}

// readCSVData reads CSV data, tolerating ragged rows and a leading BOM
func readCSVData(src io.Reader) (*ExcelData, error) {
	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.WithCode(apperrors.CodeInvalidInput, apperrors.Wrap(err, "failed to read CSV file"))
	}
	return processRows(rows)
}

// processRows converts raw string rows into ExcelData; the first row holds headers
func processRows(rows [][]string) (*ExcelData, error) {
	if len(rows) == 0 {
		return nil, apperrors.InvalidInput("file must have at least a header row")
	}

	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		if i == 0 {
			header = strings.TrimPrefix(header, utf8BOM)
		}
		headers[i] = strings.TrimSpace(header)
	}
	duplicates := renameDuplicates(headers)

	dataRows := make([]RawRowData, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		rowData := make(RawRowData, len(headers))
		for j, header := range headers {
			if j < len(row) {
				rowData[header] = strings.TrimSpace(row[j])
			} else {
				rowData[header] = ""
			}
		}
		dataRows = append(dataRows, rowData)
	}

	return &ExcelData{
		Headers:    headers,
		Rows:       dataRows,
		Duplicates: duplicates,
	}, nil
}

// renameDuplicates keeps the first occurrence of a repeated header and
// renames later ones in place to "Name.1", "Name.2" and so on, skipping
// names already taken. Blank headers are left alone.
func renameDuplicates(headers []string) []DuplicateHeader {
	taken := make(map[string]bool, len(headers))
	for _, h := range headers {
		taken[h] = true
	}

	var duplicates []DuplicateHeader
	seen := make(map[string]bool, len(headers))
	suffix := make(map[string]int)
	for i, h := range headers {
		if h == "" || !seen[h] {
			seen[h] = true
			continue
		}
		renamed := h
		for taken[renamed] {
			suffix[h]++
			renamed = h + "." + strconv.Itoa(suffix[h])
		}
		taken[renamed] = true
		headers[i] = renamed
		duplicates = append(duplicates, DuplicateHeader{Index: i, Original: h, Renamed: renamed})
	}
	return duplicates
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
