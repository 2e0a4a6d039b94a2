package importer

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

var ErrEmptyInput = errors.New("no data rows found in file")
var ErrUnsupportedFormat = errors.New("unsupported file format")

// RawRecord is one candidate parcel as it came out of the file: a
// spreadsheet row or a blank-line-delimited text block. Values keep their
// source type (string or float64) so the date column can tell serial
// numbers from text.
type RawRecord struct {
	Row    int
	Values map[string]interface{}
}

type Source struct {
	Headers []string
	Records []RawRecord
}

// ReadSource turns uploaded file bytes into raw records, dispatching on
// the file extension.
func ReadSource(data []byte, filename string) (*Source, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		return readWorkbook(data)
	case ".docx":
		text, err := extractDocxText(data)
		if err != nil {
			return nil, err
		}
		return readTextBlocks(text)
	case ".txt":
		return readTextBlocks(string(data))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

func readWorkbook(data []byte) (*Source, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, ErrEmptyInput
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) < 2 {
		return nil, ErrEmptyInput
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}

	records := make([]RawRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isEmptyRow(row) {
			continue
		}
		values := make(map[string]interface{}, len(headers))
		for col, header := range headers {
			if header == "" || col >= len(row) {
				continue
			}
			values[header] = cellValue(row[col])
		}
		records = append(records, RawRecord{Row: len(records) + 1, Values: values})
	}
	if len(records) == 0 {
		return nil, ErrEmptyInput
	}

	return &Source{Headers: headers, Records: records}, nil
}

// cellValue keeps numeric cells numeric. With RawCellValue, date cells
// arrive as their serial day-count.
func cellValue(cell string) interface{} {
	trimmed := strings.TrimSpace(cell)
	if n, err := strconv.ParseFloat(trimmed, 64); err == nil && trimmed != "" {
		return n
	}
	return trimmed
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// readTextBlocks splits document text into blank-line-delimited blocks,
// one candidate record each, with "label: value" lines split on the first
// half-width or full-width colon.
func readTextBlocks(text string) (*Source, error) {
	var headers []string
	seen := make(map[string]bool)
	var records []RawRecord

	for _, block := range splitBlocks(text) {
		values := make(map[string]interface{})
		for _, line := range block {
			label, value, ok := splitLabelLine(line)
			if !ok {
				continue
			}
			values[label] = value
			if !seen[label] {
				seen[label] = true
				headers = append(headers, label)
			}
		}
		if len(values) == 0 {
			continue
		}
		records = append(records, RawRecord{Row: len(records) + 1, Values: values})
	}

	if len(records) == 0 {
		return nil, ErrEmptyInput
	}
	return &Source{Headers: headers, Records: records}, nil
}

func splitBlocks(text string) [][]string {
	var blocks [][]string
	var current []string

	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			if len(current) > 0 {
				blocks = append(blocks, current)
				current = nil
			}
			continue
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		blocks = append(blocks, current)
	}
	return blocks
}

func splitLabelLine(line string) (label, value string, ok bool) {
	idx := strings.IndexAny(line, ":：")
	if idx < 0 {
		return "", "", false
	}
	_, size := utf8.DecodeRuneInString(line[idx:])
	label = strings.TrimSpace(line[:idx])
	value = strings.TrimSpace(line[idx+size:])
	if label == "" {
		return "", "", false
	}
	return label, value, true
}

// docx structure we care about: word/document.xml with text runs in w:t
// elements and paragraphs in w:p.
func extractDocxText(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open document: %w", err)
	}

	var doc io.ReadCloser
	for _, file := range zr.File {
		if file.Name == "word/document.xml" {
			doc, err = file.Open()
			if err != nil {
				return "", fmt.Errorf("failed to open document body: %w", err)
			}
			break
		}
	}
	if doc == nil {
		return "", errors.New("document has no word/document.xml part")
	}
	defer doc.Close()

	var sb strings.Builder
	decoder := xml.NewDecoder(doc)
	inText := false
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to parse document body: %w", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
	return sb.String(), nil
}
