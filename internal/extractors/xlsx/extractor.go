// Package xlsx extracts text blocks from Excel workbooks in the OOXML
// format. The .xls extension is accepted for workbooks saved with the
// modern format under the old name; legacy binary BIFF files are rejected.
package xlsx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/quillon/docuchat/internal/core/domain"
	"github.com/quillon/docuchat/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// Extractor handles XLSX workbooks.
type Extractor struct{}

// New creates an XLSX extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extensions returns the file extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{"xlsx", "xls"}
}

// Extract opens the workbook as a ZIP archive, resolves shared strings and
// produces one text block per non-empty worksheet row. Cells within a row are
// joined with a single space, sheets are processed in archive order.
func (e *Extractor) Extract(_ context.Context, fileName string, content []byte) ([]string, error) {
	reader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not an OOXML workbook (legacy binary .xls is not supported)", domain.ErrUnsupportedFileType, fileName)
	}

	shared, err := readSharedStrings(reader)
	if err != nil {
		return nil, err
	}

	var sheetNames []string
	for _, file := range reader.File {
		if strings.HasPrefix(file.Name, "xl/worksheets/sheet") && strings.HasSuffix(file.Name, ".xml") {
			sheetNames = append(sheetNames, file.Name)
		}
	}
	sort.Strings(sheetNames)

	var blocks []string
	for _, name := range sheetNames {
		data, err := readZipFile(reader, name)
		if err != nil {
			return nil, err
		}
		rows, err := parseSheet(data, shared)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		blocks = append(blocks, rows...)
	}
	return blocks, nil
}

func readZipFile(reader *zip.Reader, name string) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		return data, nil
	}
	return nil, nil
}

// sharedStringsXML represents xl/sharedStrings.xml.
type sharedStringsXML struct {
	Items []sharedString `xml:"si"`
}

type sharedString struct {
	Text  string   `xml:"t"`
	Inner []string `xml:"r>t"`
}

func readSharedStrings(reader *zip.Reader) ([]string, error) {
	data, err := readZipFile(reader, "xl/sharedStrings.xml")
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	var parsed sharedStringsXML
	if err := xml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse sharedStrings.xml: %w", err)
	}

	strs := make([]string, len(parsed.Items))
	for i, item := range parsed.Items {
		if item.Text != "" {
			strs[i] = item.Text
			continue
		}
		strs[i] = strings.Join(item.Inner, "")
	}
	return strs, nil
}

// worksheetXML represents a single xl/worksheets/sheetN.xml.
type worksheetXML struct {
	Rows []worksheetRow `xml:"sheetData>row"`
}

type worksheetRow struct {
	Cells []worksheetCell `xml:"c"`
}

type worksheetCell struct {
	Type   string `xml:"t,attr"`
	Value  string `xml:"v"`
	Inline string `xml:"is>t"`
}

// parseSheet turns each non-empty worksheet row into a text block.
func parseSheet(content []byte, shared []string) ([]string, error) {
	var sheet worksheetXML
	if err := xml.Unmarshal(content, &sheet); err != nil {
		return nil, err
	}

	var rows []string
	for _, row := range sheet.Rows {
		var cells []string
		for _, cell := range row.Cells {
			if value := cellText(cell, shared); value != "" {
				cells = append(cells, value)
			}
		}
		if len(cells) > 0 {
			rows = append(rows, strings.Join(cells, " "))
		}
	}
	return rows, nil
}

func cellText(cell worksheetCell, shared []string) string {
	switch cell.Type {
	case "s":
		idx, err := strconv.Atoi(cell.Value)
		if err != nil || idx < 0 || idx >= len(shared) {
			return ""
		}
		return strings.TrimSpace(shared[idx])
	case "inlineStr":
		return strings.TrimSpace(cell.Inline)
	default:
		return strings.TrimSpace(cell.Value)
	}
}
