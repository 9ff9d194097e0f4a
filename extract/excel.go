package extract

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/shakinm/xlsReader/xls"
	"github.com/shakinm/xlsReader/xls/structure"
	"github.com/xuri/excelize/v2"
)

// extractXLSX renders every sheet of an XLSX workbook as labeled rows.
// The first row is treated as the header; each data row comes out as
// "Row N: header: value | header: value" so that column meaning survives
// the conversion to flat text.
func extractXLSX(data []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	var buf strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil || len(rows) == 0 {
			continue
		}
		writeSheet(&buf, sheet, rows)
	}
	return buf.String(), nil
}

// extractXLS handles the legacy BIFF workbook format.
func extractXLS(data []byte) (string, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("open xls: %w", err)
	}

	var buf strings.Builder
	for i := 0; i < wb.GetNumberSheets(); i++ {
		sheet, err := wb.GetSheet(i)
		if err != nil || sheet == nil {
			continue
		}
		xlsRows := sheet.GetRows()
		rows := make([][]string, 0, len(xlsRows))
		for _, row := range xlsRows {
			rows = append(rows, xlsRowValues(row.GetCols()))
		}
		if len(rows) == 0 {
			continue
		}
		writeSheet(&buf, sheet.GetName(), rows)
	}
	return buf.String(), nil
}

func writeSheet(buf *strings.Builder, sheet string, rows [][]string) {
	if buf.Len() > 0 {
		buf.WriteByte('\n')
	}
	buf.WriteString("Sheet: ")
	buf.WriteString(sheet)
	buf.WriteByte('\n')

	header := rows[0]
	for i, row := range rows[1:] {
		buf.WriteString("Row ")
		buf.WriteString(strconv.Itoa(i + 1))
		buf.WriteString(": ")
		for col, value := range row {
			if col > 0 {
				buf.WriteString(" | ")
			}
			buf.WriteString(columnLabel(header, col))
			buf.WriteString(": ")
			buf.WriteString(value)
		}
		buf.WriteByte('\n')
	}
}

func columnLabel(header []string, col int) string {
	if col < len(header) && header[col] != "" {
		return header[col]
	}
	return "col" + strconv.Itoa(col+1)
}

func xlsRowValues(cols []structure.CellData) []string {
	out := make([]string, 0, len(cols))
	for _, col := range cols {
		val := col.GetString()
		if val == "" {
			if num := col.GetFloat64(); num != 0 {
				val = strconv.FormatFloat(num, 'f', -1, 64)
			} else if in := col.GetInt64(); in != 0 {
				val = strconv.FormatInt(in, 10)
			}
		}
		out = append(out, val)
	}
	return out
}
