package consolidation

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

// Renderer turns a bill of materials into a downloadable document.
type Renderer interface {
	Render(report Report) ([]byte, error)
	ContentType() string
	Extension() string
}

var header = []string{"Código", "Material", "Unidade", "Quantidade", "Preço unitário", "Subtotal"}

// CsvRenderer writes the semicolon separated layout spreadsheet tools expect in Brazil,
// with decimal commas.
type CsvRenderer struct{}

func NewCsvRenderer() *CsvRenderer {
	return &CsvRenderer{}
}

func (r *CsvRenderer) ContentType() string {
	return "text/csv; charset=utf-8"
}

func (r *CsvRenderer) Extension() string {
	return "csv"
}

func (r *CsvRenderer) Render(report Report) ([]byte, error) {
	rows := make([][]string, 0, len(report.Lines)+2)
	rows = append(rows, header)
	for _, line := range report.Lines {
		rows = append(rows, []string{
			line.Code,
			line.Name,
			line.Unit,
			decimalComma(line.TotalQuantity.String()),
			decimalComma(line.UnitPrice.StringFixed(2)),
			decimalComma(line.Subtotal.StringFixed(2)),
		})
	}
	rows = append(rows, []string{"", "", "", "", "Total", decimalComma(report.TotalCost.StringFixed(2))})

	var b bytes.Buffer
	writer := csv.NewWriter(&b)
	writer.Comma = ';'
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			log.Errorf("Error writing to csv: %v", err)
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return nil, err
	}
	return b.Bytes(), nil
}

func decimalComma(value string) string {
	return strings.Replace(value, ".", ",", 1)
}

// XlsxRenderer builds a single sheet workbook with a title row, a styled header and a
// totals row.
type XlsxRenderer struct{}

func NewXlsxRenderer() *XlsxRenderer {
	return &XlsxRenderer{}
}

func (r *XlsxRenderer) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (r *XlsxRenderer) Extension() string {
	return "xlsx"
}

const sheetName = "Materiais"

func (r *XlsxRenderer) Render(report Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	widths := map[string]float64{"A": 14, "B": 45, "C": 10, "D": 14, "E": 16, "F": 16}
	for col, width := range widths {
		if err := f.SetColWidth(sheetName, col, col, width); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", col, err)
		}
	}

	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return nil, fmt.Errorf("create title style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#1F4E78"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	moneyFormat := "#,##0.00"
	moneyStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &moneyFormat})
	if err != nil {
		return nil, fmt.Errorf("create money style: %w", err)
	}
	totalStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}, CustomNumFmt: &moneyFormat})
	if err != nil {
		return nil, fmt.Errorf("create total style: %w", err)
	}

	title := report.Budget.Name
	if title == "" {
		title = fmt.Sprintf("Orçamento %d", report.Budget.Id)
	}
	if err := f.SetCellValue(sheetName, "A1", title); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheetName, "A1", "A1", titleStyle); err != nil {
		return nil, err
	}

	if err := f.SetSheetRow(sheetName, "A2", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	if err := f.SetCellStyle(sheetName, "A2", "F2", headerStyle); err != nil {
		return nil, err
	}

	row := 3
	for _, line := range report.Lines {
		values := []any{
			line.Code,
			line.Name,
			line.Unit,
			line.TotalQuantity.InexactFloat64(),
			line.UnitPrice.InexactFloat64(),
			line.Subtotal.InexactFloat64(),
		}
		if err := f.SetSheetRow(sheetName, fmt.Sprintf("A%d", row), &values); err != nil {
			return nil, fmt.Errorf("write line %d: %w", line.MaterialId, err)
		}
		if err := f.SetCellStyle(sheetName, fmt.Sprintf("E%d", row), fmt.Sprintf("F%d", row), moneyStyle); err != nil {
			return nil, err
		}
		row++
	}

	if err := f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), "Total"); err != nil {
		return nil, err
	}
	if err := f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), report.TotalCost.InexactFloat64()); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheetName, fmt.Sprintf("E%d", row), fmt.Sprintf("F%d", row), totalStyle); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
