package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const xlsxSheet = "Report"

// XLSX renders the same report as a single-sheet workbook.
type XLSX struct{}

func (XLSX) Format() string { return "xlsx" }

func (XLSX) Render(w io.Writer, s Summary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"D3D3D3"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "808080", Style: 1},
			{Type: "right", Color: "808080", Style: 1},
			{Type: "top", Color: "808080", Style: 1},
			{Type: "bottom", Color: "808080", Style: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	// Title, blank, header, rows, blank, closing lines.
	cells := [][]string{{Title}, nil, {"Feature", "Value"}}
	for _, row := range s.Table {
		cells = append(cells, []string{row.Feature, row.Value})
	}
	cells = append(cells, nil,
		[]string{"Prediction:", s.Prediction},
		[]string{"Confidence:", s.Confidence},
	)

	for i, line := range cells {
		for j, v := range line {
			name, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return err
			}
			if err := f.SetCellStr(xlsxSheet, name, v); err != nil {
				return fmt.Errorf("write %s: %w", name, err)
			}
		}
	}
	if err := f.SetCellStyle(xlsxSheet, "A3", "B3", header); err != nil {
		return fmt.Errorf("style header: %w", err)
	}
	if err := f.SetColWidth(xlsxSheet, "A", "B", 30); err != nil {
		return fmt.Errorf("column width: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("render xlsx: %w", err)
	}
	return nil
}
