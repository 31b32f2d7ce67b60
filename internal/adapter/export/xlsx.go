package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/burenotti/go_health_risk/internal/domain/record"
	"github.com/xuri/excelize/v2"
)

const (
	SheetName   = "Assessments"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var Headers = []string{
	"Recorded At",
	"Record ID",
	"Age",
	"Weight (kg)",
	"Height (cm)",
	"Blood Pressure",
	"Resting HR",
	"Smoking",
	"Exercise Days",
	"Cholesterol",
	"BMI",
	"BMI Category",
	"BP Category",
	"Score",
	"Risk Level",
	"Risk Factors",
}

var columnWidths = []float64{20, 38, 6, 12, 12, 15, 11, 10, 14, 12, 8, 14, 12, 7, 12, 60}

// Records renders the assessment history as a single-sheet workbook, one
// row per record in the order given.
func Records(records []*record.Record) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, header := range Headers {
		if err := setCell(f, i+1, 1, header); err != nil {
			return nil, err
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(SheetName, col, col, columnWidths[i]); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(Headers), 1)
	if err := f.SetCellStyle(SheetName, "A1", last, headerStyle); err != nil {
		return nil, fmt.Errorf("failed to set header style: %w", err)
	}

	for i, r := range records {
		row := i + 2
		o, a := r.Observation, r.Assessment
		values := []any{
			r.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
			r.RecordID,
			o.Age,
			o.WeightKg,
			o.HeightCm,
			fmt.Sprintf("%d/%d", o.SystolicBp, o.DiastolicBp),
			o.RestingHeartRate,
			string(o.SmokingStatus),
			o.ExerciseDaysPerWeek,
			string(o.Cholesterol),
			a.Metrics.BMI,
			string(a.Metrics.BMICategory),
			string(a.Metrics.BPCategory),
			a.Score,
			string(a.Level),
			strings.Join(a.Factors, ", "),
		}
		for col, v := range values {
			if err := setCell(f, col+1, row, v); err != nil {
				return nil, fmt.Errorf("row %d: %w", row, err)
			}
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func setCell(f *excelize.File, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(SheetName, cell, value)
}
