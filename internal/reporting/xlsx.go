package reporting

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/xkilldash9x/hrmcheck/api/schemas"
)

// ResultsSheet is the worksheet the spreadsheet report writes to.
const ResultsSheet = "Results"

var xlsxHeader = []interface{}{"Run", "Scenario", "Description", "Result", "Status", "Condition", "Message", "Duration (s)", "Started"}

// xlsxRenderer writes one row per outcome, with the configured pass/fail
// marker in the Result column.
type xlsxRenderer struct{}

func (xlsxRenderer) render(w io.Writer, runs []*schemas.Run, m meta) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ResultsSheet); err != nil {
		return fmt.Errorf("failed to name results sheet: %w", err)
	}

	header := xlsxHeader
	if err := f.SetSheetRow(ResultsSheet, "A1", &header); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetRowStyle(ResultsSheet, 1, 1, bold); err != nil {
		return err
	}

	row := 2
	for _, run := range runs {
		for _, o := range run.Outcomes {
			cell, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return err
			}
			values := []interface{}{
				run.ID,
				o.Scenario,
				o.Description,
				m.resultMarker(o),
				string(o.Status),
				o.Condition,
				o.Message,
				o.Duration.Seconds(),
				xlsxTime(o.StartedAt),
			}
			if err := f.SetSheetRow(ResultsSheet, cell, &values); err != nil {
				return fmt.Errorf("failed to write row %d: %w", row, err)
			}
			row++
		}
	}

	for col, width := range map[string]float64{"A": 38, "B": 18, "C": 48, "D": 14, "G": 80} {
		if err := f.SetColWidth(ResultsSheet, col, col, width); err != nil {
			return err
		}
	}
	if err := f.SetPanes(ResultsSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return err
	}

	_, err = f.WriteTo(w)
	return err
}

func xlsxTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
