// Package export renders batch results and analysis history as XLSX workbooks.
package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"github.com/zulandar/sentimeter/internal/models"
)

const (
	resultsSheet = "Results"
	historySheet = "History"
)

// JobResults renders a batch job's per-item results.
func JobResults(job *models.BatchJob) ([]byte, error) {
	headers := []string{"#", "Text", "Success", "Sentiment", "Score", "Explanation", "Keywords", "Error"}
	rows := make([][]interface{}, 0, len(job.Results))
	for i, r := range job.Results {
		var score interface{}
		if r.Score != nil {
			score = *r.Score
		}
		rows = append(rows, []interface{}{
			i + 1, r.Text, r.Success, r.Sentiment, score, r.Explanation, strings.Join(r.Keywords, ", "), r.Error,
		})
	}
	widths := map[string]float64{"A": 6, "B": 60, "C": 10, "D": 12, "E": 8, "F": 60, "G": 30, "H": 40}
	return render(resultsSheet, headers, rows, widths)
}

// History renders analysis records, in the order given.
func History(recs []models.AnalysisRecord) ([]byte, error) {
	headers := []string{"Date", "Text", "Sentiment", "Score", "Explanation", "Keywords"}
	rows := make([][]interface{}, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, []interface{}{
			r.CreatedAt.Format("2006-01-02 15:04:05"), r.Text, r.Sentiment, r.Score, r.Explanation, strings.Join(r.Keywords, ", "),
		})
	}
	widths := map[string]float64{"A": 20, "B": 60, "C": 12, "D": 8, "E": 60, "F": 30}
	return render(historySheet, headers, rows, widths)
}

func render(sheet string, headers []string, rows [][]interface{}, widths map[string]float64) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("export: rename sheet: %w", err)
	}

	for i, h := range headers {
		if err := setCell(f, sheet, i+1, 1, h); err != nil {
			return nil, err
		}
	}
	if len(headers) > 0 {
		style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return nil, fmt.Errorf("export: header style: %w", err)
		}
		last, err := excelize.CoordinatesToCellName(len(headers), 1)
		if err != nil {
			return nil, fmt.Errorf("export: header range: %w", err)
		}
		if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
			return nil, fmt.Errorf("export: style header: %w", err)
		}
	}

	for r, row := range rows {
		for c, v := range row {
			if v == nil {
				continue
			}
			if err := setCell(f, sheet, c+1, r+2, v); err != nil {
				return nil, err
			}
		}
	}

	for col, w := range widths {
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return nil, fmt.Errorf("export: width of column %s: %w", col, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("export: write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func setCell(f *excelize.File, sheet string, col, row int, v interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("export: cell (%d,%d): %w", col, row, err)
	}
	if err := f.SetCellValue(sheet, cell, v); err != nil {
		return fmt.Errorf("export: set %s: %w", cell, err)
	}
	return nil
}
