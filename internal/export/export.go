package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"autoshop/internal/models"

	"github.com/xuri/excelize/v2"
)

const (
	SalesSheet = "Sales"

	// currencyFormat renders amounts like ₱1,234.50
	currencyFormat = `"₱"#,##0.00`
)

// FileName is the deterministic name of a sales export.
func FileName(period string, now time.Time) string {
	return fmt.Sprintf("sales_%s_%s.xlsx", period, now.Format("2006-01-02"))
}

// WriteSalesReport saves report as an xlsx workbook in dir and returns the
// file path. An existing file for the same period and day is overwritten.
func WriteSalesReport(report *models.SalesReport, dir string, now time.Time) (string, error) {
	if report == nil {
		return "", errors.New("sales report is nil")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(SalesSheet)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	if err := writeSales(f, report); err != nil {
		return "", err
	}

	filePath := filepath.Join(dir, FileName(report.Period, now))
	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %w", err)
	}
	return filePath, nil
}

func writeSales(f *excelize.File, report *models.SalesReport) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("error creating header style: %w", err)
	}
	format := currencyFormat
	amountStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &format})
	if err != nil {
		return fmt.Errorf("error creating amount style: %w", err)
	}
	totalStyle, err := f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Bold: true},
		CustomNumFmt: &format,
		Border:       []excelize.Border{{Type: "top", Color: "#000000", Style: 1}},
	})
	if err != nil {
		return fmt.Errorf("error creating total style: %w", err)
	}

	_ = f.SetCellValue(SalesSheet, "A1", "Period")
	_ = f.SetCellValue(SalesSheet, "B1", report.Period)
	_ = f.SetCellValue(SalesSheet, "C1", report.GeneratedAt.Format("2006-01-02 15:04"))

	_ = f.SetCellValue(SalesSheet, "A2", "Slot")
	_ = f.SetCellValue(SalesSheet, "B2", "Amount")
	_ = f.SetCellStyle(SalesSheet, "A2", "B2", headerStyle)

	row := 3
	for _, b := range report.Buckets {
		labelCell, _ := excelize.CoordinatesToCellName(1, row)
		amountCell, _ := excelize.CoordinatesToCellName(2, row)
		_ = f.SetCellValue(SalesSheet, labelCell, b.Label)
		_ = f.SetCellValue(SalesSheet, amountCell, b.Amount)
		_ = f.SetCellStyle(SalesSheet, amountCell, amountCell, amountStyle)
		row++
	}

	labelCell, _ := excelize.CoordinatesToCellName(1, row)
	totalCell, _ := excelize.CoordinatesToCellName(2, row)
	_ = f.SetCellValue(SalesSheet, labelCell, "Total")
	_ = f.SetCellValue(SalesSheet, totalCell, report.Total)
	_ = f.SetCellStyle(SalesSheet, labelCell, totalCell, totalStyle)

	countCell, _ := excelize.CoordinatesToCellName(1, row+1)
	countValue, _ := excelize.CoordinatesToCellName(2, row+1)
	_ = f.SetCellValue(SalesSheet, countCell, "Transactions")
	_ = f.SetCellValue(SalesSheet, countValue, report.Count)

	_ = f.SetColWidth(SalesSheet, "A", "A", 16)
	_ = f.SetColWidth(SalesSheet, "B", "C", 18)
	return nil
}
