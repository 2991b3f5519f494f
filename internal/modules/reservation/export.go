package reservation

import (
	"fmt"
	"io"
	"time"

	"tierraalta/internal/domain"
	"tierraalta/internal/pkg/dateutil"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Reservations"

var exportHeaders = []string{
	"ID", "Room", "Room type", "Guest ID", "Check-in", "Check-out",
	"Nights", "Guests", "Total", "Status", "Payment", "Special requests",
}

// WriteWorkbook renders reservations as an XLSX workbook into w.
func WriteWorkbook(w io.Writer, from, to time.Time, list []domain.Reservation) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(exportSheet, "A1", fmt.Sprintf("Reservations %s - %s", dateutil.Format(from), dateutil.Format(to)))
	lastCol, _ := excelize.ColumnNumberToName(len(exportHeaders))
	_ = f.MergeCell(exportSheet, "A1", lastCol+"1")

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(exportSheet, "A1", "A1", titleStyle)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(exportSheet, cell, h)
		_ = f.SetCellStyle(exportSheet, cell, cell, headerStyle)
	}

	for i := range list {
		r := &list[i]
		row := i + 3

		roomNumber, roomType := "", ""
		if r.Room != nil {
			roomNumber, roomType = r.Room.Number, string(r.Room.Type)
		}
		payment := ""
		if r.Payment != nil {
			payment = string(r.Payment.Status)
		}

		values := []any{
			r.ID, roomNumber, roomType, r.UserID,
			dateutil.Format(r.CheckIn), dateutil.Format(r.CheckOut),
			r.Nights(), r.Guests, r.TotalPrice, string(r.Status), payment, r.SpecialRequests,
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", row, err)
		}
	}

	_ = f.SetColWidth(exportSheet, "A", "A", 8)
	_ = f.SetColWidth(exportSheet, "B", lastCol, 16)
	_ = f.DeleteSheet("Sheet1")

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// ExportFileName names the workbook for a date range.
func ExportFileName(from, to time.Time) string {
	return fmt.Sprintf("reservations_%s_to_%s.xlsx", dateutil.Format(from), dateutil.Format(to))
}
