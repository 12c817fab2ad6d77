package report

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Houeta/stylebook-bot/internal/models"
	"github.com/xuri/excelize/v2"
)

var ErrNoBookings = errors.New("failed to generate report, 0 bookings were provided")

const (
	bookingsSheet = "Bookings"
	summarySheet  = "Summary"
)

// Generator holds the state for the Excel report generation process.
type Generator struct {
	file *excelize.File
}

// ExcelRow is one client line of the bookings sheet.
type ExcelRow struct {
	OrderID        string  `json:"order_id"`        // Order the client belongs to
	Time           string  `json:"time"`            // Appointment time, HH:MM
	Client         string  `json:"client"`          // Client name
	Phone          string  `json:"phone"`           // Client phone number
	Service        string  `json:"service"`         // Booked service
	Price          float64 `json:"price"`           // Catalog price of the service
	FriendDiscount bool    `json:"friend_discount"` // Whether the order has the friend discount
	OrderTotal     float64 `json:"order_total"`     // Total of the whole order after discount
	Payment        string  `json:"payment"`         // Payment method
}

// serviceLine aggregates the bookings of one service for the summary sheet.
type serviceLine struct {
	Service string
	Count   int
	Revenue float64
}

// NewGenerator creates a new report generator.
func NewGenerator() *Generator {
	return &Generator{
		file: excelize.NewFile(),
	}
}

// Rows flattens bookings into one row per client.
func Rows(bookings []models.BookingRecord) []ExcelRow {
	var rows []ExcelRow
	for _, booking := range bookings {
		for _, client := range booking.Clients {
			rows = append(rows, ExcelRow{
				OrderID:        booking.OrderID,
				Time:           booking.Time,
				Client:         client.Name,
				Phone:          client.Phone,
				Service:        client.Hairstyle,
				Price:          client.Price,
				FriendDiscount: booking.HasFriendDiscount,
				OrderTotal:     booking.Total,
				Payment:        booking.PaymentMethod,
			})
		}
	}
	return rows
}

// GenerateDailyReport builds the salon's workbook for one day: a sheet listing every
// booked client and a summary sheet with totals and a per-service breakdown.
// It returns ErrNoBookings when there is nothing to report.
func GenerateDailyReport(date time.Time, bookings []models.BookingRecord) (*bytes.Buffer, error) {
	var err error

	if len(bookings) == 0 {
		return nil, ErrNoBookings
	}

	gen := NewGenerator()
	defer gen.file.Close()

	if _, err = gen.file.NewSheet(bookingsSheet); err != nil {
		return nil, fmt.Errorf("failed to generate new sheet '%s': %w", bookingsSheet, err)
	}
	if err = gen.fillBookings(Rows(bookings)); err != nil {
		return nil, fmt.Errorf("failed to fill bookings sheet: %w", err)
	}

	if _, err = gen.file.NewSheet(summarySheet); err != nil {
		return nil, fmt.Errorf("failed to generate new sheet '%s': %w", summarySheet, err)
	}
	if err = gen.fillSummary(date, bookings); err != nil {
		return nil, fmt.Errorf("failed to fill summary sheet: %w", err)
	}

	// delete default sheet
	if sheetIndex, _ := gen.file.GetSheetIndex("Sheet1"); sheetIndex != -1 {
		if err = gen.file.DeleteSheet("Sheet1"); err != nil {
			return nil, fmt.Errorf("failed to delete default sheet 'Sheet1': %w", err)
		}
	}

	// setup first sheet as active
	gen.file.SetActiveSheet(0)

	buffer, err := gen.file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write data from saved file: %w", err)
	}

	return buffer, nil
}

// FileName returns the attachment name of the report for the date.
func FileName(date time.Time) string {
	return fmt.Sprintf("bookings_%s.xlsx", date.Format(models.DateKeyLayout))
}

func (g *Generator) fillBookings(rows []ExcelRow) error {
	var err error
	headerIndex := 2

	headers := []string{
		"Order", "Time", "Client", "Phone", "Service", "Price (R)", "Friend discount", "Order total (R)", "Payment",
	}
	widths := map[string]float64{
		"A": 14, "B": 8, "C": 24, "D": 14, "E": 18, "F": 10, "G": 16, "H": 16, "I": 10, //nolint:mnd // column widths
	}
	if err = g.setupHeader(bookingsSheet, headers, widths); err != nil {
		return err
	}

	for i, row := range rows {
		if err = g.addRow(bookingsSheet, i+headerIndex, row); err != nil { // i+2, because the first row is the header
			return fmt.Errorf("failed to add row '%d': %w", i+headerIndex, err)
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	if err = g.file.AddTable(bookingsSheet, &excelize.Table{
		Range:     fmt.Sprintf("A1:%s%d", lastCol, len(rows)+1),
		Name:      "table_bookings",
		StyleName: "TableStyleMedium9",
	}); err != nil {
		return fmt.Errorf("failed to add table: %w", err)
	}

	return nil
}

func (g *Generator) fillSummary(date time.Time, bookings []models.BookingRecord) error {
	var (
		err      error
		clients  int
		subtotal float64
		discount float64
		total    float64
	)
	byService := make(map[string]*serviceLine)

	for _, booking := range bookings {
		clients += len(booking.Clients)
		subtotal += booking.Subtotal
		discount += booking.Discount
		total += booking.Total

		for _, client := range booking.Clients {
			line, ok := byService[client.Hairstyle]
			if !ok {
				line = &serviceLine{Service: client.Hairstyle}
				byService[client.Hairstyle] = line
			}
			line.Count++
			line.Revenue += client.Price
		}
	}

	overview := [][]interface{}{
		{"Date", date.Format(models.DateKeyLayout)},
		{"Bookings", len(bookings)},
		{"Clients", clients},
		{"Subtotal (R)", subtotal},
		{"Friend discounts (R)", discount},
		{"Revenue (R)", total},
	}
	for i, values := range overview {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err = g.file.SetSheetRow(summarySheet, cell, &values); err != nil {
			return fmt.Errorf("failed to set summary row: %w", err)
		}
	}

	const servicesHeaderRow = 8
	headerCell, _ := excelize.CoordinatesToCellName(1, servicesHeaderRow)
	headers := []string{"Service", "Clients", "Revenue before discount (R)"}
	if err = g.file.SetSheetRow(summarySheet, headerCell, &headers); err != nil {
		return fmt.Errorf("failed to set service header: %w", err)
	}
	if err = g.styleHeader(summarySheet, headerCell, "C8"); err != nil {
		return err
	}

	lines := make([]serviceLine, 0, len(byService))
	for _, line := range byService {
		lines = append(lines, *line)
	}
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].Count != lines[j].Count {
			return lines[i].Count > lines[j].Count
		}
		return lines[i].Service < lines[j].Service
	})

	for i, line := range lines {
		cell, _ := excelize.CoordinatesToCellName(1, servicesHeaderRow+1+i)
		values := []interface{}{line.Service, line.Count, line.Revenue}
		if err = g.file.SetSheetRow(summarySheet, cell, &values); err != nil {
			return fmt.Errorf("failed to set service row: %w", err)
		}
	}

	if err = g.file.SetColWidth(summarySheet, "A", "A", 26); err != nil { //nolint:mnd // column width
		return fmt.Errorf("failed to set column width: %w", err)
	}
	if err = g.file.SetColWidth(summarySheet, "B", "C", 28); err != nil { //nolint:mnd // column width
		return fmt.Errorf("failed to set column width: %w", err)
	}

	return nil
}

// setupHeader writes and styles the header row and sets the column widths of a sheet.
func (g *Generator) setupHeader(sheetName string, headers []string, widths map[string]float64) error {
	var err error

	rowHeight := 20
	if err = g.file.SetRowHeight(sheetName, 1, float64(rowHeight)); err != nil {
		return fmt.Errorf("failed to set row height for headers: %w", err)
	}
	if err = g.file.SetSheetRow(sheetName, "A1", &headers); err != nil {
		return fmt.Errorf("failed to set sheet row for headers: %w", err)
	}

	lastCell, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err = g.styleHeader(sheetName, "A1", lastCell); err != nil {
		return err
	}

	for col, width := range widths {
		if err = g.file.SetColWidth(sheetName, col, col, width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	return nil
}

func (g *Generator) styleHeader(sheetName, fromCell, toCell string) error {
	headerStyle, err := g.file.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Vertical: "center", Horizontal: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create new style: %w", err)
	}

	if err = g.file.SetCellStyle(sheetName, fromCell, toCell, headerStyle); err != nil {
		return fmt.Errorf("failed to set cell style for headers: %w", err)
	}
	return nil
}

// addRow adds a new row to the specified sheet with the details of the given client line.
func (g *Generator) addRow(sheetName string, rowNum int, row ExcelRow) error {
	discount := "no"
	if row.FriendDiscount {
		discount = "yes"
	}

	rowData := []interface{}{
		row.OrderID,
		row.Time,
		row.Client,
		row.Phone,
		row.Service,
		row.Price,
		discount,
		row.OrderTotal,
		row.Payment,
	}
	cell, _ := excelize.CoordinatesToCellName(1, rowNum)

	if err := g.file.SetSheetRow(sheetName, cell, &rowData); err != nil {
		return fmt.Errorf("failed to set sheet row: %w", err)
	}

	return nil
}
