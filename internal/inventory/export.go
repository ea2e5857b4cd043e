package inventory

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	unitsSheet    = "Units"
	productsSheet = "Products"
)

// ExportXLSX renders the inventory as an XLSX workbook with one sheet of
// units and one of finalized products
func (s *Service) ExportXLSX() ([]byte, error) {
	start := time.Now()

	units, err := s.ListUnits("")
	if err != nil {
		return nil, err
	}
	products, err := s.ListProducts()
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	// The default sheet becomes the units sheet
	if err := f.SetSheetName(f.GetSheetName(0), unitsSheet); err != nil {
		return nil, fmt.Errorf("naming sheet: %w", err)
	}
	if _, err := f.NewSheet(productsSheet); err != nil {
		return nil, fmt.Errorf("creating sheet: %w", err)
	}

	unitRows := make([][]any, 0, len(units))
	for _, u := range units {
		unitRows = append(unitRows, []any{
			u.ProductName,
			u.ProductCode,
			u.ExpirationDate.String(),
			string(u.Status),
			u.CreatedAt.Format(time.RFC3339),
		})
	}
	if err := writeSheet(f, unitsSheet, []string{"Product", "Product Code", "Expiration Date", "Status", "Recorded At"}, unitRows); err != nil {
		return nil, err
	}

	productRows := make([][]any, 0, len(products))
	for _, p := range products {
		productRows = append(productRows, []any{
			p.ProductName,
			p.TotalQuantity,
			p.EarliestExpiration.String(),
			string(p.Status),
			p.LastUpdated.Format(time.RFC3339),
		})
	}
	if err := writeSheet(f, productsSheet, []string{"Product", "Total Quantity", "Earliest Expiration", "Status", "Last Updated"}, productRows); err != nil {
		return nil, err
	}

	_ = f.SetColWidth(unitsSheet, "A", "A", 32)
	_ = f.SetColWidth(unitsSheet, "B", "D", 18)
	_ = f.SetColWidth(unitsSheet, "E", "E", 26)
	_ = f.SetColWidth(productsSheet, "A", "A", 32)
	_ = f.SetColWidth(productsSheet, "B", "D", 18)
	_ = f.SetColWidth(productsSheet, "E", "E", 26)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	slog.Info("Exported inventory",
		"units", len(units),
		"products", len(products),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]any) error {
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("writing %s header: %w", sheet, err)
		}
	}
	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing %s row %d: %w", sheet, r+2, err)
		}
	}
	return nil
}
