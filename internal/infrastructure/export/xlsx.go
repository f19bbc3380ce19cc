// Package export renders inventory as an Excel workbook.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"mobilebill/internal/domain/inventory"
)

const (
	SheetMobiles     = "Mobiles"
	SheetAccessories = "Accessories"

	// ContentType is the MIME type of the written workbook.
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var mobileHeaders = []any{
	"Name", "Brand", "Model", "Dealer", "Quantity", "Purchase Price", "Selling Price",
	"RAM", "Storage", "Color", "IMEI 1", "IMEI 2", "Product IDs",
}

var accessoryHeaders = []any{
	"Name", "Product ID", "Dealer", "Quantity", "Unit Price", "Selling Price", "Product IDs",
}

// WriteInventory writes one sheet of mobile groups and one of accessory groups to w.
func WriteInventory(w io.Writer, mobiles []*inventory.Mobile, accessories []*inventory.Accessory) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetMobiles); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetAccessories); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	rows := make([][]any, 0, len(mobiles))
	for _, m := range mobiles {
		rows = append(rows, []any{
			m.MobileName, m.Brand, m.ModelNumber, m.DealerName, m.TotalQuantity,
			m.PricePerProduct.InexactFloat64(), m.SellingPrice.InexactFloat64(),
			m.RAM, m.Storage, m.Color, deref(m.IMEI1), deref(m.IMEI2),
			strings.Join(m.ProductIDs, ", "),
		})
	}
	if err := writeSheet(f, SheetMobiles, header, mobileHeaders, rows); err != nil {
		return err
	}

	rows = rows[:0]
	for _, a := range accessories {
		rows = append(rows, []any{
			a.ProductName, a.ProductID, a.DealerName, a.Quantity,
			a.UnitPrice.InexactFloat64(), a.SellingPrice.InexactFloat64(),
			strings.Join(a.ProductIDs, ", "),
		})
	}
	if err := writeSheet(f, SheetAccessories, header, accessoryHeaders, rows); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, headerStyle int, headers []any, rows [][]any) error {
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return fmt.Errorf("write %s header: %w", sheet, err)
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("style %s header: %w", sheet, err)
	}

	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+2, err)
		}
	}

	return f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
