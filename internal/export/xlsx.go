// Package export writes the transaction journal as a spreadsheet download.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"anggaran/internal/core"
)

// SheetName is the worksheet holding the journal.
const SheetName = "Transaksi"

// ContentType is the MIME type of the written workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var headings = []any{"Tanggal", "Tipe", "Kategori", "Nominal", "Keterangan"}

// WriteTransactionsXLSX writes a workbook with one header row and one row per
// transaction, in the order given.
func WriteTransactionsXLSX(w io.Writer, txs []core.Transaction) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}
	if err := f.SetSheetRow(SheetName, "A1", &headings); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, tx := range txs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{tx.Date.String(), string(tx.Type), tx.Category, tx.Amount, tx.Description}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(SheetName, "A", "A", 12); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetName, "E", "E", 40); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
