package diagnostics

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

var sheetHeader = []string{"Nome", "Endereço", "Telefone", "E-mail", "Status", "Motivo", "Arquivo"}

// WriteXLSX writes the entries as a single-sheet workbook for reviewers
// who fill in coordinates by hand.
func (r *Reporter) WriteXLSX(path string) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Revisao manual")
	if err != nil {
		return eris.Wrap(err, "diagnostics: add sheet")
	}

	addRow(sheet, sheetHeader)
	for _, it := range r.items {
		addRow(sheet, []string{it.Name, it.Address, it.Phone, it.Email, it.Status, string(it.Reason), it.Source})
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "diagnostics: save %s", path)
	}
	return nil
}

func addRow(sheet *xlsx.Sheet, values []string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}
