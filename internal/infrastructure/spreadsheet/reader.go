// Package spreadsheet lee cargas masivas de inventario desde CSV y XLSX.
//
// Formato esperado: una fila de encabezado (se omite) y columnas
// sku, quantity, warehouse_id, unit_id en ese orden.
package spreadsheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
)

// Codificaciones aceptadas para CSV.
const (
	EncodingUTF8        = "utf-8"
	EncodingWindows1252 = "windows-1252"
	EncodingISO88591    = "iso-8859-1"
)

const (
	colSKU = iota
	colQuantity
	colWarehouse
	colUnit
)

// Result filas interpretadas y filas que no se pudieron leer.
type Result struct {
	Rows     []inventory.ImportRow
	Rejected []inventory.RowOutcome
}

// ReadCSV lee un CSV separado por comas en la codificación indicada (vacía = utf-8).
func ReadCSV(r io.Reader, enc string) (*Result, error) {
	decoded, err := decoder(r, enc)
	if err != nil {
		return nil, err
	}
	cr := csv.NewReader(decoded)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	res := &Result{}
	first := true
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				first = false
				res.Rejected = append(res.Rejected, rejected(perr.StartLine, "", perr.Err.Error()))
				continue
			}
			return nil, fmt.Errorf("leer csv: %w", err)
		}
		line, _ := cr.FieldPos(0)
		if first {
			first = false
			continue
		}
		res.add(line, record)
	}
	return res, nil
}

// ReadXLSX lee la hoja indicada (vacía = primera hoja) de un libro XLSX.
func ReadXLSX(r io.Reader, sheet string) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, domain.NewValidationError("file", "no es un XLSX válido: %v", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, domain.NewValidationError("sheet", "no se pudo leer la hoja %q: %v", sheet, err)
	}

	res := &Result{}
	for i, record := range rows {
		if i == 0 {
			continue
		}
		res.add(i+1, record)
	}
	return res, nil
}

// add interpreta una fila; las filas totalmente vacías se ignoran sin reportarse.
func (res *Result) add(line int, record []string) {
	cell := func(i int) string {
		if i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}
	if blank(record) {
		return
	}
	sku := cell(colSKU)
	raw := cell(colQuantity)
	qty, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		// Excel suele entregar enteros como "10.0".
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil || f != float64(int64(f)) {
			res.Rejected = append(res.Rejected, rejected(line, sku,
				fmt.Sprintf("%s: %q", inventory.ReasonInvalidQuantity, raw)))
			return
		}
		qty = int64(f)
	}
	res.Rows = append(res.Rows, inventory.ImportRow{
		Line:        line,
		SKU:         sku,
		Quantity:    qty,
		WarehouseID: cell(colWarehouse),
		UnitID:      cell(colUnit),
	})
}

func blank(record []string) bool {
	for _, c := range record {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func rejected(line int, sku, reason string) inventory.RowOutcome {
	return inventory.RowOutcome{Line: line, SKU: sku, Status: inventory.RowSkipped, Reason: reason}
}

func decoder(r io.Reader, enc string) (io.Reader, error) {
	var e encoding.Encoding
	switch strings.ToLower(strings.TrimSpace(enc)) {
	case "", EncodingUTF8, "utf8":
		return stripBOM(r)
	case EncodingWindows1252, "cp1252":
		e = charmap.Windows1252
	case EncodingISO88591, "latin1":
		e = charmap.ISO8859_1
	default:
		return nil, domain.NewValidationError("encoding", "codificación no soportada %q", enc)
	}
	return transform.NewReader(r, e.NewDecoder()), nil
}

func stripBOM(r io.Reader) (io.Reader, error) {
	head := make([]byte, 3)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("leer csv: %w", err)
	}
	head = head[:n]
	head = bytes.TrimPrefix(head, []byte{0xEF, 0xBB, 0xBF})
	return io.MultiReader(bytes.NewReader(head), r), nil
}
