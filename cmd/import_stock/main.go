// import_stock carga existencias iniciales desde un CSV o XLSX contra el almacenamiento configurado.
//
// Uso: go run ./cmd/import_stock -file stock.csv [-source csv] [-encoding windows-1252] [-sheet Hoja1] [-user cli]
// Columnas: sku, quantity, warehouse_id, unit_id (la primera fila es encabezado).
// Con STORAGE_DRIVER=memory solo sirve para validar el archivo.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/bootstrap"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/spreadsheet"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	path := flag.String("file", "", "ruta al .csv o .xlsx")
	source := flag.String("source", "", "origen: csv | xlsx | woocommerce | other (por defecto según extensión)")
	encoding := flag.String("encoding", "", "codificación del CSV (por defecto IMPORT_DEFAULT_ENCODING)")
	sheet := flag.String("sheet", "", "hoja del XLSX (por defecto la primera)")
	user := flag.String("user", "import_stock", "usuario registrado como createdBy")
	flag.Parse()

	if *path == "" {
		fmt.Fprintln(os.Stderr, "uso: import_stock -file <ruta.csv|ruta.xlsx>")
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		return 1
	}
	// stdout queda para el reporte JSON.
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: cfg.App.Name, Output: os.Stderr})

	res, err := read(*path, *encoding, *sheet, cfg.Import.DefaultEncoding)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer archivo: %v\n", err)
		return 1
	}
	if *source == "" {
		*source = strings.TrimPrefix(strings.ToLower(filepath.Ext(*path)), ".")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	svc, err := bootstrap.New(ctx, cfg, log.Zerolog())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Inicializar servicios: %v\n", err)
		return 1
	}
	defer svc.Close()

	report, err := svc.Inventory.ImportRows(ctx, inventory.ImportRequest{
		Source:    *source,
		CreatedBy: *user,
		Rows:      res.Rows,
		Rejected:  res.Rejected,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Importar: %v\n", err)
		return 1
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir reporte: %v\n", err)
		return 1
	}
	fmt.Fprintf(os.Stderr, "Filas aplicadas: %d, omitidas: %d\n", len(report.Applied), len(report.Skipped))
	if len(report.Skipped) > 0 {
		return 3
	}
	return 0
}

func read(path, encoding, sheet, defaultEncoding string) (*spreadsheet.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return spreadsheet.ReadXLSX(f, sheet)
	case ".csv":
		if encoding == "" {
			encoding = defaultEncoding
		}
		return spreadsheet.ReadCSV(f, encoding)
	default:
		return nil, fmt.Errorf("extensión no soportada %q (use .csv o .xlsx)", filepath.Ext(path))
	}
}
