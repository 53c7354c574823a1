package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"sales-dashboard/internal/models"
)

const (
	batchSize  = 10000
	maxWorkers = 10
)

var csvColumns = []string{
	"Produto", "Categoria do Produto", "Preço", "Frete", "Data da Compra", "Vendedor",
	"Local da compra", "Avaliação da compra", "Tipo de pagamento", "Quantidade de parcelas",
	"lat", "lon",
}

// File serves records from a local .json or .csv export and applies
// queries locally. The file is re-read when its modification time changes.
type File struct {
	path   string
	logger *slog.Logger

	mu      sync.RWMutex
	records []models.SalesRecord
	modTime time.Time
	skipped int
}

func NewFile(path string, logger *slog.Logger) *File {
	return &File{path: path, logger: logger}
}

func (f *File) Fetch(ctx context.Context, q models.Query) ([]models.SalesRecord, error) {
	records, err := f.load(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]models.SalesRecord, 0, len(records))
	for _, r := range records {
		if q.Matches(r) {
			matched = append(matched, r)
		}
	}
	return matched, nil
}

// Skipped returns how many CSV rows were dropped by the last load.
func (f *File) Skipped() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.skipped
}

func (f *File) load(ctx context.Context) ([]models.SalesRecord, error) {
	info, err := os.Stat(f.path)
	if err != nil {
		return nil, fmt.Errorf("stat source file: %w", err)
	}

	f.mu.RLock()
	if f.records != nil && info.ModTime().Equal(f.modTime) {
		records := f.records
		f.mu.RUnlock()
		return records, nil
	}
	f.mu.RUnlock()

	start := time.Now()
	file, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("open source file: %w", err)
	}
	defer file.Close()

	var (
		records []models.SalesRecord
		skipped int
	)
	switch strings.ToLower(filepath.Ext(f.path)) {
	case ".json":
		records, err = DecodeRecords(file)
	case ".csv":
		records, skipped, err = streamProcessCSV(ctx, file)
	default:
		err = fmt.Errorf("unsupported source file type %q", filepath.Ext(f.path))
	}
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.records = records
	f.modTime = info.ModTime()
	f.skipped = skipped
	f.mu.Unlock()

	f.logger.Info("loaded source file",
		"path", f.path,
		"records", len(records),
		"skipped", skipped,
		"duration", time.Since(start),
	)
	return records, nil
}

func streamProcessCSV(ctx context.Context, r io.Reader) ([]models.SalesRecord, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = false

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, 0, fmt.Errorf("empty file")
		}
		return nil, 0, fmt.Errorf("read header: %w", err)
	}

	index, err := columnIndex(header)
	if err != nil {
		return nil, 0, err
	}

	var (
		records []models.SalesRecord
		skipped int
	)
	batch := make([][]string, 0, batchSize)

	flush := func() error {
		parsed, bad, err := processBatch(ctx, batch, index)
		if err != nil {
			return err
		}
		records = append(records, parsed...)
		skipped += bad
		batch = batch[:0]
		return nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}

		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			skipped++
			continue
		}

		batch = append(batch, row)
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return nil, 0, err
			}
		}
	}

	if len(batch) > 0 {
		if err := flush(); err != nil {
			return nil, 0, err
		}
	}

	if len(records) == 0 {
		return nil, skipped, fmt.Errorf("no valid records found")
	}
	return records, skipped, nil
}

func columnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, col := range csvColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}
	return index, nil
}

// processBatch parses rows concurrently while keeping their file order.
func processBatch(ctx context.Context, batch [][]string, index map[string]int) ([]models.SalesRecord, int, error) {
	type parsedRow struct {
		rec   models.SalesRecord
		valid bool
	}

	results := make([]parsedRow, len(batch))

	var g errgroup.Group
	g.SetLimit(maxWorkers)

	chunk := (len(batch) + maxWorkers - 1) / maxWorkers
	for start := 0; start < len(batch); start += chunk {
		end := min(start+chunk, len(batch))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				rec, err := parseRow(batch[i], index)
				results[i] = parsedRow{rec: rec, valid: err == nil}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	records := make([]models.SalesRecord, 0, len(batch))
	skipped := 0
	for _, r := range results {
		if !r.valid {
			skipped++
			continue
		}
		records = append(records, r.rec)
	}
	return records, skipped, nil
}

func parseRow(row []string, index map[string]int) (models.SalesRecord, error) {
	field := func(name string) string {
		i := index[name]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	date, err := parseDate(field("Data da Compra"))
	if err != nil {
		return models.SalesRecord{}, err
	}

	floats := map[string]float64{}
	for _, name := range []string{"Preço", "Frete", "lat", "lon"} {
		v, err := strconv.ParseFloat(field(name), 64)
		if err != nil {
			return models.SalesRecord{}, fmt.Errorf("column %s: %w", name, err)
		}
		floats[name] = v
	}

	ints := map[string]int{}
	for _, name := range []string{"Avaliação da compra", "Quantidade de parcelas"} {
		v, err := strconv.Atoi(field(name))
		if err != nil {
			return models.SalesRecord{}, fmt.Errorf("column %s: %w", name, err)
		}
		ints[name] = v
	}

	return models.SalesRecord{
		Product:      field("Produto"),
		Category:     field("Categoria do Produto"),
		Price:        floats["Preço"],
		Freight:      floats["Frete"],
		PurchaseDate: date,
		Seller:       field("Vendedor"),
		State:        field("Local da compra"),
		Rating:       ints["Avaliação da compra"],
		PaymentType:  field("Tipo de pagamento"),
		Installments: ints["Quantidade de parcelas"],
		Lat:          floats["lat"],
		Lon:          floats["lon"],
	}, nil
}
