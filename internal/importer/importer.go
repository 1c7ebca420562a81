package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"ramana-bouquets/internal/domain"
	"ramana-bouquets/internal/logging"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// CSVImporter reads catalog exports and inserts/updates products by key.
//
// Expected headers: id,key,title,description,price,category,rating,image.
// A row with an empty key and only an image continues the previous product
// and supplies its image when the product has none.
type CSVImporter struct {
	reader      *csv.Reader
	productRepo ProductWriter
	logger      *logging.Logger
}

func NewCSVImporter(r io.Reader, repo ProductWriter, logger *logging.Logger) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:      csvr,
		productRepo: repo,
		logger:      logging.OrDiscard(logger),
	}
}

type csvRow struct {
	Line     int
	ID       string
	Key      string
	Title    string
	Desc     string
	Price    string
	Category string
	Rating   string
	Image    string
}

// Run parses CSV rows and upserts one product per key.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)

	var (
		current  *csvRow
		imported int
		line     = 1
	)

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}
		line++

		row := parseRow(record, index)
		if row == nil {
			continue
		}
		row.Line = line

		if row.Key != "" {
			if current != nil {
				if err := i.save(ctx, current); err != nil {
					return imported, err
				}
				imported++
			}
			current = row
			continue
		}

		if current != nil && current.Image == "" {
			current.Image = row.Image
		}
	}

	if current != nil {
		if err := i.save(ctx, current); err != nil {
			return imported, err
		}
		imported++
	}

	i.logger.Infof("importer: imported %d products", imported)
	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, row *csvRow) error {
	if row.Key == "" || row.Title == "" || row.Price == "" {
		return fmt.Errorf("line %d: invalid product row (missing required fields) for key %q", row.Line, row.Key)
	}
	if row.ID != "" {
		if _, err := uuid.Parse(row.ID); err != nil {
			return fmt.Errorf("line %d: invalid id for key %q: %s", row.Line, row.Key, row.ID)
		}
	}
	price, err := decimal.NewFromString(row.Price)
	if err != nil || price.IsNegative() {
		return fmt.Errorf("line %d: invalid price for key %q: %s", row.Line, row.Key, row.Price)
	}

	p := domain.Product{
		ID:          domain.ProductID(row.ID),
		Key:         row.Key,
		Title:       row.Title,
		Description: row.Desc,
		Price:       price,
		Image:       row.Image,
		Category:    strings.ToLower(row.Category),
	}
	if row.Rating != "" {
		r, err := strconv.ParseFloat(row.Rating, 64)
		if err != nil {
			return fmt.Errorf("line %d: invalid rating for key %q: %s", row.Line, row.Key, row.Rating)
		}
		p.Rating = &r
	}

	if _, err := i.productRepo.Upsert(ctx, p); err != nil {
		return fmt.Errorf("upsert product %q: %w", row.Key, err)
	}
	i.logger.Debugf("importer: upserted key=%s", row.Key)
	return nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) *csvRow {
	row := &csvRow{
		ID:       pick(record, index, "id"),
		Key:      pick(record, index, "key"),
		Title:    pick(record, index, "title"),
		Desc:     pick(record, index, "description"),
		Price:    pick(record, index, "price"),
		Category: pick(record, index, "category"),
		Rating:   pick(record, index, "rating"),
		Image:    pick(record, index, "image"),
	}
	if row.Key == "" && row.Image == "" {
		return nil
	}
	return row
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
