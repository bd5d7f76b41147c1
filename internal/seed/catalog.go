package seed

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"goldrefinery/m/domain"
	"goldrefinery/m/internal/store"
)

type catalogRow struct {
	SKU         string `csv:"sku"`
	Name        string `csv:"name"`
	NameAr      string `csv:"name_ar"`
	Price       string `csv:"price"`
	Stock       int64  `csv:"stock"`
	Unit        string `csv:"unit"`
	Description string `csv:"description"`
}

type ImportResult struct {
	Inserted int
	Skipped  int
}

// ImportCatalogFile opens path and imports it into companyID.
func ImportCatalogFile(ctx context.Context, db *sqlx.DB, log *zap.Logger, companyID int64, path string) (ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return ImportResult{}, fmt.Errorf("open catalog %s: %w", path, err)
	}
	defer f.Close()
	return ImportCatalog(ctx, db, log, companyID, f)
}

// ImportCatalog reads sku,name,name_ar,price,stock,unit,description rows and
// inserts them for companyID in one transaction. Rows whose SKU already
// exists are skipped; a malformed row aborts the whole import.
func ImportCatalog(ctx context.Context, db *sqlx.DB, log *zap.Logger, companyID int64, r io.Reader) (ImportResult, error) {
	var rows []catalogRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return ImportResult{}, fmt.Errorf("parse catalog: %w", err)
	}

	products := make([]domain.Product, 0, len(rows))
	for i, row := range rows {
		p, err := row.product(companyID)
		if err != nil {
			// +2: header line and 1-based numbering.
			return ImportResult{}, fmt.Errorf("catalog line %d: %w", i+2, err)
		}
		products = append(products, p)
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return ImportResult{}, err
	}
	defer tx.Rollback()

	var res ImportResult
	for i := range products {
		inserted, err := store.InsertProductIfAbsent(ctx, tx, &products[i])
		if err != nil {
			return ImportResult{}, fmt.Errorf("import %s: %w", products[i].SKU, err)
		}
		if inserted {
			res.Inserted++
		} else {
			res.Skipped++
		}
	}
	if err := tx.Commit(); err != nil {
		return ImportResult{}, err
	}
	log.Info("catalog imported", zap.Int64("company_id", companyID), zap.Int("inserted", res.Inserted), zap.Int("skipped", res.Skipped))
	return res, nil
}

func (r catalogRow) product(companyID int64) (domain.Product, error) {
	sku := strings.TrimSpace(r.SKU)
	name := strings.TrimSpace(r.Name)
	if sku == "" || name == "" {
		return domain.Product{}, fmt.Errorf("sku and name are required")
	}
	price, err := decimal.NewFromString(strings.TrimSpace(r.Price))
	if err != nil {
		return domain.Product{}, fmt.Errorf("price %q: %w", r.Price, err)
	}
	if price.IsNegative() || r.Stock < 0 {
		return domain.Product{}, fmt.Errorf("price and stock must not be negative")
	}
	unit := strings.TrimSpace(r.Unit)
	if unit == "" {
		unit = "piece"
	}
	return domain.Product{
		CompanyID:   companyID,
		Name:        name,
		NameAr:      optional(r.NameAr),
		SKU:         sku,
		Price:       price.Round(2),
		Stock:       r.Stock,
		Unit:        unit,
		Description: optional(r.Description),
		IsActive:    true,
	}, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
