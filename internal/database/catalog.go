// Stockwatch - Retail Stock Level History
// Copyright 2026 The Stockwatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/klokstudent/stockwatch

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/klokstudent/stockwatch/internal/cache"
	"github.com/klokstudent/stockwatch/internal/logging"
	"github.com/klokstudent/stockwatch/internal/metrics"
	"github.com/klokstudent/stockwatch/internal/models"
)

const productColumns = `code, name, main_category, main_country, producer, price, volume_liters,
	alcohol_percent, buyable, expired, url, parsed_size, price_per_liter, alcohol_per_nok`

// FindProductByCode returns the catalog product with the given code, or
// ErrNotFound.
func (db *DB) FindProductByCode(ctx context.Context, code string) (*models.Product, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE code = ?`, code)

	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		metrics.RecordDBQuery("select", "products", time.Since(start), nil)
		return nil, ErrNotFound
	}
	metrics.RecordDBQuery("select", "products", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("find product %s: %w", code, err)
	}
	return p, nil
}

// PutProduct inserts or replaces a catalog product. Derived fields are
// recomputed before writing.
func (db *DB) PutProduct(ctx context.Context, p *models.Product) error {
	if p.Code == "" {
		return fmt.Errorf("put product: empty code")
	}
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	p.DeriveFields()

	start := time.Now()
	_, err := db.conn.ExecContext(ctx, `
		INSERT OR REPLACE INTO products (`+productColumns+`, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Code, p.Name, p.MainCategoryName, p.MainCountryName, p.ProducerName,
		p.Price.String(), p.VolumeLiters.String(), p.AlcoholPercent.String(),
		p.Buyable, p.Expired, p.URL,
		p.ParsedSize.String(), p.PricePerLiter.String(), p.AlcoholPerNOK.String(),
		time.Now().UTC(),
	)
	metrics.RecordDBQuery("upsert", "products", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("put product %s: %w", p.Code, err)
	}
	return nil
}

// CountProducts returns the number of catalog rows.
func (db *DB) CountProducts(ctx context.Context) (int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var n int64
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

func scanProduct(row *sql.Row) (*models.Product, error) {
	var (
		p                                         models.Product
		category, country, producer, url          sql.NullString
		price, volume, alcohol, size, ppl, perNOK string
	)
	err := row.Scan(&p.Code, &p.Name, &category, &country, &producer,
		&price, &volume, &alcohol, &p.Buyable, &p.Expired, &url,
		&size, &ppl, &perNOK)
	if err != nil {
		return nil, err
	}
	p.MainCategoryName = category.String
	p.MainCountryName = country.String
	p.ProducerName = producer.String
	p.URL = url.String

	fields := []struct {
		dst *decimal.Decimal
		src string
	}{
		{&p.Price, price},
		{&p.VolumeLiters, volume},
		{&p.AlcoholPercent, alcohol},
		{&p.ParsedSize, size},
		{&p.PricePerLiter, ppl},
		{&p.AlcoholPerNOK, perNOK},
	}
	for _, f := range fields {
		d, err := decimal.NewFromString(f.src)
		if err != nil {
			return nil, fmt.Errorf("parse decimal %q: %w", f.src, err)
		}
		*f.dst = d
	}
	return &p, nil
}

// ProductFinder is the read side of the catalog.
type ProductFinder interface {
	FindProductByCode(ctx context.Context, code string) (*models.Product, error)
}

// CachedCatalog is a read-through cache in front of a ProductFinder.
// Misses are not cached, so a product imported while the daemon runs is
// picked up on the next lookup.
type CachedCatalog struct {
	next     ProductFinder
	cache    *cache.LRU[*models.Product]
	interval time.Duration
}

// NewCachedCatalog wraps next with an LRU cache of the given size and TTL.
// Serve sweeps expired entries once per TTL.
func NewCachedCatalog(next ProductFinder, size int, ttl time.Duration) *CachedCatalog {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedCatalog{
		next:     next,
		cache:    cache.NewLRU[*models.Product](size, ttl),
		interval: ttl,
	}
}

// FindProductByCode returns the cached product or loads it from next.
// The returned product is shared and must not be modified.
func (c *CachedCatalog) FindProductByCode(ctx context.Context, code string) (*models.Product, error) {
	if p, ok := c.cache.Get(code); ok {
		metrics.CatalogCacheHits.Inc()
		return p, nil
	}
	metrics.CatalogCacheMisses.Inc()

	p, err := c.next.FindProductByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	c.cache.Add(code, p)
	return p, nil
}

// Serve removes expired products on a fixed interval until ctx is done.
func (c *CachedCatalog) Serve(ctx context.Context) error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if removed := c.cache.CleanupExpired(); removed > 0 {
				logging.Debug().Int("removed", removed).Msg("Expired catalog cache entries swept")
			}
		}
	}
}

// String implements fmt.Stringer for the supervisor.
func (c *CachedCatalog) String() string {
	return "catalog-cache"
}

// Stats returns cache hits, misses and size.
func (c *CachedCatalog) Stats() (hits, misses int64, size int) {
	return c.cache.Stats()
}
