// Stockwatch - Retail Stock Level History
// Copyright 2026 The Stockwatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/klokstudent/stockwatch

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/klokstudent/stockwatch/internal/metrics"
	"github.com/klokstudent/stockwatch/internal/models"
)

// MaxTransitionsLimit caps RecentTransitions.
const MaxTransitionsLimit = 500

// RecordTransition appends t to the ledger. An empty ID is filled with a new
// UUID.
func (db *DB) RecordTransition(ctx context.Context, t *models.StockTransition) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var oldLevel any
	if t.OldLevel != nil {
		oldLevel = int64(*t.OldLevel)
	}

	start := time.Now()
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO stock_transitions (id, store_id, product_id, old_level, new_level, observed_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.StoreID, t.ProductID, oldLevel, int64(t.NewLevel), t.ObservedAt.UTC(),
	)
	metrics.RecordDBQuery("insert", "stock_transitions", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("record transition: %w", err)
	}
	return nil
}

// RecentTransitions returns transitions newest first. limit is clamped to
// [1, MaxTransitionsLimit].
func (db *DB) RecentTransitions(ctx context.Context, limit, offset int) ([]models.StockTransition, error) {
	if limit <= 0 || limit > MaxTransitionsLimit {
		limit = MaxTransitionsLimit
	}
	if offset < 0 {
		offset = 0
	}
	return db.queryTransitions(ctx, `
		SELECT id, store_id, product_id, old_level, new_level, observed_at
		FROM stock_transitions
		ORDER BY observed_at DESC, id
		LIMIT ? OFFSET ?`, int64(limit), int64(offset))
}

// TransitionsForPair returns the transitions of one (store, product) pair in
// the order they were observed.
func (db *DB) TransitionsForPair(ctx context.Context, storeID, productID string) ([]models.StockTransition, error) {
	return db.queryTransitions(ctx, `
		SELECT id, store_id, product_id, old_level, new_level, observed_at
		FROM stock_transitions
		WHERE store_id = ? AND product_id = ?
		ORDER BY observed_at, id`, storeID, productID)
}

func (db *DB) queryTransitions(ctx context.Context, query string, args ...any) ([]models.StockTransition, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, args...)
	metrics.RecordDBQuery("select", "stock_transitions", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("query transitions: %w", err)
	}
	defer closeWithLog(rows, "rows")

	var out []models.StockTransition
	for rows.Next() {
		var (
			t        models.StockTransition
			oldLevel sql.NullInt64
			newLevel int64
		)
		if err := rows.Scan(&t.ID, &t.StoreID, &t.ProductID, &oldLevel, &newLevel, &t.ObservedAt); err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		if oldLevel.Valid {
			v := int(oldLevel.Int64)
			t.OldLevel = &v
		}
		t.NewLevel = int(newLevel)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transitions: %w", err)
	}
	return out, nil
}
