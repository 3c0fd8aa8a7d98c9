// Stockwatch - Retail Stock Level History
// Copyright 2026 The Stockwatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/klokstudent/stockwatch

/*
Package docstore persists Store documents in BadgerDB.

Each store is one JSON document keyed by its pointOfServiceId. A document
holds the store metadata together with its full stock history, and writes
always replace the whole document.

Access goes through a scoped Handle:

	h, err := store.Acquire(ctx)
	if err != nil {
		return err
	}
	defer h.Release()

	s, err := h.FindStoreByExternalID(ctx, "162")

Close waits for every outstanding Handle to be released before the
underlying database is closed, so a poll batch that is still writing is
never cut off mid-transaction.
*/
package docstore
