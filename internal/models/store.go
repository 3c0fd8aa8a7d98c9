// Stockwatch - Retail Stock Level History
// Copyright 2026 The Stockwatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/klokstudent/stockwatch

package models

import (
	"time"
)

// GeoPoint is a WGS84 coordinate pair.
type GeoPoint struct {
	Latitude  float64 `json:"latitude" koanf:"latitude"`
	Longitude float64 `json:"longitude" koanf:"longitude"`
}

// StoreDescriptor carries the store fields reported by the retailer API.
type StoreDescriptor struct {
	PointOfServiceID  string
	Name              string
	DisplayName       string
	FormattedAddress  string
	AddressID         string
	AddressLine1      string
	FormattedDistance string
	GeoPoint          GeoPoint
}

// StoreObservation is one store and its raw stock level for the product
// that was queried.
type StoreObservation struct {
	Store      StoreDescriptor
	StockLevel int
}

// Store is a physical retail location keyed by PointOfServiceID.
//
// Stores are created on first sight and never deleted. Metadata is never
// overwritten after creation; the only mutation is appending to StockInfo.
type Store struct {
	PointOfServiceID        string        `json:"pointOfServiceId"`
	Name                    string        `json:"name"`
	DisplayName             string        `json:"displayName"`
	AddressFormattedAddress string        `json:"addressFormattedAddress"`
	AddressID               string        `json:"addressId,omitempty"`
	AddressLine1            string        `json:"addressLine1,omitempty"`
	FormattedDistance       string        `json:"formattedDistance,omitempty"`
	GeoPoint                GeoPoint      `json:"geoPoint"`
	CreatedAt               time.Time     `json:"createdAt"`
	StockInfo               []StockRecord `json:"stockInfo"`
}

// NewStore builds a Store with an empty stock history from a descriptor.
func NewStore(d StoreDescriptor, createdAt time.Time) *Store {
	return &Store{
		PointOfServiceID:        d.PointOfServiceID,
		Name:                    d.Name,
		DisplayName:             d.DisplayName,
		AddressFormattedAddress: d.FormattedAddress,
		AddressID:               d.AddressID,
		AddressLine1:            d.AddressLine1,
		FormattedDistance:       d.FormattedDistance,
		GeoPoint:                d.GeoPoint,
		CreatedAt:               createdAt,
		StockInfo:               []StockRecord{},
	}
}

// Record returns the stock record for productID, or nil if the product has
// never been observed at this store.
//
// The returned pointer aliases the store's slice and is only valid until the
// next call to EnsureRecord.
func (s *Store) Record(productID string) *StockRecord {
	for i := range s.StockInfo {
		if s.StockInfo[i].ProductID == productID {
			return &s.StockInfo[i]
		}
	}
	return nil
}

// EnsureRecord returns the stock record for productID, appending an empty one
// if none exists. created reports whether a record was appended.
func (s *Store) EnsureRecord(productID string) (rec *StockRecord, created bool) {
	if rec := s.Record(productID); rec != nil {
		return rec, false
	}
	s.StockInfo = append(s.StockInfo, StockRecord{
		ProductID:   productID,
		StockLevels: []StockObservation{},
	})
	return &s.StockInfo[len(s.StockInfo)-1], true
}

// removeRecord drops the record for productID. Only used to undo an
// EnsureRecord whose write failed.
func (s *Store) removeRecord(productID string) {
	for i := range s.StockInfo {
		if s.StockInfo[i].ProductID == productID {
			s.StockInfo = append(s.StockInfo[:i], s.StockInfo[i+1:]...)
			return
		}
	}
}

// RollbackAppend undoes the most recent Append on productID's record. When
// the record itself was created for that append it is removed too.
func (s *Store) RollbackAppend(productID string, recordCreated bool) {
	if recordCreated {
		s.removeRecord(productID)
		return
	}
	if rec := s.Record(productID); rec != nil && len(rec.StockLevels) > 0 {
		rec.StockLevels = rec.StockLevels[:len(rec.StockLevels)-1]
	}
}

// StockRecord is the stock history of one product at one store.
//
// StockLevels is append-only, ordered by Timestamp, and never holds two
// consecutive entries with the same Level.
type StockRecord struct {
	ProductID   string             `json:"productId"`
	StockLevels []StockObservation `json:"stockLevels"`
}

// Last returns the most recent observation.
func (r *StockRecord) Last() (StockObservation, bool) {
	if len(r.StockLevels) == 0 {
		return StockObservation{}, false
	}
	return r.StockLevels[len(r.StockLevels)-1], true
}

// Append adds an observation to the end of the history.
func (r *StockRecord) Append(obs StockObservation) {
	r.StockLevels = append(r.StockLevels, obs)
}

// Levels returns the level of each observation in order.
func (r *StockRecord) Levels() []int {
	levels := make([]int, len(r.StockLevels))
	for i, obs := range r.StockLevels {
		levels[i] = obs.Level
	}
	return levels
}

// StockObservation is an immutable point in a stock history.
type StockObservation struct {
	Timestamp time.Time `json:"timestamp"`
	Level     int       `json:"level"`
}
