// Stockwatch - Retail Stock Level History
// Copyright 2026 The Stockwatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/klokstudent/stockwatch

package vinmonopolet

import (
	"github.com/goccy/go-json"

	"github.com/klokstudent/stockwatch/internal/models"
)

// StockResponse is the envelope returned by
// GET /vmpws/v2/vmp/products/{id}/stock
//
// Stores is kept raw so a single entry with the wrong JSON types can be
// skipped without losing the rest of the page. See DecodeStoreStock.
type StockResponse struct {
	Stores     []json.RawMessage `json:"stores"`
	Pagination *Pagination       `json:"pagination,omitempty"`
}

// DecodeStoreStock decodes one element of StockResponse.Stores.
func DecodeStoreStock(raw json.RawMessage) (*StoreStock, error) {
	var entry StoreStock
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Pagination describes the result page. Only the first page is ever requested.
type Pagination struct {
	CurrentPage  int `json:"currentPage"`
	PageSize     int `json:"pageSize"`
	TotalPages   int `json:"totalPages"`
	TotalResults int `json:"totalResults"`
}

// StoreStock is one entry of the stores array.
type StoreStock struct {
	PointOfService *PointOfService `json:"pointOfService" validate:"required"`
	StockInfo      *StockInfo      `json:"stockInfo" validate:"required"`
}

// PointOfService describes a physical store.
type PointOfService struct {
	ID                string    `json:"id" validate:"required"`
	Name              string    `json:"name"`
	DisplayName       string    `json:"displayName" validate:"required"`
	FormattedDistance string    `json:"formattedDistance"`
	Address           Address   `json:"address"`
	GeoPoint          *GeoPoint `json:"geoPoint" validate:"required"`
}

// Address of a point of service.
type Address struct {
	ID               string `json:"id"`
	FormattedAddress string `json:"formattedAddress" validate:"required"`
	Line1            string `json:"line1"`
}

// GeoPoint is the store location.
type GeoPoint struct {
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
}

// StockInfo carries the stock level of the queried product.
type StockInfo struct {
	StockLevel *int `json:"stockLevel" validate:"required,gte=0"`
}

// ToObservation converts a validated entry into the domain representation.
// Callers must validate the entry first; nil pointers panic.
func (s *StoreStock) ToObservation() models.StoreObservation {
	pos := s.PointOfService
	return models.StoreObservation{
		Store: models.StoreDescriptor{
			PointOfServiceID:  pos.ID,
			Name:              pos.Name,
			DisplayName:       pos.DisplayName,
			FormattedAddress:  pos.Address.FormattedAddress,
			AddressID:         pos.Address.ID,
			AddressLine1:      pos.Address.Line1,
			FormattedDistance: pos.FormattedDistance,
			GeoPoint: models.GeoPoint{
				Latitude:  pos.GeoPoint.Latitude,
				Longitude: pos.GeoPoint.Longitude,
			},
		},
		StockLevel: *s.StockInfo.StockLevel,
	}
}
