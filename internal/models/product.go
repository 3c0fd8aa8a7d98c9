// Stockwatch - Retail Stock Level History
// Copyright 2026 The Stockwatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/klokstudent/stockwatch

package models

import (
	"github.com/shopspring/decimal"
)

// Product is a catalog entry identified by the retailer's product code.
//
// Products are created by the external catalog import and are never written by
// the ingestion pipeline. The derived fields (PricePerLiter, AlcoholPerNOK,
// ParsedSize) are computed once at import time.
type Product struct {
	Code             string          `json:"code"`
	Name             string          `json:"name"`
	MainCategoryName string          `json:"mainCategoryName,omitempty"`
	MainCountryName  string          `json:"mainCountryName,omitempty"`
	ProducerName     string          `json:"mainProducerName,omitempty"`
	Price            decimal.Decimal `json:"priceValue"`
	VolumeLiters     decimal.Decimal `json:"volumeValue"`
	AlcoholPercent   decimal.Decimal `json:"alcoholPercent"`
	Buyable          bool            `json:"buyable"`
	Expired          bool            `json:"expired"`
	URL              string          `json:"url,omitempty"`

	// Derived at import time.
	ParsedSize    decimal.Decimal `json:"parsedSize"`
	PricePerLiter decimal.Decimal `json:"pricePerLiter"`
	AlcoholPerNOK decimal.Decimal `json:"alcoholPerNok"`
}

// DeriveFields computes the derived numeric fields from price, volume and
// alcohol content. Zero price or volume leaves the affected field at zero.
func (p *Product) DeriveFields() {
	p.ParsedSize = p.VolumeLiters
	if p.VolumeLiters.IsPositive() {
		p.PricePerLiter = p.Price.Div(p.VolumeLiters).Round(2)
	}
	if p.Price.IsPositive() {
		pureAlcohol := p.VolumeLiters.Mul(p.AlcoholPercent).Div(decimal.NewFromInt(100))
		// centiliters of pure alcohol per krone
		p.AlcoholPerNOK = pureAlcohol.Mul(decimal.NewFromInt(100)).Div(p.Price).Round(4)
	}
}
