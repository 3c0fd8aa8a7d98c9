// Stockwatch - Retail Stock Level History
// Copyright 2026 The Stockwatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/klokstudent/stockwatch

// Package schedule decides whether the retailer is open at a given instant.
//
// OperatingHours holds a weekly table of opening windows evaluated in a
// fixed named timezone. The default table matches Vinmonopolet: weekdays
// 10:00 to 18:00, Saturdays 10:00 to 16:00, closed on Sundays. Both window
// ends are inclusive at second precision, so 18:00:00 is open and 18:00:01
// is closed.
//
// IsOpen is pure: the same instant always yields the same answer, and the
// caller's timezone is irrelevant because the instant is converted first.
package schedule
