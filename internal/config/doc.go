// Stockwatch - Retail Stock Level History
// Copyright 2026 The Stockwatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/klokstudent/stockwatch

/*
Package config loads Stockwatch configuration with koanf.

Precedence, lowest to highest:

 1. Built-in defaults (defaultConfig)
 2. YAML file: $CONFIG_PATH, ./config.yaml or /etc/stockwatch/config.yaml
 3. Environment variables (see the per-section docs for names)

Example config.yaml:

	poll:
	  interval: 10s
	  products: ["3420106", "3901"]
	  latitude: 63.415570
	  longitude: 10.404534
	vinmonopolet:
	  requests_per_second: 2
	database:
	  path: /data/stockwatch.duckdb

The result is validated before it is returned; an invalid configuration is
a startup error.
*/
package config
