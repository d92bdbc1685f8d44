package models

import "errors"

// ErrInvalidSeries marks malformed input data. Handlers map it to a 400.
var ErrInvalidSeries = errors.New("invalid price series")

// ErrSymbolNotFound is returned when an upstream data source has no data
// for the requested symbol.
var ErrSymbolNotFound = errors.New("symbol not found")
