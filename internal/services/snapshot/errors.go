// Package snapshot acquires price snapshots and substitutes a fixed fallback
// snapshot whenever live acquisition fails
package snapshot

import (
	"context"
	"errors"
)

// Acquisition failures. Metadata and price-history failures fail a fetch;
// logo failures are absorbed inside the fetcher.
var (
	ErrMetadataUnavailable     = errors.New("metadata unavailable")
	ErrPriceHistoryUnavailable = errors.New("price history unavailable")
	ErrLogoUnavailable         = errors.New("logo unavailable")
)

// Failure categories used in logs.
const (
	CategoryMetadata     = "metadata_unavailable"
	CategoryPriceHistory = "price_history_unavailable"
	CategoryTransport    = "transport"
	CategoryCancelled    = "cancelled"
)

// Category classifies a fetch error for logging.
func Category(err error) string {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return CategoryCancelled
	case errors.Is(err, ErrMetadataUnavailable):
		return CategoryMetadata
	case errors.Is(err, ErrPriceHistoryUnavailable):
		return CategoryPriceHistory
	default:
		return CategoryTransport
	}
}
