package inventory

import (
	"log/slog"

	"github.com/zombor/expiry-tracker/internal/expiry"
)

// Announcer is told about inventory events the operator should hear about
type Announcer interface {
	// UnitRecorded is called after a unit is saved, with the product's unit count
	UnitRecorded(unit *Unit, productCount int)
	// ProductFinalized is called after a product summary is saved
	ProductFinalized(summary *ProductSummary)
}

// LogAnnouncer writes announcements as structured log events
type LogAnnouncer struct{}

func (LogAnnouncer) UnitRecorded(unit *Unit, productCount int) {
	slog.Info("Unit recorded",
		"product", unit.ProductName,
		"unit_id", unit.ID,
		"count", productCount,
		"expiration_date", unit.ExpirationDate,
		"status", unit.Status,
	)

	switch unit.Status {
	case expiry.StatusExpiringSoon:
		slog.Warn("Product is about to expire", "product", unit.ProductName, "expiration_date", unit.ExpirationDate)
	case expiry.StatusExpired:
		slog.Warn("Product is expired", "product", unit.ProductName, "expiration_date", unit.ExpirationDate)
	}
}

func (LogAnnouncer) ProductFinalized(summary *ProductSummary) {
	slog.Info("Product finalized",
		"product", summary.ProductName,
		"total_quantity", summary.TotalQuantity,
		"earliest_expiration", summary.EarliestExpiration,
		"status", summary.Status,
	)
}
