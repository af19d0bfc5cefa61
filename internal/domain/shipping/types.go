// Package shipping holds the typed entities of the tracking
// reconciliation job. All records are fetched from the ERP per run and
// discarded afterwards; nothing here is cached between runs.
package shipping

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Transfer lifecycle values on the Odoo side.
const (
	TransferStateSent = "sent"
	TransferStateDone = "done"
	MilestoneComplete = "Complete"
)

// RecordRef is an Odoo many2one value, transported on the wire as an
// [id, label] pair.
type RecordRef struct {
	ID    int64
	Label string
}

// IsZero reports whether the reference is absent.
func (r RecordRef) IsZero() bool { return r.ID == 0 }

// Candidate is a stock picking eligible for tracking reconciliation.
type Candidate struct {
	ID          int64
	Name        string
	Origin      string
	Sale        RecordRef
	TransferIDs []int64
}

// Reference returns the business identifier sent to the tracking
// provider: the sale order label, falling back to origin, then name.
// Empty when none is set.
func (c Candidate) Reference() string {
	if c.Sale.Label != "" {
		return c.Sale.Label
	}
	if c.Origin != "" {
		return c.Origin
	}
	return c.Name
}

// Transfer is the TPL queue record attached to a picking.
type Transfer struct {
	ID             int64
	Provider       RecordRef
	State          string
	MilestoneState string
}

// Provider is a third-party logistics provider record.
type Provider struct {
	ID               int64
	DefaultWarehouse RecordRef
}

// Warehouse carries the routing metadata a provider ships from.
type Warehouse struct {
	ID          int64
	RegionCode  string
	ServiceCode string
}

// Route is the resolved routing metadata for one picking.
type Route struct {
	Region      string
	ServiceType string
}

// TrackingInfo is the normalized result of a tracking provider lookup.
// All fields are optional; a result without both a tracking number and
// a tracking URL carries no usable tracking data.
type TrackingInfo struct {
	TrackingNumber string
	TrackingURL    string
	CarrierName    string
	ShippedAt      string
}

// HasTracking reports whether the result carries usable tracking data.
func (t TrackingInfo) HasTracking() bool {
	return t.TrackingNumber != "" && t.TrackingURL != ""
}

// MoveLine is one stock move line of a picking.
type MoveLine struct {
	ProductID    int64
	QuantityDone decimal.Decimal
}

// ShipmentLine is one aggregated line of a created TPL shipment.
type ShipmentLine struct {
	ProductID int64
	Quantity  decimal.Decimal
}

// Shipment holds the values for one tpl.shipment record to be created.
type Shipment struct {
	Name        string
	TrackingURL string
	CarrierCode string
	ShipDate    string
	Lines       []ShipmentLine
}

// AggregateMoveLines sums quantity done per product, keeping only
// strictly positive totals. Lines come back ordered by product id.
func AggregateMoveLines(lines []MoveLine) []ShipmentLine {
	totals := make(map[int64]decimal.Decimal, len(lines))
	for _, l := range lines {
		totals[l.ProductID] = totals[l.ProductID].Add(l.QuantityDone)
	}

	ids := make([]int64, 0, len(totals))
	for id, qty := range totals {
		if qty.IsPositive() {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]ShipmentLine, 0, len(ids))
	for _, id := range ids {
		out = append(out, ShipmentLine{ProductID: id, Quantity: totals[id]})
	}
	return out
}
