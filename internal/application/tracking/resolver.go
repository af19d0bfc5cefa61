// Package tracking drives the shipment tracking reconciliation run:
// candidate selection, routing resolution, provider lookup and the ERP
// write-backs, with one run-log entry per terminal outcome.
package tracking

import (
	"context"
	"fmt"
	"strings"

	"github.com/trvlprogrammer/odoo-mainfreight-tacking/internal/domain/shipping"
)

// Gateway is the ERP surface the reconciliation job depends on. Every
// operation is a blocking remote call; failures are non-retryable
// within a run.
type Gateway interface {
	Authenticate(ctx context.Context) error
	FetchCandidates(ctx context.Context, companyIDs []int64, limit int) ([]shipping.Candidate, error)
	ReadTransfer(ctx context.Context, id int64) (shipping.Transfer, error)
	ReadProvider(ctx context.Context, id int64) (shipping.Provider, error)
	ReadWarehouse(ctx context.Context, id int64) (shipping.Warehouse, error)
	ReadMoveLines(ctx context.Context, pickingID int64) ([]shipping.MoveLine, error)
	MarkTransferDone(ctx context.Context, transferID int64) error
	CreateShipment(ctx context.Context, s shipping.Shipment) (int64, error)
	LinkShipment(ctx context.Context, pickingID, shipmentID int64) error
}

// Tracker looks up tracking data at the freight provider.
type Tracker interface {
	Lookup(ctx context.Context, region, serviceType, reference string) (shipping.TrackingInfo, error)
}

// Resolver derives routing metadata for one picking. The metadata is
// not stored on the picking: it is inherited through the logistics
// provider of one transfer, so every candidate pays the full
// transfer -> provider -> warehouse chain. Provider assignments differ
// per candidate, so the chain is never cached.
type Resolver struct {
	gateway Gateway
}

// NewResolver creates a resolver over the given gateway.
func NewResolver(gateway Gateway) *Resolver {
	return &Resolver{gateway: gateway}
}

// Resolve walks the three-hop chain from the given transfer, short
// circuiting on the first failure. Missing or malformed relational
// fields surface as shipping.SkipError; failed reads surface as plain
// errors.
func (r *Resolver) Resolve(ctx context.Context, transferID int64) (shipping.Route, error) {
	transfer, err := r.gateway.ReadTransfer(ctx, transferID)
	if err != nil {
		return shipping.Route{}, fmt.Errorf("read tpl.queue: %w", err)
	}
	if transfer.Provider.IsZero() {
		return shipping.Route{}, shipping.Skipf("missing tpl_provider on queue %d", transferID)
	}

	provider, err := r.gateway.ReadProvider(ctx, transfer.Provider.ID)
	if err != nil {
		return shipping.Route{}, fmt.Errorf("read tpl.provider: %w", err)
	}
	if provider.DefaultWarehouse.IsZero() {
		return shipping.Route{}, shipping.Skipf("missing default_tpl_warehouse_id on provider %d", provider.ID)
	}

	warehouse, err := r.gateway.ReadWarehouse(ctx, provider.DefaultWarehouse.ID)
	if err != nil {
		return shipping.Route{}, fmt.Errorf("read tpl.warehouse: %w", err)
	}

	region := strings.TrimSpace(warehouse.RegionCode)
	serviceType := strings.TrimSpace(warehouse.ServiceCode)
	if region == "" || serviceType == "" {
		return shipping.Route{}, shipping.Skipf("missing region/service (warehouse %d)", warehouse.ID)
	}
	return shipping.Route{Region: region, ServiceType: serviceType}, nil
}
