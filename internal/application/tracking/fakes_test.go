package tracking

import (
	"context"
	"fmt"

	"github.com/trvlprogrammer/odoo-mainfreight-tacking/internal/domain/shipping"
	"github.com/trvlprogrammer/odoo-mainfreight-tacking/internal/infrastructure/runlog"
)

// fakeGateway is an in-memory Gateway with per-operation failure
// switches and call recording.
type fakeGateway struct {
	authErr      error
	candidates   []shipping.Candidate
	fetchErr     error
	transfers    map[int64]shipping.Transfer
	transferErr  error
	providers    map[int64]shipping.Provider
	providerErr  error
	warehouses   map[int64]shipping.Warehouse
	warehouseErr error
	moveLines    map[int64][]shipping.MoveLine
	moveLinesErr error
	markDoneErr  error
	createErr    error
	linkErr      error

	reads      int
	markedDone []int64
	created    []shipping.Shipment
	linked     [][2]int64
}

func (g *fakeGateway) Authenticate(ctx context.Context) error { return g.authErr }

func (g *fakeGateway) FetchCandidates(ctx context.Context, companyIDs []int64, limit int) ([]shipping.Candidate, error) {
	if g.fetchErr != nil {
		return nil, g.fetchErr
	}
	if limit > 0 && len(g.candidates) > limit {
		return g.candidates[:limit], nil
	}
	return g.candidates, nil
}

func (g *fakeGateway) ReadTransfer(ctx context.Context, id int64) (shipping.Transfer, error) {
	g.reads++
	if g.transferErr != nil {
		return shipping.Transfer{}, g.transferErr
	}
	t, ok := g.transfers[id]
	if !ok {
		return shipping.Transfer{}, fmt.Errorf("transfer %d not found", id)
	}
	return t, nil
}

func (g *fakeGateway) ReadProvider(ctx context.Context, id int64) (shipping.Provider, error) {
	g.reads++
	if g.providerErr != nil {
		return shipping.Provider{}, g.providerErr
	}
	p, ok := g.providers[id]
	if !ok {
		return shipping.Provider{}, fmt.Errorf("provider %d not found", id)
	}
	return p, nil
}

func (g *fakeGateway) ReadWarehouse(ctx context.Context, id int64) (shipping.Warehouse, error) {
	g.reads++
	if g.warehouseErr != nil {
		return shipping.Warehouse{}, g.warehouseErr
	}
	w, ok := g.warehouses[id]
	if !ok {
		return shipping.Warehouse{}, fmt.Errorf("warehouse %d not found", id)
	}
	return w, nil
}

func (g *fakeGateway) ReadMoveLines(ctx context.Context, pickingID int64) ([]shipping.MoveLine, error) {
	if g.moveLinesErr != nil {
		return nil, g.moveLinesErr
	}
	return g.moveLines[pickingID], nil
}

func (g *fakeGateway) MarkTransferDone(ctx context.Context, transferID int64) error {
	if g.markDoneErr != nil {
		return g.markDoneErr
	}
	g.markedDone = append(g.markedDone, transferID)
	return nil
}

func (g *fakeGateway) CreateShipment(ctx context.Context, s shipping.Shipment) (int64, error) {
	if g.createErr != nil {
		return 0, g.createErr
	}
	g.created = append(g.created, s)
	return 555, nil
}

func (g *fakeGateway) LinkShipment(ctx context.Context, pickingID, shipmentID int64) error {
	if g.linkErr != nil {
		return g.linkErr
	}
	g.linked = append(g.linked, [2]int64{pickingID, shipmentID})
	return nil
}

// fakeTracker returns a fixed result per reference and records calls.
type fakeTracker struct {
	info    shipping.TrackingInfo
	err     error
	calls   int
	lastReq [3]string
}

func (f *fakeTracker) Lookup(ctx context.Context, region, serviceType, reference string) (shipping.TrackingInfo, error) {
	f.calls++
	f.lastReq = [3]string{region, serviceType, reference}
	if f.err != nil {
		return shipping.TrackingInfo{}, f.err
	}
	return f.info, nil
}

// captureSink records entries in memory.
type captureSink struct {
	entries []runlog.Entry
	flushes int
}

func (c *captureSink) Log(ctx context.Context, e runlog.Entry) error {
	c.entries = append(c.entries, e)
	return nil
}

func (c *captureSink) Flush(ctx context.Context) error {
	c.flushes++
	return nil
}

func (c *captureSink) Close() error { return nil }
