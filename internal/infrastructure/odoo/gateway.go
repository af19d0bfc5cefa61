package odoo

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/trvlprogrammer/odoo-mainfreight-tacking/internal/domain/shipping"
)

// Model names on the Odoo side.
const (
	modelPicking   = "stock.picking"
	modelQueue     = "stock.tpl.queue"
	modelProvider  = "stock.tpl.provider"
	modelWarehouse = "stock.tpl.warehouse"
	modelMoveLine  = "stock.move.line"
	modelShipment  = "tpl.shipment"
)

// FetchCandidates searches pickings whose TPL transfer is complete and
// sent but which have no linked shipment yet, scoped to the given
// companies and capped at limit. Excluding pickings with a non-empty
// tpl_shipment_ids keeps re-runs from reprocessing reconciled records.
func (c *Client) FetchCandidates(ctx context.Context, companyIDs []int64, limit int) ([]shipping.Candidate, error) {
	if companyIDs == nil {
		companyIDs = []int64{}
	}
	domain := []any{
		[]any{"tpl_transfer_ids.milestone_state", "=", shipping.MilestoneComplete},
		[]any{"tpl_transfer_ids.state", "=", shipping.TransferStateSent},
		[]any{"tpl_shipment_ids", "=", false},
		[]any{"company_id", "in", companyIDs},
	}

	ids, err := c.Search(ctx, modelPicking, domain, limit)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	records, err := c.Read(ctx, modelPicking, ids, []string{"name", "origin", "sale_id", "tpl_transfer_ids"})
	if err != nil {
		return nil, err
	}

	out := make([]shipping.Candidate, 0, len(records))
	for _, rec := range records {
		cand := shipping.Candidate{
			ID:          rec.Int64("id"),
			Name:        rec.Str("name"),
			Origin:      rec.Str("origin"),
			TransferIDs: rec.Int64s("tpl_transfer_ids"),
		}
		if cand.ID == 0 {
			return nil, fmt.Errorf("odoo: %s.read: record without id", modelPicking)
		}
		if ref, ok := rec.Ref("sale_id"); ok {
			cand.Sale = ref
		}
		out = append(out, cand)
	}
	return out, nil
}

// ReadTransfer reads one TPL queue record.
func (c *Client) ReadTransfer(ctx context.Context, id int64) (shipping.Transfer, error) {
	rec, err := c.readOne(ctx, modelQueue, id, []string{"tpl_provider", "state", "milestone_state"})
	if err != nil {
		return shipping.Transfer{}, err
	}

	transfer := shipping.Transfer{
		ID:             id,
		State:          rec.Str("state"),
		MilestoneState: rec.Str("milestone_state"),
	}
	if ref, ok := rec.Ref("tpl_provider"); ok {
		transfer.Provider = ref
	}
	return transfer, nil
}

// ReadProvider reads one TPL provider record.
func (c *Client) ReadProvider(ctx context.Context, id int64) (shipping.Provider, error) {
	rec, err := c.readOne(ctx, modelProvider, id, []string{"default_tpl_warehouse_id"})
	if err != nil {
		return shipping.Provider{}, err
	}

	provider := shipping.Provider{ID: id}
	if ref, ok := rec.Ref("default_tpl_warehouse_id"); ok {
		provider.DefaultWarehouse = ref
	}
	return provider, nil
}

// ReadWarehouse reads one TPL warehouse record.
func (c *Client) ReadWarehouse(ctx context.Context, id int64) (shipping.Warehouse, error) {
	rec, err := c.readOne(ctx, modelWarehouse, id, []string{"region_code", "service_code"})
	if err != nil {
		return shipping.Warehouse{}, err
	}

	return shipping.Warehouse{
		ID:          id,
		RegionCode:  rec.Str("region_code"),
		ServiceCode: rec.Str("service_code"),
	}, nil
}

// ReadMoveLines fetches the move lines of one picking. Lines without a
// product reference are dropped.
func (c *Client) ReadMoveLines(ctx context.Context, pickingID int64) ([]shipping.MoveLine, error) {
	domain := []any{
		[]any{"picking_id", "=", pickingID},
	}
	ids, err := c.Search(ctx, modelMoveLine, domain, 0)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	records, err := c.Read(ctx, modelMoveLine, ids, []string{"product_id", "qty_done"})
	if err != nil {
		return nil, err
	}

	out := make([]shipping.MoveLine, 0, len(records))
	for _, rec := range records {
		product, ok := rec.Ref("product_id")
		if !ok {
			continue
		}
		out = append(out, shipping.MoveLine{
			ProductID:    product.ID,
			QuantityDone: decimal.NewFromFloat(rec.Float("qty_done")),
		})
	}
	return out, nil
}

// MarkTransferDone flips one TPL queue record to the done state.
func (c *Client) MarkTransferDone(ctx context.Context, transferID int64) error {
	return c.Write(ctx, modelQueue, []int64{transferID}, map[string]any{
		"state": shipping.TransferStateDone,
	})
}

// CreateShipment creates one tpl.shipment record with its line items.
func (c *Client) CreateShipment(ctx context.Context, s shipping.Shipment) (int64, error) {
	lineCmds := make([]any, 0, len(s.Lines))
	for _, l := range s.Lines {
		lineCmds = append(lineCmds, []any{int64(0), int64(0), map[string]any{
			"product_id": l.ProductID,
			"quantity":   l.Quantity.InexactFloat64(),
		}})
	}

	values := map[string]any{
		"name":         s.Name,
		"tracking_url": s.TrackingURL,
		"tpl_code":     s.CarrierCode,
		"ship_date":    s.ShipDate,
	}
	if len(lineCmds) > 0 {
		values["line_ids"] = lineCmds
	}
	return c.Create(ctx, modelShipment, values)
}

// LinkShipment appends the shipment to the picking's m2m shipment list.
func (c *Client) LinkShipment(ctx context.Context, pickingID, shipmentID int64) error {
	return c.Write(ctx, modelPicking, []int64{pickingID}, map[string]any{
		"tpl_shipment_ids": []any{[]any{int64(4), shipmentID, int64(0)}},
	})
}

// readOne reads a single record by id and fails when it is missing.
func (c *Client) readOne(ctx context.Context, model string, id int64, fields []string) (Record, error) {
	records, err := c.Read(ctx, model, []int64{id}, fields)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("odoo: %s %d not found", model, id)
	}
	return records[0], nil
}
