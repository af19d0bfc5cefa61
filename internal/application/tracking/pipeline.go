package tracking

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/trvlprogrammer/odoo-mainfreight-tacking/internal/domain/shipping"
	"github.com/trvlprogrammer/odoo-mainfreight-tacking/internal/infrastructure/runlog"
)

const shipDateLayout = "2006-01-02 15:04:05"

// Options carry the per-run job settings.
type Options struct {
	CompanyIDs    []int64
	MaxCandidates int
}

// RunStats summarizes one pipeline run.
type RunStats struct {
	Candidates int
	Succeeded  int
	Skipped    int
	Failed     int
}

// Pipeline is the reconciliation orchestrator. Candidates are
// processed strictly sequentially; no failure crosses a candidate
// boundary.
type Pipeline struct {
	gateway  Gateway
	tracker  Tracker
	resolver *Resolver
	sink     runlog.Sink
	logger   *zap.Logger
	opts     Options
	now      func() time.Time
}

// NewPipeline wires the orchestrator.
func NewPipeline(gateway Gateway, tracker Tracker, sink runlog.Sink, logger *zap.Logger, opts Options) *Pipeline {
	return &Pipeline{
		gateway:  gateway,
		tracker:  tracker,
		resolver: NewResolver(gateway),
		sink:     sink,
		logger:   logger,
		opts:     opts,
		now:      time.Now,
	}
}

// Run processes one batch. The returned error is non-nil only for
// run-fatal conditions (authentication or candidate search); all other
// failures stay local to their candidate. Buffered sinks are flushed
// on every path.
func (p *Pipeline) Run(ctx context.Context) (*RunStats, error) {
	stats := &RunStats{}
	defer func() {
		if err := p.sink.Flush(context.WithoutCancel(ctx)); err != nil {
			p.logger.Warn("run-log flush failed", zap.Error(err))
		}
	}()

	p.logger.Info("starting tracking reconciliation")

	if err := p.gateway.Authenticate(ctx); err != nil {
		p.logger.Error("authentication failed", zap.Error(err))
		p.emit(ctx, runlog.Entry{Status: runlog.StatusError, Message: fmt.Sprintf("auth error: %v", err)})
		return stats, fmt.Errorf("authenticate: %w", err)
	}

	candidates, err := p.gateway.FetchCandidates(ctx, p.opts.CompanyIDs, p.opts.MaxCandidates)
	if err != nil {
		p.logger.Error("candidate search failed", zap.Error(err))
		p.emit(ctx, runlog.Entry{Status: runlog.StatusError, Message: fmt.Sprintf("search error: %v", err)})
		return stats, fmt.Errorf("search candidates: %w", err)
	}
	if len(candidates) == 0 {
		p.logger.Info("no pickings to process")
		p.emit(ctx, runlog.Entry{Status: runlog.StatusSkip, Message: "no pickings found"})
		return stats, nil
	}

	stats.Candidates = len(candidates)
	for i := range candidates {
		entry := p.process(ctx, &candidates[i])
		p.emit(ctx, entry)
		switch entry.Status {
		case runlog.StatusOK:
			stats.Succeeded++
		case runlog.StatusSkip:
			stats.Skipped++
		default:
			stats.Failed++
		}
	}

	p.logger.Info("tracking reconciliation finished",
		zap.Int("candidates", stats.Candidates),
		zap.Int("ok", stats.Succeeded),
		zap.Int("skipped", stats.Skipped),
		zap.Int("failed", stats.Failed),
	)
	return stats, nil
}

// emit stamps and writes one entry. Sink failures are reported but
// never affect pipeline control flow.
func (p *Pipeline) emit(ctx context.Context, e runlog.Entry) {
	e.Timestamp = p.now().UTC()
	if err := p.sink.Log(ctx, e); err != nil {
		p.logger.Warn("run-log write failed", zap.Error(err))
	}
}

// process takes one candidate to a terminal outcome and returns its
// run-log entry.
func (p *Pipeline) process(ctx context.Context, cand *shipping.Candidate) runlog.Entry {
	id := cand.ID
	entry := runlog.Entry{PickingID: &id}
	log := p.logger.With(zap.Int64("picking_id", id))

	reference := cand.Reference()
	if reference == "" {
		entry.Status = runlog.StatusSkip
		entry.Message = "no reference (sale/origin/name)"
		log.Warn("skipping picking", zap.String("reason", entry.Message))
		return entry
	}
	entry.Reference = reference

	if len(cand.TransferIDs) == 0 {
		entry.Status = runlog.StatusSkip
		entry.Message = "no tpl_transfer_ids"
		log.Warn("skipping picking", zap.String("reason", entry.Message))
		return entry
	}
	// One transfer resolves routing for the whole picking.
	transferID := cand.TransferIDs[0]

	route, err := p.resolver.Resolve(ctx, transferID)
	if err != nil {
		if shipping.IsSkip(err) {
			entry.Status = runlog.StatusSkip
			entry.Message = err.Error()
			log.Warn("skipping picking", zap.String("reason", entry.Message))
		} else {
			entry.Status = runlog.StatusError
			entry.Message = err.Error()
			log.Error("routing resolution failed", zap.Error(err))
		}
		return entry
	}
	entry.Region = route.Region
	entry.ServiceType = route.ServiceType

	info, err := p.tracker.Lookup(ctx, route.Region, route.ServiceType, reference)
	if err != nil {
		entry.Status = runlog.StatusError
		entry.Message = fmt.Sprintf("tracking lookup: %v", err)
		log.Error("tracking lookup failed", zap.Error(err))
		return entry
	}
	if !info.HasTracking() {
		// Deliberately an error, not a skip: a complete transfer with
		// no tracking data at the provider needs operator attention.
		entry.Status = runlog.StatusError
		entry.Message = fmt.Sprintf("no tracking info for ref %q (region=%s, service=%s)",
			reference, route.Region, route.ServiceType)
		log.Warn("no usable tracking data", zap.String("reference", reference))
		return entry
	}
	entry.TrackingNumber = info.TrackingNumber
	entry.TrackingURL = info.TrackingURL
	entry.CarrierName = info.CarrierName

	if err := p.gateway.MarkTransferDone(ctx, transferID); err != nil {
		entry.Status = runlog.StatusError
		entry.Message = fmt.Sprintf("write tpl.queue: %v", err)
		log.Error("marking transfer done failed", zap.Error(err))
		return entry
	}

	moveLines, err := p.gateway.ReadMoveLines(ctx, id)
	if err != nil {
		entry.Status = runlog.StatusError
		entry.Message = fmt.Sprintf("read move lines: %v", err)
		log.Error("reading move lines failed", zap.Error(err))
		return entry
	}
	lines := shipping.AggregateMoveLines(moveLines)
	if len(lines) == 0 {
		// The transfer stays done: accepted inconsistency, no rollback.
		entry.Status = runlog.StatusSkip
		entry.Message = "zero shippable quantity, no shipment created"
		log.Warn("skipping picking", zap.String("reason", entry.Message))
		return entry
	}

	shipDate := info.ShippedAt
	if shipDate == "" {
		shipDate = p.now().UTC().Format(shipDateLayout)
	}
	shipmentID, err := p.gateway.CreateShipment(ctx, shipping.Shipment{
		Name:        info.TrackingNumber,
		TrackingURL: info.TrackingURL,
		CarrierCode: info.CarrierName,
		ShipDate:    shipDate,
		Lines:       lines,
	})
	if err != nil {
		entry.Status = runlog.StatusError
		entry.Message = fmt.Sprintf("create tpl.shipment: %v", err)
		log.Error("creating shipment failed", zap.Error(err))
		return entry
	}

	if err := p.gateway.LinkShipment(ctx, id, shipmentID); err != nil {
		entry.Status = runlog.StatusError
		entry.Message = fmt.Sprintf("link tpl.shipment: %v", err)
		log.Error("linking shipment failed", zap.Error(err))
		return entry
	}

	entry.Status = runlog.StatusOK
	entry.Message = fmt.Sprintf("linked shipment %d (%d lines)", shipmentID, len(lines))
	log.Info("picking reconciled",
		zap.String("tracking_number", info.TrackingNumber),
		zap.String("carrier", info.CarrierName),
		zap.Int64("shipment_id", shipmentID),
		zap.Int("lines", len(lines)),
	)
	return entry
}
