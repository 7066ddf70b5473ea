package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"solarb/internal/domain"
)

// sweepInterval is how often the archiver checks for expired records.
const sweepInterval = 24 * time.Hour

// ObjectPutter uploads one object to the archive backend. Satisfied by
// *Writer.
type ObjectPutter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
}

// Archiver moves trade and opportunity history older than the retention
// window out of PostgreSQL and into object storage as JSONL. Records are
// deleted from the primary store only after the upload succeeded.
type Archiver struct {
	writer    ObjectPutter
	trades    domain.TradeStore
	opps      domain.OpportunityStore
	retention time.Duration
	logger    *slog.Logger
}

// NewArchiver creates an Archiver with the given retention window.
func NewArchiver(writer ObjectPutter, trades domain.TradeStore, opps domain.OpportunityStore, retention time.Duration, logger *slog.Logger) *Archiver {
	return &Archiver{
		writer:    writer,
		trades:    trades,
		opps:      opps,
		retention: retention,
		logger:    logger.With(slog.String("component", "archiver")),
	}
}

// Run sweeps once at startup and then daily, until ctx is cancelled. Sweep
// failures are logged and retried on the next tick.
func (a *Archiver) Run(ctx context.Context) error {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		if err := a.Sweep(ctx); err != nil {
			a.logger.ErrorContext(ctx, "sweep failed", slog.Any("error", err))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Sweep archives everything older than the retention window.
func (a *Archiver) Sweep(ctx context.Context) error {
	before := time.Now().UTC().Add(-a.retention)

	nTrades, err := a.ArchiveTrades(ctx, before)
	if err != nil {
		return err
	}
	nOpps, err := a.ArchiveOpportunities(ctx, before)
	if err != nil {
		return err
	}

	if nTrades > 0 || nOpps > 0 {
		a.logger.InfoContext(ctx, "archived expired records",
			slog.Int64("trades", nTrades),
			slog.Int64("opportunities", nOpps),
			slog.Time("before", before),
		)
	}
	return nil
}

// ArchiveTrades uploads all trades executed before the cutoff to
// archive/trades/YYYY-MM.jsonl and then deletes them from the store. Returns
// the number of records archived.
func (a *Archiver) ArchiveTrades(ctx context.Context, before time.Time) (int64, error) {
	trades, err := a.trades.ListBefore(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive trades query: %w", err)
	}
	if len(trades) == 0 {
		return 0, nil
	}

	buf, err := marshalJSONL(trades)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive trades marshal: %w", err)
	}
	path := archivePath("trades", before)
	if err := a.writer.Put(ctx, path, bytes.NewReader(buf), "application/x-ndjson"); err != nil {
		return 0, fmt.Errorf("s3blob: archive trades upload: %w", err)
	}

	deleted, err := a.trades.DeleteBefore(ctx, before)
	if err != nil {
		return int64(len(trades)), fmt.Errorf("s3blob: archive trades delete: %w", err)
	}
	return deleted, nil
}

// ArchiveOpportunities uploads all opportunities detected before the cutoff
// to archive/opportunities/YYYY-MM.jsonl and then deletes them from the
// store. Returns the number of records archived.
func (a *Archiver) ArchiveOpportunities(ctx context.Context, before time.Time) (int64, error) {
	opps, err := a.opps.ListBefore(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive opportunities query: %w", err)
	}
	if len(opps) == 0 {
		return 0, nil
	}

	buf, err := marshalJSONL(opps)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive opportunities marshal: %w", err)
	}
	path := archivePath("opportunities", before)
	if err := a.writer.Put(ctx, path, bytes.NewReader(buf), "application/x-ndjson"); err != nil {
		return 0, fmt.Errorf("s3blob: archive opportunities upload: %w", err)
	}

	deleted, err := a.opps.DeleteBefore(ctx, before)
	if err != nil {
		return int64(len(opps)), fmt.Errorf("s3blob: archive opportunities delete: %w", err)
	}
	return deleted, nil
}

// archivePath builds the S3 key for an archive file, partitioned by the
// year-month of the cutoff time.
func archivePath(kind string, before time.Time) string {
	return fmt.Sprintf("archive/%s/%s.jsonl", kind, before.Format("2006-01"))
}

// marshalJSONL serialises records as newline-delimited JSON.
func marshalJSONL[T any](records []T) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	for i, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return nil, fmt.Errorf("jsonl encode record %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}
