package service

import (
	"context"
	"time"

	"github.com/jengzang/campusguard-backend-go/internal/heatmap"
	"github.com/jengzang/campusguard-backend-go/internal/models"
	"github.com/jengzang/campusguard-backend-go/internal/observability"
	"github.com/jengzang/campusguard-backend-go/internal/spatial"
)

// HeatmapService ingests anonymous pings and serves privacy-floored cells
type HeatmapService struct {
	agg *heatmap.Aggregator
}

// NewHeatmapService creates a new heatmap service
func NewHeatmapService(agg *heatmap.Aggregator) *HeatmapService {
	return &HeatmapService{agg: agg}
}

// RecordPing counts one ping. Timestamp is unix seconds, zero meaning now.
func (s *HeatmapService) RecordPing(ctx context.Context, p spatial.Point, unixSeconds int64) error {
	ctx, span := observability.Tracer().Start(ctx, "heatmap.record_ping")
	defer span.End()

	var ts time.Time
	if unixSeconds > 0 {
		ts = time.Unix(unixSeconds, 0)
	}
	if err := s.agg.RecordPing(ctx, p, ts); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

// Cells returns the cells of a window; an empty window means 15min
func (s *HeatmapService) Cells(ctx context.Context, window string) (models.HeatmapResult, error) {
	ctx, span := observability.Tracer().Start(ctx, "heatmap.query_cells")
	defer span.End()

	w := models.HeatmapWindow(window)
	if w == "" {
		w = models.Window15Min
	}
	return s.agg.QueryCells(ctx, w)
}
