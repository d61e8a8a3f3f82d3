package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gridwatch/src/analysis"
	"gridwatch/src/helpers"
	"gridwatch/src/interfaces"
	"gridwatch/src/logger"
	"gridwatch/src/models"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Pipeline runs fetch, store and analyze for every configured zone.
type Pipeline struct {
	Source       interfaces.IPriceSource
	Store        interfaces.IPriceStore
	Analyzer     *analysis.Analyzer
	ErrorHandler *helpers.ErrorHandler
	Logger       *logger.Logger
	Zones        []models.ZoneCode
	Concurrency  int

	now      func() time.Time
	newRunID func() string
}

// -----------------------------------------------------------------------------

func NewPipeline(
	cfg *models.MConfig,
	zones []models.ZoneCode,
	source interfaces.IPriceSource,
	store interfaces.IPriceStore,
	log *logger.Logger,
) *Pipeline {
	concurrency := 1
	if cfg != nil && cfg.Network.ConcurrentRequests > 1 {
		concurrency = cfg.Network.ConcurrentRequests
	}

	return &Pipeline{
		Source:       source,
		Store:        store,
		Analyzer:     analysis.NewAnalyzer(cfg, log),
		ErrorHandler: helpers.NewErrorHandler(log),
		Logger:       log,
		Zones:        zones,
		Concurrency:  concurrency,
		now:          time.Now,
		newRunID:     uuid.NewString,
	}
}

// -----------------------------------------------------------------------------

// Run processes all zones for the UTC day containing ref. A zero ref means
// today. Storage failures do not stop the remaining zones; they are reported
// on the zone and returned joined.
func (p *Pipeline) Run(ctx context.Context, ref time.Time) (models.MRunReport, error) {
	if ref.IsZero() {
		ref = p.now()
	}
	ref = ref.UTC()

	report := models.MRunReport{
		RunID:      p.newRunID(),
		StartedAt:  p.now().UTC(),
		Window:     ref.Truncate(24 * time.Hour),
		ZonePrices: make(map[models.ZoneCode]float64, len(p.Zones)),
		Zones:      make(map[models.ZoneCode]models.MZoneReport, len(p.Zones)),
	}

	p.ErrorHandler.ResetErrorCount()
	p.Logger.Info("Run %s: processing %d zones for %s", report.RunID, len(p.Zones), report.Window.Format("2006-01-02"))

	var (
		mu   sync.Mutex
		errs []error
	)
	collect := func(zr models.MZoneReport, err error) {
		mu.Lock()
		defer mu.Unlock()
		report.Zones[zr.Zone] = zr
		if zr.Points > 0 {
			report.ZonePrices[zr.Zone] = zr.Price
		}
		if err != nil {
			errs = append(errs, err)
		}
	}

	if p.Concurrency <= 1 {
		for _, zone := range p.Zones {
			if ctx.Err() != nil {
				errs = append(errs, ctx.Err())
				break
			}
			collect(p.processZone(ctx, zone, ref))
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(p.Concurrency)
		for _, zone := range p.Zones {
			g.Go(func() error {
				collect(p.processZone(gctx, zone, ref))
				return nil
			})
		}
		g.Wait()
	}

	report.FinishedAt = p.now().UTC()
	p.Logger.Info("Run %s finished in %s: %d zones, %d errors",
		report.RunID, report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond), len(report.Zones), len(errs))

	return report, errors.Join(errs...)
}

// -----------------------------------------------------------------------------

func (p *Pipeline) processZone(ctx context.Context, zone models.ZoneCode, ref time.Time) (models.MZoneReport, error) {
	series := p.Source.FetchDayAheadPrices(ctx, zone, ref)
	zr := models.MZoneReport{
		Zone:      zone,
		Points:    series.Len(),
		Synthetic: series.Synthetic,
	}

	var errs []error

	inserted, err := p.Store.SavePrices(zone, series.Points)
	if err != nil {
		err = fmt.Errorf("%s: save prices: %w", zone, err)
		p.ErrorHandler.Handle(err, "pipeline")
		errs = append(errs, err)
	}
	zr.Inserted = inserted

	p.Analyzer.Evaluate(series, &zr)

	for i, candidate := range zr.Alerts {
		stored, err := p.Store.LogAlert(zone, candidate.Message, candidate.Level)
		if err != nil {
			err = fmt.Errorf("%s: log alert: %w", zone, err)
			p.ErrorHandler.Handle(err, "pipeline")
			errs = append(errs, err)
			continue
		}
		stored.Value = candidate.Value
		zr.Alerts[i] = stored
	}

	joined := errors.Join(errs...)
	if joined != nil {
		zr.Error = joined.Error()
	}

	source := "api"
	if series.Synthetic {
		source = "synthetic"
	}
	p.Logger.Info("%s: %d points (%s), %d new, mean %.2f €/MWh, %d alerts",
		zone, zr.Points, source, zr.Inserted, zr.Price, len(zr.Alerts))

	return zr, joined
}
