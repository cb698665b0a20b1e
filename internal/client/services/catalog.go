package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/tuniguard/internal/client/client"
	"github.com/dmitrijs2005/tuniguard/internal/client/models"
	"github.com/dmitrijs2005/tuniguard/internal/logging"
)

const (
	defaultAnalyticsDays     = 7
	defaultAnalyticsInterval = 30 * time.Second
)

// CatalogService reads the public threat catalog and national analytics.
// None of its calls need a session.
type CatalogService interface {
	Threats(ctx context.Context, filter models.ThreatFilter) ([]models.Threat, error)
	National(ctx context.Context, days int) (*models.NationalStats, error)
	// WatchNational fetches national stats at once and then every interval
	// until ctx is done, handing each outcome to fn. Fetches run one at a
	// time: a call slower than interval delays the next one instead of
	// running beside it, and ticks missed meanwhile are dropped.
	WatchNational(ctx context.Context, interval time.Duration, days int, fn func(*models.NationalStats, error))
	Ping(ctx context.Context) error
}

type catalogService struct {
	client client.Client
	log    logging.Logger
}

func NewCatalogService(c client.Client, log logging.Logger) CatalogService {
	return &catalogService{client: c, log: log.With("service", "catalog")}
}

func (c *catalogService) Threats(ctx context.Context, filter models.ThreatFilter) ([]models.Threat, error) {
	list, err := c.client.Threats(ctx, filter)
	if err != nil {
		return nil, err
	}
	return list.Threats, nil
}

func (c *catalogService) National(ctx context.Context, days int) (*models.NationalStats, error) {
	if days <= 0 {
		days = defaultAnalyticsDays
	}
	return c.client.NationalAnalytics(ctx, days)
}

func (c *catalogService) WatchNational(ctx context.Context, interval time.Duration, days int, fn func(*models.NationalStats, error)) {
	if interval <= 0 {
		interval = defaultAnalyticsInterval
	}

	fetch := func() {
		stats, err := c.National(ctx, days)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.log.Warn(ctx, "national analytics refresh failed", "error", err)
		}
		fn(stats, err)
	}

	fetch()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ctx.Err() != nil {
				return
			}
			fetch()
		}
	}
}

func (c *catalogService) Ping(ctx context.Context) error {
	return c.client.Ping(ctx)
}
