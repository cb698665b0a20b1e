package cli

import (
	"context"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/tuniguard/internal/client/models"
)

// Threats lists the threat catalog. Filters are given as category=<c> and
// severity=<s> arguments.
func (a *App) Threats(ctx context.Context, args []string) error {
	var f models.ThreatFilter
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok {
			a.println("Usage: threats [category=<category>] [severity=<severity>]")
			return nil
		}
		switch strings.ToLower(k) {
		case "category":
			f.Category = v
		case "severity":
			f.Severity = v
		default:
			a.println("Usage: threats [category=<category>] [severity=<severity>]")
			return nil
		}
	}

	threats, err := a.catalog.Threats(ctx, f)
	if err != nil {
		return err
	}
	printThreats(a.out, threats)
	return nil
}

// Stats prints national analytics. Without arguments the figures kept fresh
// by the background watcher are used; "stats <days>" fetches a new period.
func (a *App) Stats(ctx context.Context, args []string) error {
	days := a.config.AnalyticsDays
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			a.println("Usage: stats [days]")
			return nil
		}
		days = n
	} else if s := a.cachedStats(); s != nil {
		printNationalStats(a.out, s)
		return nil
	}

	s, err := a.catalog.National(ctx, days)
	if err != nil {
		return err
	}
	if days == a.config.AnalyticsDays {
		a.onNationalStats(s, nil)
	}
	printNationalStats(a.out, s)
	return nil
}
