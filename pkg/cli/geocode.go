package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/civicsignal/regwatch/pkg/data"
	"github.com/civicsignal/regwatch/pkg/geo"
	"github.com/urfave/cli/v2"
)

var (
	geocodeLimitFlag = &cli.IntFlag{
		Name:  "limit",
		Usage: "Maximum number of facilities to geocode in one run (0 = all)",
	}

	geocodeCmd = &cli.Command{
		Name:   "geocode",
		Usage:  "Resolve coordinates for stored facilities without a location",
		Action: cmdGeocode,
		Flags: []cli.Flag{
			geocodeLimitFlag,
		},
	}
)

type GeocodeResult struct {
	State     string `json:"state,omitempty" yaml:"state,omitempty"`
	Pending   int    `json:"pending" yaml:"pending"`
	Located   int    `json:"located" yaml:"located"`
	Unmatched int    `json:"unmatched" yaml:"unmatched"`
	Duration  string `json:"duration" yaml:"duration"`
}

func cmdGeocode(c *cli.Context) error {
	start := time.Now()
	cfg := getConfig(c)

	pending, err := data.ListUnlocatedFacilities(cfg.DB, cfg.State)
	if err != nil {
		return fmt.Errorf("listing facilities to geocode: %w", err)
	}

	if limit := c.Int(geocodeLimitFlag.Name); limit > 0 && len(pending) > limit {
		pending = pending[:limit]
	}

	res := &GeocodeResult{State: cfg.State, Pending: len(pending)}

	client := geo.New()
	ctx := context.Background()

	for _, f := range pending {
		address := f.Address
		if f.City != "" {
			address = address + ", " + f.City
		}

		loc, geoErr := client.Geocode(ctx, address)
		if geoErr != nil {
			slog.Error("geocoding failed", "license", f.LicenseNumber, "error", geoErr)
			res.Unmatched++
			continue
		}
		if loc == nil {
			slog.Debug("no geocode candidate", "license", f.LicenseNumber, "address", address)
			res.Unmatched++
			continue
		}

		if err := data.UpdateFacilityLocation(cfg.DB, f.LicenseNumber, loc.Latitude, loc.Longitude); err != nil {
			return fmt.Errorf("saving location for %s: %w", f.LicenseNumber, err)
		}
		res.Located++
	}

	res.Duration = time.Since(start).String()
	return encode(res)
}
