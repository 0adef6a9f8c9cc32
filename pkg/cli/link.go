package cli

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/civicsignal/regwatch/pkg/data"
	"github.com/civicsignal/regwatch/pkg/entity"
	"github.com/urfave/cli/v2"
)

var (
	licenseFlag = &cli.StringFlag{
		Name:  "license",
		Usage: "Facility license number to link against registrations",
	}

	fileNumberFlag = &cli.StringFlag{
		Name:  "file",
		Usage: "Business file number to link against facilities",
	}

	thresholdFlag = &cli.Float64Flag{
		Name:  "threshold",
		Usage: fmt.Sprintf("Minimum name similarity for a fuzzy match (default: %v)", entity.NameThresholdDefault),
	}

	workersFlag = &cli.IntFlag{
		Name:  "workers",
		Usage: "Worker pool size for bulk linking (default: number of CPUs)",
	}

	linkCmd = &cli.Command{
		Name:    "link",
		Aliases: []string{"l"},
		Usage:   "Cross-link facility and business registration records",
		UsageText: `regwatch --state MD link --license MD-0001   # link one facility
   regwatch --state MD link --file W1234567     # link one registration
   regwatch --state MD link                     # link every facility`,
		Action: cmdLink,
		Flags: []cli.Flag{
			licenseFlag,
			fileNumberFlag,
			thresholdFlag,
			workersFlag,
		},
	}
)

type LinkResult struct {
	State      string                  `json:"state,omitempty" yaml:"state,omitempty"`
	Facilities int                     `json:"facilities" yaml:"facilities"`
	Businesses int                     `json:"businesses" yaml:"businesses"`
	Linked     []*entity.FacilityLinks `json:"linked" yaml:"linked"`
	Duration   string                  `json:"duration" yaml:"duration"`
}

func cmdLink(c *cli.Context) error {
	cfg := getConfig(c)
	linker := makeLinker(c, cfg)

	if license := c.String(licenseFlag.Name); license != "" {
		return linkFacility(cfg, linker, license)
	}
	if fileNumber := c.String(fileNumberFlag.Name); fileNumber != "" {
		return linkBusiness(cfg, linker, fileNumber)
	}
	return linkAll(c, cfg, linker)
}

func makeLinker(c *cli.Context, cfg *appConfig) entity.Linker {
	threshold := cfg.Engine.NameThreshold
	if v := c.Float64(thresholdFlag.Name); v > 0 {
		threshold = v
	}
	return entity.NewLinker(entity.NewMatcher(threshold))
}

func linkFacility(cfg *appConfig, linker entity.Linker, license string) error {
	f, err := data.GetFacilityByLicense(cfg.DB, license)
	if err != nil {
		return fmt.Errorf("loading facility %s: %w", license, err)
	}
	if f == nil {
		return fmt.Errorf("no facility with license %s", license)
	}

	businesses, err := data.ListBusinesses(cfg.DB, cfg.State)
	if err != nil {
		return fmt.Errorf("loading businesses: %w", err)
	}

	matches := linker.FindLinkedBusinesses(f, businesses)
	return encode(&entity.FacilityLinks{Facility: f, Matches: matches})
}

func linkBusiness(cfg *appConfig, linker entity.Linker, fileNumber string) error {
	b, err := data.GetBusinessByFileNumber(cfg.DB, fileNumber)
	if err != nil {
		return fmt.Errorf("loading business %s: %w", fileNumber, err)
	}
	if b == nil {
		return fmt.Errorf("no business with file number %s", fileNumber)
	}

	facilities, err := data.ListFacilities(cfg.DB, cfg.State)
	if err != nil {
		return fmt.Errorf("loading facilities: %w", err)
	}

	matches := linker.FindLinkedFacilities(b, facilities)
	return encode(matches)
}

func linkAll(c *cli.Context, cfg *appConfig, linker entity.Linker) error {
	start := time.Now()

	facilities, err := data.ListFacilities(cfg.DB, cfg.State)
	if err != nil {
		return fmt.Errorf("loading facilities: %w", err)
	}

	businesses, err := data.ListBusinesses(cfg.DB, cfg.State)
	if err != nil {
		return fmt.Errorf("loading businesses: %w", err)
	}

	workers := c.Int(workersFlag.Name)
	if workers < 1 {
		workers = runtime.NumCPU()
	}

	slog.Info("linking facilities", "facilities", len(facilities),
		"businesses", len(businesses), "workers", workers)

	linked, err := linker.LinkAllFacilities(context.Background(), facilities, businesses, workers)
	if err != nil {
		return fmt.Errorf("linking facilities: %w", err)
	}

	return encode(&LinkResult{
		State:      cfg.State,
		Facilities: len(facilities),
		Businesses: len(businesses),
		Linked:     linked,
		Duration:   time.Since(start).String(),
	})
}
