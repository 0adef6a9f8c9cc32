package cli

import (
	"database/sql"
	"fmt"

	"github.com/civicsignal/regwatch/pkg/data"
	"github.com/civicsignal/regwatch/pkg/entity"
	"github.com/civicsignal/regwatch/pkg/report"
	"github.com/urfave/cli/v2"
)

var (
	windowFlag = &cli.IntFlag{
		Name:  "window",
		Usage: fmt.Sprintf("Rapid-formation window in days (default: %d)", entity.FormationWindowDaysDefault),
	}

	ownerFlag = &cli.StringFlag{
		Name:  "owner",
		Usage: "Owner name to assess across program datasets",
	}

	analyzeCmd = &cli.Command{
		Name:    "analyze",
		Aliases: []string{"a"},
		Usage:   "List analysis operations over imported records",
		Subcommands: []*cli.Command{
			{
				Name:    "networks",
				Usage:   "Group registrations by shared registered agent",
				Aliases: []string{"n"},
				Action:  cmdNetworks,
			},
			{
				Name:    "clusters",
				Usage:   "Group registrations by shared address",
				Aliases: []string{"c"},
				Action:  cmdClusters,
			},
			{
				Name:    "formation",
				Usage:   "Detect bursts of filings by the same agent",
				Aliases: []string{"f"},
				Action:  cmdFormation,
				Flags: []cli.Flag{
					windowFlag,
				},
			},
			{
				Name:   "risk",
				Usage:  "Score one registration for shell-company indicators",
				Action: cmdRisk,
				Flags: []cli.Flag{
					fileNumberFlag,
				},
			},
			{
				Name:   "crossrisk",
				Usage:  "Score an owner's presence across program datasets",
				Action: cmdCrossRisk,
				Flags: []cli.Flag{
					ownerFlag,
				},
			},
		},
	}
)

func cmdNetworks(c *cli.Context) error {
	cfg := getConfig(c)

	networks, err := buildNetworks(cfg.DB, cfg.State, cfg.Engine)
	if err != nil {
		return err
	}
	return encode(networks)
}

func cmdClusters(c *cli.Context) error {
	cfg := getConfig(c)

	clusters, err := buildClusters(cfg.DB, cfg.State)
	if err != nil {
		return err
	}
	return encode(clusters)
}

func cmdFormation(c *cli.Context) error {
	cfg := getConfig(c)

	engine := cfg.Engine
	if v := c.Int(windowFlag.Name); v > 0 {
		engine.FormationWindowDays = v
	}

	clusters, err := buildFormation(cfg.DB, cfg.State, engine)
	if err != nil {
		return err
	}
	return encode(clusters)
}

func cmdRisk(c *cli.Context) error {
	cfg := getConfig(c)

	fileNumber := c.String(fileNumberFlag.Name)
	if fileNumber == "" {
		return cli.ShowSubcommandHelp(c)
	}

	assessed, err := assessBusiness(cfg.DB, cfg.State, fileNumber, cfg.Engine)
	if err != nil {
		return err
	}
	return encode(assessed)
}

func cmdCrossRisk(c *cli.Context) error {
	cfg := getConfig(c)

	owner := c.String(ownerFlag.Name)
	if owner == "" {
		return cli.ShowSubcommandHelp(c)
	}

	assessed, err := assessOwner(cfg.DB, cfg.State, owner, cfg.Engine)
	if err != nil {
		return err
	}
	return encode(assessed)
}

func buildNetworks(db *sql.DB, state string, engine entity.Config) ([]*entity.OwnershipNetwork, error) {
	businesses, err := data.ListBusinesses(db, state)
	if err != nil {
		return nil, fmt.Errorf("loading businesses: %w", err)
	}
	return entity.BuildOwnershipNetworks(businesses, engine.NetworkRoleFilter()), nil
}

func buildClusters(db *sql.DB, state string) ([]*entity.AddressCluster, error) {
	businesses, err := data.ListBusinesses(db, state)
	if err != nil {
		return nil, fmt.Errorf("loading businesses: %w", err)
	}
	return entity.BuildAddressClusters(businesses), nil
}

func buildFormation(db *sql.DB, state string, engine entity.Config) ([]*entity.FormationCluster, error) {
	businesses, err := data.ListBusinesses(db, state)
	if err != nil {
		return nil, fmt.Errorf("loading businesses: %w", err)
	}
	return entity.DetectRapidFormation(businesses, engine.FormationWindowDays, engine.FormationRoleFilter()), nil
}

func assessBusiness(db *sql.DB, state, fileNumber string, engine entity.Config) (*report.BusinessAssessment, error) {
	b, err := data.GetBusinessByFileNumber(db, fileNumber)
	if err != nil {
		return nil, fmt.Errorf("loading business %s: %w", fileNumber, err)
	}
	if b == nil {
		return nil, fmt.Errorf("no business with file number %s", fileNumber)
	}

	businesses, err := data.ListBusinesses(db, state)
	if err != nil {
		return nil, fmt.Errorf("loading businesses: %w", err)
	}

	networks := entity.BuildOwnershipNetworks(businesses, engine.NetworkRoleFilter())
	clusters := entity.BuildAddressClusters(businesses)

	scorer := entity.NewScorer(engine)
	return &report.BusinessAssessment{
		Business:   b,
		Assessment: scorer.ShellCompanyRisk(b, networks, clusters),
	}, nil
}

func assessOwner(db *sql.DB, state, owner string, engine entity.Config) (*entity.CrossProgramAssessment, error) {
	facilities, err := data.ListFacilities(db, state)
	if err != nil {
		return nil, fmt.Errorf("loading facilities: %w", err)
	}

	healthcare, err := data.ListProviders(db, state, entity.ProgramHealthcare)
	if err != nil {
		return nil, fmt.Errorf("loading healthcare providers: %w", err)
	}

	transport, err := data.ListProviders(db, state, entity.ProgramTransport)
	if err != nil {
		return nil, fmt.Errorf("loading transport providers: %w", err)
	}

	scorer := entity.NewScorer(engine)
	return scorer.CrossProgramRisk(owner, facilities, healthcare, transport), nil
}
