package cli

import (
	"fmt"
	"log/slog"

	"github.com/civicsignal/regwatch/pkg/data"
	"github.com/civicsignal/regwatch/pkg/entity"
	"github.com/civicsignal/regwatch/pkg/report"
	"github.com/urfave/cli/v2"
)

var (
	htmlFlag = &cli.BoolFlag{
		Name:  "html",
		Usage: "Render the report as HTML instead of markdown",
	}

	reportCmd = &cli.Command{
		Name:  "report",
		Usage: "Assemble an investigation report from imported records",
		UsageText: `regwatch --state MD report                      # markdown to stdout
   regwatch --state MD report --html --out r.html  # HTML to a file`,
		Action: cmdReport,
		Flags: []cli.Flag{
			htmlFlag,
			outFileFlag,
			windowFlag,
		},
	}
)

func cmdReport(c *cli.Context) error {
	cfg := getConfig(c)

	engine := cfg.Engine
	if v := c.Int(windowFlag.Name); v > 0 {
		engine.FormationWindowDays = v
	}

	businesses, err := data.ListBusinesses(cfg.DB, cfg.State)
	if err != nil {
		return fmt.Errorf("loading businesses: %w", err)
	}

	networks := entity.BuildOwnershipNetworks(businesses, engine.NetworkRoleFilter())
	addressClusters := entity.BuildAddressClusters(businesses)
	formation := entity.DetectRapidFormation(businesses, engine.FormationWindowDays, engine.FormationRoleFilter())

	scorer := entity.NewScorer(engine)
	assessments := make([]report.BusinessAssessment, 0)
	for _, b := range businesses {
		a := scorer.ShellCompanyRisk(b, networks, addressClusters)
		if a == nil || a.Score == 0 {
			continue
		}
		assessments = append(assessments, report.BusinessAssessment{
			Business:   b,
			Assessment: a,
		})
	}

	r := report.Build(report.Input{
		State:       cfg.State,
		Networks:    networks,
		Clusters:    formation,
		Assessments: assessments,
	})

	slog.Info("report assembled", "id", r.ID, "networks", len(networks),
		"formation_clusters", len(formation), "assessed", len(assessments))

	if !c.Bool(htmlFlag.Name) {
		return writeOut(c, r.Markdown)
	}

	html, err := report.RenderHTML(r)
	if err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	return writeOut(c, html)
}
