// Package report assembles analysis results into a reviewer-facing
// investigation report. Reports are advisory: they present scored,
// explainable signals, never conclusions.
package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/civicsignal/regwatch/pkg/entity"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Report is one assembled investigation report.
type Report struct {
	ID        string `json:"id" yaml:"id"`
	State     string `json:"state,omitempty" yaml:"state,omitempty"`
	Generated string `json:"generated" yaml:"generated"`
	Markdown  string `json:"markdown" yaml:"markdown"`
}

// Input collects the analysis results to present.
type Input struct {
	State       string
	Networks    []*entity.OwnershipNetwork
	Clusters    []*entity.FormationCluster
	Assessments []BusinessAssessment
}

// BusinessAssessment pairs a business with its shell-company risk result.
type BusinessAssessment struct {
	Business   *entity.Business       `json:"business" yaml:"business"`
	Assessment *entity.RiskAssessment `json:"assessment" yaml:"assessment"`
}

// Build assembles a markdown report with a fresh identifier.
func Build(in Input) *Report {
	now := time.Now().UTC()

	var b strings.Builder
	fmt.Fprintf(&b, "# Registry cross-link report\n\n")
	if in.State != "" {
		fmt.Fprintf(&b, "State: %s\n\n", in.State)
	}
	fmt.Fprintf(&b, "Generated: %s\n\n", now.Format(time.RFC3339))
	b.WriteString("All findings below are candidate signals for human review, not conclusions.\n")

	writeNetworks(&b, in.Networks)
	writeClusters(&b, in.Clusters)
	writeAssessments(&b, in.Assessments)

	return &Report{
		ID:        uuid.NewString(),
		State:     in.State,
		Generated: now.Format(time.RFC3339),
		Markdown:  b.String(),
	}
}

func writeNetworks(b *strings.Builder, networks []*entity.OwnershipNetwork) {
	b.WriteString("\n## Shared-agent networks\n\n")
	if len(networks) == 0 {
		b.WriteString("None found.\n")
		return
	}

	b.WriteString("| Agent | Businesses | Addresses | Cities |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, n := range networks {
		fmt.Fprintf(b, "| %s | %d | %d | %s |\n",
			n.Agent, n.BusinessCount, n.AddressCount, strings.Join(n.Cities, ", "))
	}
}

func writeClusters(b *strings.Builder, clusters []*entity.FormationCluster) {
	b.WriteString("\n## Rapid formation clusters\n\n")
	if len(clusters) == 0 {
		b.WriteString("None found.\n")
		return
	}

	for _, c := range clusters {
		fmt.Fprintf(b, "- **%s**: %d filings between %s and %s (%d days)\n",
			c.Agent, c.BusinessCount, c.StartDate, c.EndDate, c.DaysSpan)
	}
}

func writeAssessments(b *strings.Builder, assessments []BusinessAssessment) {
	b.WriteString("\n## Shell-company risk\n\n")
	if len(assessments) == 0 {
		b.WriteString("None assessed.\n")
		return
	}

	for _, a := range assessments {
		if a.Business == nil || a.Assessment == nil {
			continue
		}
		fmt.Fprintf(b, "### %s\n\nScore %d (%s)\n\n",
			a.Business.Name, a.Assessment.Score, a.Assessment.Level)
		for _, flag := range a.Assessment.Flags {
			fmt.Fprintf(b, "- [%s] %s: %s\n", flag.Severity, flag.Type, flag.Message)
		}
	}
}

// RenderHTML converts a report's markdown body to a standalone HTML page.
func RenderHTML(r *Report) (string, error) {
	if r == nil {
		return "", errors.New("report is required")
	}

	md := goldmark.New(goldmark.WithExtensions(extension.GFM))

	var body bytes.Buffer
	if err := md.Convert([]byte(r.Markdown), &body); err != nil {
		return "", errors.Wrap(err, "failed to convert report markdown")
	}

	var b strings.Builder
	b.WriteString("<!doctype html><html><head><meta charset=\"utf-8\">")
	fmt.Fprintf(&b, "<title>Registry cross-link report %s</title>", r.ID)
	b.WriteString("</head><body>")
	b.Write(body.Bytes())
	b.WriteString("</body></html>")

	return b.String(), nil
}
