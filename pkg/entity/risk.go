package entity

import (
	"fmt"
	"sort"
	"strings"
)

// Program dataset identifiers used by the cross-program scorer.
const (
	ProgramDaycare    = "daycare"
	ProgramHealthcare = "healthcare"
	ProgramTransport  = "transport"
)

// Flag severities. Critical appears only as a flag on cross-program
// results, never as a risk level.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Risk levels derived from the composite score.
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// Flag types emitted by the scorers.
const (
	FlagAllPrograms    = "ALL_PROGRAMS"
	FlagMultiProgram   = "MULTI_PROGRAM"
	FlagLargeNetwork   = "LARGE_NETWORK"
	FlagMediumNetwork  = "MEDIUM_NETWORK"
	FlagMultiAddress   = "MULTI_ADDRESS_NETWORK"
	FlagAddressCluster = "ADDRESS_CLUSTER"
	FlagRecentFiling   = "ELEVATED_FILING_PERIOD"
)

// Flag is one explainable contribution to a risk score.
type Flag struct {
	Type     string `json:"type" yaml:"type"`
	Severity string `json:"severity" yaml:"severity"`
	Message  string `json:"message" yaml:"message"`
}

// ProgramPresence records how many records in one program dataset matched
// the owner under assessment.
type ProgramPresence struct {
	Program string `json:"program" yaml:"program"`
	Count   int    `json:"count" yaml:"count"`
}

// CrossProgramAssessment scores an owner's presence across independently
// sourced program datasets.
type CrossProgramAssessment struct {
	Owner    string            `json:"owner" yaml:"owner"`
	Score    int               `json:"score" yaml:"score"`
	Programs []ProgramPresence `json:"programs" yaml:"programs"`
	Flags    []Flag            `json:"flags" yaml:"flags"`
}

// RiskAssessment is the shell-company risk result for one business.
type RiskAssessment struct {
	Score int    `json:"score" yaml:"score"`
	Flags []Flag `json:"flags" yaml:"flags"`
	Level string `json:"level" yaml:"level"`
}

// Scorer combines network, address, temporal, and cross-program signals
// into composite, explainable risk scores. All weights and thresholds come
// from the config; the scorer itself holds no tunable literals.
type Scorer struct {
	cfg     ScoringConfig
	matcher Matcher
}

// NewScorer returns a scorer tuned by the given engine config.
func NewScorer(cfg Config) Scorer {
	return Scorer{
		cfg:     cfg.Scoring,
		matcher: NewMatcher(cfg.NameThreshold),
	}
}

// CrossProgramRisk scores an owner name against the three program
// datasets. Matches in a single program contribute weight times the capped
// match count; presence in two programs adds the multi-program bonus, in
// all three the all-programs bonus with a critical flag. An empty owner
// yields a zero result.
func (s Scorer) CrossProgramRisk(owner string, daycare []*Facility, healthcare, transport []*Provider) *CrossProgramAssessment {
	out := &CrossProgramAssessment{
		Owner:    owner,
		Programs: make([]ProgramPresence, 0),
		Flags:    make([]Flag, 0),
	}

	if NormalizeName(owner) == "" {
		return out
	}

	daycareCount := 0
	for _, f := range daycare {
		if f != nil && s.matcher.NamesMatch(owner, f.ownerKey()) {
			daycareCount++
		}
	}
	s.addProgram(out, ProgramDaycare, daycareCount)

	for program, providers := range map[string][]*Provider{
		ProgramHealthcare: healthcare,
		ProgramTransport:  transport,
	} {
		count := 0
		for _, p := range providers {
			if p != nil && s.matcher.NamesMatch(owner, p.ownerKey()) {
				count++
			}
		}
		s.addProgram(out, program, count)
	}

	// Map iteration above is unordered; keep program listing deterministic.
	sort.SliceStable(out.Programs, func(i, j int) bool {
		return out.Programs[i].Program < out.Programs[j].Program
	})

	switch len(out.Programs) {
	case 3:
		out.Score += s.cfg.AllProgramsBonus
		out.Flags = append(out.Flags, Flag{
			Type:     FlagAllPrograms,
			Severity: SeverityCritical,
			Message:  "owner appears in daycare, healthcare, and transport program datasets",
		})
	case 2:
		names := []string{out.Programs[0].Program, out.Programs[1].Program}
		out.Score += s.cfg.TwoProgramsBonus
		out.Flags = append(out.Flags, Flag{
			Type:     FlagMultiProgram,
			Severity: SeverityHigh,
			Message:  fmt.Sprintf("owner appears in %s and %s program datasets", names[0], names[1]),
		})
	}

	return out
}

func (s Scorer) addProgram(out *CrossProgramAssessment, program string, count int) {
	if count == 0 {
		return
	}

	capped := count
	if capped > s.cfg.ProgramCountCap {
		capped = s.cfg.ProgramCountCap
	}

	out.Programs = append(out.Programs, ProgramPresence{Program: program, Count: count})
	out.Score += s.cfg.ProgramWeights[program] * capped
}

// ShellCompanyRisk scores one business against previously built ownership
// networks and address clusters. A nil business, or one with no network or
// cluster hits and a filing outside the elevated period, scores zero.
func (s Scorer) ShellCompanyRisk(b *Business, networks []*OwnershipNetwork, clusters []*AddressCluster) *RiskAssessment {
	out := &RiskAssessment{
		Flags: make([]Flag, 0),
		Level: RiskLow,
	}
	if b == nil {
		return out
	}

	if n := findNetwork(networks, NormalizeName(b.PartyName)); n != nil {
		switch {
		case n.BusinessCount >= s.cfg.LargeNetworkSize:
			out.Score += s.cfg.LargeNetworkScore
			out.Flags = append(out.Flags, Flag{
				Type:     FlagLargeNetwork,
				Severity: SeverityHigh,
				Message:  fmt.Sprintf("registered agent %q is linked to %d businesses", n.Agent, n.BusinessCount),
			})
		case n.BusinessCount >= s.cfg.MediumNetworkSize:
			out.Score += s.cfg.MediumNetworkScore
			out.Flags = append(out.Flags, Flag{
				Type:     FlagMediumNetwork,
				Severity: SeverityMedium,
				Message:  fmt.Sprintf("registered agent %q is linked to %d businesses", n.Agent, n.BusinessCount),
			})
		}

		if n.AddressCount >= s.cfg.MultiAddressMin {
			out.Score += s.cfg.MultiAddressScore
			out.Flags = append(out.Flags, Flag{
				Type:     FlagMultiAddress,
				Severity: SeverityMedium,
				Message:  fmt.Sprintf("agent network spans %d distinct addresses", n.AddressCount),
			})
		}
	}

	if c := findCluster(clusters, NormalizeAddress(b.Address)); c != nil {
		if c.BusinessCount >= s.cfg.AddressClusterMin {
			out.Score += s.cfg.AddressClusterScore
			out.Flags = append(out.Flags, Flag{
				Type:     FlagAddressCluster,
				Severity: SeverityHigh,
				Message:  fmt.Sprintf("%d businesses registered at %q", c.BusinessCount, c.Address),
			})
		}
	}

	if date, err := parseFilingDate(b.FilingDate); err == nil {
		year := date.Year()
		if year >= s.cfg.ElevatedYearFrom && year <= s.cfg.ElevatedYearTo {
			out.Score += s.cfg.ElevatedYearScore
			out.Flags = append(out.Flags, Flag{
				Type:     FlagRecentFiling,
				Severity: SeverityMedium,
				Message:  fmt.Sprintf("filed in %d, within the elevated-risk period %d-%d", year, s.cfg.ElevatedYearFrom, s.cfg.ElevatedYearTo),
			})
		}
	}

	if isLLC(b.FilingType) {
		out.Score += s.cfg.LLCScore
	}

	out.Level = s.level(out.Score)
	return out
}

func (s Scorer) level(score int) string {
	switch {
	case score >= s.cfg.HighRiskMin:
		return RiskHigh
	case score >= s.cfg.MediumRiskMin:
		return RiskMedium
	default:
		return RiskLow
	}
}

func findNetwork(networks []*OwnershipNetwork, key string) *OwnershipNetwork {
	if len(key) < minGroupKeyLength {
		return nil
	}
	for _, n := range networks {
		if n != nil && n.Key == key {
			return n
		}
	}
	return nil
}

func findCluster(clusters []*AddressCluster, key string) *AddressCluster {
	if len(key) < minGroupKeyLength {
		return nil
	}
	for _, c := range clusters {
		if c != nil && c.Key == key {
			return c
		}
	}
	return nil
}

func isLLC(filingType string) bool {
	ft := strings.ToLower(filingType)
	return strings.Contains(ft, "llc") || strings.Contains(ft, "limited liability")
}
