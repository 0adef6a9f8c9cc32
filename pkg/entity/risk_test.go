package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testScorer() Scorer {
	return NewScorer(DefaultConfig())
}

func flagTypes(flags []Flag) []string {
	types := make([]string, 0, len(flags))
	for _, f := range flags {
		types = append(types, f.Type)
	}
	return types
}

func TestCrossProgramRisk_AllThreePrograms(t *testing.T) {
	s := testScorer()

	daycare := []*Facility{{Name: "Sunshine Daycare", LicenseHolder: "Jane Smith"}}
	healthcare := []*Provider{{Name: "Smith Home Health", Owner: "Jane Smith"}}
	transport := []*Provider{{Name: "Smith Medical Transport", Owner: "Jane Smith"}}

	a := s.CrossProgramRisk("Jane Smith", daycare, healthcare, transport)

	require.Len(t, a.Programs, 3)
	assert.Contains(t, flagTypes(a.Flags), FlagAllPrograms)
	assert.GreaterOrEqual(t, a.Score, 50)
	// 10 + 15 + 15 single-match contributions plus the 50 bonus.
	assert.Equal(t, 90, a.Score)

	for _, f := range a.Flags {
		if f.Type == FlagAllPrograms {
			assert.Equal(t, SeverityCritical, f.Severity)
		}
	}
}

func TestCrossProgramRisk_TwoPrograms(t *testing.T) {
	s := testScorer()

	daycare := []*Facility{{LicenseHolder: "Jane Smith"}}
	transport := []*Provider{{Owner: "Jane Smith"}}

	a := s.CrossProgramRisk("Jane Smith", daycare, nil, transport)

	require.Len(t, a.Programs, 2)
	assert.Contains(t, flagTypes(a.Flags), FlagMultiProgram)
	assert.NotContains(t, flagTypes(a.Flags), FlagAllPrograms)
	// 10 + 15 contributions plus the 30 two-program bonus.
	assert.Equal(t, 55, a.Score)
}

func TestCrossProgramRisk_SingleProgramNoBonus(t *testing.T) {
	s := testScorer()

	daycare := []*Facility{
		{LicenseHolder: "Jane Smith"},
		{LicenseHolder: "Jane Smith"},
	}

	a := s.CrossProgramRisk("Jane Smith", daycare, nil, nil)

	require.Len(t, a.Programs, 1)
	assert.Empty(t, a.Flags)
	assert.Equal(t, 20, a.Score)
}

func TestCrossProgramRisk_CountCapped(t *testing.T) {
	s := testScorer()

	daycare := make([]*Facility, 0, 8)
	for i := 0; i < 8; i++ {
		daycare = append(daycare, &Facility{LicenseHolder: "Jane Smith"})
	}

	a := s.CrossProgramRisk("Jane Smith", daycare, nil, nil)

	require.Len(t, a.Programs, 1)
	assert.Equal(t, 8, a.Programs[0].Count)
	// Contribution capped at 5 matches: 10 * 5.
	assert.Equal(t, 50, a.Score)
}

func TestCrossProgramRisk_EmptyOwner(t *testing.T) {
	s := testScorer()

	a := s.CrossProgramRisk("", []*Facility{{LicenseHolder: "Jane Smith"}}, nil, nil)
	assert.Zero(t, a.Score)
	assert.Empty(t, a.Programs)
	assert.Empty(t, a.Flags)
}

func TestCrossProgramRisk_MatchesFacilityNameWhenHolderMissing(t *testing.T) {
	s := testScorer()

	daycare := []*Facility{{Name: "Jane Smith"}}
	a := s.CrossProgramRisk("Jane Smith LLC", daycare, nil, nil)
	require.Len(t, a.Programs, 1)
}

func TestShellCompanyRisk_NoSignals(t *testing.T) {
	s := testScorer()

	b := &Business{
		Name:       "Quiet Ventures",
		PartyName:  "Unknown Agent",
		Address:    "1 Solo St",
		FilingDate: "2015-06-01",
		FilingType: "Corporation",
	}

	a := s.ShellCompanyRisk(b, nil, nil)
	assert.Zero(t, a.Score)
	assert.Equal(t, RiskLow, a.Level)
	assert.Empty(t, a.Flags)
}

func TestShellCompanyRisk_NilBusiness(t *testing.T) {
	s := testScorer()

	a := s.ShellCompanyRisk(nil, nil, nil)
	assert.Zero(t, a.Score)
	assert.Equal(t, RiskLow, a.Level)
}

func TestShellCompanyRisk_LargeNetwork(t *testing.T) {
	s := testScorer()

	members := make([]BusinessSummary, 10)
	networks := []*OwnershipNetwork{{
		Agent:         "John Doe",
		Key:           "john doe",
		Businesses:    members,
		BusinessCount: 10,
		Addresses:     []string{"1 Elm St", "2 Oak Ave", "3 Pine Rd"},
		AddressCount:  3,
	}}

	b := &Business{
		Name:       "Shell One LLC",
		PartyName:  "John Doe",
		FilingDate: "2015-01-01",
	}

	a := s.ShellCompanyRisk(b, networks, nil)

	// 40 for the large network plus 15 for the multi-address spread.
	assert.Equal(t, 55, a.Score)
	assert.Equal(t, RiskHigh, a.Level)
	assert.ElementsMatch(t, []string{FlagLargeNetwork, FlagMultiAddress}, flagTypes(a.Flags))
}

func TestShellCompanyRisk_MediumNetworkBoundary(t *testing.T) {
	s := testScorer()

	networks := []*OwnershipNetwork{{
		Key:           "john doe",
		Agent:         "John Doe",
		BusinessCount: 5,
		AddressCount:  1,
	}}

	b := &Business{PartyName: "John Doe", FilingDate: "2015-01-01"}
	a := s.ShellCompanyRisk(b, networks, nil)

	// Exactly 25: the medium boundary is inclusive.
	assert.Equal(t, 25, a.Score)
	assert.Equal(t, RiskMedium, a.Level)
}

func TestShellCompanyRisk_HighBoundaryInclusive(t *testing.T) {
	s := testScorer()

	networks := []*OwnershipNetwork{{
		Key:           "john doe",
		Agent:         "John Doe",
		BusinessCount: 5,
		AddressCount:  1,
	}}
	b := &Business{
		PartyName:  "John Doe",
		FilingDate: "2021-03-01",
		FilingType: "Domestic LLC",
	}

	// 25 (medium network) + 15 (elevated period) + 5 (LLC) = 45: still medium.
	a := s.ShellCompanyRisk(b, networks, nil)
	assert.Equal(t, 45, a.Score)
	assert.Equal(t, RiskMedium, a.Level)

	clusters := []*AddressCluster{{
		Key:           "77 hub",
		Address:       "77 Hub Blvd",
		BusinessCount: 5,
	}}
	b.Address = "77 Hub Blvd"

	a = s.ShellCompanyRisk(b, networks, clusters)
	assert.Equal(t, 75, a.Score)
	assert.Equal(t, RiskHigh, a.Level)
}

func TestShellCompanyRisk_AddressCluster(t *testing.T) {
	s := testScorer()

	clusters := []*AddressCluster{{
		Key:           "123 main",
		Address:       "123 Main St",
		BusinessCount: 6,
	}}

	b := &Business{Name: "Tenant Corp", Address: "123 Main Street", FilingDate: "2015-01-01"}
	a := s.ShellCompanyRisk(b, nil, clusters)

	assert.Equal(t, 30, a.Score)
	assert.Contains(t, flagTypes(a.Flags), FlagAddressCluster)
}

func TestShellCompanyRisk_ElevatedYearConfigurable(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Scoring.ElevatedYearFrom = 2010
	cfg.Scoring.ElevatedYearTo = 2012
	s := NewScorer(cfg)

	b := &Business{Name: "Oldie LLC", FilingDate: "2011-05-01", FilingType: "Corporation"}
	a := s.ShellCompanyRisk(b, nil, nil)
	assert.Equal(t, 15, a.Score)
	assert.Contains(t, flagTypes(a.Flags), FlagRecentFiling)

	b.FilingDate = "2021-05-01"
	a = s.ShellCompanyRisk(b, nil, nil)
	assert.Zero(t, a.Score)
}

func TestShellCompanyRisk_LLCScoresWithoutFlag(t *testing.T) {
	s := testScorer()

	b := &Business{Name: "Tiny LLC", FilingType: "Domestic LLC", FilingDate: "2015-01-01"}
	a := s.ShellCompanyRisk(b, nil, nil)

	assert.Equal(t, 5, a.Score)
	assert.Empty(t, a.Flags)
	assert.Equal(t, RiskLow, a.Level)
}
