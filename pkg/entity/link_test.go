package entity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLinker() Linker {
	return NewLinker(NewMatcher(NameThresholdDefault))
}

func TestFindLinkedBusinesses(t *testing.T) {
	l := testLinker()

	facility := &Facility{
		Name:          "Sunshine Daycare",
		LicenseHolder: "Jane Smith",
		Address:       "123 Main St, Suite 4",
		City:          "Springfield",
	}

	businesses := []*Business{
		{
			// Owner name, agent, and address all hit: confidence 1.
			Name:      "Jane Smith",
			PartyName: "Jane Smith",
			Address:   "123 Main Street",
		},
		{
			// Address only: confidence 1/3.
			Name:    "Quick Cuts Barber Shop",
			Address: "123 Main Street",
		},
		{
			// No signals.
			Name:    "Oak Transport Group",
			Address: "900 Industrial Pkwy",
		},
	}

	matches := l.FindLinkedBusinesses(facility, businesses)
	require.Len(t, matches, 2)

	assert.Equal(t, "Jane Smith", matches[0].Business.Name)
	assert.Equal(t, 1.0, matches[0].Confidence)
	assert.ElementsMatch(t, []string{MatchOwnerName, MatchPartyName, MatchAddress}, matches[0].MatchTypes)

	assert.Equal(t, "Quick Cuts Barber Shop", matches[1].Business.Name)
	assert.InDelta(t, 1.0/3.0, matches[1].Confidence, 1e-9)
	assert.Equal(t, []string{MatchAddress}, matches[1].MatchTypes)
}

func TestFindLinkedBusinesses_Empty(t *testing.T) {
	l := testLinker()

	assert.Empty(t, l.FindLinkedBusinesses(nil, []*Business{{Name: "Acme"}}))
	assert.Empty(t, l.FindLinkedBusinesses(&Facility{Name: "Acme"}, nil))

	// A facility with no owner or address produces no signals at all.
	matches := l.FindLinkedBusinesses(&Facility{Name: "Acme"}, []*Business{
		{Name: "Acme", Address: "1 Elm St"},
	})
	assert.Empty(t, matches)
}

func TestFindLinkedBusinesses_SortedByConfidence(t *testing.T) {
	l := testLinker()

	facility := &Facility{
		LicenseHolder: "Maria Lopez",
		Address:       "44 Cedar Ln",
	}

	businesses := []*Business{
		{Name: "Cedar Holdings", Address: "44 Cedar Lane"},
		{Name: "Maria Lopez", PartyName: "Maria Lopez", Address: "44 Cedar Lane"},
		{Name: "Maria Lopez", Address: "9 Pine St"},
	}

	matches := l.FindLinkedBusinesses(facility, businesses)
	require.Len(t, matches, 3)

	for i := 1; i < len(matches); i++ {
		assert.GreaterOrEqual(t, matches[i-1].Confidence, matches[i].Confidence)
	}
	for _, m := range matches {
		assert.Contains(t, []float64{1.0 / 3.0, 2.0 / 3.0, 1.0}, m.Confidence)
	}
}

func TestFindLinkedFacilities(t *testing.T) {
	l := testLinker()

	business := &Business{
		Name:      "Jane Smith Child Care LLC",
		PartyName: "Robert King",
		Address:   "77 Birch Rd",
	}

	facilities := []*Facility{
		{
			Name:          "Little Stars",
			LicenseHolder: "Jane Smith Child Care",
			Address:       "12 Elm St",
		},
		{
			Name:          "King Family Daycare",
			LicenseHolder: "Robert King",
			Address:       "77 Birch Road",
		},
		{
			Name:    "Unrelated Facility",
			Address: "500 Lake Dr",
		},
	}

	matches := l.FindLinkedFacilities(business, facilities)
	require.Len(t, matches, 2)

	// Agent plus address beats owner-name alone.
	assert.Equal(t, "King Family Daycare", matches[0].Facility.Name)
	assert.ElementsMatch(t, []string{MatchParty, MatchAddressAlike}, matches[0].MatchTypes)
	assert.InDelta(t, 2.0/3.0, matches[0].Confidence, 1e-9)

	assert.Equal(t, "Little Stars", matches[1].Facility.Name)
	assert.Equal(t, []string{MatchOwner}, matches[1].MatchTypes)
}

func TestFindLinkedFacilities_NilBusiness(t *testing.T) {
	l := testLinker()
	assert.Empty(t, l.FindLinkedFacilities(nil, []*Facility{{Name: "Acme"}}))
}

func TestLinkAllFacilities(t *testing.T) {
	l := testLinker()

	facilities := []*Facility{
		{Name: "A", LicenseHolder: "Jane Smith", Address: "1 Elm St"},
		{Name: "B", LicenseHolder: "Nobody Here", Address: "999 Nowhere Blvd"},
		{Name: "C", Address: "7 Oak Ave"},
	}
	businesses := []*Business{
		{Name: "Jane Smith", Address: "1 Elm Street"},
		{Name: "Oak Ave Ventures", Address: "7 Oak Avenue"},
	}

	linked, err := l.LinkAllFacilities(context.Background(), facilities, businesses, 4)
	require.NoError(t, err)
	require.Len(t, linked, 2)

	// Facility order is preserved; the facility with no matches is dropped.
	assert.Equal(t, "A", linked[0].Facility.Name)
	assert.Equal(t, "C", linked[1].Facility.Name)
	assert.NotEmpty(t, linked[0].Matches)
}

func TestLinkAllBusinesses(t *testing.T) {
	l := testLinker()

	businesses := []*Business{
		{Name: "Jane Smith", FileNumber: "W-1", Address: "1 Elm Street"},
		{Name: "Unrelated Corp", FileNumber: "W-2", Address: "999 Nowhere Blvd"},
	}
	facilities := []*Facility{
		{Name: "A", LicenseHolder: "Jane Smith", Address: "1 Elm St"},
	}

	linked, err := l.LinkAllBusinesses(context.Background(), businesses, facilities, 2)
	require.NoError(t, err)
	require.Len(t, linked, 1)
	assert.Equal(t, "W-1", linked[0].Business.FileNumber)
	assert.NotEmpty(t, linked[0].Matches)
}

func TestLinkAllFacilities_Canceled(t *testing.T) {
	l := testLinker()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := l.LinkAllFacilities(ctx, []*Facility{{Name: "A"}}, nil, 2)
	assert.Error(t, err)
}
