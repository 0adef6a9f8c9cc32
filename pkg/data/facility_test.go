package data

import (
	"testing"

	"github.com/civicsignal/regwatch/pkg/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndListFacilities(t *testing.T) {
	db := setupTestDB(t)

	lat := 39.14
	lon := -77.2
	records := []*FacilityRecord{
		{
			Facility: entity.Facility{
				Name:          "Sunshine Daycare",
				LicenseHolder: "Jane Smith",
				Address:       "123 Main St",
				City:          "Rockville",
				LicenseNumber: "MD-0001",
				FacilityType:  "Child Care Center",
				Status:        "LICENSED",
			},
			Latitude:  &lat,
			Longitude: &lon,
		},
		{
			Facility: entity.Facility{
				Name:          "Little Stars",
				LicenseNumber: "MD-0002",
			},
		},
		nil,
		{Facility: entity.Facility{Name: ""}},
	}

	require.NoError(t, SaveFacilities(db, "MD", records))

	list, err := ListFacilities(db, "MD")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Sunshine Daycare", list[0].Name)
	assert.Equal(t, "Jane Smith", list[0].LicenseHolder)

	// State scoping excludes other imports.
	list, err = ListFacilities(db, "CA")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSaveFacilities_ReplacesState(t *testing.T) {
	db := setupTestDB(t)

	first := []*FacilityRecord{{Facility: entity.Facility{Name: "Old", LicenseNumber: "X-1"}}}
	require.NoError(t, SaveFacilities(db, "MN", first))

	second := []*FacilityRecord{{Facility: entity.Facility{Name: "New", LicenseNumber: "X-2"}}}
	require.NoError(t, SaveFacilities(db, "MN", second))

	list, err := ListFacilities(db, "MN")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "New", list[0].Name)
}

func TestGetFacilityByLicense(t *testing.T) {
	db := setupTestDB(t)

	records := []*FacilityRecord{
		{Facility: entity.Facility{Name: "Sunshine Daycare", LicenseNumber: "MD-0001"}},
	}
	require.NoError(t, SaveFacilities(db, "MD", records))

	v, err := GetFacilityByLicense(db, "MD-0001")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, "Sunshine Daycare", v.Name)

	v, err = GetFacilityByLicense(db, "MD-9999")
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = GetFacilityByLicense(db, "")
	assert.Error(t, err)
}

func TestUpdateFacilityLocation(t *testing.T) {
	db := setupTestDB(t)

	lat := 39.14
	lon := -77.2
	records := []*FacilityRecord{
		{
			Facility:  entity.Facility{Name: "Sunshine Daycare", Address: "123 Main St", LicenseNumber: "MD-0001"},
			Latitude:  &lat,
			Longitude: &lon,
		},
		{Facility: entity.Facility{Name: "Little Stars", Address: "55 Lake Dr", LicenseNumber: "MD-0002"}},
		{Facility: entity.Facility{Name: "No Address", LicenseNumber: "MD-0003"}},
	}
	require.NoError(t, SaveFacilities(db, "MD", records))

	// Only the facility with an address but no coordinates is pending.
	pending, err := ListUnlocatedFacilities(db, "MD")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "MD-0002", pending[0].LicenseNumber)

	require.NoError(t, UpdateFacilityLocation(db, "MD-0002", 44.97, -93.26))

	pending, err = ListUnlocatedFacilities(db, "MD")
	require.NoError(t, err)
	assert.Empty(t, pending)

	assert.Error(t, UpdateFacilityLocation(db, "", 0, 0))
}

func TestSaveFacilities_NilDB(t *testing.T) {
	assert.Error(t, SaveFacilities(nil, "MD", nil))
	assert.Error(t, UpdateFacilityLocation(nil, "X", 0, 0))

	_, err := ListUnlocatedFacilities(nil, "")
	assert.Error(t, err)
}
