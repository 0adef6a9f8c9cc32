package data

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/civicsignal/regwatch/pkg/entity"
)

const (
	insertFacilitySQL = `INSERT INTO facility
		(state, name, license_holder, address, city, license_number, facility_type, status, latitude, longitude)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	selectFacilitiesSQL = `SELECT name, license_holder, address, city, license_number, facility_type, status
		FROM facility
		WHERE state = COALESCE(NULLIF(?, ''), state)
		ORDER BY id
	`

	selectFacilityByLicenseSQL = `SELECT name, license_holder, address, city, license_number, facility_type, status
		FROM facility
		WHERE license_number = ?
	`

	selectUnlocatedFacilitiesSQL = `SELECT license_number, address, city
		FROM facility
		WHERE state = COALESCE(NULLIF(?, ''), state)
		AND latitude IS NULL
		AND license_number != ''
		AND address != ''
		ORDER BY id
	`

	updateFacilityLocationSQL = `UPDATE facility SET latitude = ?, longitude = ?
		WHERE license_number = ?
	`

	deleteFacilitiesByStateSQL = `DELETE FROM facility WHERE state = ?`
)

// UnlocatedFacility identifies a stored facility awaiting geocoding.
type UnlocatedFacility struct {
	LicenseNumber string `json:"license_number" yaml:"license_number"`
	Address       string `json:"address" yaml:"address"`
	City          string `json:"city" yaml:"city"`
}

// FacilityRecord is a facility row as imported, with optional coordinates
// supplied by an external geocoding step.
type FacilityRecord struct {
	entity.Facility `yaml:",inline"`
	Latitude        *float64 `json:"latitude,omitempty" yaml:"latitude,omitempty"`
	Longitude       *float64 `json:"longitude,omitempty" yaml:"longitude,omitempty"`
}

// SaveFacilities replaces the stored facilities for a state in one
// transaction.
func SaveFacilities(db *sql.DB, state string, records []*FacilityRecord) error {
	if db == nil {
		return errDBNotInitialized
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin facility tx: %w", err)
	}

	if _, err = tx.Exec(deleteFacilitiesByStateSQL, state); err != nil {
		rollbackTransaction(tx)
		return fmt.Errorf("failed to clear facilities for %s: %w", state, err)
	}

	stmt, err := tx.Prepare(insertFacilitySQL)
	if err != nil {
		rollbackTransaction(tx)
		return fmt.Errorf("failed to prepare facility insert: %w", err)
	}

	for _, r := range records {
		if r == nil || r.Name == "" {
			continue
		}
		if _, err = stmt.Exec(state, r.Name, r.LicenseHolder, r.Address, r.City,
			r.LicenseNumber, r.FacilityType, r.Status, r.Latitude, r.Longitude); err != nil {
			rollbackTransaction(tx)
			return fmt.Errorf("failed to insert facility %s: %w", r.Name, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit facility tx: %w", err)
	}

	return nil
}

// ListFacilities returns stored facilities, optionally scoped to a state.
func ListFacilities(db *sql.DB, state string) ([]*entity.Facility, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	rows, err := db.Query(selectFacilitiesSQL, state)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to query facilities: %w", err)
	}
	defer rows.Close()

	list := make([]*entity.Facility, 0)
	for rows.Next() {
		var v entity.Facility
		if err := rows.Scan(&v.Name, &v.LicenseHolder, &v.Address, &v.City,
			&v.LicenseNumber, &v.FacilityType, &v.Status); err != nil {
			return nil, fmt.Errorf("failed to scan facility row: %w", err)
		}
		list = append(list, &v)
	}

	return list, nil
}

// ListUnlocatedFacilities returns facilities that have an address but no
// stored coordinates, optionally scoped to a state.
func ListUnlocatedFacilities(db *sql.DB, state string) ([]*UnlocatedFacility, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	rows, err := db.Query(selectUnlocatedFacilitiesSQL, state)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to query unlocated facilities: %w", err)
	}
	defer rows.Close()

	list := make([]*UnlocatedFacility, 0)
	for rows.Next() {
		var v UnlocatedFacility
		if err := rows.Scan(&v.LicenseNumber, &v.Address, &v.City); err != nil {
			return nil, fmt.Errorf("failed to scan unlocated facility row: %w", err)
		}
		list = append(list, &v)
	}

	return list, nil
}

// UpdateFacilityLocation stores geocoded coordinates for a facility.
func UpdateFacilityLocation(db *sql.DB, licenseNumber string, lat, lng float64) error {
	if db == nil {
		return errDBNotInitialized
	}
	if licenseNumber == "" {
		return errors.New("licenseNumber is required")
	}

	if _, err := db.Exec(updateFacilityLocationSQL, lat, lng, licenseNumber); err != nil {
		return fmt.Errorf("failed to update facility location %s: %w", licenseNumber, err)
	}

	return nil
}

// GetFacilityByLicense returns the facility with the given license number,
// or nil when none is stored.
func GetFacilityByLicense(db *sql.DB, licenseNumber string) (*entity.Facility, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}
	if licenseNumber == "" {
		return nil, errors.New("licenseNumber is required")
	}

	var v entity.Facility
	err := db.QueryRow(selectFacilityByLicenseSQL, licenseNumber).Scan(&v.Name,
		&v.LicenseHolder, &v.Address, &v.City, &v.LicenseNumber, &v.FacilityType, &v.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query facility %s: %w", licenseNumber, err)
	}

	return &v, nil
}
