package data

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/civicsignal/regwatch/pkg/entity"
)

const (
	insertBusinessSQL = `INSERT INTO business
		(state, name, owner, party_name, party_type, address, city, file_number, filing_date, filing_type, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	selectBusinessesSQL = `SELECT name, owner, party_name, party_type, address, city, file_number, filing_date, filing_type, status
		FROM business
		WHERE state = COALESCE(NULLIF(?, ''), state)
		ORDER BY id
	`

	selectBusinessByFileSQL = `SELECT name, owner, party_name, party_type, address, city, file_number, filing_date, filing_type, status
		FROM business
		WHERE file_number = ?
	`

	selectBusinessesByAgentSQL = `SELECT name, owner, party_name, party_type, address, city, file_number, filing_date, filing_type, status
		FROM business
		WHERE party_name LIKE ?
		ORDER BY id
		LIMIT ?
	`

	deleteBusinessesByStateSQL = `DELETE FROM business WHERE state = ?`
)

// SaveBusinesses replaces the stored business filings for a state in one
// transaction.
func SaveBusinesses(db *sql.DB, state string, records []*entity.Business) error {
	if db == nil {
		return errDBNotInitialized
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin business tx: %w", err)
	}

	if _, err = tx.Exec(deleteBusinessesByStateSQL, state); err != nil {
		rollbackTransaction(tx)
		return fmt.Errorf("failed to clear businesses for %s: %w", state, err)
	}

	stmt, err := tx.Prepare(insertBusinessSQL)
	if err != nil {
		rollbackTransaction(tx)
		return fmt.Errorf("failed to prepare business insert: %w", err)
	}

	for _, r := range records {
		if r == nil || r.Name == "" {
			continue
		}
		if _, err = stmt.Exec(state, r.Name, r.Owner, r.PartyName, r.PartyType,
			r.Address, r.City, r.FileNumber, r.FilingDate, r.FilingType, r.Status); err != nil {
			rollbackTransaction(tx)
			return fmt.Errorf("failed to insert business %s: %w", r.Name, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit business tx: %w", err)
	}

	return nil
}

// ListBusinesses returns stored business filings, optionally scoped to a
// state.
func ListBusinesses(db *sql.DB, state string) ([]*entity.Business, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	rows, err := db.Query(selectBusinessesSQL, state)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to query businesses: %w", err)
	}
	defer rows.Close()

	return scanBusinesses(rows)
}

// GetBusinessByFileNumber returns the filing with the given file number,
// or nil when none is stored.
func GetBusinessByFileNumber(db *sql.DB, fileNumber string) (*entity.Business, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}
	if fileNumber == "" {
		return nil, errors.New("fileNumber is required")
	}

	var v entity.Business
	err := db.QueryRow(selectBusinessByFileSQL, fileNumber).Scan(&v.Name, &v.Owner,
		&v.PartyName, &v.PartyType, &v.Address, &v.City, &v.FileNumber,
		&v.FilingDate, &v.FilingType, &v.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query business %s: %w", fileNumber, err)
	}

	return &v, nil
}

// ListBusinessesByAgent returns filings whose party name matches the given
// pattern.
func ListBusinessesByAgent(db *sql.DB, agent string, limit int) ([]*entity.Business, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}
	if agent == "" {
		return nil, errors.New("agent is required")
	}

	rows, err := db.Query(selectBusinessesByAgentSQL, fmt.Sprintf("%%%s%%", agent), limit)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to query businesses by agent: %w", err)
	}
	defer rows.Close()

	return scanBusinesses(rows)
}

func scanBusinesses(rows *sql.Rows) ([]*entity.Business, error) {
	list := make([]*entity.Business, 0)
	for rows.Next() {
		var v entity.Business
		if err := rows.Scan(&v.Name, &v.Owner, &v.PartyName, &v.PartyType,
			&v.Address, &v.City, &v.FileNumber, &v.FilingDate, &v.FilingType, &v.Status); err != nil {
			return nil, fmt.Errorf("failed to scan business row: %w", err)
		}
		list = append(list, &v)
	}
	return list, nil
}
