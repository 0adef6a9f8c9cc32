package data

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/civicsignal/regwatch/pkg/entity"
)

const (
	insertProviderSQL = `INSERT INTO provider
		(state, name, owner, address, city, program_type, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	selectProvidersSQL = `SELECT name, owner, address, city, program_type, status
		FROM provider
		WHERE state = COALESCE(NULLIF(?, ''), state)
		  AND program_type = COALESCE(NULLIF(?, ''), program_type)
		ORDER BY id
	`

	deleteProvidersByStateProgramSQL = `DELETE FROM provider WHERE state = ? AND program_type = ?`
)

// SaveProviders replaces the stored roster for one state and program type
// (e.g. healthcare, transport) in one transaction.
func SaveProviders(db *sql.DB, state, programType string, records []*entity.Provider) error {
	if db == nil {
		return errDBNotInitialized
	}
	if programType == "" {
		return errors.New("programType is required")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin provider tx: %w", err)
	}

	if _, err = tx.Exec(deleteProvidersByStateProgramSQL, state, programType); err != nil {
		rollbackTransaction(tx)
		return fmt.Errorf("failed to clear %s providers for %s: %w", programType, state, err)
	}

	stmt, err := tx.Prepare(insertProviderSQL)
	if err != nil {
		rollbackTransaction(tx)
		return fmt.Errorf("failed to prepare provider insert: %w", err)
	}

	for _, r := range records {
		if r == nil || r.Name == "" {
			continue
		}
		if _, err = stmt.Exec(state, r.Name, r.Owner, r.Address, r.City,
			programType, r.Status); err != nil {
			rollbackTransaction(tx)
			return fmt.Errorf("failed to insert provider %s: %w", r.Name, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit provider tx: %w", err)
	}

	return nil
}

// ListProviders returns stored providers, optionally scoped to a state
// and/or program type.
func ListProviders(db *sql.DB, state, programType string) ([]*entity.Provider, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	rows, err := db.Query(selectProvidersSQL, state, programType)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to query providers: %w", err)
	}
	defer rows.Close()

	list := make([]*entity.Provider, 0)
	for rows.Next() {
		var v entity.Provider
		if err := rows.Scan(&v.Name, &v.Owner, &v.Address, &v.City,
			&v.ProgramType, &v.Status); err != nil {
			return nil, fmt.Errorf("failed to scan provider row: %w", err)
		}
		list = append(list, &v)
	}

	return list, nil
}
