package vaultcatalog

import (
	"context"
	"database/sql"
	"strings"

	"vaultflow/internal/application/dto"
	portsout "vaultflow/internal/application/ports/out"
	valueobjects "vaultflow/internal/domain/value_objects"
	apperrors "vaultflow/internal/shared_kernel/errors"
)

type ReadModel struct {
	db *sql.DB
}

var _ portsout.VaultCatalogReadModel = (*ReadModel)(nil)

func NewReadModel(db *sql.DB) *ReadModel {
	return &ReadModel{db: db}
}

func (r *ReadModel) ListEnabled(ctx context.Context) ([]dto.VaultEntry, *apperrors.AppError) {
	const query = `
SELECT
  chain_id,
  contract_address,
  name,
  symbol,
  decimals,
  logo_ref
FROM app.vault_catalog
WHERE enabled = TRUE
ORDER BY sort_order ASC, name ASC
`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.NewInternal(
			"vault_catalog_query_failed",
			"failed to query vault catalog",
			map[string]any{"error": err.Error()},
		)
	}
	defer rows.Close()

	vaults := make([]dto.VaultEntry, 0)
	for rows.Next() {
		var (
			entry   dto.VaultEntry
			logoRef sql.NullString
		)

		if scanErr := rows.Scan(
			&entry.ChainID,
			&entry.Address,
			&entry.Name,
			&entry.Symbol,
			&entry.Decimals,
			&logoRef,
		); scanErr != nil {
			return nil, apperrors.NewInternal(
				"vault_catalog_scan_failed",
				"failed to parse vault catalog row",
				map[string]any{"error": scanErr.Error()},
			)
		}

		normalized, appErr := valueobjects.NormalizeVaultContract(entry.Address)
		if appErr != nil {
			return nil, apperrors.NewInternal(
				"vault_catalog_contract_invalid",
				"vault catalog contract_address is invalid",
				map[string]any{"name": entry.Name, "chain_id": entry.ChainID},
			)
		}
		entry.Address = normalized
		entry.Symbol = strings.ToUpper(strings.TrimSpace(entry.Symbol))

		if logoRef.Valid {
			entry.LogoRef = strings.TrimSpace(logoRef.String)
		}

		vaults = append(vaults, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternal(
			"vault_catalog_rows_failed",
			"failed to iterate vault catalog rows",
			map[string]any{"error": err.Error()},
		)
	}

	return vaults, nil
}
