package static

import (
	"context"
	"encoding/json"
	"strings"

	"vaultflow/internal/application/dto"
	portsout "vaultflow/internal/application/ports/out"
	valueobjects "vaultflow/internal/domain/value_objects"
	apperrors "vaultflow/internal/shared_kernel/errors"
)

// ReadModel serves the vault catalog from a JSON document supplied through
// configuration. It backs devtest deployments and any deployment that does
// not want a database for a handful of vaults.
type ReadModel struct {
	vaults []dto.VaultEntry
}

var _ portsout.VaultCatalogReadModel = (*ReadModel)(nil)

func NewReadModel(catalogJSON string) (*ReadModel, *apperrors.AppError) {
	trimmed := strings.TrimSpace(catalogJSON)
	if trimmed == "" {
		return &ReadModel{vaults: DefaultVaults()}, nil
	}

	var entries []dto.VaultEntry
	if err := json.Unmarshal([]byte(trimmed), &entries); err != nil {
		return nil, apperrors.NewInvalidConfiguration(
			"vault_catalog_json_invalid",
			"vault catalog JSON could not be parsed",
			map[string]any{"error": err.Error()},
		)
	}

	normalized := make([]dto.VaultEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.ChainID <= 0 {
			return nil, apperrors.NewInvalidConfiguration(
				"vault_catalog_json_invalid",
				"vault catalog entry has non-positive chainId",
				map[string]any{"name": entry.Name},
			)
		}
		if strings.TrimSpace(entry.Name) == "" || strings.TrimSpace(entry.Symbol) == "" {
			return nil, apperrors.NewInvalidConfiguration(
				"vault_catalog_json_invalid",
				"vault catalog entry is missing name or symbol",
				map[string]any{"chain_id": entry.ChainID},
			)
		}

		address, appErr := valueobjects.NormalizeVaultContract(entry.Address)
		if appErr != nil {
			return nil, appErr
		}
		entry.Address = address
		entry.Symbol = strings.ToUpper(strings.TrimSpace(entry.Symbol))

		normalized = append(normalized, entry)
	}

	return &ReadModel{vaults: normalized}, nil
}

// DefaultVaults is the built-in devtest catalog used when no JSON override
// is configured.
func DefaultVaults() []dto.VaultEntry {
	return []dto.VaultEntry{
		{
			ChainID:  42161,
			Address:  "0x52969b21ff1b6b0bd858b14816f9a1865bcbb292",
			Name:     "Stable Yield Vault",
			Symbol:   "USDC",
			Decimals: 6,
		},
		{
			ChainID:  42161,
			Address:  "0x3e01dd8a5e1fb3481f0f589056b428fc308af0f3",
			Name:     "ETH Growth Vault",
			Symbol:   "WETH",
			Decimals: 18,
		},
	}
}

func (r *ReadModel) ListEnabled(_ context.Context) ([]dto.VaultEntry, *apperrors.AppError) {
	vaults := make([]dto.VaultEntry, len(r.vaults))
	copy(vaults, r.vaults)

	return vaults, nil
}
