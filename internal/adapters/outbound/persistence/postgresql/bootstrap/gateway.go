package bootstrap

import (
	"context"
	"database/sql"
	stderrors "errors"
	"log"
	"path/filepath"
	"strings"
	"time"

	portsout "vaultflow/internal/application/ports/out"
	valueobjects "vaultflow/internal/domain/value_objects"
	apperrors "vaultflow/internal/shared_kernel/errors"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	defaultReadinessTimeout       = 30 * time.Second
	defaultReadinessRetryInterval = 2 * time.Second

	maxVaultDecimals = 36
)

// Gateway brings the vault catalog database to a usable state on startup:
// wait for connectivity, apply migrations, then validate every enabled
// catalog row before the server accepts traffic.
type Gateway struct {
	databaseURL    string
	databaseTarget string
	migrationsPath string
	logger         *log.Logger
}

var _ portsout.PersistenceBootstrapGateway = (*Gateway)(nil)

func NewGateway(databaseURL string, databaseTarget string, migrationsPath string, logger *log.Logger) *Gateway {
	return &Gateway{
		databaseURL:    databaseURL,
		databaseTarget: databaseTarget,
		migrationsPath: migrationsPath,
		logger:         logger,
	}
}

func (g *Gateway) Initialize(ctx context.Context, input portsout.InitializePersistenceInput) *apperrors.AppError {
	if appErr := g.waitForReadiness(ctx, input); appErr != nil {
		return appErr
	}
	if appErr := g.runMigrations(ctx); appErr != nil {
		return appErr
	}

	return g.validateVaultCatalogIntegrity(ctx)
}

func (g *Gateway) waitForReadiness(ctx context.Context, input portsout.InitializePersistenceInput) *apperrors.AppError {
	timeout := input.ReadinessTimeout
	if timeout <= 0 {
		timeout = defaultReadinessTimeout
	}
	retryInterval := input.ReadinessRetryInterval
	if retryInterval <= 0 {
		retryInterval = defaultReadinessRetryInterval
	}

	deadline := time.Now().Add(timeout)
	for {
		appErr := g.checkReadiness(ctx)
		if appErr == nil {
			return nil
		}

		if time.Now().After(deadline) {
			g.logf("database readiness deadline exceeded target=%s", g.databaseTarget)
			return appErr
		}

		select {
		case <-ctx.Done():
			return apperrors.NewInternal(
				"db_readiness_context_canceled",
				"database readiness wait canceled",
				map[string]any{"database_target": g.databaseTarget},
			)
		case <-time.After(retryInterval):
		}
	}
}

func (g *Gateway) checkReadiness(ctx context.Context) *apperrors.AppError {
	db, err := sql.Open("pgx", g.databaseURL)
	if err != nil {
		g.logf("database connection initialization failed target=%s error=%v", g.databaseTarget, err)
		return apperrors.NewInternal(
			"db_connect_init_failed",
			"failed to initialize database connection",
			map[string]any{"database_target": g.databaseTarget},
		)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		g.logf("database readiness check failed target=%s error=%v", g.databaseTarget, err)
		return apperrors.NewInternal(
			"db_connect_failed",
			"failed to connect to database",
			map[string]any{"database_target": g.databaseTarget},
		)
	}

	g.logf("database readiness check succeeded target=%s", g.databaseTarget)
	return nil
}

func (g *Gateway) runMigrations(ctx context.Context) *apperrors.AppError {
	if err := ctx.Err(); err != nil {
		return apperrors.NewInternal(
			"db_migration_context_canceled",
			"migration context canceled",
			map[string]any{"database_target": g.databaseTarget},
		)
	}

	migrationsAbsPath, err := filepath.Abs(g.migrationsPath)
	if err != nil {
		return apperrors.NewInternal(
			"db_migration_path_resolve_failed",
			"failed to resolve migration path",
			map[string]any{"migrations_path": g.migrationsPath},
		)
	}

	sourceURL := "file://" + filepath.ToSlash(migrationsAbsPath)
	migrationRunner, err := migrate.New(sourceURL, g.databaseURL)
	if err != nil {
		return apperrors.NewInternal(
			"db_migration_setup_failed",
			"failed to initialize migration runner",
			map[string]any{
				"database_target": g.databaseTarget,
				"migrations_path": g.migrationsPath,
			},
		)
	}

	defer func() {
		sourceErr, dbErr := migrationRunner.Close()
		if sourceErr != nil {
			g.logf("migration source close warning path=%s error=%v", g.migrationsPath, sourceErr)
		}
		if dbErr != nil {
			g.logf("migration db close warning target=%s error=%v", g.databaseTarget, dbErr)
		}
	}()

	err = migrationRunner.Up()
	if err != nil && !stderrors.Is(err, migrate.ErrNoChange) {
		g.logf("database migrations failed target=%s error=%v", g.databaseTarget, err)
		return apperrors.NewInternal(
			"db_migration_apply_failed",
			"failed to apply migrations",
			map[string]any{
				"database_target": g.databaseTarget,
				"migrations_path": g.migrationsPath,
			},
		)
	}

	if stderrors.Is(err, migrate.ErrNoChange) {
		g.logf("database migrations up to date target=%s", g.databaseTarget)
	} else {
		g.logf("database migrations applied target=%s", g.databaseTarget)
	}

	return nil
}

func (g *Gateway) validateVaultCatalogIntegrity(ctx context.Context) *apperrors.AppError {
	db, err := sql.Open("pgx", g.databaseURL)
	if err != nil {
		return apperrors.NewInternal(
			"db_connect_init_failed",
			"failed to initialize database connection",
			map[string]any{"database_target": g.databaseTarget},
		)
	}
	defer db.Close()

	const query = `
SELECT
  chain_id,
  contract_address,
  name,
  symbol,
  decimals
FROM app.vault_catalog
WHERE enabled = TRUE
ORDER BY sort_order, name
`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return apperrors.NewInternal(
			"invalid_configuration",
			"failed to query enabled vault catalog rows during startup validation",
			map[string]any{"error": err.Error()},
		)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			chainID         int64
			contractAddress string
			name            string
			symbol          string
			decimals        int
		)
		if err := rows.Scan(&chainID, &contractAddress, &name, &symbol, &decimals); err != nil {
			return apperrors.NewInternal(
				"invalid_configuration",
				"failed to parse startup validation row",
				map[string]any{"error": err.Error()},
			)
		}

		if appErr := validateCatalogRow(chainID, contractAddress, name, symbol, decimals); appErr != nil {
			return appErr
		}
	}

	if err := rows.Err(); err != nil {
		return apperrors.NewInternal(
			"invalid_configuration",
			"failed while iterating startup validation rows",
			map[string]any{"error": err.Error()},
		)
	}

	g.logf("vault catalog startup validation passed")
	return nil
}

func validateCatalogRow(chainID int64, contractAddress string, name string, symbol string, decimals int) *apperrors.AppError {
	details := map[string]any{
		"chain_id": chainID,
		"name":     name,
	}

	if chainID <= 0 {
		return apperrors.NewInternal(
			"invalid_configuration",
			"enabled vault catalog row has non-positive chain_id",
			details,
		)
	}
	if strings.TrimSpace(name) == "" {
		return apperrors.NewInternal(
			"invalid_configuration",
			"enabled vault catalog row is missing a name",
			details,
		)
	}
	if strings.TrimSpace(symbol) == "" {
		return apperrors.NewInternal(
			"invalid_configuration",
			"enabled vault catalog row is missing a symbol",
			details,
		)
	}
	if decimals < 0 || decimals > maxVaultDecimals {
		details["decimals"] = decimals
		return apperrors.NewInternal(
			"invalid_configuration",
			"enabled vault catalog row has decimals out of allowed range",
			details,
		)
	}
	if _, appErr := valueobjects.NormalizeVaultContract(contractAddress); appErr != nil {
		return apperrors.NewInternal(
			"invalid_configuration",
			"enabled vault catalog row has an invalid contract_address",
			details,
		)
	}

	return nil
}

func (g *Gateway) logf(format string, args ...any) {
	if g.logger == nil {
		return
	}
	g.logger.Printf(format, args...)
}
