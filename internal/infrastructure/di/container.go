package di

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"sync"

	"vaultflow/internal/adapters/inbound/http/controllers"
	httpRouter "vaultflow/internal/adapters/inbound/http/router"
	"vaultflow/internal/adapters/inbound/http/statecodec"
	chainsubmitdevtest "vaultflow/internal/adapters/outbound/chainsubmit/devtest"
	chainsubmithttp "vaultflow/internal/adapters/outbound/chainsubmit/http"
	"vaultflow/internal/adapters/outbound/docs"
	identitydevtest "vaultflow/internal/adapters/outbound/identity/devtest"
	identityhttp "vaultflow/internal/adapters/outbound/identity/http"
	paymentgatewaydevtest "vaultflow/internal/adapters/outbound/paymentgateway/devtest"
	paymentgatewayhttp "vaultflow/internal/adapters/outbound/paymentgateway/http"
	postgresqlbootstrap "vaultflow/internal/adapters/outbound/persistence/postgresql/bootstrap"
	postgresqlshared "vaultflow/internal/adapters/outbound/persistence/postgresql/shared"
	postgresqlvaultcatalog "vaultflow/internal/adapters/outbound/persistence/postgresql/vaultcatalog"
	staticvaultcatalog "vaultflow/internal/adapters/outbound/vaultcatalog/static"
	portsin "vaultflow/internal/application/ports/in"
	portsout "vaultflow/internal/application/ports/out"
	"vaultflow/internal/application/use_cases"
	valueobjects "vaultflow/internal/domain/value_objects"
	"vaultflow/internal/infrastructure/config"
	"vaultflow/internal/infrastructure/httpserver"
)

type Container struct {
	Database                     *sql.DB
	Server                       *httpserver.Server
	InitializePersistenceUseCase portsin.InitializePersistenceUseCase
}

// GatewaySet is the trio of external collaborators behind the flow: the
// payment gateway, the identity resolver, and the chain submission service.
// A mode swaps all three together so devtest never mixes with live services.
type GatewaySet struct {
	PaymentGateway   portsout.PaymentGateway
	IdentityResolver portsout.IdentityResolver
	ChainSubmission  portsout.ChainSubmissionGateway
}

type GatewaySetBuilder func(cfg config.Config, logger *log.Logger) GatewaySet

var gatewaySetBuilders = map[string]GatewaySetBuilder{
	"devtest": func(cfg config.Config, logger *log.Logger) GatewaySet {
		return GatewaySet{
			PaymentGateway: paymentgatewaydevtest.NewGateway(paymentgatewaydevtest.Config{
				Options: paymentgatewaydevtest.DefaultOptions(),
			}, logger),
			IdentityResolver: identitydevtest.NewGateway([]string{cfg.DefaultUserAddress}),
			ChainSubmission:  chainsubmitdevtest.NewGateway(logger),
		}
	},
	"http": func(cfg config.Config, _ *log.Logger) GatewaySet {
		return GatewaySet{
			PaymentGateway: paymentgatewayhttp.NewGateway(paymentgatewayhttp.Config{
				BaseURL:   cfg.PaymentGatewayBaseURL,
				ProjectID: cfg.PaymentGatewayProjectID,
			}),
			IdentityResolver: identityhttp.NewGateway(identityhttp.Config{
				BaseURL: cfg.IdentityResolverBaseURL,
			}),
			ChainSubmission: chainsubmithttp.NewGateway(chainsubmithttp.Config{
				BaseURL: cfg.ChainSubmissionBaseURL,
			}),
		}
	},
}

var gatewaySetBuildersMu sync.RWMutex

func RegisterGatewaySetBuilder(mode string, builder GatewaySetBuilder) {
	normalizedMode := strings.ToLower(strings.TrimSpace(mode))
	if normalizedMode == "" || builder == nil {
		return
	}

	gatewaySetBuildersMu.Lock()
	defer gatewaySetBuildersMu.Unlock()
	gatewaySetBuilders[normalizedMode] = builder
}

func Build(cfg config.Config, logger *log.Logger) (Container, error) {
	gateways, buildErr := buildGatewaySet(cfg, logger)
	if buildErr != nil {
		return Container{}, buildErr
	}

	container := Container{}

	var vaultCatalog portsout.VaultCatalogReadModel
	switch cfg.VaultCatalogMode {
	case "static":
		readModel, appErr := staticvaultcatalog.NewReadModel(cfg.VaultCatalogJSON)
		if appErr != nil {
			return Container{}, fmt.Errorf("static vault catalog: %s", appErr.Message)
		}
		vaultCatalog = readModel
	case "postgres":
		persistenceGateway := postgresqlbootstrap.NewGateway(
			cfg.DatabaseURL,
			cfg.DatabaseTarget,
			cfg.MigrationsPath,
			logger,
		)
		container.InitializePersistenceUseCase = use_cases.NewInitializePersistenceUseCase(persistenceGateway)
		container.Database = postgresqlshared.NewDatabasePool(cfg.DatabaseURL, logger)
		vaultCatalog = postgresqlvaultcatalog.NewReadModel(container.Database)
	default:
		return Container{}, fmt.Errorf("unsupported vault catalog mode: %s", cfg.VaultCatalogMode)
	}

	healthUseCase := use_cases.NewGetHealthUseCase()
	openAPIReadModel := docs.NewFileOpenAPISpecReadModel(cfg.OpenAPISpecPath)
	openAPIUseCase := use_cases.NewGetOpenAPISpecUseCase(openAPIReadModel)

	optionCache := use_cases.NewOptionCache(gateways.PaymentGateway, cfg.SourceChainAllowLists, logger)
	poller := use_cases.NewSessionPoller(gateways.PaymentGateway, logger)
	formatter := use_cases.NewAmountFormatter(use_cases.AmountFormatterConfig{})

	advanceFlowUseCase := use_cases.NewAdvanceFlowUseCase(
		vaultCatalog,
		gateways.IdentityResolver,
		gateways.PaymentGateway,
		optionCache,
		poller,
		formatter,
		use_cases.FlowConfig{
			PageSize:             cfg.FlowPageSize,
			SourceChainSelection: cfg.SourceChainSelection,
			SourceChains:         cfg.SourceChains,
			ExplorerBaseURLs:     mergeExplorerBaseURLs(cfg.ExplorerBaseURLs),
		},
		logger,
	)
	prepareTransactionUseCase := use_cases.NewPrepareTransactionUseCase(
		gateways.PaymentGateway,
		gateways.ChainSubmission,
		logger,
	)

	codec := statecodec.New(cfg.FlowStateHMACSecret)

	healthController := controllers.NewHealthController(healthUseCase, logger)
	swaggerController := controllers.NewSwaggerController(openAPIUseCase, logger)
	flowController := controllers.NewFlowController(advanceFlowUseCase, codec, logger)
	transactionsController := controllers.NewTransactionsController(prepareTransactionUseCase, logger)

	router := httpRouter.New(httpRouter.Dependencies{
		HealthController:       healthController,
		SwaggerController:      swaggerController,
		FlowController:         flowController,
		TransactionsController: transactionsController,
	})

	container.Server = httpserver.New(cfg.Address(), router, logger)

	return container, nil
}

func buildGatewaySet(cfg config.Config, logger *log.Logger) (GatewaySet, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.GatewayMode))

	gatewaySetBuildersMu.RLock()
	builder, exists := gatewaySetBuilders[mode]
	gatewaySetBuildersMu.RUnlock()
	if !exists {
		return GatewaySet{}, fmt.Errorf("unsupported gateway mode: %s", cfg.GatewayMode)
	}

	return builder(cfg, logger), nil
}

func mergeExplorerBaseURLs(overrides map[int64]string) map[int64]string {
	merged := valueobjects.DefaultExplorerBaseURLs()
	for chainID, baseURL := range overrides {
		merged[chainID] = baseURL
	}
	return merged
}
