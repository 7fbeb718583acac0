package config

import (
	"encoding/json"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	defaultPort                     = "8080"
	defaultOpenAPISpec              = "api/openapi.yaml"
	defaultShutdownTimeout          = 10 * time.Second
	defaultDBReadinessTimeout       = 30 * time.Second
	defaultDBReadinessRetryInterval = 2 * time.Second
	defaultMigrationsPath           = "migrations"
	defaultGatewayMode              = "devtest"
	defaultVaultCatalogMode         = "static"
	defaultPageSize                 = 4
)

const (
	flowStateSecretEnv          = "FLOW_STATE_HMAC_SECRET"
	flowPageSizeEnv             = "FLOW_PAGE_SIZE"
	flowSourceChainSelectionEnv = "FLOW_SOURCE_CHAIN_SELECTION"
	flowDefaultUserAddressEnv   = "FLOW_DEFAULT_USER_ADDRESS"
	flowSourceChainAllowListEnv = "FLOW_SOURCE_CHAIN_ALLOW_LISTS_JSON"
	flowExplorerBaseURLsEnv     = "FLOW_EXPLORER_BASE_URLS_JSON"
	gatewayModeEnv              = "GATEWAY_MODE"
	paymentGatewayBaseURLEnv    = "PAYMENT_GATEWAY_BASE_URL"
	paymentGatewayProjectIDEnv  = "PAYMENT_GATEWAY_PROJECT_ID"
	identityResolverBaseURLEnv  = "IDENTITY_RESOLVER_BASE_URL"
	chainSubmissionBaseURLEnv   = "CHAIN_SUBMISSION_BASE_URL"
	vaultCatalogModeEnv         = "VAULT_CATALOG_MODE"
	vaultCatalogJSONEnv         = "VAULT_CATALOG_JSON"
	databaseURLEnv              = "DATABASE_URL"
)

type ConfigError struct {
	Code     string
	Message  string
	Metadata map[string]string
}

func (e *ConfigError) Error() string {
	if e == nil {
		return ""
	}

	return e.Message
}

type Config struct {
	Port            string
	OpenAPISpecPath string
	ShutdownTimeout time.Duration

	FlowStateHMACSecret   string
	FlowPageSize          int
	SourceChainSelection  bool
	DefaultUserAddress    string
	SourceChainAllowLists map[string][]string
	SourceChains          []string
	ExplorerBaseURLs      map[int64]string

	GatewayMode             string
	PaymentGatewayBaseURL   string
	PaymentGatewayProjectID string
	IdentityResolverBaseURL string
	ChainSubmissionBaseURL  string

	VaultCatalogMode string
	VaultCatalogJSON string

	DatabaseURL              string
	DatabaseTarget           string
	DBReadinessTimeout       time.Duration
	DBReadinessRetryInterval time.Duration
	MigrationsPath           string
}

func LoadConfig() (Config, *ConfigError) {
	secret := strings.TrimSpace(os.Getenv(flowStateSecretEnv))
	if secret == "" {
		return Config{}, &ConfigError{
			Code:    "CONFIG_FLOW_STATE_HMAC_SECRET_REQUIRED",
			Message: flowStateSecretEnv + " is required",
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	openAPISpecPath := os.Getenv("OPENAPI_SPEC_PATH")
	if openAPISpecPath == "" {
		openAPISpecPath = defaultOpenAPISpec
	}

	pageSize := defaultPageSize
	if raw := strings.TrimSpace(os.Getenv(flowPageSizeEnv)); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return Config{}, &ConfigError{
				Code:    "CONFIG_FLOW_PAGE_SIZE_INVALID",
				Message: flowPageSizeEnv + " must be a positive integer",
			}
		}
		pageSize = parsed
	}

	sourceChainSelection := false
	if raw := strings.TrimSpace(os.Getenv(flowSourceChainSelectionEnv)); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return Config{}, &ConfigError{
				Code:    "CONFIG_FLOW_SOURCE_CHAIN_SELECTION_INVALID",
				Message: flowSourceChainSelectionEnv + " must be a boolean",
			}
		}
		sourceChainSelection = parsed
	}

	allowLists, allowListErr := loadSourceChainAllowLists()
	if allowListErr != nil {
		return Config{}, allowListErr
	}

	explorerBaseURLs, explorerErr := loadExplorerBaseURLs()
	if explorerErr != nil {
		return Config{}, explorerErr
	}

	gatewayMode := strings.ToLower(strings.TrimSpace(os.Getenv(gatewayModeEnv)))
	if gatewayMode == "" {
		gatewayMode = defaultGatewayMode
	}

	paymentGatewayBaseURL := strings.TrimSpace(os.Getenv(paymentGatewayBaseURLEnv))
	identityResolverBaseURL := strings.TrimSpace(os.Getenv(identityResolverBaseURLEnv))
	chainSubmissionBaseURL := strings.TrimSpace(os.Getenv(chainSubmissionBaseURLEnv))
	if gatewayMode == "http" {
		if paymentGatewayBaseURL == "" {
			return Config{}, &ConfigError{
				Code:    "CONFIG_PAYMENT_GATEWAY_BASE_URL_REQUIRED",
				Message: paymentGatewayBaseURLEnv + " is required for http gateway mode",
			}
		}
		if identityResolverBaseURL == "" {
			return Config{}, &ConfigError{
				Code:    "CONFIG_IDENTITY_RESOLVER_BASE_URL_REQUIRED",
				Message: identityResolverBaseURLEnv + " is required for http gateway mode",
			}
		}
		if chainSubmissionBaseURL == "" {
			return Config{}, &ConfigError{
				Code:    "CONFIG_CHAIN_SUBMISSION_BASE_URL_REQUIRED",
				Message: chainSubmissionBaseURLEnv + " is required for http gateway mode",
			}
		}
	}

	vaultCatalogMode := strings.ToLower(strings.TrimSpace(os.Getenv(vaultCatalogModeEnv)))
	if vaultCatalogMode == "" {
		vaultCatalogMode = defaultVaultCatalogMode
	}

	cfg := Config{
		Port:            port,
		OpenAPISpecPath: openAPISpecPath,
		ShutdownTimeout: defaultShutdownTimeout,

		FlowStateHMACSecret:   secret,
		FlowPageSize:          pageSize,
		SourceChainSelection:  sourceChainSelection,
		DefaultUserAddress:    strings.TrimSpace(os.Getenv(flowDefaultUserAddressEnv)),
		SourceChainAllowLists: allowLists,
		SourceChains:          sourceChainNames(allowLists),
		ExplorerBaseURLs:      explorerBaseURLs,

		GatewayMode:             gatewayMode,
		PaymentGatewayBaseURL:   paymentGatewayBaseURL,
		PaymentGatewayProjectID: strings.TrimSpace(os.Getenv(paymentGatewayProjectIDEnv)),
		IdentityResolverBaseURL: identityResolverBaseURL,
		ChainSubmissionBaseURL:  chainSubmissionBaseURL,

		VaultCatalogMode: vaultCatalogMode,
		VaultCatalogJSON: strings.TrimSpace(os.Getenv(vaultCatalogJSONEnv)),

		DBReadinessTimeout:       defaultDBReadinessTimeout,
		DBReadinessRetryInterval: defaultDBReadinessRetryInterval,
		MigrationsPath:           defaultMigrationsPath,
	}

	if vaultCatalogMode == "postgres" {
		databaseURL := strings.TrimSpace(os.Getenv(databaseURLEnv))
		if databaseURL == "" {
			return Config{}, &ConfigError{
				Code:    "CONFIG_DATABASE_URL_REQUIRED",
				Message: databaseURLEnv + " is required for postgres vault catalog mode",
			}
		}

		databaseTarget, parseErr := parseDatabaseTarget(databaseURL)
		if parseErr != nil {
			return Config{}, parseErr
		}

		cfg.DatabaseURL = databaseURL
		cfg.DatabaseTarget = databaseTarget
	}

	return cfg, nil
}

func (c Config) Address() string {
	return ":" + c.Port
}

func parseDatabaseTarget(databaseURL string) (string, *ConfigError) {
	parsed, err := url.Parse(databaseURL)
	if err != nil {
		return "", &ConfigError{
			Code:    "CONFIG_DATABASE_URL_INVALID",
			Message: "DATABASE_URL is invalid",
		}
	}

	switch parsed.Scheme {
	case "postgres", "postgresql":
	default:
		return "", &ConfigError{
			Code:    "CONFIG_DATABASE_URL_SCHEME_INVALID",
			Message: "DATABASE_URL must use postgres or postgresql scheme",
		}
	}

	if parsed.Host == "" {
		return "", &ConfigError{
			Code:    "CONFIG_DATABASE_URL_HOST_MISSING",
			Message: "DATABASE_URL host is required",
		}
	}

	databaseName := strings.TrimPrefix(parsed.Path, "/")
	if databaseName == "" {
		return "", &ConfigError{
			Code:    "CONFIG_DATABASE_NAME_MISSING",
			Message: "DATABASE_URL database name is required",
		}
	}

	return parsed.Host + "/" + databaseName, nil
}

func loadSourceChainAllowLists() (map[string][]string, *ConfigError) {
	raw := strings.TrimSpace(os.Getenv(flowSourceChainAllowListEnv))
	if raw == "" {
		return defaultSourceChainAllowLists(), nil
	}

	decoded := map[string][]string{}
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, &ConfigError{
			Code:    "CONFIG_SOURCE_CHAIN_ALLOW_LISTS_INVALID",
			Message: flowSourceChainAllowListEnv + " must be a JSON object of string arrays",
		}
	}

	allowLists := map[string][]string{}
	for chain, symbols := range decoded {
		normalizedChain := strings.TrimSpace(chain)
		if normalizedChain == "" {
			continue
		}

		normalizedSymbols := make([]string, 0, len(symbols))
		for _, symbol := range symbols {
			normalizedSymbol := strings.ToUpper(strings.TrimSpace(symbol))
			if normalizedSymbol == "" {
				continue
			}
			normalizedSymbols = append(normalizedSymbols, normalizedSymbol)
		}

		allowLists[normalizedChain] = normalizedSymbols
	}

	if len(allowLists) == 0 {
		return nil, &ConfigError{
			Code:    "CONFIG_SOURCE_CHAIN_ALLOW_LISTS_EMPTY",
			Message: flowSourceChainAllowListEnv + " must define at least one source chain",
		}
	}

	return allowLists, nil
}

func defaultSourceChainAllowLists() map[string][]string {
	return map[string][]string{
		"Arbitrum": {},
		"Base":     {},
		"Optimism": {},
		"Ethereum": {},
	}
}

func sourceChainNames(allowLists map[string][]string) []string {
	names := make([]string, 0, len(allowLists))
	for chain := range allowLists {
		names = append(names, chain)
	}
	sort.Strings(names)
	return names
}

func loadExplorerBaseURLs() (map[int64]string, *ConfigError) {
	raw := strings.TrimSpace(os.Getenv(flowExplorerBaseURLsEnv))
	if raw == "" {
		return map[int64]string{}, nil
	}

	decoded := map[string]string{}
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, &ConfigError{
			Code:    "CONFIG_EXPLORER_BASE_URLS_INVALID",
			Message: flowExplorerBaseURLsEnv + " must be a JSON object of chain id to base url",
		}
	}

	baseURLs := map[int64]string{}
	for rawChainID, baseURL := range decoded {
		chainID, err := strconv.ParseInt(strings.TrimSpace(rawChainID), 10, 64)
		if err != nil || chainID <= 0 {
			return nil, &ConfigError{
				Code:    "CONFIG_EXPLORER_BASE_URLS_INVALID",
				Message: flowExplorerBaseURLsEnv + " keys must be positive integer chain ids",
				Metadata: map[string]string{
					"chain_id": rawChainID,
				},
			}
		}

		trimmedBaseURL := strings.TrimRight(strings.TrimSpace(baseURL), "/")
		if trimmedBaseURL == "" {
			return nil, &ConfigError{
				Code:    "CONFIG_EXPLORER_BASE_URLS_INVALID",
				Message: flowExplorerBaseURLsEnv + " values must be non-empty base urls",
				Metadata: map[string]string{
					"chain_id": rawChainID,
				},
			}
		}

		baseURLs[chainID] = trimmedBaseURL
	}

	return baseURLs, nil
}
