package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"omnimood-oracle/internal/domain"
)

type Config struct {
	Port int

	SepoliaRPCURL         string
	BaseSepoliaRPCURL     string
	MonadTestnetRPCURL    string
	MonadTestTokenAddress string

	SettlementRPCURL      string
	SettlementChainID     int64
	OracleContractAddress string
	PrivateKey            string

	GaiaAPIKey   string
	GaiaEndpoint string
	LLMModel     string

	RedisURL       string
	ScoreCacheSecs int

	TriggerAPIKey string
	StaticDir     string

	AutoUpdateSecs     int
	AutoUpdateChainIDs []int64

	TelegramBotToken   string
	TelegramRunChatIDs string
}

func Load() *Config {
	cfg := &Config{
		SepoliaRPCURL:         strings.TrimSpace(os.Getenv("SEPOLIA_RPC_URL")),
		BaseSepoliaRPCURL:     strings.TrimSpace(os.Getenv("BASE_SEPOLIA_RPC_URL")),
		MonadTestnetRPCURL:    strings.TrimSpace(os.Getenv("MONAD_TESTNET_RPC_URL")),
		MonadTestTokenAddress: strings.TrimSpace(os.Getenv("MONAD_TEST_TOKEN_ADDRESS")),
		SettlementRPCURL:      strings.TrimSpace(os.Getenv("PUSH_CHAIN_RPC_URL")),
		OracleContractAddress: strings.TrimSpace(os.Getenv("ORACLE_CONTRACT_ADDRESS")),
		PrivateKey:            strings.TrimSpace(os.Getenv("PRIVATE_KEY")),
		GaiaAPIKey:            os.Getenv("GAIA_API_KEY"),
		GaiaEndpoint:          strings.TrimSpace(os.Getenv("GAIA_ENDPOINT")),
		RedisURL:              strings.TrimSpace(os.Getenv("REDIS_URL")),
		TriggerAPIKey:         strings.TrimSpace(os.Getenv("TRIGGER_API_KEY")),
		TelegramBotToken:      os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramRunChatIDs:    strings.TrimSpace(os.Getenv("TELEGRAM_RUN_CHAT_IDS")),
	}

	cfg.Port = 3000
	if v := strings.TrimSpace(os.Getenv("PORT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n < 65536 {
			cfg.Port = n
		}
	}

	if cfg.SettlementRPCURL == "" {
		log.Println("Warning: PUSH_CHAIN_RPC_URL not set, publishing and score reads will fail")
	}
	if cfg.OracleContractAddress == "" {
		log.Println("Warning: ORACLE_CONTRACT_ADDRESS not set")
	}
	if cfg.PrivateKey == "" {
		log.Println("Warning: PRIVATE_KEY not set, publishing will fail")
	}
	if cfg.GaiaAPIKey == "" {
		log.Println("Warning: GAIA_API_KEY not set")
	}
	if cfg.MonadTestTokenAddress == "" {
		log.Println("Warning: MONAD_TEST_TOKEN_ADDRESS not set, Monad transfers will be skipped")
	}

	if v := strings.TrimSpace(os.Getenv("SETTLEMENT_CHAIN_ID")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.SettlementChainID = n
		}
	}

	cfg.LLMModel = strings.TrimSpace(os.Getenv("LLM_MODEL"))
	if cfg.LLMModel == "" {
		cfg.LLMModel = "gpt-3.5-turbo"
	}

	cfg.ScoreCacheSecs = 15
	if v := strings.TrimSpace(os.Getenv("SCORE_CACHE_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ScoreCacheSecs = n
		}
	}

	cfg.StaticDir = strings.TrimSpace(os.Getenv("STATIC_DIR"))
	if cfg.StaticDir == "" {
		cfg.StaticDir = "public"
	}

	if v := strings.TrimSpace(os.Getenv("AUTO_UPDATE_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.AutoUpdateSecs = n
		}
	}
	cfg.AutoUpdateChainIDs = parseChainIDs(os.Getenv("AUTO_UPDATE_CHAIN_IDS"))

	return cfg
}

// Chains returns the supported testnets in registry order.
func (c *Config) Chains() []domain.ChainConfig {
	return []domain.ChainConfig{
		{
			Name:          "Ethereum Sepolia",
			ChainID:       11155111,
			RPCURL:        c.SepoliaRPCURL,
			TokenAddress:  "0x1c7D4B196Cb0C7B01d743Fbc6116a902379C7238", // USDC
			TokenDecimals: 6,
		},
		{
			Name:          "Base Sepolia",
			ChainID:       84532,
			RPCURL:        c.BaseSepoliaRPCURL,
			TokenAddress:  "0x036CbD53842c5426634e7929541eC2318f3dCF7e", // USDC
			TokenDecimals: 6,
		},
		{
			Name:          "Monad Testnet",
			ChainID:       10143,
			RPCURL:        c.MonadTestnetRPCURL,
			TokenAddress:  c.MonadTestTokenAddress,
			TokenDecimals: 18,
		},
	}
}

func parseChainIDs(v string) []int64 {
	var ids []int64
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.ParseInt(part, 10, 64)
		if err != nil || n <= 0 {
			log.Printf("Warning: ignoring invalid chain id %q in AUTO_UPDATE_CHAIN_IDS", part)
			continue
		}
		ids = append(ids, n)
	}
	return ids
}
