package config

import "os"

type MarketConfig struct {
	// MarketFile points at a JSON file overriding the built-in token table
	// and pool list. Empty keeps the compiled-in dev market.
	MarketFile string

	// CpAmmProgram / DbcProgram are the on-chain program ids the engine
	// trades against.
	CpAmmProgram string
	DbcProgram   string
}

func (mc *MarketConfig) Key() string {
	return MARKET_CONFIG_KEY
}

func (mc *MarketConfig) Load() error {
	mc.MarketFile = os.Getenv("MARKET_FILE")
	mc.CpAmmProgram = os.Getenv("CP_AMM_PROGRAM_ID")
	mc.DbcProgram = os.Getenv("DBC_PROGRAM_ID")
	return nil
}

func (mc *MarketConfig) Validate() error {
	return nil
}
