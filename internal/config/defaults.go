package config

// Settings keys as they appear in the settings file and the environment.
// Lookup is case-insensitive.
const (
	KeyProjectID           = "FIREBASE_PROJECT_ID"
	KeyPrivateKey          = "FIREBASE_PRIVATE_KEY"
	KeyClientEmail         = "FIREBASE_CLIENT_EMAIL"
	KeyDatabaseURL         = "FIREBASE_DATABASE_URL"
	KeyTournamentSchedule  = "TOURNAMENT_DAILY_SCHEDULE"
	KeyMaxConcurrentAgents = "MAX_CONCURRENT_AGENTS"
	KeyMinSurvivalScore    = "MIN_SURVIVAL_SCORE"
	KeyDataSources         = "DATA_SOURCES"
	KeyMaxDrawdownPercent  = "MAX_DRAWDOWN_PERCENT"
	KeyComplexityTaxRate   = "COMPLEXITY_TAX_RATE"
	KeyScoreWeights        = "SCORE_WEIGHTS"
)

// Default values for optional settings.
const (
	DefaultEnvFile             = ".env"
	DefaultTournamentSchedule  = "22:00"
	DefaultMaxConcurrentAgents = 100
	DefaultMinSurvivalScore    = 0.0
	DefaultMaxDrawdownPercent  = 20.0
	DefaultComplexityTaxRate   = 0.001

	// WeightSumTolerance is the allowed distance of the score weight total from 1.0.
	WeightSumTolerance = 0.001
)

// DefaultDataSources returns the market data sources enabled when DATA_SOURCES is unset.
func DefaultDataSources() []string {
	return []string{"binance", "kraken", "coinbase"}
}

// DefaultScoreWeights returns the metric weights used when SCORE_WEIGHTS is unset.
func DefaultScoreWeights() map[string]float64 {
	return map[string]float64{
		"profitability": 0.4,
		"sharpe_ratio":  0.25,
		"max_drawdown":  0.2,
		"win_rate":      0.15,
	}
}
