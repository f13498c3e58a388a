package model

// Config is the complete fiforecast configuration
type Config struct {
	Data       DataConfig       `yaml:"data" mapstructure:"data"`
	Forecast   ForecastConfig   `yaml:"forecast" mapstructure:"forecast"`
	Validation ValidationConfig `yaml:"validation" mapstructure:"validation"`
	Overview   OverviewConfig   `yaml:"overview" mapstructure:"overview"`
	LLM        LLMConfig        `yaml:"llm" mapstructure:"llm"`
	Output     OutputConfig     `yaml:"output" mapstructure:"output"`
}

// DataConfig locates the flat files
type DataConfig struct {
	EnrichedPath string `yaml:"enriched_path" mapstructure:"enriched_path"` // tried first
	RawPath      string `yaml:"raw_path" mapstructure:"raw_path"`           // fallback
	ForecastPath string `yaml:"forecast_path" mapstructure:"forecast_path"` // optional precomputed forecasts
	ExportEntity string `yaml:"export_entity" mapstructure:"export_entity"` // prefix of exported file names
}

// ForecastConfig controls the trend horizon and target
type ForecastConfig struct {
	CurrentYear     int     `yaml:"current_year" mapstructure:"current_year"`
	HorizonYears    int     `yaml:"horizon_years" mapstructure:"horizon_years"`
	Target          float64 `yaml:"target" mapstructure:"target"`
	DefaultScenario string  `yaml:"default_scenario" mapstructure:"default_scenario"`
}

// ValidationConfig holds the closed enums checked before derivation
type ValidationConfig struct {
	Strict     bool     `yaml:"strict" mapstructure:"strict"`
	Pillars    []string `yaml:"pillars" mapstructure:"pillars"`
	Confidence []string `yaml:"confidence" mapstructure:"confidence"`
	Directions []string `yaml:"directions" mapstructure:"directions"`
}

// OverviewConfig holds the values shown when a headline indicator has no data
type OverviewConfig struct {
	FallbackAccountOwnership float64 `yaml:"fallback_account_ownership" mapstructure:"fallback_account_ownership"`
	FallbackYear             int     `yaml:"fallback_year" mapstructure:"fallback_year"`
	FallbackMobileMoney      float64 `yaml:"fallback_mobile_money" mapstructure:"fallback_mobile_money"`
}

// LLMConfig configures the optional narrative brief
type LLMConfig struct {
	Provider      string `yaml:"provider" mapstructure:"provider"` // "" disables
	Model         string `yaml:"model" mapstructure:"model"`
	APIKey        string `yaml:"-" mapstructure:"api_key"` // never written to disk
	BaseURL       string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout       int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	StrictSources bool   `yaml:"strict_sources" mapstructure:"strict_sources"`
	MaxTokens     int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// OutputConfig controls rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" mapstructure:"verbose"`
	IncludeFooter bool `yaml:"include_footer" mapstructure:"include_footer"`
}

// DefaultConfig returns the reference configuration
func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			EnrichedPath: "data/processed/ethiopia_fi_unified_data_enriched.csv",
			RawPath:      "data/raw/ethiopia_fi_unified_data.csv",
			ForecastPath: "data/processed/forecasts_2025_2027.csv",
			ExportEntity: "ethiopia_fi",
		},
		Forecast: ForecastConfig{
			CurrentYear:     2024,
			HorizonYears:    3,
			Target:          60.0,
			DefaultScenario: "Base",
		},
		Validation: ValidationConfig{
			Strict:     true,
			Pillars:    []string{string(PillarAccess), string(PillarUsage)},
			Confidence: []string{ConfidenceHigh, ConfidenceMedium, ConfidenceLow},
			Directions: []string{DirectionPositive, DirectionNegative},
		},
		Overview: OverviewConfig{
			FallbackAccountOwnership: 49.0,
			FallbackYear:             2024,
			FallbackMobileMoney:      9.45,
		},
		LLM: LLMConfig{
			Timeout:       30,
			StrictSources: true,
			MaxTokens:     800,
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
	}
}
