package model

// ================ Config ================
type CompletionModelConfig struct {
	Model       string  `envconfig:"COMPLETION_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"COMPLETION_MAX_TOKENS" default:"4096"`
	Temperature float32 `envconfig:"COMPLETION_TEMPERATURE" default:"0.2"`
}

type StoreConfig struct {
	Backend string `envconfig:"STORE_BACKEND" default:"bolt"`
	Profile string `envconfig:"STORE_PROFILE" default:"default"`
	TTL     string `envconfig:"STORE_TTL" default:"0s"`
}

type HistoryConfig struct {
	Limit int `envconfig:"HISTORY_LIMIT" default:"50"`
}

type VoiceConfig struct {
	Locale string `envconfig:"VOICE_LOCALE" default:"es-ES"`
}
