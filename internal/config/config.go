package config

import "github.com/caarlos0/env/v10"

// Config centraliza la configuracion del servicio.
type Config struct {
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`

	LLMAPIKey  string `env:"LLM_API_KEY,required"`
	LLMBaseURL string `env:"LLM_BASE_URL" envDefault:"https://api.openai.com/v1"`
	LLMModel   string `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`
	// LLMTimeoutSeconds acota la llamada sincrona al modelo; al vencer se
	// devuelve un error de timeout tipado, no un fallo generico.
	LLMTimeoutSeconds int `env:"LLM_TIMEOUT_SECONDS" envDefault:"45"`

	// Ventana de contexto aplicada del lado del servidor, sin importar
	// cuantos turnos mande el cliente.
	ContextMaxTurns  int `env:"CONTEXT_MAX_TURNS" envDefault:"10"`
	ContextMaxTokens int `env:"CONTEXT_MAX_TOKENS" envDefault:"2048"`

	// SpeechProvider: "openai" u "google".
	SpeechProvider    string `env:"SPEECH_PROVIDER" envDefault:"openai"`
	GoogleCredentials string `env:"GOOGLE_APPLICATION_CREDENTIALS"`

	// Orden del asistente tras el paso de personalidad: "dashboard" o
	// "upload". Las dos variantes del flujo original quedan configurables.
	PersonalityNextStep string `env:"PERSONALITY_NEXT_STEP" envDefault:"dashboard"`

	JWTSecret            string `env:"JWT_SECRET"`
	JWTAccessTTLMinutes  int    `env:"JWT_ACCESS_TTL_MINUTES" envDefault:"15"`
	JWTRefreshTTLMinutes int    `env:"JWT_REFRESH_TTL_MINUTES" envDefault:"43200"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPass     string `env:"SMTP_PASS"`
	SMTPFrom     string `env:"SMTP_FROM"`
	SMTPFromName string `env:"SMTP_FROM_NAME"`
	SMTPUseTLS   bool   `env:"SMTP_USE_TLS" envDefault:"false"`

	CORSAllowOrigins []string `env:"CORS_ALLOW_ORIGINS" envSeparator:"," envDefault:"*"`
}

// LoadConfig carga la configuracion desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
