package config

import (
	"errors"
	"time"

	"github.com/cyverse-de/go-mod/cfg"
)

var ServiceName = "ToneWise"

const (
	DefaultListenPort          = 9000
	DefaultThrottlePerMinute   = 60
	DefaultTextProvider        = "openai"
	DefaultOpenAITextModel     = "gpt-4o-mini"
	DefaultOpenAITTSModel      = "tts-1"
	DefaultGeminiModel         = "gemini-1.5-flash"
	DefaultBaseSubject         = "elucidare.tonewise"
	DefaultBaseQueueName       = "tonewise"
	DefaultNATSReconnectWait   = 1
	DefaultNATSMaxReconnects   = 10
	DefaultTextProviderTimeout = 15 * time.Second
	DefaultVoiceTimeout        = 30 * time.Second
	DefaultRequestBudget       = 45 * time.Second
)

// Specification defines the configuration settings for the ToneWise service.
type Specification struct {
	ListenPort          int
	DatabaseURI         string
	ReinitDB            bool
	RunSchemaMigrations bool

	// The identity that is exempt from every usage limit.
	DemoUserID string

	JWTSecret   string
	JWKSURL     string
	JWTIssuer   string
	JWTAudience string

	TextProvider    string
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	OpenAITextModel string
	OpenAITTSModel  string
	GeminiAPIKey    string
	GeminiModel     string

	TextProviderTimeout time.Duration
	VoiceTimeout        time.Duration
	RequestBudget       time.Duration

	RedisURI          string
	ThrottlePerMinute int

	NatsCluster   string
	MaxReconnects int
	ReconnectWait int
	CACertPath    string
	TLSKeyPath    string
	TLSCertPath   string
	CredsPath     string
	BaseSubject   string
	BaseQueueName string

	StripeSecretKey     string
	StripeWebhookSecret string
	StripePriceID       string
	StripeFrontendURL   string
}

// durationOr returns the duration stored under the given key, or the fallback if the key isn't set.
func durationOr(value, fallback time.Duration) time.Duration {
	if value <= 0 {
		return fallback
	}
	return value
}

// intOr returns the value if it's positive or the fallback otherwise.
func intOr(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
}

// stringOr returns the value if it's not empty or the fallback otherwise.
func stringOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// LoadConfig loads the configuration for the ToneWise service.
func LoadConfig(envPrefix, configPath, dotEnvPath string) (*Specification, error) {
	k, err := cfg.Init(&cfg.Settings{
		EnvPrefix:   envPrefix,
		ConfigPath:  configPath,
		DotEnvPath:  dotEnvPath,
		StrictMerge: false,
		FileType:    cfg.YAML,
	})
	if err != nil {
		return nil, err
	}

	var s Specification

	s.ListenPort = intOr(k.Int("listen.port"), DefaultListenPort)

	s.DatabaseURI = k.String("database.uri")
	if s.DatabaseURI == "" {
		return nil, errors.New("database.uri or TONEWISE_DATABASE_URI must be set")
	}

	s.ReinitDB = k.Bool("reinit.db")
	s.RunSchemaMigrations = k.Bool("run.migrations")
	s.DemoUserID = k.String("demo.user.id")

	s.JWTSecret = k.String("auth.jwt.secret")
	s.JWKSURL = k.String("auth.jwks.url")
	s.JWTIssuer = k.String("auth.issuer")
	s.JWTAudience = k.String("auth.audience")
	if s.JWTSecret == "" && s.JWKSURL == "" {
		return nil, errors.New("auth.jwt.secret or auth.jwks.url must be set")
	}

	s.TextProvider = stringOr(k.String("providers.text"), DefaultTextProvider)
	if s.TextProvider != "openai" && s.TextProvider != "gemini" {
		return nil, errors.New("providers.text must be either openai or gemini")
	}
	s.OpenAIAPIKey = k.String("openai.api.key")
	s.OpenAIBaseURL = k.String("openai.base.url")
	s.OpenAITextModel = stringOr(k.String("openai.text.model"), DefaultOpenAITextModel)
	s.OpenAITTSModel = stringOr(k.String("openai.tts.model"), DefaultOpenAITTSModel)
	s.GeminiAPIKey = k.String("gemini.api.key")
	s.GeminiModel = stringOr(k.String("gemini.model"), DefaultGeminiModel)
	if s.OpenAIAPIKey == "" {
		return nil, errors.New("openai.api.key must be set for speech synthesis")
	}
	if s.TextProvider == "gemini" && s.GeminiAPIKey == "" {
		return nil, errors.New("gemini.api.key must be set when providers.text is gemini")
	}

	s.TextProviderTimeout = durationOr(k.Duration("timeouts.text"), DefaultTextProviderTimeout)
	s.VoiceTimeout = durationOr(k.Duration("timeouts.voice"), DefaultVoiceTimeout)
	s.RequestBudget = durationOr(k.Duration("timeouts.request"), DefaultRequestBudget)

	s.RedisURI = k.String("redis.uri")
	s.ThrottlePerMinute = intOr(k.Int("throttle.per.minute"), DefaultThrottlePerMinute)

	// NATS is optional. Usage events aren't published when it isn't configured.
	s.NatsCluster = k.String("nats.cluster")
	s.MaxReconnects = intOr(k.Int("nats.max.reconnects"), DefaultNATSMaxReconnects)
	s.ReconnectWait = intOr(k.Int("nats.reconnect.wait"), DefaultNATSReconnectWait)
	s.CACertPath = k.String("nats.tls.ca.cert")
	s.TLSKeyPath = k.String("nats.tls.key")
	s.TLSCertPath = k.String("nats.tls.cert")
	s.CredsPath = k.String("nats.creds.path")
	s.BaseSubject = stringOr(k.String("nats.base.subject"), DefaultBaseSubject)
	s.BaseQueueName = stringOr(k.String("nats.base.queue"), DefaultBaseQueueName)

	s.StripeSecretKey = k.String("stripe.secret.key")
	s.StripeWebhookSecret = k.String("stripe.webhook.secret")
	s.StripePriceID = k.String("stripe.price.id")
	s.StripeFrontendURL = k.String("stripe.frontend.url")

	return &s, nil
}
