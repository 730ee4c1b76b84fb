package server

import (
	"context"
	"fmt"

	"github.com/cyverse-de/go-mod/otelutils"
	"github.com/elucidare/tonewise/config"
	"github.com/elucidare/tonewise/internal/actions"
	"github.com/elucidare/tonewise/internal/auth"
	"github.com/elucidare/tonewise/internal/billing"
	"github.com/elucidare/tonewise/internal/controllers"
	"github.com/elucidare/tonewise/internal/db"
	"github.com/elucidare/tonewise/internal/entitlement"
	"github.com/elucidare/tonewise/internal/events"
	"github.com/elucidare/tonewise/internal/ledger"
	"github.com/elucidare/tonewise/internal/moderation"
	"github.com/elucidare/tonewise/internal/provider"
	"github.com/elucidare/tonewise/internal/provider/gemini"
	"github.com/elucidare/tonewise/internal/provider/openai"
	"github.com/elucidare/tonewise/internal/throttle"
	"github.com/elucidare/tonewise/internal/tiers"
	"github.com/elucidare/tonewise/logging"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var log = logging.GetLogger().WithFields(logrus.Fields{"package": "server"})

const serviceName = "tonewise"

// Version is set at build time.
var Version = "dev"

// InitProviders creates the text and speech providers named in the configuration.
func InitProviders(ctx context.Context, spec *config.Specification) (provider.TextGenerator, provider.SpeechSynthesizer, error) {
	wrapMsg := "unable to initialize the providers"

	speech, err := openai.New(openai.Options{
		APIKey:    spec.OpenAIAPIKey,
		BaseURL:   spec.OpenAIBaseURL,
		TextModel: spec.OpenAITextModel,
		TTSModel:  spec.OpenAITTSModel,
	})
	if err != nil {
		return nil, nil, errors.Wrap(err, wrapMsg)
	}

	if spec.TextProvider != gemini.Name {
		return speech, speech, nil
	}

	text, err := gemini.New(ctx, spec.GeminiAPIKey, spec.GeminiModel)
	if err != nil {
		return nil, nil, errors.Wrap(err, wrapMsg)
	}

	return text, speech, nil
}

// InitLimiter returns the shared Redis limiter if Redis is configured and an in-process limiter otherwise.
func InitLimiter(ctx context.Context, spec *config.Specification) (throttle.Limiter, error) {
	if spec.RedisURI == "" {
		log.Warn("redis isn't configured; request throttling is local to this instance")
		return throttle.NewMemoryLimiter(spec.ThrottlePerMinute), nil
	}

	client, err := throttle.Connect(ctx, spec.RedisURI)
	if err != nil {
		return nil, err
	}

	return throttle.NewRedisLimiter(client, spec.ThrottlePerMinute), nil
}

func Init(spec *config.Specification) {
	log := log.WithFields(logrus.Fields{"context": "server init"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdown := otelutils.TracerProviderFromEnv(ctx, serviceName, func(e error) { log.Fatal(e) })
	defer shutdown()

	e := InitRouter()

	// Establish the database connection.
	log.Info("establishing the database connection")
	_, gormdb, err := db.Init("postgres", spec.DatabaseURI)
	if err != nil {
		log.Fatalf("service initialization failed: %s", err.Error())
	}
	store := db.NewStore(gormdb)

	// NATS is optional.
	var (
		publisher events.Publisher = events.Noop{}
		bus       *events.Bus
	)
	if spec.NatsCluster != "" {
		bus, err = events.Connect(spec)
		if err != nil {
			log.Fatalf("service initialization failed: %s", err.Error())
		}
		defer bus.Close()
		publisher = bus
	} else {
		log.Warn("nats isn't configured; usage and tier events won't be published")
	}

	text, speech, err := InitProviders(ctx, spec)
	if err != nil {
		log.Fatalf("service initialization failed: %s", err.Error())
	}

	limiter, err := InitLimiter(ctx, spec)
	if err != nil {
		log.Fatalf("service initialization failed: %s", err.Error())
	}

	verifier, err := auth.NewVerifier(spec)
	if err != nil {
		log.Fatalf("service initialization failed: %s", err.Error())
	}

	gate := entitlement.NewGate(store, store, spec.DemoUserID)
	tierManager := tiers.NewManager(store, publisher)

	executor := &actions.Executor{
		Filter: moderation.NewFilter(),
		Gate:   gate,
		Ledger: ledger.New(store, publisher),
		Store:  store,
		Text:   text,
		Speech: speech,
		Timeout: actions.Timeouts{
			Text:   spec.TextProviderTimeout,
			Voice:  spec.VoiceTimeout,
			Budget: spec.RequestBudget,
		},
	}

	payments := billing.New(
		billing.NewStripeProvider(spec.StripeSecretKey),
		store,
		tierManager,
		billing.Settings{
			PriceID:       spec.StripePriceID,
			WebhookSecret: spec.StripeWebhookSecret,
			FrontendURL:   spec.StripeFrontendURL,
		},
	)

	s := controllers.Server{
		Router:  e,
		Actions: executor,
		Usage:   gate,
		History: store,
		Billing: payments,
		Tiers:   tierManager,
		Service: serviceName,
		Title:   config.ServiceName,
		Version: Version,
	}

	if bus != nil {
		s.Replier = bus
		if err = bus.QueueSubscribe(events.SubjectTierSet, s.SetTierNATS); err != nil {
			log.Fatalf("service initialization failed: %s", err.Error())
		}
	}

	// Register the handlers.
	RegisterHandlers(s, verifier, limiter, spec.ThrottlePerMinute)

	log.Info("starting the service")
	log.Fatal(e.Start(fmt.Sprintf(":%d", spec.ListenPort)))
}
