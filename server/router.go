package server

import (
	"net/http"

	"github.com/cyverse-de/echo-middleware/v2/redoc"
	"github.com/elucidare/tonewise/internal/auth"
	"github.com/elucidare/tonewise/internal/controllers"
	"github.com/elucidare/tonewise/internal/metrics"
	"github.com/elucidare/tonewise/internal/throttle"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	echolog "github.com/spirosoik/echo-logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
)

// corsMiddleware allows the browser client to call the API from another origin.
func corsMiddleware() echo.MiddlewareFunc {
	c := cors.New(cors.Options{
		AllowedOrigins:       []string{"*"},
		AllowedMethods:       []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:       []string{"*"},
		ExposedHeaders:       []string{"Retry-After", "X-RateLimit-Limit", controllers.ProcessingTimeHeader},
		OptionsSuccessStatus: http.StatusNoContent,
	})
	return echo.WrapMiddleware(c.Handler)
}

func InitRouter() *echo.Echo {
	log := log.WithFields(logrus.Fields{"context": "router"})

	// Create the web server.
	e := echo.New()

	// Set a custom logger.
	echoLogger := echolog.NewLoggerMiddleware(log)
	e.Logger = echoLogger

	// Add middleware.
	e.Use(otelecho.Middleware("tonewise"))
	e.Use(echoLogger.Hook())
	e.Use(middleware.Recover())
	e.Use(corsMiddleware())
	e.Use(metrics.Middleware())
	e.Use(redoc.Serve(redoc.Opts{Title: "ToneWise Usage Metering API"}))

	return e
}

func registerToneEndpoints(toneAnalyses *echo.Group, s *controllers.Server) {
	// Analyzes the tone of a message.
	toneAnalyses.POST("", s.AnalyzeTone)

	// Lists the caller's stored tone analyses.
	toneAnalyses.GET("", s.ListToneAnalyses)

	// Gets a single stored tone analysis.
	toneAnalyses.GET("/:id", s.GetToneAnalysis)
}

func registerScriptEndpoints(scripts *echo.Group, s *controllers.Server) {
	// Generates conversation scripts for a situation.
	scripts.POST("", s.GenerateScripts)

	// Lists the caller's stored script generations.
	scripts.GET("", s.ListScriptGenerations)

	// Gets a single stored script generation.
	scripts.GET("/:id", s.GetScriptGeneration)
}

func registerBillingEndpoints(billing *echo.Group, s *controllers.Server, protected ...echo.MiddlewareFunc) {
	billing.POST("/checkout", s.CreateCheckoutSession, protected...)
	billing.POST("/portal", s.CreatePortalSession, protected...)

	// Stripe authenticates itself with the webhook signature rather than a bearer token.
	billing.POST("/webhook", s.StripeWebhook)
}

// RegisterHandlers registers the HTTP handlers. Every metered or per-user endpoint requires a verified bearer token
// and is subject to the per-user request throttle.
func RegisterHandlers(s controllers.Server, verifier auth.TokenVerifier, limiter throttle.Limiter, perMinute int) {

	// The base URL acts as a health check endpoint.
	s.Router.GET("/", s.RootHandler)

	// Prometheus metrics.
	s.Router.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	// API version 1 endpoints.
	v1 := s.Router.Group("/v1")
	v1.GET("", s.V1RootHandler)

	protected := []echo.MiddlewareFunc{
		auth.Middleware(verifier),
		throttle.Middleware(limiter, perMinute, auth.UserID),
	}

	toneAnalyses := v1.Group("/tone-analyses", protected...)
	registerToneEndpoints(toneAnalyses, &s)

	scripts := v1.Group("/scripts", protected...)
	registerScriptEndpoints(scripts, &s)

	v1.POST("/voice", s.SynthesizeVoice, protected...)

	v1.GET("/usage", s.GetUsage, protected...)

	billing := v1.Group("/billing")
	registerBillingEndpoints(billing, &s, protected...)
}
