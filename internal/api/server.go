package api

import (
	_ "embed"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/deenxzikr/deen-api/internal/api/handler"
	"github.com/deenxzikr/deen-api/internal/config"
)

//go:embed openapi.json
var openapiSpec []byte

// NewRouter creates and configures the Chi router with all middleware and routes.
func NewRouter(h *handler.Handler, cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(TimingMiddleware)
	r.Use(middleware.Compress(5)) // gzip

	// CORS
	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "HEAD", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Content-Type", "If-None-Match", "Cache-Control", "Authorization"},
		ExposedHeaders:   []string{"X-Process-Time", "X-Cache", "ETag"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	// Rate limiting
	if cfg.RateLimitEnabled {
		r.Use(RateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow))
	}

	// --- Routes ---

	// Root
	r.Get("/", h.Root)

	// Health checks
	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.HealthCheck)
		r.Get("/db", h.HealthCheckDB)
		r.Get("/cache", h.HealthCheckCache)
	})

	// Swagger UI backed by the embedded OpenAPI document.
	r.Get("/docs/openapi.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(openapiSpec)
	})
	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/openapi.json"),
	))

	// Scheduled dispatch trigger (authenticated by shared secret)
	r.Get("/api/cron/prayer-reminders", h.RunDispatch)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Prayer timetables
		r.Get("/prayer-times", h.GetPrayerTimes)
		r.Get("/prayer-calendar", h.GetPrayerCalendar)

		// Location & weather
		r.Get("/geo", h.GetGeocode)
		r.Get("/weather", h.GetWeather)

		// Quran reading
		r.Get("/quran", h.GetQuranSurahs)
		r.Get("/quran/para", h.GetParaList)
		r.Get("/quran/para/{id}", h.GetParaVerses)
		r.Get("/surah/{id}", h.GetSurah)

		// Hadith library & daily content
		r.Get("/hadith", h.GetHadithLibrary)
		r.Get("/daily-hadith", h.GetDailyHadith)
		r.Get("/daily-inspiration", h.GetDailyInspiration)

		// Push subscriptions
		r.Route("/push", func(r chi.Router) {
			r.Get("/public-key", h.GetVAPIDPublicKey)
			r.Post("/subscribe", h.SubscribePush)
			r.Post("/unsubscribe", h.UnsubscribePush)
			r.Post("/test", h.TestPush)
		})
	})

	return r
}
