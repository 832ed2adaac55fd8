package httpapi

import (
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"promovideo/internal/http/handlers"
	"promovideo/internal/middleware"
)

func NewRouter(app *handlers.App) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP, chimw.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Locale(app.Cfg.DefaultLocale))
	r.Use(middleware.Logger(app.Logger))
	r.Use(middleware.CORS(app.Cfg.AllowedOrigins))
	r.Use(middleware.RateLimit(app.Cfg.RateLimitPerMin, time.Minute, app.Logger))

	r.Get("/v1/healthz", app.Health)
	r.Put("/v1/credential", app.CredentialSet)

	r.Route("/v1/sessions", func(r chi.Router) {
		r.Post("/", app.SessionCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", app.SessionGet)
			r.Delete("/", app.SessionDelete)
			r.Post("/reset", app.SessionReset)

			r.Route("/assets", func(r chi.Router) {
				r.Get("/", app.AssetsList)
				r.Post("/", app.AssetsUpload)
				r.Delete("/{assetID}", app.AssetDelete)
				r.Post("/{assetID}/toggle", app.AssetToggle)
				r.Get("/{assetID}/preview", app.AssetPreview)
			})

			r.Post("/ideas", app.IdeasGenerate)
			r.Post("/concept", app.ConceptChoose)
			r.Post("/refinements", app.RefinementsGenerate)
			r.Post("/selections", app.SelectionsUpdate)
			r.Post("/prompt", app.PromptCompose)

			r.Post("/generate", app.GenerateSubmit)
			r.Get("/job", app.GenerateStatus)
			r.Get("/job/video", app.GenerateVideo)
		})
	})

	return r
}
