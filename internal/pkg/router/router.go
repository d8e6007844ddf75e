package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	apiv1 "github.com/verifox/VeriFox/internal/api/v1"
	"github.com/verifox/VeriFox/internal/pkg/config"
	"github.com/verifox/VeriFox/internal/pkg/middleware"
)

type Router interface {
	InstallRouter(app *fiber.App)
}

type ApiRouter struct {
	cfg    *config.Settings
	server *apiv1.APIServer
}

func NewApiRouter(cfg *config.Settings, svc apiv1.Verifier) *ApiRouter {
	return &ApiRouter{
		cfg:    cfg,
		server: apiv1.NewAPIServer(cfg, svc),
	}
}

func (h *ApiRouter) InstallRouter(app *fiber.App) {
	// Browser callers send the key via header; the response reflects the
	// origin so preflights pass for any caller.
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool { return true },
		AllowHeaders:     "authorization, x-client-info, apikey, content-type, x-api-key",
		AllowMethods:     "GET,POST,OPTIONS",
	}))

	app.Get("/healthz", h.server.GetHealthz)

	protected := app.Group("/", middleware.APIKeyAuth(h.cfg))
	protected.Post("/verify-business", h.server.PostVerifyBusiness)
	protected.Post("/verify-business-batch", h.server.PostVerifyBusinessBatch)
}

func InstallRouter(app *fiber.App, cfg *config.Settings, svc apiv1.Verifier) {
	setup(app, NewApiRouter(cfg, svc))
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
