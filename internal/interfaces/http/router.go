package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	fiberrequestid "github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/facturacion-api/internal/application/auth"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ServiceName string
	Issuer      InvoiceIssuer
	Cart        CartCanceller
	Pending     PendingLister
	Printable   PrintableFetcher
	Documents   DocumentStatsReader
	Logs        LogLister
	AuthUC      *auth.AuthUseCase
	JWTSecret   string
	Health      map[string]HealthCheck
	Metrics     prometheus.Gatherer // nil deshabilita /metrics
}

// Router registra middlewares y rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Use(recover.New())
	app.Use(fiberrequestid.New())
	app.Use(propagateRequestID())
	app.Use(cors.New())

	health := NewHealthHandler(deps.ServiceName, deps.Health)
	app.Get("/health", health.Health)
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{})))
	}

	invoiceHandler := NewInvoiceHandler(deps.Issuer, deps.Cart, deps.Pending, deps.Printable)

	// Rutas heredadas del front de caja
	app.Post("/generar-xml", invoiceHandler.Issue)
	app.Post("/pagar", invoiceHandler.Issue)
	app.Get("/descargar-pdf/:id", invoiceHandler.DownloadPDF)

	api := app.Group("/api")
	api.Get("/health", health.Health)

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Facturación (público, lo usa la caja)
	api.Post("/facturas", invoiceHandler.Issue)
	api.Get("/facturas", invoiceHandler.ListPending)
	api.Get("/facturas/:id/pdf", invoiceHandler.DownloadPDF)
	api.Post("/carrito/cancelar", invoiceHandler.CancelCart)

	// Diagnóstico y bitácoras (admin)
	adminOnly := []fiber.Handler{AuthMiddleware(deps.JWTSecret), RequireRole(auth.RoleAdmin)}
	documentHandler := NewDocumentHandler(deps.Documents)
	api.Group("/debug", adminOnly...).Get("/documentos", documentHandler.Stats)
	logHandler := NewLogHandler(deps.Logs)
	api.Group("/logs", adminOnly...).Get("/:source", logHandler.List)
}
