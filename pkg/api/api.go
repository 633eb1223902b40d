// Package api exposes audits, reports and task submission over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/amankumarsingh77/seo_audit/internal/archive"
	"github.com/amankumarsingh77/seo_audit/internal/logging"
	"github.com/amankumarsingh77/seo_audit/internal/report"
	"github.com/amankumarsingh77/seo_audit/internal/tasks"
	"github.com/amankumarsingh77/seo_audit/models"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const settingsUser = "admin"

type Auditor interface {
	Correlate(ctx context.Context, domain string) []models.Issue
	CorrelatePage(ctx context.Context, domain, path string) []models.Issue
}

type TaskClient interface {
	Enqueue(ctx context.Context, name string, payload any) (*tasks.Task, error)
	Agents() []tasks.AgentInfo
}

type Options struct {
	Auditor       Auditor
	Tasks         TaskClient
	Reports       archive.Archive
	Metrics       http.Handler
	SettingsToken string
	Logger        logging.Logger
}

type AuditAPI struct {
	auditor       Auditor
	tasks         TaskClient
	reports       archive.Archive
	metrics       http.Handler
	settingsToken string
	logger        logging.Logger
}

func NewAuditAPI(opts Options) *AuditAPI {
	return &AuditAPI{
		auditor:       opts.Auditor,
		tasks:         opts.Tasks,
		reports:       opts.Reports,
		metrics:       opts.Metrics,
		settingsToken: opts.SettingsToken,
		logger:        opts.Logger,
	}
}

// NewApp returns a fiber app with panic recovery and CORS for the local
// dashboard.
func NewApp() *fiber.App {
	app := fiber.New(fiber.Config{AppName: "seo-audit"})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000",
		AllowCredentials: true,
	}))
	return app
}

func (api *AuditAPI) RegisterRoutes(app *fiber.App) {
	app.Post("/token", api.tokenHandler)
	app.Get("/health", api.healthHandler)
	app.Get("/agents", api.agentsHandler)
	app.Get("/audits", api.auditsHandler)
	app.Get("/content", placeholder("content"))
	app.Get("/backlinks", placeholder("backlinks"))
	app.Get("/settings", api.requireToken, api.settingsHandler)
	app.Post("/api/audit", api.auditHandler)
	app.Post("/api/audit/report", api.reportHandler)
	app.Post("/api/audit/page", api.pageHandler)
	app.Post("/api/tasks/:name", api.enqueueHandler)
	if api.metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(api.metrics))
	}
}

func (api *AuditAPI) tokenHandler(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"access_token": api.settingsToken, "token_type": "bearer"})
}

func (api *AuditAPI) healthHandler(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (api *AuditAPI) agentsHandler(c *fiber.Ctx) error {
	agents := []tasks.AgentInfo{}
	if api.tasks != nil {
		agents = api.tasks.Agents()
	}
	return c.JSON(fiber.Map{"agents": agents})
}

func (api *AuditAPI) auditsHandler(c *fiber.Ctx) error {
	audits := []models.AuditReport{}
	if api.reports != nil {
		list, err := api.reports.List(c.UserContext(), c.QueryInt("limit", 20))
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Listing audits failed: " + err.Error()})
		}
		audits = list
	}
	return c.JSON(fiber.Map{"audits": audits})
}

func placeholder(key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{key: []any{}})
	}
}

func (api *AuditAPI) requireToken(c *fiber.Ctx) error {
	token, ok := strings.CutPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
	if !ok || api.settingsToken == "" || token != api.settingsToken {
		c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": "Invalid authentication credentials"})
	}
	c.Locals("user", settingsUser)
	return c.Next()
}

func (api *AuditAPI) settingsHandler(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"settings": fiber.Map{"user": c.Locals("user")}})
}

// auditRequest.Path is only read by the page audit; full audits always
// cover the whole domain.
type auditRequest struct {
	Domain string `json:"domain"`
	Path   string `json:"path"`
}

func (api *AuditAPI) parseAudit(c *fiber.Ctx) (*auditRequest, error) {
	var req auditRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Domain) == "" {
		return nil, errors.New("domain is required")
	}
	return &req, nil
}

func (api *AuditAPI) auditHandler(c *fiber.Ctx) error {
	req, err := api.parseAudit(c)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"detail": err.Error()})
	}
	issues := api.auditor.Correlate(c.UserContext(), req.Domain)
	return c.JSON(fiber.Map{"issues": issues})
}

// pageHandler audits one page without discovery.
func (api *AuditAPI) pageHandler(c *fiber.Ctx) error {
	req, err := api.parseAudit(c)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"detail": err.Error()})
	}
	if strings.TrimSpace(req.Path) == "" {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"detail": "path is required"})
	}
	issues := api.auditor.CorrelatePage(c.UserContext(), req.Domain, req.Path)
	return c.JSON(fiber.Map{"issues": issues})
}

func (api *AuditAPI) reportHandler(c *fiber.Ctx) error {
	format := c.Query("format", "markdown")
	if format != "markdown" && format != "html" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "format must be markdown or html"})
	}
	req, err := api.parseAudit(c)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"detail": err.Error()})
	}
	rec := report.NewRecord(req.Domain, "", api.auditor.Correlate(c.UserContext(), req.Domain))
	if api.reports != nil {
		if err := api.reports.Save(c.UserContext(), rec); err != nil {
			api.logger.Warn("failed to archive audit report", logging.String("domain", req.Domain), logging.Error(err))
		}
	}
	if format == "html" {
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.SendString(rec.HTML)
	}
	c.Set(fiber.HeaderContentType, "text/markdown; charset=utf-8")
	return c.SendString(rec.Markdown)
}

func (api *AuditAPI) enqueueHandler(c *fiber.Ctx) error {
	if api.tasks == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "task queue not configured"})
	}
	var payload json.RawMessage
	if body := c.Body(); len(body) > 0 {
		if !json.Valid(body) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "payload must be JSON"})
		}
		payload = append(json.RawMessage(nil), body...)
	}
	t, err := api.tasks.Enqueue(c.UserContext(), c.Params("name"), payload)
	if errors.Is(err, tasks.ErrUnknownTask) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Enqueue failed: " + err.Error()})
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"task_id": t.ID,
		"task":    t.Name,
		"queue":   t.Queue,
		"status":  t.Status,
	})
}
