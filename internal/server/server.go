// Package server provides the HTTP adapter over the repositories and the
// analytics, OCR and export services.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/flowchain/flowchain/internal/ai"
	"github.com/flowchain/flowchain/internal/analytics"
	"github.com/flowchain/flowchain/internal/auth"
	"github.com/flowchain/flowchain/internal/config"
	"github.com/flowchain/flowchain/internal/export"
	"github.com/flowchain/flowchain/internal/models"
	"github.com/flowchain/flowchain/internal/ocr"
	"github.com/flowchain/flowchain/internal/repository"
)

// Deps bundles everything the HTTP layer needs
type Deps struct {
	Logger *zap.Logger
	Tokens *auth.TokenManager
	Hasher *auth.Hasher

	Users          *repository.UserRepository
	Projects       *repository.ProjectRepository
	Tasks          *repository.TaskRepository
	Timesheets     *repository.TimesheetRepository
	Partners       *repository.PartnerRepository
	Products       *repository.ProductRepository
	Taxes          *repository.TaxRepository
	SalesOrders    *repository.SalesOrderRepository
	PurchaseOrders *repository.PurchaseOrderRepository
	Invoices       *repository.InvoiceRepository
	Expenses       *repository.ExpenseRepository

	Extractor *ocr.Extractor
	Suggester *ai.CategorySuggester // nil when no API key is configured
}

// repoSource adapts the repositories to the analytics snapshot interface
type repoSource struct {
	projects   *repository.ProjectRepository
	tasks      *repository.TaskRepository
	timesheets *repository.TimesheetRepository
	users      *repository.UserRepository
}

func (s repoSource) ListProjects() ([]models.Project, error)     { return s.projects.List() }
func (s repoSource) ListTasks() ([]models.Task, error)           { return s.tasks.List() }
func (s repoSource) ListTimesheets() ([]models.Timesheet, error) { return s.timesheets.List() }
func (s repoSource) ListUsers() ([]models.User, error)           { return s.users.List() }

// Server is the HTTP server adapter
type Server struct {
	config     *config.Config
	httpServer *http.Server
	router     *gin.Engine
	logger     *zap.Logger

	deps     Deps
	engine   *analytics.Engine
	exporter *export.InvoiceExporter
}

// NewServer creates the HTTP server and wires all routes
func NewServer(cfg *config.Config, deps Deps) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		config: cfg,
		router: gin.New(),
		logger: deps.Logger,
		deps:   deps,
		engine: analytics.NewEngine(repoSource{
			projects:   deps.Projects,
			tasks:      deps.Tasks,
			timesheets: deps.Timesheets,
			users:      deps.Users,
		}, deps.Logger),
		exporter: export.NewInvoiceExporter(deps.Invoices, deps.Partners, deps.Products, deps.Logger),
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
	s.router.Use(corsMiddleware())
}

// corsMiddleware adds CORS headers. The session cookie requires
// Allow-Credentials, so the origin is echoed back rather than wildcarded.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if origin := c.GetHeader("Origin"); origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		s.logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.String("latency", time.Since(start).String()),
			zap.String("client_ip", c.ClientIP()))
	}
}

func (s *Server) setupRoutes() {
	authenticate := auth.Middleware(s.deps.Tokens, s.config.Auth.CookieName)
	requireAdmin := auth.RequireAdmin()

	s.router.GET("/health", s.healthCheck)
	s.router.Static("/uploads", s.config.Uploads.Dir)

	api := s.router.Group("/api")
	{
		api.GET("/auth/bootstrap/status", s.bootstrapStatus)
		api.POST("/auth/bootstrap", s.bootstrap)
		api.POST("/auth/login", s.login)
		api.POST("/auth/logout", s.logout)
		api.GET("/auth/me", authenticate, s.me)

		admin := api.Group("/admin", authenticate, requireAdmin)
		{
			admin.GET("/users", s.listUsers)
			admin.POST("/users", s.createUser)
			admin.PATCH("/users/:id/role", s.updateUserRole)
		}

		authed := api.Group("", authenticate)
		{
			authed.POST("/upload", s.uploadFile)

			authed.GET("/projects", s.listProjects)
			authed.GET("/projects/:id", s.getProject)
			authed.POST("/projects", s.createProject)
			authed.PATCH("/projects/:id", s.updateProject)
			authed.DELETE("/projects/:id", s.deleteProject)

			authed.GET("/tasks", s.listTasks)
			authed.GET("/tasks/:id", s.getTask)
			authed.POST("/tasks", s.createTask)
			authed.PUT("/tasks/:id", s.updateTask)
			authed.DELETE("/tasks/:id", s.deleteTask)

			authed.GET("/tasks/:id/timesheets", s.listTaskTimesheets)
			authed.POST("/timesheets", s.createTimesheet)
			authed.PUT("/timesheets/:id", s.updateTimesheet)
			authed.DELETE("/timesheets/:id", s.deleteTimesheet)

			authed.GET("/analytics/kpis", s.analyticsKPIs)
			authed.GET("/analytics/project-costs", s.analyticsProjectCosts)
			authed.GET("/analytics/resource-utilization", s.analyticsResourceUtilization)
			authed.GET("/analytics/completion", s.analyticsCompletion)
			authed.GET("/analytics/workload-trend", s.analyticsWorkloadTrend)
			authed.GET("/analytics/revenue-expense", s.analyticsRevenueExpense)
			authed.GET("/analytics/task-status", s.analyticsTaskStatus)
			authed.GET("/analytics/filters", s.analyticsFilters)

			authed.GET("/partners", s.listPartners)
			authed.GET("/partners/:id", s.getPartner)
			authed.POST("/partners", s.createPartner)
			authed.PUT("/partners/:id", s.updatePartner)
			authed.DELETE("/partners/:id", s.deletePartner)

			authed.GET("/products", s.listProducts)
			authed.GET("/products/:id", s.getProduct)
			authed.POST("/products", s.createProduct)
			authed.PUT("/products/:id", s.updateProduct)
			authed.DELETE("/products/:id", s.deleteProduct)

			authed.GET("/taxes", s.listTaxes)
			authed.GET("/taxes/:id", s.getTax)
			authed.POST("/taxes", s.createTax)
			authed.PUT("/taxes/:id", s.updateTax)
			authed.DELETE("/taxes/:id", s.deleteTax)

			authed.GET("/sales-orders", s.listSalesOrders)
			authed.GET("/sales-orders/:id", s.getSalesOrder)
			authed.POST("/sales-orders", s.createSalesOrder)
			authed.PUT("/sales-orders/:id", s.updateSalesOrder)
			authed.DELETE("/sales-orders/:id", s.deleteSalesOrder)
			authed.GET("/sales-orders/:id/lines", s.listSalesOrderLines)
			authed.POST("/sales-orders/:id/lines", s.addSalesOrderLine)
			authed.PUT("/sales-order-lines/:id", s.updateSalesOrderLine)
			authed.DELETE("/sales-order-lines/:id", s.deleteSalesOrderLine)

			authed.GET("/purchase-orders", s.listPurchaseOrders)
			authed.GET("/purchase-orders/:id", s.getPurchaseOrder)
			authed.POST("/purchase-orders", s.createPurchaseOrder)
			authed.PUT("/purchase-orders/:id", s.updatePurchaseOrder)
			authed.DELETE("/purchase-orders/:id", s.deletePurchaseOrder)
			authed.GET("/purchase-orders/:id/lines", s.listPurchaseOrderLines)
			authed.POST("/purchase-orders/:id/lines", s.addPurchaseOrderLine)
			authed.PUT("/purchase-order-lines/:id", s.updatePurchaseOrderLine)
			authed.DELETE("/purchase-order-lines/:id", s.deletePurchaseOrderLine)

			authed.GET("/invoices", s.listInvoices)
			authed.GET("/invoices/:id", s.getInvoice)
			authed.POST("/invoices", s.createInvoice)
			authed.PUT("/invoices/:id", s.updateInvoice)
			authed.DELETE("/invoices/:id", s.deleteInvoice)
			authed.GET("/invoices/:id/lines", s.listInvoiceLines)
			authed.POST("/invoices/:id/lines", s.addInvoiceLine)
			authed.GET("/invoices/:id/export", s.exportInvoice)
			authed.PUT("/invoice-lines/:id", s.updateInvoiceLine)
			authed.DELETE("/invoice-lines/:id", s.deleteInvoiceLine)

			authed.GET("/expenses", s.listExpenses)
			authed.GET("/expenses/:id", s.getExpense)
			authed.POST("/expenses", s.createExpense)
			authed.PUT("/expenses/:id", s.updateExpense)
			authed.DELETE("/expenses/:id", s.deleteExpense)
			authed.POST("/expenses/ocr", s.extractExpenseReceipt)
			authed.POST("/expenses/suggest-category", s.suggestExpenseCategory)
		}
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Start runs the server until the context is cancelled
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", zap.Error(err))
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", zap.Error(err))
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}

func internalError(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
