package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	accountdomain "github.com/smallbiznis/bookkeeper/internal/account/domain"
	auditdomain "github.com/smallbiznis/bookkeeper/internal/audit/domain"
	"github.com/smallbiznis/bookkeeper/internal/config"
	invoicedomain "github.com/smallbiznis/bookkeeper/internal/invoice/domain"
	ledgerdomain "github.com/smallbiznis/bookkeeper/internal/ledger/domain"
	obsmiddleware "github.com/smallbiznis/bookkeeper/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/bookkeeper/internal/observability/metrics"
	obstracing "github.com/smallbiznis/bookkeeper/internal/observability/tracing"
	posdomain "github.com/smallbiznis/bookkeeper/internal/pos/domain"
	"github.com/smallbiznis/bookkeeper/internal/posting"
	purchasedomain "github.com/smallbiznis/bookkeeper/internal/purchase/domain"
	recdomain "github.com/smallbiznis/bookkeeper/internal/reconciliation/domain"
	taxdomain "github.com/smallbiznis/bookkeeper/internal/tax/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server) {
		s.RegisterAPIRoutes()
	}),
	fx.Invoke(RunHTTP),
)

func NewEngine(cfg config.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if !cfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           cfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(httpMetrics.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func RunHTTP(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine       *gin.Engine
	cfg          config.Config
	log          *zap.Logger
	accountSvc   accountdomain.Service
	taxSvc       taxdomain.Service
	invoiceSvc   invoicedomain.Service
	purchaseSvc  purchasedomain.Service
	posSvc       posdomain.Service
	ledgerSvc    ledgerdomain.Service
	posting      *posting.Engine
	reconcileSvc recdomain.Service
	auditSvc     auditdomain.Service
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	Log          *zap.Logger
	AccountSvc   accountdomain.Service
	TaxSvc       taxdomain.Service
	InvoiceSvc   invoicedomain.Service
	PurchaseSvc  purchasedomain.Service
	PosSvc       posdomain.Service
	LedgerSvc    ledgerdomain.Service
	Posting      *posting.Engine
	ReconcileSvc recdomain.Service
	AuditSvc     auditdomain.Service
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		log:          p.Log.Named("http.server"),
		accountSvc:   p.AccountSvc,
		taxSvc:       p.TaxSvc,
		invoiceSvc:   p.InvoiceSvc,
		purchaseSvc:  p.PurchaseSvc,
		posSvc:       p.PosSvc,
		ledgerSvc:    p.LedgerSvc,
		posting:      p.Posting,
		reconcileSvc: p.ReconcileSvc,
		auditSvc:     p.AuditSvc,
	}
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) RegisterAPIRoutes() {
	api := s.engine.Group("/api/v1", TenantRequired())

	// -------- Accounts --------
	api.GET("/accounts", s.ListAccounts)
	api.POST("/accounts", s.CreateAccount)
	api.GET("/accounts/:id", s.GetAccountByID)
	api.PATCH("/accounts/:id/category", s.ChangeAccountCategory)
	api.PUT("/account_mappings", s.SetAccountMapping)

	// -------- Tax codes --------
	api.GET("/tax_codes", s.ListTaxCodes)
	api.POST("/tax_codes", s.CreateTaxCode)
	api.POST("/tax_codes/:id/disable", s.DisableTaxCode)

	// -------- Invoices --------
	api.POST("/invoices", s.CreateInvoice)
	api.GET("/invoices/:id", s.GetInvoiceByID)
	api.POST("/invoices/:id/post", s.PostInvoice)
	api.GET("/invoices/:id/receipts", s.ListReceipts)
	api.POST("/invoices/:id/receipts", s.CreateReceipt)

	// -------- Purchases --------
	api.POST("/purchase_bills", s.CreatePurchaseBill)
	api.GET("/purchase_bills/:id", s.GetPurchaseBillByID)
	api.POST("/purchase_bills/:id/post", s.PostPurchaseBill)
	api.GET("/purchase_bills/:id/payments", s.ListVendorPayments)
	api.POST("/purchase_bills/:id/payments", s.CreateVendorPayment)

	// -------- POS --------
	api.POST("/pos_sales", s.CreatePosSale)
	api.GET("/pos_sales/:id", s.GetPosSaleByID)
	api.POST("/pos_sales/:id/post", s.PostPosSale)

	// -------- Journal --------
	api.GET("/journal_entries", s.ListJournalEntries)
	api.POST("/journal_entries", s.CreateJournalEntry)
	api.GET("/journal_entries/:id", s.GetJournalEntryByID)
	api.POST("/journal_entries/:id/post", s.PostJournalEntry)

	// -------- Bank statements --------
	api.GET("/bank_accounts/:id/transactions", s.ListBankTransactions)
	api.POST("/bank_accounts/:id/transactions", s.ImportBankTransactions)
	api.POST("/bank_accounts/:id/statements", s.UploadBankStatement)

	// -------- Reconciliations --------
	api.GET("/reconciliations", s.ListReconciliations)
	api.POST("/reconciliations", s.StartReconciliation)
	api.GET("/reconciliations/:id", s.GetReconciliationByID)
	api.POST("/reconciliations/:id/auto_match", s.AutoMatchReconciliation)
	api.POST("/reconciliations/:id/matches", s.ApplyReconciliationMatches)
	api.POST("/reconciliations/:id/manual_match", s.ManualMatchReconciliation)
	api.DELETE("/reconciliations/:id/matches/:transactionId", s.UnmatchBankTransaction)
	api.POST("/reconciliations/:id/complete", s.CompleteReconciliation)
	api.POST("/reconciliations/:id/cancel", s.CancelReconciliation)

	// -------- Audit --------
	api.GET("/audit_logs", s.ListAuditLogs)
}
