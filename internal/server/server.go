package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/donare/internal/config"
	donationdomain "github.com/smallbiznis/donare/internal/donation/domain"
	"github.com/smallbiznis/donare/internal/scheduler"
	subscriptiondomain "github.com/smallbiznis/donare/internal/subscription/domain"
	transactiondomain "github.com/smallbiznis/donare/internal/transaction/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(RegisterRoutes),
	fx.Invoke(RunHTTP),
)

type Server struct {
	log *zap.Logger
	cfg config.Config

	transactionSvc  transactiondomain.Service
	subscriptionSvc subscriptiondomain.Service
	donationSvc     donationdomain.Service
	sched           *scheduler.Scheduler
}

type Params struct {
	fx.In

	Log *zap.Logger
	Cfg config.Config

	TransactionSvc  transactiondomain.Service
	SubscriptionSvc subscriptiondomain.Service
	DonationSvc     donationdomain.Service
	Scheduler       *scheduler.Scheduler
}

func NewServer(p Params) *Server {
	return &Server{
		log:             p.Log.Named("server"),
		cfg:             p.Cfg,
		transactionSvc:  p.TransactionSvc,
		subscriptionSvc: p.SubscriptionSvc,
		donationSvc:     p.DonationSvc,
		sched:           p.Scheduler,
	}
}

func NewEngine(cfg config.Config, log *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(RequestLogger(log))
	engine.Use(ErrorHandlingMiddleware())
	return engine
}

func RegisterRoutes(engine *gin.Engine, s *Server) {
	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := engine.Group("/v1")
	{
		v1.POST("/charges", s.CreateCharge)
		v1.GET("/transactions", s.ListTransactions)

		v1.POST("/subscriptions", s.CreateSubscription)
		v1.GET("/subscriptions", s.ListSubscriptions)
		v1.GET("/subscriptions/stats", s.SubscriptionStats)
		v1.GET("/subscriptions/:donorID", s.GetSubscription)
		v1.DELETE("/subscriptions/:donorID", s.CancelSubscription)

		v1.GET("/donations", s.ListDonations)

		v1.GET("/billing/status", s.BillingStatus)
		v1.POST("/billing/run", s.TriggerBillingRun)
		v1.POST("/billing/start", s.StartBilling)
		v1.POST("/billing/stop", s.StopBilling)
	}
}

func RunHTTP(lc fx.Lifecycle, engine *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
