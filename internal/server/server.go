package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/tonbox-app/tonbox/internal/achievement"
	achievementdomain "github.com/tonbox-app/tonbox/internal/achievement/domain"
	"github.com/tonbox-app/tonbox/internal/booster"
	boosterdomain "github.com/tonbox-app/tonbox/internal/booster/domain"
	"github.com/tonbox-app/tonbox/internal/cache"
	"github.com/tonbox-app/tonbox/internal/config"
	"github.com/tonbox-app/tonbox/internal/leaderboard"
	leaderboarddomain "github.com/tonbox-app/tonbox/internal/leaderboard/domain"
	"github.com/tonbox-app/tonbox/internal/nft"
	nftdomain "github.com/tonbox-app/tonbox/internal/nft/domain"
	obsmetrics "github.com/tonbox-app/tonbox/internal/observability/metrics"
	obstracing "github.com/tonbox-app/tonbox/internal/observability/tracing"
	paymentprovider "github.com/tonbox-app/tonbox/internal/providers/payment"
	"github.com/tonbox-app/tonbox/internal/ratelimit"
	"github.com/tonbox-app/tonbox/internal/referral"
	referraldomain "github.com/tonbox-app/tonbox/internal/referral/domain"
	"github.com/tonbox-app/tonbox/internal/task"
	taskdomain "github.com/tonbox-app/tonbox/internal/task/domain"
	"github.com/tonbox-app/tonbox/internal/user"
	userdomain "github.com/tonbox-app/tonbox/internal/user/domain"
)

var Module = fx.Module("http.server",
	config.Module,
	fx.Provide(registerGin),
	cache.Module,
	ratelimit.Module,
	paymentprovider.Module,
	user.Module,
	referral.Module,
	achievement.Module,
	task.Module,
	nft.Module,
	booster.Module,
	leaderboard.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server starting", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
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
	engine *gin.Engine
	cfg    config.Config
	log    *zap.Logger

	userSvc        userdomain.Service
	referralSvc    referraldomain.Service
	taskSvc        taskdomain.Service
	nftSvc         nftdomain.Service
	boosterSvc     boosterdomain.Service
	achievementSvc achievementdomain.Service
	leaderboardSvc leaderboarddomain.Service

	rewards *config.RewardsConfigHolder
	limiter *ratelimit.ActionLimiter
}

type ServerParams struct {
	fx.In

	Gin            *gin.Engine
	Cfg            config.Config
	Log            *zap.Logger
	UserSvc        userdomain.Service
	ReferralSvc    referraldomain.Service
	TaskSvc        taskdomain.Service
	NFTSvc         nftdomain.Service
	BoosterSvc     boosterdomain.Service
	AchievementSvc achievementdomain.Service
	LeaderboardSvc leaderboarddomain.Service
	Rewards        *config.RewardsConfigHolder
	Limiter        *ratelimit.ActionLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:         p.Gin,
		cfg:            p.Cfg,
		log:            p.Log.Named("server"),
		userSvc:        p.UserSvc,
		referralSvc:    p.ReferralSvc,
		taskSvc:        p.TaskSvc,
		nftSvc:         p.NFTSvc,
		boosterSvc:     p.BoosterSvc,
		achievementSvc: p.AchievementSvc,
		leaderboardSvc: p.LeaderboardSvc,
		rewards:        p.Rewards,
		limiter:        p.Limiter,
	}

	svc.registerAPIRoutes()
	svc.registerAdminRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Users --------
	api.POST("/users", s.CreateUser)
	api.GET("/users/:id", s.GetUser)
	api.GET("/users/:id/achievements", s.ListUserAchievements)

	// -------- Referrals --------
	api.POST("/referrals/apply", s.ApplyReferralCode)
	api.GET("/referrals/:id/history", s.ReferralHistory)
	api.GET("/referrals/tiers", s.ListReferralTiers)

	// -------- Tasks --------
	api.POST("/tasks/check-in", s.CheckIn)
	api.POST("/tasks/invite/complete", s.CompleteInviteTask)
	api.POST("/tasks/early-adopter/complete", s.CompleteEarlyAdopter)
	api.POST("/tasks/wallet-analysis/complete", s.CompleteWalletAnalysis)

	// -------- NFT --------
	api.GET("/nft/collections", s.ListCollections)
	api.GET("/nft/stats", s.NFTStats)
	api.POST("/nft/claim", s.ClaimNFT)

	// -------- Booster --------
	api.POST("/booster/purchase", s.PurchaseBooster)
	api.GET("/booster/:id", s.BoosterStatus)

	// -------- Achievements --------
	api.GET("/achievements", s.ListAchievements)
	api.POST("/achievements/unlock", s.UnlockAchievement)

	// -------- Leaderboard --------
	api.GET("/leaderboard", s.Leaderboard)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin", s.AdminRequired())

	admin.GET("/users", s.AdminListUsers)
	admin.PATCH("/users/:id/points", s.AdminAdjustPoints)
	admin.DELETE("/users/:id", s.AdminDeleteUser)
	admin.GET("/referrals/recent", s.AdminRecentReferrals)
	admin.PATCH("/nft/collections/:id", s.AdminUpdateCollection)
	admin.POST("/leaderboard/rollup", s.AdminLeaderboardRollup)
}
