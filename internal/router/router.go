package router

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/sokomart/internal/cache"
	"github.com/sokomart/internal/config"
	"github.com/sokomart/internal/constants"
	adminhandlers "github.com/sokomart/internal/http/handlers/admin"
	publichandlers "github.com/sokomart/internal/http/handlers/public"
	"github.com/sokomart/internal/logger"
	"github.com/sokomart/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按前台/员工后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "sk"
	}
	redisClient := cache.Client()
	bidRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:bid", redisPrefix),
		WindowSeconds: cfg.Security.BidRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.BidRateLimit.MaxAttempts,
		MessageKey:    "error.bid_rate_limited",
	}
	scanRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:scan", redisPrefix),
		WindowSeconds: cfg.Security.ScanRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.ScanRateLimit.MaxAttempts,
	}
	authz := c.AuthzService

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		public := apiV1.Group("/public")
		{
			public.GET("/config", publicHandler.GetConfig)
			public.GET("/listings", publicHandler.ListListings)
			public.GET("/listings/:id", publicHandler.GetListing)
			public.GET("/listings/:id/bids", publicHandler.ListListingBids)
			public.GET("/listings/:id/live", publicHandler.ListingLive)
		}

		// 支付回调（无需鉴权，始终应答已受理）
		apiV1.POST("/payments/mpesa/callback", publicHandler.MpesaCallback)
		apiV1.POST("/payments/mpesa/callback/:token", publicHandler.MpesaCallback)

		// 用户接口（需鉴权）
		user := apiV1.Group("")
		user.Use(ProfileAuthMiddleware(c.IdentityService))
		{
			user.GET("/me", publicHandler.GetCurrentProfile)
			user.POST("/bids",
				RequireCapability(authz, constants.CapObjectBids, constants.CapActionPlace),
				RateLimitMiddleware(redisClient, bidRule, KeyByProfile),
				publicHandler.PlaceBid,
			)
			user.POST("/listings", publicHandler.CreateListing)
			user.POST("/orders", publicHandler.CreateOrder)
			user.GET("/orders", publicHandler.ListOrders)
			user.GET("/orders/:id", publicHandler.GetOrder)
			user.GET("/orders/:id/payments", publicHandler.ListOrderPayments)
			user.POST("/payments/mpesa", publicHandler.InitiateMpesaPayment)
			user.GET("/seller/revenue", publicHandler.GetSellerRevenue)
		}

		// 员工接口（需鉴权 + 员工能力）
		staff := apiV1.Group("/staff")
		staff.Use(ProfileAuthMiddleware(c.IdentityService))
		staff.Use(RequireCapability(authz, constants.CapObjectStaff, constants.CapActionAccess))
		{
			staff.GET("/orders", adminHandler.GetOrders)
			staff.GET("/orders/:id", adminHandler.GetOrder)
			staff.POST("/orders/:id/advance", adminHandler.AdvanceOrder)
			staff.POST("/orders/:id/cash-confirm", adminHandler.ConfirmCash)
			staff.PATCH("/orders/:id/assign", adminHandler.AssignOrder)
			staff.POST("/orders/:id/cancel", adminHandler.CancelOrder)
			staff.GET("/orders/:id/events", adminHandler.GetOrderEvents)
			staff.POST("/orders/scan", RateLimitMiddleware(redisClient, scanRule, KeyByProfile), adminHandler.ScanOrder)
			staff.POST("/listings/:id/approve", adminHandler.ApproveListing)
			staff.POST("/listings/:id/reject", adminHandler.RejectListing)
		}
	}

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok", "feed": c.FeedTransport.Driver})
	})

	return r
}
