package main

import (
	"time"

	"github.com/sokomart/internal/config"
	"github.com/sokomart/internal/constants"
	"github.com/sokomart/internal/logger"
	"github.com/sokomart/internal/models"
	"github.com/sokomart/internal/repository"
	"github.com/sokomart/internal/service"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 演示档案
	profiles := []models.Profile{
		{Phone: "+254700000101", DisplayName: "Wanjiru Buyer", Role: constants.RoleBuyer, Town: "Nakuru"},
		{Phone: "+254700000102", DisplayName: "Otieno Seller", Role: constants.RoleSeller, Town: "Nakuru"},
		{Phone: "+254700000103", DisplayName: "Kamau Agent", Role: constants.RoleAgent, Town: "Nakuru"},
		{Phone: "+254700000104", DisplayName: "Achieng Agent", Role: constants.RoleAgent, Town: "Kisumu"},
		{Phone: "+254700000105", DisplayName: "Mwangi Manager", Role: constants.RoleManager, Town: "Nakuru"},
	}
	seeded := make(map[string]*models.Profile, len(profiles))
	for i := range profiles {
		profile := profiles[i]
		profile.Status = constants.ProfileStatusActive
		var existing models.Profile
		if err := models.DB.Where("phone = ?", profile.Phone).Limit(1).Find(&existing).Error; err != nil {
			stdLog.Printf("Failed to load profile %s: %v", profile.Phone, err)
			continue
		}
		if existing.ID != 0 {
			stdLog.Printf("Profile already exists: %s (%s)", existing.DisplayName, existing.Role)
			seeded[existing.Phone] = &existing
			continue
		}
		if err := models.DB.Create(&profile).Error; err != nil {
			stdLog.Printf("Failed to create profile %s: %v", profile.Phone, err)
			continue
		}
		stdLog.Printf("Created profile: %s (%s)", profile.DisplayName, profile.Role)
		seeded[profile.Phone] = &profile
	}

	seller := seeded["+254700000102"]
	if seller == nil {
		stdLog.Fatalf("Seller profile missing, abort seeding listings")
	}

	// 演示商品
	auctionEnd := time.Now().Add(time.Duration(constants.AuctionMaxDurationHour) * time.Hour)
	listings := []models.Listing{
		{
			Title:          "Vintage Raleigh bicycle",
			Description:    "Serviced last month, new brake pads.",
			Category:       "bicycles",
			ListingType:    constants.ListingTypeAuction,
			Price:          4500,
			AuctionEndTime: &auctionEnd,
		},
		{
			Title:          "Hand-woven kiondo basket",
			Description:    "Sisal and leather, medium size.",
			Category:       "crafts",
			ListingType:    constants.ListingTypeAuction,
			Price:          800,
			AuctionEndTime: &auctionEnd,
		},
		{
			Title:       "Jiko charcoal stove",
			Description: "Energy saving, ceramic lined.",
			Category:    "home",
			ListingType: constants.ListingTypeFixed,
			Price:       1200,
		},
	}
	for _, listing := range listings {
		var count int64
		if err := models.DB.Model(&models.Listing{}).Where("seller_id = ? AND title = ?", seller.ID, listing.Title).Count(&count).Error; err != nil {
			stdLog.Printf("Failed to check listing %s: %v", listing.Title, err)
			continue
		}
		if count > 0 {
			stdLog.Printf("Listing already exists: %s", listing.Title)
			continue
		}
		listing.SellerID = seller.ID
		listing.Town = seller.Town
		listing.Status = constants.ListingStatusActive
		listing.IsApproved = true
		if err := models.DB.Create(&listing).Error; err != nil {
			stdLog.Printf("Failed to create listing %s: %v", listing.Title, err)
			continue
		}
		stdLog.Printf("Created listing: %s (%s)", listing.Title, listing.ListingType)
	}

	// 开发环境令牌
	if cfg.Server.Mode == "release" {
		stdLog.Printf("Release mode, skip issuing dev tokens")
		return
	}
	identity := service.NewIdentityService(cfg.AuthJWT, repository.NewProfileRepository(models.DB))
	for _, profile := range profiles {
		current := seeded[profile.Phone]
		if current == nil {
			continue
		}
		token, expiresAt, err := identity.IssueToken(current, 0)
		if err != nil {
			stdLog.Printf("Failed to issue token for %s: %v", current.Phone, err)
			continue
		}
		stdLog.Printf("Dev token %-8s %-16s expires %s\n  %s", current.Role, current.DisplayName, expiresAt.Format(time.RFC3339), token)
	}
}
