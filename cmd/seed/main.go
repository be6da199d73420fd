package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"strings"

	"suryawash/internal/config"
	"suryawash/internal/database"
	"suryawash/internal/domain"
	"suryawash/internal/identity"
	"suryawash/internal/modules/admin"
	"suryawash/internal/modules/auth"
	"suryawash/internal/modules/catalog"
	"suryawash/internal/pkg/cache"
	jwtsvc "suryawash/internal/pkg/jwt"
	"suryawash/internal/repository"

	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

type seedService struct {
	name        string
	price       float64
	description string
	features    []string
	icon        string
	gradient    string
}

type seedPlan struct {
	id          string
	name        string
	price       float64
	period      string
	features    []string
	recommended bool
	icon        string
}

var services = []seedService{
	{
		name:        "Bike Wash",
		price:       100,
		description: "Complete bike cleaning including body wash, chain cleaning, and polish. Your bike will shine like new!",
		features:    []string{"Full body wash", "Chain cleaning & lubrication", "Dashboard polish", "Tire shine"},
		icon:        "fas fa-motorcycle",
		gradient:    "linear-gradient(135deg, #667eea 0%, #764ba2 100%)",
	},
	{
		name:        "Car Wash",
		price:       500,
		description: "Premium car wash service including exterior wash, interior cleaning, and detailing. Drive away in a spotless car!",
		features:    []string{"Exterior body wash", "Interior vacuuming", "Dashboard & console cleaning", "Window cleaning", "Tire shine & polish"},
		icon:        "fas fa-car",
		gradient:    "linear-gradient(135deg, #f093fb 0%, #f5576c 100%)",
	},
}

var plans = []seedPlan{
	{
		id:     domain.PlanMonthly,
		name:   "Monthly Membership",
		price:  29,
		period: "per month",
		features: []string{
			"Basic vehicle servicing", "Oil change included", "Emergency roadside assistance",
			"Priority booking", "Free vehicle wash", "10% discount on parts",
		},
		icon: "fas fa-calendar-alt",
	},
	{
		id:     domain.PlanHalfYearly,
		name:   "Half-Yearly Membership",
		price:  149,
		period: "per 6 months",
		features: []string{
			"All monthly benefits", "Free tire rotation", "Battery check & service", "AC system inspection",
			"Priority service", "15% discount on parts", "Free towing service",
		},
		recommended: true,
		icon:        "fas fa-star",
	},
	{
		id:     domain.PlanYearly,
		name:   "Yearly Membership",
		price:  269,
		period: "per year",
		features: []string{
			"All half-yearly benefits", "Full vehicle maintenance", "Free comprehensive inspections",
			"Brake system service", "Premium 24/7 support", "20% discount on parts",
			"Free pickup & delivery", "Complimentary detailing",
		},
		icon: "fas fa-crown",
	},
}

func main() {
	withAdmin := flag.Bool("admin", true, "create the admin from SEED_ADMIN_EMAIL/SEED_ADMIN_PASSWORD when set")
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config invalid:", err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}
	log.Println("Running AutoMigrate...")
	if err := database.Migrate(db, repository.Models()...); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	ctx := context.Background()
	catalogRepo := repository.NewCatalogRepository(db)
	catalogService := catalog.NewService(catalogRepo, nil)

	// ================== SERVICES ==================
	for _, s := range services {
		s := s
		id, err := catalogService.SaveService(ctx, "", catalog.ServiceInput{
			Name:        &s.name,
			Price:       &s.price,
			Description: &s.description,
			Features:    &s.features,
			Icon:        &s.icon,
			Gradient:    &s.gradient,
		})
		if err != nil {
			log.Fatalf("seed service %s: %v", s.name, err)
		}
		log.Printf("Seeded service: %s (%s)", s.name, id)
	}

	// ================== MEMBERSHIP PLANS ==================
	for _, p := range plans {
		p := p
		err := catalogRepo.MergePlan(ctx, p.id, domain.PlanPatch{
			Name:        &p.name,
			Price:       &p.price,
			Period:      &p.period,
			Features:    &p.features,
			Recommended: &p.recommended,
			Icon:        &p.icon,
		}, true)
		if err != nil {
			log.Fatalf("seed plan %s: %v", p.id, err)
		}
		log.Printf("Seeded plan: %s", p.name)
	}

	// ================== ADMIN ==================
	email := strings.TrimSpace(os.Getenv("SEED_ADMIN_EMAIL"))
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if *withAdmin && email != "" && password != "" {
		seedAdmin(ctx, cfg, db, email, password)
	}

	log.Println("Seeding complete!")
}

func seedAdmin(ctx context.Context, cfg *config.Config, db *gorm.DB, email, password string) {
	mem := cache.NewMemory()
	defer mem.Close()

	profiles := repository.NewProfileRepository(db)
	admins := repository.NewAdminRepository(db)
	provider := identity.NewLocalProvider(
		repository.NewAccountRepository(db),
		repository.NewSessionRepository(db),
		jwtsvc.New(cfg.JWTSecret, cfg.SessionTTL),
		mem,
		identity.NewLogSender(nil),
		identity.Config{ChallengeSecret: cfg.ChallengeSecret, ChallengeTTL: cfg.ChallengeTTL, OTPTTL: cfg.OTPTTL},
		nil,
	)

	name := os.Getenv("SEED_ADMIN_NAME")
	if name == "" {
		name = "Surya Admin"
	}
	phone := os.Getenv("SEED_ADMIN_PHONE")
	if phone == "" {
		phone = "0000000000"
	}

	authService := auth.NewService(provider, profiles, admins, nil)
	_, err := authService.Register(ctx, auth.RegisterRequest{FullName: name, Email: email, Phone: phone, Password: password}, identity.ClientMeta{UserAgent: "seed"})
	var failure *auth.Failure
	switch {
	case err == nil:
		log.Printf("Created admin account: %s", email)
	case errors.As(err, &failure) && failure.Code == identity.CodeEmailAlreadyInUse:
		log.Printf("Admin account already exists: %s", email)
	default:
		log.Fatalf("create admin account: %v", err)
	}

	if _, err := admin.NewService(profiles, admins, provider, nil).GrantAdmin(ctx, email); err != nil {
		log.Fatalf("grant admin: %v", err)
	}
	log.Printf("Granted admin: %s", email)
}
