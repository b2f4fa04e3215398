package main

import (
	"time"

	"vegeapp/internal/config"
	"vegeapp/internal/domain/model"
	"vegeapp/internal/handler"
	"vegeapp/internal/infra/cache"
	"vegeapp/internal/infra/db"
	infraRepo "vegeapp/internal/infra/repository"
	"vegeapp/internal/server"
	"vegeapp/internal/usecase"
	auth "vegeapp/internal/usecase/auth_usecase"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

type jwtIssuer struct {
	secret    []byte
	accessTTL time.Duration
}

func (i *jwtIssuer) Issue(user model.User) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(i.accessTTL)

	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": string(user.Role),
		"tv":   user.TokenVersion,
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

func main() {
	// .envは無くても動く（本番は環境変数で渡す）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		panic(err)
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.Product{},
		&model.Cart{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
		&model.InventoryAdjustment{},
		&model.AuditLog{},
		&model.Category{},
		&model.UnitOfMeasure{},
		&model.PackingUnit{},
		&model.Vegetable{},
		&model.Farmer{},
		&model.Agent{},
		&model.Staff{},
		&model.MerchantEntry{},
		&model.MerchantBag{},
	); err != nil {
		panic(err)
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	rtRepo := infraRepo.NewRefreshTokenGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	orderItemRepo := infraRepo.NewOrderItemGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	merchantRepo := infraRepo.NewMerchantGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//usecaseに渡す部品
	idGen := &uuidGenerator{}
	clock := &realClock{}
	hasher := auth.NewBcryptPasswordHasher(12)
	verifier := auth.NewBcryptPasswordVerifier()
	issuer := &jwtIssuer{secret: []byte(cfg.JWTSecret), accessTTL: 15 * time.Minute}

	//REDIS_ADDRが空ならキャッシュなしで動かす
	var catalogCache usecase.CatalogCache
	if cfg.RedisAddr != "" {
		catalogCache = cache.NewProductListCache(cfg.RedisAddr, 5*time.Minute)
	}

	//注文イベントのWebSocket配信
	orderWSH := handler.NewOrderWSHandler()

	//Usecase生成
	registerUC := auth.NewRegisterUserUsecase(userRepo, hasher, idGen, clock)
	loginUC := auth.NewLoginUsecase(userRepo, rtRepo, verifier, issuer, idGen, clock)
	refreshUC := auth.NewRefreshUsecase(userRepo, rtRepo, issuer, idGen, clock)
	logoutUC := auth.NewLogoutUsecase(userRepo, rtRepo, clock)
	profileUC := auth.NewUpdateProfileUsecase(userRepo, clock)

	catalogUC := usecase.NewCatalogUsecase(productRepo, txManager, catalogCache)
	cartUC := usecase.NewCartUsecase(cartRepo, cartRepo, productRepo)
	orderUC := usecase.NewOrderUsecase(txManager, orderWSH)
	adminOrderUC := usecase.NewAdminOrderUsecase(txManager, orderWSH)
	auditUC := usecase.NewAuditUsecase(auditRepo)
	merchantUC := usecase.NewMerchantUsecase(merchantRepo)
	exportUC := usecase.NewExportUsecase(productRepo, orderRepo, orderItemRepo)

	categoryUC := usecase.NewMasterUsecase(infraRepo.NewMasterGormRepository[model.Category](gormDB))
	uomUC := usecase.NewMasterUsecase(infraRepo.NewMasterGormRepository[model.UnitOfMeasure](gormDB))
	packingUnitUC := usecase.NewMasterUsecase(infraRepo.NewMasterGormRepository[model.PackingUnit](gormDB))
	vegetableUC := usecase.NewMasterUsecase(infraRepo.NewMasterGormRepository[model.Vegetable](gormDB))
	farmerUC := usecase.NewMasterUsecase(infraRepo.NewMasterGormRepository[model.Farmer](gormDB))
	agentUC := usecase.NewMasterUsecase(infraRepo.NewMasterGormRepository[model.Agent](gormDB))
	staffUC := usecase.NewMasterUsecase(infraRepo.NewMasterGormRepository[model.Staff](gormDB))

	//Handler生成
	refreshTTL := 14 * 24 * time.Hour
	cookieSecure := cfg.GoEnv == "prod"

	handlers := server.Handlers{
		Auth:         handler.NewAuthHandler(registerUC, loginUC, refreshUC, logoutUC, profileUC, refreshTTL, cookieSecure),
		Product:      handler.NewProductHandler(catalogUC),
		AdminProduct: handler.NewAdminProductHandler(catalogUC),
		Cart:         handler.NewCartHandler(cartUC),
		Order:        handler.NewOrderHandler(orderUC),
		AdminOrder:   handler.NewAdminOrderHandler(adminOrderUC),
		OrderWS:      orderWSH,
		AuditLog:     handler.NewAuditLogHandler(auditUC),
		Master:       handler.NewMasterHandler(categoryUC, uomUC, packingUnitUC, vegetableUC, farmerUC, agentUC, staffUC),
		Merchant:     handler.NewMerchantHandler(merchantUC),
		Export:       handler.NewExportHandler(exportUC),
	}

	e := server.New(cfg, userRepo, handlers)

	if err := server.Start(e, cfg.Port); err != nil {
		panic(err)
	}
}
