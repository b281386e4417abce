package main

import (
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/db"
	"app/internal/infra/redislock"
	infraRepo "app/internal/infra/repository"
	"app/internal/logger"
	"app/internal/server"
	"app/internal/usecase"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	// .envは無くてもよい（本番は環境変数で渡す）
	_ = godotenv.Load("../.env")

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New("marketplace-api", cfg.GoEnv)

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.Inventory{},
		&model.InventoryReservation{},
		&model.Cart{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
		&model.Discount{},
	); err != nil {
		log.Fatal().Err(err).Msg("migrate failed")
	}

	//ロック用Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	locker := redislock.NewLocker(redisClient)

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	inventoryRepo := infraRepo.NewInventoryGormRepository(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	cartItemRepo := infraRepo.NewCartItemGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	discountRepo := infraRepo.NewDiscountGormRepository(gormDB)

	//Usecase生成
	reservations := usecase.NewReservationManager(
		locker,
		inventoryRepo,
		cfg.LockLease,
		cfg.LockRetryTimes,
		cfg.LockRetryDelay,
		log,
	)

	authUC := usecase.NewAuthUsecase(userRepo, cfg.JWTSecret, 15*time.Minute)
	productUC := usecase.NewProductUsecase(productRepo, inventoryRepo, log)
	cartUC := usecase.NewCartUsecase(cartRepo, cartItemRepo, productRepo)
	discountUC := usecase.NewDiscountUsecase(discountRepo, productRepo)
	checkoutUC := usecase.NewCheckoutUsecase(
		cartRepo,
		cartItemRepo,
		productRepo,
		orderRepo,
		discountUC,
		reservations,
		log,
	)
	inventoryUC := usecase.NewInventoryUsecase(inventoryRepo, productRepo)
	orderUC := usecase.NewOrderUsecase(orderRepo)

	//Handler生成
	handlers := server.Handlers{
		Auth:      handler.NewAuthHandler(authUC),
		Product:   handler.NewProductHandler(productUC),
		Cart:      handler.NewCartHandler(cartUC),
		Checkout:  handler.NewCheckoutHandler(checkoutUC),
		Discount:  handler.NewDiscountHandler(discountUC),
		Inventory: handler.NewInventoryHandler(inventoryUC),
		Order:     handler.NewOrderHandler(orderUC),
	}

	//Server起動
	log.Info().Str("port", cfg.Port).Msg("starting api server")
	if err := server.Start(cfg, handlers); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
