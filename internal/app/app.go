// Package app содержит сборку зависимостей приложения
package app

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/RoGogDBD/canteen/internal/backend"
	"github.com/RoGogDBD/canteen/internal/config"
	"github.com/RoGogDBD/canteen/internal/config/db"
	"github.com/RoGogDBD/canteen/internal/imagecache"
	"github.com/RoGogDBD/canteen/internal/kafka"
	"github.com/RoGogDBD/canteen/internal/kvstore"
	"github.com/RoGogDBD/canteen/internal/projection"
	"github.com/RoGogDBD/canteen/internal/retry"
	"github.com/RoGogDBD/canteen/internal/session"
	"github.com/RoGogDBD/canteen/internal/validation"
)

// App содержит все зависимости приложения
type App struct {
	Config   *config.Config
	DBPool   *pgxpool.Pool
	Redis    *redis.Client
	Images   *imagecache.Cache
	Orders   *projection.Manager
	Sessions *session.Store
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewApp создает новое приложение.
func NewApp(cfg *config.Config) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())

	app := &App{
		Config: cfg,
		Redis:  redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr}),
		ctx:    ctx,
		cancel: cancel,
	}

	return app, nil
}

// Init выполняет инициализацию зависимостей приложения.
func (a *App) Init() error {
	// Инициализация БД (опциональна: без нее кэш изображений живет в Redis)
	if err := a.initDatabase(a.ctx); err != nil {
		log.Printf("Warning: cannot connect to DB: %v. Running without database.", err)
	}

	a.Sessions = session.NewStore(a.Redis, a.Config.Redis.SessionTTL)

	store := a.pickImageStore()
	fetcher := imagecache.NewHTTPFetcher(a.Config.ImageCache.FetchTimeout)
	a.Images = imagecache.New(store, fetcher, a.Config.ImageCache.MemMaxItems)
	log.Printf("Initialized image cache with max %d in-memory items", a.Config.ImageCache.MemMaxItems)

	validate := validation.New()
	backoff := retry.NewBackoff(a.Config.Backend.Backoff, a.Config.Backend.BackoffCap, true)
	source := backend.New(a.Config.Backend.BaseURL, a.Config.Backend.Timeout, validate, a.Config.Backend.MaxRetries, backoff)
	a.Orders = projection.NewManager(source, a.Config.Backend.PageSize)

	// Запуск потребителя канала событий статусов
	consumer := kafka.NewConsumer(a.Config.Kafka, a.Orders)
	go consumer.Run(a.ctx, a.Config.Kafka.Brokers, a.Config.Kafka.Topic, a.Config.Kafka.GroupID)

	return nil
}

// initDatabase инициализирует подключение к базе данных
func (a *App) initDatabase(ctx context.Context) error {
	if a.Config.Database.DSN == "" {
		log.Println("No DSN provided, running without database")
		return nil
	}

	dbPool, err := db.NewPool(ctx, a.Config.Database.DSN)
	if err != nil {
		return err
	}

	a.DBPool = dbPool
	log.Println("Database initialized successfully")

	return nil
}

// pickImageStore выбирает персистентный слой кэша изображений:
// Postgres при наличии БД, иначе Redis, в крайнем случае — память
// (кэш не переживет рестарт, но сервис остается работоспособным).
func (a *App) pickImageStore() kvstore.Store {
	if a.DBPool != nil {
		log.Println("Image cache persists to PostgreSQL")
		return kvstore.NewPostgres(a.DBPool)
	}
	if a.Config.Redis.Addr != "" {
		log.Println("Image cache persists to Redis")
		return kvstore.NewRedis(a.Redis, a.Config.ImageCache.RedisPrefix)
	}
	log.Println("Warning: no persistent store configured, image cache is in-memory only")
	return kvstore.NewMemory()
}

// Close освобождает все ресурсы приложения
func (a *App) Close() {
	log.Println("Shutting down application...")

	// Отменяем контекст (остановит потребителя Kafka)
	if a.cancel != nil {
		a.cancel()
	}

	if a.DBPool != nil {
		a.DBPool.Close()
		log.Println("Database connection closed")
	}

	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			log.Printf("redis close error: %v", err)
		}
	}

	log.Println("Application shutdown complete")
}

// Context возвращает контекст приложения
func (a *App) Context() context.Context {
	return a.ctx
}
