package container

import (
	"context"
	"fmt"
	"log"
	"time"

	"library-lending-backend/internal/config"
	infraCache "library-lending-backend/internal/infrastructure/cache"
	"library-lending-backend/internal/infrastructure/database"
	"library-lending-backend/internal/infrastructure/email"
	"library-lending-backend/internal/infrastructure/memstore"
	"library-lending-backend/internal/infrastructure/queue"
	"library-lending-backend/pkg/cache"
	"library-lending-backend/pkg/jwt"
	"library-lending-backend/pkg/logger"

	auditHandler "library-lending-backend/internal/domains/audit/handler"
	auditRepo "library-lending-backend/internal/domains/audit/repository"
	auditService "library-lending-backend/internal/domains/audit/service"
	bookHandler "library-lending-backend/internal/domains/book/handler"
	bookRepo "library-lending-backend/internal/domains/book/repository"
	bookService "library-lending-backend/internal/domains/book/service"
	lendingHandler "library-lending-backend/internal/domains/lending/handler"
	lendingRepo "library-lending-backend/internal/domains/lending/repository"
	lendingService "library-lending-backend/internal/domains/lending/service"
	notificationService "library-lending-backend/internal/domains/notification/service"
	overdueHandler "library-lending-backend/internal/domains/overdue/handler"
	overdueJob "library-lending-backend/internal/domains/overdue/job"
	overdueService "library-lending-backend/internal/domains/overdue/service"
	readerHandler "library-lending-backend/internal/domains/reader/handler"
	readerRepo "library-lending-backend/internal/domains/reader/repository"
	readerService "library-lending-backend/internal/domains/reader/service"

	"github.com/hibiken/asynq"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container chứa toàn bộ dependency graph, dùng chung cho cmd/api và cmd/worker
type Container struct {
	// ========================================
	// INFRASTRUCTURE LAYER
	// ========================================
	Config      *config.Config
	DB          *database.PostgresDB // nil khi STORAGE_DRIVER=memory
	Store       *memstore.Store      // nil khi STORAGE_DRIVER=postgres
	Redis       *infraCache.RedisClient
	Cache       cache.Cache
	AsynqClient *asynq.Client // nil khi Redis tắt
	JWTManager  *jwt.Manager
	Mailer      *email.ResilientMailer

	// ========================================
	// REPOSITORY LAYER
	// ========================================
	BookRepo    bookRepo.RepositoryInterface
	ReaderRepo  readerRepo.RepositoryInterface
	LendingRepo lendingRepo.RepositoryInterface
	AuditRepo   auditRepo.RepositoryInterface

	// ========================================
	// SERVICE LAYER
	// ========================================
	BookService    bookService.ServiceInterface
	ReaderService  readerService.ServiceInterface
	AuditRecorder  *auditService.Recorder
	LendingService *lendingService.LendingService
	Dispatcher     *notificationService.Dispatcher
	OverdueService *overdueService.OverdueService

	// ========================================
	// HANDLER LAYER
	// ========================================
	BookHandler    *bookHandler.BookHandler
	ReaderHandler  *readerHandler.ReaderHandler
	LendingHandler *lendingHandler.LendingHandler
	OverdueHandler *overdueHandler.OverdueHandler
	AuditHandler   *auditHandler.AuditHandler

	// Job handlers (worker)
	NotifyOverdueJob *overdueJob.NotifyOverdueHandler

	stopMonitor context.CancelFunc
}

// ========================================
// CONSTRUCTOR: BUILD CONTAINER
// ========================================

// NewContainer: Config → Logger → Storage → Cache/Queue → Repositories → Services → Handlers
func NewContainer() (*Container, error) {
	log.Println("🔧 Initializing DI Container...")

	c := &Container{}

	// ========================================
	// STEP 1: LOAD CONFIGURATION
	// ========================================
	log.Println("📋 Loading configuration...")

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	logger.Init(cfg.App.Environment, cfg.App.LogLevel)
	log.Printf("✅ Config loaded (Environment: %s, Storage: %s)", cfg.App.Environment, cfg.Storage.Driver)

	// ========================================
	// STEP 2: INITIALIZE STORAGE
	// ========================================
	if err := c.initStorage(); err != nil {
		return nil, err
	}

	// ========================================
	// STEP 3: INITIALIZE CACHE + QUEUE CLIENT
	// ========================================
	c.initCache()

	c.JWTManager = jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessTokenExpiry)
	c.Mailer = email.NewMailer(cfg.Email, cfg.Notification)

	// ========================================
	// STEP 4-6: REPOSITORIES → SERVICES → HANDLERS
	// ========================================
	log.Println("📦 Initializing repositories...")
	c.initRepositories()

	log.Println("⚙️  Initializing services...")
	c.initServices()

	log.Println("🎯 Initializing handlers...")
	c.initHandlers()

	log.Println("🎉 DI Container initialized successfully")
	return c, nil
}

// ========================================
// PRIVATE INITIALIZATION METHODS
// ========================================

func (c *Container) initStorage() error {
	if c.Config.Storage.Driver == config.StorageDriverMemory {
		log.Println("🧠 Using in-memory storage (data is lost on restart)")
		c.Store = memstore.New()
		return nil
	}

	log.Println("🗄️  Connecting to PostgreSQL...")
	db := database.NewPostgresDB(c.Config.Database)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.HealthCheck(context.Background()); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	c.DB = db

	monitorCtx, stop := context.WithCancel(context.Background())
	c.stopMonitor = stop
	go db.MonitorPoolHealth(monitorCtx, 30*time.Second)

	log.Println("✅ Database connected")
	return nil
}

func (c *Container) initCache() {
	redisCfg := c.Config.Redis
	if !redisCfg.Enabled {
		log.Println("⚠️  Redis disabled, using in-memory cache; async jobs unavailable")
		c.Cache = cache.NewMemoryCache()
		return
	}

	log.Println("🔴 Connecting to Redis...")
	client := infraCache.NewRedisClient(redisCfg.Host, redisCfg.Password, redisCfg.DB)
	if err := client.Connect(context.Background()); err != nil {
		// Redis không critical: run lock bỏ qua khi cache lỗi
		log.Printf("⚠️  Redis connection failed (non-critical): %v", err)
	} else {
		log.Println("✅ Redis connected")
	}

	c.Redis = client
	c.Cache = infraCache.NewRedisCache(client)
	c.AsynqClient = queue.NewClient(redisCfg)
}

func (c *Container) initRepositories() {
	if c.Store != nil {
		c.BookRepo = bookRepo.NewMemoryRepository(c.Store)
		c.ReaderRepo = readerRepo.NewMemoryRepository(c.Store)
		c.LendingRepo = lendingRepo.NewMemoryRepository(c.Store)
		c.AuditRepo = auditRepo.NewMemoryRepository(c.Store)
		return
	}

	pool := c.DB.Pool
	c.BookRepo = bookRepo.NewPostgresRepository(pool)
	c.ReaderRepo = readerRepo.NewPostgresRepository(pool)
	c.LendingRepo = lendingRepo.NewPostgresRepository(pool)
	c.AuditRepo = auditRepo.NewPostgresRepository(pool)
}

func (c *Container) initServices() {
	cfg := c.Config

	c.BookService = bookService.NewBookService(c.BookRepo)
	c.ReaderService = readerService.NewReaderService(c.ReaderRepo)
	c.AuditRecorder = auditService.NewRecorder(c.AuditRepo, cfg.Audit.WriteTimeout)

	c.LendingService = lendingService.NewLendingService(
		c.LendingRepo,
		c.ReaderRepo,    // Reader Directory
		c.AuditRecorder, // Audit Sink
		cfg.Lending,
	)

	c.Dispatcher = notificationService.NewDispatcher(
		c.ReaderRepo,
		c.LendingRepo,
		c.Mailer,
		cfg.App.Name,
	)

	c.OverdueService = overdueService.NewOverdueService(
		c.LendingRepo,
		c.Dispatcher,
		c.Cache,
		cfg.Notification,
	)
}

func (c *Container) initHandlers() {
	c.BookHandler = bookHandler.NewBookHandler(c.BookService)
	c.ReaderHandler = readerHandler.NewReaderHandler(c.ReaderService)
	c.LendingHandler = lendingHandler.NewLendingHandler(
		c.LendingService,
		c.Config.Lending.DefaultLoanDays,
		c.Config.Lending.MaxLoanDays,
	)
	c.AuditHandler = auditHandler.NewAuditHandler(c.AuditRecorder)

	// interface giữ nil thật khi không có asynq client
	var enqueuer overdueHandler.TaskEnqueuer
	if c.AsynqClient != nil {
		enqueuer = c.AsynqClient
	}
	c.OverdueHandler = overdueHandler.NewOverdueHandler(c.OverdueService, enqueuer)

	c.NotifyOverdueJob = overdueJob.NewNotifyOverdueHandler(c.OverdueService)
}

// ========================================
// CLEANUP
// ========================================

// Cleanup dọn dẹp resources khi shutdown
func (c *Container) Cleanup() {
	log.Println("🧹 Cleaning up container resources...")

	// audit ghi async, chờ trước khi đóng pool
	if c.AuditRecorder != nil {
		c.AuditRecorder.Wait()
	}

	if c.stopMonitor != nil {
		c.stopMonitor()
	}

	if c.AsynqClient != nil {
		if err := c.AsynqClient.Close(); err != nil {
			log.Printf("⚠️  Failed to close asynq client: %v", err)
		}
	}

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			log.Printf("⚠️  Failed to close database: %v", err)
		} else {
			log.Println("✅ Database connections closed")
		}
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Printf("⚠️  Failed to close Redis: %v", err)
		} else {
			log.Println("✅ Redis connections closed")
		}
	}

	log.Println("✅ Container cleanup completed")
}
