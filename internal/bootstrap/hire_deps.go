package bootstrap

import (
	"context"
	"time"

	"hire_server/adapter/out/blob"
	"hire_server/adapter/out/keyvalue"
	"hire_server/adapter/out/messaging"
	"hire_server/adapter/out/mongodb"
	"hire_server/adapter/out/persistence"
	"hire_server/config"
	in "hire_server/core/port/in"
	"hire_server/core/port/out"
	"hire_server/core/service/application"
	"hire_server/core/service/auth"
	"hire_server/core/service/common"
	"hire_server/core/service/company"
	"hire_server/core/service/job"
	"hire_server/core/service/user"
	"hire_server/infra/database"
	"hire_server/pkg/cache"
	"hire_server/pkg/logger"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// Dependencies wires the whole dependency graph: stores, adapters, and
// services. MongoDB is the record store and is required; Postgres
// (audit) and Redis (cache, revocation, rate limit) degrade gracefully
// when unreachable.
type Dependencies struct {
	Config *config.Config

	Mongo *mongo.Client
	SQLDB *sqlx.DB
	Redis *redis.Client

	// Repositories
	UserRepo    out.UserRepository
	CompanyRepo out.CompanyRepository
	JobRepo     out.JobRepository
	AppRepo     out.ApplicationRepository
	AuditRepo   out.AuditRepository

	// Outbound adapters
	Cache      *cache.RedisCache
	TokenStore out.TokenStore
	BlobStore  out.BlobStore

	// Auth
	TokenManager *auth.TokenManager

	// Services
	UserService        in.UserService
	CompanyService     in.CompanyService
	JobService         in.JobService
	ApplicationService in.ApplicationService
}

func NewDependencies(cfg *config.Config) (*Dependencies, func(), error) {
	deps := &Dependencies{Config: cfg}
	var cleanups []func()

	// MongoDB (record store, required)
	mongoClient, err := mongodb.NewClient(cfg.MongoDBURL)
	if err != nil {
		return nil, nil, err
	}
	deps.Mongo = mongoClient
	cleanups = append(cleanups, func() {
		_ = mongoClient.Disconnect(context.Background())
	})

	db := mongoClient.Database(cfg.MongoDBName)
	userAdapter := mongodb.NewUserAdapter(db)
	companyAdapter := mongodb.NewCompanyAdapter(db)
	jobAdapter := mongodb.NewJobAdapter(db)
	appAdapter := mongodb.NewApplicationAdapter(db)

	indexCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	for _, ensure := range []func(context.Context) error{
		userAdapter.EnsureIndexes,
		companyAdapter.EnsureIndexes,
		jobAdapter.EnsureIndexes,
		appAdapter.EnsureIndexes,
	} {
		if err := ensure(indexCtx); err != nil {
			cleanup(cleanups)
			return nil, nil, err
		}
	}

	deps.UserRepo = userAdapter
	deps.CompanyRepo = companyAdapter
	deps.JobRepo = jobAdapter
	deps.AppRepo = appAdapter
	logger.Info("MongoDB record store initialized (db=%s)", cfg.MongoDBName)

	// Redis (token revocation, listing cache, rate limiting, audit stream)
	if cfg.RedisURL != "" {
		redisClient, err := database.NewRedis(cfg.RedisURL)
		if err != nil {
			logger.Warn("Redis connection failed, running without cache and revocation: %v", err)
		} else {
			deps.Redis = redisClient
			cleanups = append(cleanups, func() { _ = redisClient.Close() })
			deps.Cache = cache.NewRedisCache(redisClient)
			deps.TokenStore = keyvalue.NewTokenStore(deps.Cache)
			logger.Info("Redis initialized")
		}
	}

	// PostgreSQL (append-only audit log)
	if cfg.DatabaseURL != "" {
		sqlDB, err := database.NewPostgres(cfg.DatabaseURL)
		if err != nil {
			logger.Warn("Postgres connection failed, audit trail disabled: %v", err)
		} else {
			deps.SQLDB = sqlDB
			cleanups = append(cleanups, func() { _ = sqlDB.Close() })

			auditAdapter := persistence.NewAuditAdapter(sqlDB)
			schemaCtx, cancelSchema := context.WithTimeout(context.Background(), 30*time.Second)
			err := auditAdapter.EnsureSchema(schemaCtx)
			cancelSchema()
			if err != nil {
				logger.Warn("audit schema setup failed, audit trail disabled: %v", err)
			} else {
				deps.AuditRepo = auditAdapter
				if deps.Redis != nil {
					// Postgres stays the source of truth; the Redis
					// stream is a best-effort live feed.
					deps.AuditRepo = messaging.NewAuditFanout(auditAdapter, messaging.NewAuditStream(deps.Redis))
				}
				logger.Info("audit trail initialized")
			}
		}
	}

	// Blob store (resumes, logos, profile photos)
	if cfg.UploadURL != "" {
		deps.BlobStore = blob.NewAdapter(blob.Config{
			UploadURL:    cfg.UploadURL,
			UploadPreset: cfg.UploadPreset,
			Folder:       cfg.UploadFolder,
		})
		logger.Info("blob store initialized")
	} else {
		logger.Warn("UPLOAD_URL not set, file uploads disabled")
	}

	deps.TokenManager = auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)

	audit := common.NewAuditRecorder(deps.AuditRepo)

	deps.UserService = user.NewService(
		deps.UserRepo,
		deps.CompanyRepo,
		deps.JobRepo,
		deps.AppRepo,
		deps.BlobStore,
		deps.TokenStore,
		deps.TokenManager,
		audit,
		cfg.AdminSecretKey,
		cfg.BcryptCost,
	)
	deps.CompanyService = company.NewService(
		deps.CompanyRepo,
		deps.JobRepo,
		deps.AppRepo,
		deps.BlobStore,
		listingCache(deps.Cache),
		audit,
	)
	deps.JobService = job.NewService(
		deps.JobRepo,
		deps.CompanyRepo,
		deps.AppRepo,
		listingCache(deps.Cache),
		cfg.JobListCacheTTL,
		audit,
	)
	deps.ApplicationService = application.NewService(
		deps.AppRepo,
		deps.JobRepo,
		deps.UserRepo,
		audit,
	)

	return deps, func() { cleanup(cleanups) }, nil
}

// listingCache keeps a nil *RedisCache from becoming a non-nil
// out.ListingCache interface.
func listingCache(c *cache.RedisCache) out.ListingCache {
	if c == nil {
		return nil
	}
	return c
}

func cleanup(fns []func()) {
	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}
