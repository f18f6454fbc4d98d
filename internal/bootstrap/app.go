package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	googleauth "aari-docs/internal/auth"
	"aari-docs/internal/comments"
	"aari-docs/internal/documents"
	"aari-docs/internal/events"
	"aari-docs/internal/imports"
	"aari-docs/internal/search"
	"aari-docs/internal/services/health"
	sharedauth "aari-docs/internal/shared/auth"
	"aari-docs/internal/shared/config"
	"aari-docs/internal/shared/server"
	"aari-docs/internal/shared/storage/db"
	"aari-docs/internal/shared/storage/object"
	localstore "aari-docs/internal/shared/storage/object/local"
	s3store "aari-docs/internal/shared/storage/object/s3"
	"aari-docs/internal/users"
)

// App holds shared dependencies and the assembled router.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.Store
	Events events.Publisher
	Signer *sharedauth.Signer
	Meili  *search.Meili
	States googleauth.StateStore

	UsersRepo     users.Repo
	DocumentsRepo documents.DocumentsRepo
	CommentsRepo  comments.Repo

	UsersService     *users.Service
	DocumentsService *documents.Service
	CommentsService  *comments.Service
	ImportService    *imports.Service
	SearchService    *search.Service
	HealthService    *health.Service
	GoogleAuth       *googleauth.GoogleService
}

// Build prepares dependencies and wires routes. Optional integrations (Redis,
// Meilisearch, SQS) are skipped when unconfigured.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	publisher, err := buildEvents(ctx, cfg)
	if err != nil {
		return nil, err
	}

	signer, err := sharedauth.NewSigner(cfg.JWTSecret, cfg.Env, cfg.SessionTTL)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		Events: publisher,
		Signer: signer,
		Meili:  buildMeili(cfg),
		States: buildStateStore(cfg),
	}

	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          cfg,
		Verifier:        signer,
		Health:          app.HealthService,
		GoogleAuth:      app.GoogleAuth,
		UserHandler:     users.NewHandler(app.UsersService),
		DocumentHandler: documents.NewHandler(app.DocumentsService),
		ImportHandler:   imports.NewHandler(app.ImportService),
		CommentHandler:  comments.NewHandler(app.CommentsService),
		SearchHandler:   search.NewHandler(app.SearchService),
	})

	if app.Meili != nil {
		go func() {
			reindexCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()
			if err := app.SearchService.Reindex(reindexCtx); err != nil {
				log.Printf("bootstrap: search reindex failed: %v", err)
			}
		}()
	}

	return app, nil
}

// Close releases background resources.
func (a *App) Close() {
	if a.Meili != nil {
		a.Meili.Close()
	}
	if closer, ok := a.States.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
	if a.DB != nil {
		_ = a.DB.Close()
	}
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	if db.IsLambdaRuntime() {
		opts := db.OptionsFromEnv(db.DefaultLambdaOptions())
		sqlDB, err = db.GetSingleton(ctx, cfg.DatabaseURL, opts)
	} else {
		opts := db.OptionsFromEnv(db.DefaultServerOptions())
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, opts)
	}
	if err != nil {
		if cfg.IsDevLike() {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if cfg.IsDevLike() {
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.Store, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildEvents(ctx context.Context, cfg config.Config) (events.Publisher, error) {
	if strings.TrimSpace(cfg.EventsQueueURL) == "" {
		return nil, nil
	}
	return events.NewSQSPublisher(ctx, cfg.AWSRegion, cfg.EventsQueueURL)
}

func buildMeili(cfg config.Config) *search.Meili {
	if strings.TrimSpace(cfg.MeiliURL) == "" {
		return nil
	}
	return search.NewMeili(cfg.MeiliURL, cfg.MeiliMasterKey)
}

func buildStateStore(cfg config.Config) googleauth.StateStore {
	if strings.TrimSpace(cfg.RedisURL) == "" {
		return googleauth.NewMemoryStateStore()
	}
	states, err := googleauth.NewRedisStateStore(cfg.RedisURL)
	if err != nil {
		log.Printf("bootstrap: redis unavailable; keeping oauth state in memory: %v", err)
		return googleauth.NewMemoryStateStore()
	}
	return states
}

func buildServices(app *App) {
	var (
		userRepo    users.Repo
		docRepo     documents.DocumentsRepo
		commentRepo comments.Repo
	)
	if app.DB != nil {
		userRepo = &users.PGRepo{DB: app.DB}
		docRepo = &documents.PGRepo{DB: app.DB}
		commentRepo = &comments.PGRepo{DB: app.DB}
	} else {
		memDocs := documents.NewMemoryRepo()
		memComments := comments.NewMemoryRepo()
		memDocs.OnDelete(memComments.DeleteByDocument)
		userRepo = users.NewMemoryRepo()
		docRepo = memDocs
		commentRepo = memComments
	}

	userSvc := users.NewService(userRepo)
	searchSvc := search.NewService(app.Meili, &search.Scanner{Documents: docRepo, Comments: commentRepo})

	docSvc := &documents.Service{
		Repo:    docRepo,
		Store:   app.Store,
		Indexer: searchSvc,
		Events:  app.Events,
	}
	commentSvc := &comments.Service{
		Repo:      commentRepo,
		Documents: docSvc,
		Authors:   userSvc,
		Indexer:   searchSvc,
		Events:    app.Events,
	}

	app.UsersRepo = userRepo
	app.DocumentsRepo = docRepo
	app.CommentsRepo = commentRepo
	app.UsersService = userSvc
	app.DocumentsService = docSvc
	app.CommentsService = commentSvc
	app.ImportService = &imports.Service{Documents: docSvc, Store: app.Store}
	app.SearchService = searchSvc
	app.HealthService = healthFor(app.DB)
	app.GoogleAuth = googleauth.NewGoogleService(googleauth.GoogleConfig{
		ClientID:     app.Config.GoogleClientID,
		ClientSecret: app.Config.GoogleClientSecret,
		RedirectURL:  app.Config.GoogleRedirectURL,
		UIRedirect:   app.Config.UIRedirectURL,
		SecureCookie: !app.Config.IsDevLike(),
	}, app.Signer, userSvc, app.States)
}

func healthFor(sqlDB *sql.DB) *health.Service {
	if sqlDB == nil {
		return health.NewService(nil)
	}
	return health.NewService(sqlDB)
}
