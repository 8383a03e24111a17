package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	_ "github.com/comitanigiacomo/kanso-grid/docs"
	"github.com/comitanigiacomo/kanso-grid/internal/adapters/cache"
	adapterHTTP "github.com/comitanigiacomo/kanso-grid/internal/adapters/handler/http"
	"github.com/comitanigiacomo/kanso-grid/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-grid/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-grid/internal/config"
	"github.com/comitanigiacomo/kanso-grid/internal/core/domain"
	"github.com/comitanigiacomo/kanso-grid/internal/core/services"
	"github.com/comitanigiacomo/kanso-grid/internal/core/workers"
)

// @title						Kanso Grid API
// @version					1.0
// @description				Habit tracking with calendar-aligned completion grids and streaks.
// @host						localhost:8080
// @BasePath					/api/v1
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
// @description				Type "Bearer" followed by a space and the JWT.
func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("Critical: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newApp(ctx, cfg)
	if err != nil {
		log.Fatalf("Critical: %v", err)
	}
	defer app.Close()

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      app.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Kanso Grid running on http://localhost:%s (storage: %s)", cfg.Port, cfg.Storage)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Critical server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Stop signal received. Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Forced shutdown error: %v", err)
	}

	log.Println("Server stopped gracefully.")
}

type repositories struct {
	habits  domain.HabitRepository
	entries domain.HabitEntryRepository
	users   domain.UserRepository
	groups  domain.GroupRepository
	prefs   domain.PreferenceRepository
}

type app struct {
	router *gin.Engine
	db     *sqlx.DB
	rdb    *redis.Client
	worker *workers.StreakWorker
	cancel context.CancelFunc
}

// Close stops the streak worker, waits for it to drain, then releases the
// connections.
func (a *app) Close() {
	a.cancel()
	a.worker.Wait()
	if a.rdb != nil {
		a.rdb.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{}

	repos, err := a.openStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Redis.Enabled() {
		rdb, err := cache.NewRedisClient(cache.Options{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			a.closeDB()
			return nil, err
		}
		a.rdb = rdb
		log.Println("Redis connected successfully.")

		cachedHabits := repository.NewCachedHabitRepository(repos.habits, rdb, cfg.HabitCacheTTL)
		repos.groups = repository.NewCachedGroupRepository(repos.groups, cachedHabits)
		repos.habits = cachedHabits
		repos.prefs = repository.NewRedisPreferenceRepository(rdb)
	} else {
		log.Println("Redis disabled: no habit cache, no rate limiting, preferences kept in memory.")
	}

	workerCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.worker = workers.NewStreakWorker(repos.habits, repos.entries)
	a.worker.Start(workerCtx)

	authService := services.NewAuthService(repos.users)
	tokenService := services.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL, repos.users)
	habitService := services.NewHabitService(repos.habits, repos.groups)
	entryService := services.NewEntryService(repos.entries, repos.habits, a.worker)
	prefService := services.NewPreferenceService(repos.prefs)
	viewService := services.NewViewService(repos.habits, repos.entries, prefService)
	statsService := services.NewStatsService(repos.habits, repos.entries)
	groupService := services.NewGroupService(repos.groups)

	a.router = adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		AuthHandler:       adapterHTTP.NewAuthHandler(authService, tokenService),
		HabitHandler:      adapterHTTP.NewHabitHandler(habitService),
		EntryHandler:      adapterHTTP.NewEntryHandler(entryService),
		ViewHandler:       adapterHTTP.NewViewHandler(viewService, entryService),
		StatsHandler:      adapterHTTP.NewStatsHandler(statsService, viewService),
		PreferenceHandler: adapterHTTP.NewPreferenceHandler(prefService),
		GroupHandler:      adapterHTTP.NewGroupHandler(groupService),
		TokenService:      tokenService,
		DB:                a.db,
		Redis:             a.rdb,
		RateLimit: middleware.RateLimit{
			Limit:  cfg.RateLimit,
			Window: cfg.RateLimitWindow,
		},
		StartTime: time.Now(),
	})

	return a, nil
}

func (a *app) openStorage(ctx context.Context, cfg *config.Config) (*repositories, error) {
	if cfg.Storage == config.StorageMemory {
		log.Println("Using in-memory storage, data is lost on restart.")
		habits := repository.NewInMemoryHabitRepository()
		return &repositories{
			habits:  habits,
			entries: repository.NewInMemoryEntryRepository(),
			users:   repository.NewInMemoryUserRepository(),
			groups:  repository.NewInMemoryGroupRepository(habits),
			prefs:   repository.NewInMemoryPreferenceRepository(),
		}, nil
	}

	log.Println("Connecting to database...")

	db, err := sqlx.Connect("pgx", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := repository.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	a.db = db

	log.Println("Database connected successfully.")

	return &repositories{
		habits:  repository.NewPostgresHabitRepository(db),
		entries: repository.NewPostgresEntryRepository(db),
		users:   repository.NewPostgresUserRepository(db),
		groups:  repository.NewPostgresGroupRepository(db),
		prefs:   repository.NewInMemoryPreferenceRepository(),
	}, nil
}

func (a *app) closeDB() {
	if a.db != nil {
		a.db.Close()
	}
}
