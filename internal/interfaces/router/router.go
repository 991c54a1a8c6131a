package router

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"hostel-backend/internal/application/housing"
	"hostel-backend/internal/config"
	"hostel-backend/internal/fixtures"
	"hostel-backend/internal/health"
	"hostel-backend/internal/infrastructure/database"
	"hostel-backend/internal/infrastructure/metrics"
	"hostel-backend/internal/infrastructure/slot"
	appshandler "hostel-backend/internal/interfaces/handlers/applications"
	eventshandler "hostel-backend/internal/interfaces/handlers/events"
	listhandler "hostel-backend/internal/interfaces/handlers/listings"
	safetyhandler "hostel-backend/internal/interfaces/handlers/safety"
	studenthandler "hostel-backend/internal/interfaces/handlers/students"
	"hostel-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type gormDBPinger struct {
	db *gorm.DB
}

func (g *gormDBPinger) Ping() error {
	if g == nil || g.db == nil {
		return nil
	}
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Services are the long-lived dependencies behind the app. DB and Redis may be nil.
type Services struct {
	DB    *gorm.DB
	Redis *redis.Client
	Store *housing.Store

	events    chan struct{}
	closeOnce sync.Once
	stop      func() error
}

// CloseStreams ends every open event stream so the server can drain.
func (s *Services) CloseStreams() {
	s.closeOnce.Do(func() { close(s.events) })
}

// Close stops listening for change signals and releases connections.
func (s *Services) Close() error {
	s.CloseStreams()
	var firstErr error
	if s.stop != nil {
		firstErr = s.stop()
	}
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if s.DB != nil {
		if sqlDB, err := s.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func openRedis(url string) (*redis.Client, error) {
	if url == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	return redis.NewClient(opts), nil
}

func openDB(cfg *config.Config) (*gorm.DB, error) {
	switch {
	case cfg.DatabaseURL != "":
		return database.Open(cfg.DatabaseURL)
	case cfg.SlotBackend == config.BackendDatabase:
		return database.OpenSQLite(cfg.SQLitePath)
	default:
		return nil, nil
	}
}

// pingDeps checks Redis and the database before the store reads its slot through them.
func pingDeps(ctx context.Context, svc *Services) error {
	if svc.DB != nil {
		sqlDB, err := svc.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		log.Info().Msg("Database connected")
	}
	if svc.Redis != nil {
		if err := svc.Redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis connection failed: %w", err)
		}
		log.Info().Msg("Redis connected")
	}
	return nil
}

// newStore wires the housing store to the configured slot and change-signal transport.
func newStore(ctx context.Context, cfg *config.Config, svc *Services, rec housing.Recorder) (*housing.Store, error) {
	opts := housing.Options{
		Recorder: rec,
		Policy: housing.Policy{
			StrictNotFound:         cfg.StrictNotFound,
			AllowOccupantOverwrite: cfg.AllowOccupantOverwrite,
		},
	}
	switch cfg.SlotBackend {
	case config.BackendRedis:
		opts.Slot = &slot.RedisSlot{Client: svc.Redis, Prefix: cfg.SlotPrefix}
	case config.BackendDatabase:
		if err := database.AutoMigrate(svc.DB); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		opts.Slot = &database.SlotStore{DB: svc.DB}
	default:
		opts.Slot = slot.NewMemorySlot()
	}
	if svc.Redis != nil && cfg.SlotBackend != config.BackendMemory {
		opts.Broadcaster = &slot.RedisBroadcaster{Client: svc.Redis}
	} else {
		opts.Broadcaster = slot.NewMemoryHub()
	}

	seed, err := fixtures.Load(cfg.SeedFile, time.Now())
	if err != nil {
		return nil, err
	}
	return housing.NewStore(ctx, seed, opts)
}

func CreateApp(cfg *config.Config) (*fiber.App, *Services, error) {
	ctx := context.Background()
	svc := &Services{events: make(chan struct{})}

	rdb, err := openRedis(cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	svc.Redis = rdb
	db, err := openDB(cfg)
	if err != nil {
		_ = svc.Close()
		return nil, nil, err
	}
	svc.DB = db
	if err := pingDeps(ctx, svc); err != nil {
		_ = svc.Close()
		return nil, nil, err
	}

	rec := metrics.NewRecorder()
	store, err := newStore(ctx, cfg, svc, rec)
	if err != nil {
		_ = svc.Close()
		return nil, nil, err
	}
	svc.Store = store
	svc.stop, err = store.Listen(ctx)
	if err != nil {
		_ = svc.Close()
		return nil, nil, fmt.Errorf("listen for changes: %w", err)
	}
	log.Info().Str("backend", cfg.SlotBackend).Bool("redis", rdb != nil).Bool("database", db != nil).
		Int("listings", len(store.Listings())).Msg("Housing store ready")

	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))
	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	hh := &health.Handlers{
		Rdb:            rdb,
		Store:          store,
		HealthAdminKey: cfg.HealthAdminKey,
	}
	if db != nil {
		hh.DB = &gormDBPinger{db: db}
	}
	app.Get("/reset", hh.Reset)
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)
	app.Get("/metrics", rec.Handler())

	api := app.Group("/api/v1")

	eh := &eventshandler.Handlers{Source: store, Done: svc.events}
	api.Get("/events", eh.Stream)

	sh := &safetyhandler.Handlers{}
	api.Get("/safety/score", sh.Score)
	api.Get("/safety/features", sh.Features)

	lh := &listhandler.Handlers{Store: store}
	lg := api.Group("/listings")
	lg.Get("/", lh.List)
	lg.Get("/:listing_id", lh.Get)
	lg.Patch("/:listing_id", lh.Update)
	lg.Post("/:listing_id/safety-features/toggle", lh.ToggleSafetyFeature)
	lg.Post("/:listing_id/rent-paid", lh.MarkRentPaid)
	lg.Post("/:listing_id/floors", lh.AddFloor)
	lg.Delete("/:listing_id/floors/:floor_number", lh.RemoveFloor)
	lg.Post("/:listing_id/floors/:floor_number/rooms", lh.AddRoom)
	lg.Post("/:listing_id/rooms/:room_number/book", lh.BookRoom)
	lg.Put("/:listing_id/rooms/:room_number/beds/:bed_id/status", lh.UpdateBedStatus)
	lg.Post("/:listing_id/rooms/:room_number/beds/:bed_id/rent-paid", lh.MarkStudentRentPaid)
	lg.Get("/:listing_id/rent-roll", lh.RentRoll)
	lg.Get("/:listing_id/occupancy", lh.Occupancy)

	ah := &appshandler.Handlers{Store: store}
	ag := api.Group("/applications")
	ag.Get("/", ah.List)
	ag.Patch("/:app_id/verify", ah.Verify)
	ag.Patch("/:app_id/approve", ah.Approve)
	ag.Patch("/:app_id/reject", ah.Reject)

	sth := &studenthandler.Handlers{Store: store}
	sg := api.Group("/students")
	sg.Get("/", sth.List)
	sg.Get("/:student_id/matches", sth.Matches)
	sg.Get("/:student_id/booking", sth.Booking)

	return app, svc, nil
}

func Handler(app *fiber.App) http.Handler {
	return adaptor.FiberApp(app)
}
