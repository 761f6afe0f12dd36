package main

import (
	"context"

	"cruiseops/audit"
	"cruiseops/auth"
	"cruiseops/booking"
	"cruiseops/companies"
	"cruiseops/config"
	"cruiseops/customers"
	"cruiseops/dashboard"
	"cruiseops/db"
	"cruiseops/edge"
	"cruiseops/imports"
	"cruiseops/itinerary"
	"cruiseops/middleware"
	"cruiseops/mq"
	"cruiseops/notifications"
	"cruiseops/pricing"
	"cruiseops/ratelim"
	"cruiseops/rdx"
	"cruiseops/routes"
	"cruiseops/sailings"
	"cruiseops/settings"
	"cruiseops/ships"
	"cruiseops/staff"
	"cruiseops/translations"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// app holds every long-lived component built from the config.
type app struct {
	cfg   config.Config
	log   *zap.Logger
	mongo *db.Mongo
	redis *redis.Client
	bus   mq.Bus

	auth         *middleware.Auth
	resolver     *db.Resolver
	limiter      *ratelim.RateLimiter
	audit        *audit.Log
	companies    *companies.Service
	ships        *ships.Service
	shipStore    *ships.MongoStore
	itineraries  *itinerary.Service
	sailings     *sailings.Service
	pricing      *pricing.Service
	bookings     *booking.Service
	customers    *customers.Service
	staff        *staff.Service
	settings     *settings.Service
	translations *translations.Service
	notify       *notifications.Service
	hub          *notifications.Hub
	imports      *imports.Service
	dashboard    *dashboard.Service
	edge         *edge.Service
}

// newApp connects to Mongo, and to Redis when it answers. Without Redis the
// event bus and notification feed stay in process.
func newApp(ctx context.Context, cfg config.Config, log *zap.Logger) (*app, error) {
	m, err := db.Connect(ctx, cfg.MongoURI, cfg.ControlDB)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, log: log, mongo: m}

	var (
		cache companies.Cache
		feed  notifications.Feed = notifications.NewMemoryFeed()
	)
	a.bus = mq.NewMemoryBus(log)
	if rc, err := rdx.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); err != nil {
		log.Warn("redis unavailable, using in-process bus and feed", zap.Error(err))
	} else {
		a.redis = rc
		a.bus = mq.NewRedisBus(rc, cfg.EventsPrefix, log)
		cache = rdx.NewCache(rc, "cruiseops:")
		feed = notifications.NewRedisFeed(rc)
	}
	emitter := mq.NewEmitter(a.bus, cfg.EventsStrict, log)

	a.auth = middleware.NewAuth(cfg.JWTSecret)
	a.resolver = db.NewResolver(m)
	a.limiter = ratelim.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	a.audit = audit.New(audit.NewMongoStore(m), log)

	a.companies = companies.NewService(companies.NewMongoStore(m), m, cache, cfg.UploadDir, log)
	a.shipStore = ships.NewMongoStore(m)
	a.ships = ships.NewService(a.shipStore)

	sailingStore := sailings.NewMongoStore(m)
	itineraryStore := itinerary.NewMongoStore(m)
	a.sailings = sailings.NewService(sailingStore, itineraryStore)
	a.itineraries = itinerary.NewService(itineraryStore, a.sailings)

	a.pricing = pricing.NewService(pricing.NewMongoStore(m), a.companies)
	bookingStore := booking.NewMongoStore(m)
	a.bookings = booking.NewService(bookingStore, a.pricing, emitter)
	a.customers = customers.NewService(customers.NewMongoStore(m))
	a.staff = staff.NewService(staff.NewMongoStore(m))
	a.settings = settings.NewService(settings.NewMongoStore(m), emitter)
	a.translations = translations.NewService(translations.NewMongoStore(m))

	a.hub = notifications.NewHub(log)
	a.notify = notifications.NewService(feed, a.hub, log)
	a.imports = imports.NewService(a.itineraries, a.shipStore, log)
	a.dashboard = dashboard.NewService(bookingStore, a.shipStore, sailingStore, a.customers, a.notify)
	a.edge = edge.NewService(a.sailings, a.ships)
	return a, nil
}

func (a *app) routes() routes.Deps {
	return routes.Deps{
		Auth:          a.auth,
		Tenants:       a.resolver,
		Idempotency:   db.NewIdempotencyStore(a.mongo),
		Limiter:       a.limiter,
		DevTokens:     a.cfg.DevTokens,
		UploadDir:     a.cfg.UploadDir,
		Audit:         a.audit,
		Login:         auth.NewHandler(a.staff, a.auth),
		Companies:     companies.NewHandler(a.companies),
		Ships:         ships.NewHandler(a.ships, a.audit),
		Itineraries:   itinerary.NewHandler(a.itineraries, a.audit),
		Sailings:      sailings.NewHandler(a.sailings, a.audit),
		Pricing:       pricing.NewHandler(a.pricing, a.audit),
		Bookings:      booking.NewHandler(a.bookings, booking.NewSigner(a.cfg.QRSecret), a.audit),
		Customers:     customers.NewHandler(a.customers, a.audit),
		Staff:         staff.NewHandler(a.staff, a.audit),
		Settings:      settings.NewHandler(a.settings),
		Translations:  translations.NewHandler(a.translations),
		Notifications: notifications.NewHandler(a.notify),
		Hub:           a.hub,
		Imports:       imports.NewHandler(a.imports, a.audit),
		Dashboard:     dashboard.NewHandler(a.dashboard),
		Edge:          edge.NewHandler(a.edge),
	}
}

func (a *app) Close(ctx context.Context) {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Warn("close redis", zap.Error(err))
		}
	}
	if err := a.mongo.Disconnect(ctx); err != nil {
		a.log.Warn("disconnect mongo", zap.Error(err))
	}
}
