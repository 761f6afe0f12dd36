package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"cruiseops/booking"
	"cruiseops/customers"
	"cruiseops/globals"
	"cruiseops/middleware"
	"cruiseops/routes"
	"cruiseops/translations"

	"github.com/rs/cors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func (a *app) handler() http.Handler {
	router := routes.New(a.routes())
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", globals.CompanyHeader, middleware.IdempotencyHeader},
		ExposedHeaders:   []string{"Idempotent-Replayed"},
		AllowCredentials: false,
	})
	return middleware.Chain(router,
		middleware.Recover(a.log),
		middleware.AccessLog(a.log),
		middleware.SecurityHeaders,
		c.Handler,
	)
}

// serve runs the HTTP server and every background worker until ctx is done or
// one of them fails.
func (a *app) serve(ctx context.Context) error {
	if n, err := a.translations.Seed(ctx); err != nil {
		a.log.Warn("seed translations", zap.Error(err))
	} else if n > 0 {
		a.log.Info("translations seeded", zap.Int("rows", n))
	}

	server := &http.Server{
		Addr:              a.cfg.Port,
		Handler:           a.handler(),
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}
	server.RegisterOnShutdown(a.hub.Stop)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.log.Info("server listening", zap.String("addr", a.cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(sctx)
	})
	g.Go(func() error {
		a.hub.Run()
		return nil
	})
	g.Go(func() error {
		return a.notify.Run(gctx, a.bus)
	})
	g.Go(func() error {
		return customers.NewConsumer(a.customers, a.resolver, a.log).Run(gctx, a.bus)
	})
	g.Go(func() error {
		return booking.NewSweeper(a.bookings, a.resolver, a.cfg.SweepInterval, a.log).Run(gctx)
	})
	g.Go(func() error {
		tick := time.NewTicker(time.Minute)
		defer tick.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-tick.C:
				if n := a.limiter.Cleanup(); n > 0 {
					a.log.Debug("rate limiter cleanup", zap.Int("dropped", n))
				}
			}
		}
	})
	if dir := a.cfg.TranslationsDir; dir != "" {
		g.Go(func() error {
			return translations.NewWatcher(a.translations, dir, a.log).Run(gctx)
		})
	}

	return g.Wait()
}
