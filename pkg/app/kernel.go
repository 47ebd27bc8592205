package app

// pkg/app/kernel.go builds an http.Handler from the Application config.
// This file has NO imports of project-specific code (models, routes, etc).

import (
	"net/http"

	"github.com/jhonlemus05/FastBite-Delivery/config"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/metrics"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/middleware"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/reqid"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/router"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/session"
)

// SessionOptions derives cookie settings from config.
func SessionOptions() session.Options {
	opts := session.DefaultOptions()
	opts.TTL = config.SessionTTL()
	opts.Secure = config.SessionSecure() || config.IsProduction()
	return opts
}

func buildHandler(a *Application) http.Handler {
	r := router.New()

	// Global middleware stack (outermost → innermost):
	//  1. Prometheus metrics  outermost for accurate total latency
	//  2. Recovery            catches panics before they kill the goroutine
	//  3. Request ID          inject unique ID before anything logs
	//  4. Logger              logs request_id from context
	//  5. Session             load/create the visitor's session
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(session.Middleware(a.infra.Cache, SessionOptions()))

	r.Get("/metrics", "metrics", metrics.Handler())

	for _, fn := range a.routesFns {
		fn(r, a.infra)
	}

	return r.Handler()
}
