// Package app boots the FastBite web application.
//
//	infra, err := app.Boot(ctx)
//	defer infra.Close()
//
//	a := app.New(infra).Routes(routes.RegisterWeb)
//	err = a.Serve(ctx, ":"+config.AppPort())
//
// Boot connects the shared infrastructure (session/cache backend, database,
// image disk, event bus, task scheduler); New builds the HTTP kernel on top of it.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/jhonlemus05/FastBite-Delivery/config"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/cache"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/database"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/event"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/logger"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/router"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/schedule"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/storage"
)

// Infra is the process-wide infrastructure handed to route registration.
type Infra struct {
	Cache  cache.Cache
	DB     *gorm.DB // nil when DB_DRIVER=none
	Disk   storage.Disk
	Events *event.Bus
	Tasks  *schedule.Scheduler // background jobs; started by serve

	mu   sync.Mutex
	done map[string]bool
}

// Once runs fn the first time it is called with name on this Infra. Route
// callbacks use it for process-wide setup (event listeners, scheduled tasks)
// since Router and Handler each run them.
func (i *Infra) Once(name string, fn func()) {
	i.mu.Lock()
	if i.done[name] {
		i.mu.Unlock()
		return
	}
	if i.done == nil {
		i.done = map[string]bool{}
	}
	i.done[name] = true
	i.mu.Unlock()
	fn()
}

// Boot connects everything Infra holds. A redis outage falls back to the
// memory driver outside production; a database failure disables
// preference persistence but not the storefront.
func Boot(ctx context.Context) (*Infra, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	infra := &Infra{Events: event.New(), Tasks: schedule.Default}

	c, err := cache.Connect(ctx)
	if err != nil {
		if config.IsProduction() {
			return nil, err
		}
		logger.Warn("cache unavailable, using memory driver", "error", err)
		c = cache.NewMemory()
	}
	infra.Cache = c

	db, err := database.Connect()
	switch {
	case errors.Is(err, database.ErrDisabled):
		logger.Info("database disabled, accessibility preferences live in the session only")
	case err != nil:
		logger.Error("database unavailable, accessibility preferences live in the session only", "error", err)
	default:
		infra.DB = db
	}

	disk, err := storage.Connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	infra.Disk = disk

	logger.Info("infrastructure ready",
		"cache", infra.Cache.Driver(),
		"database", infra.DB != nil,
		"disk", infra.Disk.Driver(),
	)
	return infra, nil
}

// NewTestInfra returns in-memory infrastructure with a local disk at root.
func NewTestInfra(root string) *Infra {
	return &Infra{
		Cache:  cache.NewMemory(),
		Disk:   storage.NewLocal(root, "/storage"),
		Events: event.New(),
		Tasks:  schedule.New(50 * time.Millisecond),
	}
}

// Close releases the database connection.
func (i *Infra) Close() error {
	if i.DB == nil {
		return nil
	}
	return database.Close()
}

// ─── Application Builder ──────────────────────────────────────────────────────

// Application is the HTTP side of the process. Build one with New, attach
// route registrations, then call Handler or Serve.
type Application struct {
	infra     *Infra
	routesFns []func(*router.Router, *Infra)

	once    sync.Once
	handler http.Handler
}

func New(infra *Infra) *Application {
	return &Application{infra: infra}
}

// Routes registers a route-registration callback. Callbacks run in order
// when the handler is built.
func (a *Application) Routes(fn func(*router.Router, *Infra)) *Application {
	a.routesFns = append(a.routesFns, fn)
	return a
}

// Router builds a router with every route registered, without the global
// middleware. route:list uses it.
func (a *Application) Router() *router.Router {
	r := router.New()
	for _, fn := range a.routesFns {
		fn(r, a.infra)
	}
	return r
}

// Handler builds the full HTTP handler on first use and returns the same one
// afterwards, so route callbacks (and the tasks they schedule) run once.
func (a *Application) Handler() http.Handler {
	a.once.Do(func() { a.handler = buildHandler(a) })
	return a.handler
}
