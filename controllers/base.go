package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres" //postgres
	_ "github.com/jinzhu/gorm/dialects/sqlite"   //sqlite
	"github.com/labstack/gommon/log"
	"github.com/radhian/ledger-reconciler/consts"
	"github.com/radhian/ledger-reconciler/entity"
	"github.com/radhian/ledger-reconciler/handler"
	"github.com/radhian/ledger-reconciler/infra/accounting"
	"github.com/radhian/ledger-reconciler/infra/config"
	"github.com/radhian/ledger-reconciler/infra/db/dao"
	"github.com/radhian/ledger-reconciler/infra/ledger"
	"github.com/radhian/ledger-reconciler/infra/locker"
	"github.com/radhian/ledger-reconciler/infra/workerstate"
	"github.com/radhian/ledger-reconciler/middlewares"
	"github.com/radhian/ledger-reconciler/usecase/healthcheck"
	"github.com/radhian/ledger-reconciler/usecase/reconciliation"
	"github.com/radhian/ledger-reconciler/usecase/scheduler"
	"golang.org/x/oauth2"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	Config    *config.Config
	DB        *gorm.DB
	Router    *mux.Router
	State     *workerstate.State
	Locker    *locker.Locker
	Tokens    oauth2.TokenSource
	Scheduler *scheduler.ReconciliationScheduler

	query entity.TrackerQuery
}

func (a *App) Initialize(cfg *config.Config) error {
	query, err := entity.ParseTrackerQuery(cfg.ItemSource.Query)
	if err != nil {
		return fmt.Errorf("invalid item_source.query: %w", err)
	}

	db, err := gorm.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("cannot connect to %s database: %w", cfg.Database.Driver, err)
	}
	log.Infof("[App] Connected to %s database", cfg.Database.Driver)

	if err := dao.AutoMigrate(db); err != nil {
		db.Close()
		return fmt.Errorf("database migration: %w", err)
	}

	a.Config = cfg
	a.DB = db
	a.query = query
	a.State = workerstate.New(time.Now())
	a.Locker = locker.New()
	if cfg.ItemSource.Kind == consts.ItemSourceHTTP {
		a.Tokens = ledger.NewTokenSource(ledger.TokenConfig{
			StaticToken:  cfg.Auth.Token,
			TokenURL:     cfg.Auth.TokenURL,
			ClientID:     cfg.Auth.ClientID,
			ClientSecret: cfg.Auth.ClientSecret,
			Scope:        cfg.Auth.Scope,
		}, &http.Client{Timeout: cfg.ItemSource.Timeout})
	}
	a.Scheduler = scheduler.NewReconciliationScheduler(a.State, a.NewScope, cfg.Worker.PollInterval)

	a.Router = mux.NewRouter().StrictSlash(true)
	a.initializeRoutes()
	return nil
}

func (a *App) initializeRoutes() {
	a.Router.Use(middlewares.SetContentTypeMiddleware)

	// audit log reads go straight to the shared pool, outside any cycle scope
	uc := a.newUsecase(dao.NewDaoMethod(a.DB), nil, nil)
	h := handler.NewReconciliationHandler(uc, healthcheck.NewHealthCheck(a.State, a.Config.Worker.DegradedThreshold), a.State)
	RegisterReconciliationRoutes(a.Router, h)
}

// NewScope builds a fresh set of cycle dependencies on a new gorm session.
func (a *App) NewScope(ctx context.Context) (*scheduler.Scope, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d := dao.NewDaoMethod(a.DB.New())
	closers := []func() error{}

	var source reconciliation.ItemSource
	var trackers reconciliation.TrackerRepository
	switch a.Config.ItemSource.Kind {
	case consts.ItemSourceHTTP:
		// remote trackers are read and written back through the ledger
		client := ledger.NewClient(a.Config.ItemSource.BaseURL, a.Config.ItemSource.Timeout, a.Tokens)
		closers = append(closers, client.Close)
		source = client
		trackers = client
	default:
		source = reconciliation.NewDatabaseItemSource(d)
		trackers = reconciliation.NewTrackerRepository(d)
	}

	return &scheduler.Scope{
		Usecase: a.newUsecase(d, source, trackers),
		Close: func() error {
			var errs []error
			for _, closeFn := range closers {
				errs = append(errs, closeFn())
			}
			return errors.Join(errs...)
		},
	}, nil
}

func (a *App) newUsecase(d dao.DaoMethod, source reconciliation.ItemSource, trackers reconciliation.TrackerRepository) reconciliation.ReconciliationUsecase {
	return reconciliation.NewReconciliationUsecase(reconciliation.Config{
		Query:         a.query,
		MaxRetry:      a.Config.Worker.MaxRetry,
		FailFastAfter: a.Config.Worker.FailFastAfter,
	}, reconciliation.Dependencies{
		Source:    source,
		Lookup:    accounting.NewLookup(d),
		Bus:       accounting.NewCommandBus(d),
		Trackers:  trackers,
		Audit:     reconciliation.NewAuditSink(d),
		State:     a.State,
		Locker:    a.Locker,
		AuditLogs: d,
	})
}

// RunServer runs the scheduler and the HTTP server until ctx is cancelled.
// A scheduler that stops on its own leaves the server up so /health reports
// it; the error is returned once ctx ends.
func (a *App) RunServer(ctx context.Context) error {
	server := &http.Server{
		Addr:              ":" + a.Config.HTTP.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	schedulerDone := make(chan error, 1)
	go func() {
		schedulerDone <- a.Scheduler.Run(ctx)
	}()

	serverDone := make(chan error, 1)
	go func() {
		log.Infof("[App] Server starting on port %v", a.Config.HTTP.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverDone <- err
			return
		}
		serverDone <- nil
	}()

	var schedulerErr error
	schedulerStopped := false
	for {
		select {
		case err := <-serverDone:
			if err != nil {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		case schedulerErr = <-schedulerDone:
			schedulerStopped = true
			if schedulerErr != nil && ctx.Err() == nil {
				log.Errorf("[App] Reconciliation worker stopped, health now reports unhealthy: %v", schedulerErr)
			}
			schedulerDone = nil
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				log.Warnf("[App] Server shutdown: %v", err)
			}
			if !schedulerStopped {
				schedulerErr = <-schedulerDone
			}
			if errors.Is(schedulerErr, context.Canceled) {
				return nil
			}
			return schedulerErr
		}
	}
}

// RunOnce executes a single reconciliation cycle.
func (a *App) RunOnce(ctx context.Context) error {
	return a.Scheduler.RunOnce(ctx)
}

func (a *App) Close() error {
	if a.DB == nil {
		return nil
	}
	return a.DB.Close()
}
