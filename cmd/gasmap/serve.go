package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"gasmap/internal/config"
	"gasmap/internal/editor"
	"gasmap/internal/handler"
	"gasmap/internal/hub"
	"gasmap/internal/metrics"
	"gasmap/internal/persistence"
	"gasmap/internal/repository/sqlite"
	"gasmap/internal/service"
	"gasmap/internal/topology"
	"gasmap/internal/watcher"
)

func serveCmd(loadConfig configLoader) *cobra.Command {
	var (
		addr   string
		dbPath string
		dev    bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the editor HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := loadConfig()
			if err != nil {
				return err
			}
			if path != "" {
				log.Printf("Config loaded: %s", path)
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if dbPath != "" {
				cfg.Storage.Database = dbPath
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, dev)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (default: server.addr)")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (default: storage.database)")
	cmd.Flags().BoolVar(&dev, "dev", false, "Start with the development network")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, dev bool) error {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting gasmap server...")
	log.Printf("Config: %s", cfg.Summary())

	var rec *metrics.Registry
	if cfg.Metrics.IsEnabled() {
		rec = metrics.NewRegistry()
	}

	// The network library is opened for either backend; with the sqlite
	// backend it is also where load and export go.
	repo, err := sqlite.New(cfg.Storage.Database)
	if err != nil {
		return err
	}
	defer repo.Close()
	log.Printf("Database opened: %s", cfg.Storage.Database)

	fileStore := persistence.NewFileStore(cfg.Storage.Dir)
	var store persistence.Store = fileStore
	if cfg.Storage.Backend == config.BackendSQLite {
		store = repo
	}

	var workerOpts []persistence.WorkerOption
	if rec != nil {
		workerOpts = append(workerOpts, persistence.WithObserver(rec))
	}
	worker := persistence.NewWorker(store, workerOpts...)

	eventBus := service.NewEventBus()
	notifier := service.NewBusNotifier(eventBus)

	reg := topology.New()
	if dev {
		if err := editor.Seed(reg); err != nil {
			return err
		}
	}

	machineOpts := []editor.Option{
		editor.WithNotifier(notifier),
		editor.WithJobs(worker),
		editor.WithInjectHook(notifier.InjectHook()),
		editor.WithDefaults(editor.Defaults{
			SourceCapacity: cfg.Editor.SourceCapacity,
			ConsumerDemand: cfg.Editor.ConsumerDemand,
			SourceErrorP:   cfg.Editor.SourceErrorP,
			PipeErrorP:     cfg.Editor.PipeErrorP,
			PipePrice:      cfg.Editor.PipePrice,
		}),
	}
	if rec != nil {
		machineOpts = append(machineOpts, editor.WithRecorder(rec))
	}
	loop := editor.NewLoop(editor.NewMachine(reg, machineOpts...), 256)

	sseHub := hub.New()

	// Connect event bus to SSE hub
	eventChan := make(chan service.Event, 100)
	eventBus.Subscribe(eventChan)

	networkHandler := handler.NewNetworkHandler(service.NewNetworkService(loop))
	networkHandler.SetLibrary(repo)

	mux := http.NewServeMux()
	networkHandler.Register(mux)
	mux.Handle("GET /events", sseHub)
	if rec != nil {
		mux.Handle("GET /metrics", rec.Handler())
	}

	middleware := []handler.Middleware{handler.Recover, handler.CORS(cfg.Server.AllowedOrigins...), handler.Logger}
	if rec != nil {
		middleware = append(middleware, handler.Metrics(rec))
	}

	server := &http.Server{
		Addr:        cfg.Server.Addr,
		Handler:     handler.Chain(mux, middleware...),
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return ignoreCanceled(loop.Run(gctx)) })
	g.Go(func() error { return ignoreCanceled(sseHub.Run(gctx)) })

	g.Go(func() error {
		defer eventBus.Unsubscribe(eventChan)
		for {
			select {
			case event := <-eventChan:
				sseHub.Broadcast(string(event.Type), event)
			case <-gctx.Done():
				return nil
			}
		}
	})

	if cfg.Watch.Path != "" {
		if cfg.Storage.Backend != config.BackendFile {
			log.Printf("Warning: watch.path ignored with the %s backend", cfg.Storage.Backend)
		} else if path, err := fileStore.Path(cfg.Watch.Path); err != nil {
			log.Printf("Warning: watch.path ignored: %v", err)
		} else {
			w := watcher.New(path, watcher.Reload(gctx, loop, path)).
				WithDebounce(cfg.Watch.Debounce.Duration())
			g.Go(func() error { return ignoreCanceled(w.Watch(gctx)) })
		}
	}

	g.Go(func() error {
		log.Printf("Server listening on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Println("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration())
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
		return nil
	})

	err = g.Wait()
	worker.Wait()
	log.Println("Server stopped")
	return err
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
