package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/centraunit/ioc"
	"github.com/centraunit/ioc/config"
	"github.com/centraunit/ioc/diag"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// main is the entrypoint for the iocdemo binary.
func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	if err := run(os.Stdout, os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type options struct {
	configFile string
	envFile    string
	workers    int
	serve      string
}

func parseFlags(args []string, output io.Writer) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("iocdemo", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&opts.configFile, "config", "", "Path to an HCL registry config file.")
	fs.StringVar(&opts.envFile, "env", ".env", "Path to a .env file.")
	fs.IntVar(&opts.workers, "workers", 3, "Number of goroutines resolving services.")
	fs.StringVar(&opts.serve, "serve", "", "Serve the diagnostics handler on this address (e.g. :8080).")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if opts.workers < 1 {
		return nil, fmt.Errorf("-workers must be positive, got %d", opts.workers)
	}
	return opts, nil
}

func run(outW io.Writer, args []string) error {
	opts, err := parseFlags(args, outW)
	if err != nil {
		return err
	}

	ctx := context.Background()
	var cfg *config.Config
	if opts.configFile != "" {
		cfg, err = config.LoadFile(ctx, opts.configFile, opts.envFile)
	} else {
		cfg, err = config.Load(opts.envFile)
	}
	if err != nil {
		return err
	}

	logger := cfg.Logger(os.Stderr)
	registry, err := cfg.NewRegistry(os.Stderr)
	if err != nil {
		return err
	}
	if err := registerServices(registry); err != nil {
		return err
	}
	for _, name := range registry.UnusedOverrides() {
		logger.Warn("Lifetime override matched no registration.", "contract", name)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	for i := 0; i < opts.workers; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			line, err := describe(worker, registry)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				fmt.Fprintf(outW, "worker %d: %v\n", worker, err)
				return
			}
			fmt.Fprintln(outW, line)
		}(i)
	}
	wg.Wait()

	for _, info := range registry.Registrations() {
		fmt.Fprintf(outW, "%-16s -> %-22s %-12s cached=%t threads=%d\n",
			info.Contract, info.Implementation, info.EffectiveLifetime, info.Cached, info.Threads)
	}

	if opts.serve == "" {
		return nil
	}
	router := chi.NewRouter()
	router.Use(middleware.RequestID, diag.RequestIdentity(registry))
	router.Mount("/", diag.NewHandler(registry, logger))
	return serve(opts.serve, router, logger)
}

// registerServices wires the sample services with one lifetime each.
func registerServices(r *ioc.Registry) error {
	if _, err := ioc.RegisterInstance[Logger](r, newMemoryLogger()); err != nil {
		return err
	}

	db, err := ioc.Register[Database, *sqlDatabase](r)
	if err != nil {
		return err
	}
	db.As(ioc.LifetimeSingleton)
	if err := db.Constructor(newSQLDatabase); err != nil {
		return err
	}

	clock, err := ioc.Register[Clock, *tickClock](r)
	if err != nil {
		return err
	}
	clock.As(ioc.LifetimePerThread)
	if err := clock.Constructor(newTickClock); err != nil {
		return err
	}

	scheduler, err := ioc.Register[Scheduler, *cronScheduler](r)
	if err != nil {
		return err
	}
	return scheduler.Constructor(newCronScheduler)
}

func describe(worker int, r *ioc.Registry) (string, error) {
	db, err := ioc.Resolve[Database](r)
	if err != nil {
		return "", err
	}
	clock, err := ioc.Resolve[Clock](r)
	if err != nil {
		return "", err
	}
	scheduler, err := ioc.Resolve[Scheduler](r)
	if err != nil {
		return "", err
	}

	// A task identity is independent of the goroutine running it.
	task := uuid.NewString()
	taskClock, err := ioc.ResolveContext[Clock](ioc.WithExecutionID(context.Background(), task), r)
	if err != nil {
		return "", err
	}
	r.Release(task)

	return fmt.Sprintf("worker %d: db=%d clock=%d scheduler.clock=%d task=%s task.clock=%d",
		worker, db.ID(), clock.ID(), scheduler.Clock().ID(), task, taskClock.ID()), nil
}

func serve(addr string, h http.Handler, logger *slog.Logger) error {
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 5 * time.Second}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Serving diagnostics.", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
