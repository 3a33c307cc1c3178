package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"spatial-input/internal/bridge"
	"spatial-input/internal/journal"
	"spatial-input/internal/platform/config"
	"spatial-input/internal/platform/logger"
	"spatial-input/internal/platform/metrics"
	"spatial-input/internal/spatial"

	"github.com/go-chi/chi/v5"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = config.Load()

	port := config.GetEnv("PORT", "8080")
	logLevel := config.GetEnv("LOG_LEVEL", "info")
	logFormat := config.GetEnv("LOG_FORMAT", "json")
	tickInterval := config.GetEnvDuration("TICK_INTERVAL", 16*time.Millisecond)
	enumerator := config.GetEnv("ENUMERATOR", "sim")
	serialPort := config.GetEnv("SERIAL_PORT", "/dev/ttyUSB0")
	serialBaud := config.GetEnvInt("SERIAL_BAUD", 115200)
	frameMaxAge := config.GetEnvDuration("FRAME_MAX_AGE", 250*time.Millisecond)
	journalPath := config.GetEnv("JOURNAL_PATH", "")
	profilePath := config.GetEnv("PROFILE_PATH", "")
	modelBaseURL := config.GetEnv("MODEL_BASE_URL", "")

	log := logger.New(logLevel, logFormat)

	profile := spatial.DefaultProfile()
	if profilePath != "" {
		p, err := spatial.LoadProfile(profilePath)
		if err != nil {
			log.Error("load profile", "error", err)
			os.Exit(1)
		}
		profile = p
	}

	var enum spatial.Enumerator
	var sim *spatial.Simulator
	switch enumerator {
	case "serial":
		b, err := bridge.Open(serialPort, serialBaud, frameMaxAge, log)
		if err != nil {
			log.Error("open serial bridge", "port", serialPort, "error", err)
			os.Exit(1)
		}
		defer b.Close()
		enum = b
	default:
		sim = spatial.NewSimulator()
		enum = sim
	}

	bus := spatial.NewBus()
	sink := spatial.MultiSink{bus}

	var jnl *journal.Journal
	if journalPath != "" {
		var err error
		jnl, err = journal.Open(journalPath, log)
		if err != nil {
			log.Error("open journal", "path", journalPath, "error", err)
			os.Exit(1)
		}
		defer jnl.Close()
		sink = append(sink, jnl)
	}

	met := metrics.New()

	session := spatial.NewSession(spatial.SessionConfig{
		Gestures: profile.Gestures,
		Actions:  profile.Actions,
	}, enum, sink, log)
	session.SetMetrics(met)
	if modelBaseURL != "" {
		session.SetModelFetcher(spatial.NewModelFetcher(modelBaseURL, log))
	}

	if err := session.Enable(); err != nil {
		log.Error("enable session", "error", err)
		os.Exit(1)
	}

	tickDone := make(chan struct{})
	tickStop := make(chan struct{})
	go func() {
		defer close(tickDone)
		ticker := time.NewTicker(tickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-tickStop:
				return
			case now := <-ticker.C:
				session.Tick(now)
			}
		}
	}()

	h := spatial.NewHandler(session, sim, log)

	r := chi.NewRouter()
	r.Use(logger.RequestLogger(log))
	r.Use(metrics.RequestMiddleware(met))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
		met.Handler(func() { met.SetActiveControllers(session.ActiveControllerCount()) }).ServeHTTP(w, req)
	})
	r.Group(h.Routes)
	if jnl != nil {
		r.Get("/events", func(w http.ResponseWriter, req *http.Request) {
			limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
			records, err := jnl.Recent(limit)
			if err != nil {
				log.Error("query journal", "error", err)
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(records)
		})
	}

	addr := ":" + port
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	log.Info("server starting",
		"port", port,
		"enumerator", enumerator,
		"tick_interval", tickInterval.String(),
		"log_level", logLevel,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received")

	close(tickStop)
	<-tickDone
	session.Disable()
	bus.Close()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
