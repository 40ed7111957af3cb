package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"holoroom.app/internal/content"
	"holoroom.app/internal/persistence/indexdb"
	persistlog "holoroom.app/internal/persistence/log"
	"holoroom.app/internal/sim/scene"
	"holoroom.app/internal/sim/tuning"
	"holoroom.app/internal/transport/ws"
)

func main() {
	var (
		addr        = flag.String("addr", ":8080", "http listen address")
		sceneID     = flag.String("scene", "showroom_1", "scene id")
		seed        = flag.Int64("seed", 1337, "agent wander seed")
		configDir   = flag.String("configs", "./configs", "config directory")
		dataDir     = flag.String("data", "./data", "runtime data directory")
		tuningPath  = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		disableDB   = flag.Bool("disable_db", false, "disable the sqlite engagement index")
		enablePprof = flag.Bool("pprof", false, "expose /debug/pprof")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("tuning not found (%s); using defaults", tp)
			tune = tuning.Defaults()
		} else {
			logger.Fatalf("load tuning: %v", err)
		}
	}

	store, err := content.Load(filepath.Join(*configDir, "content.yaml"))
	if err != nil {
		logger.Fatalf("load content: %v", err)
	}

	layout, err := scene.LoadLayout(filepath.Join(*configDir, "scene.yaml"))
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("scene layout not found; using built-in layout")
			layout = scene.DefaultLayout()
		} else {
			logger.Fatalf("load scene layout: %v", err)
		}
	}

	sceneDir := filepath.Join(*dataDir, "scenes", *sceneID)
	_ = os.MkdirAll(sceneDir, 0o755)

	s, err := scene.New(scene.Config{ID: *sceneID, Seed: *seed}, tune, layout, store, logger)
	if err != nil {
		logger.Fatalf("scene: %v", err)
	}

	tickLog := persistlog.NewTickLogger(sceneDir)
	defer tickLog.Close()

	if *disableDB {
		s.SetTickLogger(tickLog)
	} else {
		idx, err := indexdb.OpenSQLite(filepath.Join(sceneDir, "engagement.db"))
		if err != nil {
			logger.Fatalf("open engagement index: %v", err)
		}
		defer idx.Close()
		s.SetTickLogger(multiTickLogger{a: tickLog, b: idx})
	}

	ctx, cancel := signalContext()
	defer cancel()

	go func() {
		if err := s.Run(ctx); err != nil && err != context.Canceled {
			logger.Printf("scene stopped: %v", err)
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")
		m := s.Metrics()

		// Minimal Prometheus exposition format.
		fmt.Fprintf(rw, "# HELP holoroom_scene_tick Current scene tick.\n")
		fmt.Fprintf(rw, "# TYPE holoroom_scene_tick gauge\n")
		fmt.Fprintf(rw, "holoroom_scene_tick{scene=%q} %d\n", *sceneID, m.Tick)

		fmt.Fprintf(rw, "# HELP holoroom_scene_sessions Connected viewer sessions.\n")
		fmt.Fprintf(rw, "# TYPE holoroom_scene_sessions gauge\n")
		fmt.Fprintf(rw, "holoroom_scene_sessions{scene=%q} %d\n", *sceneID, m.Sessions)

		fmt.Fprintf(rw, "# HELP holoroom_scene_quality_tier Adaptive quality tier (0 high).\n")
		fmt.Fprintf(rw, "# TYPE holoroom_scene_quality_tier gauge\n")
		fmt.Fprintf(rw, "holoroom_scene_quality_tier{scene=%q} %d\n", *sceneID, m.Tier)

		fmt.Fprintf(rw, "# HELP holoroom_scene_step_ms Last tick step duration in milliseconds.\n")
		fmt.Fprintf(rw, "# TYPE holoroom_scene_step_ms gauge\n")
		fmt.Fprintf(rw, "holoroom_scene_step_ms{scene=%q} %.3f\n", *sceneID, m.StepMS)

		fmt.Fprintf(rw, "# HELP holoroom_scene_inbox_depth Input channel backlog depth.\n")
		fmt.Fprintf(rw, "# TYPE holoroom_scene_inbox_depth gauge\n")
		fmt.Fprintf(rw, "holoroom_scene_inbox_depth{scene=%q} %d\n", *sceneID, m.Inbox)
	})
	mux.HandleFunc("/admin/v1/state", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "application/json")
		resp := struct {
			SceneID string             `json:"scene_id"`
			Tick    uint64             `json:"tick"`
			Metrics scene.SceneMetrics `json:"metrics"`
		}{
			SceneID: *sceneID,
			Tick:    s.CurrentTick(),
			Metrics: s.Metrics(),
		}
		_ = json.NewEncoder(rw).Encode(resp)
	})
	if *enablePprof {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}
	mux.HandleFunc("/v1/ws", ws.NewServer(s, logger).Handler())

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s", *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

type multiTickLogger struct {
	a scene.TickLogger
	b scene.TickLogger
}

func (m multiTickLogger) WriteTick(entry scene.TickLogEntry) error {
	if m.a != nil {
		_ = m.a.WriteTick(entry)
	}
	if m.b != nil {
		_ = m.b.WriteTick(entry)
	}
	return nil
}
