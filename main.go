package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mbolis/expert-mapper/api"
	"github.com/mbolis/expert-mapper/app"
	"github.com/mbolis/expert-mapper/config"
	"github.com/mbolis/expert-mapper/database"
	"github.com/mbolis/expert-mapper/httpx"
	"github.com/mbolis/expert-mapper/log"
	"github.com/mbolis/expert-mapper/routes"
	"github.com/mbolis/expert-mapper/session"
)

func main() {
	cfg, err := config.ParseFlags()
	if err != nil {
		log.Fatal("main.config:", err)
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}

	tables := config.QuestionTables{}
	if cfg.QuestionsFile != "" {
		tables, err = config.LoadQuestionTables(cfg.QuestionsFile)
		if err != nil {
			log.Fatal("main.questions_file:", err)
		}
	}
	questionIDs := tables.For(cfg.Environment)
	log.Infof("Backend %s (%s)", cfg.APIURL, cfg.Environment)

	db, err := database.Open(cfg.DBUrl)
	if err != nil {
		log.Fatal("main.db.open:", err)
	}
	defer db.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if cfg.AdminUser != "" {
		err = database.EnsureAdmin(ctx, db, cfg.AdminUser, cfg.AdminPassword)
		if err != nil {
			log.Fatal("main.db.admin:", err)
		}
	}

	client := api.NewClient(cfg.APIURL)
	journal := database.NewJournal(db)
	sessions := session.NewRegistry(func(id string) *session.Session {
		return session.New(id, client, questionIDs, journal)
	})
	go sessions.SweepEvery(ctx, time.Minute, cfg.SessionTTL, func(n int) {
		log.Debugf("sessions.sweep: dropped %d idle sessions", n)
	})

	app := app.App{
		DB:       db,
		Config:   cfg,
		Sessions: sessions,
		Journal:  journal,
	}
	if cfg.AdminEnabled() {
		app.BearerServer = httpx.NewBearerServer(db, cfg)
	} else {
		log.Warnf("No -token-secret given, admin API disabled")
	}

	handler := routes.Wire(app)

	if err = runServer(ctx, cfg, handler); err != nil {
		log.Errorf("main.server: %s", err)
	}
}

func runServer(ctx context.Context, cfg config.Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  time.Minute,
		WriteTimeout: 2 * time.Minute,
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return err
	}
	log.Info("Listening on " + cfg.Url())
	return serve(ctx, srv, ln, 10*time.Second)
}

// serve runs srv until ctx is done, then returns once in-flight requests
// have drained or grace ran out.
func serve(ctx context.Context, srv *http.Server, ln net.Listener, grace time.Duration) error {
	shutdown := make(chan error, 1)
	go func() {
		<-ctx.Done()
		log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()
		shutdown <- srv.Shutdown(shutdownCtx)
	}()

	err := srv.Serve(ln)
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-shutdown
}
