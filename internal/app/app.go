package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/del-passero/victim-of-the-day-bot/internal/config"
	"github.com/del-passero/victim-of-the-day-bot/internal/domain"
	"github.com/del-passero/victim-of-the-day-bot/internal/game"
	"github.com/del-passero/victim-of-the-day-bot/internal/scheduler"
	"github.com/del-passero/victim-of-the-day-bot/internal/store"
	"github.com/del-passero/victim-of-the-day-bot/internal/telegram"
)

type App struct {
	cfg     config.Config
	log     *zap.Logger
	bot     *tgbotapi.BotAPI
	httpSrv *http.Server
	repo    store.Repo
	router  *telegram.Router
	sched   *scheduler.Scheduler
}

func New(cfg config.Config, log *zap.Logger) (*App, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, err
	}
	bot.Debug = false

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}

	return &App{cfg: cfg, log: log, bot: bot, httpSrv: srv}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting victim-of-the-day bot",
		zap.String("tz", a.cfg.TimeZone),
		zap.String("http", a.cfg.HTTPAddr),
	)

	clock, err := domain.NewTZClock(a.cfg.TimeZone)
	if err != nil {
		a.log.Error("invalid time zone", zap.Error(err), zap.String("tz", a.cfg.TimeZone))
		return err
	}

	repo, err := store.OpenSQLite(ctx, a.cfg.DBPath)
	if err != nil {
		a.log.Error("open sqlite failed", zap.Error(err))
		return err
	}
	a.repo = repo
	a.log.Info("sqlite ready", zap.String("path", a.cfg.DBPath))

	picker := domain.NewPicker(nil)
	svc := game.New(repo, clock, picker, a.log)
	sender := telegram.NewSender(a.bot)
	a.router = telegram.NewRouter(a.bot, a.log, repo, svc, sender, clock)
	a.sched = scheduler.New(repo, svc, clock, sender, a.log, a.cfg.SweepInterval)

	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("http server error", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	schedDone := make(chan struct{})
	go func() {
		a.sched.Run(ctx)
		close(schedDone)
	}()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updCh := a.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			a.log.Info("shutdown signal received")

			shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err := a.httpSrv.Shutdown(shCtx)
			cancel()

			if err != nil {
				a.log.Warn("http server shutdown error", zap.Error(err))
			}

			// Wait for an in-flight sweep to finish before closing the
			// database underneath it.
			<-schedDone
			if a.repo != nil {
				_ = a.repo.Close()
			}
			return nil

		case upd := <-updCh:
			a.router.HandleUpdate(ctx, upd)
		}
	}
}
