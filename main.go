package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joe-ervin05/myblog/api"
	"github.com/joe-ervin05/myblog/config"
	"github.com/joe-ervin05/myblog/daos"
	"github.com/joe-ervin05/myblog/photos"
	"github.com/joe-ervin05/myblog/tools"
	"github.com/joe-ervin05/myblog/views"
)

func main() {
	cfg := config.Load()
	log := tools.NewLogger(cfg.Env, cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dao, err := daos.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := dao.Close(); err != nil {
			log.Error("error closing database", slog.Any("error", err))
		}
	}()

	if err := dao.Bootstrap(ctx); err != nil {
		return err
	}

	photoStore, err := photos.NewStore(cfg.PhotoDir, cfg.UploadTmpDir, log)
	if err != nil {
		return err
	}

	handler := api.NewHandler(dao, photoStore, views.New(), cfg, log)

	server := &http.Server{
		Addr:    cfg.Port,
		Handler: handler.Router(),
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("Server running at http://localhost" + cfg.Port + "/")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	log.Info("server stopped")
	return nil
}
