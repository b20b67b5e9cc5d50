package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/VitaminP8/devshare/internal/api"
	"github.com/VitaminP8/devshare/internal/comment"
	"github.com/VitaminP8/devshare/internal/config"
	"github.com/VitaminP8/devshare/internal/logger"
	"github.com/VitaminP8/devshare/internal/post"
	"github.com/VitaminP8/devshare/internal/storage/memory"
	"github.com/VitaminP8/devshare/internal/storage/postgres"
	"github.com/VitaminP8/devshare/internal/subscription"
	"github.com/VitaminP8/devshare/internal/user"
)

const shutdownTimeout = 10 * time.Second

var (
	storageType string
	addr        string
	verbose     bool

	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "devshare-server",
	Short: "DevShare Lite API server",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		log, err = logger.New(verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
	RunE: run,
}

func init() {
	rootCmd.Flags().StringVar(&storageType, "storage", "memory", "Storage backend: memory, postgres or sqlite")
	rootCmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: SERVER_ADDR or :8080)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

type stores struct {
	posts    post.PostStorage
	users    user.UserStorage
	comments comment.CommentStorage
	close    func() error
}

func openStores(cfg config.Config, manager subscription.Manager) (*stores, error) {
	switch storageType {
	case "memory":
		log.Info("using in-memory storage")
		posts := memory.NewPostMemoryStorage()
		users := memory.NewUserMemoryStorage(cfg.JWTSecret)
		return &stores{
			posts:    posts,
			users:    users,
			comments: memory.NewCommentMemoryStorage(posts, users, manager),
			close:    func() error { return nil },
		}, nil

	case "postgres", "sqlite":
		dialect, dsn := postgres.DialectPostgres, cfg.DB.DSN()
		if storageType == "sqlite" {
			dialect, dsn = postgres.DialectSQLite, cfg.SQLitePath
		}
		if err := postgres.InitDB(dialect, dsn, log); err != nil {
			return nil, err
		}
		return &stores{
			posts:    postgres.NewPostPostgresStorage(),
			users:    postgres.NewUserPostgresStorage(cfg.JWTSecret),
			comments: postgres.NewCommentPostgresStorage(manager),
			close:    postgres.CloseDB,
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage type: %s", storageType)
	}
}

func run(cmd *cobra.Command, args []string) error {
	// загружаем .env, если он есть
	if !config.LoadEnv() {
		log.Debug(".env not loaded, using process environment")
	}
	cfg := config.Load()
	if err := cfg.RequireJWTSecret(); err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.Addr
	}

	manager := subscription.NewSubscriptionManager(subscription.WithLogger(log))
	st, err := openStores(cfg, manager)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.close(); err != nil {
			log.Warn("failed to close storage", zap.Error(err))
		}
	}()

	server := &http.Server{
		Addr: addr,
		Handler: api.NewRouter(api.Deps{
			Posts:     st.posts,
			Users:     st.users,
			Comments:  st.comments,
			Events:    manager,
			JWTSecret: cfg.JWTSecret,
			Logger:    log,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	// закрываем потоки событий, иначе Shutdown ждет их до таймаута
	server.RegisterOnShutdown(manager.Close)

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server started", zap.String("addr", addr), zap.String("storage", storageType))
		// ListenAndServe блокирует, пока не вызван Shutdown
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Ожидание SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	log.Info("server stopped")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
