package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/VitaminP8/devshare/internal/api"
	"github.com/VitaminP8/devshare/internal/auth"
	"github.com/VitaminP8/devshare/internal/config"
	"github.com/VitaminP8/devshare/internal/logger"
)

// initTimeout - сколько ждем сервер при проверке сохраненного токена
const initTimeout = 5 * time.Second

var (
	apiURL  string
	verbose bool

	log     *zap.Logger
	session *auth.Session
	client  *api.Client
)

var rootCmd = &cobra.Command{
	Use:           "devshare",
	Short:         "DevShare Lite command line client",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		log, err = logger.New(verbose)
		if err != nil {
			return err
		}

		config.LoadEnv()
		cfg := config.Load()
		if apiURL == "" {
			apiURL = cfg.APIURL
		}

		session = auth.NewSession(cfg.TokenPath)
		client = api.NewClient(apiURL, session)

		ctx, cancel := context.WithTimeout(cmd.Context(), initTimeout)
		defer cancel()
		// отклоненный токен уже стерт, продолжаем анонимно
		if err := session.Init(ctx, client.Profile); err != nil {
			log.Warn("session not restored", zap.Error(err))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "API base URL (default: DEVSHARE_API or http://localhost:8080)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(
		registerCmd, loginCmd, logoutCmd, whoamiCmd,
		postsCmd, postCmd,
		threadCmd, commentCmd, editCmd, likeCmd, deleteCmd,
	)
}

func main() {
	// Ctrl-C прерывает --follow и текущий запрос
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
