package cmd

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/mockview/mockview/internal/logger"
	"github.com/mockview/mockview/internal/server"
)

const defaultListen = ":8080"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the interview API over HTTP",
	Run: func(cmd *cobra.Command, _ []string) {
		serve(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen", "l", "", "listen address (default :8080)")
	viper.BindPFlag("listen", serveCmd.Flags().Lookup("listen"))
}

func serve(_ *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}
	if config == nil {
		logger.Fatal("config is required")
	}

	engine, err := buildEngine(ctx, config, logger)
	if err != nil {
		logger.Fatal("building the interview engine", zap.Error(err))
	}

	listen := viper.GetString("listen")
	if listen == "" {
		listen = config.Listen
	}
	if listen == "" {
		listen = defaultListen
	}

	// Voice streaming needs a speech backend; until one is configured the
	// endpoint reports itself unavailable.
	srv := &http.Server{
		Addr:              listen,
		Handler:           server.New(engine, nil, logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("serving the interview API", zap.String("listen", listen), zap.String("version", version))
	if err := srv.ListenAndServe(); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
