// Command sangathanctl runs maintenance tasks against the Sangathan database.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dalemusser/sangathan/internal/app/bootstrap"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type options struct {
	mongoURI string
	database string
	verbose  bool
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "sangathanctl",
		Short:         "Maintenance commands for the Sangathan membership database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.mongoURI, "mongo-uri", envOr("SANGATHAN_MONGO_URI", "mongodb://localhost:27017"), "MongoDB connection URI")
	root.PersistentFlags().StringVar(&opts.database, "db", envOr("SANGATHAN_MONGO_DATABASE", "sangathan"), "MongoDB database name")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log at debug level")

	root.AddCommand(newSeedCmd(opts), newSweepCmd(opts), newExportCmd(opts))
	return root
}

func (o *options) logger() *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	if o.verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// connect opens the Mongo backend. The caller must call the returned close.
func (o *options) connect(ctx context.Context, logger *zap.Logger) (bootstrap.DBDeps, func(), error) {
	cfg := bootstrap.AppConfig{
		StoreBackend:     bootstrap.BackendMongo,
		MongoURI:         o.mongoURI,
		MongoDatabase:    o.database,
		MongoMaxPoolSize: 10,
		MongoMinPoolSize: 1,
	}
	deps, err := bootstrap.ConnectDB(ctx, nil, cfg, logger)
	if err != nil {
		return bootstrap.DBDeps{}, nil, err
	}
	closeFn := func() {
		if err := bootstrap.Shutdown(context.Background(), nil, cfg, deps, logger); err != nil {
			logger.Warn("disconnect failed", zap.Error(err))
		}
	}
	if err := bootstrap.EnsureSchema(ctx, nil, cfg, deps, logger); err != nil {
		closeFn()
		return bootstrap.DBDeps{}, nil, err
	}
	return deps, closeFn, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
