package serve

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/timbermetrics/timbervol-go/internal/analysis"
	"github.com/timbermetrics/timbervol-go/internal/api"
	"github.com/timbermetrics/timbervol-go/internal/conf"
)

const shutdownTimeout = 10 * time.Second

// Command creates the serve command running the estimation HTTP API.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the estimation HTTP API",
		Long: `Serve the batch estimation operations and species diagnostics over HTTP,
with Prometheus metrics on /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(settings)
		},
	}

	setupFlags(cmd, settings)

	return cmd
}

func setupFlags(cmd *cobra.Command, settings *conf.Settings) {
	cmd.Flags().StringVar(&settings.HTTP.Host, "host", viper.GetString("http.host"), "Host to bind the API server to")
	cmd.Flags().IntVarP(&settings.HTTP.Port, "port", "p", viper.GetInt("http.port"), "Port to bind the API server to")

	for flag, key := range map[string]string{"host": "http.host", "port": "http.port"} {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			panic(err)
		}
	}
}

func runServer(settings *conf.Settings) error {
	estimator, err := analysis.NewEstimator(settings)
	if err != nil {
		return err
	}

	controller := api.New(settings, estimator)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- controller.Start()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return controller.Shutdown(shutdownCtx)
}
