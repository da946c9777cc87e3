package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	usetree "github.com/RobbyUitbeijerse/use-tree"
	"github.com/RobbyUitbeijerse/use-tree/pkg/adapters/file"
	httpAdapter "github.com/RobbyUitbeijerse/use-tree/pkg/adapters/http"
	"github.com/RobbyUitbeijerse/use-tree/pkg/adapters/redis"
	"github.com/RobbyUitbeijerse/use-tree/pkg/domain"
	"github.com/RobbyUitbeijerse/use-tree/pkg/observability"
	"github.com/RobbyUitbeijerse/use-tree/pkg/persistence/middleware"
	"github.com/RobbyUitbeijerse/use-tree/pkg/ports"
	"github.com/RobbyUitbeijerse/use-tree/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve <file>",
	Short: "Serve a tree over HTTP",
	Long:  `Loads the tree described by the given YAML file and exposes it as a JSON API with server-sent tree updates.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, logger := setup(cmd)

		addr, _ := cmd.Flags().GetString("addr")
		if !cmd.Flags().Changed("addr") && cfg.Addr != "" {
			addr = cfg.Addr
		}
		redisAddr, _ := cmd.Flags().GetString("redis")
		if redisAddr == "" {
			redisAddr = cfg.Redis
		}
		metrics, _ := cmd.Flags().GetBool("metrics")
		metrics = metrics || cfg.Metrics
		sessionKey, _ := cmd.Flags().GetString("session")

		source, err := file.Load(args[0])
		if err != nil {
			fmt.Printf("Error loading %s: %v\n", args[0], err)
			os.Exit(1)
		}

		opts := []usetree.Option[file.Payload]{usetree.WithLogger[file.Payload](logger)}
		if cfg.LoadingTransitionMs > 0 {
			opts = append(opts, usetree.WithLoadingTransition[file.Payload](
				time.Duration(cfg.LoadingTransitionMs)*time.Millisecond))
		}

		var registry *prometheus.Registry
		if metrics {
			registry = prometheus.NewRegistry()
			collectors := observability.NewMetrics(registry)
			opts = append(opts, usetree.WithHooks[file.Payload](collectors.Hooks()))
		}

		// With Redis the view state survives restarts: the engine starts from
		// the stored state and writes every change back.
		if redisAddr != "" {
			store := redis.New(redisAddr, "", 0)
			defer store.Close()

			var stateStore ports.StateStore = store
			if keyHex := os.Getenv("USE_TREE_STATE_KEY"); keyHex != "" {
				key, err := hex.DecodeString(keyHex)
				if err != nil {
					fmt.Printf("Error decoding USE_TREE_STATE_KEY: %v\n", err)
					os.Exit(1)
				}
				stateStore = middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})(stateStore)
			}
			manager := session.NewManager(stateStore, session.WithLogger(logger))

			loadCtx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			state, err := manager.LoadOrInit(loadCtx, sessionKey)
			cancel()
			if err != nil {
				fmt.Printf("Error loading session %q: %v\n", sessionKey, err)
				os.Exit(1)
			}

			opts = append(opts,
				usetree.WithInitialState[file.Payload](state),
				usetree.WithStateListener[file.Payload](func(s domain.ViewState) {
					ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
					defer cancel()
					if err := manager.Save(ctx, sessionKey, s); err != nil {
						logger.Warn("session save failed", "key", sessionKey, "error", err)
					}
				}),
			)
		}

		engine := usetree.New(source, opts...)
		defer engine.Close()

		handlerOpts := []httpAdapter.Option{httpAdapter.WithLogger(logger)}
		if registry != nil {
			handlerOpts = append(handlerOpts, httpAdapter.WithMetrics(registry))
		}

		srv := &http.Server{
			Addr:    addr,
			Handler: httpAdapter.NewHandler(engine, handlerOpts...),
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			fmt.Printf("Starting use-tree server on %s\n", srv.Addr)
			fmt.Printf("Serving tree from: %s\n", args[0])
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			fmt.Printf("\nStart shutdown... Signal: %v\n", sig)

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
				if err := srv.Close(); err != nil {
					fmt.Printf("Error killing server: %v\n", err)
				}
			}
			fmt.Println("use-tree server stopped gracefully")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", ":8080", "Address to listen on")
	serveCmd.Flags().String("redis", "", "Redis address for view state persistence")
	serveCmd.Flags().Bool("metrics", false, "Expose Prometheus metrics on /metrics")
	serveCmd.Flags().String("session", "default", "Session key for persisted view state")
}
