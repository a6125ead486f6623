package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kelseyhightower/envconfig"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/bulwark-go/bulwark"
	"github.com/bulwark-go/bulwark/pkg/auth"
	"github.com/bulwark-go/bulwark/pkg/boundary"
	"github.com/bulwark-go/bulwark/pkg/transport"
)

// serveConfig is read from BULWARK_* environment variables.
type serveConfig struct {
	Addr       string `default:":8080"`
	Dev        bool   `default:"false"`
	CSRFSecret string `split_words:"true"`
}

func serveCmd() *cobra.Command {
	var addr string
	var dev bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a demo server exercising the error pipeline",
		Long: `Run a small demo server with routes that throw each built-in error
kind, a protected area, a WebSocket error stream, and a /metrics
endpoint. Flags override BULWARK_* environment variables.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg serveConfig
			if err := envconfig.Process("bulwark", &cfg); err != nil {
				return fmt.Errorf("reading environment: %w", err)
			}
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("dev") {
				cfg.Dev = dev
			}
			return serve(cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")
	cmd.Flags().BoolVar(&dev, "dev", false, "Development mode (error pages include causes and stacks)")

	return cmd
}

func serve(cfg serveConfig) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	appCfg := bulwark.Config{
		DevMode: cfg.Dev,
		Logger:  logger,
	}
	if cfg.CSRFSecret != "" {
		appCfg.CSRF = &auth.CSRF{Secret: []byte(cfg.CSRFSecret)}
	}
	app := bulwark.New(appCfg)
	defer app.Close()

	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.Group(func(r chi.Router) {
		r.Use(app.Middleware()...)

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintln(w, "bulwark demo. Try /missing, /private, /admin, /redirect, /crash, /errors (ws)")
		})
		r.Get("/missing", func(w http.ResponseWriter, r *http.Request) {
			bulwark.Throw(bulwark.NewNotFoundError())
		})
		r.Get("/private", func(w http.ResponseWriter, r *http.Request) {
			bulwark.Throw(bulwark.NewAuthenticationError())
		})
		r.Get("/admin", func(w http.ResponseWriter, r *http.Request) {
			bulwark.Throw(bulwark.NewAuthorizationError("Admins only"))
		})
		r.Get("/redirect", func(w http.ResponseWriter, r *http.Request) {
			bulwark.Throw(bulwark.NewRedirectError("/"))
		})
		r.Get("/crash", func(w http.ResponseWriter, r *http.Request) {
			panic("demo crash")
		})
		r.Handle("/fail", bulwark.Handler(func(w http.ResponseWriter, r *http.Request) error {
			return errors.New("backend unavailable")
		}))

		// Streams one error per second until the client hangs up.
		r.Get("/errors", func(w http.ResponseWriter, r *http.Request) {
			stream, err := transport.Upgrade(w, r, transport.Config{
				CheckOrigin: func(*http.Request) bool { return cfg.Dev },
				Logger:      logger,
			})
			if err != nil {
				return
			}
			defer stream.Close()
			go stream.HeartbeatLoop()
			for {
				if err := stream.SendError(bulwark.NewNotFoundError()); err != nil {
					return
				}
				time.Sleep(time.Second)
			}
		})

		// Nested boundary: authentication failures under /app render a
		// plain-text login hint instead of the default page.
		r.Route("/app", func(r chi.Router) {
			nested := boundary.New(boundary.WithFallback("AuthenticationError",
				func(w http.ResponseWriter, r *http.Request, err *bulwark.Error) {
					w.WriteHeader(err.StatusCode)
					fmt.Fprintln(w, "Please sign in at /login")
				}))
			r.Use(nested.Middleware)
			r.Get("/dashboard", func(w http.ResponseWriter, r *http.Request) {
				bulwark.Throw(bulwark.NewAuthenticationError())
			})
		})
	})

	logger.Info("listening", "addr", cfg.Addr, "dev", cfg.Dev)
	return http.ListenAndServe(cfg.Addr, r)
}
