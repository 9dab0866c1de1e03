package cli

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"

	"github.com/hpcsched/batling/internal/sched"
	"github.com/hpcsched/batling/internal/server"
	"github.com/hpcsched/batling/internal/trace"
)

var (
	serveListen    string
	serveStrategy  string
	servePlacement string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scheduler decision server",
	Long: `Start the HTTP server a simulation host drives: one session per run,
one POST per decision cycle.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Load .env file if it exists (ignore error if not found)
		_ = godotenv.Load()

		strategy, err := sched.ParseStrategy(serveStrategy)
		if err != nil {
			return err
		}
		placement, err := sched.ParsePlacement(servePlacement)
		if err != nil {
			return err
		}

		store, closer := initStore()
		if closer != nil {
			defer func() {
				if err := closer(); err != nil {
					log.Printf("error closing trace store: %v", err)
				}
			}()
		}

		scheduler := sched.New(strategy, placement)
		srv := server.NewServer(scheduler, store)

		e := echo.New()
		e.Use(middleware.Logger())
		e.Use(middleware.Recover())

		e.GET(
			"/health", func(c echo.Context) error {
				return c.JSON(
					http.StatusOK, map[string]string{
						"status":  "ok",
						"service": sched.Name,
					},
				)
			},
		)

		srv.RegisterRoutes(e)

		go func() {
			if err := e.Start(serveListen); err != nil && !errors.Is(err, http.ErrServerClosed) {
				e.Logger.Fatal("shutting down the server")
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit

		e.Logger.Info("shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := e.Shutdown(ctx); err != nil {
			e.Logger.Fatal(err)
		}

		e.Logger.Info("server stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveListen, "listen", ":8080", "listen address")
	serveCmd.Flags().StringVar(&serveStrategy, "strategy", "conservative", "backfill strategy (fcfs, easy, conservative)")
	serveCmd.Flags().StringVar(&servePlacement, "placement", "lowest", "placement policy (lowest, best-effort, contiguous)")
}

// initStore initializes the trace store based on environment variables
// Returns the store and an optional closer function
func initStore() (trace.Store, func() error) {
	storeType := os.Getenv("STORE_TYPE")
	if storeType == "" {
		storeType = "memory" // default to in-memory
	}

	switch storeType {
	case "postgres":
		dbURL := os.Getenv("DATABASE_URL")
		if dbURL == "" {
			log.Fatal("DATABASE_URL environment variable is required when STORE_TYPE=postgres")
		}

		pgStore, err := trace.NewPostgresStore(dbURL)
		if err != nil {
			log.Fatalf("failed to initialize PostgreSQL trace store: %v", err)
		}

		log.Println("PostgreSQL trace store initialized successfully")
		return pgStore, pgStore.Close

	case "memory":
		log.Println("using in-memory trace store (data will not persist)")
		return trace.NewInMemoryStore(), nil

	default:
		log.Fatalf("unknown STORE_TYPE: %s (valid options: memory, postgres)", storeType)
		return nil, nil
	}
}
