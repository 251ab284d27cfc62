package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/desta-elias/smart-bed-u/internal/actuator"
	"github.com/desta-elias/smart-bed-u/internal/handlers"
	"github.com/desta-elias/smart-bed-u/internal/logger"
	"github.com/desta-elias/smart-bed-u/internal/repository"
	"github.com/desta-elias/smart-bed-u/internal/repository/db"
	"github.com/desta-elias/smart-bed-u/internal/server"
	"github.com/desta-elias/smart-bed-u/internal/service"

	"github.com/spf13/viper"
)

const defaultSchedulerTick = 10 * time.Second

func main() {
	// load config.yml first so the log level comes from it
	if err := loadConfig(); err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}
	log := logger.Get(viper.GetString("log.level"))

	// open DB
	database, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := database.Close(); cerr != nil {
			log.Fatalw("failed to close sqlite", "err", cerr)
		}
	}()

	// actuator publisher: MQTT when a broker is configured, no-op otherwise
	publisher := newPublisher(log)
	defer func() { _ = publisher.Close() }()

	// wire dependencies
	repos := repository.NewRepository(database)
	services := service.NewService(repos, publisher, log)
	apiHandler := handlers.NewHandler(services, log)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// start the scheduled-movement loop (via composed service)
	go services.Scheduler.Run(ctx, schedulerTick())

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	return viper.ReadInConfig()
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "smartbed.db")
		dbPath = "smartbed.db"
	}
	return db.InitDB(dbPath)
}

// newPublisher connects to the configured MQTT broker; without one, bed
// commands are dropped (the API still records every movement in SQLite).
func newPublisher(log *logger.Logger) actuator.Publisher {
	broker := viper.GetString("actuator.broker")
	if broker == "" {
		log.Infow("actuator.broker not set; bed commands will not be published")
		return actuator.NopPublisher{}
	}
	pub, err := actuator.NewMQTTPublisher(broker, viper.GetString("actuator.topic"))
	if err != nil {
		log.Fatalw("failed to connect to mqtt broker", "broker", broker, "err", err)
	}
	log.Infow("connected to mqtt broker", "broker", broker)
	return pub
}

// schedulerTick reads scheduler.tick_seconds with a 10s default.
func schedulerTick() time.Duration {
	if s := viper.GetInt("scheduler.tick_seconds"); s > 0 {
		return time.Duration(s) * time.Second
	}
	return defaultSchedulerTick
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
