package server

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"

	"github.com/nwatteau/linktrap/cmd"
	"github.com/nwatteau/linktrap/internal/api"
	"github.com/nwatteau/linktrap/internal/bot"
	"github.com/nwatteau/linktrap/internal/config"
	"github.com/nwatteau/linktrap/internal/models"
	"github.com/nwatteau/linktrap/internal/monitor"
	"github.com/nwatteau/linktrap/internal/services"
	"github.com/nwatteau/linktrap/internal/workers"
)

// RunServerCmd is the 'run-server' command: it wires the bot transport, the
// HTTP surface, the notification workers and the dependency monitor, then
// serves until a shutdown signal arrives.
var RunServerCmd = &cobra.Command{
	Use:   "run-server",
	Short: "Start the tracking server and the Telegram bot dispatcher.",
	Long: `This command connects to the Telegram bot API, configures the tracking and
callback endpoints, starts the visit notification workers and the dependency
monitor, then launches the HTTP server.`,
	Run: func(cobraCmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
		if err := cfg.ValidateForServer(); err != nil {
			// Refuse to start degraded; a bot-less tracker is useless.
			log.Fatalf("Invalid configuration: %v", err)
		}

		botAPI, err := tgbotapi.NewBotAPI(cfg.Bot.Token)
		if err != nil {
			log.Fatalf("Failed to connect to the Telegram bot API: %v", err)
		}
		log.Printf("Bot authorized as @%s", botAPI.Self.UserName)

		links := services.NewLinkService(
			cfg.Server.BaseURL,
			cfg.Shortener.Enabled,
			services.NewShortenerClient(cfg.Shortener.Endpoint, time.Duration(cfg.Shortener.TimeoutSeconds)*time.Second),
		)

		// Visit notification pipeline: handlers enqueue, workers send.
		visitEvents := make(chan models.VisitEvent, cfg.Notifications.BufferSize)
		workers.StartVisitWorkers(cfg.Notifications.WorkerCount, visitEvents, botAPI)
		log.Printf("Visit event channel initialized with a buffer of %d. %d worker(s) started.",
			cfg.Notifications.BufferSize, cfg.Notifications.WorkerCount)

		// Bot dispatcher on its own long-polling goroutine.
		dispatcher := bot.NewDispatcher(botAPI, links)
		updateCfg := tgbotapi.NewUpdate(0)
		updateCfg.Timeout = 60
		go dispatcher.Run(botAPI.GetUpdatesChan(updateCfg))

		// Dependency monitor.
		targets := []monitor.Target{
			{Name: "telegram-api", URL: "https://api.telegram.org"},
		}
		if cfg.Shortener.Enabled {
			targets = append(targets, monitor.Target{Name: "shortener", URL: cfg.Shortener.Endpoint})
		}
		healthMonitor := monitor.NewHealthMonitor(targets, time.Duration(cfg.Monitor.IntervalMinutes)*time.Minute)
		go healthMonitor.Start()
		log.Printf("Dependency monitor started with an interval of %dmin.", cfg.Monitor.IntervalMinutes)

		// HTTP surface.
		router := gin.Default()
		handlers := api.NewHandlers(botAPI, links, cfg.Tracking.AboutURL, visitEvents)
		api.SetupRoutes(router, handlers)
		log.Println("Routes configured.")

		serverAddr := fmt.Sprintf(":%d", cfg.Server.Port)
		srv := &http.Server{
			Addr:    serverAddr,
			Handler: router,
		}

		go func() {
			log.Printf("Starting server on %s (advertised as %s)", serverAddr, cfg.Server.BaseURL)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("Failed to start server: %v", err)
			}
		}()

		// Graceful shutdown on SIGINT/SIGTERM.
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutdown signal received. Stopping server...")

		botAPI.StopReceivingUpdates()
		close(visitEvents)

		log.Println("Shutting down... giving workers a moment to drain.")
		time.Sleep(5 * time.Second)

		log.Println("Server stopped cleanly.")
	},
}

func init() {
	cmd.RootCmd.AddCommand(RunServerCmd)
}
