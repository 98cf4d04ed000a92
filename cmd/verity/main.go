package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	configPath := flag.String("config", "config.json", "path to config file")
	flag.Parse()

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		os.Stderr.WriteString("config error: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := InitLogger(cfg.LogPath, ParseLogLevel(cfg.LogLevel)); err != nil {
		os.Stderr.WriteString("logger error: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer Logger().Close()

	Logger().Info("Starting VerityGuard")

	sources, err := LoadSourceTable(cfg.SourcesPath)
	if err != nil {
		Logger().Error("Failed to load source table: %v", err)
		os.Exit(1)
	}

	// Fact checking: static reviews always; OpenAI only when configured
	providers := []FactCheckProvider{NewStaticReviewProvider()}
	if cfg.OpenAIAPIKey != "" {
		providers = append(providers, NewOpenAIFactCheckProvider(cfg.OpenAIAPIKey))
		Logger().Info("OpenAI fact-check provider enabled")
	}
	factCheck := NewFactCheckAggregator(providers...)

	trends := NewTrendTable()
	engine := NewTrustEngine(sources, factCheck)
	orchestrator := NewOrchestrator(engine, trends)

	cache := NewFeedCache()
	curator := NewFeedCurator(
		NewRSSProvider("headlines", "general", cfg.HeadlineFeeds),
		NewRSSProvider("categories", "general", cfg.CategoryFeeds),
		NewRSSProvider("local", "local", cfg.LocalFeeds),
		sources, cache, trends, cfg,
	)

	extractor := NewHTTPExtractor()
	educator := NewEducator()
	recommender := NewRecommender(curator, trends, educator)
	conversation := NewConversationEngine(orchestrator, extractor, curator, sources, educator, cfg)

	hub := NewMonitorHub()
	orchestrator.SetSink(hub)

	scheduler := NewScheduler(cache, curator, trends)
	if err := scheduler.Start(); err != nil {
		Logger().Error("Failed to start scheduler: %v", err)
		os.Exit(1)
	}

	api := NewAPIServer(cfg, orchestrator, extractor, curator, conversation, recommender, hub, cache)
	go func() {
		if err := api.Start(); err != nil {
			Logger().Error("HTTP server failed: %v", err)
		}
	}()

	var bot *Bot
	if cfg.BotToken != "" {
		bot, err = NewBot(cfg.BotToken, conversation)
		if err != nil {
			Logger().Error("Failed to create Discord bot: %v", err)
			os.Exit(1)
		}
		if err := bot.Start(); err != nil {
			Logger().Error("Failed to start Discord bot: %v", err)
			os.Exit(1)
		}
	} else {
		Logger().Info("No bot token configured, Discord bridge disabled")
	}

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	Logger().Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if bot != nil {
		bot.Stop()
	}
	scheduler.Stop()
	if err := api.Shutdown(shutdownCtx); err != nil {
		Logger().Warning("HTTP shutdown error: %v", err)
	}
	hub.Close()

	Logger().Info("Shutdown complete")
}
