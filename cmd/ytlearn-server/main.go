package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"ytlearn/internal/chunker"
	"ytlearn/internal/config"
	"ytlearn/internal/embedding"
	"ytlearn/internal/generation"
	"ytlearn/internal/server"
	"ytlearn/internal/service"
	"ytlearn/internal/session"
	"ytlearn/internal/transcript"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/ytlearn/config.yaml if not provided)")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	engine, err := buildEngine(cfg)
	if err != nil {
		log.Fatalf("failed to assemble engine: %v", err)
	}

	e := server.New(engine, nil)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("start http server on %s", cfg.Server.Address)
		if err := e.Start(cfg.Server.Address); err != nil && err != http.ErrServerClosed {
			log.Fatalf("run http server: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown server gracefully: %v", err)
	}
}

func buildEngine(cfg *config.AppConfig) (*service.Engine, error) {
	ch, err := chunker.NewWordChunker(cfg.Chunker.ChunkSize, cfg.Chunker.Overlap)
	if err != nil {
		return nil, err
	}
	emb, err := embedding.NewClient(embedding.Config{
		BaseURL:     cfg.OpenAI.BaseURL,
		APIKeyEnv:   cfg.OpenAI.APIKeyEnv,
		Model:       cfg.OpenAI.EmbeddingModel,
		Timeout:     time.Duration(cfg.OpenAI.TimeoutSecs) * time.Second,
		MaxInflight: int64(cfg.OpenAI.MaxInflight),
	})
	if err != nil {
		return nil, err
	}
	gen, err := generation.NewClient(generation.Config{
		BaseURL:     cfg.OpenAI.BaseURL,
		APIKeyEnv:   cfg.OpenAI.APIKeyEnv,
		Model:       cfg.OpenAI.ChatModel,
		Temperature: cfg.OpenAI.Temperature,
		Timeout:     time.Duration(cfg.OpenAI.TimeoutSecs) * time.Second,
		MaxInflight: int64(cfg.OpenAI.MaxInflight),
	})
	if err != nil {
		return nil, err
	}
	source := transcript.NewYouTube(transcript.Config{
		Languages: cfg.Transcript.Languages,
		Timeout:   time.Duration(cfg.Transcript.TimeoutSecs) * time.Second,
	})
	store := session.NewStore(cfg.Sessions.Capacity)
	return service.NewEngine(ch, emb, gen, source, store, service.Options{
		SummaryTopK: cfg.Retrieval.SummaryTopK,
		AnswerTopK:  cfg.Retrieval.AnswerTopK,
	}), nil
}
