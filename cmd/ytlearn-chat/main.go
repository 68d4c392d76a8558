package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"ytlearn/internal/chunker"
	"ytlearn/internal/config"
	"ytlearn/internal/embedding"
	"ytlearn/internal/generation"
	"ytlearn/internal/service"
	"ytlearn/internal/session"
	"ytlearn/internal/transcript"
	"ytlearn/internal/tui"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/ytlearn/config.yaml if not provided)")
	flag.Parse()
	args := flag.Args()
	if len(args) != 1 {
		fmt.Println("Usage: ytlearn-chat [--config=config.yaml] <youtube-url>")
		os.Exit(1)
	}

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

	fmt.Println("Fetching transcript and building session...")
	sess, _, err := engine.Ingest(context.Background(), args[0])
	if err != nil {
		log.Fatalf("failed to ingest video: %v", err)
	}

	p := tea.NewProgram(tui.New(engine, sess.ID, sess.Summary), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("tui error: %v", err)
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
