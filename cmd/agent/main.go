package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"bookcatalog/internal/agent"
	"bookcatalog/internal/client"
	"bookcatalog/internal/logging"
	"bookcatalog/internal/tools"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/sashabaranov/go-openai"
)

type cli struct {
	Query      string `arg:"" optional:"" help:"Question for the agent; read from stdin when omitted."`
	APIURL     string `name:"api-url" env:"SAMPLE_API_URL" default:"http://localhost:8000" help:"Base URL of the book catalog API."`
	LLMModel   string `name:"llm-model" env:"LLM_MODEL" help:"Chat model name."`
	LLMBaseURL string `name:"llm-base-url" env:"LLM_BASE_URL" help:"OpenAI-compatible endpoint, e.g. http://localhost:1234."`
	LLMAPIKey  string `name:"llm-api-key" env:"LLM_API_KEY" help:"API key for the endpoint."`
	LogLevel   string `name:"log-level" env:"LOG_LEVEL" default:"warn" help:"debug, info, warn or error."`
}

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	var c cli
	kong.Parse(&c,
		kong.Name("agent"),
		kong.Description("Answer questions about the book catalog with a tool-calling model."),
		kong.UsageOnError(),
	)

	logger := logging.New(logging.Config{Level: c.LogLevel, Prefix: "agent"})

	query := strings.TrimSpace(c.Query)
	if query == "" {
		fmt.Print("Enter your query: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			logger.Fatal("read query", "err", err)
		}
		query = strings.TrimSpace(line)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := openai.DefaultConfig(c.LLMAPIKey)
	if c.LLMBaseURL != "" {
		cfg.BaseURL = llmBaseURL(c.LLMBaseURL)
	}

	registry := tools.NewRegistry()
	api := client.New(c.APIURL, client.WithUserAgent("bookcatalog-agent"))
	if err := registry.Register(agent.BookTools(api)...); err != nil {
		logger.Fatal("register tools", "err", err)
	}

	runner := agent.NewRunner(openai.NewClientWithConfig(cfg), c.LLMModel, registry, logger)
	res, err := runner.Run(ctx, query)
	if err != nil {
		logger.Fatal("agent run failed", "err", err)
	}
	fmt.Println(agent.Report(res))
}

// llmBaseURL normalizes an OpenAI-compatible endpoint to end in /v1.
func llmBaseURL(raw string) string {
	u := strings.TrimRight(strings.TrimSpace(raw), "/")
	if strings.HasSuffix(u, "/v1") {
		return u
	}
	return u + "/v1"
}
