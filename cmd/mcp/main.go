package main

import (
	"fmt"
	"io"
	"os"

	"bookcatalog/internal/client"
	"bookcatalog/internal/logging"
	"bookcatalog/internal/mcpserver"
	"bookcatalog/internal/tools"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
)

type cli struct {
	APIURL   string `name:"api-url" env:"SAMPLE_API_URL" default:"http://localhost:8000" help:"Base URL of the book catalog API."`
	LogFile  string `name:"log-file" env:"MCP_LOG_FILE" default:"mcp_server.log" help:"File receiving a copy of every log line."`
	LogLevel string `name:"log-level" env:"LOG_LEVEL" default:"info" help:"debug, info, warn or error."`
}

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	var c cli
	kong.Parse(&c,
		kong.Name("mcp"),
		kong.Description("MCP server exposing the book catalog over stdio."),
		kong.UsageOnError(),
	)

	logFile, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	// Stdout carries the protocol; logs go to stderr and the file only.
	logger := logging.New(logging.Config{
		Level:   c.LogLevel,
		Format:  "logfmt",
		Prefix:  "mcp",
		Writers: []io.Writer{logFile},
	})

	if err := run(c, logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(c cli, logger *log.Logger) error {
	api := client.New(c.APIURL, client.WithUserAgent("bookcatalog-mcp/"+mcpserver.Version))

	registry := tools.NewRegistry()
	if err := registry.Register(tools.BookTools(api, logger)...); err != nil {
		return err
	}

	s := mcpserver.New(registry, logger)
	logger.Info("starting MCP server", "name", mcpserver.Name, "version", mcpserver.Version, "api_url", api.BaseURL(), "tools", len(registry.All()))

	return server.ServeStdio(s,
		server.WithErrorLogger(logger.StandardLog(log.StandardLogOptions{ForceLevel: log.ErrorLevel})),
	)
}
