package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/docpipe/internal/logfields"
)

var CLI struct {
	Config  string `short:"c" help:"Pipeline declaration file" default:"docpipe.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Build struct {
		BuildDir string   `short:"b" help:"Use a fixed build directory instead of a temporary one"`
		Watch    bool     `short:"w" help:"Watch project files and re-run the pipeline on changes"`
		Serve    bool     `help:"Serve the site with live reload instead of building once"`
		Set      []string `short:"O" name:"option" help:"Override a pipeline option (name=value, or name for flags)"`
	} `cmd:"" default:"withargs" help:"Run the documentation build pipeline"`

	Graph struct{} `cmd:"" help:"Print the resolved action execution order without running"`

	Init struct {
		Force bool `help:"Overwrite an existing pipeline file"`
	} `cmd:"" help:"Write a starter pipeline declaration"`
}

func main() {
	// A .env next to the invocation provides option defaults; absence is fine.
	_ = godotenv.Load()

	kctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch kctx.Command() {
	case "build":
		err = runBuild(ctx)
	case "graph":
		err = runGraph()
	case "init":
		err = runInit()
	default:
		err = fmt.Errorf("unknown command %q", kctx.Command())
	}
	if err != nil {
		slog.Error("docpipe failed", logfields.Error(err))
		os.Exit(1)
	}
}
