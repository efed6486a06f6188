package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/assembler"
	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/server/httpserver"
	"git.home.luguber.info/inful/sitebuilder/internal/service"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
	"git.home.luguber.info/inful/sitebuilder/internal/sitestore"
	"git.home.luguber.info/inful/sitebuilder/internal/version"
	"github.com/alecthomas/kong"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"sitebuilder.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Serve struct {
		Watch bool `short:"w" help:"Reload configuration when the file changes"`
	} `cmd:"" help:"Start the HTTP service for website generation and asset injection"`

	Generate struct {
		Name     string   `short:"n" help:"Business or site name"`
		Type     string   `short:"t" help:"Website category" default:"business"`
		Sections []string `short:"s" help:"Section names (first four are used)"`
		Site     string   `help:"Named site to bootstrap into (defaults to the root site)"`
		Output   string   `short:"o" help:"Write the generation package to a file instead of stdout"`
		Skeleton bool     `help:"Also write the skeleton pages into the site directory"`
	} `cmd:"" help:"Generate a website package without running the service"`

	Deploy struct {
		Site string `help:"Named site to deploy (defaults to the root site)"`
	} `cmd:"" help:"Publish a bootstrapped site with the configured publisher"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`

	Version struct{} `cmd:"" help:"Print version information"`
}

func main() {
	ctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	switch ctx.Command() {
	case "serve":
		cfg, err := config.Load(CLI.Config)
		if err != nil {
			slog.Error("Failed to load configuration", "error", err)
			os.Exit(1)
		}
		if err := runServe(cfg, logger); err != nil {
			slog.Error("Serve failed", "error", err)
			os.Exit(1)
		}
	case "generate":
		cfg := loadOrDefault(CLI.Config)
		if err := runGenerate(cfg, logger); err != nil {
			slog.Error("Generate failed", "error", err)
			os.Exit(1)
		}
	case "deploy":
		cfg, err := config.Load(CLI.Config)
		if err != nil {
			slog.Error("Failed to load configuration", "error", err)
			os.Exit(1)
		}
		if err := runDeploy(cfg, logger); err != nil {
			slog.Error("Deploy failed", "error", err)
			os.Exit(1)
		}
	case "init":
		if err := config.Init(CLI.Config, CLI.Init.Force); err != nil {
			slog.Error("Init failed", "error", err)
			os.Exit(1)
		}
		fmt.Printf("Configuration written to %s\n", CLI.Config)
	case "version":
		fmt.Printf("sitebuilder %s (built %s, commit %s)\n",
			version.Version, version.BuildTime, version.GitCommit)
	}
}

// loadOrDefault tolerates a missing config file for offline generation.
func loadOrDefault(path string) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		slog.Debug("Using default configuration", "reason", err)
		return config.Default()
	}
	return cfg
}

func runServe(cfg *config.Config, logger *slog.Logger) error {
	svc, err := service.New(cfg, version.Version, logger)
	if err != nil {
		return err
	}
	defer svc.Stop()

	if err := svc.Start(); err != nil {
		return err
	}
	if CLI.Serve.Watch {
		if err := svc.WatchConfig(CLI.Config); err != nil {
			return err
		}
	}

	server := httpserver.New(cfg, svc.Runtime, httpserver.Options{
		PrometheusHandler: svc.MetricsHandler,
		Logger:            logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		return err
	}
	slog.Info("Service started", "port", cfg.Server.Port, "admin_port", cfg.Server.AdminPort)

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Stop(shutdownCtx)
}

func runGenerate(cfg *config.Config, logger *slog.Logger) error {
	ctx := context.Background()

	asm := assembler.New(nil, assembler.Options{
		DefaultCallbackURL: cfg.Site.DefaultCallbackURL,
		Logger:             logger,
	})
	pkg, err := asm.Assemble(ctx, assembler.Request{
		BusinessName: CLI.Generate.Name,
		WebsiteType:  CLI.Generate.Type,
		Sections:     CLI.Generate.Sections,
	})
	if err != nil {
		return err
	}
	slog.Debug("Package assembled", "pages", summarize(pkg))

	if CLI.Generate.Skeleton {
		store, err := sitestore.New(cfg.Site.Directory)
		if err != nil {
			return err
		}
		if err := store.Bootstrap(CLI.Generate.Site, pkg.Pages); err != nil {
			return err
		}
		slog.Info("Skeleton written", "dir", store.Dir(CLI.Generate.Site), "pages", len(pkg.Pages))
	}

	out, err := json.MarshalIndent(pkg, "", "  ")
	if err != nil {
		return err
	}
	if CLI.Generate.Output != "" {
		return os.WriteFile(CLI.Generate.Output, append(out, '\n'), 0o644)
	}
	fmt.Println(string(out))
	return nil
}

func runDeploy(cfg *config.Config, logger *slog.Logger) error {
	svc, err := service.New(cfg, version.Version, logger)
	if err != nil {
		return err
	}
	defer svc.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	dir, err := svc.Runtime.Deploy(ctx, CLI.Deploy.Site)
	if err != nil {
		return err
	}
	slog.Info("Site deployed", "dir", dir, "mode", cfg.Publish.Mode)
	return nil
}

// summarize keeps one-shot output readable when packages are large.
func summarize(pkg *site.GenerationPackage) string {
	names := make([]string, 0, len(pkg.Pages))
	for _, p := range pkg.Pages {
		names = append(names, p.Filename)
	}
	return strings.Join(names, ", ")
}
