package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dragonfell/server/internal/config"
	"github.com/dragonfell/server/internal/data"
	"github.com/dragonfell/server/internal/game"
	"github.com/dragonfell/server/internal/persist"
	"github.com/dragonfell/server/internal/save"
	"github.com/dragonfell/server/internal/scripting"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(serverName string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m           Dragonfell  v0.1.0              \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m      castle simulation server             \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mrealm:\033[0m %s\n\n", serverName)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	pad := 34 - len(label) - len(numStr)
	if pad < 1 {
		pad = 1
	}
	fmt.Printf("  %s%s\033[32m%s\033[0m\n", label, strings.Repeat(" ", pad), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func run() error {
	// 1. Load config
	cfgPath := "config/server.toml"
	if p := os.Getenv("DRAGONFELL_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// 3. Pick the save store: PostgreSQL when configured, in-memory for
	// headless runs.
	var store save.Store
	if cfg.Database.Enabled {
		printSection("database")
		db, err := persist.Open(ctx, cfg.Database, log)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		printOK("PostgreSQL connected, slot schema current")
		fmt.Println()
		store = persist.NewSlotRepo(db.Pool)
	} else {
		store = save.NewMemoryStore()
	}

	// 4. Load content tables
	printSection("content")
	registry := data.NewRegistry()
	if err := registry.Initialize(data.DefaultPaths("data/yaml"), log); err != nil {
		return fmt.Errorf("load content: %w", err)
	}
	items, _ := registry.Items()
	printStat("items", items.Count())
	recipes, _ := registry.Recipes()
	printStat("recipes", recipes.Count())
	nodes, _ := registry.Nodes()
	printStat("map nodes", nodes.Count())
	events, _ := registry.Events()
	printStat("events", events.Count())
	mandates, _ := registry.Mandates()
	printStat("mandates", mandates.Count())
	buildings, _ := registry.Buildings()
	printStat("building tiers", buildings.Count())

	// 5. Balance tuning from Lua
	luaEngine, err := scripting.NewEngine("scripts", log)
	if err != nil {
		return fmt.Errorf("lua engine: %w", err)
	}
	defer luaEngine.Close()
	tuning := luaEngine.BalanceTuning()
	printOK("balance scripts loaded")
	fmt.Println()

	// 6. Assemble the simulation
	seed := time.Now().UnixNano()
	g, err := game.New(cfg, log, registry, tuning, store, seed)
	if err != nil {
		return fmt.Errorf("assemble game: %w", err)
	}

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Sim.TickRate)
	defer ticker.Stop()

	printSection("realm ready")
	printOK(fmt.Sprintf("simulation loop started (tick: %s)", cfg.Sim.TickRate))
	fmt.Println()

	for {
		select {
		case <-ticker.C:
			g.Tick(cfg.Sim.TickRate)
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			saveCtx, saveCancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := g.SaveSlot(saveCtx); err != nil {
				log.Error("final save failed", zap.Error(err))
			}
			saveCancel()
			log.Info("realm stopped")
			return nil
		}
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
