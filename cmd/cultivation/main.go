package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/text/width"

	"github.com/l1jgo/cultivation/internal/config"
	"github.com/l1jgo/cultivation/internal/data"
	"github.com/l1jgo/cultivation/internal/game"
	"github.com/l1jgo/cultivation/internal/persist"
	"github.com/l1jgo/cultivation/internal/scripting"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(name string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m               问道  v0.1.0                \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m            修仙世界 · 模拟核心            \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1m世界:\033[0m %s\n\n", name)
}

// displayWidth counts terminal columns: wide and fullwidth runes take two.
func displayWidth(s string) int {
	n := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}

func printSection(title string) {
	lineLen := max(46-displayWidth(title)-1, 3)
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := max(42-displayWidth(label)-len(numStr), 3)
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main loop ─────────────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfg, err := config.Load(config.Path("config/cultivation.toml"))
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

	// 3. Static content and scripts
	printSection("资料载入")
	provider, err := data.Load(cfg.Data.Dir)
	if err != nil {
		return fmt.Errorf("load data: %w", err)
	}
	printStat("角色模板", provider.Count(data.CategoryCharacterTemplate))
	printStat("法术", provider.Count(data.CategoryAbility))
	printStat("功法", provider.Count(data.CategoryTechnique))
	printStat("物品", provider.Count(data.CategoryItem))
	printStat("境界", provider.Count(data.CategoryRealm))
	printStat("奇遇", provider.Count(data.CategoryEncounter))
	printStat("门派", provider.Count(data.CategorySect))
	printStat("人物模板", provider.Count(data.CategoryNPCTemplate))

	lua, err := scripting.NewEngine(cfg.Scripts.Dir, log)
	if err != nil {
		return fmt.Errorf("scripting: %w", err)
	}
	defer lua.Close()
	printOK("Lua 脚本载入完成")
	fmt.Println()

	// 4. Optional chronicle database
	var opts game.Options
	if cfg.Database.DSN != "" {
		printSection("资料库")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		db, err := persist.NewDB(ctx, cfg.Database, log)
		if err != nil {
			cancel()
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		printOK("PostgreSQL 连线成功")

		version, err := persist.RunMigrations(ctx, db)
		cancel()
		if err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		printOK(fmt.Sprintf("资料库迁移完成 (版本 %d)", version))
		fmt.Println()
		repo := persist.NewChronicleRepo(db)
		opts.Sink, opts.History = repo, repo
	}

	// 5. Build the world
	g, err := game.New(cfg, provider, lua, log, opts)
	if err != nil {
		return fmt.Errorf("game: %w", err)
	}
	console := game.NewConsole(g, os.Stdout)
	console.Attach()

	// 6. Console input is read here and applied on the loop goroutine.
	lines := make(chan string)
	go readLines(lines)

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Sim.TickRate)
	defer ticker.Stop()

	if err := g.Start(); err != nil {
		return fmt.Errorf("start: %w", err)
	}

	printSection("世界就绪")
	printReady(fmt.Sprintf("游戏循环启动 (tick: %s, 每日 %.0f 秒)", cfg.Sim.TickRate, cfg.Sim.DayLength))
	printReady("输入 help 查看命令")
	fmt.Println()

	for {
		select {
		case <-ticker.C:
			if err := g.Pump(); err != nil {
				log.Error("tick failed", zap.Error(err))
			}
		case line, ok := <-lines:
			if !ok {
				return shutdown(g, log)
			}
			quit, err := console.Exec(line)
			if err != nil {
				log.Error("command failed", zap.String("line", line), zap.Error(err))
			}
			if quit {
				return shutdown(g, log)
			}
		case sig := <-shutdownCh:
			log.Info("received shutdown signal", zap.String("signal", sig.String()))
			return shutdown(g, log)
		}
	}
}

func readLines(out chan<- string) {
	defer close(out)
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		out <- sc.Text()
	}
}

func shutdown(g *game.Game, log *zap.Logger) error {
	st := g.Status()
	if err := g.Stop(); err != nil {
		log.Error("stop failed", zap.Error(err))
	}
	log.Info("world stopped",
		zap.Int("day", st.Time.Day),
		zap.Int("wins", st.Combat.Wins),
		zap.Int("losses", st.Combat.Losses))
	return nil
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
