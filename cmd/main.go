package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"fiber-meter/config"
)

var (
	// Глобальные флаги
	cfgPath    string
	verbose    bool
	jsonOutput bool
	backend    string
	modelName  string
	ollamaURL  string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "fiber-meter",
	Short: "Считывает рукописную длину волокна с фотографий через мультимодальную модель",
	Long: `fiber-meter отправляет снимок локальной мультимодальной модели (по умолчанию
Ollama llava-phi3), достаёт из ответа число в метрах и оценивает уверенность.

Режимы: один снимок, сравнение двух снимков, пакетная обработка каталога,
наблюдение за каталогом, Telegram-бот, HTTP API и терминальный интерфейс.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}
		applyFlagOverrides(cmd, cfg)

		logger, err = newLogger(cfg.Log.Level, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgPath, "config", "c", config.DefaultPath, "путь к YAML-конфигу")
	pf.BoolVarP(&verbose, "verbose", "v", false, "подробный лог в консоль")
	pf.BoolVar(&jsonOutput, "json", false, "печатать результат в JSON")
	pf.StringVar(&backend, "backend", "", "бэкенд модели: ollama или gemini")
	pf.StringVar(&modelName, "model", "", "имя модели Ollama")
	pf.StringVar(&ollamaURL, "ollama-url", "", "адрес Ollama")

	rootCmd.AddCommand(analyzeCmd, compareCmd, batchCmd, watchCmd, historyCmd, botCmd, serveCmd, tuiCmd)
}

func applyFlagOverrides(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("backend") {
		c.Vision.Backend = backend
	}
	if flags.Changed("model") {
		c.Vision.Ollama.Model = modelName
	}
	if flags.Changed("ollama-url") {
		c.Vision.Ollama.URL = ollamaURL
	}
}

func newLogger(level string, verbose bool) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if verbose {
		zcfg = zap.NewDevelopmentConfig()
	}
	lvl := zapcore.InfoLevel
	if level != "" {
		if err := lvl.Set(level); err != nil {
			return nil, err
		}
	}
	if verbose && lvl > zapcore.DebugLevel {
		lvl = zapcore.DebugLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
