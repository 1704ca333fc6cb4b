package main

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	telegram "fiber-meter/internal/api"
	"fiber-meter/internal/api/httpapi"
	"fiber-meter/internal/tui"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Запустить Telegram-бота",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Telegram.Token == "" {
			return errors.New("TELEGRAM_TOKEN is required")
		}

		rt, err := buildRuntime(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer rt.Close()

		if err := rt.Ping(cmd.Context()); err != nil {
			logger.Warn("vision model is not reachable yet", zap.Error(err))
		}

		bot, err := telegram.NewBot(cfg.Telegram.Token, rt.services, logger.Named("telegram"))
		if err != nil {
			return err
		}

		logger.Info("bot is running")
		return bot.Run(cmd.Context())
	},
}

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Запустить HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("addr") {
			cfg.HTTP.Addr = serveAddr
		}

		rt, err := buildRuntime(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer rt.Close()

		return httpapi.NewServer(rt.services, logger.Named("http")).Run(cmd.Context(), cfg.HTTP.Addr)
	},
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Терминальный интерфейс: один снимок или сравнение двух",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Лог в консоль сломал бы экран.
		quiet := zap.NewNop()
		if verbose {
			quiet = logger
		}

		rt, err := buildRuntime(cmd.Context(), cfg, quiet)
		if err != nil {
			return err
		}
		defer rt.Close()

		model := tui.New(tui.Options{
			Analyzer: rt.services.MeasurementService,
			Ping:     rt.Ping,
		})
		_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "адрес HTTP-сервера")
}
