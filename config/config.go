package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "fiber-meter.yaml"

type Config struct {
	Vision     VisionConfig     `yaml:"vision"`
	Preprocess PreprocessConfig `yaml:"preprocess"`
	Batch      BatchConfig      `yaml:"batch"`
	History    HistoryConfig    `yaml:"history"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	HTTP       HTTPConfig       `yaml:"http"`
	Log        LogConfig        `yaml:"log"`
}

type VisionConfig struct {
	Backend string       `yaml:"backend"` // ollama или gemini
	Ollama  OllamaConfig `yaml:"ollama"`
	Gemini  GeminiConfig `yaml:"gemini"`
}

type OllamaConfig struct {
	URL     string        `yaml:"url"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

type PreprocessConfig struct {
	MaxSide     int  `yaml:"max_side"`     // 0: без уменьшения
	QualityGate bool `yaml:"quality_gate"` // работает только в сборке с тегом gocv
}

type BatchConfig struct {
	Workers    int    `yaml:"workers"`
	OutputName string `yaml:"output_name"`
	XLSX       bool   `yaml:"xlsx"`
}

type HistoryConfig struct {
	Path string `yaml:"path"` // пусто: журнал выключен
}

type TelegramConfig struct {
	Token string `yaml:"token"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default возвращает настройки по умолчанию.
func Default() *Config {
	return &Config{
		Vision: VisionConfig{
			Backend: "ollama",
			Ollama: OllamaConfig{
				URL:     "http://localhost:11434",
				Model:   "llava-phi3",
				Timeout: 5 * time.Minute,
			},
			Gemini: GeminiConfig{
				Model: "gemini-1.5-flash",
			},
		},
		Preprocess: PreprocessConfig{MaxSide: 1600},
		Batch:      BatchConfig{Workers: 1, OutputName: "batch_results.json"},
		History:    HistoryConfig{Path: "data/history.db"},
		HTTP:       HTTPConfig{Addr: ":8080"},
		Log:        LogConfig{Level: "info"},
	}
}

// Load читает .env, затем YAML-файл (если есть), затем переменные окружения.
func Load(path string) (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case os.IsNotExist(err):
			// файла нет, остаёмся на значениях по умолчанию
		default:
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("VISION_BACKEND"); v != "" {
		c.Vision.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("OLLAMA_URL"); v != "" {
		c.Vision.Ollama.URL = v
	}
	if v := os.Getenv("OLLAMA_MODEL"); v != "" {
		c.Vision.Ollama.Model = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.Vision.Gemini.APIKey = v
	}
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		c.Vision.Gemini.Model = v
	}
	if v := os.Getenv("TELEGRAM_TOKEN"); v != "" {
		c.Telegram.Token = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		c.HTTP.Addr = v
	}
	if v, ok := os.LookupEnv("HISTORY_DB"); ok {
		c.History.Path = v
	}
	if v := os.Getenv("PREPROCESS_MAX_SIDE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid PREPROCESS_MAX_SIDE %q", v)
		}
		c.Preprocess.MaxSide = n
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	return nil
}
