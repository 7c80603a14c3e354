package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config aggregates every setting of the service.
type Config struct {
	Server  ServerConfig
	AI      AIConfig
	Speech  SpeechConfig
	Advisor AdvisorConfig
	Storage StorageConfig
	Log     LogConfig
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	speech, err := loadSpeechConfig()
	if err != nil {
		return nil, err
	}

	advisor, err := loadAdvisorConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:  server,
		AI:      ai,
		Speech:  speech,
		Advisor: advisor,
		Storage: StorageConfig{DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL"))},
		Log: LogConfig{
			Level: getEnvOrDefault("LOG_LEVEL", "info"),
			File:  strings.TrimSpace(os.Getenv("LOG_FILE")),
		},
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// ":8080" and "127.0.0.1:8080" are accepted as-is.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AIConfig describes the chat model used for advice generation.
type AIConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
	// RequestsPerMinute throttles model calls; zero disables throttling.
	RequestsPerMinute int
	Timeout           time.Duration
}

// Enabled reports whether a model and credentials were provided.
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel builds an Ark chat model from the configuration.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, errors.New("ark credentials or model missing: set ARK_API_KEY and Model, or an AK/SK pair")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	}
	if c.Timeout > 0 {
		timeout := c.Timeout
		cfg.Timeout = &timeout
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	rpm := 30
	if override, err := parseOptionalIntEnv("AI_RATE_RPM"); err != nil {
		return AIConfig{}, err
	} else if override != nil {
		rpm = max(*override, 0)
	}

	timeout := 30
	if override, err := parseOptionalIntEnv("ARK_TIMEOUT"); err != nil {
		return AIConfig{}, err
	} else if override != nil && *override > 0 {
		timeout = *override
	}

	return AIConfig{
		APIKey:            strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:         strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:         strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:             strings.TrimSpace(os.Getenv("Model")),
		BaseURL:           getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:            getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature:       temperature,
		TopP:              topP,
		MaxTokens:         maxTokens,
		RequestsPerMinute: rpm,
		Timeout:           time.Duration(timeout) * time.Second,
	}, nil
}

// SpeechConfig describes the streaming TTS endpoint.
type SpeechConfig struct {
	Endpoint    string
	AppID       string
	AccessToken string
	Cluster     string
	Voice       string
	Speed       float32
	Volume      float32
	Language    string
	Timeout     time.Duration
	CacheSize   int
	Enabled     bool
}

func loadSpeechConfig() (SpeechConfig, error) {
	timeout, err := parseOptionalIntEnv("SPEECH_TIMEOUT")
	if err != nil {
		return SpeechConfig{}, err
	}
	timeoutSeconds := 30
	if timeout != nil {
		timeoutSeconds = *timeout
	}

	speed, err := parseOptionalFloat32Env("SPEECH_TTS_SPEED")
	if err != nil {
		return SpeechConfig{}, err
	}
	ttsSpeed := float32(1.0)
	if speed != nil {
		ttsSpeed = *speed
	}

	volume, err := parseOptionalFloat32Env("SPEECH_TTS_VOLUME")
	if err != nil {
		return SpeechConfig{}, err
	}
	ttsVolume := float32(1.0)
	if volume != nil {
		ttsVolume = *volume
	}

	cacheSize := 64
	if override, err := parseOptionalIntEnv("SPEECH_CACHE_SIZE"); err != nil {
		return SpeechConfig{}, err
	} else if override != nil && *override > 0 {
		cacheSize = *override
	}

	appID := strings.TrimSpace(os.Getenv("SPEECH_APP_ID"))
	accessToken := strings.TrimSpace(os.Getenv("SPEECH_ACCESS_TOKEN"))
	if accessToken == "" {
		accessToken = strings.TrimSpace(os.Getenv("SPEECH_API_KEY"))
	}

	return SpeechConfig{
		Endpoint:    getEnvOrDefault("SPEECH_TTS_ENDPOINT", "wss://openspeech.bytedance.com/api/v1/tts/ws_binary"),
		AppID:       appID,
		AccessToken: accessToken,
		Cluster:     getEnvOrDefault("SPEECH_TTS_CLUSTER", "volcano_tts"),
		Voice:       getEnvOrDefault("SPEECH_TTS_VOICE", ""),
		Speed:       ttsSpeed,
		Volume:      ttsVolume,
		Language:    getEnvOrDefault("SPEECH_TTS_LANGUAGE", "en-US"),
		Timeout:     time.Duration(timeoutSeconds) * time.Second,
		CacheSize:   cacheSize,
		Enabled:     appID != "" && accessToken != "",
	}, nil
}

// AdvisorConfig locates the analysis artefacts and tunes retrieval.
type AdvisorConfig struct {
	ModelDir           string
	EmotionTrainingCSV string
	KnowledgeBaseCSV   string
	RulesFile          string
	RetrievalK         int
}

func loadAdvisorConfig() (AdvisorConfig, error) {
	k := 3
	if override, err := parseOptionalIntEnv("RETRIEVAL_K"); err != nil {
		return AdvisorConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return AdvisorConfig{}, fmt.Errorf("invalid RETRIEVAL_K value %d: must be positive", *override)
		}
		k = *override
	}

	return AdvisorConfig{
		ModelDir:           getEnvOrDefault("MODEL_DIR", "models"),
		EmotionTrainingCSV: getEnvOrDefault("EMOTION_TRAINING_CSV", "data/emotion_data.csv"),
		KnowledgeBaseCSV:   getEnvOrDefault("KNOWLEDGE_BASE_CSV", "data/knowledge_base.csv"),
		RulesFile:          strings.TrimSpace(os.Getenv("RULES_FILE")),
		RetrievalK:         k,
	}, nil
}

// StorageConfig selects the chat history backend. An empty DatabaseURL keeps
// history in memory.
type StorageConfig struct {
	DatabaseURL string
}

// LogConfig configures pkg/logger.
type LogConfig struct {
	Level string
	File  string
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalFloat32Env(key string) (*float32, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	result := float32(val)
	return &result, nil
}
