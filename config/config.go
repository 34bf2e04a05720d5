package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"

	"viralcut/log"
)

type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

type AppConfig struct {
	Proxy       string   `toml:"proxy"`
	ParsedProxy *url.URL `toml:"-"`
	FfmpegPath  string   `toml:"ffmpeg_path"`
	FfprobePath string   `toml:"ffprobe_path"`
	TaskDir     string   `toml:"task_dir"`
	DataDir     string   `toml:"data_dir"`
	MaxFileSize int64    `toml:"max_file_size"`
}

// LlmConfig configures the reasoning model endpoint. PrimaryModel is tried
// first; FallbackModel must honor the same response schema.
type LlmConfig struct {
	BaseUrl          string `toml:"base_url"`
	ApiKey           string `toml:"api_key"`
	PrimaryModel     string `toml:"primary_model"`
	FallbackModel    string `toml:"fallback_model"`
	AnalysisTimeout  int    `toml:"analysis_timeout"`  // seconds, per attempt
	SynthesisTimeout int    `toml:"synthesis_timeout"` // seconds, per segment
	RetryBackoff     int    `toml:"retry_backoff"`     // seconds before the primary retry
	MaxTokens        int    `toml:"max_tokens"`
}

// AccountConfig points at the account/premium collaborator. When BaseUrl is
// empty the pipeline falls back to the static premium flag below.
type AccountConfig struct {
	BaseUrl        string `toml:"base_url"`
	ApiKey         string `toml:"api_key"`
	StaticPremium  bool   `toml:"static_premium"`
	RequestTimeout int    `toml:"request_timeout"` // seconds
}

// QueueConfig enables the Redis/Asynq worker mode when RedisAddr is set.
// Without it jobs run on the in-process task runner.
type QueueConfig struct {
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	Concurrency   int    `toml:"concurrency"`
}

// OssConfig enables mirroring rendered clips to Alibaba Cloud OSS.
type OssConfig struct {
	Region          string `toml:"region"`
	AccessKeyId     string `toml:"access_key_id"`
	AccessKeySecret string `toml:"access_key_secret"`
	Bucket          string `toml:"bucket"`
}

type PipelineConfig struct {
	Workers            int     `toml:"workers"`
	QueueSize          int     `toml:"queue_size"`
	RenderConcurrency  int     `toml:"render_concurrency"`
	SegmentMinDuration float64 `toml:"segment_min_duration"`
	SegmentMaxDuration float64 `toml:"segment_max_duration"`
	FreeMaxDuration    float64 `toml:"free_max_duration"`
	PremiumMaxDuration float64 `toml:"premium_max_duration"`
	FreeMaxClips       int     `toml:"free_max_clips"`
	PremiumMaxClips    int     `toml:"premium_max_clips"`
	RenderTimeout      int     `toml:"render_timeout"` // seconds, per clip
	AnalysisPrompt     string  `toml:"analysis_prompt"`
}

type Config struct {
	Server   ServerConfig   `toml:"server"`
	App      AppConfig      `toml:"app"`
	Llm      LlmConfig      `toml:"llm"`
	Account  AccountConfig  `toml:"account"`
	Queue    QueueConfig    `toml:"queue"`
	Oss      OssConfig      `toml:"oss"`
	Pipeline PipelineConfig `toml:"pipeline"`
}

var Conf Config

var resolveConfigPath = defaultConfigPath

func defaultConfigPath() (string, error) {
	if path := os.Getenv("VIRALCUT_CONFIG"); path != "" {
		return path, nil
	}
	return filepath.Join("config", "config.toml"), nil
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8888,
		},
		App: AppConfig{
			FfmpegPath:  "ffmpeg",
			FfprobePath: "ffprobe",
			TaskDir:     "./tasks",
			DataDir:     "./data",
			MaxFileSize: 500 * 1024 * 1024,
		},
		Llm: LlmConfig{
			PrimaryModel:     "gpt-4o",
			FallbackModel:    "gpt-4o-mini",
			AnalysisTimeout:  120,
			SynthesisTimeout: 60,
			RetryBackoff:     2,
			MaxTokens:        2000,
		},
		Account: AccountConfig{
			RequestTimeout: 10,
		},
		Queue: QueueConfig{
			Concurrency: 3,
		},
		Pipeline: PipelineConfig{
			Workers:            2,
			QueueSize:          128,
			RenderConcurrency:  3,
			SegmentMinDuration: 10,
			SegmentMaxDuration: 60,
			FreeMaxDuration:    300,
			PremiumMaxDuration: 1800,
			FreeMaxClips:       2,
			PremiumMaxClips:    3,
			RenderTimeout:      300,
		},
	}
}

// LoadOrCreateConfig loads config.toml, writing the default file first when it
// does not exist yet. Returns whether a new file was created.
func LoadOrCreateConfig() (bool, error) {
	configPath, err := resolveConfigPath()
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		Conf = defaultConfig()
		if err := SaveConfig(); err != nil {
			return false, fmt.Errorf("写入默认配置失败 failed to write default config: %w", err)
		}
		return true, nil
	}

	if _, err := toml.DecodeFile(configPath, &Conf); err != nil {
		return false, fmt.Errorf("解析配置失败 failed to decode config: %w", err)
	}
	applyDefaults(&Conf)
	return false, nil
}

// applyDefaults backfills zero values so hand-edited configs stay valid.
func applyDefaults(c *Config) {
	def := defaultConfig()
	if c.Server.Host == "" {
		c.Server.Host = def.Server.Host
	}
	if c.Server.Port == 0 {
		c.Server.Port = def.Server.Port
	}
	if c.App.FfmpegPath == "" {
		c.App.FfmpegPath = def.App.FfmpegPath
	}
	if c.App.FfprobePath == "" {
		c.App.FfprobePath = def.App.FfprobePath
	}
	if c.App.TaskDir == "" {
		c.App.TaskDir = def.App.TaskDir
	}
	if c.App.DataDir == "" {
		c.App.DataDir = def.App.DataDir
	}
	if c.App.MaxFileSize == 0 {
		c.App.MaxFileSize = def.App.MaxFileSize
	}
	if c.Llm.PrimaryModel == "" {
		c.Llm.PrimaryModel = def.Llm.PrimaryModel
	}
	if c.Llm.FallbackModel == "" {
		c.Llm.FallbackModel = def.Llm.FallbackModel
	}
	if c.Llm.AnalysisTimeout == 0 {
		c.Llm.AnalysisTimeout = def.Llm.AnalysisTimeout
	}
	if c.Llm.SynthesisTimeout == 0 {
		c.Llm.SynthesisTimeout = def.Llm.SynthesisTimeout
	}
	if c.Llm.RetryBackoff == 0 {
		c.Llm.RetryBackoff = def.Llm.RetryBackoff
	}
	if c.Llm.MaxTokens == 0 {
		c.Llm.MaxTokens = def.Llm.MaxTokens
	}
	if c.Account.RequestTimeout == 0 {
		c.Account.RequestTimeout = def.Account.RequestTimeout
	}
	if c.Queue.Concurrency == 0 {
		c.Queue.Concurrency = def.Queue.Concurrency
	}
	if c.Pipeline.Workers == 0 {
		c.Pipeline.Workers = def.Pipeline.Workers
	}
	if c.Pipeline.QueueSize == 0 {
		c.Pipeline.QueueSize = def.Pipeline.QueueSize
	}
	if c.Pipeline.RenderConcurrency == 0 {
		c.Pipeline.RenderConcurrency = def.Pipeline.RenderConcurrency
	}
	if c.Pipeline.SegmentMinDuration == 0 {
		c.Pipeline.SegmentMinDuration = def.Pipeline.SegmentMinDuration
	}
	if c.Pipeline.SegmentMaxDuration == 0 {
		c.Pipeline.SegmentMaxDuration = def.Pipeline.SegmentMaxDuration
	}
	if c.Pipeline.FreeMaxDuration == 0 {
		c.Pipeline.FreeMaxDuration = def.Pipeline.FreeMaxDuration
	}
	if c.Pipeline.PremiumMaxDuration == 0 {
		c.Pipeline.PremiumMaxDuration = def.Pipeline.PremiumMaxDuration
	}
	if c.Pipeline.FreeMaxClips == 0 {
		c.Pipeline.FreeMaxClips = def.Pipeline.FreeMaxClips
	}
	if c.Pipeline.PremiumMaxClips == 0 {
		c.Pipeline.PremiumMaxClips = def.Pipeline.PremiumMaxClips
	}
	if c.Pipeline.RenderTimeout == 0 {
		c.Pipeline.RenderTimeout = def.Pipeline.RenderTimeout
	}
}

// SaveConfig writes the current Conf to disk, creating parent directories.
func SaveConfig() error {
	configPath, err := resolveConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return err
	}

	file, err := os.Create(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	return toml.NewEncoder(file).Encode(Conf)
}

// CheckConfig validates the loaded config and parses derived fields.
func CheckConfig() error {
	if Conf.App.Proxy != "" {
		parsed, err := url.Parse(Conf.App.Proxy)
		if err != nil {
			return fmt.Errorf("代理地址不合法 invalid proxy address: %w", err)
		}
		Conf.App.ParsedProxy = parsed
	}

	if Conf.Pipeline.SegmentMinDuration >= Conf.Pipeline.SegmentMaxDuration {
		return fmt.Errorf("片段时长配置不合法 invalid segment duration bounds: min=%v max=%v",
			Conf.Pipeline.SegmentMinDuration, Conf.Pipeline.SegmentMaxDuration)
	}

	if Conf.Llm.ApiKey == "" {
		log.GetLogger().Warn("未配置 LLM API Key，分析请求将会失败 LLM api_key is empty, analysis calls will fail",
			zap.String("base_url", Conf.Llm.BaseUrl))
	}
	return nil
}
