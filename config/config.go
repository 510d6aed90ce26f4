package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const ENV_FILE = ".env"
const CONFIG_FILE = "config.yaml"

type AppConfig struct {
	Logging      LoggingConfig      `yaml:"logging"`
	Mongo        MongoConfig        `yaml:"mongo"`
	LLM          LLMConfig          `yaml:"llm"`
	SummaryQuota SummaryQuotaConfig `yaml:"summary_quota"`
	Kafka        KafkaConfig        `yaml:"kafka"`
	Sejm         SejmConfig         `yaml:"sejm"`
	Feeds        []FeedSource       `yaml:"feeds"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type MongoConfig struct {
	URI    string `yaml:"uri"`
	DBName string `yaml:"db_name"`
}

// LLMConfig selects the text-generation backend used for summaries.
// API keys are never read from yaml; they come from GROQ_API_KEY or
// GEMINI_API_KEY depending on the provider.
type LLMConfig struct {
	// Provider is "groq" (OpenAI-compatible chat completions) or "google".
	Provider string `yaml:"provider"`
	// ModelName e.g. "llama-3.3-70b-versatile" or "gemini-2.0-flash".
	ModelName string `yaml:"model_name"`
	// BaseURL overrides the Groq endpoint; empty means the public API.
	BaseURL string `yaml:"base_url"`
	// Temperature for sampling; summaries want a low value (0.2).
	Temperature float32 `yaml:"temperature"`
	// TimeoutSeconds bounds a single generation call; 0 means 30.
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// SummaryQuotaConfig caps LLM calls for summary generation.
// Values of 0 or below mean "no limit" in that direction.
type SummaryQuotaConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute"`
	RequestsPerDay    int `yaml:"requests_per_day"`
}

type KafkaConfig struct {
	Enabled          bool   `yaml:"enabled"`
	BootstrapServers string `yaml:"bootstrap_servers"`
}

type SejmConfig struct {
	// BaseURL of the ELI API, default https://api.sejm.gov.pl/eli.
	BaseURL string `yaml:"base_url"`
}

// FeedSource is a single consultation RSS feed to ingest.
type FeedSource struct {
	Name        string `yaml:"name"`
	URL         string `yaml:"url"`
	RSSURL      string `yaml:"rss_url"`
	EntityType  string `yaml:"entity_type"`
	Institution string `yaml:"institution"`
}

var config *AppConfig

func InitApp() {
	// load environment variables
	godotenv.Load(filepath.Join(GetBasePath(), ENV_FILE))

	// load configuration file
	data, err := os.ReadFile(filepath.Join(GetBasePath(), CONFIG_FILE))
	if err != nil {
		panic(err)
	}

	var c AppConfig
	err = yaml.Unmarshal(data, &c)
	if err != nil {
		panic(err)
	}
	config = &c
}

func GetConfig() AppConfig {
	if config == nil {
		InitApp()
	}

	return *config
}

func GetBasePath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		cfgPath := filepath.Join(dir, CONFIG_FILE)
		if info, err := os.Stat(cfgPath); err == nil && !info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
