package config

import (
	"fmt"
	"os"
	"time"
)

// AppConfig holds application-level settings.
type AppConfig struct {
	LogLevel string `mapstructure:"log_level"`
}

// DatabaseConfig holds Postgres connection settings.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// RedisConfig holds redis connection settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// NewsAPIConfig controls the NewsAPI.ai connector.
type NewsAPIConfig struct {
	APIKey          string `mapstructure:"api_key"`
	BaseURL         string `mapstructure:"base_url"`
	RequestsPerHour int    `mapstructure:"requests_per_hour"`
	Burst           int    `mapstructure:"burst"`
	Timeout         string `mapstructure:"timeout"` // duration string, e.g., "30s"
}

// OpenAIConfig controls chat and embedding calls.
type OpenAIConfig struct {
	APIKey             string `mapstructure:"api_key"`
	BaseURL            string `mapstructure:"base_url"`
	Model              string `mapstructure:"model"`
	EmbeddingModel     string `mapstructure:"embedding_model"`
	EmbeddingDimension int    `mapstructure:"embedding_dimension"`
}

// SerperConfig controls the Serper web search client.
type SerperConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Results int    `mapstructure:"results"`
}

// VectorConfig controls where per-date index files live.
type VectorConfig struct {
	Dir string `mapstructure:"dir"`
}

// ReportsConfig controls recommendation report output.
type ReportsConfig struct {
	Dir   string `mapstructure:"dir"`
	Title string `mapstructure:"title"` // supports {.UserEmail} and {.CurrentDate}
}

// PipelineConfig holds the default fetch window and query set.
type PipelineConfig struct {
	Keywords  []string `mapstructure:"keywords"`
	Count     int      `mapstructure:"count"`
	SortBy    string   `mapstructure:"sort_by"`
	DateStart string   `mapstructure:"date_start"` // YYYY-MM-DD
	DateEnd   string   `mapstructure:"date_end"`   // YYYY-MM-DD
}

// Dates expands the configured window into single days, inclusive on both
// ends. Each day is fetched and indexed on its own.
func (p PipelineConfig) Dates() ([]string, error) {
	start, err := time.Parse("2006-01-02", p.DateStart)
	if err != nil {
		return nil, fmt.Errorf("config: bad date_start %q: %w", p.DateStart, err)
	}
	end, err := time.Parse("2006-01-02", p.DateEnd)
	if err != nil {
		return nil, fmt.Errorf("config: bad date_end %q: %w", p.DateEnd, err)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("config: date_end %s is before date_start %s", p.DateEnd, p.DateStart)
	}
	var out []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		out = append(out, d.Format("2006-01-02"))
	}
	return out, nil
}

// AgentsConfig bounds the recommendation workflow.
type AgentsConfig struct {
	MaxTurns     int      `mapstructure:"max_turns"`
	MaxToolCalls int      `mapstructure:"max_tool_calls"`
	Timeout      string   `mapstructure:"timeout"` // duration string, e.g., "5m"
	TopK         int      `mapstructure:"top_k"`
	MCPCommand   string   `mapstructure:"mcp_command"` // defaults to this binary
	MCPArgs      []string `mapstructure:"mcp_args"`
}

// Config is the top-level configuration structure.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	NewsAPI  NewsAPIConfig  `mapstructure:"newsapi"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Serper   SerperConfig   `mapstructure:"serper"`
	Vector   VectorConfig   `mapstructure:"vector"`
	Reports  ReportsConfig  `mapstructure:"reports"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Agents   AgentsConfig   `mapstructure:"agents"`
}

// FillDefaults applies default values if not provided. Secrets fall back to
// environment variables so the config file never has to hold keys.
func (c *Config) FillDefaults() {
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.Database.Host == "" {
		c.Database.Host = "localhost"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.User == "" {
		c.Database.User = "postgres"
	}
	if c.Database.Password == "" {
		c.Database.Password = os.Getenv("DB_PASSWORD")
	}
	if c.Database.DBName == "" {
		c.Database.DBName = "newsdesk"
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "127.0.0.1:6379"
	}
	if c.Redis.Password == "" {
		c.Redis.Password = os.Getenv("REDIS_PASSWORD")
	}
	if c.NewsAPI.APIKey == "" {
		c.NewsAPI.APIKey = os.Getenv("NEWSAPI_KEY")
	}
	if c.NewsAPI.BaseURL == "" {
		c.NewsAPI.BaseURL = "https://eventregistry.org/api/v1"
	}
	if c.NewsAPI.RequestsPerHour == 0 {
		c.NewsAPI.RequestsPerHour = 100
	}
	if c.NewsAPI.Burst == 0 {
		c.NewsAPI.Burst = 5
	}
	if c.NewsAPI.Timeout == "" {
		c.NewsAPI.Timeout = "30s"
	}
	if c.OpenAI.APIKey == "" {
		c.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-4o-mini"
	}
	if c.OpenAI.EmbeddingModel == "" {
		c.OpenAI.EmbeddingModel = "text-embedding-3-small"
	}
	if c.OpenAI.EmbeddingDimension == 0 {
		c.OpenAI.EmbeddingDimension = 1536
	}
	if c.Serper.APIKey == "" {
		c.Serper.APIKey = os.Getenv("SERPER_API_KEY")
	}
	if c.Serper.BaseURL == "" {
		c.Serper.BaseURL = "https://google.serper.dev"
	}
	if c.Serper.Results == 0 {
		c.Serper.Results = 5
	}
	if c.Vector.Dir == "" {
		c.Vector.Dir = "vector_store"
	}
	if c.Reports.Dir == "" {
		c.Reports.Dir = "reports"
	}
	if c.Reports.Title == "" {
		c.Reports.Title = "News Recommendations for {.UserEmail} ({.CurrentDate})"
	}
	if len(c.Pipeline.Keywords) == 0 {
		c.Pipeline.Keywords = []string{"Technology", "Finance", "Health"}
	}
	if c.Pipeline.Count == 0 {
		c.Pipeline.Count = 50
	}
	if c.Pipeline.SortBy == "" {
		c.Pipeline.SortBy = "date"
	}
	if c.Pipeline.DateStart == "" {
		c.Pipeline.DateStart = "2025-06-20"
	}
	if c.Pipeline.DateEnd == "" {
		c.Pipeline.DateEnd = "2025-06-21"
	}
	if c.Agents.MaxTurns == 0 {
		c.Agents.MaxTurns = 10
	}
	if c.Agents.MaxToolCalls == 0 {
		c.Agents.MaxToolCalls = 15
	}
	if c.Agents.Timeout == "" {
		c.Agents.Timeout = "5m"
	}
	if c.Agents.TopK == 0 {
		c.Agents.TopK = 2
	}
	if len(c.Agents.MCPArgs) == 0 {
		c.Agents.MCPArgs = []string{"mcp"}
	}
}
