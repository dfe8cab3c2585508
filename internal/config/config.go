package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server struct {
		Port         int           `yaml:"port" default:"8080"`
		Host         string        `yaml:"host" default:"0.0.0.0"`
		ReadTimeout  time.Duration `yaml:"read_timeout" default:"30s"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"30s"`
		IdleTimeout  time.Duration `yaml:"idle_timeout" default:"60s"`
		// CORS origins allowed to call the API; empty allows all
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`

	JobSearch struct {
		AppID          string        `yaml:"app_id"`
		AppKey         string        `yaml:"app_key"`
		BaseURL        string        `yaml:"base_url" default:"https://api.adzuna.com/v1/api/jobs"`
		Country        string        `yaml:"country" default:"gb"`
		ResultsPerPage int           `yaml:"results_per_page" default:"10"`
		RateLimit      int           `yaml:"rate_limit" default:"60"` // requests per minute
		Timeout        time.Duration `yaml:"timeout" default:"15s"`
		MaxRetries     int           `yaml:"max_retries" default:"2"` // retries on 429 and 5xx
	} `yaml:"job_search"`

	LLM struct {
		Provider    string        `yaml:"provider" default:"claude"`
		APIKey      string        `yaml:"api_key"`
		Model       string        `yaml:"model" default:"claude-3-haiku-20240307"`
		MaxTokens   int           `yaml:"max_tokens" default:"1024"`
		Temperature float32       `yaml:"temperature" default:"0.7"`
		Timeout     time.Duration `yaml:"timeout" default:"60s"`
		// Vertex AI settings used by the gemini provider
		ProjectID string `yaml:"project_id"`
		Location  string `yaml:"location" default:"us-central1"`
	} `yaml:"llm"`

	Sessions struct {
		Store      string        `yaml:"store" default:"memory"` // memory or redis
		TTL        time.Duration `yaml:"ttl" default:"2h"`
		SweepSpec  string        `yaml:"sweep_spec" default:"@every 10m"`
		KeyPrefix  string        `yaml:"key_prefix" default:"wikijobs:session:"`
		MaxJobs    int           `yaml:"max_jobs" default:"50"`
		UseSamples bool          `yaml:"use_samples" default:"true"`
	} `yaml:"sessions"`

	BackgroundTasks struct {
		MaxConcurrentTasks int           `yaml:"max_concurrent_tasks" default:"20"`
		TaskTimeout        time.Duration `yaml:"task_timeout" default:"120s"`
		MaxTaskAge         time.Duration `yaml:"max_task_age" default:"24h"`
	} `yaml:"background_tasks"`

	Logging struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"json"`
		Output string `yaml:"output" default:"stdout"`

		Adapters []struct {
			Name    string                 `yaml:"name"`
			Type    string                 `yaml:"type"`
			Enabled bool                   `yaml:"enabled"`
			Options map[string]interface{} `yaml:"options"`
		} `yaml:"adapters"`
	} `yaml:"logging"`

	// Object storage for shared exports (DigitalOcean Spaces or any S3 API)
	Storage struct {
		Spaces struct {
			BucketName      string `yaml:"bucket_name"`
			BucketURL       string `yaml:"bucket_url"`
			CDNEndpoint     string `yaml:"cdn_endpoint"`
			Region          string `yaml:"region" default:"lon1"`
			Endpoint        string `yaml:"endpoint"` // overrides https://<region>.digitaloceanspaces.com
			AccessKeyID     string `yaml:"access_key_id"`
			AccessKeySecret string `yaml:"access_key_secret"`
			ForcePathStyle  bool   `yaml:"force_path_style"`
		} `yaml:"spaces"`
	} `yaml:"storage"`

	Redis struct {
		URL      string        `yaml:"url" default:"redis://localhost:6379"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db" default:"0"`
		Timeout  time.Duration `yaml:"timeout" default:"5s"`
	} `yaml:"redis"`
}

var (
	bracedVar = regexp.MustCompile(`\$\{([^}]+)\}`)
	bareVar   = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
)

// expandEnvVars expands environment variables in a string using ${VAR} or $VAR syntax
func expandEnvVars(s string) string {
	s = bracedVar.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})

	s = bareVar.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[1:]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})

	return s
}

// Default returns a configuration populated with default values only
func Default() *Config {
	config := &Config{}

	config.Server.Port = 8080
	config.Server.Host = "0.0.0.0"
	config.Server.ReadTimeout = 30 * time.Second
	config.Server.WriteTimeout = 30 * time.Second
	config.Server.IdleTimeout = 60 * time.Second

	config.JobSearch.BaseURL = "https://api.adzuna.com/v1/api/jobs"
	config.JobSearch.Country = "gb"
	config.JobSearch.ResultsPerPage = 10
	config.JobSearch.RateLimit = 60
	config.JobSearch.Timeout = 15 * time.Second
	config.JobSearch.MaxRetries = 2

	config.LLM.Provider = "claude"
	config.LLM.Model = "claude-3-haiku-20240307"
	config.LLM.MaxTokens = 1024
	config.LLM.Temperature = 0.7
	config.LLM.Timeout = 60 * time.Second
	config.LLM.Location = "us-central1"

	config.Sessions.Store = "memory"
	config.Sessions.TTL = 2 * time.Hour
	config.Sessions.SweepSpec = "@every 10m"
	config.Sessions.KeyPrefix = "wikijobs:session:"
	config.Sessions.MaxJobs = 50
	config.Sessions.UseSamples = true

	config.BackgroundTasks.MaxConcurrentTasks = 20
	config.BackgroundTasks.TaskTimeout = 120 * time.Second
	config.BackgroundTasks.MaxTaskAge = 24 * time.Hour

	config.Logging.Level = "info"
	config.Logging.Format = "json"
	config.Logging.Output = "stdout"

	config.Storage.Spaces.Region = "lon1"

	config.Redis.URL = "redis://localhost:6379"
	config.Redis.DB = 0
	config.Redis.Timeout = 5 * time.Second

	return config
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// Load .env file if it exists (ignore errors if file doesn't exist)
	_ = godotenv.Load()

	config := Default()

	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			yamlContent := expandEnvVars(string(data))

			if err := yaml.Unmarshal([]byte(yamlContent), config); err != nil {
				return nil, err
			}
		}
	}

	config.loadFromEnv()

	return config, nil
}

// Address returns host:port for the listener
func (c *Config) Address() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}

// loadFromEnv loads configuration from environment variables
func (c *Config) loadFromEnv() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	if host := os.Getenv("HOST"); host != "" {
		c.Server.Host = host
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		c.Server.AllowedOrigins = nil
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				c.Server.AllowedOrigins = append(c.Server.AllowedOrigins, o)
			}
		}
	}

	// Job search (Adzuna) credentials
	if appID := os.Getenv("ADZUNA_APP_ID"); appID != "" {
		c.JobSearch.AppID = appID
	}

	if appKey := os.Getenv("ADZUNA_APP_KEY"); appKey != "" {
		c.JobSearch.AppKey = appKey
	}

	if baseURL := os.Getenv("ADZUNA_BASE_URL"); baseURL != "" {
		c.JobSearch.BaseURL = baseURL
	}

	if country := os.Getenv("JOB_SEARCH_COUNTRY"); country != "" {
		c.JobSearch.Country = strings.ToLower(country)
	}

	if results := os.Getenv("JOB_SEARCH_RESULTS_PER_PAGE"); results != "" {
		if n, err := strconv.Atoi(results); err == nil {
			c.JobSearch.ResultsPerPage = n
		}
	}

	if timeout := os.Getenv("JOB_SEARCH_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			c.JobSearch.Timeout = d
		}
	}

	if apiKey := os.Getenv("LLM_API_KEY"); apiKey != "" {
		c.LLM.APIKey = apiKey
	}

	if provider := os.Getenv("LLM_PROVIDER"); provider != "" {
		c.LLM.Provider = provider
	}

	if model := os.Getenv("LLM_MODEL"); model != "" {
		c.LLM.Model = model
	}

	if project := os.Getenv("GCP_PROJECT_ID"); project != "" {
		c.LLM.ProjectID = project
	}

	if location := os.Getenv("GCP_LOCATION"); location != "" {
		c.LLM.Location = location
	}

	if store := os.Getenv("SESSION_STORE"); store != "" {
		c.Sessions.Store = store
	}

	if ttl := os.Getenv("SESSION_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil {
			c.Sessions.TTL = d
		}
	}

	if spec := os.Getenv("SESSION_SWEEP_SPEC"); spec != "" {
		c.Sessions.SweepSpec = spec
	}

	if useSamples := os.Getenv("SESSION_USE_SAMPLES"); useSamples != "" {
		c.Sessions.UseSamples = useSamples == "true" || useSamples == "1"
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	if logFormat := os.Getenv("LOG_FORMAT"); logFormat != "" {
		c.Logging.Format = logFormat
	}

	// DigitalOcean Spaces configuration
	if bucketName := os.Getenv("BUCKET_NAME"); bucketName != "" {
		c.Storage.Spaces.BucketName = bucketName
	}

	if bucketURL := os.Getenv("BUCKET_URL"); bucketURL != "" {
		c.Storage.Spaces.BucketURL = bucketURL
	}

	if cdnEndpoint := os.Getenv("BUCKET_CDN_ENDPOINT"); cdnEndpoint != "" {
		c.Storage.Spaces.CDNEndpoint = cdnEndpoint
	}

	if region := os.Getenv("BUCKET_REGION"); region != "" {
		c.Storage.Spaces.Region = region
	}

	if accessKeyID := os.Getenv("BUCKET_ACCESS_KEY_ID"); accessKeyID != "" {
		c.Storage.Spaces.AccessKeyID = accessKeyID
	}

	if accessKeySecret := os.Getenv("BUCKET_ACCESS_KEY_SECRET"); accessKeySecret != "" {
		c.Storage.Spaces.AccessKeySecret = accessKeySecret
	}

	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		c.Redis.URL = redisURL
	}

	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		c.Redis.Password = redisPassword
	}

	if redisDB := os.Getenv("REDIS_DB"); redisDB != "" {
		if db, err := strconv.Atoi(redisDB); err == nil {
			c.Redis.DB = db
		}
	}

	if redisTimeout := os.Getenv("REDIS_TIMEOUT"); redisTimeout != "" {
		if timeout, err := time.ParseDuration(redisTimeout); err == nil {
			c.Redis.Timeout = timeout
		}
	}

	c.loadLoggingAdapterEnvVars()
}

// loadLoggingAdapterEnvVars loads environment variables for logging adapters
func (c *Config) loadLoggingAdapterEnvVars() {
	for i := range c.Logging.Adapters {
		adapter := &c.Logging.Adapters[i]

		switch adapter.Type {
		case "file":
			if path := os.Getenv("LOG_FILE_PATH"); path != "" {
				if adapter.Options == nil {
					adapter.Options = make(map[string]interface{})
				}
				adapter.Options["file_path"] = path
			}
			if enabled := os.Getenv("LOG_FILE_ENABLED"); enabled != "" {
				adapter.Enabled = enabled == "true" || enabled == "1"
			}
		}
	}
}
