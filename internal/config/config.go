package config

import "fmt"

type Config struct {
	Telegram   TelegramConfig   `yaml:"telegram"`
	Cloud      CloudConfig      `yaml:"cloud"`
	Storage    StorageConfig    `yaml:"storage"`
	SpeechKit  SpeechKitConfig  `yaml:"speechkit"`
	GPT        GPTConfig        `yaml:"gpt"`
	Processing ProcessingConfig `yaml:"processing"`
	Database   DatabaseConfig   `yaml:"database"`
	Inbox      InboxConfig      `yaml:"inbox"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type TelegramConfig struct {
	Token          string `yaml:"token"`
	AccessPassword string `yaml:"access_password"`
	MaxUsers       int    `yaml:"max_users"`
}

type CloudConfig struct {
	FolderID              string `yaml:"folder_id"`
	ServiceAccountKeyFile string `yaml:"service_account_key_file"`
	IAMEndpoint           string `yaml:"iam_endpoint"`
}

type StorageConfig struct {
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Endpoint  string `yaml:"endpoint"`
}

type SpeechKitConfig struct {
	Endpoint          string `yaml:"endpoint"`
	OperationEndpoint string `yaml:"operation_endpoint"`
	Language          string `yaml:"language"`
	Model             string `yaml:"model"`
	SampleRateHertz   int    `yaml:"sample_rate_hertz"`
}

type GPTConfig struct {
	Endpoint    string  `yaml:"endpoint"`
	ModelURI    string  `yaml:"model_uri"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

type ProcessingConfig struct {
	MaxDurationSeconds int    `yaml:"max_duration_seconds"`
	MaxSizeBytes       int64  `yaml:"max_size_bytes"`
	Workers            int    `yaml:"workers"`
	TmpDir             string `yaml:"tmp_dir"`
	// Shutdown selects what happens to in-flight jobs on stop:
	// "cancel" abandons them, "drain" waits for them to finish.
	Shutdown string `yaml:"shutdown"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type InboxConfig struct {
	Dir         string `yaml:"dir"`
	AdminChatID int64  `yaml:"admin_chat_id"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("telegram.token is required")
	}
	if c.Cloud.FolderID == "" {
		return fmt.Errorf("cloud.folder_id is required")
	}
	if c.Cloud.ServiceAccountKeyFile == "" {
		return fmt.Errorf("cloud.service_account_key_file is required")
	}
	if c.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket is required")
	}
	if c.Storage.AccessKey == "" {
		return fmt.Errorf("storage.access_key is required")
	}
	if c.Storage.SecretKey == "" {
		return fmt.Errorf("storage.secret_key is required")
	}
	if c.Processing.Shutdown != "" && c.Processing.Shutdown != "cancel" && c.Processing.Shutdown != "drain" {
		return fmt.Errorf("processing.shutdown must be \"cancel\" or \"drain\"")
	}

	if c.Telegram.AccessPassword == "" {
		c.Telegram.AccessPassword = "changeme"
	}
	if c.Telegram.MaxUsers == 0 {
		c.Telegram.MaxUsers = 20
	}
	if c.Cloud.IAMEndpoint == "" {
		c.Cloud.IAMEndpoint = "https://iam.api.cloud.yandex.net/iam/v1/tokens"
	}
	if c.Storage.Endpoint == "" {
		c.Storage.Endpoint = "https://storage.yandexcloud.net"
	}
	if c.SpeechKit.Endpoint == "" {
		c.SpeechKit.Endpoint = "https://transcribe.api.cloud.yandex.net"
	}
	if c.SpeechKit.OperationEndpoint == "" {
		c.SpeechKit.OperationEndpoint = "https://operation.api.cloud.yandex.net/operations"
	}
	if c.SpeechKit.Language == "" {
		c.SpeechKit.Language = "ru-RU"
	}
	if c.SpeechKit.Model == "" {
		c.SpeechKit.Model = "general"
	}
	if c.SpeechKit.SampleRateHertz == 0 {
		c.SpeechKit.SampleRateHertz = 48000
	}
	if c.GPT.Endpoint == "" {
		c.GPT.Endpoint = "https://llm.api.cloud.yandex.net"
	}
	if c.GPT.ModelURI == "" {
		c.GPT.ModelURI = fmt.Sprintf("gpt://%s/yandexgpt/latest", c.Cloud.FolderID)
	}
	if c.GPT.Temperature == 0 {
		c.GPT.Temperature = 0.3
	}
	if c.GPT.MaxTokens == 0 {
		c.GPT.MaxTokens = 2000
	}
	if c.Processing.MaxDurationSeconds == 0 {
		c.Processing.MaxDurationSeconds = 14400 // 4 hours
	}
	if c.Processing.MaxSizeBytes == 0 {
		c.Processing.MaxSizeBytes = 1 << 30 // 1 GB
	}
	if c.Processing.Workers == 0 {
		c.Processing.Workers = 3
	}
	if c.Processing.TmpDir == "" {
		c.Processing.TmpDir = "/tmp/voxscribe"
	}
	if c.Processing.Shutdown == "" {
		c.Processing.Shutdown = "cancel"
	}
	if c.Database.Path == "" {
		c.Database.Path = "data/voxscribe.db"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}

	return nil
}
