package config

import (
	"os"
	"testing"
)

func validConfig() Config {
	return Config{
		Telegram: TelegramConfig{Token: "123:abc"},
		Cloud: CloudConfig{
			FolderID:              "b1gtest",
			ServiceAccountKeyFile: "key.json",
		},
		Storage: StorageConfig{
			Bucket:    "voxscribe-audio",
			AccessKey: "AKID",
			SecretKey: "secret",
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid config", mutate: func(c *Config) {}, wantErr: false},
		{
			name:    "missing telegram token",
			mutate:  func(c *Config) { c.Telegram.Token = "" },
			wantErr: true,
		},
		{
			name:    "missing folder id",
			mutate:  func(c *Config) { c.Cloud.FolderID = "" },
			wantErr: true,
		},
		{
			name:    "missing storage bucket",
			mutate:  func(c *Config) { c.Storage.Bucket = "" },
			wantErr: true,
		},
		{
			name:    "bad shutdown mode",
			mutate:  func(c *Config) { c.Processing.Shutdown = "explode" },
			wantErr: true,
		},
		{
			name:    "drain shutdown accepted",
			mutate:  func(c *Config) { c.Processing.Shutdown = "drain" },
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateDefaults(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if cfg.Processing.Workers != 3 {
		t.Errorf("Workers = %d, want 3", cfg.Processing.Workers)
	}
	if cfg.Processing.MaxDurationSeconds != 14400 {
		t.Errorf("MaxDurationSeconds = %d, want 14400", cfg.Processing.MaxDurationSeconds)
	}
	if cfg.Processing.MaxSizeBytes != 1<<30 {
		t.Errorf("MaxSizeBytes = %d, want %d", cfg.Processing.MaxSizeBytes, int64(1<<30))
	}
	if cfg.Processing.Shutdown != "cancel" {
		t.Errorf("Shutdown = %q, want cancel", cfg.Processing.Shutdown)
	}
	if cfg.GPT.ModelURI != "gpt://b1gtest/yandexgpt/latest" {
		t.Errorf("ModelURI = %q", cfg.GPT.ModelURI)
	}
	if cfg.SpeechKit.SampleRateHertz != 48000 {
		t.Errorf("SampleRateHertz = %d, want 48000", cfg.SpeechKit.SampleRateHertz)
	}
}

func TestLoad(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpfile.Name())

	os.Setenv("VOXSCRIBE_TEST_TOKEN", "42:token-from-env")
	defer os.Unsetenv("VOXSCRIBE_TEST_TOKEN")

	content := `
telegram:
  token: "${VOXSCRIBE_TEST_TOKEN}"

cloud:
  folder_id: "b1gtest"
  service_account_key_file: "key.json"

storage:
  bucket: "voxscribe-audio"
  access_key: "AKID"
  secret_key: "secret"

processing:
  workers: 5
  shutdown: "drain"

logging:
  level: "debug"
`

	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpfile.Name())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Telegram.Token != "42:token-from-env" {
		t.Errorf("Token = %q, env expansion failed", cfg.Telegram.Token)
	}
	if cfg.Processing.Workers != 5 {
		t.Errorf("Workers = %d, want 5", cfg.Processing.Workers)
	}
	if cfg.Processing.Shutdown != "drain" {
		t.Errorf("Shutdown = %q, want drain", cfg.Processing.Shutdown)
	}
}

func TestLoadInvalidFile(t *testing.T) {
	_, err := Load("nonexistent.yaml")
	if err == nil {
		t.Error("Load() should return error for nonexistent file")
	}
}
