package config

import (
	"log"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env         string       `yaml:"env" env-default:"local"`
	StoragePath string       `yaml:"storage_path" env:"STORAGE_PATH" env-required:"true"`
	HTTP        HTTPConfig   `yaml:"http"`
	Auth        AuthConfig   `yaml:"auth"`
	Files       FilesConfig  `yaml:"files"`
	Sheets      SheetsConfig `yaml:"sheets"`
}

type HTTPConfig struct {
	Port         int      `yaml:"port" env-default:"8080"`
	AllowOrigins []string `yaml:"allow_origins" env-default:"http://localhost:5173"`
}

type AuthConfig struct {
	// Secret is the HS256 key shared with the external identity provider.
	Secret string `yaml:"secret" env:"AUTH_SECRET" env-required:"true"`
}

type FilesConfig struct {
	CredentialsFile string `yaml:"credentials_file" env:"FILES_CREDENTIALS_FILE"`
	Bucket          string `yaml:"bucket" env:"FILES_BUCKET"`
	MaxUploadBytes  int64  `yaml:"max_upload_bytes" env-default:"5242880"`
}

type SheetsConfig struct {
	CredentialsFile string `yaml:"credentials_file" env:"SHEETS_CREDENTIALS_FILE"`
	SpreadsheetID   string `yaml:"spreadsheet_id" env:"SHEETS_SPREADSHEET_ID"`
}

func Load(path string) *Config {
	var config Config
	err := cleanenv.ReadConfig(path, &config)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &config
}
