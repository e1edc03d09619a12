package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Migration MigrationConfig `mapstructure:"migration"`
}

type StorageConfig struct {
	LocalPath string `mapstructure:"local_path"`
}

// MigrationConfig points at the legacy source material.
type MigrationConfig struct {
	// ExportDir holds the JSONL snapshots exported from the Access database.
	ExportDir string `mapstructure:"export_dir"`
	// InitialDataDir holds hand-maintained inputs: the project type TSV and
	// the coordinates CSV.
	InitialDataDir string `mapstructure:"initial_data_dir"`
	// MandatsDir is the root of the legacy project share containing .fab files.
	MandatsDir string `mapstructure:"mandats_dir"`
	// MandatsDrivePrefix is the Windows prefix legacy documents use to
	// reference files on that share.
	MandatsDrivePrefix string `mapstructure:"mandats_drive_prefix"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	PoolSize int    `mapstructure:"pool_size"`
	Path     string `mapstructure:"path"` // directory for SQLite database files
}

// DSN returns the driver-specific data source name.
func (d DatabaseConfig) DSN() string {
	if d.Driver == "sqlite" {
		return d.Path + "/" + d.Name + ".db"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

// IsSQLite returns true if the driver is sqlite.
func (d DatabaseConfig) IsSQLite() bool {
	return d.Driver == "sqlite"
}

func Load() (*Config, error) {
	viper.SetConfigName("app")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../..")

	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.name", "beg")
	viper.SetDefault("database.pool_size", 10)
	viper.SetDefault("database.path", "./data")
	viper.SetDefault("storage.local_path", "./files")
	viper.SetDefault("migration.export_dir", "/app/export-mdb")
	viper.SetDefault("migration.initial_data_dir", "/app/initial-data")
	viper.SetDefault("migration.mandats_dir", "/mandats")
	viper.SetDefault("migration.mandats_drive_prefix", `N:\Mandats\`)

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// Every setting has a default, so a missing config file is fine.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}
