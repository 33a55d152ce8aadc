package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/ganttline/ganttline/models"
	"github.com/ganttline/ganttline/types"
)

// GlobalAppConfig holds the application configuration, accessible globally.
var GlobalAppConfig types.AppConfig

// InitConfig reads in config file and ENV variables if set, then unmarshals
// into GlobalAppConfig.
func InitConfig() {
	v := viper.GetViper()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: error loading .env file: %v\n", err)
	}

	v.SetEnvPrefix("GANTTLINE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaultConfigValues(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not find home directory: %v\n", err)
		}

		v.SetConfigName(".ganttline")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(".", ".ganttline"))
		v.AddConfigPath(".")
		if home != "" {
			v.AddConfigPath(filepath.Join(home, ".ganttline"))
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Error reading config file %s: %v\n", v.ConfigFileUsed(), err)
		}
	}

	if err := v.Unmarshal(&GlobalAppConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Error unmarshaling config: %v\n", err)
		os.Exit(1)
	}

	GlobalAppConfig.Verbose = v.GetBool("verbose")
	if cfgFile != "" {
		GlobalAppConfig.Config = cfgFile
	} else {
		GlobalAppConfig.Config = v.ConfigFileUsed()
	}

	if err := models.ValidateStruct(GlobalAppConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration validation failed: %v\n", err)
		os.Exit(1)
	}
}

// setDefaultConfigValues defines the default values for the configuration.
func setDefaultConfigValues(v *viper.Viper) {
	v.SetDefault("project.rootDir", ".ganttline")
	v.SetDefault("project.name", "New Project")

	v.SetDefault("data.file", "project.json")
	v.SetDefault("data.format", "json")

	v.SetDefault("server.port", 8585)
	v.SetDefault("server.dbPath", filepath.Join(".ganttline", "ganttline.db"))
	v.SetDefault("server.allowedOrigins", []string{"http://localhost:5173"})

	v.SetDefault("remote.address", "http://localhost:8585")
	v.SetDefault("remote.projectId", "")
	v.SetDefault("remote.requestTimeoutSeconds", 30)
	v.SetDefault("remote.maxRetries", 2)
}

// GetConfig returns the global application configuration.
func GetConfig() types.AppConfig {
	return GlobalAppConfig
}
