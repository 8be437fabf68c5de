package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/elboulangero/exaile-webradio-title/config"
	"github.com/elboulangero/exaile-webradio-title/storage"
	"github.com/elboulangero/exaile-webradio-title/utils"
)

var (
	logger    = utils.Logger
	settings  *config.Settings
	configDir string
	stationID string
)

var rootCmd = &cobra.Command{
	Use:   "webradio-title",
	Short: "webradio-title follows what a webradio is playing and reports artist, title and album as they change.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Define flags
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", ".", "Directory holding config.yaml and .env")
	rootCmd.PersistentFlags().String("loglevel", "", "Logging level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "Logging format: text or json")
	rootCmd.PersistentFlags().String("storage", "", "Storage type: memory, file, sqlite, postgres or redis")
	rootCmd.PersistentFlags().String("storage-path", "", "Storage directory, database file or connection URL")
	rootCmd.PersistentFlags().Bool("title-case", false, "Title-case artist, title and album")

	// Bind flags to Viper
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("loglevel"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("storage", rootCmd.PersistentFlags().Lookup("storage"))
	viper.BindPFlag("storage_path", rootCmd.PersistentFlags().Lookup("storage-path"))
	viper.BindPFlag("title_case", rootCmd.PersistentFlags().Lookup("title-case"))

	// Will look for environment variables with the prefix WRT_
	config.BindEnv(viper.GetViper())
}

func initConfig() {
	if err := utils.LoadDotEnv(configDir + "/.env"); err != nil {
		logger.Warnf("Error loading .env: %v", err)
	}

	config.SetDefaults(viper.GetViper())
	if err := config.ReadConfigFile(viper.GetViper(), configDir); err != nil {
		logger.Fatalf("Error reading config file: %v", err)
	}

	var err error
	settings, err = config.Load(viper.GetViper())
	if err != nil {
		logger.Fatalf("Invalid configuration: %v", err)
	}

	utils.SetLevel(settings.LogLevel)
	utils.SetFormat(settings.LogFormat)
}

// openStore builds and initializes the configured board.
func openStore() storage.Storage {
	store, err := storage.NewStorage(settings.Storage, settings.StoragePath, storage.WithRedisChannel(settings.RedisChannel))
	if err != nil {
		logger.Fatalf("Error initializing storage: %v", err)
	}

	err = store.Init()
	if err != nil {
		logger.Fatalf("Error initializing storage: %v", err)
	}

	logger.Debugf("Using storage type: %s, path: %s", settings.Storage, settings.StoragePath)
	return store
}

func closeStore(store storage.Storage) {
	if err := store.Close(); err != nil {
		logger.Errorf("Error closing storage: %v", err)
	}
}

func viperBind(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		logger.Fatalf("Error binding flag %s: %v", key, err)
	}
}
