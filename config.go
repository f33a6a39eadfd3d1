package flightquery

import (
	"runtime"

	"github.com/spf13/viper"
)

func loadConfig() {
	viper.SetConfigName("flightqueryrc")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.flightquery")

	setupDefaults()

	viper.ReadInConfig()

	viper.SetEnvPrefix("flightquery")
	viper.AutomaticEnv()
}

func setupDefaults() {
	defaultSettings := map[string]interface{}{
		"input_location":  ".",
		"descriptor_name": "airline",
		"worker_count":    runtime.NumCPU(),
		"cache_size":      4, // open table handles kept per process
		"function_name":   "flightquery_function",
		"verbose":         false,
		"output":          "",
	}
	for key, value := range defaultSettings {
		viper.SetDefault(key, value)
	}

	aliases := map[string]string{
		"verbose": "v",
		"output":  "o",
	}
	for key, alias := range aliases {
		viper.RegisterAlias(alias, key)
	}
}
