package config

import (
	"github.com/spf13/viper"
	"sync"
)

var once sync.Once

func InitConfig() {
	once.Do(func() {
		viper.AutomaticEnv()

		viper.BindEnv("metrics_port", "METRICS_PORT")
		viper.BindEnv("telegram_bot_token", "TELEGRAM_BOT_TOKEN")
		viper.BindEnv("db_path", "DB_PATH")
		viper.BindEnv("dex_api_url", "DEX_API_URL")
		viper.BindEnv("chain_id", "CHAIN_ID")
		viper.BindEnv("quote_symbol", "QUOTE_SYMBOL")
		viper.BindEnv("poll_interval", "POLL_INTERVAL")
		viper.BindEnv("debug", "DEBUG")
		viper.BindEnv("lang", "LANG")

		viper.SetDefault("metrics_port", 9090)
		viper.SetDefault("db_path", "/app/data/bot.db")
		viper.SetDefault("dex_api_url", "https://api.dexscreener.com")
		viper.SetDefault("chain_id", "solana")
		viper.SetDefault("quote_symbol", "SOL")
		viper.SetDefault("poll_interval", 60)
		viper.SetDefault("debug", false)
		viper.SetDefault("lang", "en")
	})
}

func GetString(key string) string {
	InitConfig()
	return viper.GetString(key)
}

func GetInt(key string) int {
	InitConfig()
	return viper.GetInt(key)
}

func GetBool(key string) bool {
	InitConfig()
	return viper.GetBool(key)
}
