package config

import "github.com/spf13/viper"

// Config - структура для хранения конфигураций приложения
type Config struct {
	ServerAddress    string `mapstructure:"SERVER_ADDRESS"`
	PostgresConn     string `mapstructure:"POSTGRES_CONN"`
	MigrationURL     string `mapstructure:"MIGRATION_URL"`
	DocsDir          string `mapstructure:"DOCS_DIR"`
	TemplatesDir     string `mapstructure:"TEMPLATES_DIR"`
	AgentURL         string `mapstructure:"AGENT_URL"`
	SeedSampleData   bool   `mapstructure:"SEED_SAMPLE_DATA"`
	DefaultRecipient string `mapstructure:"DEFAULT_RECIPIENT"`
	BidEmail         string `mapstructure:"BID_EMAIL"`
	BidPhone         string `mapstructure:"BID_PHONE"`
}

// LoadConfig загружает конфигурацию из файла
func LoadConfig(path string) (cfg Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("app")
	viper.SetConfigType("env")

	err = viper.ReadInConfig()
	if err != nil {
		return
	}
	err = viper.Unmarshal(&cfg)
	return
}
