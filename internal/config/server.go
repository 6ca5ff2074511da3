package config

// ServerConfig holds report server configuration
type ServerConfig struct {
	Port string
}

// LoadServerConfig loads report server configuration from environment variables
func LoadServerConfig(getenv func(string) string) ServerConfig {
	port := getenv("PORT")
	if port == "" {
		port = "8080"
	}

	return ServerConfig{
		Port: port,
	}
}
