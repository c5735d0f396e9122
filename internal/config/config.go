package config

import (
	"os"
	"path/filepath"
	"strconv"
)

type Config struct {
	ChatDBPath   string
	TriviaDBPath string
	OpenAIAPIKey string
	OpenAIModel  string
	Port         int
	LogLevel     string
	LookbackDays int
	MessageLimit int
	Chats        string
}

func Load() Config {
	return Config{
		ChatDBPath:   envStr("CHAT_DB_PATH", defaultChatDBPath()),
		TriviaDBPath: envStr("TRIVIA_DB_PATH", "trivia.db"),
		OpenAIAPIKey: envStr("OPENAI_API_KEY", ""),
		OpenAIModel:  envStr("OPENAI_MODEL", "gpt-4o-mini"),
		Port:         envInt("TRIVIA_PORT", 8080),
		LogLevel:     envStr("LOG_LEVEL", "info"),
		LookbackDays: envInt("TRIVIA_LOOKBACK_DAYS", 365),
		MessageLimit: envInt("TRIVIA_MESSAGE_LIMIT", 5000),
		Chats:        envStr("TRIVIA_CHATS", ""),
	}
}

// defaultChatDBPath is the standard Messages database location on macOS.
func defaultChatDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "chat.db"
	}
	return filepath.Join(home, "Library", "Messages", "chat.db")
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
