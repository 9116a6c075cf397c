package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	GameDir       string
	OutputDir     string
	WorkerCount   int
	Verbose       bool
	NoExclude     bool
	Overwrite     bool
	Recursive     bool
	DatabaseURL   string
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	return &Config{
		GameDir:       getEnv("BSPARCHIVE_GAMEDIR", ""),
		OutputDir:     getEnv("BSPARCHIVE_OUTPUT", ""),
		WorkerCount:   getEnvInt("WORKER_COUNT", 1),
		Verbose:       getEnvBool("VERBOSE", false),
		NoExclude:     getEnvBool("NO_EXCLUDE", false),
		Overwrite:     getEnvBool("OVERWRITE", false),
		Recursive:     getEnvBool("RECURSIVE", false),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		Neo4jURI:      getEnv("NEO4J_URI", ""),
		Neo4jUser:     getEnv("NEO4J_USER", "neo4j"),
		Neo4jPassword: getEnv("NEO4J_PASSWORD", "password"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
