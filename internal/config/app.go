package config

import (
	"github.com/joho/godotenv"
)

// LoadDotEnv reads an optional .env file into the process environment. Variables
// already set win over the file.
func LoadDotEnv(paths ...string) {
	_ = godotenv.Load(paths...)
}
