package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"
)


type Config struct {
	Env    string
	Port   int
	DBURL  string
	RedisURL string

	EventsTableName        string
	UsersTableName         string
	RegistrationsTableName string

	EngineMaxRetries  int
	EngineOpTimeoutMS int
	StoreCallTimeoutMS int
}

func Load() Config {
	env := getEnv("APP_ENV", "dev")
	port := getEnvInt("PORT", 8080)
	dbURL := buildDBURL()

	return Config{
		Env:      env,
		Port:     port,
		DBURL:    dbURL,
		RedisURL: getEnv("REDIS_URL", "redis://127.0.0.1:6379/0"),

		EventsTableName:        getEnv("EVENTS_TABLE_NAME", "events"),
		UsersTableName:         getEnv("USERS_TABLE_NAME", "users"),
		RegistrationsTableName: getEnv("REGISTRATIONS_TABLE_NAME", "registrations"),

		// EngineMaxRetries bounds the optimistic ConditionFailed retry loop
		// (spec §5: "Retry budget per operation: 5 attempts").
		EngineMaxRetries: getEnvInt("ENGINE_MAX_RETRIES", 5),
		// EngineOpTimeoutMS is exposed through EngineOpTimeout(). The HTTP
		// handlers do not read it: they use a fixed 5s deadline for
		// register/unregister and 2s for the other routes.
		EngineOpTimeoutMS: getEnvInt("ENGINE_OP_TIMEOUT_MS", 5000),
		// StoreCallTimeoutMS is exposed through StoreCallTimeout(). The Store
		// does not read it; individual Store calls carry no deadline of
		// their own beyond the handler's request deadline.
		StoreCallTimeoutMS: getEnvInt("STORE_CALL_TIMEOUT_MS", 2000),
	}
}

func buildDBURL() string {
	host := getEnv("DB_HOST","127.0.0.1")
	port := getEnv("DB_PORT","5432")
	user := getEnv("DB_USER","eventreg")
	pass := getEnv("DB_PASSWORD","eventreg")
	name := getEnv("DB_NAME", "eventreg")
	ssl := getEnv("DB_SSLMODE", "disable")


	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration)(context.Context, context.CancelFunc){
	return context.WithTimeout(context.Background(),duration)
}

func (c Config) EngineOpTimeout() time.Duration {
	return time.Duration(c.EngineOpTimeoutMS) * time.Millisecond
}

func (c Config) StoreCallTimeout() time.Duration {
	return time.Duration(c.StoreCallTimeoutMS) * time.Millisecond
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}
func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			fmt.Println(err)
		}

		return num
	}
	return fallback
}