package envhelper

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Environment struct {
	BYBIT_API_KEY      string
	BYBIT_API_SECRET   string
	SUBGRAPH_API_TOKEN string

	POSTGRES_HOST     string
	POSTGRES_PORT     string
	POSTGRES_USER     string
	POSTGRES_PASSWORD string
	POSTGRES_DB_NAME  string
	POSTGRES_SSL_MODE string

	ETH_MAINNET_RPC_HTTP string

	KAFKA_SERVER               string
	KAFKA_V3_POOL_EVENTS_TOPIC string

	REDIS_SERVER       string
	BOLT_SNAPSHOT_PATH string

	QUOTER_HTTP_PORT uint
}

var env *Environment

// GetEnv loads the process environment once and hands out the same struct to
// every caller afterwards. A .env file in the working directory is merged in
// when present.
func GetEnv() (*Environment, error) {
	if env != nil {
		return env, nil
	}

	loaded, err := load()
	if err != nil {
		return nil, err
	}

	env = loaded
	return env, nil
}

const _BYBIT_API_KEY = "BYBIT_API_KEY"
const _BYBIT_API_SECRET = "BYBIT_API_SECRET"
const _SUBGRAPH_API_TOKEN = "SUBGRAPH_API_TOKEN"

const _POSTGRES_HOST = "POSTGRES_HOST"
const _POSTGRES_PORT = "POSTGRES_PORT"
const _POSTGRES_USER = "POSTGRES_USER"
const _POSTGRES_PASSWORD = "POSTGRES_PASSWORD"
const _POSTGRES_DB_NAME = "POSTGRES_DB_NAME"
const _POSTGRES_SSL_MODE = "POSTGRES_SSL_MODE"

const _ETH_MAINNET_RPC_HTTP = "ETH_MAINNET_RPC_HTTP"

const _KAFKA_SERVER = "KAFKA_SERVER"
const _KAFKA_V3_POOL_EVENTS_TOPIC = "KAFKA_V3_POOL_EVENTS_TOPIC"

const _REDIS_SERVER = "REDIS_SERVER"
const _BOLT_SNAPSHOT_PATH = "BOLT_SNAPSHOT_PATH"

const _QUOTER_HTTP_PORT = "QUOTER_HTTP_PORT"

// load reads every key and reports all missing ones in one error, so a fresh
// deployment does not have to fix them one restart at a time.
func load() (*Environment, error) {
	godotenv.Load()

	missing := []string{}
	get := func(key string) string {
		value := os.Getenv(key)
		if value == "" {
			missing = append(missing, key)
		}
		return value
	}

	e := &Environment{
		BYBIT_API_KEY:      get(_BYBIT_API_KEY),
		BYBIT_API_SECRET:   get(_BYBIT_API_SECRET),
		SUBGRAPH_API_TOKEN: get(_SUBGRAPH_API_TOKEN),

		POSTGRES_HOST:     get(_POSTGRES_HOST),
		POSTGRES_PORT:     get(_POSTGRES_PORT),
		POSTGRES_USER:     get(_POSTGRES_USER),
		POSTGRES_PASSWORD: get(_POSTGRES_PASSWORD),
		POSTGRES_DB_NAME:  get(_POSTGRES_DB_NAME),
		POSTGRES_SSL_MODE: get(_POSTGRES_SSL_MODE),

		ETH_MAINNET_RPC_HTTP: get(_ETH_MAINNET_RPC_HTTP),

		KAFKA_SERVER:               get(_KAFKA_SERVER),
		KAFKA_V3_POOL_EVENTS_TOPIC: get(_KAFKA_V3_POOL_EVENTS_TOPIC),

		REDIS_SERVER:       get(_REDIS_SERVER),
		BOLT_SNAPSHOT_PATH: get(_BOLT_SNAPSHOT_PATH),
	}

	portStr := get(_QUOTER_HTTP_PORT)

	if len(missing) > 0 {
		return nil, fmt.Errorf("missing environment variables: %s", strings.Join(missing, ", "))
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("%s is not a number: %q", _QUOTER_HTTP_PORT, portStr)
	}
	e.QUOTER_HTTP_PORT = uint(port)

	return e, nil
}
