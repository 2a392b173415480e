package envhelper

import (
	"strings"
	"testing"
)

func setAll(t *testing.T) {
	t.Helper()
	values := map[string]string{
		_BYBIT_API_KEY:              "key",
		_BYBIT_API_SECRET:           "secret",
		_SUBGRAPH_API_TOKEN:         "token",
		_POSTGRES_HOST:              "localhost",
		_POSTGRES_PORT:              "5432",
		_POSTGRES_USER:              "postgres",
		_POSTGRES_PASSWORD:          "postgres",
		_POSTGRES_DB_NAME:           "quoting",
		_POSTGRES_SSL_MODE:          "disable",
		_ETH_MAINNET_RPC_HTTP:       "http://localhost:8545",
		_KAFKA_SERVER:               "localhost:9092",
		_KAFKA_V3_POOL_EVENTS_TOPIC: "v3-pool-events",
		_REDIS_SERVER:               "localhost:6379",
		_BOLT_SNAPSHOT_PATH:         "/tmp/pools.db",
		_QUOTER_HTTP_PORT:           "8080",
	}
	for key, value := range values {
		t.Setenv(key, value)
	}
}

func TestLoad(t *testing.T) {
	setAll(t)

	e, err := load()
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if e.POSTGRES_HOST != "localhost" || e.REDIS_SERVER != "localhost:6379" {
		t.Errorf("unexpected values: %s %s", e.POSTGRES_HOST, e.REDIS_SERVER)
	}
	if e.QUOTER_HTTP_PORT != 8080 {
		t.Errorf("QUOTER_HTTP_PORT = %d, want 8080", e.QUOTER_HTTP_PORT)
	}
}

func TestLoadReportsEveryMissingKey(t *testing.T) {
	setAll(t)
	t.Setenv(_REDIS_SERVER, "")
	t.Setenv(_KAFKA_SERVER, "")

	_, err := load()
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), _REDIS_SERVER) || !strings.Contains(err.Error(), _KAFKA_SERVER) {
		t.Errorf("error %q does not name both missing keys", err)
	}
}

func TestLoadRejectsNonNumericPort(t *testing.T) {
	setAll(t)
	t.Setenv(_QUOTER_HTTP_PORT, "eighty")

	if _, err := load(); err == nil {
		t.Fatal("expected an error")
	}
}
