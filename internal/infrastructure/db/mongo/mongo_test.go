package mongo

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestConnect_EmptyDatabase(t *testing.T) {
	_, _, err := Connect(context.Background(), Config{URI: "mongodb://localhost:27017"})
	if err == nil || !strings.Contains(err.Error(), "database name is empty") {
		t.Fatalf("expected empty database error, got %v", err)
	}
}

func TestConnect_InvalidURI(t *testing.T) {
	_, _, err := Connect(context.Background(), Config{URI: "not-a-mongo-uri", Database: "vaccination"})
	if err == nil || !strings.HasPrefix(err.Error(), "mongo connect:") {
		t.Fatalf("expected connect error, got %v", err)
	}
}

func TestConfig_Timeout(t *testing.T) {
	if got := (Config{}).timeout(); got != defaultTimeout {
		t.Fatalf("expected default %v, got %v", defaultTimeout, got)
	}
	if got := (Config{Timeout: time.Second}).timeout(); got != time.Second {
		t.Fatalf("expected 1s, got %v", got)
	}
}
