package config

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	ctx := context.Background()
	cfg, err := Load(ctx)
	if err != nil {
		t.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Expected Server.Port to be '8080', got '%s'", cfg.Server.Port)
	}

	if cfg.MySQL.Host != "localhost" {
		t.Errorf("Expected MySQL.Host to be 'localhost', got '%s'", cfg.MySQL.Host)
	}

	if cfg.Redis.Host != "localhost" {
		t.Errorf("Expected Redis.Host to be 'localhost', got '%s'", cfg.Redis.Host)
	}

	if cfg.Auth.WebTokenExpiry.Duration != 10*time.Minute {
		t.Errorf("Expected Auth.WebTokenExpiry to be 10m, got %v", cfg.Auth.WebTokenExpiry.Duration)
	}

	if cfg.Auth.MobileTokenExpiry.Duration != 480*time.Minute {
		t.Errorf("Expected Auth.MobileTokenExpiry to be 480m, got %v", cfg.Auth.MobileTokenExpiry.Duration)
	}

	if cfg.Security.LoginIPPoints != 100 {
		t.Errorf("Expected Security.LoginIPPoints to be 100, got %d", cfg.Security.LoginIPPoints)
	}

	if cfg.Security.LoginIPWindow.Duration != 24*time.Hour {
		t.Errorf("Expected Security.LoginIPWindow to be 1d, got %v", cfg.Security.LoginIPWindow.Duration)
	}

	if cfg.Security.LoginUserIPPoints != 10 {
		t.Errorf("Expected Security.LoginUserIPPoints to be 10, got %d", cfg.Security.LoginUserIPPoints)
	}

	if cfg.Security.LoginUserIPWindow.Duration != 90*24*time.Hour {
		t.Errorf("Expected Security.LoginUserIPWindow to be 90d, got %v", cfg.Security.LoginUserIPWindow.Duration)
	}

	if cfg.Security.LoginUserIPBlock.Duration != time.Hour {
		t.Errorf("Expected Security.LoginUserIPBlock to be 1h, got %v", cfg.Security.LoginUserIPBlock.Duration)
	}

	if cfg.Env != "development" {
		t.Errorf("Expected Env to be 'development', got '%s'", cfg.Env)
	}

	if len(cfg.CORS.ExposedHeaders) != 2 {
		t.Errorf("Expected CORS.ExposedHeaders to carry the two token headers, got %v", cfg.CORS.ExposedHeaders)
	}
}

func TestLoadWithCustomValues(t *testing.T) {
	os.Setenv("SERVER_PORT", "9090")
	os.Setenv("MYSQL_HOST", "mysql.example.com")
	os.Setenv("AUTH_WEB_TOKEN_EXPIRY", "30m")
	os.Setenv("LOGIN_USER_IP_BLOCK", "2h")
	os.Setenv("ENV", "production")
	defer func() {
		os.Unsetenv("SERVER_PORT")
		os.Unsetenv("MYSQL_HOST")
		os.Unsetenv("AUTH_WEB_TOKEN_EXPIRY")
		os.Unsetenv("LOGIN_USER_IP_BLOCK")
		os.Unsetenv("ENV")
	}()

	ctx := context.Background()
	cfg, err := Load(ctx)
	if err != nil {
		t.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("Expected Server.Port to be '9090', got '%s'", cfg.Server.Port)
	}

	if cfg.MySQL.Host != "mysql.example.com" {
		t.Errorf("Expected MySQL.Host to be 'mysql.example.com', got '%s'", cfg.MySQL.Host)
	}

	if cfg.Auth.WebTokenExpiry.Duration != 30*time.Minute {
		t.Errorf("Expected Auth.WebTokenExpiry to be 30m, got %v", cfg.Auth.WebTokenExpiry.Duration)
	}

	if cfg.Security.LoginUserIPBlock.Duration != 2*time.Hour {
		t.Errorf("Expected Security.LoginUserIPBlock to be 2h, got %v", cfg.Security.LoginUserIPBlock.Duration)
	}

	if cfg.Env != "production" {
		t.Errorf("Expected Env to be 'production', got '%s'", cfg.Env)
	}
}

func TestMySQLDSN(t *testing.T) {
	m := MySQLConfig{
		Host:     "db",
		Port:     "3306",
		User:     "app",
		Password: "secret",
		DBName:   "books",
	}

	want := "app:secret@tcp(db:3306)/books?charset=utf8mb4&parseTime=True&loc=UTC"
	if got := m.DSN(); got != want {
		t.Errorf("Expected DSN %q, got %q", want, got)
	}
}
