package config

import (
	"errors"
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()
	os.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "5000" {
		t.Errorf("Port = %q, want %q", cfg.Port, "5000")
	}
	if cfg.EmailHost != "smtp.qq.com" {
		t.Errorf("EmailHost = %q, want %q", cfg.EmailHost, "smtp.qq.com")
	}
	if cfg.EmailPort != 465 {
		t.Errorf("EmailPort = %d, want 465", cfg.EmailPort)
	}
	if !cfg.SMTPSecure() {
		t.Error("SMTPSecure should default to true on port 465")
	}
	if cfg.ActivityBatchSize != 50 {
		t.Errorf("ActivityBatchSize = %d, want 50", cfg.ActivityBatchSize)
	}
	if cfg.ActivityFlushInterval != 2*time.Second {
		t.Errorf("ActivityFlushInterval = %v, want 2s", cfg.ActivityFlushInterval)
	}
	if cfg.BcryptCost != 10 {
		t.Errorf("BcryptCost = %d, want 10", cfg.BcryptCost)
	}
	if cfg.AMQPURL != "" {
		t.Errorf("AMQPURL = %q, want empty", cfg.AMQPURL)
	}
	if cfg.SeedCatalog {
		t.Error("SeedCatalog should default to false")
	}
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	os.Clearenv()

	if _, err := Load(); !errors.Is(err, ErrMissingJWTSecret) {
		t.Fatalf("Load err = %v, want ErrMissingJWTSecret", err)
	}

	os.Setenv("JWT_SECRET", "   ")
	if _, err := Load(); !errors.Is(err, ErrMissingJWTSecret) {
		t.Fatalf("Load with blank secret err = %v, want ErrMissingJWTSecret", err)
	}
}

func TestLoad_EnvVarOverride(t *testing.T) {
	os.Clearenv()
	os.Setenv("JWT_SECRET", "s3cret")
	os.Setenv("EMAIL_PORT", "587")
	os.Setenv("EMAIL_USER", "shop@example.com")
	os.Setenv("ACTIVITY_FLUSH_INTERVAL", "500ms")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.EmailPort != 587 {
		t.Errorf("EmailPort = %d, want 587", cfg.EmailPort)
	}
	if cfg.SMTPSecure() {
		t.Error("SMTPSecure should be false on port 587 without EMAIL_SECURE")
	}
	if cfg.MailFrom() != "E-Shop <shop@example.com>" {
		t.Errorf("MailFrom = %q", cfg.MailFrom())
	}
	if cfg.ActivityFlushInterval != 500*time.Millisecond {
		t.Errorf("ActivityFlushInterval = %v, want 500ms", cfg.ActivityFlushInterval)
	}

	os.Setenv("EMAIL_SECURE", "true")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.SMTPSecure() {
		t.Error("EMAIL_SECURE=true should force implicit TLS")
	}
}

func TestDSN_PrefersDatabaseURL(t *testing.T) {
	cfg := &Config{DatabaseURL: "postgres://u:p@db:5432/eshop", DBHost: "ignored"}
	if cfg.DSN() != "postgres://u:p@db:5432/eshop" {
		t.Errorf("DSN = %q", cfg.DSN())
	}

	cfg = &Config{DBHost: "db", DBUser: "u", DBPassword: "p", DBName: "eshop", DBPort: "5432", DBSSLMode: "disable"}
	want := "host=db user=u password=p dbname=eshop port=5432 sslmode=disable TimeZone=UTC"
	if cfg.DSN() != want {
		t.Errorf("DSN = %q, want %q", cfg.DSN(), want)
	}
}
