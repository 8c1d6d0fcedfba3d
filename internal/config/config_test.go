package config

import (
	"os"
	"reflect"
	"strings"
	"testing"
	"time"

	identitydomain "github.com/ManuelDev-we/CRM-condominio-sub002/internal/identity/domain"
)

const testSecret = "test-secret"

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()
	os.Setenv("SESSION_SECRET", testSecret)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":8080")
	}
	if cfg.GRPCAddr != ":9090" {
		t.Errorf("GRPCAddr = %q, want %q", cfg.GRPCAddr, ":9090")
	}
	if cfg.BcryptCost != 12 {
		t.Errorf("BcryptCost = %d, want 12", cfg.BcryptCost)
	}
	if !cfg.SessionCookieSecure {
		t.Error("SessionCookieSecure should default to true")
	}
	if cfg.AuditKafkaTopic != "condominio.security-events" {
		t.Errorf("AuditKafkaTopic = %q", cfg.AuditKafkaTopic)
	}
	if p := cfg.LoginPolicy(); p.Limit != 5 || p.Window != 15*time.Minute {
		t.Errorf("LoginPolicy = %+v, want 5 per 15m", p)
	}
	if p := cfg.RegisterPolicy(); p.Limit != 3 || p.Window != time.Hour {
		t.Errorf("RegisterPolicy = %+v, want 3 per 1h", p)
	}
	timeouts := cfg.SessionTimeouts()
	if timeouts[identitydomain.RoleAdmin] != 4*time.Hour {
		t.Errorf("admin timeout = %v, want 4h", timeouts[identitydomain.RoleAdmin])
	}
	if timeouts[identitydomain.RoleResident] != 2*time.Hour {
		t.Errorf("resident timeout = %v, want 2h", timeouts[identitydomain.RoleResident])
	}
	if cfg.SweepInterval() != 5*time.Minute {
		t.Errorf("SweepInterval = %v, want 5m", cfg.SweepInterval())
	}
	if cfg.HandleMaxAge() != 24*time.Hour {
		t.Errorf("HandleMaxAge = %v, want 24h", cfg.HandleMaxAge())
	}
	if cfg.KafkaBrokersList() != nil {
		t.Errorf("KafkaBrokersList = %v, want nil", cfg.KafkaBrokersList())
	}
	if cfg.IsProduction() {
		t.Error("default APP_ENV should not be production")
	}
}

func TestLoad_EnvVarOverride(t *testing.T) {
	os.Clearenv()
	os.Setenv("SESSION_SECRET", testSecret)
	os.Setenv("HTTP_ADDR", ":7070")
	os.Setenv("BCRYPT_COST", "10")
	os.Setenv("ADMIN_SESSION_TIMEOUT", "30m")
	os.Setenv("LOGIN_RATE_LIMIT", "7")
	os.Setenv("LOGIN_RATE_WINDOW", "1m")
	os.Setenv("SESSION_COOKIE_SECURE", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":7070" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":7070")
	}
	if cfg.BcryptCost != 10 {
		t.Errorf("BcryptCost = %d, want 10", cfg.BcryptCost)
	}
	if got := cfg.SessionTimeouts()[identitydomain.RoleAdmin]; got != 30*time.Minute {
		t.Errorf("admin timeout = %v, want 30m", got)
	}
	if p := cfg.LoginPolicy(); p.Limit != 7 || p.Window != time.Minute {
		t.Errorf("LoginPolicy = %+v", p)
	}
	if cfg.SessionCookieSecure {
		t.Error("SessionCookieSecure should be false")
	}
}

func TestLoad_SessionSecretRequired(t *testing.T) {
	os.Clearenv()

	cfg, err := Load()
	if err == nil {
		t.Fatal("Load should fail without SESSION_SECRET")
	}
	if cfg != nil {
		t.Error("Load should return nil config on error")
	}
	if err.Error() != "config: SESSION_SECRET is required" {
		t.Errorf("error = %q", err.Error())
	}
}

func TestLoad_ProductionRules(t *testing.T) {
	testCases := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "short secret",
			env:     map[string]string{"SESSION_SECRET": "short"},
			wantErr: "SESSION_SECRET must be at least",
		},
		{
			name:    "insecure cookie",
			env:     map[string]string{"SESSION_SECRET": strings.Repeat("x", 32), "SESSION_COOKIE_SECURE": "false"},
			wantErr: "SESSION_COOKIE_SECURE",
		},
		{
			name: "valid",
			env:  map[string]string{"SESSION_SECRET": strings.Repeat("x", 32)},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			os.Clearenv()
			os.Setenv("APP_ENV", "production")
			for k, v := range tc.env {
				os.Setenv(k, v)
			}
			cfg, err := Load()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("Load: %v", err)
				}
				if !cfg.IsProduction() {
					t.Error("IsProduction should be true")
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("err = %v, want containing %q", err, tc.wantErr)
			}
		})
	}
}

func TestLoad_BCRYPT_COSTRange(t *testing.T) {
	testCases := []struct {
		name  string
		value string
		want  int
		err   bool
	}{
		{"valid min", "4", 4, false},
		{"valid max", "31", 31, false},
		{"valid middle", "12", 12, false},
		{"too low", "3", 0, true},
		{"too high", "32", 0, true},
		{"zero", "0", 12, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			os.Clearenv()
			os.Setenv("SESSION_SECRET", testSecret)
			os.Setenv("BCRYPT_COST", tc.value)

			cfg, err := Load()
			if tc.err {
				if err == nil {
					t.Fatal("Load should return error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if cfg.BcryptCost != tc.want {
				t.Errorf("BcryptCost = %d, want %d", cfg.BcryptCost, tc.want)
			}
		})
	}
}

func TestLoad_InvalidDurations(t *testing.T) {
	for _, key := range []string{"ADMIN_SESSION_TIMEOUT", "LOGIN_RATE_WINDOW", "REGISTER_RATE_WINDOW", "SWEEP_INTERVAL", "HANDLE_MAX_AGE"} {
		for _, value := range []string{"invalid", "-1m", "0s"} {
			t.Run(key+"="+value, func(t *testing.T) {
				os.Clearenv()
				os.Setenv("SESSION_SECRET", testSecret)
				os.Setenv(key, value)
				if _, err := Load(); err == nil || !strings.Contains(err.Error(), key) {
					t.Fatalf("err = %v, want error naming %s", err, key)
				}
			})
		}
	}
}

func TestLoad_NonPositiveRateLimit(t *testing.T) {
	os.Clearenv()
	os.Setenv("SESSION_SECRET", testSecret)
	os.Setenv("REGISTER_RATE_LIMIT", "0")
	if _, err := Load(); err == nil {
		t.Fatal("Load should reject a zero rate limit")
	}
}

func TestSplitLists(t *testing.T) {
	cfg := &Config{
		KafkaBrokers:       " kafka-1:9092, ,kafka-2:9092 ",
		CORSAllowedOrigins: "http://a.test,http://b.test",
		TrustedProxies:     "",
	}
	if got, want := cfg.KafkaBrokersList(), []string{"kafka-1:9092", "kafka-2:9092"}; !reflect.DeepEqual(got, want) {
		t.Errorf("KafkaBrokersList = %v, want %v", got, want)
	}
	if got, want := cfg.CORSOrigins(), []string{"http://a.test", "http://b.test"}; !reflect.DeepEqual(got, want) {
		t.Errorf("CORSOrigins = %v, want %v", got, want)
	}
	if got := cfg.TrustedProxyList(); got != nil {
		t.Errorf("TrustedProxyList = %v, want nil", got)
	}
}
