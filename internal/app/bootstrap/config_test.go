// internal/app/bootstrap/config_test.go
package bootstrap

import (
	"testing"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

func validAppCfg() AppConfig {
	return AppConfig{
		MongoURI:      "mongodb://localhost:27017",
		MongoDatabase: "issuedeck_test",
		SessionKey:    "a-strong-session-key-0123456789ABCDEF",
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		mutate  func(*AppConfig)
		wantErr bool
	}{
		{"valid dev config", "dev", func(*AppConfig) {}, false},
		{"valid prod config", "prod", func(*AppConfig) {}, false},
		{"bad mongo uri", "dev", func(c *AppConfig) { c.MongoURI = "not-a-uri" }, true},
		{"dev session key in prod", "prod", func(c *AppConfig) { c.SessionKey = devSessionKey }, true},
		{"dev session key in dev is fine", "dev", func(c *AppConfig) { c.SessionKey = devSessionKey }, false},
		{"oauth id without secret", "dev", func(c *AppConfig) { c.GoogleClientID = "id" }, true},
		{"oauth secret without id", "dev", func(c *AppConfig) { c.GoogleClientSecret = "secret" }, true},
		{"oauth fully configured", "dev", func(c *AppConfig) {
			c.GoogleClientID = "id"
			c.GoogleClientSecret = "secret"
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appCfg := validAppCfg()
			tt.mutate(&appCfg)
			coreCfg := &config.CoreConfig{Env: tt.env}

			err := ValidateConfig(coreCfg, appCfg, zap.NewNop())
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
