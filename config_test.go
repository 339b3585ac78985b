package helio

import (
	"os"
	"testing"

	kitlog "github.com/go-kit/kit/log"
)

func TestLoadConfigDefaults(t *testing.T) {
	logger := kitlog.NewLogfmtLogger(os.Stderr)
	cfg := LoadConfig(t.TempDir(), logger)
	def := DefaultConfig()
	if cfg.GravityConstant != def.GravityConstant {
		t.Fatalf("gravity constant %e, expected default %e", cfg.GravityConstant, def.GravityConstant)
	}
	if cfg.RocketMass != def.RocketMass || cfg.RocketFuelMass != def.RocketFuelMass {
		t.Fatalf("rocket defaults not applied: %+v", cfg)
	}
	if cfg.PredictionMaxPoints != def.PredictionMaxPoints {
		t.Fatalf("prediction max points %d", cfg.PredictionMaxPoints)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	content := `[physics]
theta = 0.7

[rocket]
thrust = 1.2e7
`
	if err := os.WriteFile(dir+"/conf.toml", []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg := LoadConfig(dir, kitlog.NewLogfmtLogger(os.Stderr))
	if cfg.Theta != 0.7 {
		t.Fatalf("theta = %f, expected 0.7", cfg.Theta)
	}
	if cfg.RocketThrust != 1.2e7 {
		t.Fatalf("thrust = %e, expected 1.2e7", cfg.RocketThrust)
	}
	// Unset keys keep their defaults.
	if cfg.ScaleHeight != DefaultConfig().ScaleHeight {
		t.Fatalf("scale height = %f", cfg.ScaleHeight)
	}
}

func TestLoadConfigNilLogger(t *testing.T) {
	assertPanic(t, func() {
		LoadConfig(".", nil)
	})
}
