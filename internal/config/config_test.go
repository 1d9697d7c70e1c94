package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "bot.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func TestLoad_OverridesDefaults(t *testing.T) {
	p := writeFile(t, `
transport:
  ws_url: ws://127.0.0.1:9000/bot
  read_timeout: 2s
protocol:
  validate_state: true
record:
  dir: ./data/rounds
strategy: idle
rules:
  ship_shoot_distance: 500
`)
	c, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Transport.WSURL != "ws://127.0.0.1:9000/bot" || c.Transport.ReadTimeout != 2*time.Second {
		t.Fatalf("transport: %+v", c.Transport)
	}
	if c.Transport.WriteTimeout != 5*time.Second {
		t.Fatalf("write timeout default lost: %v", c.Transport.WriteTimeout)
	}
	if !c.Protocol.ValidateState || c.Protocol.ValidateCommands {
		t.Fatalf("protocol: %+v", c.Protocol)
	}
	if c.Record.Dir != "./data/rounds" || c.Strategy != "idle" {
		t.Fatalf("record/strategy: %+v %q", c.Record, c.Strategy)
	}
	if c.Rules.ShipShootDistance != 500 || c.Rules.ShipRockPrice != 100 {
		t.Fatalf("rules: %+v", c.Rules)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
	if _, err := Load(writeFile(t, "strategy: [")); err == nil {
		t.Fatalf("expected yaml error")
	}
	if _, err := Load(writeFile(t, "strategy: greedy\n")); err == nil {
		t.Fatalf("expected unknown strategy error")
	}
	if _, err := Load(writeFile(t, "transport:\n  read_timeout: -1s\n")); err == nil {
		t.Fatalf("expected negative timeout error")
	}
}

func TestDefaults_RulesMatchServerConstants(t *testing.T) {
	want := Rules{
		Radius:               15000,
		ShipMaxHealth:        100,
		ShipRockPrice:        100,
		ShipMovementFree:     1,
		ShipMovementMaxSize:  10000,
		ShipTransferDistance: 20,
		ShipShootDistance:    100,
		ShipRepairDistance:   50,
		WormholeRadius:       5,
	}
	if got := Defaults().Rules; got != want {
		t.Fatalf("rules: got %+v want %+v", got, want)
	}
}
