package serverconfig

import (
	"testing"
	"time"
)

func TestGameConfig_WithDefaults(t *testing.T) {
	g := GameConfig{}.WithDefaults()
	if g.Tick() != time.Second {
		t.Fatalf("tick=%v", g.Tick())
	}
	if g.AIInterval() != 10*time.Second {
		t.Fatalf("ai=%v", g.AIInterval())
	}
	if g.MarketMaintenance() != 30*time.Minute {
		t.Fatalf("market=%v", g.MarketMaintenance())
	}
	if g.TransferMin() != 5*time.Second || g.TransferMax() != 30*time.Second {
		t.Fatalf("transfer bounds=%v..%v", g.TransferMin(), g.TransferMax())
	}
	if !g.ShouldReset() {
		t.Fatalf("reset must default to true")
	}
}

func TestGameConfig_KeepsExplicitValues(t *testing.T) {
	reset := false
	g := GameConfig{TickMs: 200, ResetOnStart: &reset}.WithDefaults()
	if g.Tick() != 200*time.Millisecond || g.ShouldReset() {
		t.Fatalf("explicit values overwritten: %+v", g)
	}
}
