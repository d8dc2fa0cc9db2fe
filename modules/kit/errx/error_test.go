package errx

import (
	"errors"
	"testing"
)

func TestError_IsComparesCodeOnly(t *testing.T) {
	e1 := NewBiz("INSUFFICIENT_RESOURCES", "not enough gold").WithData("required", 50).WithCause(errors.New("cause1"))
	e2 := NewBiz("INSUFFICIENT_RESOURCES", "not enough wood").WithData("required", 10)
	if !errors.Is(e1, e2) {
		t.Fatalf("expected errors.Is to match on code, e1=%v e2=%v", e1, e2)
	}
	if errors.Is(e1, NewBiz("NOT_FOUND", "")) {
		t.Fatalf("expected different codes not to match")
	}
}

func TestError_BizKeepsCauseWithoutStack(t *testing.T) {
	cause := errors.New("listing gone")
	err := NewBiz("NOT_FOUND", "listing not found").WithCause(cause)
	if got := err.Stack(); got != nil {
		t.Fatalf("business errors must not capture a stack, got=%v", got)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("cause chain lost, err=%v", err)
	}
	if !err.IsBiz() {
		t.Fatalf("expected biz kind")
	}
}

func TestError_SysCapturesStackOnce(t *testing.T) {
	cause := errors.New("disk full")
	sys := NewSys("PERSISTENCE", "save failed").WithCause(cause)
	if got := sys.Stack(); len(got) == 0 {
		t.Fatalf("expected stack on first conversion")
	}
	outer := NewSys("INTERNAL_ERROR", "tick failed").WithCause(sys)
	if got := outer.Stack(); got != nil {
		t.Fatalf("outer error must not re-capture when the chain has a stack, got=%v", got)
	}
}

func TestError_DataIsCopied(t *testing.T) {
	m := map[string]any{"required": 250}
	err := NewBiz("INSUFFICIENT_RESOURCES", "").WithDataMap(m)
	m["required"] = 1
	if v, _ := err.DataValue("required"); v != 250 {
		t.Fatalf("data must be copied on construction, got=%v", v)
	}
}

type testReason string

func (r testReason) ReasonCode() string { return string(r) }

func TestError_WithReason(t *testing.T) {
	err := NewBiz("FORBIDDEN", "not yours").WithReason(testReason("NOT_OWNER"))
	if err.Reason() != "NOT_OWNER" {
		t.Fatalf("unexpected reason: %q", err.Reason())
	}
}
