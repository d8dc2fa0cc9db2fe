package app

import (
	"errors"
	"fmt"
	"testing"
)

func TestInsufficient(t *testing.T) {
	err := Insufficient(ReasonBuildCost, "wood", 15, 4)
	if !errors.Is(err, ErrInsufficient) || !err.IsBiz() {
		t.Fatalf("err=%v", err)
	}
	if r, _ := err.DataValue("required"); r != 15.0 {
		t.Fatalf("required=%v", r)
	}
	if a, _ := err.DataValue("available"); a != 4.0 {
		t.Fatalf("available=%v", a)
	}
	wrapped := fmt.Errorf("build: %w", err)
	if GetErrorReasonCode(wrapped) != ReasonBuildCost.Code {
		t.Fatalf("reason=%q", GetErrorReasonCode(wrapped))
	}
	if ErrInsufficient.Reason() != "" {
		t.Fatalf("sentinel mutated")
	}
}

func TestReasonMessage(t *testing.T) {
	msg, ok := ReasonMessage(ReasonTaxRateOutOfRange.Code)
	if !ok || msg != ReasonTaxRateOutOfRange.Message {
		t.Fatalf("msg=%q ok=%v", msg, ok)
	}
	if _, ok := ReasonMessage("NO_SUCH_REASON"); ok {
		t.Fatalf("unknown reason resolved")
	}
	if GetErrorReasonCode(errors.New("plain")) != "" {
		t.Fatalf("plain error carries a reason")
	}
}
