package failure

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestResourceExhausted_NamesExcess(t *testing.T) {
	err := &ResourceExhaustedError{Population: "pop_1", Slice: "0-99", Resource: "SDRAM", Requested: 101, Available: 100}
	if err.Excess() != 1 {
		t.Fatalf("expected excess 1, got %d", err.Excess())
	}
	msg := err.Error()
	for _, want := range []string{"pop_1", "0-99", "SDRAM", "requested 101", "available 100", "excess 1"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected %q in %q", want, msg)
		}
	}
}

func TestErrorsAs_ThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("compile: %w", Configuration("MappingConnector", "width %d too large", 70000))
	var cfgErr *ConfigurationError
	if !errors.As(wrapped, &cfgErr) {
		t.Fatalf("expected ConfigurationError through wrapping")
	}
	if cfgErr.Entity != "MappingConnector" || cfgErr.Reason != "width 70000 too large" {
		t.Fatalf("unexpected error content %+v", cfgErr)
	}
}
