package errkind

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifyRoundTrip(t *testing.T) {
	base := errors.New("disk full")
	wrapped := Wrap(RecoverableIo, base)

	kind, ok := Classify(wrapped)
	if !ok {
		t.Fatal("expected classification to succeed")
	}
	if kind != RecoverableIo {
		t.Fatalf("expected RecoverableIo, got %v", kind)
	}
	if !errors.Is(wrapped, base) {
		t.Fatal("expected errors.Is to see through the wrapper")
	}
}

func TestClassifyThroughFmtWrap(t *testing.T) {
	wrapped := fmt.Errorf("save failed: %w", Wrap(GraphSerializationFailed, errors.New("boom")))
	kind, ok := Classify(wrapped)
	if !ok || kind != GraphSerializationFailed {
		t.Fatalf("expected GraphSerializationFailed, got %v (ok=%v)", kind, ok)
	}
}

func TestClassifyUnclassified(t *testing.T) {
	if _, ok := Classify(errors.New("plain")); ok {
		t.Fatal("expected no classification for a plain error")
	}
}

func TestFatalAndRetriable(t *testing.T) {
	if !LockUnavailable.Fatal() {
		t.Fatal("LockUnavailable must be fatal")
	}
	if !DistributionTransient.Retriable() {
		t.Fatal("DistributionTransient must be retriable")
	}
	if GraphFingerprintMismatch.Fatal() || GraphFingerprintMismatch.Retriable() {
		t.Fatal("GraphFingerprintMismatch is informational, neither fatal nor retriable")
	}
}
