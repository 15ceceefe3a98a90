package telemetry

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
)

func TestSanitizeAttributesMasksSecretKeys(t *testing.T) {
	out := SanitizeAttributes(
		attribute.String("llm.provider", "azure_openai"),
		attribute.String("api_key", "sk-very-secret"),
		attribute.String("authorization", "Bearer abc"),
	)

	if out[0].Value.AsString() != "azure_openai" {
		t.Fatalf("benign attribute altered: %v", out[0])
	}
	if out[1].Value.AsString() != "***" || out[2].Value.AsString() != "***" {
		t.Fatalf("secret attributes not masked: %v %v", out[1], out[2])
	}
}

func TestSanitizeAttributesMasksSecretValues(t *testing.T) {
	out := SanitizeAttributes(
		attribute.String("llm.prompt", "use key sk-demo-secret-001 please"),
	)
	if got := out[0].Value.AsString(); got != "use key *** please" {
		t.Fatalf("value not masked: %q", got)
	}
}

func TestMaskText(t *testing.T) {
	if got := MaskText("token sk-abc123 trailing"); got != "token *** trailing" {
		t.Fatalf("masked text: %q", got)
	}
	if got := MaskText("nothing secret"); got != "nothing secret" {
		t.Fatalf("benign text altered: %q", got)
	}
}

func TestStartSpanWithoutManager(t *testing.T) {
	SetDefault(nil)

	ctx, span := StartSpan(context.Background(), "test.span")
	if ctx == nil || span == nil {
		t.Fatal("expected usable span without a manager")
	}
	EndSpan(span, errors.New("boom"))
	EndSpan(nil, nil)
}
