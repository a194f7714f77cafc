package advice

import (
	"strings"
	"testing"

	"github.com/phisheye/phisheye/internal/model"
)

func TestNew_DisabledWithoutProvider(t *testing.T) {
	a, err := New(model.AdviceConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a != nil {
		t.Error("expected nil advisor when no provider configured")
	}
}

func TestNew_RequiresAPIKey(t *testing.T) {
	if _, err := New(model.AdviceConfig{Provider: "openai"}); err == nil {
		t.Error("expected error for missing API key")
	}
}

func TestNew_RejectsUnknownProvider(t *testing.T) {
	if _, err := New(model.AdviceConfig{Provider: "carrier-pigeon", APIKey: "x"}); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestBuildPrompt(t *testing.T) {
	v := model.Verdict{
		URL:        "http://192.168.1.1/admin",
		Label:      model.LabelMalicious,
		Confidence: 0.99,
		Signals:    []string{"direct IP address", "insecure connection"},
	}

	prompt := BuildPrompt(v)
	for _, want := range []string{
		"http://192.168.1.1/admin",
		"MALICIOUS",
		"direct IP address",
		"insecure connection",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}
