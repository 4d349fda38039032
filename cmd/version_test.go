package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/kozaktomas/lab-kiosk/internal/config"
)

func TestPrintVersion(t *testing.T) {
	cfg := &config.Config{
		Embedding: config.EmbeddingConfig{Model: "Facenet"},
		Match:     config.MatchConfig{Threshold: 0.75},
	}

	var buf bytes.Buffer
	printVersion(&buf, cfg)

	out := buf.String()
	for _, want := range []string{"lab-kiosk dev (commit unknown, built unknown)", "Embedding model:  Facenet", "Match threshold:  0.75"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q does not contain %q", out, want)
		}
	}
}
