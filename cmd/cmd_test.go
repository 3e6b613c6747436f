package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/abhisek/pytutor/internal/store"
)

// execute runs the root command with args and returns its stdout. Flags
// are reset afterwards since the command tree is package state.
func execute(t *testing.T, args ...string) string {
	t.Helper()
	t.Setenv("PYTUTOR_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	defer resetFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("execute %v: %v\n%s", args, err, out.String())
	}
	return out.String()
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func TestVersion(t *testing.T) {
	out := execute(t, "version")
	if !strings.HasPrefix(out, "pytutor ") {
		t.Errorf("version output = %q", out)
	}
}

func TestTopicsJSON(t *testing.T) {
	out := execute(t, "topics", "--json")

	var body struct {
		Sections []struct {
			Key    string `json:"key"`
			Topics []struct {
				ID string `json:"id"`
			} `json:"topics"`
		} `json:"sections"`
	}
	if err := json.Unmarshal([]byte(out), &body); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(body.Sections) == 0 || len(body.Sections[0].Topics) == 0 {
		t.Fatalf("expected sections with topics, got %+v", body)
	}
}

func TestTopicsText(t *testing.T) {
	out := execute(t, "topics")
	if !strings.Contains(out, "classes_objects") {
		t.Errorf("expected topic IDs in output:\n%s", out)
	}
}

func TestSummaryShowAndClear(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "pytutor.db")

	if out := execute(t, "--db", dbPath, "summary"); !strings.Contains(out, "No summary saved yet.") {
		t.Fatalf("empty summary output = %q", out)
	}

	st, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	err = store.SaveProcessed(context.Background(), st.LocalStateRepo(), store.ProcessedRecord{
		Summary:          "Classes bundle data and behavior.",
		RandomNumber:     42,
		OriginalResponse: "A class is a blueprint.",
	})
	st.Close()
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	out := execute(t, "--db", dbPath, "summary")
	for _, want := range []string{"Classes bundle data and behavior.", "42", "A class is a blueprint."} {
		if !strings.Contains(out, want) {
			t.Errorf("summary output missing %q:\n%s", want, out)
		}
	}

	if out := execute(t, "--db", dbPath, "summary", "--clear"); !strings.Contains(out, "Summary cleared.") {
		t.Errorf("clear output = %q", out)
	}
	if out := execute(t, "--db", dbPath, "summary"); !strings.Contains(out, "No summary saved yet.") {
		t.Errorf("summary after clear = %q", out)
	}
}

func TestLLMListEmpty(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "pytutor.db")
	out := execute(t, "--db", dbPath, "llm", "list", "--purpose", "summary")
	if !strings.Contains(out, "No LLM requests recorded.") {
		t.Errorf("llm list output = %q", out)
	}
}

func TestLLMStatsPricesModels(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "pytutor.db")

	st, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	ctx := context.Background()
	events := []store.LLMRequestEventData{
		{Provider: "openai", Model: "gpt-4o-mini", Purpose: "summary", InputTokens: 600_000, OutputTokens: 400_000, LatencyMs: 100, Success: true},
		{Provider: "openai", Model: "gpt-4o-mini", Purpose: "summary", InputTokens: 400_000, OutputTokens: 600_000, LatencyMs: 300, Success: true},
		{Provider: "mock", Model: "mock", Purpose: "tutor-chat", InputTokens: 10, OutputTokens: 20, LatencyMs: 5, Success: true},
	}
	for _, e := range events {
		if err := st.EventRepo().AppendLLMRequest(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	st.Close()

	out := execute(t, "--db", dbPath, "llm", "stats")
	for _, want := range []string{
		"Usage by Purpose",
		"Estimated Cost (USD)",
		"gpt-4o-mini",
		"$0.75",
		"TOTAL (partial)",
		"Pricing unavailable for: mock",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("stats output missing %q:\n%s", want, out)
		}
	}
}
