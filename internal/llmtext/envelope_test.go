package llmtext

import (
	"strings"
	"testing"
)

func TestExtractEnvelope(t *testing.T) {
	text := "I'll read that file now.\n```tool\n" +
		`[{"name": "readFile", "args": ["notes.txt"]}, {"name": "listFiles", "args": []}]` +
		"\n```\nDone."

	calls, found, err := ExtractEnvelope(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found {
		t.Fatal("expected envelope to be found")
	}
	if len(calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(calls))
	}
	if calls[0].Name != "readFile" || calls[0].Args[0] != "notes.txt" {
		t.Errorf("unexpected first call: %+v", calls[0])
	}
	if calls[1].Name != "listFiles" {
		t.Errorf("unexpected second call: %+v", calls[1])
	}
}

func TestExtractEnvelopeSingleObject(t *testing.T) {
	text := "```tool\n" + `{"name": "executeCommand", "args": ["echo hi"]}` + "\n```"

	calls, found, err := ExtractEnvelope(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found || len(calls) != 1 {
		t.Fatalf("expected 1 call, got found=%v calls=%d", found, len(calls))
	}
	if calls[0].Name != "executeCommand" {
		t.Errorf("unexpected call: %+v", calls[0])
	}
}

func TestExtractEnvelopeObjectInProse(t *testing.T) {
	text := "```tool\n" +
		`Here is the call: {"name": "listFiles", "args": []}` +
		"\n```"

	calls, found, err := ExtractEnvelope(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found || len(calls) != 1 {
		t.Fatalf("expected 1 call, got found=%v calls=%d", found, len(calls))
	}
	if calls[0].Name != "listFiles" {
		t.Errorf("unexpected call: %+v", calls[0])
	}
}

func TestExtractEnvelopeAbsent(t *testing.T) {
	_, found, err := ExtractEnvelope("No structured calls here, just prose.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Error("expected no envelope")
	}
}

func TestExtractEnvelopeMalformed(t *testing.T) {
	_, found, err := ExtractEnvelope("```tool\nnot json at all\n```")
	if !found {
		t.Error("expected fence to be detected")
	}
	if err == nil {
		t.Error("expected parse error for malformed envelope")
	}
}

func TestExtractEnvelopeUnterminated(t *testing.T) {
	_, found, err := ExtractEnvelope("```tool\n[{\"name\": \"readFile\"}]")
	if !found {
		t.Error("expected fence to be detected")
	}
	if err == nil || !strings.Contains(err.Error(), "unterminated") {
		t.Errorf("expected unterminated error, got: %v", err)
	}
}

func TestExtractJSONPure(t *testing.T) {
	got, err := ExtractJSON(`{"name": "test", "value": 42}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"name": "test", "value": 42}` {
		t.Errorf("unexpected result: %s", got)
	}
}

func TestExtractJSONEmbedded(t *testing.T) {
	got, err := ExtractJSON(`Let me think... {"name": "test"} Done!`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"name": "test"}` {
		t.Errorf("unexpected result: %s", got)
	}
}

func TestExtractJSONCodeBlock(t *testing.T) {
	got, err := ExtractJSON("```json\n{\"name\": \"test\"}\n```")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"name": "test"}` {
		t.Errorf("unexpected result: %s", got)
	}
}

func TestExtractJSONNone(t *testing.T) {
	_, err := ExtractJSON("This is just plain text without any JSON.")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "failed to extract valid JSON") {
		t.Errorf("expected extraction error, got: %v", err)
	}
}
