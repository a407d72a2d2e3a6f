// Call extraction from model output.
//
// Two formats are recognized. A fenced ```tool block carrying a JSON
// array of {"name", "args"} descriptors is the preferred, unambiguous
// form and wins when present. Prose call expressions like
// readFile(notes.txt) remain supported as the fallback; prose scanning
// splits arguments on commas and stops at the first ')', so arguments
// containing literal commas or parentheses belong in the envelope form.

package agent

import (
	"regexp"
	"strings"

	"github.com/mpetrov/famulus/internal/llmtext"
	"github.com/mpetrov/famulus/model"
)

// toolNames is the closed set of recognized call names. Order matters:
// it is the order names are listed in the system preamble.
var toolNames = []string{
	"readFile",
	"writeFile",
	"editFile",
	"listFiles",
	"executeCommand",
	"listEmails",
	"searchEmails",
	"getEmail",
	"sendEmail",
	"draftEmail",
	"markEmailRead",
	"deleteEmail",
	"analyzeThread",
}

// mailboxNames is the subset of toolNames requiring a mailbox capability.
var mailboxNames = map[string]bool{
	"listEmails":    true,
	"searchEmails":  true,
	"getEmail":      true,
	"sendEmail":     true,
	"draftEmail":    true,
	"markEmailRead": true,
	"deleteEmail":   true,
	"analyzeThread": true,
}

var knownNames = func() map[string]bool {
	m := make(map[string]bool, len(toolNames))
	for _, n := range toolNames {
		m[n] = true
	}
	return m
}()

// callPattern matches <name>(<args>) where <name> is one of the closed
// name set and <args> is any run of characters excluding ')'.
var callPattern = regexp.MustCompile(
	`\b(` + strings.Join(toolNames, "|") + `)\(([^)]*)\)`)

// ExtractCalls scans model output for tool invocations, returned in
// left-to-right order of first appearance - this becomes execution order.
//
// When the text carries a well-formed ```tool envelope, only its
// descriptors are returned and prose scanning is skipped. A malformed
// envelope extracts nothing; falling back to prose scanning there would
// execute calls the model meant to express structurally.
func ExtractCalls(text string) []model.ToolCall {
	if calls, found, err := llmtext.ExtractEnvelope(text); found {
		if err != nil {
			return nil
		}
		return fromEnvelope(calls)
	}
	return scanProse(text)
}

func fromEnvelope(descriptors []llmtext.CallDescriptor) []model.ToolCall {
	var calls []model.ToolCall
	for _, d := range descriptors {
		if !knownNames[d.Name] {
			continue
		}
		args := make([]string, len(d.Args))
		copy(args, d.Args)
		calls = append(calls, model.ToolCall{Name: d.Name, Arguments: args})
	}
	return calls
}

func scanProse(text string) []model.ToolCall {
	matches := callPattern.FindAllStringSubmatch(text, -1)
	var calls []model.ToolCall
	for _, m := range matches {
		calls = append(calls, model.ToolCall{
			Name:      m[1],
			Arguments: splitArgs(m[2]),
		})
	}
	return calls
}

// splitArgs splits a raw argument run on commas, trims whitespace, and
// strips one layer of surrounding quotes from each token.
func splitArgs(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	args := make([]string, 0, len(parts))
	for _, p := range parts {
		args = append(args, stripQuotes(strings.TrimSpace(p)))
	}
	return args
}

func stripQuotes(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') ||
			(first == '\'' && last == '\'') ||
			(first == '`' && last == '`') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
