// Package llmtext provides extraction utilities for parsing LLM responses.
//
// LLMs often return structured payloads embedded in prose or wrapped in
// markdown code fences. This package locates and parses those payloads.
package llmtext

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CallDescriptor is one tool invocation from a structured envelope block.
type CallDescriptor struct {
	Name string   `json:"name"`
	Args []string `json:"args"`
}

const envelopeFence = "```tool"

// ExtractEnvelope finds the first fenced ```tool block in text and parses
// its JSON array of call descriptors.
//
// Returns (descriptors, true, nil) when a well-formed envelope is present,
// (nil, false, nil) when no envelope fence appears in the text, and
// (nil, true, err) when a fence is present but its contents don't parse -
// callers can distinguish "no envelope" from "broken envelope".
func ExtractEnvelope(text string) ([]CallDescriptor, bool, error) {
	start := strings.Index(text, envelopeFence)
	if start == -1 {
		return nil, false, nil
	}

	body := text[start+len(envelopeFence):]
	end := strings.Index(body, "```")
	if end == -1 {
		return nil, true, fmt.Errorf("unterminated tool envelope")
	}
	body = strings.TrimSpace(body[:end])

	if strings.HasPrefix(body, "[") {
		var calls []CallDescriptor
		if err := json.Unmarshal([]byte(body), &calls); err != nil {
			return nil, true, fmt.Errorf("failed to parse tool envelope: %w", err)
		}
		return calls, true, nil
	}

	// Tolerate a single object instead of an array, even when the model
	// wraps it in prose inside the fence.
	obj, err := ExtractJSON(body)
	if err != nil {
		return nil, true, fmt.Errorf("failed to parse tool envelope: %w", err)
	}
	var single CallDescriptor
	if err := json.Unmarshal([]byte(obj), &single); err != nil {
		return nil, true, fmt.Errorf("failed to parse tool envelope: %w", err)
	}
	if single.Name == "" {
		return nil, true, fmt.Errorf("tool envelope call has no name")
	}
	return []CallDescriptor{single}, true, nil
}

// ExtractJSON finds and returns the JSON object portion of a response string.
// It handles common LLM response patterns:
// 1. Pure JSON response - returns the full response
// 2. JSON wrapped in markdown code blocks (```json ... ```)
// 3. JSON object embedded in text - finds first '{' and last '}'
//
// Limitations:
// - Only handles JSON objects, not arrays
// - Uses simple brace matching, not full JSON parsing
func ExtractJSON(response string) (string, error) {
	// Strip markdown code blocks if present
	response = stripMarkdownCodeBlocks(response)

	// Try full response first
	var test interface{}
	if err := json.Unmarshal([]byte(response), &test); err == nil {
		return response, nil
	}

	// Try to find and extract JSON from the response
	start := strings.Index(response, "{")
	if start != -1 {
		end := strings.LastIndex(response, "}")
		if end != -1 && end > start {
			jsonStr := response[start : end+1]
			var test interface{}
			if err := json.Unmarshal([]byte(jsonStr), &test); err == nil {
				return jsonStr, nil
			}
		}
	}

	// Create a preview for the error message
	preview := response
	if len(preview) > 100 {
		preview = preview[:100] + "..."
	}
	return "", fmt.Errorf("failed to extract valid JSON from response: %q", preview)
}

// stripMarkdownCodeBlocks removes markdown code block markers from a response.
// Handles patterns like ```json\n...\n``` or ```\n...\n```
func stripMarkdownCodeBlocks(response string) string {
	trimmed := strings.TrimSpace(response)

	if strings.HasPrefix(trimmed, "```json") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimSpace(trimmed)
	} else if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSpace(trimmed)
	}

	if strings.HasSuffix(trimmed, "```") {
		trimmed = strings.TrimSuffix(trimmed, "```")
		trimmed = strings.TrimSpace(trimmed)
	}

	return trimmed
}
