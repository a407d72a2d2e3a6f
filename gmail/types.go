package gmail

import (
	"encoding/base64"
	"strings"

	gmail "google.golang.org/api/gmail/v1"
)

// Message is a simplified view of a remote email message. The core passes
// these through opaquely as Result data payloads.
type Message struct {
	ID            string   `json:"id"`
	ThreadID      string   `json:"thread_id"`
	Subject       string   `json:"subject"`
	From          string   `json:"from"`
	To            []string `json:"to,omitempty"`
	Cc            []string `json:"cc,omitempty"`
	Date          string   `json:"date,omitempty"`
	Snippet       string   `json:"snippet,omitempty"`
	Body          string   `json:"body,omitempty"`
	Unread        bool     `json:"unread"`
	HasAttachment bool     `json:"has_attachment"`
}

// Draft describes a draft created in the remote mailbox.
type Draft struct {
	ID      string   `json:"id"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
}

// ThreadSummary is the payload of a thread analysis: participants,
// message count, date span and a one-line digest per message.
type ThreadSummary struct {
	ThreadID     string   `json:"thread_id"`
	Subject      string   `json:"subject"`
	MessageCount int      `json:"message_count"`
	Participants []string `json:"participants"`
	FirstDate    string   `json:"first_date,omitempty"`
	LastDate     string   `json:"last_date,omitempty"`
	Digest       []string `json:"digest,omitempty"`
}

// headerValue returns the value of a named header from a Gmail message,
// or "" when absent. Header names are case-insensitive.
func headerValue(m *gmail.Message, name string) string {
	if m == nil || m.Payload == nil {
		return ""
	}
	for _, h := range m.Payload.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// messageBody extracts the plain-text body of a Gmail message, walking
// MIME parts and preferring text/plain over text/html.
func messageBody(m *gmail.Message) string {
	if m == nil || m.Payload == nil {
		return ""
	}
	if body := decodePart(m.Payload, "text/plain"); body != "" {
		return body
	}
	return decodePart(m.Payload, "text/html")
}

// decodePart recursively searches a MIME part tree for the given mime
// type and base64url-decodes the first matching body.
func decodePart(part *gmail.MessagePart, mimeType string) string {
	if part == nil {
		return ""
	}
	if part.MimeType == mimeType && part.Body != nil && part.Body.Data != "" {
		decoded, err := base64.URLEncoding.DecodeString(part.Body.Data)
		if err != nil {
			return ""
		}
		return string(decoded)
	}
	for _, p := range part.Parts {
		if body := decodePart(p, mimeType); body != "" {
			return body
		}
	}
	return ""
}

// hasAttachment reports whether any part of the message carries a filename.
func hasAttachment(part *gmail.MessagePart) bool {
	if part == nil {
		return false
	}
	if part.Filename != "" {
		return true
	}
	for _, p := range part.Parts {
		if hasAttachment(p) {
			return true
		}
	}
	return false
}

// hasLabel reports whether a Gmail message carries the given label id.
func hasLabel(m *gmail.Message, label string) bool {
	for _, l := range m.LabelIds {
		if l == label {
			return true
		}
	}
	return false
}

// splitAddresses splits a comma-separated address header into entries.
func splitAddresses(header string) []string {
	if strings.TrimSpace(header) == "" {
		return nil
	}
	parts := strings.Split(header, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// fromGmailMessage converts a full-format Gmail message into the
// simplified Message view. includeBody controls body extraction; list
// views skip it to keep payloads small.
func fromGmailMessage(m *gmail.Message, includeBody bool) Message {
	msg := Message{
		ID:            m.Id,
		ThreadID:      m.ThreadId,
		Subject:       headerValue(m, "Subject"),
		From:          headerValue(m, "From"),
		To:            splitAddresses(headerValue(m, "To")),
		Cc:            splitAddresses(headerValue(m, "Cc")),
		Date:          headerValue(m, "Date"),
		Snippet:       m.Snippet,
		Unread:        hasLabel(m, "UNREAD"),
		HasAttachment: m.Payload != nil && hasAttachment(m.Payload),
	}
	if includeBody {
		msg.Body = messageBody(m)
	}
	return msg
}
