// Package gmail provides the mailbox capability: a thin wrapper around
// the Gmail Users service exposing the operations the assistant needs.
package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"sort"
	"strings"

	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// Client wraps the Gmail Users service. Construct it once at startup via
// NewClient; a nil Client means the mailbox capability is absent.
type Client struct {
	svc *gmail.UsersService
}

// NewClient creates a Gmail client authenticated with the cached OAuth
// token. Fails when no token has been cached yet.
func NewClient(ctx context.Context, credentialsPath string) (*Client, error) {
	hc, err := httpClient(ctx, credentialsPath)
	if err != nil {
		return nil, err
	}

	svc, err := gmail.NewService(ctx, option.WithHTTPClient(hc))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	return &Client{svc: svc.Users}, nil
}

// ListMessages returns the most recent inbox messages, up to n.
func (c *Client) ListMessages(ctx context.Context, n int64) ([]Message, error) {
	return c.query(ctx, "in:inbox", n)
}

// Search returns messages matching a Gmail search query, up to n.
func (c *Client) Search(ctx context.Context, query string, n int64) ([]Message, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("search query cannot be empty")
	}
	return c.query(ctx, query, n)
}

func (c *Client) query(ctx context.Context, q string, n int64) ([]Message, error) {
	if n <= 0 {
		n = 10
	}
	res, err := c.svc.Messages.List("me").Q(q).MaxResults(n).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	messages := make([]Message, 0, len(res.Messages))
	for _, ref := range res.Messages {
		full, err := c.svc.Messages.Get("me", ref.Id).Format("metadata").
			MetadataHeaders("Subject", "From", "To", "Cc", "Date").Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("failed to get message %s: %w", ref.Id, err)
		}
		messages = append(messages, fromGmailMessage(full, false))
	}
	return messages, nil
}

// GetMessage retrieves a single message with its body.
func (c *Client) GetMessage(ctx context.Context, id string) (*Message, error) {
	if id == "" {
		return nil, fmt.Errorf("message id is required")
	}
	full, err := c.svc.Messages.Get("me", id).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", id, err)
	}
	msg := fromGmailMessage(full, true)
	return &msg, nil
}

// Send sends an email and returns the new message id.
func (c *Client) Send(ctx context.Context, to []string, subject, body string, cc, bcc []string) (string, error) {
	raw, err := buildRawMessage(to, subject, body, cc, bcc)
	if err != nil {
		return "", err
	}

	sent, err := c.svc.Messages.Send("me", &gmail.Message{Raw: raw}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to send email: %w", err)
	}
	return sent.Id, nil
}

// CreateDraft creates a draft and returns its id.
func (c *Client) CreateDraft(ctx context.Context, to []string, subject, body string, cc, bcc []string) (*Draft, error) {
	raw, err := buildRawMessage(to, subject, body, cc, bcc)
	if err != nil {
		return nil, err
	}

	draft, err := c.svc.Drafts.Create("me", &gmail.Draft{
		Message: &gmail.Message{Raw: raw},
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create draft: %w", err)
	}
	return &Draft{ID: draft.Id, To: to, Subject: subject}, nil
}

// MarkRead removes the UNREAD label from a message.
func (c *Client) MarkRead(ctx context.Context, id string) error {
	return c.modifyLabels(ctx, id, nil, []string{"UNREAD"})
}

func (c *Client) modifyLabels(ctx context.Context, id string, add, remove []string) error {
	if id == "" {
		return fmt.Errorf("message id is required")
	}
	_, err := c.svc.Messages.Modify("me", id, &gmail.ModifyMessageRequest{
		AddLabelIds:    add,
		RemoveLabelIds: remove,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to modify message %s: %w", id, err)
	}
	return nil
}

// Trash moves a message to the trash. Deletion is recoverable by design;
// permanent deletion is not exposed.
func (c *Client) Trash(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("message id is required")
	}
	if _, err := c.svc.Messages.Trash("me", id).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to trash message %s: %w", id, err)
	}
	return nil
}

// AnalyzeThread fetches a full thread and summarizes it: participants,
// message count, date span and a one-line digest per message.
func (c *Client) AnalyzeThread(ctx context.Context, threadID string) (*ThreadSummary, error) {
	if threadID == "" {
		return nil, fmt.Errorf("thread id is required")
	}
	thread, err := c.svc.Threads.Get("me", threadID).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get thread %s: %w", threadID, err)
	}
	return summarizeThread(thread), nil
}

// summarizeThread builds a ThreadSummary from a full-format thread.
func summarizeThread(thread *gmail.Thread) *ThreadSummary {
	summary := &ThreadSummary{
		ThreadID:     thread.Id,
		MessageCount: len(thread.Messages),
	}

	seen := make(map[string]bool)
	for i, m := range thread.Messages {
		if i == 0 {
			summary.Subject = headerValue(m, "Subject")
			summary.FirstDate = headerValue(m, "Date")
		}
		summary.LastDate = headerValue(m, "Date")

		from := headerValue(m, "From")
		if from != "" && !seen[from] {
			seen[from] = true
			summary.Participants = append(summary.Participants, from)
		}

		snippet := m.Snippet
		if len(snippet) > 80 {
			snippet = snippet[:80] + "..."
		}
		summary.Digest = append(summary.Digest, fmt.Sprintf("%s: %s", from, snippet))
	}
	sort.Strings(summary.Participants)
	return summary
}

// buildRawMessage assembles an RFC 2822 message and base64url-encodes it
// for the Gmail API.
func buildRawMessage(to []string, subject, body string, cc, bcc []string) (string, error) {
	if len(to) == 0 {
		return "", fmt.Errorf("at least one recipient is required")
	}
	if subject == "" {
		return "", fmt.Errorf("subject is required")
	}
	if body == "" {
		return "", fmt.Errorf("body is required")
	}

	var b strings.Builder
	b.WriteString("To: " + strings.Join(to, ", ") + "\r\n")
	if len(cc) > 0 {
		b.WriteString("Cc: " + strings.Join(cc, ", ") + "\r\n")
	}
	if len(bcc) > 0 {
		b.WriteString("Bcc: " + strings.Join(bcc, ", ") + "\r\n")
	}
	b.WriteString("Subject: " + encodeHeader(subject) + "\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)

	return base64.URLEncoding.EncodeToString([]byte(b.String())), nil
}

// encodeHeader RFC 2047-encodes a header value when it contains
// non-ASCII characters.
func encodeHeader(s string) string {
	for _, r := range s {
		if r > 127 {
			return mime.BEncoding.Encode("UTF-8", s)
		}
	}
	return s
}
