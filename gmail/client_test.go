package gmail

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gmail "google.golang.org/api/gmail/v1"
)

func testMessage(id, subject, from string, labels []string) *gmail.Message {
	return &gmail.Message{
		Id:       id,
		ThreadId: "t-" + id,
		LabelIds: labels,
		Snippet:  "snippet for " + id,
		Payload: &gmail.MessagePart{
			Headers: []*gmail.MessagePartHeader{
				{Name: "Subject", Value: subject},
				{Name: "From", Value: from},
				{Name: "To", Value: "alice@example.com, bob@example.com"},
				{Name: "Date", Value: "Mon, 2 Jun 2025 10:00:00 +0000"},
			},
		},
	}
}

func TestHeaderValueCaseInsensitive(t *testing.T) {
	msg := testMessage("1", "Hello", "carol@example.com", nil)

	assert.Equal(t, "Hello", headerValue(msg, "subject"))
	assert.Equal(t, "carol@example.com", headerValue(msg, "FROM"))
	assert.Equal(t, "", headerValue(msg, "Reply-To"))
}

func TestMessageBodyPrefersPlainText(t *testing.T) {
	plain := base64.URLEncoding.EncodeToString([]byte("plain body"))
	html := base64.URLEncoding.EncodeToString([]byte("<p>html body</p>"))

	msg := &gmail.Message{
		Payload: &gmail.MessagePart{
			MimeType: "multipart/alternative",
			Parts: []*gmail.MessagePart{
				{MimeType: "text/html", Body: &gmail.MessagePartBody{Data: html}},
				{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: plain}},
			},
		},
	}

	assert.Equal(t, "plain body", messageBody(msg))
}

func TestMessageBodyFallsBackToHTML(t *testing.T) {
	html := base64.URLEncoding.EncodeToString([]byte("<p>only html</p>"))

	msg := &gmail.Message{
		Payload: &gmail.MessagePart{
			MimeType: "text/html",
			Body:     &gmail.MessagePartBody{Data: html},
		},
	}

	assert.Equal(t, "<p>only html</p>", messageBody(msg))
}

func TestFromGmailMessage(t *testing.T) {
	msg := fromGmailMessage(testMessage("42", "Status", "carol@example.com", []string{"INBOX", "UNREAD"}), false)

	assert.Equal(t, "42", msg.ID)
	assert.Equal(t, "t-42", msg.ThreadID)
	assert.Equal(t, "Status", msg.Subject)
	assert.Equal(t, []string{"alice@example.com", "bob@example.com"}, msg.To)
	assert.True(t, msg.Unread)
	assert.Empty(t, msg.Body)
}

func TestSplitAddresses(t *testing.T) {
	assert.Nil(t, splitAddresses("  "))
	assert.Equal(t, []string{"a@x.com"}, splitAddresses("a@x.com"))
	assert.Equal(t,
		[]string{"a@x.com", "Bob <b@x.com>"},
		splitAddresses(" a@x.com , Bob <b@x.com>, "))
}

func TestSummarizeThread(t *testing.T) {
	thread := &gmail.Thread{
		Id: "t-1",
		Messages: []*gmail.Message{
			testMessage("1", "Planning", "carol@example.com", nil),
			testMessage("2", "Re: Planning", "dave@example.com", nil),
			testMessage("3", "Re: Planning", "carol@example.com", nil),
		},
	}

	summary := summarizeThread(thread)

	assert.Equal(t, "t-1", summary.ThreadID)
	assert.Equal(t, "Planning", summary.Subject)
	assert.Equal(t, 3, summary.MessageCount)
	assert.Equal(t, []string{"carol@example.com", "dave@example.com"}, summary.Participants)
	assert.Len(t, summary.Digest, 3)
}

func TestBuildRawMessage(t *testing.T) {
	raw, err := buildRawMessage([]string{"a@x.com"}, "Hi", "body text", []string{"c@x.com"}, nil)
	require.NoError(t, err)

	decoded, err := base64.URLEncoding.DecodeString(raw)
	require.NoError(t, err)

	text := string(decoded)
	assert.Contains(t, text, "To: a@x.com\r\n")
	assert.Contains(t, text, "Cc: c@x.com\r\n")
	assert.Contains(t, text, "Subject: Hi\r\n")
	assert.True(t, strings.HasSuffix(text, "\r\nbody text"))
}

func TestBuildRawMessageValidation(t *testing.T) {
	_, err := buildRawMessage(nil, "s", "b", nil, nil)
	assert.ErrorContains(t, err, "recipient")

	_, err = buildRawMessage([]string{"a@x.com"}, "", "b", nil, nil)
	assert.ErrorContains(t, err, "subject")

	_, err = buildRawMessage([]string{"a@x.com"}, "s", "", nil, nil)
	assert.ErrorContains(t, err, "body")
}

func TestEncodeHeader(t *testing.T) {
	assert.Equal(t, "plain subject", encodeHeader("plain subject"))
	assert.Equal(t, "=?UTF-8?b?R3LDvMOfZQ==?=", encodeHeader("Grüße"))
}
