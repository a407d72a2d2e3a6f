// Orchestration loop.
//
// One Loop instance serves one conversation. A turn is strictly
// sequential: the model call and every dispatched tool call complete
// before the next turn begins, so directory and context mutations from
// one call are visible to the next.
//
// Information Hiding:
// - Prompt assembly and windowing hidden
// - Model-failure recovery hidden (fixed apology, never an error)
// - Result formatting hidden

package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mpetrov/famulus/internal/logging"
	"github.com/mpetrov/famulus/llm"
	"github.com/mpetrov/famulus/model"
	"github.com/mpetrov/famulus/tools"
)

// Apology substituted for model output when the oracle is unreachable.
const modelApology = "I'm sorry, I couldn't reach the language model just now. Please try again."

// dataPreviewRunes caps the textual data preview appended per result.
const dataPreviewRunes = 500

// preambleRecentFiles caps the recent-file listing in the preamble.
const preambleRecentFiles = 5

// Loop drives one conversation: context, model oracle, tool dispatch.
type Loop struct {
	store      *ContextStore
	llmClient  *llm.Client
	dispatcher *Dispatcher
	window     int
	logger     *slog.Logger
}

// NewLoop assembles a loop. window <= 0 uses DefaultWindow.
func NewLoop(store *ContextStore, client *llm.Client, dispatcher *Dispatcher, window int) *Loop {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Loop{
		store:      store,
		llmClient:  client,
		dispatcher: dispatcher,
		window:     window,
		logger:     slog.Default(),
	}
}

// WithLogger overrides the default logger.
func (l *Loop) WithLogger(logger *slog.Logger) *Loop {
	l.logger = logger
	return l
}

// Store returns the loop's context store.
func (l *Loop) Store() *ContextStore {
	return l.store
}

// Dispatcher returns the loop's dispatcher.
func (l *Loop) Dispatcher() *Dispatcher {
	return l.dispatcher
}

// Turn runs one full conversation turn and returns the composed
// assistant text. Blank input is a no-op. Model-oracle failure is
// recovered locally with a fixed apology; the returned error is non-nil
// only when ctx is cancelled.
func (l *Loop) Turn(ctx context.Context, input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", nil
	}

	l.store.Append(model.NewMessage(model.RoleUser, input))

	prompt := l.buildPrompt()
	modelText, usage, err := l.llmClient.ChatWithUsage(ctx, prompt)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		l.logger.Warn("model call failed, substituting apology",
			logging.Provider(l.llmClient.Provider().Name()), logging.Err(err))
		modelText = modelApology
	} else if usage != nil {
		l.logger.Debug("model call completed",
			logging.Provider(l.llmClient.Provider().Name()),
			slog.Uint64("total_tokens", uint64(usage.TotalTokens)))
	}

	calls := ExtractCalls(modelText)
	results := make([]tools.Result, 0, len(calls))
	for _, call := range calls {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		results = append(results, l.dispatcher.Dispatch(ctx, call))
	}

	composed := composeTurn(modelText, results)
	l.store.Append(model.NewMessage(model.RoleAssistant, composed))

	return composed, nil
}

// buildPrompt assembles the system preamble plus the windowed history.
func (l *Loop) buildPrompt() []llm.ChatMessage {
	var b strings.Builder
	b.WriteString("You are a helpful assistant with access to local tools.\n")
	fmt.Fprintf(&b, "Current directory: %s\n", l.store.Workspace().Dir())

	if recent := l.store.Workspace().RecentFiles(preambleRecentFiles); len(recent) > 0 {
		b.WriteString("Recent files: " + strings.Join(recent, ", ") + "\n")
	}

	b.WriteString("To use a tool, write a call like toolName(arg1, arg2) or a fenced ```tool block ")
	b.WriteString("containing a JSON array of {\"name\": ..., \"args\": [...]} objects.\n")
	b.WriteString("Available tools: " + strings.Join(l.dispatcher.ToolNames(), ", ") + "\n")

	window := l.store.Window(l.window)
	prompt := make([]llm.ChatMessage, 0, len(window)+1)
	prompt = append(prompt, llm.SystemMessage(b.String()))
	for _, msg := range window {
		prompt = append(prompt, llm.ChatMessage{Role: string(msg.Role), Content: msg.Content})
	}
	return prompt
}

// composeTurn appends a formatted outcome block to the model text.
func composeTurn(modelText string, results []tools.Result) string {
	if len(results) == 0 {
		return modelText
	}

	var b strings.Builder
	b.WriteString(modelText)
	b.WriteString("\n")
	for _, r := range results {
		b.WriteString("\n→ ")
		b.WriteString(r.Message)
		if !r.Success() {
			fmt.Fprintf(&b, "\n  error: %s", r.Error())
		}
		if preview := dataPreview(r.Data); preview != "" {
			b.WriteString("\n")
			b.WriteString(indent(preview, "  "))
		}
	}
	return b.String()
}

// dataPreview renders a textual data payload capped at dataPreviewRunes.
func dataPreview(data any) string {
	s, ok := data.(string)
	if !ok || s == "" {
		return ""
	}
	runes := []rune(s)
	if len(runes) > dataPreviewRunes {
		return string(runes[:dataPreviewRunes]) + "…"
	}
	return s
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
