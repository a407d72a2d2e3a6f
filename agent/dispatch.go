// Tool dispatch.
//
// Information Hiding:
// - Routing table and argument coercion hidden behind Dispatch
// - Capability availability resolved once at construction
// - Every outcome is normalized into one tools.Result shape

package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/mpetrov/famulus/gmail"
	"github.com/mpetrov/famulus/internal/logging"
	"github.com/mpetrov/famulus/model"
	"github.com/mpetrov/famulus/tools"
)

// Fixed error strings callers can branch on.
const (
	ErrBlockedForSafety  = "Command blocked for safety"
	ErrMailboxMissing    = "Gmail tools not available"
	ErrUnknownTool       = "Unknown tool"
	defaultEmailListSize = 10
)

// Dispatcher routes extracted tool calls to capability providers.
// The capability set is fixed at construction; mailbox may be nil.
type Dispatcher struct {
	files      *tools.Files
	proc       *tools.Process
	mailbox    *gmail.Client
	cmdTimeout int
	logger     *slog.Logger
}

// NewDispatcher builds a dispatcher over the given capabilities.
// A nil mailbox marks every mailbox tool as unavailable.
func NewDispatcher(files *tools.Files, proc *tools.Process, mailbox *gmail.Client) *Dispatcher {
	return &Dispatcher{
		files:      files,
		proc:       proc,
		mailbox:    mailbox,
		cmdTimeout: tools.DefaultCommandTimeout,
		logger:     slog.Default(),
	}
}

// WithLogger overrides the default logger.
func (d *Dispatcher) WithLogger(logger *slog.Logger) *Dispatcher {
	d.logger = logger
	return d
}

// WithCommandTimeout overrides the default shell command timeout in
// seconds, used when a call carries no explicit timeout argument.
// Non-positive values are ignored.
func (d *Dispatcher) WithCommandTimeout(secs int) *Dispatcher {
	if secs > 0 {
		d.cmdTimeout = secs
	}
	return d
}

// HasMailbox reports whether a mailbox capability is configured.
func (d *Dispatcher) HasMailbox() bool {
	return d.mailbox != nil
}

// ToolNames returns the active tool name set, in preamble order.
// Mailbox names are included only when a mailbox is configured.
func (d *Dispatcher) ToolNames() []string {
	names := make([]string, 0, len(toolNames))
	for _, n := range toolNames {
		if mailboxNames[n] && d.mailbox == nil {
			continue
		}
		names = append(names, n)
	}
	return names
}

// Dispatch routes one call and always returns a Result; failures inside
// capabilities (including panics) are converted, never propagated.
func (d *Dispatcher) Dispatch(ctx context.Context, call model.ToolCall) (result tools.Result) {
	defer func() {
		if r := recover(); r != nil {
			result = tools.Failf("tool %s panicked: %v", call.Name, r)
		}
		d.logger.Debug("dispatched tool call",
			logging.Tool(call.Name),
			logging.Status(statusOf(result)),
			logging.Err(result.Err))
	}()

	switch call.Name {
	case "readFile":
		return d.files.Read(call.Arg(0))
	case "writeFile":
		return d.files.Write(call.Arg(0), call.Arg(1))
	case "editFile":
		return d.files.Edit(call.Arg(0), call.Arg(1), call.Arg(2))
	case "listFiles":
		return d.files.List(call.Arg(0))
	case "executeCommand":
		command := call.Arg(0)
		if !tools.IsSafe(command) {
			return tools.Fail(errors.New(ErrBlockedForSafety))
		}
		timeout := intArg(call.Arg(1), d.cmdTimeout)
		return d.proc.Run(ctx, command, timeout)
	case "listEmails":
		return d.mailboxCall(func() tools.Result {
			n := intArg(call.Arg(0), defaultEmailListSize)
			msgs, err := d.mailbox.ListMessages(ctx, int64(n))
			if err != nil {
				return tools.Fail(err)
			}
			return tools.OKData(fmt.Sprintf("Found %d messages", len(msgs)), msgs)
		})
	case "searchEmails":
		return d.mailboxCall(func() tools.Result {
			n := intArg(call.Arg(1), defaultEmailListSize)
			msgs, err := d.mailbox.Search(ctx, call.Arg(0), int64(n))
			if err != nil {
				return tools.Fail(err)
			}
			return tools.OKData(fmt.Sprintf("Found %d messages matching %q", len(msgs), call.Arg(0)), msgs)
		})
	case "getEmail":
		return d.mailboxCall(func() tools.Result {
			msg, err := d.mailbox.GetMessage(ctx, call.Arg(0))
			if err != nil {
				return tools.Fail(err)
			}
			return tools.OKData("Retrieved message "+msg.ID, msg)
		})
	case "sendEmail":
		return d.mailboxCall(func() tools.Result {
			to := call.Arg(0)
			logging.WithTool(d.logger, call.Name).Debug("sending email",
				slog.String("recipient", logging.AnonymizeEmail(to)))
			id, err := d.mailbox.Send(ctx, []string{to}, call.Arg(1), call.Arg(2), nil, nil)
			if err != nil {
				return tools.Fail(err)
			}
			return tools.OK(fmt.Sprintf("Email sent to %s (id %s)", to, id))
		})
	case "draftEmail":
		return d.mailboxCall(func() tools.Result {
			logging.WithTool(d.logger, call.Name).Debug("creating draft",
				slog.String("recipient", logging.AnonymizeEmail(call.Arg(0))))
			draft, err := d.mailbox.CreateDraft(ctx, []string{call.Arg(0)}, call.Arg(1), call.Arg(2), nil, nil)
			if err != nil {
				return tools.Fail(err)
			}
			return tools.OK(fmt.Sprintf("Draft %s created for %s", draft.ID, call.Arg(0)))
		})
	case "markEmailRead":
		return d.mailboxCall(func() tools.Result {
			if err := d.mailbox.MarkRead(ctx, call.Arg(0)); err != nil {
				return tools.Fail(err)
			}
			return tools.OK("Marked message " + call.Arg(0) + " as read")
		})
	case "deleteEmail":
		return d.mailboxCall(func() tools.Result {
			if err := d.mailbox.Trash(ctx, call.Arg(0)); err != nil {
				return tools.Fail(err)
			}
			return tools.OK("Moved message " + call.Arg(0) + " to trash")
		})
	case "analyzeThread":
		return d.mailboxCall(func() tools.Result {
			summary, err := d.mailbox.AnalyzeThread(ctx, call.Arg(0))
			if err != nil {
				return tools.Fail(err)
			}
			return tools.OKData(fmt.Sprintf("Thread %s: %d messages, %d participants",
				summary.ThreadID, summary.MessageCount, len(summary.Participants)), summary)
		})
	default:
		return tools.Fail(errors.New(ErrUnknownTool))
	}
}

// mailboxCall is the single availability check every mailbox route
// passes through.
func (d *Dispatcher) mailboxCall(fn func() tools.Result) tools.Result {
	if d.mailbox == nil {
		return tools.Fail(errors.New(ErrMailboxMissing))
	}
	return fn()
}

// intArg parses an optional integer argument, falling back to def on a
// missing or unparseable value.
func intArg(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func statusOf(r tools.Result) string {
	if r.Success() {
		return logging.StatusSuccess
	}
	return logging.StatusError
}
