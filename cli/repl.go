// Interactive chat session for the famulus CLI.
//
// Information Hiding:
// - Capability wiring and provider setup hidden
// - Verb parsing and output formatting hidden
// - Session persistence is an opt-in mirror of the in-process history

package cli

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/mpetrov/famulus/agent"
	"github.com/mpetrov/famulus/config"
	"github.com/mpetrov/famulus/gmail"
	"github.com/mpetrov/famulus/internal/logging"
	"github.com/mpetrov/famulus/llm"
	"github.com/mpetrov/famulus/model"
	"github.com/mpetrov/famulus/storage"
	"github.com/mpetrov/famulus/tools"
)

// Options holds CLI execution options.
type Options struct {
	Provider  string
	SessionID string
	DBPath    string
	Verbose   bool
}

// defaultDBPath is the database used when --session is set without --db.
const defaultDBPath = ".famulus/famulus.db"

// Chat starts an interactive session: direct verbs hit the capabilities,
// everything else is forwarded to the assistant loop.
func Chat(ctx context.Context, opts Options) error {
	settings, err := config.New(opts.Provider)
	if err != nil {
		return err
	}

	provider, err := createProvider(opts.Provider, settings)
	if err != nil {
		return err
	}

	logger := logging.WithOperation(newLogger(opts.Verbose), "chat")

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to determine working directory: %w", err)
	}
	ws, err := model.NewWorkspace(cwd)
	if err != nil {
		return err
	}

	mailbox := openMailbox(ctx, settings.Gmail.CredentialsPath, logger)

	dispatcher := agent.NewDispatcher(tools.NewFiles(ws), tools.NewProcess(ws), mailbox).
		WithCommandTimeout(settings.Chat.CommandTimeout).
		WithLogger(logger)
	store := agent.NewContextStore(ws)
	loop := agent.NewLoop(store, llm.NewClient(provider), dispatcher, settings.Chat.HistoryWindow).
		WithLogger(logger)

	// Set up session persistence if requested. The in-process history
	// stays authoritative; the database mirrors it after every turn.
	var db *storage.SqliteStorage
	session := opts.SessionID
	if session != "" || opts.DBPath != "" {
		path := opts.DBPath
		if path == "" {
			path = defaultDBPath
		}
		db, err = storage.OpenSqlite(path)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		if session == "" {
			session = uuid.NewString()
			fmt.Printf("Starting session %s\n", session)
		} else if history, err := db.Load(ctx, session); err != nil {
			return fmt.Errorf("failed to load history: %w", err)
		} else if len(history) > 0 {
			store.Replace(history)
			logger.Debug("session restored", logging.Session(session),
				slog.Int("messages", len(history)))
			fmt.Printf("Resuming session '%s' (%d messages)\n", session, len(history))
		}
	}

	fmt.Printf("famulus — %s (%s)\n", provider.Name(), provider.Model())
	if dispatcher.HasMailbox() {
		fmt.Println("Gmail tools available.")
	}
	fmt.Println("Type 'help' for commands, 'exit' to quit.")
	fmt.Println()

	save := func() {
		if db == nil {
			return
		}
		if err := db.Save(ctx, session, store.History()); err != nil {
			logger.Warn("failed to save history", logging.Session(session), logging.Err(err))
			fmt.Fprintf(os.Stderr, "Warning: failed to save history: %v\n", err)
		}
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		verb, rest, _ := strings.Cut(input, " ")
		rest = strings.TrimSpace(rest)

		switch verb {
		case "exit", "quit":
			return scanner.Err()
		case "help":
			printHelp(dispatcher.HasMailbox())
		case "clear":
			store.Clear()
			save()
			fmt.Println("History cleared.")
		case "context":
			printSnapshot(store.Snapshot())
		case "cd":
			if err := ws.ChangeDir(rest); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			} else {
				fmt.Println(ws.Dir())
			}
		default:
			call, ok := verbCall(verb, rest)
			if !ok {
				out, err := loop.Turn(ctx, input)
				if err != nil {
					return err
				}
				fmt.Printf("\n%s\n\n", out)
				save()
				continue
			}
			printResult(dispatcher.Dispatch(ctx, call))
		}
	}

	return scanner.Err()
}

// verbCall maps a direct command verb to a tool call, bypassing the model.
// Returns ok=false for unrecognized verbs, which fall through to the loop.
func verbCall(verb, rest string) (model.ToolCall, bool) {
	switch verb {
	case "ls":
		return model.ToolCall{Name: "listFiles", Arguments: argsOrNone(rest)}, true
	case "read":
		return model.ToolCall{Name: "readFile", Arguments: []string{rest}}, true
	case "write":
		// write <file> <text>: everything after the path is content.
		path, text, _ := strings.Cut(rest, " ")
		return model.ToolCall{Name: "writeFile", Arguments: []string{path, text}}, true
	case "run":
		return model.ToolCall{Name: "executeCommand", Arguments: []string{rest}}, true
	case "emails":
		return model.ToolCall{Name: "listEmails", Arguments: argsOrNone(rest)}, true
	case "search":
		return model.ToolCall{Name: "searchEmails", Arguments: []string{rest}}, true
	case "email":
		return model.ToolCall{Name: "getEmail", Arguments: []string{rest}}, true
	case "send", "draft":
		to, rest2, _ := strings.Cut(rest, " ")
		subject, body, _ := strings.Cut(rest2, " ")
		name := "sendEmail"
		if verb == "draft" {
			name = "draftEmail"
		}
		return model.ToolCall{Name: name, Arguments: []string{to, subject, body}}, true
	case "markread":
		return model.ToolCall{Name: "markEmailRead", Arguments: []string{rest}}, true
	case "rmemail":
		return model.ToolCall{Name: "deleteEmail", Arguments: []string{rest}}, true
	case "thread":
		return model.ToolCall{Name: "analyzeThread", Arguments: []string{rest}}, true
	default:
		return model.ToolCall{}, false
	}
}

func argsOrNone(rest string) []string {
	if rest == "" {
		return nil
	}
	return []string{rest}
}

// printResult writes one dispatched Result to the terminal.
func printResult(res tools.Result) {
	if !res.Success() {
		fmt.Fprintf(os.Stderr, "✗ %s\n", res.Error())
		return
	}

	fmt.Println(res.Message)
	switch data := res.Data.(type) {
	case string:
		if data != "" {
			fmt.Println(data)
		}
	case tools.CommandExecution:
		if data.Output != "" {
			fmt.Print(data.Output)
		}
		if data.ExitCode != 0 {
			fmt.Printf("(exit %d)\n", data.ExitCode)
		}
	case []gmail.Message:
		for _, m := range data {
			printMessageLine(m)
		}
	case *gmail.Message:
		printMessage(data)
	case *gmail.ThreadSummary:
		printThread(data)
	}
}

func printMessageLine(m gmail.Message) {
	marker := " "
	if m.Unread {
		marker = "*"
	}
	fmt.Printf("%s %s  %-30.30s  %s\n", marker, m.ID, m.From, m.Subject)
}

func printMessage(m *gmail.Message) {
	fmt.Printf("From: %s\n", m.From)
	if len(m.To) > 0 {
		fmt.Printf("To: %s\n", strings.Join(m.To, ", "))
	}
	fmt.Printf("Subject: %s\n", m.Subject)
	if m.Date != "" {
		fmt.Printf("Date: %s\n", m.Date)
	}
	fmt.Println()
	if m.Body != "" {
		fmt.Println(m.Body)
	} else if m.Snippet != "" {
		fmt.Println(m.Snippet)
	}
}

func printThread(t *gmail.ThreadSummary) {
	fmt.Printf("Subject: %s\n", t.Subject)
	fmt.Printf("Participants: %s\n", strings.Join(t.Participants, ", "))
	if t.FirstDate != "" {
		fmt.Printf("Span: %s — %s\n", t.FirstDate, t.LastDate)
	}
	for _, line := range t.Digest {
		fmt.Printf("  %s\n", line)
	}
}

func printSnapshot(snap agent.Snapshot) {
	fmt.Printf("Directory: %s\n", snap.CurrentDirectory)
	if len(snap.RecentFiles) > 0 {
		fmt.Printf("Recent files:\n")
		for _, f := range snap.RecentFiles {
			fmt.Printf("  %s\n", f)
		}
	}
	if len(snap.RecentCommands) > 0 {
		fmt.Printf("Recent commands:\n")
		for _, c := range snap.RecentCommands {
			fmt.Printf("  %s\n", c)
		}
	}
	fmt.Printf("History: %d messages\n", len(snap.History))
}

func printHelp(hasMailbox bool) {
	fmt.Print(`Commands:
  help                       show this help
  exit, quit                 leave the session
  clear                      reset conversation history
  context                    show workspace and history state
  cd <dir>                   change working directory
  ls [dir]                   list files
  read <file>                print a file
  write <file> <text>        write text to a file
  run <cmd>                  run a shell command
`)
	if hasMailbox {
		fmt.Print(`  emails [n]                 list recent inbox messages
  search <query>             search the mailbox
  email <id>                 show one message
  send <to> <subject> <body> send an email
  draft <to> <subject> <body> create a draft
  markread <id>              mark a message read
  rmemail <id>               move a message to trash
  thread <id>                summarize a thread
`)
	}
	fmt.Println("\nAnything else is sent to the assistant.")
}

// openMailbox creates the Gmail capability if a cached token exists.
// Failure is not fatal: the session runs without mailbox tools.
func openMailbox(ctx context.Context, credentialsPath string, logger *slog.Logger) *gmail.Client {
	if !gmail.HasToken() {
		return nil
	}
	client, err := gmail.NewClient(ctx, credentialsPath)
	if err != nil {
		logger.Warn("gmail unavailable", logging.Err(err))
		return nil
	}
	return client
}

func createProvider(providerName string, settings config.Settings) (llm.Provider, error) {
	if providerName == "" {
		return nil, fmt.Errorf("--provider is required for this command")
	}

	providerType, err := llm.ParseProviderType(providerName)
	if err != nil {
		return nil, err
	}

	apiKey, err := config.APIKeyFor(providerName)
	if err != nil {
		return nil, err
	}

	return providerType.
		Model(settings.LLM.Model).
		MaxTokens(settings.LLM.MaxTokens).
		Temperature(float32(settings.LLM.Temperature)).
		APIKey(apiKey)
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
