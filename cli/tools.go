package cli

import "fmt"

// toolHelp describes one tool the assistant can call.
type toolHelp struct {
	name        string
	description string
	mailbox     bool
}

var toolTable = []toolHelp{
	{"readFile", "read a file from the workspace", false},
	{"writeFile", "write text to a file, creating it if needed", false},
	{"editFile", "replace a substring in a file", false},
	{"listFiles", "list a directory", false},
	{"executeCommand", "run a shell command (deny-listed commands are blocked)", false},
	{"listEmails", "list recent inbox messages", true},
	{"searchEmails", "search the mailbox with a Gmail query", true},
	{"getEmail", "retrieve one message with its body", true},
	{"sendEmail", "send an email", true},
	{"draftEmail", "create a draft", true},
	{"markEmailRead", "mark a message read", true},
	{"deleteEmail", "move a message to trash", true},
	{"analyzeThread", "summarize a conversation thread", true},
}

// ListTools prints the tools the assistant can invoke.
func ListTools() {
	fmt.Println("Available tools:")
	fmt.Println()
	for _, t := range toolTable {
		suffix := ""
		if t.mailbox {
			suffix = " (requires Gmail auth)"
		}
		fmt.Printf("  %-15s %s%s\n", t.name, t.description, suffix)
	}
	fmt.Println()
}
