// Safety gate - pre-execution deny-list check for shell commands.
//
// Information Hiding:
// - Deny-list contents hidden behind the predicate

package tools

import "strings"

// denyList holds destructive command fragments. Matching is a
// case-insensitive substring check, not a shell parse: this is a coarse
// pre-filter, not a sandbox, and false negatives are expected.
var denyList = []string{
	"rm -rf /",
	"rm -fr /",
	"mkfs",
	"dd if=",
	"> /dev/sd",
	"format c:",
	"shutdown",
	"reboot",
	"halt",
	"poweroff",
	"init 0",
	"init 6",
	":(){ :|:& };:",
}

// IsSafe reports whether a shell command passes the deny-list check.
// Pure: no side effects, no filesystem or environment access.
func IsSafe(command string) bool {
	lower := strings.ToLower(command)
	for _, pattern := range denyList {
		if strings.Contains(lower, pattern) {
			return false
		}
	}
	return true
}
