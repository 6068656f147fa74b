package sandbox

import (
	"strings"

	"github.com/computerscienceiscool/llm-fsgate/pkg/config"
	"github.com/computerscienceiscool/llm-fsgate/pkg/failure"
)

// CommandPolicy refuses command strings that mention a denylisted program.
//
// This is a denylist: anything not named is allowed. Tokens are split on
// whitespace only, shell operators get no special treatment, and a blocked
// name anywhere as a standalone word rejects the whole string.
type CommandPolicy struct {
	policy *config.Policy
}

func NewCommandPolicy(p *config.Policy) *CommandPolicy {
	return &CommandPolicy{policy: p}
}

// MatchedToken returns the first denylisted token in command, if any.
func (c *CommandPolicy) MatchedToken(command string) (string, bool) {
	for _, token := range strings.Fields(command) {
		if c.policy.CommandBlocked(strings.ToLower(token)) {
			return token, true
		}
	}
	return "", false
}

// Check validates command before it reaches the process table.
func (c *CommandPolicy) Check(command string) error {
	command = strings.TrimSpace(command)
	if command == "" {
		return failure.New(failure.CommandBlocked, "empty command")
	}
	if len(command) > config.MaxCommandLength {
		return failure.New(failure.CommandBlocked, "command too long (max %d characters, got %d)",
			config.MaxCommandLength, len(command))
	}
	if strings.ContainsRune(command, 0) {
		return failure.New(failure.CommandBlocked, "command contains a NUL byte")
	}
	if token, ok := c.MatchedToken(command); ok {
		return failure.New(failure.CommandBlocked, "command not allowed for security reasons: %s", token)
	}
	return nil
}
