package app

import "strings"

// Command is the action a professional's reply asks for.
type Command int

const (
	CommandNone Command = iota
	CommandAccept
	CommandComplete
)

func (c Command) String() string {
	switch c {
	case CommandAccept:
		return "accept"
	case CommandComplete:
		return "complete"
	default:
		return "none"
	}
}

const (
	acceptToken   = "ACCEPT"
	completeToken = "COMPLETE"
)

var (
	acceptPhrases   = []string{"מקבל", "מסכים"}
	completePhrases = []string{"הסתיים", "סיימתי"}
)

// MatchCommand applies the keyword rules in precedence order: accept, then complete.
// The English tokens match case-insensitively as substrings; the Hebrew phrases match as substrings.
// A body containing both ACCEPT and COMPLETE is an accept.
func MatchCommand(body string) Command {
	upper := strings.ToUpper(body)
	if strings.Contains(upper, acceptToken) || containsAny(body, acceptPhrases) {
		return CommandAccept
	}
	if strings.Contains(upper, completeToken) || containsAny(body, completePhrases) {
		return CommandComplete
	}
	return CommandNone
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
