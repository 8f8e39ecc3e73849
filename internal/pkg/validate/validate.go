package validate

import (
	"strings"
	"unicode/utf8"
)

const (
	MinUsernameLen = 3
	MaxUsernameLen = 32
	MinPasswordLen = 8
	MaxPostLen     = 2000
	MaxCommentLen  = 500
	MaxBioLen      = 500
)

func Required(value string) bool {
	return strings.TrimSpace(value) != ""
}

func Username(value string) bool {
	trimmed := strings.TrimSpace(value)
	n := utf8.RuneCountInString(trimmed)
	if n < MinUsernameLen || n > MaxUsernameLen {
		return false
	}
	for _, r := range trimmed {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_' || r == '.' || r == '-':
		default:
			return false
		}
	}
	return true
}

// Email checks the minimal local@domain shape. Full RFC validation is left
// to the mail provider during verification.
func Email(value string) bool {
	trimmed := strings.TrimSpace(value)
	at := strings.IndexByte(trimmed, '@')
	if at <= 0 || at == len(trimmed)-1 {
		return false
	}
	domain := trimmed[at+1:]
	if strings.ContainsAny(trimmed, " \t\n") {
		return false
	}
	return strings.Contains(domain, ".") && !strings.HasPrefix(domain, ".") && !strings.HasSuffix(domain, ".")
}

func Password(value string) bool {
	return len(value) >= MinPasswordLen
}

func PostContent(value string) bool {
	trimmed := strings.TrimSpace(value)
	return trimmed != "" && utf8.RuneCountInString(trimmed) <= MaxPostLen
}

func CommentContent(value string) bool {
	trimmed := strings.TrimSpace(value)
	return trimmed != "" && utf8.RuneCountInString(trimmed) <= MaxCommentLen
}
