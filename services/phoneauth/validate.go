package phoneauth

import (
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

var (
	e164Pattern = regexp.MustCompile(`^\+[1-9]\d{7,14}$`)
	codePattern = regexp.MustCompile(`^\d{6}$`)
)

// NormalizePhoneNumber strips formatting and returns the number in E.164 form.
// The number must carry its country code.
func NormalizePhoneNumber(raw string) (string, bool) {
	compact := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')', '.':
			return -1
		}
		return r
	}, strings.TrimSpace(raw))

	if !e164Pattern.MatchString(compact) {
		return "", false
	}
	num, err := phonenumbers.Parse(compact, "")
	if err != nil || !phonenumbers.IsPossibleNumber(num) {
		return "", false
	}
	return phonenumbers.Format(num, phonenumbers.E164), true
}

// ValidCode reports whether code is exactly six ASCII digits.
func ValidCode(code string) bool {
	return codePattern.MatchString(code)
}
