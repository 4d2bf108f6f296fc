package tracking

import (
	"errors"
	"regexp"
	"strings"

	"github.com/Vodeneev/betlinkbot/internal/pkg/models"
)

const (
	// BetHost serves shared bet slips.
	BetHost = "superbet.bet.br"
	// BetPathPrefix precedes the slip code in a shared bet slip URL.
	BetPathPrefix = "/bilhete-compartilhado/"
)

var (
	bareCodeRe = regexp.MustCompile(`^[A-Za-z0-9-]{4,40}$`)
	betPathRe  = regexp.MustCompile(`^/bilhete-compartilhado/([A-Za-z0-9-]+)$`)

	errNotAbsolute = errors.New("not an absolute url")
)

// BetURL is the canonical shared bet slip URL for code.
func BetURL(code string) string {
	return "https://" + BetHost + BetPathPrefix + code
}

// ParseBet accepts either a bare slip code (891S-YJLHXM) or a shared bet slip
// URL and resolves both to the canonical URL.
func ParseBet(text string) (models.BetReference, error) {
	text = strings.TrimSpace(text)

	if IsBareCode(text) {
		return models.BetReference{Code: text, ResolvedURL: BetURL(text)}, nil
	}

	u, err := parseAbsoluteURL(text)
	if err != nil {
		return models.BetReference{}, &ParseError{Kind: KindInvalidBetInput, Err: err}
	}
	if !strings.Contains(strings.ToLower(u.Hostname()), BetHost) {
		return models.BetReference{}, newError(KindInvalidBetInput)
	}
	// Escapes are not decoded: %38 is not a code character.
	m := betPathRe.FindStringSubmatch(u.EscapedPath())
	if m == nil {
		return models.BetReference{}, newError(KindInvalidBetInput)
	}

	code := m[1]
	return models.BetReference{Code: code, ResolvedURL: BetURL(code)}, nil
}

// IsBareCode reports whether text is a slip code on its own.
func IsBareCode(text string) bool {
	return bareCodeRe.MatchString(strings.TrimSpace(text))
}

// LooksLikeBet is the loose shape check used outside of the guided flow.
func LooksLikeBet(text string) bool {
	return strings.Contains(strings.ToLower(text), BetHost+BetPathPrefix) || IsBareCode(text)
}
