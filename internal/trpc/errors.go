package trpc

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Reason classifies a failed call into the buckets the engine branches on.
type Reason int

const (
	ReasonUnknown Reason = iota
	// ReasonTransport: the transport gave up after exhausting retries.
	ReasonTransport
	// ReasonInsufficient: the server rejected a purchase for lack of balance.
	ReasonInsufficient
	// ReasonLevelGated: the action requires a higher prestige level.
	ReasonLevelGated
	// ReasonNoState: a state fetch produced no usable snapshot.
	ReasonNoState
)

func (r Reason) String() string {
	switch r {
	case ReasonTransport:
		return "transport"
	case ReasonInsufficient:
		return "insufficient-balance"
	case ReasonLevelGated:
		return "level-gated"
	case ReasonNoState:
		return "no-state"
	default:
		return "unknown"
	}
}

// CallError is the error type every client method returns on failure.
type CallError struct {
	Op     string
	Msg    string
	Reason Reason
	cause  error
}

func (e *CallError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Msg)
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.cause)
	}
	return e.Op + ": " + e.Reason.String()
}

func (e *CallError) Unwrap() error { return e.cause }

// ReasonOf extracts the classification from any error chain.
func ReasonOf(err error) Reason {
	var ce *CallError
	if errors.As(err, &ce) {
		return ce.Reason
	}
	return ReasonUnknown
}

func IsInsufficient(err error) bool { return ReasonOf(err) == ReasonInsufficient }
func IsLevelGated(err error) bool   { return ReasonOf(err) == ReasonLevelGated }
func IsNoState(err error) bool      { return ReasonOf(err) == ReasonNoState }

var levelGatedRe = regexp.MustCompile(`(?i)requires\s+level`)

// classifyMessage buckets a server error message by its known phrases.
func classifyMessage(msg string) Reason {
	if levelGatedRe.MatchString(msg) {
		return ReasonLevelGated
	}
	low := strings.ToLower(msg)
	if strings.Contains(low, "insufficient") || strings.Contains(low, "not enough") || strings.Contains(low, "balance") {
		return ReasonInsufficient
	}
	return ReasonUnknown
}

var (
	apHintRe   = regexp.MustCompile(`(?i)\bapples?\b|\bap\b`)
	coinHintRe = regexp.MustCompile(`(?i)\bcoins?\b`)
)

// CurrencyHint guesses which currency an error message complains about, for
// log lines only. Returns "ap", "coins" or "".
func CurrencyHint(msg string) string {
	switch {
	case apHintRe.MatchString(msg):
		return "ap"
	case coinHintRe.MatchString(msg):
		return "coins"
	default:
		return ""
	}
}
