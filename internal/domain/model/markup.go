package model

import (
	"strings"

	"telegram-broadcast-bot/internal/domain"
)

// buttonSeparator is the literal that divides a line into label and URL.
const buttonSeparator = " - "

// Button is a single inline URL button. Each button occupies its own
// keyboard row, in input order.
type Button struct {
	Label string
	URL   string
}

// Markup is an ordered inline-button layout attached to an outgoing message.
// An empty (non-nil) Markup means "no buttons" and is a valid layout.
type Markup []Button

// ParseMarkup converts an operator-supplied text block into a Markup.
//
// Each non-blank line must contain exactly one "label - url" pair with
// both halves non-empty. A line missing the separator, containing more
// than one, or with an empty half fails the whole input with
// ErrMalformedMarkup and no partial result. An empty layout must be
// requested explicitly through the sentinels "-" or "." (after
// trimming); blank input is malformed, so a non-text message in the
// markup step can never finalize a mailing by accident.
func ParseMarkup(raw string) (Markup, error) {
	if t := strings.TrimSpace(raw); t == "-" || t == "." {
		return Markup{}, nil
	}

	markup := Markup{}
	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.Split(line, buttonSeparator)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return nil, domain.ErrMalformedMarkup
		}
		markup = append(markup, Button{Label: parts[0], URL: parts[1]})
	}
	if len(markup) == 0 {
		return nil, domain.ErrMalformedMarkup
	}
	return markup, nil
}
