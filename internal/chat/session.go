package chat

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/ingenieria-ia/booking-chat-backend/internal/availability"
)

// Step identifies where a conversation stands in the booking flow.
type Step string

const (
	StepInitial Step = "INITIAL"
	StepName    Step = "COLLECTING_NAME"
	StepEmail   Step = "COLLECTING_EMAIL"
	StepPhone   Step = "COLLECTING_PHONE"
	StepService Step = "SELECTING_SERVICE"
	StepDate    Step = "SELECTING_DATE"
	StepTime    Step = "SELECTING_TIME"
	StepConfirm Step = "CONFIRMATION"
)

// Session is the whole conversation state. The server keeps none of it: the
// session rides inside the bot's reply as a signed fragment and comes back
// with the client's next request.
type Session struct {
	Step          Step   `json:"step"`
	Name          string `json:"name,omitempty"`
	Email         string `json:"email,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Service       string `json:"service,omitempty"`
	Date          string `json:"date,omitempty"` // "YYYY-MM-DD"
	FormattedDate string `json:"formatted_date,omitempty"`
	Time          string `json:"time,omitempty"` // "HH:MM"

	// Slots offered in the turn that asked for a selection, so the numbered
	// menu means the same thing when the answer arrives.
	OfferedDates []availability.Slot `json:"offered_dates,omitempty"`
	OfferedTimes []string            `json:"offered_times,omitempty"`
}

const (
	stateMarker = "__STATE__"
	endMarker   = "__END__"
)

// Codec embeds sessions into bot replies and recovers them from conversation
// history. Payloads are HMAC signed: a fragment that was edited client side
// decodes to nothing instead of to attacker-chosen state.
type Codec struct {
	secret []byte
}

func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

// Encode appends the signed session fragment to a reply.
func (c *Codec) Encode(reply string, s *Session) (string, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	payload := base64.RawURLEncoding.EncodeToString(raw)
	return reply + stateMarker + payload + "." + c.sign(payload) + endMarker, nil
}

// Decode extracts the session from a bot message. It returns false when the
// message carries no fragment, the fragment is malformed, or the signature
// does not verify. It never panics on arbitrary input.
func (c *Codec) Decode(message string) (*Session, bool) {
	start := strings.LastIndex(message, stateMarker)
	if start < 0 {
		return nil, false
	}
	rest := message[start+len(stateMarker):]
	end := strings.Index(rest, endMarker)
	if end < 0 {
		return nil, false
	}

	payload, sig, found := strings.Cut(rest[:end], ".")
	if !found {
		return nil, false
	}
	if !hmac.Equal([]byte(c.sign(payload)), []byte(sig)) {
		return nil, false
	}

	raw, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return nil, false
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, false
	}
	return &s, true
}

// StripFragment removes every state fragment from a message, leaving the
// human-readable text. Used before showing history to the language model.
func StripFragment(message string) string {
	for {
		start := strings.Index(message, stateMarker)
		if start < 0 {
			return strings.TrimSpace(message)
		}
		rest := message[start+len(stateMarker):]
		end := strings.Index(rest, endMarker)
		if end < 0 {
			return strings.TrimSpace(message[:start])
		}
		message = message[:start] + rest[end+len(endMarker):]
	}
}

func (c *Codec) sign(payload string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
