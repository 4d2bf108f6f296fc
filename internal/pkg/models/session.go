package models

import (
	"encoding/json"
	"fmt"
)

// State is the step a user is at in the link-building conversation.
type State int

const (
	StateIdle State = iota
	StateAwaitingAffiliateLink
	StateAwaitingBetReference
)

// Persisted names, the "step" values of the legacy db.json layout.
const (
	stateNameIdle                  = "idle"
	stateNameAwaitingAffiliateLink = "waiting_affiliate_link"
	stateNameAwaitingBetReference  = "waiting_bet_link"
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return stateNameIdle
	case StateAwaitingAffiliateLink:
		return stateNameAwaitingAffiliateLink
	case StateAwaitingBetReference:
		return stateNameAwaitingBetReference
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ParseState maps a persisted name back to a State. Unknown names are
// reported with ok=false and StateIdle.
func ParseState(name string) (State, bool) {
	switch name {
	case stateNameIdle, "":
		return StateIdle, true
	case stateNameAwaitingAffiliateLink:
		return StateAwaitingAffiliateLink, true
	case stateNameAwaitingBetReference:
		return StateAwaitingBetReference, true
	default:
		return StateIdle, false
	}
}

func (s State) MarshalText() ([]byte, error) {
	switch s {
	case StateIdle, StateAwaitingAffiliateLink, StateAwaitingBetReference:
		return []byte(s.String()), nil
	default:
		return nil, fmt.Errorf("unknown state %d", int(s))
	}
}

// UnmarshalText decodes unknown names as StateIdle rather than failing, so a
// hand-edited or older record never blocks a user.
func (s *State) UnmarshalText(text []byte) error {
	*s, _ = ParseState(string(text))
	return nil
}

// Session is the per-user conversation record.
type Session struct {
	State     State            `json:"step"`
	Affiliate *AffiliateParams `json:"affiliate"`
}

// NewSession returns the default session: idle, no affiliate link.
func NewSession() Session {
	return Session{State: StateIdle}
}

// HasAffiliate reports whether an affiliate link has been captured.
func (s Session) HasAffiliate() bool {
	return s.Affiliate != nil
}

// Consistent reports whether the session satisfies the invariant that a user
// waiting for a bet reference already has affiliate data.
func (s Session) Consistent() bool {
	return s.State != StateAwaitingBetReference || s.Affiliate != nil
}

// Clone returns a deep copy so stores never share the affiliate pointer with
// callers.
func (s Session) Clone() Session {
	out := Session{State: s.State}
	if s.Affiliate != nil {
		a := *s.Affiliate
		out.Affiliate = &a
	}
	return out
}

// EncodeSession and DecodeSession are the JSON form used by the file and
// redis stores.
func EncodeSession(s Session) ([]byte, error) {
	return json.Marshal(s)
}

func DecodeSession(data []byte) (Session, error) {
	s := NewSession()
	if err := json.Unmarshal(data, &s); err != nil {
		return NewSession(), fmt.Errorf("failed to decode session: %w", err)
	}
	return s, nil
}
