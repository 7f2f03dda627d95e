package telephony

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"dispatch_crm_go/logger"

	"go.uber.org/zap"
)

var (
	ErrInvalidTransition  = errors.New("invalid telephony state transition")
	ErrMissingCredentials = errors.New("SIP username and password are required")
)

// SIPConfig holds the softphone credentials. It is passed to NewSession and
// never stored globally.
type SIPConfig struct {
	Username    string
	Password    string
	DisplayName string
	AutoRecord  bool
}

// Validate rejects incomplete credentials
func (c SIPConfig) Validate() error {
	if strings.TrimSpace(c.Username) == "" || strings.TrimSpace(c.Password) == "" {
		return ErrMissingCredentials
	}
	return nil
}

// RegistrationState is the softphone's connection to the provider
type RegistrationState string

const (
	RegistrationDisconnected RegistrationState = "disconnected"
	RegistrationConnecting   RegistrationState = "connecting"
	RegistrationConnected    RegistrationState = "connected"
	RegistrationError        RegistrationState = "error"
)

// CallState is the lifecycle of the single active call
type CallState string

const (
	CallIdle    CallState = "idle"
	CallRinging CallState = "ringing" // inbound, waiting for answer
	CallCalling CallState = "calling" // outbound, waiting for the far end
	CallInCall  CallState = "in_call"
)

// EventType is a notification raised by the vendor client
type EventType string

const (
	EventReady        EventType = "ready"
	EventError        EventType = "error"
	EventDisconnected EventType = "disconnected"
	EventIncoming     EventType = "incoming"
	EventAnswered     EventType = "answered"
	EventHangup       EventType = "hangup"
	EventDestroyed    EventType = "destroyed"
)

// Event carries a vendor notification into the session
type Event struct {
	Type   EventType
	CallID string
	Number string
	Err    error
}

// Client is the vendor real-time communications SDK. It owns signaling;
// the session only tracks the states it reports.
type Client interface {
	Connect(ctx context.Context, cfg SIPConfig) error
	Disconnect() error
	NewCall(ctx context.Context, destination string, record bool) (callID string, err error)
	Answer(callID string) error
	Hangup(callID string) error
}

// Snapshot is a point-in-time view of the session
type Snapshot struct {
	Registration RegistrationState `json:"registration"`
	Call         CallState         `json:"call"`
	CallID       string            `json:"callId,omitempty"`
	Number       string            `json:"number,omitempty"`
	LastError    string            `json:"lastError,omitempty"`
}

// Session tracks registration and call state on top of a vendor Client
type Session struct {
	mu     sync.Mutex
	cfg    SIPConfig
	client Client

	registration RegistrationState
	call         CallState
	callID       string
	number       string
	lastErr      error
}

// NewSession validates the credentials and returns a disconnected session
func NewSession(cfg SIPConfig, client Client) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if client == nil {
		return nil, errors.New("telephony client is required")
	}
	return &Session{
		cfg:          cfg,
		client:       client,
		registration: RegistrationDisconnected,
		call:         CallIdle,
	}, nil
}

// Snapshot returns the current states
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Registration: s.registration,
		Call:         s.call,
		CallID:       s.callID,
		Number:       s.number,
	}
	if s.lastErr != nil {
		snap.LastError = s.lastErr.Error()
	}
	return snap
}

// Connect starts registration. The session stays Connecting until the client reports ready.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.registration == RegistrationConnecting || s.registration == RegistrationConnected {
		return fmt.Errorf("%w: connect while %s", ErrInvalidTransition, s.registration)
	}

	s.registration = RegistrationConnecting
	s.lastErr = nil
	if err := s.client.Connect(ctx, s.cfg); err != nil {
		s.registration = RegistrationError
		s.lastErr = err
		logger.L().Warn("SIP registration failed", zap.String("username", s.cfg.Username), zap.Error(err))
		return err
	}
	return nil
}

// Disconnect tears down registration and drops any active call
func (s *Session) Disconnect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.registration == RegistrationDisconnected {
		return nil
	}
	err := s.client.Disconnect()
	s.registration = RegistrationDisconnected
	s.resetCall()
	return err
}

// Dial places an outbound call. Requires a connected session with no active call.
func (s *Session) Dial(ctx context.Context, number string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.registration != RegistrationConnected {
		return "", fmt.Errorf("%w: dial while %s", ErrInvalidTransition, s.registration)
	}
	if s.call != CallIdle {
		return "", fmt.Errorf("%w: dial during %s call", ErrInvalidTransition, s.call)
	}

	destination := E164(number)
	callID, err := s.client.NewCall(ctx, destination, s.cfg.AutoRecord)
	if err != nil {
		s.lastErr = err
		return "", err
	}

	s.call = CallCalling
	s.callID = callID
	s.number = destination
	return callID, nil
}

// Answer accepts the ringing inbound call
func (s *Session) Answer() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.call != CallRinging {
		return fmt.Errorf("%w: answer during %s", ErrInvalidTransition, s.call)
	}
	if err := s.client.Answer(s.callID); err != nil {
		s.lastErr = err
		return err
	}
	s.call = CallInCall
	return nil
}

// Hangup ends or rejects the active call
func (s *Session) Hangup() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.call == CallIdle {
		return fmt.Errorf("%w: hangup with no call", ErrInvalidTransition)
	}
	err := s.client.Hangup(s.callID)
	s.resetCall()
	return err
}

// HandleEvent applies a vendor notification to the session state
func (s *Session) HandleEvent(ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev.Type {
	case EventReady:
		if s.registration != RegistrationConnecting {
			return fmt.Errorf("%w: ready while %s", ErrInvalidTransition, s.registration)
		}
		s.registration = RegistrationConnected
	case EventError:
		s.registration = RegistrationError
		s.lastErr = ev.Err
		s.resetCall()
	case EventDisconnected:
		s.registration = RegistrationDisconnected
		s.resetCall()
	case EventIncoming:
		if s.registration != RegistrationConnected || s.call != CallIdle {
			return fmt.Errorf("%w: incoming call during %s", ErrInvalidTransition, s.call)
		}
		s.call = CallRinging
		s.callID = ev.CallID
		s.number = ev.Number
	case EventAnswered:
		if s.call != CallCalling && s.call != CallRinging {
			return fmt.Errorf("%w: answered during %s", ErrInvalidTransition, s.call)
		}
		s.call = CallInCall
	case EventHangup, EventDestroyed:
		// The far end may hang up at any point; an idle session ignores it
		s.resetCall()
	default:
		return fmt.Errorf("%w: unknown event %q", ErrInvalidTransition, ev.Type)
	}
	return nil
}

func (s *Session) resetCall() {
	s.call = CallIdle
	s.callID = ""
	s.number = ""
}
