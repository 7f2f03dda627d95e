package telephony

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockClient struct {
	mock.Mock
}

func (m *MockClient) Connect(ctx context.Context, cfg SIPConfig) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}

func (m *MockClient) Disconnect() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockClient) NewCall(ctx context.Context, destination string, record bool) (string, error) {
	args := m.Called(ctx, destination, record)
	return args.String(0), args.Error(1)
}

func (m *MockClient) Answer(callID string) error {
	args := m.Called(callID)
	return args.Error(0)
}

func (m *MockClient) Hangup(callID string) error {
	args := m.Called(callID)
	return args.Error(0)
}

var testSIP = SIPConfig{Username: "desk01", Password: "secret", DisplayName: "Desk", AutoRecord: true}

func connectedSession(t *testing.T, client *MockClient) *Session {
	t.Helper()
	client.On("Connect", mock.Anything, testSIP).Return(nil).Once()

	s, err := NewSession(testSIP, client)
	require.NoError(t, err)
	require.NoError(t, s.Connect(context.Background()))
	assert.Equal(t, RegistrationConnecting, s.Snapshot().Registration)
	require.NoError(t, s.HandleEvent(Event{Type: EventReady}))
	assert.Equal(t, RegistrationConnected, s.Snapshot().Registration)
	return s
}

func TestSIPConfigValidate(t *testing.T) {
	assert.NoError(t, testSIP.Validate())
	assert.ErrorIs(t, SIPConfig{Username: "desk01"}.Validate(), ErrMissingCredentials)
	assert.ErrorIs(t, SIPConfig{Password: "x"}.Validate(), ErrMissingCredentials)

	_, err := NewSession(SIPConfig{}, new(MockClient))
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestSession_OutboundCall(t *testing.T) {
	client := new(MockClient)
	s := connectedSession(t, client)

	client.On("NewCall", mock.Anything, "+12145550100", true).Return("call-1", nil).Once()
	client.On("Hangup", "call-1").Return(nil).Once()

	callID, err := s.Dial(context.Background(), "(214) 555-0100")
	require.NoError(t, err)
	assert.Equal(t, "call-1", callID)
	assert.Equal(t, CallCalling, s.Snapshot().Call)

	_, err = s.Dial(context.Background(), "2145550199")
	assert.ErrorIs(t, err, ErrInvalidTransition, "one call at a time")

	require.NoError(t, s.HandleEvent(Event{Type: EventAnswered, CallID: "call-1"}))
	assert.Equal(t, CallInCall, s.Snapshot().Call)

	require.NoError(t, s.Hangup())
	snap := s.Snapshot()
	assert.Equal(t, CallIdle, snap.Call)
	assert.Empty(t, snap.CallID)

	client.AssertExpectations(t)
}

func TestSession_InboundCall(t *testing.T) {
	client := new(MockClient)
	s := connectedSession(t, client)
	client.On("Answer", "call-9").Return(nil).Once()

	assert.ErrorIs(t, s.Answer(), ErrInvalidTransition)

	require.NoError(t, s.HandleEvent(Event{Type: EventIncoming, CallID: "call-9", Number: "+19725550111"}))
	assert.Equal(t, CallRinging, s.Snapshot().Call)

	require.NoError(t, s.Answer())
	assert.Equal(t, CallInCall, s.Snapshot().Call)

	require.NoError(t, s.HandleEvent(Event{Type: EventDestroyed, CallID: "call-9"}))
	assert.Equal(t, CallIdle, s.Snapshot().Call)
	client.AssertExpectations(t)
}

func TestSession_DialRequiresConnection(t *testing.T) {
	s, err := NewSession(testSIP, new(MockClient))
	require.NoError(t, err)

	_, err = s.Dial(context.Background(), "2145550100")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.ErrorIs(t, s.HandleEvent(Event{Type: EventReady}), ErrInvalidTransition)
	assert.ErrorIs(t, s.Hangup(), ErrInvalidTransition)
}

func TestSession_ConnectFailure(t *testing.T) {
	client := new(MockClient)
	client.On("Connect", mock.Anything, testSIP).Return(errors.New("403 forbidden")).Once()

	s, err := NewSession(testSIP, client)
	require.NoError(t, err)

	assert.Error(t, s.Connect(context.Background()))
	snap := s.Snapshot()
	assert.Equal(t, RegistrationError, snap.Registration)
	assert.Equal(t, "403 forbidden", snap.LastError)
}

func TestSession_ErrorEventDropsCall(t *testing.T) {
	client := new(MockClient)
	s := connectedSession(t, client)
	client.On("NewCall", mock.Anything, "+12145550100", true).Return("call-1", nil).Once()
	client.On("Disconnect").Return(nil).Once()

	_, err := s.Dial(context.Background(), "2145550100")
	require.NoError(t, err)

	require.NoError(t, s.HandleEvent(Event{Type: EventError, Err: errors.New("socket closed")}))
	snap := s.Snapshot()
	assert.Equal(t, RegistrationError, snap.Registration)
	assert.Equal(t, CallIdle, snap.Call)

	require.NoError(t, s.Disconnect())
	assert.Equal(t, RegistrationDisconnected, s.Snapshot().Registration)
	assert.ErrorIs(t, s.HandleEvent(Event{Type: "bogus"}), ErrInvalidTransition)
}
