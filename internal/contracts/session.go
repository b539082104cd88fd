package contracts

import (
	"fmt"
	"math/big"

	"github.com/Freeeeeet/tutorchain/internal/apperr"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

const (
	MethodCreateSession   = "createSession"
	MethodCompleteSession = "completeSession"
	MethodSessionCount    = "sessionCount"
	MethodSessions        = "sessions"

	EventSessionCreated   = "SessionCreated"
	EventSessionCompleted = "SessionCompleted"
)

var sessionBinding = mustLoad("session", "session.json", true)

// SessionBinding контракт сессий репетиторства
type SessionBinding struct {
	*Binding
}

func Session() SessionBinding {
	return SessionBinding{Binding: sessionBinding}
}

// SessionRecord строка из sessions(index)
type SessionRecord struct {
	Tutor     common.Address
	Learner   common.Address
	Subject   string
	Payment   *big.Int
	Completed bool
}

// SessionCreatedEvent событие SessionCreated
type SessionCreatedEvent struct {
	SessionID *big.Int
	Tutor     common.Address
	Learner   common.Address
	Subject   string
	Payment   *big.Int
}

func (b SessionBinding) PackCreateSession(tutor common.Address, subject string, payment *big.Int) ([]byte, error) {
	return b.Pack(MethodCreateSession, tutor, subject, payment)
}

func (b SessionBinding) PackCompleteSession(sessionID *big.Int) ([]byte, error) {
	return b.Pack(MethodCompleteSession, sessionID)
}

func (b SessionBinding) PackSessionCount() ([]byte, error) {
	return b.Pack(MethodSessionCount)
}

func (b SessionBinding) PackSessions(index *big.Int) ([]byte, error) {
	return b.Pack(MethodSessions, index)
}

func (b SessionBinding) UnpackSessionCount(data []byte) (*big.Int, error) {
	values, err := b.Unpack(MethodSessionCount, data)
	if err != nil {
		return nil, err
	}
	return asBigInt(b.Name+"."+MethodSessionCount, values[0])
}

func (b SessionBinding) UnpackSession(data []byte) (SessionRecord, error) {
	op := b.Name + "." + MethodSessions

	values, err := b.Unpack(MethodSessions, data)
	if err != nil {
		return SessionRecord{}, err
	}

	tutor, ok1 := values[0].(common.Address)
	learner, ok2 := values[1].(common.Address)
	subject, ok3 := values[2].(string)
	payment, ok4 := values[3].(*big.Int)
	completed, ok5 := values[4].(bool)
	if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 {
		return SessionRecord{}, apperr.New(apperr.KindEncoding, op, fmt.Errorf("unexpected output types %T", values))
	}

	return SessionRecord{
		Tutor:     tutor,
		Learner:   learner,
		Subject:   subject,
		Payment:   payment,
		Completed: completed,
	}, nil
}

// DecodeSessionCreated разбирает лог SessionCreated из квитанции
func (b SessionBinding) DecodeSessionCreated(log types.Log) (SessionCreatedEvent, error) {
	op := b.Name + "." + EventSessionCreated

	event, ok := b.abi.Events[EventSessionCreated]
	if !ok {
		return SessionCreatedEvent{}, apperr.New(apperr.KindEncoding, op, fmt.Errorf("event not found in binding"))
	}
	if len(log.Topics) == 0 || log.Topics[0] != event.ID {
		return SessionCreatedEvent{}, apperr.New(apperr.KindNotFound, op, fmt.Errorf("log is not %s", EventSessionCreated))
	}

	fields := make(map[string]interface{})
	if err := b.abi.UnpackIntoMap(fields, EventSessionCreated, log.Data); err != nil {
		return SessionCreatedEvent{}, apperr.New(apperr.KindEncoding, op, err)
	}

	ev := SessionCreatedEvent{}
	ev.SessionID, _ = fields["sessionId"].(*big.Int)
	ev.Tutor, _ = fields["tutor"].(common.Address)
	ev.Learner, _ = fields["learner"].(common.Address)
	ev.Subject, _ = fields["subject"].(string)
	ev.Payment, _ = fields["payment"].(*big.Int)
	if ev.SessionID == nil {
		return SessionCreatedEvent{}, apperr.New(apperr.KindEncoding, op, fmt.Errorf("missing sessionId"))
	}
	return ev, nil
}

func asBigInt(op string, v interface{}) (*big.Int, error) {
	n, ok := v.(*big.Int)
	if !ok {
		return nil, apperr.New(apperr.KindEncoding, op, fmt.Errorf("expected uint256, got %T", v))
	}
	return n, nil
}
