package core

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/githubayushraj/My-Lobby-Backend/internal/domain"
)

// MessageType is the "type" tag of an envelope.
type MessageType string

const (
	TypeJoin         MessageType = "join"
	TypeOffer        MessageType = "offer"
	TypeAnswer       MessageType = "answer"
	TypeICECandidate MessageType = "ice_candidate"

	TypeExistingParticipants MessageType = "existing_participants"
	TypeNewParticipant       MessageType = "new_participant"
	TypeParticipantLeft      MessageType = "participant_left"
	TypeEvicted              MessageType = "evicted"
)

var (
	ErrMalformedEnvelope = errors.New("malformed envelope")
	ErrUnknownType       = errors.New("unknown message type")
	ErrInvalidPayload    = errors.New("invalid payload")
)

// Envelope is the wire unit in both directions.
type Envelope struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Inbound is a client message whose payload passed validation.
type Inbound interface {
	Type() MessageType
}

// Relayed is an inbound message addressed to one peer in the sender's room.
type Relayed interface {
	Inbound
	Target() domain.UserID
	// Forward builds the payload the target receives.
	Forward(from domain.UserID) any
}

type JoinRequest struct {
	RoomID string `json:"roomId" validate:"required,roomid"`
	UserID string `json:"userId" validate:"required,userid"`
}

func (*JoinRequest) Type() MessageType { return TypeJoin }

// DescriptionRequest carries an offer or an answer. The sdp is opaque.
type DescriptionRequest struct {
	kind         MessageType
	RemoteUserID string          `json:"remoteUserId" validate:"required,userid"`
	SDP          json.RawMessage `json:"sdp" validate:"present"`
}

func (r *DescriptionRequest) Type() MessageType     { return r.kind }
func (r *DescriptionRequest) Target() domain.UserID { return domain.UserID(r.RemoteUserID) }
func (r *DescriptionRequest) Forward(from domain.UserID) any {
	return DescriptionRelay{UserID: from, SDP: r.SDP}
}

type CandidateRequest struct {
	RemoteUserID string          `json:"remoteUserId" validate:"required,userid"`
	Candidate    json.RawMessage `json:"candidate" validate:"present"`
}

func (*CandidateRequest) Type() MessageType       { return TypeICECandidate }
func (r *CandidateRequest) Target() domain.UserID { return domain.UserID(r.RemoteUserID) }
func (r *CandidateRequest) Forward(from domain.UserID) any {
	return CandidateRelay{UserID: from, Candidate: r.Candidate}
}

// Outbound payloads.

type ParticipantList struct {
	UserIDs []domain.UserID `json:"userIds"`
}

type ParticipantRef struct {
	UserID domain.UserID `json:"userId"`
}

type DescriptionRelay struct {
	UserID domain.UserID   `json:"userId"`
	SDP    json.RawMessage `json:"sdp"`
}

type CandidateRelay struct {
	UserID    domain.UserID   `json:"userId"`
	Candidate json.RawMessage `json:"candidate"`
}

type Eviction struct {
	Reason string `json:"reason"`
}

var inboundTypes = map[MessageType]func() Inbound{
	TypeJoin:         func() Inbound { return &JoinRequest{} },
	TypeOffer:        func() Inbound { return &DescriptionRequest{kind: TypeOffer} },
	TypeAnswer:       func() Inbound { return &DescriptionRequest{kind: TypeAnswer} },
	TypeICECandidate: func() Inbound { return &CandidateRequest{} },
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// present: an opaque JSON value that is neither missing nor null.
	rules := map[string]validator.Func{
		"present": func(fl validator.FieldLevel) bool {
			return !isAbsent(fl.Field().Bytes())
		},
		// ids follow the domain parsers so decode and join agree.
		"userid": func(fl validator.FieldLevel) bool {
			_, err := domain.ParseUserID(fl.Field().String())
			return err == nil
		},
		"roomid": func(fl validator.FieldLevel) bool {
			_, err := domain.ParseRoomID(fl.Field().String())
			return err == nil
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}
	return v
}

func isAbsent(raw []byte) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

// DecodeInbound parses and validates a client frame. The returned type is
// set whenever the envelope itself could be read, even on error.
func DecodeInbound(data []byte) (MessageType, Inbound, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	if env.Type == "" {
		return "", nil, fmt.Errorf("%w: missing type", ErrMalformedEnvelope)
	}
	if isAbsent(env.Payload) {
		return env.Type, nil, fmt.Errorf("%w: missing payload", ErrMalformedEnvelope)
	}
	newInbound, ok := inboundTypes[env.Type]
	if !ok {
		return env.Type, nil, ErrUnknownType
	}
	in := newInbound()
	if err := json.Unmarshal(env.Payload, in); err != nil {
		return env.Type, nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if err := validate.Struct(in); err != nil {
		return env.Type, nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return env.Type, in, nil
}

// EncodeEnvelope serializes an outbound message.
func EncodeEnvelope(t MessageType, payload any) (Frame, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: t, Payload: body})
}
