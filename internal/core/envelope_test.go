package core

import (
	"errors"
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

func TestDecodeInbound_Join(t *testing.T) {
	typ, in, err := DecodeInbound([]byte(`{"type":"join","payload":{"roomId":"1234","userId":"alice"}}`))
	if err != nil {
		t.Fatalf("DecodeInbound: %v", err)
	}
	if typ != TypeJoin {
		t.Fatalf("type=%q, want %q", typ, TypeJoin)
	}
	join, ok := in.(*JoinRequest)
	if !ok {
		t.Fatalf("inbound=%T, want *JoinRequest", in)
	}
	if join.RoomID != "1234" || join.UserID != "alice" {
		t.Fatalf("join=%+v", join)
	}
}

func TestDecodeInbound_RelayedKeepsOpaqueBody(t *testing.T) {
	cases := []struct {
		name string
		data string
		typ  MessageType
		body string
	}{
		{"offer", `{"type":"offer","payload":{"remoteUserId":"bob","sdp":{"type":"offer","sdp":"v=0"}}}`, TypeOffer, `{"type":"offer","sdp":"v=0"}`},
		{"answer", `{"type":"answer","payload":{"remoteUserId":"bob","sdp":"v=0"}}`, TypeAnswer, `"v=0"`},
		{"candidate", `{"type":"ice_candidate","payload":{"remoteUserId":"bob","candidate":{"candidate":"candidate:1 1 udp 1 10.0.0.1 5000 typ host"}}}`, TypeICECandidate, `{"candidate":"candidate:1 1 udp 1 10.0.0.1 5000 typ host"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			typ, in, err := DecodeInbound([]byte(tc.data))
			if err != nil {
				t.Fatalf("DecodeInbound: %v", err)
			}
			if typ != tc.typ || in.Type() != tc.typ {
				t.Fatalf("type=%q/%q, want %q", typ, in.Type(), tc.typ)
			}
			rel, ok := in.(Relayed)
			if !ok {
				t.Fatalf("inbound=%T is not Relayed", in)
			}
			if rel.Target() != "bob" {
				t.Fatalf("target=%q, want bob", rel.Target())
			}
			out, err := json.Marshal(rel.Forward("alice"))
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			var got map[string]json.RawMessage
			if err := json.Unmarshal(out, &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if string(got["userId"]) != `"alice"` {
				t.Fatalf("userId=%s, want \"alice\"", got["userId"])
			}
			field := "sdp"
			if tc.typ == TypeICECandidate {
				field = "candidate"
			}
			if string(got[field]) != tc.body {
				t.Fatalf("%s=%s, want %s", field, got[field], tc.body)
			}
		})
	}
}

func TestDecodeInbound_Errors(t *testing.T) {
	cases := []struct {
		name string
		data string
		want error
	}{
		{"not json", `{{{`, ErrMalformedEnvelope},
		{"missing type", `{"payload":{}}`, ErrMalformedEnvelope},
		{"missing payload", `{"type":"join"}`, ErrMalformedEnvelope},
		{"null payload", `{"type":"join","payload":null}`, ErrMalformedEnvelope},
		{"unknown type", `{"type":"dance","payload":{}}`, ErrUnknownType},
		{"join without room", `{"type":"join","payload":{"userId":"a"}}`, ErrInvalidPayload},
		{"join without user", `{"type":"join","payload":{"roomId":"1"}}`, ErrInvalidPayload},
		{"join wrong field type", `{"type":"join","payload":{"roomId":1,"userId":"a"}}`, ErrInvalidPayload},
		{"payload not object", `{"type":"join","payload":"x"}`, ErrInvalidPayload},
		{"offer without target", `{"type":"offer","payload":{"sdp":"v=0"}}`, ErrInvalidPayload},
		{"offer without sdp", `{"type":"offer","payload":{"remoteUserId":"b"}}`, ErrInvalidPayload},
		{"candidate null", `{"type":"ice_candidate","payload":{"remoteUserId":"b","candidate":null}}`, ErrInvalidPayload},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, in, err := DecodeInbound([]byte(tc.data))
			if !errors.Is(err, tc.want) {
				t.Fatalf("err=%v, want %v", err, tc.want)
			}
			if in != nil {
				t.Fatalf("inbound=%v, want nil", in)
			}
		})
	}
}

func TestDecodeInbound_IDRules(t *testing.T) {
	wide := strings.Repeat("é", 64) // 64 runes, 128 bytes
	long := strings.Repeat("b", 65)
	edge := strings.Repeat("b", 64)

	rejected := []struct {
		name string
		data string
	}{
		{"user id over 64 bytes", `{"type":"join","payload":{"roomId":"1","userId":"` + wide + `"}}`},
		{"room id over 64 bytes", `{"type":"join","payload":{"roomId":"` + long + `","userId":"a"}}`},
		{"remote user id over 64 bytes", `{"type":"offer","payload":{"remoteUserId":"` + long + `","sdp":"v=0"}}`},
		{"empty remote user id", `{"type":"ice_candidate","payload":{"remoteUserId":"","candidate":{}}}`},
	}
	for _, tc := range rejected {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := DecodeInbound([]byte(tc.data)); !errors.Is(err, ErrInvalidPayload) {
				t.Fatalf("err=%v, want %v", err, ErrInvalidPayload)
			}
		})
	}

	// Ids are taken verbatim on both sides: no trimming.
	_, in, err := DecodeInbound([]byte(`{"type":"join","payload":{"roomId":" r1 ","userId":"` + edge + `"}}`))
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if join := in.(*JoinRequest); join.RoomID != " r1 " || join.UserID != edge {
		t.Fatalf("join=%+v", join)
	}
	_, in, err = DecodeInbound([]byte(`{"type":"answer","payload":{"remoteUserId":" bob","sdp":"v=0"}}`))
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if got := in.(*DescriptionRequest).RemoteUserID; got != " bob" {
		t.Fatalf("remoteUserId=%q, want %q", got, " bob")
	}
}
