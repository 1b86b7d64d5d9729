package app

import (
	"errors"
	"testing"

	"github.com/githubayushraj/My-Lobby-Backend/internal/core"
	"github.com/githubayushraj/My-Lobby-Backend/internal/core/coretest"
	"github.com/githubayushraj/My-Lobby-Backend/internal/metrics"
)

func conn(s *core.Session) *coretest.Conn { return s.Signal().(*coretest.Conn) }

func TestDispatcher_BroadcastExcludesAndSwallowsFailures(t *testing.T) {
	m := metrics.New()
	d := NewDispatcher(DropPolicy{}, m)
	a := newSession("c1", "alice", "r1")
	b := newSession("c2", "bob", "r1")
	c := newSession("c3", "carol", "r1")
	conn(c).FailWith(errors.New("socket gone"))

	res := d.Broadcast([]*core.Session{a, b, c}, a, core.TypeNewParticipant, core.ParticipantRef{UserID: "dave"})
	if res.SendTo != 1 || len(res.Dropped) != 1 || res.Dropped[0] != c {
		t.Fatalf("result=%+v", res)
	}
	if got := conn(a).Envelopes(); len(got) != 0 {
		t.Fatalf("excluded session received %v", got)
	}
	if got := conn(b).UserIDs(core.TypeNewParticipant); len(got) != 1 || got[0] != "dave" {
		t.Fatalf("bob received %v", got)
	}
	if got := m.Get(metrics.DeliveryFailed); got != 1 {
		t.Fatalf("%s=%d, want 1", metrics.DeliveryFailed, got)
	}
}

func TestDispatcher_BackpressurePolicy(t *testing.T) {
	cases := []struct {
		name       string
		policy     Policy
		err        error
		wantClosed bool
	}{
		{"kick on backpressure", KickPolicy{}, core.ErrBackpressure, true},
		{"drop on backpressure", DropPolicy{}, core.ErrBackpressure, false},
		{"closed transport is not kicked", KickPolicy{}, core.ErrConnClosed, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := metrics.New()
			d := NewDispatcher(tc.policy, m)
			s := newSession("c1", "alice", "r1")
			conn(s).FailWith(tc.err)

			if d.Deliver(s, core.TypeOffer, core.DescriptionRelay{UserID: "bob"}) {
				t.Fatalf("failed delivery reported as sent")
			}
			if got := conn(s).Closed(); got != tc.wantClosed {
				t.Fatalf("closed=%v, want %v", got, tc.wantClosed)
			}
			wantKicked := uint64(0)
			if tc.wantClosed {
				wantKicked = 1
			}
			if got := m.Get(metrics.Kicked); got != wantKicked {
				t.Fatalf("%s=%d, want %d", metrics.Kicked, got, wantKicked)
			}
		})
	}
}

func TestPolicyByName(t *testing.T) {
	for name, want := range map[string]Policy{"": KickPolicy{}, "kick": KickPolicy{}, "drop": DropPolicy{}} {
		got, err := PolicyByName(name)
		if err != nil || got != want {
			t.Fatalf("PolicyByName(%q)=%v,%v", name, got, err)
		}
	}
	if _, err := PolicyByName("shove"); err == nil {
		t.Fatalf("unknown policy accepted")
	}
}
