package canteen

import "testing"

func TestCanTransition_Table(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusPending, StatusAccepted, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusReady, false},
		{StatusPending, StatusCompleted, false},
		{StatusAccepted, StatusReady, true},
		{StatusAccepted, StatusCancelled, true},
		{StatusAccepted, StatusCompleted, false},
		{StatusAccepted, StatusPending, false},
		{StatusReady, StatusCompleted, true},
		{StatusReady, StatusCancelled, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
	}
	for _, c := range cases {
		if got := CanTransition(c.from, c.to); got != c.ok {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", c.from, c.to, got, c.ok)
		}
	}
}

func TestStatus_Terminal(t *testing.T) {
	for status, terminal := range map[Status]bool{
		StatusPending:   false,
		StatusAccepted:  false,
		StatusReady:     false,
		StatusCompleted: true,
		StatusCancelled: true,
	} {
		if got := status.Terminal(); got != terminal {
			t.Errorf("%s.Terminal() = %v, want %v", status, got, terminal)
		}
	}
}

func TestStatus_Cancellable(t *testing.T) {
	// Only pending and accepted orders may be cancelled, so the refund edge
	// can only be taken once per order.
	for status, cancellable := range map[Status]bool{
		StatusPending:   true,
		StatusAccepted:  true,
		StatusReady:     false,
		StatusCompleted: false,
		StatusCancelled: false,
	} {
		if got := status.Cancellable(); got != cancellable {
			t.Errorf("%s.Cancellable() = %v, want %v", status, got, cancellable)
		}
	}
}

func TestParseStatus(t *testing.T) {
	if _, ok := ParseStatus("accepted"); !ok {
		t.Error("accepted should parse")
	}
	if _, ok := ParseStatus("teleported"); ok {
		t.Error("unknown status should not parse")
	}
	if _, ok := ParseStatus(""); ok {
		t.Error("empty status should not parse")
	}
}
