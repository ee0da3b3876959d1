package workflow

import (
	"errors"
	"testing"
)

func TestNextValidTransitions(t *testing.T) {
	cases := []struct {
		from Status
		op   Op
		want Status
	}{
		{StatusDraft, OpSubmit, StatusSubmitted},
		{StatusSubmitted, OpApprove, StatusApproved},
		{StatusSubmitted, OpReject, StatusRejected},
		{StatusSubmitted, OpForward, StatusForwarded},
		{StatusForwarded, OpApprove, StatusApproved},
		{StatusForwarded, OpReject, StatusRejected},
		{StatusForwarded, OpForward, StatusForwarded},
		{StatusRejected, OpResubmit, StatusSubmitted},
	}

	for _, tc := range cases {
		got, err := Next(tc.from, tc.op)
		if err != nil {
			t.Errorf("Next(%s, %s) unexpected error: %v", tc.from, tc.op, err)
			continue
		}
		if got != tc.want {
			t.Errorf("Next(%s, %s) = %s, want %s", tc.from, tc.op, got, tc.want)
		}
	}
}

func TestNextInvalidTransitions(t *testing.T) {
	cases := []struct {
		from Status
		op   Op
	}{
		{StatusDraft, OpApprove},
		{StatusDraft, OpReject},
		{StatusDraft, OpForward},
		{StatusDraft, OpResubmit},
		{StatusSubmitted, OpSubmit},
		{StatusSubmitted, OpResubmit},
		{StatusApproved, OpApprove},
		{StatusApproved, OpReject},
		{StatusApproved, OpForward},
		{StatusApproved, OpResubmit},
		{StatusApproved, OpSubmit},
		{StatusRejected, OpApprove},
		{StatusRejected, OpReject},
		{StatusRejected, OpSubmit},
		{StatusForwarded, OpSubmit},
		{StatusForwarded, OpResubmit},
	}

	for _, tc := range cases {
		if _, err := Next(tc.from, tc.op); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("Next(%s, %s) = %v, want ErrInvalidTransition", tc.from, tc.op, err)
		}
	}
}

func TestPendingStates(t *testing.T) {
	// submitted and forwarded both await a reviewer decision
	if !StatusSubmitted.Pending() {
		t.Error("submitted should be pending")
	}
	if !StatusForwarded.Pending() {
		t.Error("forwarded should be pending")
	}
	for _, s := range []Status{StatusDraft, StatusApproved, StatusRejected} {
		if s.Pending() {
			t.Errorf("%s should not be pending", s)
		}
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusDraft, StatusSubmitted, StatusApproved, StatusRejected, StatusForwarded} {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if Status("archived").Valid() {
		t.Error("unknown status should be invalid")
	}
}

func TestConsistentAction(t *testing.T) {
	cases := []struct {
		status Status
		action Action
		want   bool
	}{
		{StatusSubmitted, ActionSubmitted, true},
		{StatusSubmitted, ActionResubmitted, true},
		{StatusSubmitted, ActionApproved, false},
		{StatusApproved, ActionApproved, true},
		{StatusApproved, ActionRejected, false},
		{StatusRejected, ActionRejected, true},
		{StatusRejected, ActionSubmitted, false},
		{StatusForwarded, ActionForwarded, true},
		{StatusForwarded, ActionApproved, false},
		{StatusDraft, ActionSubmitted, false},
	}
	for _, tc := range cases {
		if got := tc.status.ConsistentAction(tc.action); got != tc.want {
			t.Errorf("%s.ConsistentAction(%s) = %v, want %v", tc.status, tc.action, got, tc.want)
		}
	}
}

func TestOpActionOf(t *testing.T) {
	cases := map[Op]Action{
		OpSubmit:   ActionSubmitted,
		OpApprove:  ActionApproved,
		OpReject:   ActionRejected,
		OpForward:  ActionForwarded,
		OpResubmit: ActionResubmitted,
	}
	for op, want := range cases {
		if got := op.ActionOf(); got != want {
			t.Errorf("%s.ActionOf() = %s, want %s", op, got, want)
		}
	}
}
