package database

import "testing"

func TestParseApplicationStatus(t *testing.T) {
	cases := []struct {
		in   string
		want ApplicationStatus
		ok   bool
	}{
		{"pending", StatusPending, true},
		{"accepted", StatusAccepted, true},
		{"rejected", StatusRejected, true},
		{"interview_requested", StatusInterviewRequested, true},
		{"지원 완료", StatusPending, true},
		{"합격", StatusAccepted, true},
		{"불합격", StatusRejected, true},
		{"면접 요망", StatusInterviewRequested, true},
		{"보류", "", false},
		{"", "", false},
		{"ACCEPTED", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseApplicationStatus(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Errorf("ParseApplicationStatus(%q) = (%q, %v), want (%q, %v)",
				tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestStatusLabelRoundTrip(t *testing.T) {
	for _, status := range []ApplicationStatus{
		StatusPending, StatusAccepted, StatusRejected, StatusInterviewRequested,
	} {
		if !status.Valid() {
			t.Errorf("%q should be valid", status)
		}
		parsed, ok := ParseApplicationStatus(status.Label())
		if !ok || parsed != status {
			t.Errorf("label %q did not parse back to %q", status.Label(), status)
		}
	}
}
