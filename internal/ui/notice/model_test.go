package notice

import (
	"testing"
	"time"
)

func TestShowErrorSchedulesLongerDismissal(t *testing.T) {
	if ErrorDuration <= SuccessDuration {
		t.Errorf("error duration %v should exceed success duration %v",
			ErrorDuration, SuccessDuration)
	}
	if ErrorDuration != 3*time.Second {
		t.Errorf("error duration = %v", ErrorDuration)
	}
	if SuccessDuration != 2*time.Second {
		t.Errorf("success duration = %v", SuccessDuration)
	}
}

func TestNoticeExpires(t *testing.T) {
	m := New()
	m, _ = m.ShowError("something broke")

	if !m.Active() {
		t.Fatal("notice should be active after Show")
	}

	m, _ = m.Update(expiredMsg{generation: m.generation})
	if m.Active() {
		t.Error("notice should clear on matching expiry")
	}
}

func TestStaleExpiryIgnored(t *testing.T) {
	m := New()
	m, _ = m.ShowError("first")
	firstGen := m.generation

	// A newer notice replaces the first before its timer fires.
	m, _ = m.ShowSuccess("second")

	m, _ = m.Update(expiredMsg{generation: firstGen})
	if !m.Active() {
		t.Error("stale timer cleared a newer notice")
	}

	m, _ = m.Update(expiredMsg{generation: m.generation})
	if m.Active() {
		t.Error("current timer should clear the notice")
	}
}

func TestViewEmptyWhenInactive(t *testing.T) {
	m := New()
	if m.View() != "" {
		t.Errorf("inactive notice rendered %q", m.View())
	}

	m, _ = m.ShowSuccess("saved")
	if m.View() == "" {
		t.Error("active notice rendered empty")
	}
}
