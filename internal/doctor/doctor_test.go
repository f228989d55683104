package doctor

import (
	"testing"
)

// stubCheck returns a fixed result.
type stubCheck struct {
	name   string
	status Severity
}

func (s *stubCheck) Name() string     { return s.name }
func (s *stubCheck) Category() string { return "stub" }
func (s *stubCheck) Run() *CheckResult {
	return &CheckResult{Name: s.name, Category: "stub", Status: s.status}
}

func TestRunnerAggregatesResults(t *testing.T) {
	r := NewRunner()
	r.AddCheck(&stubCheck{name: "a", status: SeverityPass})
	r.AddCheck(&stubCheck{name: "b", status: SeverityWarning})
	r.AddCheck(&stubCheck{name: "c", status: SeverityError})
	r.AddCheck(&stubCheck{name: "d", status: SeverityInfo})

	report := r.Run()

	if len(report.Results) != 4 {
		t.Fatalf("Results = %d, want 4", len(report.Results))
	}
	if report.Summary.Passed != 1 || report.Summary.Warnings != 1 ||
		report.Summary.Errors != 1 || report.Summary.Info != 1 {
		t.Errorf("Summary = %+v", report.Summary)
	}
	if !report.HasErrors() {
		t.Error("HasErrors() = false, want true")
	}
	if !report.HasWarnings() {
		t.Error("HasWarnings() = false, want true")
	}
	if report.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}
}

func TestRunnerEmpty(t *testing.T) {
	report := NewRunner().Run()

	if len(report.Results) != 0 {
		t.Errorf("Results = %d, want 0", len(report.Results))
	}
	if report.HasErrors() || report.HasWarnings() {
		t.Error("empty report should have no errors or warnings")
	}
}

func TestSeverityString(t *testing.T) {
	tests := []struct {
		severity Severity
		want     string
	}{
		{SeverityPass, "pass"},
		{SeverityInfo, "info"},
		{SeverityWarning, "warning"},
		{SeverityError, "error"},
		{Severity(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.severity.String(); got != tt.want {
			t.Errorf("Severity(%d).String() = %q, want %q", tt.severity, got, tt.want)
		}
	}
}
