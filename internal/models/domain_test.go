package models

import "testing"

func TestRiskAtLeast(t *testing.T) {
	tests := []struct {
		risk  RiskLevel
		floor RiskLevel
		want  bool
	}{
		{RiskLow, RiskLow, true},
		{RiskLow, RiskMedium, false},
		{RiskHigh, RiskMedium, true},
		{RiskCritical, RiskCritical, true},
		{RiskMedium, RiskCritical, false},
	}
	for _, tt := range tests {
		if got := tt.risk.AtLeast(tt.floor); got != tt.want {
			t.Errorf("%s.AtLeast(%s) = %v, want %v", tt.risk, tt.floor, got, tt.want)
		}
	}
}

func TestMaxRisk(t *testing.T) {
	if got := MaxRisk(RiskLow, RiskHigh); got != RiskHigh {
		t.Errorf("MaxRisk(low, high) = %s, want high", got)
	}
	if got := MaxRisk(RiskCritical, RiskMedium); got != RiskCritical {
		t.Errorf("MaxRisk(critical, medium) = %s, want critical", got)
	}
}

func TestSensitiveDomains(t *testing.T) {
	for _, tag := range []DomainTag{DomainSecurity, DomainAuthentication, DomainPayments, DomainCompliance} {
		if !SensitiveDomains[tag] {
			t.Errorf("expected %s to be sensitive", tag)
		}
	}
	if SensitiveDomains[DomainFrontend] {
		t.Error("frontend should not be sensitive")
	}
}
