package models

import "testing"

func TestStrengthFor(t *testing.T) {
	cases := []struct {
		conf float64
		want SignalStrength
	}{
		{0.90, StrengthVeryStrong},
		{0.85, StrengthVeryStrong},
		{0.80, StrengthStrong},
		{0.70, StrengthModerate},
		{0.50, StrengthWeak},
	}
	for _, c := range cases {
		if got := StrengthFor(c.conf); got != c.want {
			t.Fatalf("StrengthFor(%v) = %s, want %s", c.conf, got, c.want)
		}
	}
}

func TestRiskFor(t *testing.T) {
	if got := RiskFor(0.9, RegimeTrending); got != RiskLow {
		t.Fatalf("high confidence trending should be low risk, got %s", got)
	}
	if got := RiskFor(0.5, RegimeVolatile); got != RiskHigh {
		t.Fatalf("weak confidence volatile should be high risk, got %s", got)
	}
	if got := RiskFor(0.7, RegimeRanging); got != RiskMedium {
		t.Fatalf("mid confidence ranging should be medium risk, got %s", got)
	}
}
