package domain

import "testing"

func TestClassifyBands(t *testing.T) {
	cfg := DefaultRankConfig()
	tests := []struct {
		share float64
		want  Rank
	}{
		{0.50, RankMVP},
		{0.30, RankMVP},
		{0.25, RankHero},
		{0.10, RankDefender},
		{0.05, RankParticipant},
		{0.01, RankSpectator},
	}
	for _, tc := range tests {
		if got := cfg.Classify(tc.share); got != tc.want {
			t.Fatalf("Classify(%v) = %v, want %v", tc.share, got, tc.want)
		}
	}
}

func TestMultiplierBelowDefenderPaysBase(t *testing.T) {
	cfg := DefaultRankConfig()
	if cfg.Multiplier(RankParticipant) != 1.0 || cfg.Multiplier(RankSpectator) != 1.0 {
		t.Fatal("expected base multiplier below defender")
	}
	if cfg.Multiplier(RankMVP) != 2.0 {
		t.Fatalf("expected mvp multiplier 2.0, got %v", cfg.Multiplier(RankMVP))
	}
}

func TestParticipationScoresWeighCounters(t *testing.T) {
	cfg := DefaultRankConfig()
	ledger := []ParticipantRecord{
		{PlayerID: "healer", Active: true, HealingDone: 100},
		{PlayerID: "engineer", Active: false, UtilityScore: 100},
	}
	scores := participationScores(ledger, cfg.Weights)
	if scores["healer"] != 100*0.8+50 {
		t.Fatalf("unexpected healer score %v", scores["healer"])
	}
	// No survival bonus for participants who left.
	if scores["engineer"] != 100*1.2 {
		t.Fatalf("unexpected engineer score %v", scores["engineer"])
	}
}
