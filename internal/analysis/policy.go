package analysis

import (
	"fmt"

	apperrors "github.com/keatontom/salesforce-opportunity-analysis/internal/errors"
)

// Policy holds the tunable gates, cut-offs and thresholds of the engine.
// DefaultPolicy reproduces the reference behavior exactly.
type Policy struct {
	TypeMinSample       int     `yaml:"type_min_sample" json:"type_min_sample"`
	CampaignMinSample   int     `yaml:"campaign_min_sample" json:"campaign_min_sample"`
	TopPracticeAreas    int     `yaml:"top_practice_areas" json:"top_practice_areas"`
	TopLossReasons      int     `yaml:"top_loss_reasons" json:"top_loss_reasons"`
	TopCampaigns        int     `yaml:"top_campaigns" json:"top_campaigns"`
	AgingDays           int     `yaml:"aging_days" json:"aging_days"`
	LowRiskThreshold    float64 `yaml:"low_risk_threshold" json:"low_risk_threshold"`
	MediumRiskThreshold float64 `yaml:"medium_risk_threshold" json:"medium_risk_threshold"`
	ValueBandLow        float64 `yaml:"value_band_low" json:"value_band_low"`
	ValueBandHigh       float64 `yaml:"value_band_high" json:"value_band_high"`
	ScoreWorkers        int     `yaml:"score_workers" json:"score_workers"`
}

// DefaultPolicy returns the standard analysis policy.
func DefaultPolicy() Policy {
	return Policy{
		TypeMinSample:       5,
		CampaignMinSample:   2,
		TopPracticeAreas:    5,
		TopLossReasons:      5,
		TopCampaigns:        3,
		AgingDays:           90,
		LowRiskThreshold:    70,
		MediumRiskThreshold: 40,
		ValueBandLow:        0.8,
		ValueBandHigh:       1.2,
		ScoreWorkers:        4,
	}
}

// Validate checks that the thresholds are coherent.
func (p Policy) Validate() error {
	switch {
	case p.TypeMinSample < 0 || p.CampaignMinSample < 0:
		return apperrors.ConfigInvalid("minimum sample sizes must be non-negative")
	case p.TopPracticeAreas < 0 || p.TopLossReasons < 0 || p.TopCampaigns < 0:
		return apperrors.ConfigInvalid("top-N cut-offs must be non-negative")
	case p.AgingDays < 0:
		return apperrors.ConfigInvalid("aging_days must be non-negative")
	case p.MediumRiskThreshold < 0 || p.LowRiskThreshold > 100 || p.MediumRiskThreshold >= p.LowRiskThreshold:
		return apperrors.ConfigInvalid(fmt.Sprintf("risk thresholds must satisfy 0 <= medium < low <= 100, got medium=%g low=%g",
			p.MediumRiskThreshold, p.LowRiskThreshold))
	case p.ValueBandLow <= 0 || p.ValueBandLow > 1 || p.ValueBandHigh < 1:
		return apperrors.ConfigInvalid(fmt.Sprintf("value band must satisfy 0 < low <= 1 <= high, got low=%g high=%g",
			p.ValueBandLow, p.ValueBandHigh))
	case p.ScoreWorkers < 1:
		return apperrors.ConfigInvalid("score_workers must be at least 1")
	}
	return nil
}

// RiskLevel classifies a 0-100 score.
func (p Policy) RiskLevel(score float64) string {
	switch {
	case score >= p.LowRiskThreshold:
		return RiskLow
	case score >= p.MediumRiskThreshold:
		return RiskMedium
	default:
		return RiskHigh
	}
}

// Risk tiers.
const (
	RiskLow    = "Low"
	RiskMedium = "Medium"
	RiskHigh   = "High"
)
