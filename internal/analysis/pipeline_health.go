package analysis

import (
	"time"

	"github.com/keatontom/salesforce-opportunity-analysis/domain/opportunity"
)

// ComputePipelineHealth reports the stage mix, lost-reason counts and open
// opportunities older than agingDays as of now.
func ComputePipelineHealth(opps []*opportunity.Opportunity, now time.Time, agingDays int) PipelineHealth {
	health := PipelineHealth{
		StageDistribution:  make(map[string]StageShare),
		LostReasons:        make(map[string]int),
		AgingOpportunities: Aging{Details: []AgingDetail{}},
	}

	for _, o := range opps {
		share := health.StageDistribution[o.Stage]
		share.Count++
		health.StageDistribution[o.Stage] = share
	}
	for stage, share := range health.StageDistribution {
		share.Percentage = float64(share.Count) / float64(len(opps))
		health.StageDistribution[stage] = share
	}

	for _, o := range opps {
		if o.IsLost() && o.ClosedLostReason != "" {
			health.LostReasons[o.ClosedLostReason]++
		}
	}

	var total float64
	for _, o := range opps {
		if !o.IsOpen() || o.CreatedDate.IsZero() {
			continue
		}
		daysOpen := opportunity.DaysBetween(o.CreatedDate, now)
		if daysOpen <= agingDays {
			continue
		}
		total += o.TotalACV
		health.AgingOpportunities.Details = append(health.AgingOpportunities.Details, AgingDetail{
			AccountName:     o.AccountName,
			OpportunityName: o.OpportunityName,
			TotalACV:        o.TotalACV,
			CreatedDate:     formatDate(o),
			Stage:           o.Stage,
			DaysOpen:        daysOpen,
		})
	}
	health.AgingOpportunities.Count = len(health.AgingOpportunities.Details)
	health.AgingOpportunities.TotalValue = round2(total)

	return health
}
