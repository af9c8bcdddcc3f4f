package opportunity

import (
	"strings"
	"time"
)

// Terminal stages. Every other stage value denotes an open opportunity.
const (
	StageWon  = "Won"
	StageLost = "Lost"
)

// Opportunity is one typed row of the sales pipeline export.
//
// Empty strings mean the cell was blank. Zero times mean the date was blank.
type Opportunity struct {
	AccountName      string    `json:"Account Name"`
	OpportunityName  string    `json:"Opportunity Name"`
	Stage            string    `json:"Stage"`
	CreatedDate      time.Time `json:"Created Date"`
	CloseDate        time.Time `json:"Close Date"`
	Type             string    `json:"Type"`
	TotalACV         float64   `json:"Total ACV"`
	CampaignSource   string    `json:"Primary Campaign Source"`
	ClosedLostReason string    `json:"Closed Lost Reason"`
	PracticeArea     string    `json:"Law Firm Practice Area"`
	NumLawyers       float64   `json:"NumofLawyers"`

	// PracticeAreas holds the trimmed, filtered tokens of PracticeArea.
	PracticeAreas []string `json:"-"`

	// TimeToCloseDays is close minus created in whole days (floored).
	// Only meaningful when HasTimeToClose is true.
	TimeToCloseDays int  `json:"Time_To_Close"`
	HasTimeToClose  bool `json:"-"`
}

// IsWon reports whether the opportunity closed successfully.
func (o *Opportunity) IsWon() bool { return o.Stage == StageWon }

// IsLost reports whether the opportunity closed unsuccessfully.
func (o *Opportunity) IsLost() bool { return o.Stage == StageLost }

// IsClosed reports whether the opportunity reached a terminal stage.
func (o *Opportunity) IsClosed() bool { return o.IsWon() || o.IsLost() }

// IsOpen reports whether the opportunity is still in progress.
func (o *Opportunity) IsOpen() bool { return !o.IsClosed() }

// FirmSize returns the firm-size bucket of the opportunity's account.
func (o *Opportunity) FirmSize() (FirmSize, bool) {
	return BucketFirmSize(o.NumLawyers)
}

// CampaignCategory maps the raw campaign source to its reporting category.
func (o *Opportunity) CampaignCategory() (string, bool) {
	return CategorizeCampaign(o.CampaignSource)
}

// MatchesPracticeArea reports whether the raw practice-area field contains
// token, case-insensitively. Substring semantics are intentional: "Real"
// matches "Real Estate".
func (o *Opportunity) MatchesPracticeArea(token string) bool {
	if token == "" || o.PracticeArea == "" {
		return false
	}
	return strings.Contains(strings.ToLower(o.PracticeArea), strings.ToLower(token))
}

// ComputeTimeToClose derives TimeToCloseDays from the two dates. It is
// computed for open deals too, where it is informational only.
func (o *Opportunity) ComputeTimeToClose() {
	if o.CreatedDate.IsZero() || o.CloseDate.IsZero() {
		o.TimeToCloseDays = 0
		o.HasTimeToClose = false
		return
	}
	o.TimeToCloseDays = DaysBetween(o.CreatedDate, o.CloseDate)
	o.HasTimeToClose = true
}

// DaysBetween returns the whole days from start to end, floored, so that a
// negative partial day counts as -1.
func DaysBetween(start, end time.Time) int {
	d := end.Sub(start)
	days := int(d / (24 * time.Hour))
	if d < 0 && d%(24*time.Hour) != 0 {
		days--
	}
	return days
}

// Partition splits opportunities into won, lost and open subsets, keeping input order.
func Partition(opps []*Opportunity) (won, lost, open []*Opportunity) {
	for _, o := range opps {
		switch {
		case o.IsWon():
			won = append(won, o)
		case o.IsLost():
			lost = append(lost, o)
		default:
			open = append(open, o)
		}
	}
	return won, lost, open
}
