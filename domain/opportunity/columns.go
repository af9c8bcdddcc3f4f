package opportunity

// ColumnKind is the declared type of an input column, which decides its default.
type ColumnKind int

const (
	KindString ColumnKind = iota
	KindNumeric
	KindDate
)

func (k ColumnKind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindDate:
		return "date"
	default:
		return "string"
	}
}

// Input column headers of the pipeline export.
const (
	ColAccountName      = "Account Name"
	ColOpportunityName  = "Opportunity Name"
	ColStage            = "Stage"
	ColCloseDate        = "Close Date"
	ColCreatedDate      = "Created Date"
	ColType             = "Type"
	ColTotalACV         = "Total ACV"
	ColCampaignSource   = "Primary Campaign Source"
	ColClosedLostReason = "Closed Lost Reason"
	ColPracticeArea     = "Law Firm Practice Area"
	ColNumLawyers       = "NumofLawyers"
)

// DefaultString fills string columns that are absent from the input.
const DefaultString = "Unknown"

// Column is a required input column and its kind.
type Column struct {
	Name string
	Kind ColumnKind
}

// RequiredColumns is the canonical schema, in export order.
var RequiredColumns = []Column{
	{ColAccountName, KindString},
	{ColOpportunityName, KindString},
	{ColStage, KindString},
	{ColCloseDate, KindDate},
	{ColCreatedDate, KindDate},
	{ColType, KindString},
	{ColTotalACV, KindNumeric},
	{ColCampaignSource, KindString},
	{ColClosedLostReason, KindString},
	{ColPracticeArea, KindString},
	{ColNumLawyers, KindNumeric},
}
