package opportunity

import "math"

// FirmSize is the lawyer-count bucket of an account.
type FirmSize int

const (
	FirmSmall FirmSize = iota
	FirmMedium
	FirmLarge
	FirmEnterprise
)

// FirmSizes lists every bucket in ascending order.
var FirmSizes = []FirmSize{FirmSmall, FirmMedium, FirmLarge, FirmEnterprise}

// Upper edges of Small, Medium and Large. Buckets are right-inclusive and the
// first bucket also includes 0.
const (
	smallMaxLawyers  = 50
	mediumMaxLawyers = 200
	largeMaxLawyers  = 500
)

// BucketFirmSize places a lawyer count into its bucket. Negative or NaN
// counts have no bucket.
func BucketFirmSize(lawyers float64) (FirmSize, bool) {
	switch {
	case math.IsNaN(lawyers) || lawyers < 0:
		return 0, false
	case lawyers <= smallMaxLawyers:
		return FirmSmall, true
	case lawyers <= mediumMaxLawyers:
		return FirmMedium, true
	case lawyers <= largeMaxLawyers:
		return FirmLarge, true
	default:
		return FirmEnterprise, true
	}
}

func (f FirmSize) String() string {
	switch f {
	case FirmSmall:
		return "Small"
	case FirmMedium:
		return "Medium"
	case FirmLarge:
		return "Large"
	case FirmEnterprise:
		return "Enterprise"
	}
	return "Unknown"
}

// Label is the human-readable lawyer-count range used in findings.
func (f FirmSize) Label() string {
	switch f {
	case FirmSmall:
		return "0-50 Lawyers"
	case FirmMedium:
		return "51-200 Lawyers"
	case FirmLarge:
		return "201-500 Lawyers"
	case FirmEnterprise:
		return "500+ Lawyers"
	}
	return "Unknown"
}
