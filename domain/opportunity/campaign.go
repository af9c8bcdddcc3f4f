package opportunity

import (
	"strings"
	"unicode"
)

// Campaign categories produced by CategorizeCampaign.
const (
	CampaignEmail    = "Email Campaigns"
	CampaignDemos    = "Product Demos"
	CampaignEvents   = "Events & Webinars"
	CampaignReferral = "Referrals"
	CampaignPartner  = "Partner Programs"
	CampaignSocial   = "Social Media"
	CampaignContent  = "Content Marketing"
)

var campaignRules = []struct {
	keywords []string
	category string
}{
	{[]string{"email", "newsletter"}, CampaignEmail},
	{[]string{"demo"}, CampaignDemos},
	{[]string{"webinar", "event"}, CampaignEvents},
	{[]string{"referral"}, CampaignReferral},
	{[]string{"partner"}, CampaignPartner},
	{[]string{"social"}, CampaignSocial},
	{[]string{"content", "blog"}, CampaignContent},
}

var uncategorizedCampaigns = map[string]bool{
	"":        true,
	"unknown": true,
	"other":   true,
	"none":    true,
}

// CategorizeCampaign maps a free-text campaign source to a category by
// case-insensitive keyword matching; first rule wins. Blank and placeholder
// sources have no category. Anything else becomes its own title-cased category.
func CategorizeCampaign(source string) (string, bool) {
	trimmed := strings.TrimSpace(source)
	lower := strings.ToLower(trimmed)
	if uncategorizedCampaigns[lower] {
		return "", false
	}
	for _, rule := range campaignRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.category, true
			}
		}
	}
	return TitleCase(trimmed), true
}

// TitleCase upper-cases the first letter of every run of letters and
// lower-cases the rest ("trade SHOW" -> "Trade Show", "abc-def" -> "Abc-Def").
func TitleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
			continue
		}
		b.WriteRune(r)
		prevLetter = false
	}
	return b.String()
}
