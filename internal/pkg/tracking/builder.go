package tracking

import (
	"net/url"
	"strings"

	"github.com/Vodeneev/betlinkbot/internal/pkg/models"
)

// BTag renders the btag value expected by the ad server: a_<siteid>b_<adid>c_.
// Nothing follows the trailing c_; the endpoint takes it as a literal.
func BTag(a models.AffiliateParams) string {
	return "a_" + a.SiteID + "b_" + a.AdID + "c_"
}

// BuildLink composes the outbound tracking link that redirects to betURL.
// Keys are written in a fixed order so the output is stable.
func BuildLink(a models.AffiliateParams, betURL string) string {
	pairs := [][2]string{
		{ParamBTag, BTag(a)},
		{ParamAffID, a.AffID},
		{ParamSiteID, a.SiteID},
		{ParamAdID, a.AdID},
		{ParamC, a.C},
		{ParamTarget, betURL},
	}

	var b strings.Builder
	b.WriteString("https://")
	b.WriteString(TrackingHost)
	b.WriteString(TrackingPath)
	for i, p := range pairs {
		if i == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p[0]))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p[1]))
	}
	return b.String()
}
