package tracking

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/Vodeneev/betlinkbot/internal/pkg/models"
)

const (
	// TrackingHost serves the affiliate redirect endpoint.
	TrackingHost = "wlsuperbet.adsrv.eacdn.com"
	// TrackingPath is the redirect endpoint on TrackingHost.
	TrackingPath = "/C.ashx"
)

// Query keys of the tracking link.
const (
	ParamSiteID = "siteid"
	ParamAffID  = "affid"
	ParamAdID   = "adid"
	ParamC      = "c"
	ParamBTag   = "btag"
	ParamTarget = "asclurl"
)

var digitsRe = regexp.MustCompile(`^[0-9]+$`)

// ParseAffiliate extracts siteid, affid, adid and c from an affiliate
// tracking link such as
// https://wlsuperbet.adsrv.eacdn.com/C.ashx?btag=a_11566b_431c_&affid=662&siteid=11566&adid=431&c=Telegram
func ParseAffiliate(text string) (models.AffiliateParams, error) {
	u, err := parseAbsoluteURL(text)
	if err != nil {
		return models.AffiliateParams{}, &ParseError{Kind: KindInvalidURL, Err: err}
	}

	if !strings.Contains(strings.ToLower(u.Hostname()), TrackingHost) {
		return models.AffiliateParams{}, newError(KindWrongHost)
	}
	if !strings.HasSuffix(strings.ToLower(u.EscapedPath()), strings.ToLower(TrackingPath)) {
		return models.AffiliateParams{}, newError(KindWrongPath)
	}

	q := parseQuery(u.RawQuery)
	params := models.AffiliateParams{
		SiteID: q.Get(ParamSiteID),
		AffID:  q.Get(ParamAffID),
		AdID:   q.Get(ParamAdID),
		C:      q.Get(ParamC),
	}
	if params.SiteID == "" || params.AffID == "" || params.AdID == "" || params.C == "" {
		return models.AffiliateParams{}, newError(KindIncompleteLink)
	}

	for _, f := range []struct {
		name  string
		value string
	}{
		{ParamSiteID, params.SiteID},
		{ParamAffID, params.AffID},
		{ParamAdID, params.AdID},
	} {
		if !digitsRe.MatchString(f.value) {
			return models.AffiliateParams{}, &ParseError{Kind: KindNonNumericField, Field: f.name}
		}
	}

	return params, nil
}

// LooksLikeAffiliate is the loose shape check used outside of the guided
// flow: it only looks for the tracking endpoint somewhere in the text.
func LooksLikeAffiliate(text string) bool {
	return strings.Contains(strings.ToLower(text), strings.ToLower(TrackingHost+TrackingPath))
}

// parseQuery splits a raw query on '&' only, so a ';' stays part of the
// value. Pairs with a malformed escape keep their raw text.
func parseQuery(raw string) url.Values {
	values := make(url.Values)
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		values.Add(unescapeQuery(key), unescapeQuery(value))
	}
	return values
}

func unescapeQuery(s string) string {
	if unescaped, err := url.QueryUnescape(s); err == nil {
		return unescaped
	}
	return strings.ReplaceAll(s, "+", " ")
}

func parseAbsoluteURL(text string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(text))
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errNotAbsolute
	}
	return u, nil
}
