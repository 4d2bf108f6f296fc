package models

// AffiliateParams are the four values captured from a user's affiliate
// tracking link. SiteID, AffID and AdID are decimal digit strings; C is the
// opaque campaign tag.
type AffiliateParams struct {
	SiteID string `json:"siteid"`
	AffID  string `json:"affid"`
	AdID   string `json:"adid"`
	C      string `json:"c"`
}

// BetReference is a shared bet slip resolved to its canonical URL. It is
// never persisted.
type BetReference struct {
	Code        string
	ResolvedURL string
}
