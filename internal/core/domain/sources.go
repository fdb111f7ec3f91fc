package domain

import "strings"

// TrustedSource is an entry of the static trusted-source weight table.
type TrustedSource struct {
	Domain string
	Weight float64
}

var trustedSources = map[string][]TrustedSource{
	CategoryVehicle: {
		{Domain: "nhtsa.gov", Weight: 1.0},
		{Domain: "alldata.com", Weight: 0.95},
		{Domain: "charm.li", Weight: 0.95},
		{Domain: "haynes.com", Weight: 0.9},
		{Domain: "2carpros.com", Weight: 0.8},
		{Domain: "rockauto.com", Weight: 0.75},
		{Domain: "bobistheoilguy.com", Weight: 0.7},
	},
	CategoryAppliance: {
		{Domain: "appliancepartspros.com", Weight: 0.9},
		{Domain: "partselect.com", Weight: 0.9},
		{Domain: "repairclinic.com", Weight: 0.9},
		{Domain: "applianceblog.com", Weight: 0.75},
		{Domain: "manualslib.com", Weight: 0.85},
	},
	CategoryHVAC: {
		{Domain: "hvac-talk.com", Weight: 0.8},
		{Domain: "energy.gov", Weight: 0.85},
		{Domain: "supplyhouse.com", Weight: 0.75},
	},
	CategoryPlumbing: {
		{Domain: "terrylove.com", Weight: 0.8},
		{Domain: "familyhandyman.com", Weight: 0.75},
		{Domain: "thisoldhouse.com", Weight: 0.75},
	},
	CategoryElectrical: {
		{Domain: "mikeholt.com", Weight: 0.85},
		{Domain: "familyhandyman.com", Weight: 0.7},
	},
	CategoryElectronics: {
		{Domain: "ifixit.com", Weight: 1.0},
		{Domain: "eevblog.com", Weight: 0.8},
	},
	CategorySmallEngine: {
		{Domain: "briggsandstratton.com", Weight: 0.95},
		{Domain: "jackssmallengines.com", Weight: 0.85},
		{Domain: "outdoorpowerequipmentforum.com", Weight: 0.7},
	},
}

var genericTrustedSources = []TrustedSource{
	{Domain: "ifixit.com", Weight: 0.9},
	{Domain: "manualslib.com", Weight: 0.85},
	{Domain: "manualzz.com", Weight: 0.75},
	{Domain: "youtube.com", Weight: 0.6},
	{Domain: "reddit.com", Weight: 0.55},
}

// LookupTrustedSource finds host in the trusted-source table for category,
// then in the generic table. A table domain matches itself and any subdomain.
func LookupTrustedSource(host, category string) (TrustedSource, bool) {
	host = strings.TrimPrefix(strings.ToLower(host), "www.")
	if host == "" {
		return TrustedSource{}, false
	}
	cat := EquipmentQuery{Category: category}.NormalisedCategory()
	for _, table := range [][]TrustedSource{trustedSources[cat], genericTrustedSources} {
		for _, src := range table {
			if host == src.Domain || strings.HasSuffix(host, "."+src.Domain) {
				return src, true
			}
		}
	}
	return TrustedSource{}, false
}
