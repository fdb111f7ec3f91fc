package domain

// PartSource is a place a replacement part can be bought.
type PartSource struct {
	Name         string `json:"name" yaml:"name"`
	URL          string `json:"url,omitempty" yaml:"url,omitempty"`
	Price        string `json:"price,omitempty" yaml:"price,omitempty"`
	Availability string `json:"availability,omitempty" yaml:"availability,omitempty"`

	// Default marks a static fallback source rather than a live search result.
	Default bool `json:"default,omitempty" yaml:"default,omitempty"`
}

var defaultPartSources = map[string][]PartSource{
	CategoryVehicle: {
		{Name: "RockAuto", URL: "https://www.rockauto.com"},
		{Name: "AutoZone", URL: "https://www.autozone.com"},
		{Name: "O'Reilly Auto Parts", URL: "https://www.oreillyauto.com"},
	},
	CategoryAppliance: {
		{Name: "AppliancePartsPros", URL: "https://www.appliancepartspros.com"},
		{Name: "PartSelect", URL: "https://www.partselect.com"},
		{Name: "RepairClinic", URL: "https://www.repairclinic.com"},
	},
	CategoryHVAC: {
		{Name: "SupplyHouse", URL: "https://www.supplyhouse.com"},
		{Name: "RepairClinic", URL: "https://www.repairclinic.com"},
	},
	CategoryPlumbing: {
		{Name: "SupplyHouse", URL: "https://www.supplyhouse.com"},
		{Name: "The Home Depot", URL: "https://www.homedepot.com"},
	},
	CategoryElectrical: {
		{Name: "The Home Depot", URL: "https://www.homedepot.com"},
		{Name: "Lowe's", URL: "https://www.lowes.com"},
	},
	CategoryElectronics: {
		{Name: "iFixit Store", URL: "https://www.ifixit.com/Store"},
		{Name: "Digi-Key", URL: "https://www.digikey.com"},
	},
	CategorySmallEngine: {
		{Name: "Jack's Small Engines", URL: "https://www.jackssmallengines.com"},
		{Name: "PartsTree", URL: "https://www.partstree.com"},
	},
}

var genericPartSources = []PartSource{
	{Name: "Amazon", URL: "https://www.amazon.com"},
	{Name: "eBay", URL: "https://www.ebay.com"},
}

// DefaultPartSources returns the static fallback sources for a category.
// The returned slice is a fresh copy with Default set on every entry.
func DefaultPartSources(category string) []PartSource {
	base := defaultPartSources[EquipmentQuery{Category: category}.NormalisedCategory()]
	out := make([]PartSource, 0, len(base)+len(genericPartSources))
	for _, src := range append(append([]PartSource{}, base...), genericPartSources...) {
		src.Default = true
		out = append(out, src)
	}
	return out
}
