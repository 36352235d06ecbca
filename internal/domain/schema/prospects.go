package schema

// Prospect schema defaults.
const (
	ProspectTable         = "prospects"
	ProspectOptionsSource = "prospect_filter_options"
	ProspectDisplayColumn = "dba_name"

	// DefaultMinRadiusMiles and DefaultMaxRadiusMiles bound location searches.
	DefaultMinRadiusMiles = 1
	DefaultMaxRadiusMiles = 500
)

// ProspectColumns are the columns returned for prospect result pages.
var ProspectColumns = []string{
	"account_id", "dba_name", "address", "city", "state", "zip",
	"phone", "contact_name", "contact_email", "contact_phone",
	"primary_industry", "sub_industry", "sic_code",
	"revenue", "number_of_employees", "number_of_locations",
	"is_b2b", "is_b2c", "latitude", "longitude", "full_address", "url",
}

// Prospects builds the default prospect filter schema: business-name text
// search, dependent industry dropdowns, numeric ranges, B2B/B2C selection,
// and an address-radius filter.
func Prospects(minRadius, maxRadius float64) (Schema, error) {
	if minRadius <= 0 {
		minRadius = DefaultMinRadiusMiles
	}
	if maxRadius <= 0 {
		maxRadius = DefaultMaxRadiusMiles
	}

	dbaName, err := NewText("dba_name", "dba_name")
	if err != nil {
		return Schema{}, err
	}
	zip, err := NewText("zip", "zip")
	if err != nil {
		return Schema{}, err
	}
	state, err := NewMultiSelect("state", "state", nil)
	if err != nil {
		return Schema{}, err
	}
	city, err := NewMultiSelect("city", "city", nil)
	if err != nil {
		return Schema{}, err
	}
	primary, err := NewMultiSelect("primary_industry", "primary_industry", nil)
	if err != nil {
		return Schema{}, err
	}
	sub, err := NewMultiSelect("sub_industry", "sub_industry", nil)
	if err != nil {
		return Schema{}, err
	}
	sic, err := NewMultiSelect("sic_code", "sic_code", nil)
	if err != nil {
		return Schema{}, err
	}
	revenue, err := NewRange("revenue", "revenue")
	if err != nil {
		return Schema{}, err
	}
	employees, err := NewRange("number_of_employees", "number_of_employees")
	if err != nil {
		return Schema{}, err
	}
	locations, err := NewRange("number_of_locations", "number_of_locations")
	if err != nil {
		return Schema{}, err
	}
	b2b, err := NewMultiSelect("is_b2b", "is_b2b", []string{"0", "1"})
	if err != nil {
		return Schema{}, err
	}
	b2c, err := NewMultiSelect("is_b2c", "is_b2c", []string{"0", "1"})
	if err != nil {
		return Schema{}, err
	}
	location, err := NewLocationRadius("location", "latitude", "longitude", minRadius, maxRadius)
	if err != nil {
		return Schema{}, err
	}

	return New(ProspectTable, ProspectOptionsSource, ProspectDisplayColumn,
		dbaName,
		zip,
		state,
		city.WithDependencies("state"),
		primary,
		sub.WithDependencies("primary_industry"),
		sic.WithDependencies("primary_industry", "sub_industry"),
		revenue,
		employees,
		locations,
		b2b,
		b2c,
		location,
	)
}
