package catalog

// Region is one AWS region the pricing catalog can be narrowed to.
// The set is a fixed enumeration, independent of per-service availability;
// services that have no offers in a region surface that at fetch time.
type Region struct {
	// Code is the region code, e.g. "us-east-1"
	Code string

	// Location is the human-readable location used by the pricing catalog
	Location string
}

var regions = []Region{
	// US
	{"us-east-1", "US East (N. Virginia)"},
	{"us-east-2", "US East (Ohio)"},
	{"us-west-1", "US West (N. California)"},
	{"us-west-2", "US West (Oregon)"},
	// Europe
	{"eu-west-1", "EU (Ireland)"},
	{"eu-west-2", "EU (London)"},
	{"eu-west-3", "EU (Paris)"},
	{"eu-central-1", "EU (Frankfurt)"},
	{"eu-north-1", "EU (Stockholm)"},
	{"eu-south-1", "EU (Milan)"},
	// Asia Pacific
	{"ap-northeast-1", "Asia Pacific (Tokyo)"},
	{"ap-northeast-2", "Asia Pacific (Seoul)"},
	{"ap-northeast-3", "Asia Pacific (Osaka)"},
	{"ap-southeast-1", "Asia Pacific (Singapore)"},
	{"ap-southeast-2", "Asia Pacific (Sydney)"},
	{"ap-southeast-3", "Asia Pacific (Jakarta)"},
	{"ap-south-1", "Asia Pacific (Mumbai)"},
	{"ap-east-1", "Asia Pacific (Hong Kong)"},
	// South America
	{"sa-east-1", "South America (Sao Paulo)"},
	// Canada
	{"ca-central-1", "Canada (Central)"},
	// Middle East
	{"me-south-1", "Middle East (Bahrain)"},
	{"me-central-1", "Middle East (UAE)"},
	// Africa
	{"af-south-1", "Africa (Cape Town)"},
}

// Regions returns the supported regions in a stable order
func Regions() []Region {
	out := make([]Region, len(regions))
	copy(out, regions)
	return out
}

// RegionCodes returns the supported region codes in a stable order
func RegionCodes() []string {
	codes := make([]string, len(regions))
	for i, r := range regions {
		codes[i] = r.Code
	}
	return codes
}

// LocationFor maps a region code to its pricing location name.
// Unknown codes map to themselves so lookups never guess.
func LocationFor(code string) string {
	for _, r := range regions {
		if r.Code == code {
			return r.Location
		}
	}
	return code
}

// IsKnownRegion reports whether a region code is in the enumeration
func IsKnownRegion(code string) bool {
	for _, r := range regions {
		if r.Code == code {
			return true
		}
	}
	return false
}
