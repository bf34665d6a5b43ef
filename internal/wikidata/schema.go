package wikidata

// Wikidata property ids used by the bio extraction schema.
const (
	PropLifespan   = "P2250" // life expectancy, quantity in years
	PropMass       = "P2067" // mass, quantity in kg
	PropHeight     = "P2048" // height, quantity in m
	PropLength     = "P2043" // length, quantity in m
	PropPopulation = "P1082" // population, quantity
	PropSpeed      = "P439"  // speed, quantity in km/h
	PropSpeedAlt   = "P2052" // speed alternate property
	PropIUCNStatus = "P141"  // IUCN conservation status, entity reference
	PropHabitat    = "P2971" // habitat, entity reference
	PropHabitatAlt = "P2973" // habitat alternate property
	PropDiet       = "P927"  // diet, entity reference
	PropRange      = "P181"  // geographic range, text
	PropImage      = "P18"   // image, Commons filename string
)

// bioSchema maps each extracted field to its candidate properties in
// precedence order. The first candidate holding at least one claim wins;
// later candidates are not consulted even if the first fails to coerce.
var bioSchema = struct {
	LifespanYears []string
	WeightKg      []string
	SizeM         []string
	Population    []string
	SpeedKmh      []string
	IUCNStatus    []string
	Habitat       []string
	Diet          []string
	Range         []string
	Image         []string
}{
	LifespanYears: []string{PropLifespan},
	WeightKg:      []string{PropMass},
	SizeM:         []string{PropHeight, PropLength},
	Population:    []string{PropPopulation},
	SpeedKmh:      []string{PropSpeed, PropSpeedAlt},
	IUCNStatus:    []string{PropIUCNStatus},
	Habitat:       []string{PropHabitat, PropHabitatAlt},
	Diet:          []string{PropDiet},
	Range:         []string{PropRange},
	Image:         []string{PropImage},
}
