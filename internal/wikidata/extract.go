package wikidata

import (
	"encoding/json"
	"strconv"
	"strings"
)

// BioClaims holds the typed values extracted from one entity document.
// A nil field means the property was absent or its claim was malformed;
// the two cases are indistinguishable on purpose.
type BioClaims struct {
	LifespanYears    *float64
	WeightKg         *float64
	SizeM            *float64 // meters, unit conversion happens at merge
	Population       *int64
	SpeedKmh         *float64
	IUCNStatus       *string
	Habitat          *string
	Diet             *string
	RangeDescription *string
	ImageFile        *string // Commons filename, verbatim
}

// ExtractBio extracts all schema fields from an entity. Only the first
// claim of each property is consulted. A malformed claim nils its own
// field without affecting any other field.
func ExtractBio(entity *Entity) BioClaims {
	if entity == nil {
		return BioClaims{}
	}
	return BioClaims{
		LifespanYears:    quantityField(entity, bioSchema.LifespanYears),
		WeightKg:         quantityField(entity, bioSchema.WeightKg),
		SizeM:            quantityField(entity, bioSchema.SizeM),
		Population:       countField(entity, bioSchema.Population),
		SpeedKmh:         quantityField(entity, bioSchema.SpeedKmh),
		IUCNStatus:       stringField(entity, bioSchema.IUCNStatus),
		Habitat:          stringField(entity, bioSchema.Habitat),
		Diet:             stringField(entity, bioSchema.Diet),
		RangeDescription: stringField(entity, bioSchema.Range),
		ImageFile:        stringField(entity, bioSchema.Image),
	}
}

// firstClaimValue returns the datavalue of the first claim of the first
// candidate property that has any claims. Returns nil for novalue and
// somevalue snaks.
func firstClaimValue(entity *Entity, candidates []string) *DataValue {
	for _, prop := range candidates {
		claims, ok := entity.Claims[prop]
		if !ok || len(claims) == 0 {
			continue
		}
		return claims[0].MainSnak.DataValue
	}
	return nil
}

// quantityField coerces a quantity claim to float64.
func quantityField(entity *Entity, candidates []string) *float64 {
	dv := firstClaimValue(entity, candidates)
	if dv == nil {
		return nil
	}

	var qv quantityValue
	if err := json.Unmarshal(dv.Value, &qv); err != nil {
		logger.Debug("Malformed quantity claim",
			"entity_id", entity.ID,
			"value_type", dv.Type,
			"error", err)
		return nil
	}

	// Amounts carry an explicit sign, e.g. "+190.5"
	amount, err := strconv.ParseFloat(strings.TrimPrefix(qv.Amount, "+"), 64)
	if err != nil {
		logger.Debug("Unparseable quantity amount",
			"entity_id", entity.ID,
			"amount", qv.Amount)
		return nil
	}

	return &amount
}

// countField coerces a quantity claim to int64, truncating any fraction.
func countField(entity *Entity, candidates []string) *int64 {
	f := quantityField(entity, candidates)
	if f == nil {
		return nil
	}
	n := int64(*f)
	return &n
}

// stringField coerces a claim to its string form based on the declared
// datavalue type: entity references yield the referenced id, monolingual
// text yields the text, time values yield the 4-digit year, and plain
// strings pass through verbatim.
func stringField(entity *Entity, candidates []string) *string {
	dv := firstClaimValue(entity, candidates)
	if dv == nil {
		return nil
	}

	var s string
	switch dv.Type {
	case "wikibase-entityid":
		var ev entityRefValue
		if err := json.Unmarshal(dv.Value, &ev); err != nil || ev.ID == "" {
			return nil
		}
		s = ev.ID
	case "monolingualtext":
		var mv monolingualValue
		if err := json.Unmarshal(dv.Value, &mv); err != nil || mv.Text == "" {
			return nil
		}
		s = mv.Text
	case "time":
		var tv timeValue
		if err := json.Unmarshal(dv.Value, &tv); err != nil || len(tv.Time) < 5 {
			return nil
		}
		s = tv.Time[1:5]
	case "string":
		if err := json.Unmarshal(dv.Value, &s); err != nil || s == "" {
			return nil
		}
	default:
		logger.Debug("Unexpected datavalue type for string field",
			"entity_id", entity.ID,
			"value_type", dv.Type)
		return nil
	}

	return &s
}
