package wikidata

import (
	"encoding/json"
	"time"
)

// EntityID is a Wikidata entity identifier, e.g. "Q140".
type EntityID string

// Config holds Wikidata client configuration
type Config struct {
	SearchURL string        // wbsearchentities endpoint
	EntityURL string        // Special:EntityData URL template, %s for the entity id
	Timeout   time.Duration // HTTP request timeout
	CacheTTL  time.Duration // memoization TTL
	UserAgent string
	Debug     bool
}

// DefaultConfig returns the default Wikidata client configuration
func DefaultConfig() Config {
	return Config{
		SearchURL: "https://www.wikidata.org/w/api.php",
		EntityURL: "https://www.wikidata.org/wiki/Special:EntityData/%s.json",
		Timeout:   10 * time.Second,
		CacheTTL:  time.Hour,
		UserAgent: "EcoAtlas-Go/1.0 (species enrichment)",
	}
}

// searchResponse is the wbsearchentities wire format.
type searchResponse struct {
	Search []searchHit `json:"search"`
}

type searchHit struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// entityResponse is the Special:EntityData wire format.
type entityResponse struct {
	Entities map[string]Entity `json:"entities"`
}

// Entity is one Wikidata entity document.
type Entity struct {
	ID     string             `json:"id"`
	Claims map[string][]Claim `json:"claims"`
}

// Claim is a single statement about an entity.
type Claim struct {
	MainSnak Snak   `json:"mainsnak"`
	Rank     string `json:"rank"`
}

// Snak carries the value of a claim. DataValue is nil for novalue and
// somevalue snaks.
type Snak struct {
	SnakType  string     `json:"snaktype"`
	Property  string     `json:"property"`
	DataValue *DataValue `json:"datavalue,omitempty"`
}

// DataValue is a typed claim value. The payload shape depends on Type, so
// it is kept raw until a field extractor coerces it.
type DataValue struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

// Payload shapes for the datavalue types this schema uses.

type quantityValue struct {
	Amount string `json:"amount"`
	Unit   string `json:"unit"`
}

type entityRefValue struct {
	ID string `json:"id"`
}

type monolingualValue struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

type timeValue struct {
	Time string `json:"time"` // "+1994-01-01T00:00:00Z"
}
