package conf

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaultConfig registers the default value for every configuration key.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	// Main
	viper.SetDefault("main.name", "EcoAtlas")

	// Logging
	viper.SetDefault("log.enabled", true)
	viper.SetDefault("log.path", "logs/")
	viper.SetDefault("log.rotation", RotationDaily)
	viper.SetDefault("log.maxsize", 10*1024*1024)

	// Web server
	viper.SetDefault("webserver.enabled", true)
	viper.SetDefault("webserver.port", "8080")
	viper.SetDefault("webserver.debug", false)

	// Security
	viper.SetDefault("security.admintoken", "")

	// Database
	viper.SetDefault("database.sqlite.enabled", true)
	viper.SetDefault("database.sqlite.path", "ecoatlas.db")
	viper.SetDefault("database.mysql.enabled", false)
	viper.SetDefault("database.mysql.username", "ecoatlas")
	viper.SetDefault("database.mysql.password", "secret")
	viper.SetDefault("database.mysql.database", "ecoatlas")
	viper.SetDefault("database.mysql.host", "localhost")
	viper.SetDefault("database.mysql.port", "3306")

	// Enrichment
	viper.SetDefault("enrichment.enabled", true)
	viper.SetDefault("enrichment.searchurl", "https://www.wikidata.org/w/api.php")
	viper.SetDefault("enrichment.entityurl", "https://www.wikidata.org/wiki/Special:EntityData/%s.json")
	viper.SetDefault("enrichment.commonsapiurl", "https://commons.wikimedia.org/w/api.php")
	viper.SetDefault("enrichment.uploadhost", "https://upload.wikimedia.org")
	viper.SetDefault("enrichment.timeout", 10*time.Second)
	viper.SetDefault("enrichment.cachettl", time.Hour)
	viper.SetDefault("enrichment.thumbnailsize", 800)
	viper.SetDefault("enrichment.useragent", "EcoAtlas-Go/1.0 (species enrichment)")
	viper.SetDefault("enrichment.debug", false)

	// GBIF
	viper.SetDefault("gbif.apiurl", "https://api.gbif.org/v1")
	viper.SetDefault("gbif.specieslimit", 20)
	viper.SetDefault("gbif.occurrencelimit", 50)
	viper.SetDefault("gbif.ratelimit", 250*time.Millisecond)

	// Seed data
	viper.SetDefault("species.seedfile", "data/species_seed.json")
}
