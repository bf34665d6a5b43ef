// Package buildinfo carries build-time metadata injected at link time.
package buildinfo

// Set via -ldflags at build time.
var (
	version   = "dev"
	buildDate = "unknown"
)

// Context holds the resolved build metadata.
type Context struct {
	Version   string `json:"version"`
	BuildDate string `json:"build_date"`
}

// Get returns the build metadata for this binary.
func Get() Context {
	return Context{
		Version:   version,
		BuildDate: buildDate,
	}
}
