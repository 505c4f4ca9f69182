package version

var (
	// Version is the current application version
	Version = "dev"
	// GitSHA is the git commit SHA
	GitSHA = "unknown"
	// BuildTime is the build timestamp
	BuildTime = "unknown"
)

// Creator returns the CREATOR card value stamped on derived products.
func Creator() string {
	return "XPOLBEAMLINE V" + Version
}
