package gmt

// Version is set at build time via ldflags.
var Version = "v0.0.0-in-progress"

// WrapperVersion returns the version of this module. In development it
// defaults to v0.0.0-in-progress.
func WrapperVersion() string {
	return Version
}

// LibraryVersion returns the GMT version the session runs on.
func LibraryVersion(s *Session) (string, error) {
	return s.GetDefault("API_VERSION")
}
