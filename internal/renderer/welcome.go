package renderer

// DefaultWelcome returns the banner shown over an empty buffer.
func DefaultWelcome(version string) []string {
	return []string{
		"ted editor",
		"version " + version,
		"",
		"Ctrl+Q to quit",
	}
}
