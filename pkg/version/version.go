package version

// Current defines the application version.
// It defaults to "dev" and is overwritten at build time using -ldflags.
var Current = "dev"

// Commit is the source revision, set via -ldflags.
var Commit = "none"

const AppName = "aquagrid"

// String renders the version line printed by the CLI.
func String() string {
	return AppName + " " + Current + " (" + Commit + ")"
}
