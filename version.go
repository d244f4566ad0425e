package gardenplanner

import _ "embed"

// Version is the release of the library and its commands.
//
//go:embed VERSION
var Version string
