package version

// Version is the current version of datamimic.
// Can be overridden at build time with -ldflags "-X ...version.Version=..."
var Version = "0.4.0"

// Name is the application name.
const Name = "datamimic"

// Description is a short description of the application.
const Description = "Schema-aware synthetic tabular data generator"
