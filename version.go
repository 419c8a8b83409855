package pipenet

// Version is the release of this build. Overridden at link time with
// -ldflags "-X github.com/aretw0/pipenet.Version=...".
var Version = "0.1.0"
