package app

const Name = "cosmico-webinar"

// Version is overridden at build time with -ldflags "-X ...app.Version=v1.2.3".
var Version = "dev"

// UserAgent identifies the tool to APIs that don't need a browser identity.
func UserAgent() string {
	return Name + "/" + Version
}
