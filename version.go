package secdesk

// Version is overridden at build time with
// -ldflags="-X github.com/secdesk/secdesk.Version=v1.2.3".
var Version = "dev"
