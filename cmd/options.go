package cmd

// Options holds the shared command-line options for the contribfeed server.
type Options struct {
	ConfigPath string
	Addr       string
	Verbosity  int
	Quiet      bool
}
