// Package config holds the process configuration shared by every jobgraph
// command. Values are read from JOBGRAPH_* environment variables and may
// then be overridden by command-line flags before Validate is called.
package config
