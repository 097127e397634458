// Package config loads membox client configuration from the environment or a
// file. It is a convenience on top of the functional options; everything here
// can equally be set directly on membox.Options.
package config
