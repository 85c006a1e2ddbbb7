// Package cmd implements the lrx subcommands: parse, tree, entity, check,
// init and repl.
//
// Commands receive their shared settings through the context. The CLI
// stores the kong context with [WithContext] and the parser options,
// widget search roots and logger with [WithSetup].
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the configuration file.
	ConfigIdentifier = "config"
)
