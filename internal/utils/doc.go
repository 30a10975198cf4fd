// Package utils holds the CLI plumbing shared by ghpush commands.
//
// ConfigurationLoader layers embedded defaults, an optional configuration file
// and GHPUSH_* environment variables through Viper; LoggerFactory builds the
// zap loggers used for diagnostics.
package utils
