// Package cli constructs the ghpush command-line interface, wiring the Cobra
// command hierarchy, the Viper-backed configuration loader, structured zap
// logging, and the lazily resolved GitHub session shared by every command.
package cli
