// Package prompt implements interactive confirmation prompts used before
// destructive repository operations.
package prompt
