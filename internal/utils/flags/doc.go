// Package flags binds the shared flag shapes used by ghpush commands: choice
// flags with highlighted defaults, yes/no toggles, and the branch and
// confirmation flags.
package flags
