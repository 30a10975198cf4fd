// Package upload copies a local directory tree into a GitHub repository branch.
//
// Service walks the tree, drops paths containing an ignored segment, and for
// each remaining file looks up the current version token before issuing a
// create-or-update write through the contents API. Every file produces a
// FileResult; individual lookup or write failures never stop the walk.
package upload
