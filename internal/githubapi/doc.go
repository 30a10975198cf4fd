// Package githubapi talks to the GitHub REST API for ghpush workflows.
//
// It exposes typed request and response structures for the repository and
// contents endpoints, an immutable ClientConfiguration constructed once at
// startup, and an HTTPClient seam so interactions with GitHub can be served
// from httptest servers during testing.
package githubapi
