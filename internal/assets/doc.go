// Package assets serves the built client bundle.
//
// Files come from an Origin: a local directory (the build output) or an S3
// bucket the bundles were uploaded to. The build writes a manifest mapping
// plain names to fingerprinted ones; a Resolver turns "bundle.js" into the
// URL the page should reference, and fingerprinted files are served as
// immutable.
package assets
