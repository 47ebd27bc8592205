// Package migrations holds the storefront's schema changes. Each file
// registers its migrations from init(); cmd/fastbite imports the package for
// that side effect.
package migrations
