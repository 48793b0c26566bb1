// Package file stores history documents as JSON files in a local directory.
package file
