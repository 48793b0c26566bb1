// Package github stores history documents as files in a GitHub repository
// through the contents API.
package github
