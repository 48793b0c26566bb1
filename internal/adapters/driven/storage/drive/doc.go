// Package drive stores history documents as JSON files in a Google Drive
// folder. Documents are looked up by file name within the folder.
package drive
