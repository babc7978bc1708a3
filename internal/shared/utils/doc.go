// Package utils provides text folding and validation helpers.
//
// Folding:
//   - Fold: Diacritic stripping plus Unicode case folding (golang.org/x/text)
//   - ContainsFolded: Case and accent insensitive substring containment
//
// Validation:
//   - Item id, rename label and query length checks for the HTTP surface
//
// Example Usage:
//
//	utils.ContainsFolded("Café Finder", "cafe") // true
//	err := utils.ValidateLabel(label)
package utils
