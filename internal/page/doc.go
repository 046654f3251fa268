// Package page holds the served HTML document.
//
// Parse builds the DOM with golang.org/x/net/html. Discover finds elements carrying a marker class in document
// order and exposes each as a domain.TextTarget; writes go straight into the DOM so Render always reflects the
// live (possibly scrambled) text, and every write is forwarded to the attached domain.ChangePublisher.
package page
