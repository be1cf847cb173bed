// AngelaMos | 2026
// doc.go

// Package repository provides Base, a generic CRUD repository over one
// bun model with optional default scope and post-fetch hydration.
package repository
