// Package pagechunk ingests a small set of web pages, extracts titled
// sections from their HTML, cleans and deduplicates them, and produces
// stable, content-addressed chunks for embedding and retrieval.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, goquery/, qdrant/).
package pagechunk
