// Package ragdoc answers questions over a documentation site.
// It resolves a sitemap, crawls the listed pages, extracts their main
// content, chunks and embeds it into a vector index, and answers natural
// language questions from the retrieved chunks.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, pinecone/, openai/).
package ragdoc
