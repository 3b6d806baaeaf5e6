// Package connectors holds the knowledge sources documents are read from.
// Each source implements driven.KnowledgeSource.
//
// Only the local filesystem is supported: see package filesystem.
package connectors
