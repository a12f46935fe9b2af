// Package opensearch wraps the official OpenSearch client with typed
// configuration and a startup healthcheck. pkg/search builds the forum's
// post index on top of it.
package opensearch
