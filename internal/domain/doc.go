// Package domain contains the catalog entities (countries and hotels), the
// identity and token value types, paging types and the sentinel errors shared
// by every layer. It has no dependencies on storage or transport.
package domain
