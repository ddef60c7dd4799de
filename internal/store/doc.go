// Package store defines interfaces for mastery record persistence.
// These interfaces abstract the underlying data storage mechanism from
// the application's core logic, allowing scheduling rules to remain
// independent of specific database technologies or persistence details.
package store
