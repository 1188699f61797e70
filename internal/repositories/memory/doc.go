// Package memory holds in-process implementations of the repository
// interfaces. They back the "memory" storage driver and the service tests.
// Every repository hands out copies, so callers never share state with the store.
package memory
