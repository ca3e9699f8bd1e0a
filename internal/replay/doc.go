// Package replay tracks recently accepted authorization codes so a replayed
// code is rejected locally instead of being re-sent to the provider.
package replay
