// Package view combines pull-based baseline rows with live store state into
// the values, freshness flags and status labels shown to operators.
//
// Every function here is pure: callers pass the current time and whatever
// live state they read from the store.
package view
