// Package bootstrap runs the process startup sequence. Each startup dependency
// carries a Policy: a Required dependency that fails aborts startup, while a
// BestEffort dependency that fails is logged and the sequence continues.
package bootstrap
