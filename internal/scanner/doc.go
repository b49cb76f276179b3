// Package scanner matches byte content against signature rules loaded from a
// YAML rule file.
//
// A rule names one or more strings (literal text, hex bytes or regular
// expressions) and a condition deciding whether any or all of them must be
// present. The rule set is swapped atomically on reload, so scans in flight
// always see a complete set.
package scanner
