// Package scrollspy tracks which of a page's regions is most visible and
// publishes its id as reactive state.
//
// Users import this single package for the tracker API: region refs,
// sessions, activation bands, and the host capabilities a page must
// provide. The page subpackage is a ready-made host.
package scrollspy
