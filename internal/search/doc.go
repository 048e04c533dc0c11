// Package search keeps an in-memory bleve index of tasks and jobs.
//
// The index subscribes to entity change events and mirrors every write, so
// search results follow the database without querying it. It is rebuilt
// from the stores at startup with Reindex.
//
// Queries use the bleve query string syntax. Bare terms search every text
// field and any one of them may match; +term requires a term and -term
// excludes it. field:value restricts a term to one field, where id,
// minSalary and maxSalary match exactly. Quoted text is a phrase. An empty
// query or "*" matches everything.
package search
