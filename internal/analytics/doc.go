// Package analytics turns a user's expenses and a date-range selector into
// display-ready statistics: totals and averages, a category breakdown, a
// daily or monthly time series and, for month views, a budget projection.
//
// Every function here is pure. Aggregating the same inputs twice yields
// identical output; the only ambient input is the injected now function
// used to decide whether a month is the current one.
package analytics
