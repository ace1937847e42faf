// Package exporter writes assignment due dates as an iCalendar feed.
package exporter
