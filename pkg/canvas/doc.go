// Package canvas turns Canvas LMS API resources into the dashboard dataset.
//
// An Aggregator runs one sequential pass: the active course list of the
// current user, then assignments and modules of every available course.
// Course-list failures fail the pass; per-course detail failures degrade to
// empty lists so one broken course never hides the others.
package canvas
