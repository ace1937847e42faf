// Command canvaspal aggregates Canvas LMS courses, assignments and modules into
// a searchable dashboard, rotating over several API tokens.
package main

func main() {
	Execute()
}
