// Package bench measures the serial and parallel encryption paths against each other.
//
// Every figure it reports is measured wall-clock time: speedup is the ratio of the
// serial to the parallel total, and CPU usage is sampled while the parallel path runs.
// Records are persisted as JSON and CSV under a results directory.
package bench
