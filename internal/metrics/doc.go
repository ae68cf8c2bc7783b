// Package metrics records build metrics.
//
// Components depend on the Recorder interface and default to NoopRecorder.
// PrometheusRecorder keeps the values in a prometheus registry and, when a
// text file path is configured, writes them in the node_exporter textfile
// collector format after every build.
package metrics
