/*Package flightquery runs a distributed aggregation query over a large
on-disk table of commercial flight records: for every aircraft, find the
earliest calendar month at which it appears.

The table is an immutable, column-major numeric matrix produced by an
external preprocessing step, memory-mapped rather than loaded, so tables
far larger than working memory can be queried. Each aircraft identifier
defines one independent partition; the driver fans one task per aircraft
out over a bounded worker pool and assembles the answers back into a
plain-text report in dispatch order.

Tasks are embarrassingly parallel and purely read-only. They can run as
goroutines in-process or as invocations of a deployed AWS Lambda
function, with each worker fetching its own copy of the table from S3.
*/
package flightquery
