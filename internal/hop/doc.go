// Package hop turns the textual output of a route-tracing probe into hop
// records and classifies them.
//
// [Parser] is stateless: it maps a single output line of either the Unix
// (traceroute -n) or the Windows (tracert -d) dialect to a [Record], or
// reports that the line is not a hop line. [Classify] assigns one
// [Category] to a record given the preceding classified hop of the same
// trace, and [Classifier] sequences it across a trace.
//
// Typical usage:
//
//	p := hop.NewParser(hop.DialectUnix)
//	var c hop.Classifier
//	for _, line := range lines {
//		if rec, ok := p.ParseLine(line); ok {
//			classified := c.Next(rec)
//			// emit classified
//		}
//	}
package hop
