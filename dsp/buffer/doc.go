// Package buffer provides a fixed-capacity sample history for streaming
// analysis. A [Ring] keeps the most recent N samples of an unbounded input so
// a block transform can be computed every hop without reallocating.
package buffer
