// Package export writes analysis results as images: PNG through gonum/plot
// and hand-built SVG.
package export
