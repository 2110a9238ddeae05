// Package viz renders analysis results in the terminal.
//
//   - [Curve] and [Line]: asciigraph charts of exponent sweeps and distances
//   - [BifurcationPlot] and [PhasePlot]: Braille scatter plots on a [Canvas]
//   - [Heatmap]: shaded character grid of a plane sweep
//   - [RunWithProgress]: Bubble Tea progress line driven by sweep.Progress
package viz
