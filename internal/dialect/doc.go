// Package dialect spots code written in another shading language (GLSL,
// WGSL, Metal) so that a failed compile can say so.
//
// Evidence collection never changes preprocessing, parsing or analysis;
// callers decide whether a classification is strong enough to report.
package dialect
