// Package rulegrid provides rule-rewriting procedural generation
// machinery.
//
// The execution engine is in package 'core', grid and rule primitives
// in 'grid' and 'rule', pipeline composition in 'gen', model files in
// 'model', snapshots in 'checkpoint', and the command-line tool in
// `cmd/rulegrid`.
package rulegrid
