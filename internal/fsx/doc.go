// Package fsx provides the filesystem primitives the store depends on:
// atomic replace-on-write for the database files and tree copying for
// skeleton population.
package fsx
