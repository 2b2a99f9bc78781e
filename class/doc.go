// Package class defines the capability interfaces the packer consumes to
// read a universe of classes and, on rare occasions, mint a new synthetic
// one.
//
// Every type here is opaque on purpose: binary format parsing, the
// intermediate-code instruction walker, and construction of concrete class
// and type objects all live outside this module. The packer only ever
// asks a Class what it needs to know, gathers its references, and
// otherwise treats it as a handle.
package class
