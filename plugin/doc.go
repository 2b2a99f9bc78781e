// Package plugin defines the packer's extension points. A Plugin can
// contribute extra refs to a class's estimate, veto placing a class at
// all, append classes of its own once a bin is otherwise full, or supply a
// final batch of leftover classes once every dex has been considered.
//
// Each capability is also exposed as its own single-method interface so a
// plugin implementing only one of the four need not stub the rest; the
// driver recovers them from a Plugin value with a type assertion.
package plugin
