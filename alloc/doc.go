// Package alloc provides the packer's three-budget capacity model and the
// linear-alloc cost estimator it is measured against.
//
// # Overview
//
// A bin (dex) is admitted classes against three independent budgets:
// linear-alloc bytes, unique method refs, and unique field refs. RefSet
// tracks the accumulated state of one bin and answers "would adding this
// class overflow?"; EstimateLinearAlloc computes the fixed, reproducible
// per-class byte estimate the budget is measured in.
//
// # Bug-compatible ref comparison
//
// The ref-cap comparisons are strict '<' on the admitted total (spec's
// Open Question): the largest a bin's ref set can grow to is cap-1. The
// original source comments this as possibly meant to be '>' instead;
// this package preserves the '≥ overflow' behavior deliberately, and
// TestRefSet_LargestAdmittedIsCapMinusOne pins it down.
package alloc
