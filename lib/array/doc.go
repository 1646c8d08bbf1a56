// Package array defines the storage contract for script arrays and the
// property layer built on top of it.
//
// Key Components:
//
//   - IndexedArray Interface: The contract every storage engine satisfies.
//     Index operations (Get, Has, Put, Delete), length handling (Length,
//     SetLength), enumeration and the two sort entry points, GC marking,
//     persistence (Save, Load) and feature discovery (SupportsFeature, GetInfo).
//
//   - Constants: MaxArrayIndex, SparseArrayCutoff and MinDensityMultiplier plus
//     IncreasedVectorLength and IsDenseEnoughForVector. Engines that keep a
//     dense vector must use exactly this growth arithmetic.
//
//   - Instance: The name based view of an array. It parses property names into
//     indices, handles the "length" property including the range check, and
//     stores every other name in a generic property table.
//
//   - Comparators: StringComparator (the default sort order), NumericComparator,
//     Reverse and the SortOrder names used by stores and the command line.
//
// Index redirection: 0xFFFFFFFF and non canonical names are not array indices.
// Engines report this with a false return instead of an error and Instance
// routes such accesses to the named property table.
//
// Engines live in the engines/ subdirectory, a reusable conformance suite in
// testing/.
package array
