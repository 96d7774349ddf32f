// Package manifest loads manifest fragments and folds them into the active
// manifest. It also resolves per-repository settings through profile
// inheritance, selects target repositories by group and derives snapshots.
//
// Fragments are layered in increasing priority. Profiles are replaced
// wholesale, repositories are overlaid field by field, and keys starting
// with "x-" pass through untouched.
package manifest
