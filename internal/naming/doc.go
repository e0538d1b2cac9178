// Package naming turns raw archive paths into canonical media records.
//
// Each archive type gets a dedicated parser: the slides parser matches a
// strict token grammar and resolves album numbers through a lookup table,
// while the portable drive parser derives album names from folder structure
// and simplifies filenames with an ordered rule list. Both are pure: the
// same path always produces the same record.
package naming
