package utils

import (
	"maps"
	"slices"
)

// MergeHeaders merges multiple header maps with later maps having higher precedence
func MergeHeaders(hh ...map[string]string) map[string]string {
	m := map[string]string{}
	for _, h := range hh {
		maps.Copy(m, h)
	}
	return m
}

// SortedKeys returns the keys of m in lexical order
func SortedKeys(m map[string]string) []string {
	return slices.Sorted(maps.Keys(m))
}
