package utils

import "strconv"

// UniqueStrings returns the non-empty values of slice in first-seen order.
func UniqueStrings(slice []string) []string {
	seen := make(map[string]struct{}, len(slice))
	unique := make([]string, 0, len(slice))
	for _, v := range slice {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		unique = append(unique, v)
	}
	return unique
}

// FormatBool renders the "true"/"false" literals the admin API expects in form fields.
func FormatBool(b bool) string {
	return strconv.FormatBool(b)
}
