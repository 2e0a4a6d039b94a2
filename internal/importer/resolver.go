package importer

import (
	"fmt"
	"strconv"
	"strings"
)

// fieldLabels maps each domain field to the column labels it may appear
// under in uploaded files. Staff spreadsheets use Georgian and English
// headers interchangeably; new synonyms belong here, not in code.
var fieldLabels = map[string][]string{
	"trackingCode": {"tracking code", "code", "tracking", "კოდი", "ტრექინგ კოდი"},
	"sender":       {"sender", "გამგზავნი", "გამომგზავნი"},
	"recipient":    {"recipient", "receiver", "მიმღები"},
	"phone":        {"phone", "phone number", "ტელეფონი", "ტელ"},
	"weight":       {"weight", "kg", "წონა"},
	"city":         {"city", "ქალაქი"},
	"paymentNote":  {"payment", "payment note", "გადახდა", "თანხა"},
	"date":         {"date", "თარიღი"},
	"status":       {"status", "სტატუსი"},
}

// resolveRaw finds a value under any of the candidate labels, tolerating
// case, internal whitespace and period differences, with a substring
// containment fallback. First match wins; empty and "null"/"undefined"
// values count as absent.
func resolveRaw(record RawRecord, candidates []string) (interface{}, bool) {
	for _, candidate := range candidates {
		if value, ok := lookupLabel(record.Values, candidate); ok {
			if present(value) {
				return value, true
			}
			return nil, false
		}
	}
	return nil, false
}

// resolveString is resolveRaw with the value coerced to a trimmed string.
func resolveString(record RawRecord, candidates []string) (string, bool) {
	value, ok := resolveRaw(record, candidates)
	if !ok {
		return "", false
	}
	return coerceString(value), true
}

func lookupLabel(values map[string]interface{}, candidate string) (interface{}, bool) {
	// 1: exact key
	if value, ok := values[candidate]; ok {
		return value, true
	}

	// 2: case-insensitive
	for key, value := range values {
		if strings.EqualFold(key, candidate) {
			return value, true
		}
	}

	// 3: whitespace collapsed
	squashedCandidate := squashSpaces(candidate)
	for key, value := range values {
		if strings.EqualFold(squashSpaces(key), squashedCandidate) {
			return value, true
		}
	}

	// 4: periods removed
	normalizedCandidate := normalizeLabel(candidate)
	for key, value := range values {
		if normalizeLabel(key) == normalizedCandidate {
			return value, true
		}
	}

	// 5: substring containment, either direction
	for key, value := range values {
		normalizedKey := normalizeLabel(key)
		if normalizedKey == "" {
			continue
		}
		if strings.Contains(normalizedKey, normalizedCandidate) || strings.Contains(normalizedCandidate, normalizedKey) {
			return value, true
		}
	}

	return nil, false
}

func squashSpaces(s string) string {
	return strings.Join(strings.Fields(s), "")
}

func normalizeLabel(s string) string {
	return strings.ToLower(strings.ReplaceAll(squashSpaces(s), ".", ""))
}

func present(value interface{}) bool {
	s, ok := value.(string)
	if !ok {
		return value != nil
	}
	switch strings.TrimSpace(s) {
	case "", "null", "undefined":
		return false
	}
	return true
}

func coerceString(value interface{}) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
