// Copyright (c) 2024-2025 Fernando Libedinsky
// SPDX-License-Identifier: AGPL-3.0-or-later

package transcript

import (
	"fmt"

	"go.uber.org/zap"
)

// ValidationCard is one well-formed document-validation record, ready to
// render: filename, a type badge, and either a success notice or the list
// of rejection causes.
type ValidationCard struct {
	DocumentName string
	DocumentType string
	Valid        bool
	Causes       []string
}

// requiredRecordFields are the keys every classify_documents record must
// carry. A record missing any of them is skipped, not repaired.
var requiredRecordFields = []string{"document_name", "document_type", "causes", "is_valid"}

// ParseValidationRecords converts raw classify_documents records into
// cards. Each malformed record is skipped with a diagnostic; the remaining
// records still render. Parsing never fails as a whole.
func ParseValidationRecords(records []map[string]any, logger *zap.Logger) []ValidationCard {
	if logger == nil {
		logger = zap.NewNop()
	}

	cards := make([]ValidationCard, 0, len(records))
	for i, rec := range records {
		card, err := parseRecord(rec)
		if err != nil {
			logger.Warn("skipping malformed document validation record",
				zap.Int("index", i),
				zap.Error(err))
			continue
		}
		cards = append(cards, card)
	}
	return cards
}

func parseRecord(rec map[string]any) (ValidationCard, error) {
	for _, key := range requiredRecordFields {
		if _, ok := rec[key]; !ok {
			return ValidationCard{}, fmt.Errorf("missing field %q", key)
		}
	}

	name, ok := rec["document_name"].(string)
	if !ok {
		return ValidationCard{}, fmt.Errorf("document_name is not a string")
	}
	docType, ok := rec["document_type"].(string)
	if !ok {
		return ValidationCard{}, fmt.Errorf("document_type is not a string")
	}
	valid, ok := rec["is_valid"].(bool)
	if !ok {
		return ValidationCard{}, fmt.Errorf("is_valid is not a boolean")
	}
	causes, err := parseCauses(rec["causes"])
	if err != nil {
		return ValidationCard{}, err
	}

	return ValidationCard{
		DocumentName: name,
		DocumentType: docType,
		Valid:        valid,
		Causes:       causes,
	}, nil
}

// parseCauses accepts the shapes the backend has been seen to emit: a list
// of strings, or a single string.
func parseCauses(v any) ([]string, error) {
	switch causes := v.(type) {
	case nil:
		return nil, nil
	case string:
		if causes == "" {
			return nil, nil
		}
		return []string{causes}, nil
	case []any:
		out := make([]string, 0, len(causes))
		for _, c := range causes {
			s, ok := c.(string)
			if !ok {
				return nil, fmt.Errorf("cause is not a string: %v", c)
			}
			out = append(out, s)
		}
		return out, nil
	case []string:
		return causes, nil
	default:
		return nil, fmt.Errorf("causes has unsupported type %T", v)
	}
}
