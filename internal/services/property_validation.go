package services

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"

	"github.com/angryss/idp-engine/internal/models"
	appErr "github.com/angryss/idp-engine/pkg/errors"
)

// propertyRules is the validation rule vocabulary a PropertySchema may carry.
// Numeric bounds accept JSON numbers or numeric strings.
type propertyRules struct {
	MinLength      *int            `json:"minLength,omitempty"`
	MaxLength      *int            `json:"maxLength,omitempty"`
	Pattern        string          `json:"pattern,omitempty"`
	PatternMessage string          `json:"patternMessage,omitempty"`
	Min            json.RawMessage `json:"min,omitempty"`
	Max            json.RawMessage `json:"max,omitempty"`
	MinItems       *int            `json:"minItems,omitempty"`
	MaxItems       *int            `json:"maxItems,omitempty"`
}

// ValidateProperties checks a resource configuration against its mapping's
// property schemas. Missing optional values with defaults are filled in.
// Unknown keys are rejected. All violations are collected and returned in a
// single invalid error with per-field details.
func ValidateProperties(schemas []models.PropertySchema, config map[string]any) error {
	byName := make(map[string]*models.PropertySchema, len(schemas))
	for i := range schemas {
		byName[schemas[i].Name] = &schemas[i]
	}

	var violations []string

	for name := range config {
		if _, ok := byName[name]; !ok {
			violations = append(violations, fmt.Sprintf("%s: unknown property", name))
		}
	}

	for _, schema := range schemas {
		value, present := config[schema.Name]
		if !present || value == nil || value == "" {
			if schema.DefaultValue != "" {
				config[schema.Name] = schema.DefaultValue
				value = schema.DefaultValue
			} else if schema.Required {
				violations = append(violations, fmt.Sprintf("%s: required property is missing", schema.Name))
				continue
			} else {
				continue
			}
		}

		if msg := checkValue(&schema, value); msg != "" {
			violations = append(violations, fmt.Sprintf("%s: %s", schema.Name, msg))
		}
	}

	if len(violations) > 0 {
		return appErr.New(appErr.CodeInvalid, "resource configuration is invalid").
			WithMeta("violations", violations)
	}
	return nil
}

func checkValue(schema *models.PropertySchema, value any) string {
	rules, err := parseRules(schema.Rules)
	if err != nil {
		return "invalid validation rules on schema"
	}

	switch schema.DataType {
	case models.PropertyString:
		s, ok := value.(string)
		if !ok {
			return "expected a string"
		}
		return checkString(s, rules)
	case models.PropertyNumber:
		n, ok := asNumber(value)
		if !ok {
			return "expected a number"
		}
		return checkNumber(n, rules)
	case models.PropertyBoolean:
		if _, ok := asBool(value); !ok {
			return "expected a boolean"
		}
		return ""
	case models.PropertyList:
		items, ok := value.([]any)
		if !ok {
			return "expected a list"
		}
		return checkList(items, rules)
	default:
		return fmt.Sprintf("unknown data type %q", schema.DataType)
	}
}

func checkString(s string, rules propertyRules) string {
	if rules.MinLength != nil && len(s) < *rules.MinLength {
		return fmt.Sprintf("must be at least %d characters", *rules.MinLength)
	}
	if rules.MaxLength != nil && len(s) > *rules.MaxLength {
		return fmt.Sprintf("must be at most %d characters", *rules.MaxLength)
	}
	if rules.Pattern != "" {
		re, err := regexp.Compile(rules.Pattern)
		if err != nil {
			return "invalid pattern on schema"
		}
		if !re.MatchString(s) {
			if rules.PatternMessage != "" {
				return rules.PatternMessage
			}
			return fmt.Sprintf("must match pattern %s", rules.Pattern)
		}
	}
	return ""
}

func checkNumber(n float64, rules propertyRules) string {
	if min, ok := ruleNumber(rules.Min); ok && n < min {
		return fmt.Sprintf("must be at least %v", min)
	}
	if max, ok := ruleNumber(rules.Max); ok && n > max {
		return fmt.Sprintf("must be at most %v", max)
	}
	return ""
}

func checkList(items []any, rules propertyRules) string {
	if rules.MinItems != nil && len(items) < *rules.MinItems {
		return fmt.Sprintf("must have at least %d items", *rules.MinItems)
	}
	if rules.MaxItems != nil && len(items) > *rules.MaxItems {
		return fmt.Sprintf("must have at most %d items", *rules.MaxItems)
	}
	return ""
}

func parseRules(raw []byte) (propertyRules, error) {
	var rules propertyRules
	if len(raw) == 0 {
		return rules, nil
	}
	if err := json.Unmarshal(raw, &rules); err != nil {
		return rules, err
	}
	return rules, nil
}

// ruleNumber reads a numeric bound that may be stored as a number or a
// numeric string.
func ruleNumber(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

func asNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		n, err := v.Float64()
		return n, err == nil
	case string:
		n, err := strconv.ParseFloat(v, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

func asBool(value any) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		switch v {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	}
	return false, false
}
