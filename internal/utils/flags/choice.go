package flags

import (
	"fmt"
	"slices"
	"strings"
)

const (
	choiceListSeparatorConstant    = "|"
	choicePlaceholderTemplate      = "<%s>"
	choiceUsageTemplate            = "`%s` %s"
	choiceValueTypeConstant        = "choice"
	unsupportedChoiceErrorTemplate = "unsupported value %q: must be one of %s"
)

// ChoiceValue is a pflag.Value accepting one of a fixed, case-insensitive set of choices.
// Accepted input is stored lower-cased in the bound target.
type ChoiceValue struct {
	target  *string
	choices []string
}

// NewChoiceValue binds target to choices and seeds it with defaultChoice.
func NewChoiceValue(target *string, defaultChoice string, choices []string) *ChoiceValue {
	value := &ChoiceValue{target: target, choices: normalizeChoices(choices)}
	*target = strings.ToLower(strings.TrimSpace(defaultChoice))
	return value
}

// Set implements pflag.Value.
func (value *ChoiceValue) Set(input string) error {
	normalizedInput := strings.ToLower(strings.TrimSpace(input))
	if len(value.choices) > 0 && !slices.Contains(value.choices, normalizedInput) {
		return fmt.Errorf(unsupportedChoiceErrorTemplate, input, strings.Join(value.choices, choiceListSeparatorConstant))
	}
	*value.target = normalizedInput
	return nil
}

// String implements pflag.Value.
func (value *ChoiceValue) String() string {
	if value == nil || value.target == nil {
		return ""
	}
	return *value.target
}

// Type implements pflag.Value.
func (value *ChoiceValue) Type() string {
	return choiceValueTypeConstant
}

// FormatChoiceUsage renders "`<a|B|c>` description", upper-casing the default choice.
func FormatChoiceUsage(defaultChoice string, choices []string, description string) string {
	defaultKey := strings.ToLower(strings.TrimSpace(defaultChoice))
	labels := normalizeChoices(choices)
	for labelIndex, label := range labels {
		if label == defaultKey {
			labels[labelIndex] = strings.ToUpper(label)
		}
	}

	placeholder := fmt.Sprintf(choicePlaceholderTemplate, strings.Join(labels, choiceListSeparatorConstant))
	trimmedDescription := strings.TrimSpace(description)
	if len(trimmedDescription) == 0 {
		return "`" + placeholder + "`"
	}
	return fmt.Sprintf(choiceUsageTemplate, placeholder, trimmedDescription)
}

// normalizeChoices lower-cases and trims choices, dropping blanks and duplicates while keeping order.
func normalizeChoices(choices []string) []string {
	normalized := make([]string, 0, len(choices))
	for _, choice := range choices {
		key := strings.ToLower(strings.TrimSpace(choice))
		if len(key) == 0 || slices.Contains(normalized, key) {
			continue
		}
		normalized = append(normalized, key)
	}
	return normalized
}
