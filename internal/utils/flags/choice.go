package flags

import (
	"fmt"
	"strings"
)

const (
	choiceSeparatorConstant    = "|"
	choicePlaceholderTemplate  = "<%s>"
	choiceUsageTemplate        = "`%s` %s"
	choiceInvalidValueTemplate = "invalid value %q; expected one of %s"
)

// choiceList holds trimmed, case-insensitively unique choices in declaration order.
type choiceList []string

func newChoiceList(choices []string) choiceList {
	list := make(choiceList, 0, len(choices))
	for _, choice := range choices {
		trimmed := strings.TrimSpace(choice)
		if len(trimmed) == 0 || list.index(trimmed) >= 0 {
			continue
		}
		list = append(list, trimmed)
	}
	return list
}

func (list choiceList) index(value string) int {
	for position, choice := range list {
		if strings.EqualFold(choice, strings.TrimSpace(value)) {
			return position
		}
	}
	return -1
}

// placeholder renders <a|B|c> with the highlighted choice upper-cased.
func (list choiceList) placeholder(highlighted string) string {
	highlightedIndex := -1
	if len(strings.TrimSpace(highlighted)) > 0 {
		highlightedIndex = list.index(highlighted)
	}

	rendered := make([]string, len(list))
	for position, choice := range list {
		rendered[position] = choice
		if position == highlightedIndex {
			rendered[position] = strings.ToUpper(choice)
		}
	}
	return fmt.Sprintf(choicePlaceholderTemplate, strings.Join(rendered, choiceSeparatorConstant))
}

// FormatChoiceUsage renders flag usage as `<cli|NATIVE>` description, upper-casing the default.
func FormatChoiceUsage(defaultChoice string, choices []string, description string) string {
	usage := fmt.Sprintf(choiceUsageTemplate, newChoiceList(choices).placeholder(defaultChoice), strings.TrimSpace(description))
	return strings.TrimSpace(usage)
}

// NormalizeChoice returns the lower-case form of value when it matches one of
// the choices, and an error listing the accepted values otherwise.
func NormalizeChoice(value string, choices []string) (string, error) {
	list := newChoiceList(choices)
	if list.index(value) < 0 {
		return "", fmt.Errorf(choiceInvalidValueTemplate, value, list.placeholder(""))
	}
	return strings.ToLower(strings.TrimSpace(value)), nil
}
