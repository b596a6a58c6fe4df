package flags

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/pflag"
)

const (
	toggleInvalidValueTemplateConstant = "invalid toggle value %q"
	toggleUsageTemplateConstant        = "`%s` %s"
	toggleEnabledPlaceholderConstant   = "<YES|no>"
	toggleDisabledPlaceholderConstant  = "<yes|NO>"
	longFlagPrefixConstant             = "--"
	shortFlagPrefixConstant            = "-"
	flagValueSeparatorConstant         = "="
	toggleValueTypeConstant            = "bool"
	argumentListTerminatorConstant     = "--"
)

var toggleLiterals = map[string]bool{
	"true": true, "yes": true, "on": true, "1": true, "t": true, "y": true,
	"false": false, "no": false, "off": false, "0": false, "f": false, "n": false,
}

// registeredToggles remembers every toggle name and shorthand so that
// NormalizeToggleArguments can run before Cobra resolves the subcommand.
var registeredToggles = struct {
	sync.RWMutex
	names map[string]struct{}
}{names: map[string]struct{}{}}

// AddToggleFlag registers a boolean flag that also accepts yes/no, on/off, and
// similar literals, either as --name=value or, after NormalizeToggleArguments,
// as --name value. A bare --name means true.
func AddToggleFlag(flagSet *pflag.FlagSet, target *bool, name string, shorthand string, defaultValue bool, usage string) {
	if flagSet == nil || len(name) == 0 {
		return
	}

	value := &toggleValue{enabled: defaultValue, target: target}
	if target != nil {
		*target = defaultValue
	}

	placeholder := toggleDisabledPlaceholderConstant
	if defaultValue {
		placeholder = toggleEnabledPlaceholderConstant
	}
	flag := flagSet.VarPF(value, name, shorthand, strings.TrimSpace(fmt.Sprintf(toggleUsageTemplateConstant, placeholder, strings.TrimSpace(usage))))
	flag.NoOptDefVal = strconv.FormatBool(true)

	registeredToggles.Lock()
	defer registeredToggles.Unlock()
	registeredToggles.names[longFlagPrefixConstant+name] = struct{}{}
	if len(shorthand) > 0 {
		registeredToggles.names[shortFlagPrefixConstant+shorthand] = struct{}{}
	}
}

// NormalizeToggleArguments joins a registered toggle with a following toggle
// literal, so "--fetch no" becomes "--fetch=no". Other arguments, and everything
// after "--", pass through unchanged.
func NormalizeToggleArguments(arguments []string) []string {
	if len(arguments) == 0 {
		return nil
	}

	normalized := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		current := arguments[index]
		if current == argumentListTerminatorConstant {
			return append(normalized, arguments[index:]...)
		}

		hasFollowingLiteral := index+1 < len(arguments) && isToggleLiteral(arguments[index+1])
		if hasFollowingLiteral && isRegisteredToggle(current) {
			normalized = append(normalized, current+flagValueSeparatorConstant+arguments[index+1])
			index++
			continue
		}
		normalized = append(normalized, current)
	}
	return normalized
}

func isRegisteredToggle(argument string) bool {
	if strings.Contains(argument, flagValueSeparatorConstant) {
		return false
	}
	registeredToggles.RLock()
	defer registeredToggles.RUnlock()
	_, registered := registeredToggles.names[argument]
	return registered
}

func isToggleLiteral(argument string) bool {
	_, known := toggleLiterals[strings.ToLower(strings.TrimSpace(argument))]
	return known
}

type toggleValue struct {
	enabled bool
	target  *bool
}

func (value *toggleValue) Set(rawValue string) error {
	trimmed := strings.ToLower(strings.TrimSpace(rawValue))
	if len(trimmed) == 0 {
		trimmed = strconv.FormatBool(true)
	}
	enabled, known := toggleLiterals[trimmed]
	if !known {
		return fmt.Errorf(toggleInvalidValueTemplateConstant, rawValue)
	}

	value.enabled = enabled
	if value.target != nil {
		*value.target = enabled
	}
	return nil
}

func (value *toggleValue) String() string {
	if value == nil {
		return strconv.FormatBool(false)
	}
	return strconv.FormatBool(value.enabled)
}

func (value *toggleValue) Type() string {
	return toggleValueTypeConstant
}
