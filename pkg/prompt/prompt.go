// Package prompt collects template parameter values interactively, with
// environment overrides for automation.
package prompt

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"

	"github.com/skysim-labs/skysim/pkg/simconfig"
	"github.com/skysim-labs/skysim/pkg/templates"
)

// ForParameters prompts for each template parameter and returns the
// collected values keyed by parameter name.
//
// Setting SKYSIM_SKIP_PROMPTS=true answers every prompt from the
// SKYSIM_<NAME> environment variable or the parameter default, which is
// how batch submissions run without a terminal.
func ForParameters(params []templates.Parameter) (map[string]any, error) {
	result := make(map[string]any)

	for _, param := range params {
		value, err := forParameter(param)
		if err != nil {
			return nil, fmt.Errorf("failed to get %s: %w", param.Name, err)
		}
		result[param.Name] = value
	}
	return result, nil
}

// Apply writes collected parameter values into the document at each
// parameter's dotted key.
func Apply(doc simconfig.Document, params []templates.Parameter, values map[string]any) error {
	for _, param := range params {
		value, ok := values[param.Name]
		if !ok || value == nil {
			continue
		}
		if err := doc.Set(param.Key, value); err != nil {
			return fmt.Errorf("failed to apply %s: %w", param.Name, err)
		}
	}
	return nil
}

func envKey(name string) string {
	return "SKYSIM_" + strings.ToUpper(name)
}

func forParameter(param templates.Parameter) (any, error) {
	if os.Getenv("SKYSIM_SKIP_PROMPTS") == "true" {
		if envValue := os.Getenv(envKey(param.Name)); envValue != "" {
			return parseEnvValue(envValue, param)
		}
		if param.Default != nil {
			return param.Default, nil
		}
		if param.Required {
			return nil, fmt.Errorf("required parameter %s not provided and no default available", param.Name)
		}
		return nil, nil
	}

	// An environment value becomes the prompt default.
	if envValue := os.Getenv(envKey(param.Name)); envValue != "" {
		if parsed, err := parseEnvValue(envValue, param); err == nil {
			param.Default = parsed
		}
	}

	switch param.Type {
	case "integer":
		return promptInteger(param)
	case "float":
		return promptFloat(param)
	case "string":
		return promptString(param)
	case "boolean":
		return promptBoolean(param)
	default:
		return nil, fmt.Errorf("unsupported parameter type: %s", param.Type)
	}
}

func parseEnvValue(value string, param templates.Parameter) (any, error) {
	switch param.Type {
	case "integer":
		return strconv.Atoi(value)
	case "float":
		return strconv.ParseFloat(value, 64)
	case "string":
		return value, nil
	case "boolean":
		return strconv.ParseBool(value)
	default:
		return nil, fmt.Errorf("unsupported parameter type: %s", param.Type)
	}
}

func promptInteger(param templates.Parameter) (int, error) {
	defaultStr := ""
	if param.Default != nil {
		switch v := param.Default.(type) {
		case int:
			defaultStr = strconv.Itoa(v)
		case float64:
			defaultStr = strconv.Itoa(int(v))
		}
	}

	prompt := &survey.Input{
		Message: param.Description,
		Default: defaultStr,
	}

	var result string
	if err := survey.AskOne(prompt, &result, survey.WithValidator(survey.Required)); err != nil {
		return 0, err
	}

	value, err := strconv.Atoi(result)
	if err != nil {
		return 0, fmt.Errorf("invalid integer: %w", err)
	}

	if param.Min != nil && value < toInt(param.Min) {
		return 0, fmt.Errorf("value must be at least %d", toInt(param.Min))
	}
	if param.Max != nil && value > toInt(param.Max) {
		return 0, fmt.Errorf("value must be at most %d", toInt(param.Max))
	}
	return value, nil
}

func promptFloat(param templates.Parameter) (float64, error) {
	defaultStr := ""
	if param.Default != nil {
		defaultStr = fmt.Sprintf("%v", param.Default)
	}

	prompt := &survey.Input{
		Message: param.Description,
		Default: defaultStr,
	}

	var result string
	if err := survey.AskOne(prompt, &result, survey.WithValidator(survey.Required)); err != nil {
		return 0, err
	}

	value, err := strconv.ParseFloat(result, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number: %w", err)
	}

	if param.Min != nil && value < toFloat64(param.Min) {
		return 0, fmt.Errorf("value must be at least %g", toFloat64(param.Min))
	}
	if param.Max != nil && value > toFloat64(param.Max) {
		return 0, fmt.Errorf("value must be at most %g", toFloat64(param.Max))
	}
	return value, nil
}

func promptString(param templates.Parameter) (string, error) {
	defaultStr := ""
	if param.Default != nil {
		defaultStr = fmt.Sprintf("%v", param.Default)
	}

	if len(param.Options) > 0 {
		prompt := &survey.Select{
			Message: param.Description,
			Options: param.Options,
			Default: defaultStr,
		}

		var result string
		if err := survey.AskOne(prompt, &result); err != nil {
			return "", err
		}
		return result, nil
	}

	prompt := &survey.Input{
		Message: param.Description,
		Default: defaultStr,
	}

	var validators []survey.Validator
	if param.Required {
		validators = append(validators, survey.Required)
	}

	var result string
	if err := survey.AskOne(prompt, &result, survey.WithValidator(survey.ComposeValidators(validators...))); err != nil {
		return "", err
	}
	return result, nil
}

func promptBoolean(param templates.Parameter) (bool, error) {
	defaultBool := false
	if param.Default != nil {
		switch v := param.Default.(type) {
		case bool:
			defaultBool = v
		case string:
			defaultBool = v == "true" || v == "yes" || v == "1"
		}
	}

	prompt := &survey.Confirm{
		Message: param.Description,
		Default: defaultBool,
	}

	var result bool
	if err := survey.AskOne(prompt, &result); err != nil {
		return false, err
	}
	return result, nil
}

func toInt(v any) int {
	switch val := v.(type) {
	case int:
		return val
	case float64:
		return int(val)
	case string:
		i, _ := strconv.Atoi(val)
		return i
	default:
		return 0
	}
}

func toFloat64(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		f, _ := strconv.ParseFloat(val, 64)
		return f
	default:
		return 0
	}
}
