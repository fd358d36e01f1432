package engine

import (
	"regexp"
	"strings"
)

// placeholderPattern matches {{placeholder}} tokens in message templates
var placeholderPattern = regexp.MustCompile(`\{\{([a-z_]+)\}\}`)

// Fixed fallbacks for personalization fields that may be empty on a lead
const (
	fallbackName   = "Cliente"
	fallbackCourse = "nossos cursos"
)

// Vars carries the personalization values available to a template
type Vars struct {
	Name         string
	Course       string
	Organization string
	CampaignName string
}

// Render substitutes template placeholders with personalization values.
// Empty name/course fall back to fixed defaults; unknown placeholders are
// left untouched. Rendering is total: it never fails, whatever the input.
func Render(template string, vars Vars) string {
	fields := map[string]string{
		"name":          fallback(vars.Name, fallbackName),
		"course":        fallback(vars.Course, fallbackCourse),
		"organization":  vars.Organization,
		"campaign_name": vars.CampaignName,
	}

	return placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		field := strings.Trim(match, "{}")
		if value, ok := fields[field]; ok {
			return value
		}
		// Unknown placeholder stays literal so authors can spot the typo
		return match
	})
}

func fallback(value, def string) string {
	if value == "" {
		return def
	}
	return value
}
