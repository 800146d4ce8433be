package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// RenderDefaultYAML renders a commented config file holding every default.
func RenderDefaultYAML() string {
	var b strings.Builder
	b.WriteString("# markview configuration\n")

	var sectionOrder []string
	sections := make(map[string][]ConfigOption)

	for _, o := range GetConfigOptions() {
		section, key, nested := strings.Cut(o.Key, ".")
		if !nested {
			writeYAMLOption(&b, "", o.Key, o.Default, o.Comment)
			continue
		}
		if _, ok := sections[section]; !ok {
			sectionOrder = append(sectionOrder, section)
		}
		sections[section] = append(sections[section], ConfigOption{Key: key, Default: o.Default, Comment: o.Comment})
	}

	for _, section := range sectionOrder {
		b.WriteString("\n" + section + ":\n")
		for _, o := range sections[section] {
			writeYAMLOption(&b, "  ", o.Key, o.Default, o.Comment)
		}
	}
	return b.String()
}

func writeYAMLOption(b *strings.Builder, indent, key string, value any, comment string) {
	if comment != "" {
		b.WriteString(indent + "# " + comment + "\n")
	}
	fmt.Fprintf(b, "%s%s: %s\n", indent, key, formatValue(value))
}

func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		return strconv.Quote(val)
	case time.Duration:
		return strconv.Quote(val.String())
	default:
		return fmt.Sprint(val)
	}
}
