package logging

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

const componentKey = "component"

// Formatter renders one line per entry: time, level, [component], message, then the remaining
// fields sorted by key.
type Formatter struct {
	TimestampFormat string
	DisableColors   bool
}

var _ logrus.Formatter = &Formatter{}

// Format implements logrus.Formatter.
func (f *Formatter) Format(entry *logrus.Entry) ([]byte, error) {
	var levelColor *color.Color
	switch entry.Level {
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		levelColor = color.New(color.FgRed, color.Bold)
	case logrus.WarnLevel:
		levelColor = color.New(color.FgYellow, color.Bold)
	case logrus.InfoLevel:
		levelColor = color.New(color.FgCyan)
	default:
		levelColor = color.New(color.FgWhite, color.Faint)
	}
	levelText := strings.ToUpper(entry.Level.String())
	if !f.DisableColors {
		levelText = levelColor.Sprint(levelText)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s: ", entry.Time.Format(f.TimestampFormat), levelText)
	if component, ok := entry.Data[componentKey]; ok {
		fmt.Fprintf(&b, "[%v] ", component)
	}
	b.WriteString(entry.Message)

	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		if k != componentKey {
			keys = append(keys, k)
		}
	}
	if len(keys) > 0 {
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%s=%v", k, entry.Data[k])
		}
		fields := " {" + strings.Join(parts, ", ") + "}"
		if !f.DisableColors {
			fields = color.New(color.FgWhite, color.Faint).Sprint(fields)
		}
		b.WriteString(fields)
	}
	b.WriteByte('\n')
	return []byte(b.String()), nil
}
