package logruspretty

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// PrettyHandler is a logrus formatter for local development: colored
// level, short timestamp, fields rendered as compact JSON.
type PrettyHandler struct {
	out io.Writer
}

func NewPrettyHandler(out io.Writer) *PrettyHandler {
	return &PrettyHandler{out: out}
}

func (h *PrettyHandler) Format(entry *logrus.Entry) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(entry.Time.Format("15:04:05.000"))
	buf.WriteByte(' ')
	buf.WriteString(coloredLevel(entry.Level))
	buf.WriteByte(' ')
	buf.WriteString(entry.Message)

	if len(entry.Data) > 0 {
		keys := make([]string, 0, len(entry.Data))
		for k := range entry.Data {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		fields := make(map[string]any, len(entry.Data))
		for _, k := range keys {
			fields[k] = fmt.Sprint(entry.Data[k])
		}
		encoded, err := json.MarshalIndent(fields, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal log fields: %w", err)
		}
		buf.WriteByte(' ')
		buf.Write(encoded)
	}

	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func coloredLevel(level logrus.Level) string {
	name := strings.ToUpper(level.String())
	switch level {
	case logrus.DebugLevel:
		return fmt.Sprintf("\x1b[35m%s\x1b[0m", name)
	case logrus.InfoLevel:
		return fmt.Sprintf("\x1b[34m%s\x1b[0m", name)
	case logrus.WarnLevel:
		return fmt.Sprintf("\x1b[33m%s\x1b[0m", name)
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		return fmt.Sprintf("\x1b[31m%s\x1b[0m", name)
	default:
		return name
	}
}
