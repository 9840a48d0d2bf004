package trace

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Format selects how events are written.
type Format uint8

const (
	FormatText   Format = iota + 1 // одна строка на событие, с отступом по scope
	FormatNDJSON                   // одна JSON-запись на строку
)

// FormatFor picks the format from the output path: .ndjson/.jsonl/.json mean NDJSON.
func FormatFor(path string) Format {
	for _, ext := range []string{".ndjson", ".jsonl", ".json"} {
		if strings.HasSuffix(path, ext) {
			return FormatNDJSON
		}
	}
	return FormatText
}

// FormatEvent renders ev with a trailing newline.
func FormatEvent(ev *Event, format Format) []byte {
	if format == FormatNDJSON {
		return formatNDJSON(ev)
	}
	return formatText(ev)
}

type jsonEvent struct {
	Time      string            `json:"time"`
	Seq       uint64            `json:"seq"`
	Kind      string            `json:"kind"`
	Scope     string            `json:"scope"`
	SpanID    uint64            `json:"span,omitempty"`
	ParentID  uint64            `json:"parent,omitempty"`
	Name      string            `json:"name"`
	Unit      string            `json:"unit,omitempty"`
	Pass      string            `json:"pass,omitempty"`
	ElapsedUS int64             `json:"elapsed_us,omitempty"`
	Attrs     map[string]string `json:"attrs,omitempty"`
}

func formatNDJSON(ev *Event) []byte {
	j := jsonEvent{
		Time:      ev.Time.UTC().Format(time.RFC3339Nano),
		Seq:       ev.Seq,
		Kind:      ev.Kind.String(),
		Scope:     ev.Scope.String(),
		SpanID:    ev.SpanID,
		ParentID:  ev.ParentID,
		Name:      ev.Name,
		Unit:      ev.Unit,
		Pass:      ev.Pass,
		ElapsedUS: ev.Elapsed.Microseconds(),
	}
	if len(ev.Attrs) > 0 {
		j.Attrs = make(map[string]string, len(ev.Attrs))
		for _, a := range ev.Attrs {
			j.Attrs[a.Key] = a.Value
		}
	}
	data, err := json.Marshal(j)
	if err != nil {
		// в jsonEvent только строки и числа
		data = fmt.Appendf(nil, `{"seq":%d,"error":%q}`, ev.Seq, err.Error())
	}
	return append(data, '\n')
}

var kindMarks = [...]string{
	KindBegin:     "▸",
	KindEnd:       "◂",
	KindPoint:     "•",
	KindHeartbeat: "♡",
}

// formatText: `15:04:05.000 #12     ◂ resolve [lib.decl] traits=2 in 310µs`
func formatText(ev *Event) []byte {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s #%d ", ev.Time.Format("15:04:05.000"), ev.Seq)
	if ev.Scope > ScopeDriver {
		sb.WriteString(strings.Repeat("  ", int(ev.Scope-ScopeDriver)))
	}
	if int(ev.Kind) < len(kindMarks) {
		sb.WriteString(kindMarks[ev.Kind])
		sb.WriteByte(' ')
	}
	sb.WriteString(ev.Name)
	if ev.Unit != "" && ev.Scope != ScopeUnit {
		fmt.Fprintf(&sb, " [%s]", ev.Unit)
	} else if ev.Unit != "" {
		sb.WriteByte(' ')
		sb.WriteString(ev.Unit)
	}
	for _, a := range ev.Attrs {
		fmt.Fprintf(&sb, " %s=%s", a.Key, a.Value)
	}
	if ev.Kind == KindEnd {
		fmt.Fprintf(&sb, " in %s", ev.Elapsed.Round(time.Microsecond))
	}
	sb.WriteByte('\n')
	return []byte(sb.String())
}
