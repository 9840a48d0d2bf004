package trace

import (
	"strconv"
	"time"
)

// Kind represents the type of trace event.
type Kind uint8

const (
	KindBegin Kind = iota + 1
	KindEnd
	KindPoint
	KindHeartbeat // периодический сигнал живости
)

var kindNames = [...]string{
	KindBegin:     "begin",
	KindEnd:       "end",
	KindPoint:     "point",
	KindHeartbeat: "heartbeat",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}

// Scope indicates how deep into a check the event sits.
type Scope uint8

const (
	ScopeDriver Scope = iota + 1 // команда CLI, обход каталога
	ScopeUnit                    // один .decl файл
	ScopePass                    // parse, resolve, coherence
	ScopeNode                    // отдельные impl-ы
)

var scopeNames = [...]string{
	ScopeDriver: "driver",
	ScopeUnit:   "unit",
	ScopePass:   "pass",
	ScopeNode:   "node",
}

func (s Scope) String() string {
	if int(s) < len(scopeNames) && scopeNames[s] != "" {
		return scopeNames[s]
	}
	return "unknown"
}

// Attr is one key/value pair attached to an event. Order is preserved.
type Attr struct {
	Key   string
	Value string
}

func Str(key, value string) Attr { return Attr{Key: key, Value: value} }

func Int(key string, value int) Attr { return Attr{Key: key, Value: strconv.Itoa(value)} }

func Bool(key string, value bool) Attr { return Attr{Key: key, Value: strconv.FormatBool(value)} }

// Event is a single trace record.
//
// Unit and Pass are inherited from the enclosing spans, so an event emitted
// deep inside the coherence pass still says which file it belongs to.
type Event struct {
	Time     time.Time
	Seq      uint64
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64
	Name     string
	Unit     string        // путь проверяемого файла; пусто на уровне драйвера
	Pass     string        // текущая фаза внутри единицы
	Elapsed  time.Duration // только для KindEnd
	Attrs    []Attr
}
