package logging

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category names a class of personally identifying data.
type Category string

const (
	CategoryEmail      Category = "email"
	CategoryPhone      Category = "phone"
	CategorySSN        Category = "ssn"
	CategoryCreditCard Category = "credit_card"
	CategoryIPAddress  Category = "ip_address"
	CategoryAPIKey     Category = "api_key"
)

// Token is the replacement written in place of a match.
func (c Category) Token() string {
	return "[REDACTED " + strings.ToUpper(string(c)) + "]"
}

type rule struct {
	category Category
	re       *regexp.Regexp
}

// Rules are applied in this order; earlier replacements are never re-matched
// by later rules because the tokens contain no digits or '@'.
var defaultRules = []rule{
	{CategoryEmail, regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)},
	{CategoryPhone, regexp.MustCompile(`\b\d{3}[-.]?\d{3}[-.]?\d{4}\b`)},
	{CategorySSN, regexp.MustCompile(`\b\d{3}-?\d{2}-?\d{4}\b`)},
	{CategoryCreditCard, regexp.MustCompile(`\b\d{4}[- ]?\d{4}[- ]?\d{4}[- ]?\d{4}\b`)},
	{CategoryIPAddress, regexp.MustCompile(`\b\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}\b`)},
	{CategoryAPIKey, regexp.MustCompile(`(?i)(api[_-]?key|secret[_-]?key|access[_-]?token)[=:]\s*[\w\-.]+`)},
}

type Redactor struct {
	rules []rule
}

func NewRedactor() *Redactor {
	return &Redactor{rules: defaultRules}
}

func (r *Redactor) Redact(text string) string {
	for _, ru := range r.rules {
		text = ru.re.ReplaceAllLiteralString(text, ru.category.Token())
	}
	return text
}

// Fields returns a copy of fields with every textual value scrubbed.
// Composite values are flattened to JSON first so nested strings are covered.
func (r *Redactor) Fields(fields []zapcore.Field) []zapcore.Field {
	if len(fields) == 0 {
		return fields
	}
	out := make([]zapcore.Field, len(fields))
	for i, f := range fields {
		out[i] = r.field(f)
	}
	return out
}

func (r *Redactor) field(f zapcore.Field) zapcore.Field {
	switch f.Type {
	case zapcore.StringType:
		f.String = r.Redact(f.String)
		return f
	case zapcore.ErrorType:
		if err, ok := f.Interface.(error); ok && err != nil {
			return zap.String(f.Key, r.Redact(safeString(err, err.Error)))
		}
	case zapcore.StringerType:
		if s, ok := f.Interface.(fmt.Stringer); ok && s != nil {
			return zap.String(f.Key, r.Redact(safeString(s, s.String)))
		}
	case zapcore.ByteStringType:
		if b, ok := f.Interface.([]byte); ok {
			return zap.String(f.Key, r.Redact(string(b)))
		}
	case zapcore.ReflectType, zapcore.ArrayMarshalerType, zapcore.ObjectMarshalerType:
		return r.composite(f)
	}
	return f
}

// safeString calls render the way zap's encoder does: a nil pointer receiver
// reads "<nil>" and any other panic is reported as PANIC=<value>.
func safeString(v any, render func() string) (out string) {
	defer func() {
		if p := recover(); p != nil {
			if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
				out = "<nil>"
				return
			}
			out = fmt.Sprintf("PANIC=%v", p)
		}
	}()
	return render()
}

func (r *Redactor) composite(f zapcore.Field) zapcore.Field {
	enc := zapcore.NewMapObjectEncoder()
	f.AddTo(enc)
	raw, err := json.Marshal(enc.Fields[f.Key])
	if err != nil {
		return zap.String(f.Key, r.Redact(fmt.Sprintf("%v", enc.Fields[f.Key])))
	}
	scrubbed := r.Redact(string(raw))
	if !json.Valid([]byte(scrubbed)) {
		return zap.String(f.Key, scrubbed)
	}
	return zap.Reflect(f.Key, json.RawMessage(scrubbed))
}

// redactingCore scrubs entries before the wrapped core encodes them.
type redactingCore struct {
	zapcore.Core
	redactor *Redactor
}

func NewRedactingCore(inner zapcore.Core, redactor *Redactor) zapcore.Core {
	return &redactingCore{Core: inner, redactor: redactor}
}

func (c *redactingCore) With(fields []zapcore.Field) zapcore.Core {
	return &redactingCore{
		Core:     c.Core.With(c.redactor.Fields(fields)),
		redactor: c.redactor,
	}
}

func (c *redactingCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *redactingCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	ent.Message = c.redactor.Redact(ent.Message)
	return c.Core.Write(ent, c.redactor.Fields(fields))
}
