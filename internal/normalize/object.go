package normalize

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// object is an upstream JSON object with its folded-key index built once.
type object struct {
	raw    map[string]any
	folded map[string]any
}

func asObject(v any) (*object, bool) {
	raw, ok := v.(map[string]any)
	if !ok || raw == nil {
		return nil, false
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	folded := make(map[string]any, len(raw))
	for _, k := range keys {
		if raw[k] == nil {
			continue
		}
		fk := fold(k)
		if _, taken := folded[fk]; !taken {
			folded[fk] = raw[k]
		}
	}
	return &object{raw: raw, folded: folded}, true
}

func fold(key string) string {
	k := strings.ToLower(strings.TrimSpace(key))
	k = strings.TrimSuffix(k, "__c")
	k = strings.TrimSuffix(k, "__r")
	return strings.ReplaceAll(k, "_", "")
}

// lookup returns the first non-null value among the aliases.
func (o *object) lookup(aliases []string) (any, bool) {
	for _, a := range aliases {
		if v, ok := o.raw[a]; ok && v != nil {
			return v, true
		}
	}
	for _, a := range aliases {
		if v, ok := o.folded[fold(a)]; ok {
			return v, true
		}
	}
	return nil, false
}

func (o *object) str(aliases []string) *string {
	v, ok := o.lookup(aliases)
	if !ok {
		return nil
	}
	return toString(v)
}

func (o *object) integer(aliases []string) *int {
	v, ok := o.lookup(aliases)
	if !ok {
		return nil
	}
	return toInt(v)
}

func (o *object) timestamp(aliases []string) *time.Time {
	v, ok := o.lookup(aliases)
	if !ok {
		return nil
	}
	return toTime(v)
}

// ref resolves a reference that may be a bare id or an embedded object.
func (o *object) ref(aliases []string, idAliases []string) *string {
	for _, a := range aliases {
		v, ok := o.lookupOne(a)
		if !ok {
			continue
		}
		if id := refID(v, idAliases); id != nil {
			return id
		}
	}
	return nil
}

// embedded returns the first alias whose value is an object.
func (o *object) embedded(aliases []string) (*object, bool) {
	for _, a := range aliases {
		v, ok := o.lookupOne(a)
		if !ok {
			continue
		}
		if obj, ok := asObject(v); ok {
			return obj, true
		}
	}
	return nil, false
}

func (o *object) lookupOne(alias string) (any, bool) {
	if v, ok := o.raw[alias]; ok && v != nil {
		return v, true
	}
	v, ok := o.folded[fold(alias)]
	return v, ok
}

func refID(v any, idAliases []string) *string {
	if obj, ok := asObject(v); ok {
		return obj.str(idAliases)
	}
	return toString(v)
}

// list accepts a JSON array or a {records: [...]} wrapper.
func list(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case map[string]any:
		if obj, ok := asObject(t); ok {
			if records, ok := obj.lookup([]string{"records"}); ok {
				if arr, ok := records.([]any); ok {
					return arr
				}
			}
		}
	}
	return nil
}

func toString(v any) *string {
	var s string
	switch t := v.(type) {
	case string:
		s = strings.TrimSpace(t)
	case json.Number:
		s = t.String()
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil
		}
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		s = strconv.Itoa(t)
	case int64:
		s = strconv.FormatInt(t, 10)
	default:
		return nil
	}
	if s == "" {
		return nil
	}
	return &s
}

func toInt(v any) *int {
	var f float64
	switch t := v.(type) {
	case int:
		return &t
	case int64:
		n := int(t)
		return &n
	case float64:
		f = t
	case json.Number:
		if n, err := t.Int64(); err == nil {
			i := int(n)
			return &i
		}
		parsed, err := t.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return nil
	}
	n := int(f)
	return &n
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000-0700",
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05.000Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func toTime(v any) *time.Time {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				utc := parsed.UTC()
				return &utc
			}
		}
		return nil
	case json.Number, float64, int, int64:
		n := toInt64(t)
		if n == nil || *n <= 0 {
			return nil
		}
		var ts time.Time
		if *n > 1e11 {
			ts = time.UnixMilli(*n).UTC()
		} else {
			ts = time.Unix(*n, 0).UTC()
		}
		return &ts
	}
	return nil
}

func toInt64(v any) *int64 {
	switch t := v.(type) {
	case int:
		n := int64(t)
		return &n
	case int64:
		return &t
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) || math.Abs(t) > math.MaxInt64/2 {
			return nil
		}
		n := int64(t)
		return &n
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return &n
		}
	}
	return nil
}
