package gmt

import (
	"cmp"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// Alias maps a readable parameter name to a single-letter GMT flag. Sep, when
// set, joins list values into one argument ("-R0/10/0/5"); otherwise a list
// repeats the flag.
type Alias struct {
	Flag string
	Name string
	Sep  string
}

// Aliases is a module's table of accepted parameters.
type Aliases []Alias

// Lookup finds the alias whose Name or Flag is key.
func (a Aliases) Lookup(key string) (Alias, bool) {
	i := slices.IndexFunc(a, func(al Alias) bool { return al.Name == key || al.Flag == key })
	if i < 0 {
		return Alias{}, false
	}
	return a[i], true
}

// Params are module parameters keyed by alias name or flag.
type Params map[string]any

// BuildArgs renders params as a GMT argument string, ordered by flag.
//
//	true            -F
//	false, nil      omitted
//	scalar          -Fvalue
//	slice           -Fa<Sep>b, or -Fa -Fb when the alias has no Sep
func BuildArgs(aliases Aliases, params Params) (string, error) {
	type arg struct {
		flag string
		text string
	}
	var args []arg
	seen := make(map[string]string, len(params))
	for _, key := range slices.Sorted(maps.Keys(params)) {
		al, ok := aliases.Lookup(key)
		if !ok {
			return "", &UnrecognizedOptionError{Option: key}
		}
		if prev, dup := seen[al.Flag]; dup {
			return "", fmt.Errorf("%w: %q and %q both set -%s", ErrInvalidInput, prev, key, al.Flag)
		}
		seen[al.Flag] = key
		values, err := encodeParam(al, params[key])
		if err != nil {
			return "", fmt.Errorf("%w: %s: %w", ErrInvalidInput, key, err)
		}
		for _, v := range values {
			args = append(args, arg{flag: al.Flag, text: "-" + al.Flag + v})
		}
	}
	slices.SortStableFunc(args, func(a, b arg) int { return cmp.Compare(a.flag, b.flag) })
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.text
	}
	return strings.Join(parts, " "), nil
}

// encodeParam returns the text following the flag for each argument v
// produces.
func encodeParam(al Alias, v any) ([]string, error) {
	switch v := v.(type) {
	case nil:
		return nil, nil
	case bool:
		if v {
			return []string{""}, nil
		}
		return nil, nil
	case string:
		return []string{v}, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		s, err := scalar(v)
		if err != nil {
			return nil, err
		}
		return []string{s}, nil
	}
	items := make([]string, rv.Len())
	for i := range items {
		s, err := scalar(rv.Index(i).Interface())
		if err != nil {
			return nil, err
		}
		items[i] = s
	}
	if al.Sep != "" {
		return []string{strings.Join(items, al.Sep)}, nil
	}
	return items, nil
}

func scalar(v any) (string, error) {
	switch v := v.(type) {
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 32), nil
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 64), nil
	}
	return "", fmt.Errorf("unsupported value type %T", v)
}
