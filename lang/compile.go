package lang

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
)

// queryEnv builds the expr-lang environment for a query. Dictionaries shadow
// constants, which shadow the builtins.
func (doc *Document) queryEnv() map[string]any {
	env := makeEnvCache()

	env["env"] = envFunc(buildProcessEnvMap(doc.opts.processEnv))

	for name, v := range doc.constants.All() {
		env[name] = v.ToNative()
	}

	for name, v := range doc.root.All() {
		env[name] = v.ToNative()
	}

	return env
}

// Query compiles and runs an expr-lang expression against the document.
//
// Top-level dictionaries are visible as maps by name, and constants as
// their native values. The builtins env(key), mung.prefix(key, items...),
// and a few filesystem helpers are also available.
func (doc *Document) Query(ctx context.Context, source string) (any, error) {
	source = strings.TrimSpace(source)
	env := doc.queryEnv()

	program, err := expr.Compile(source, expr.Env(env))
	if err != nil {
		return nil, ErrQueryCompile.Wrap(err).
			With(slog.String("source", source))
	}

	result, err := expr.Run(program, env)
	if err != nil {
		return nil, ErrQueryEvaluate.Wrap(err).
			With(slog.String("source", source))
	}

	doc.logger.TraceContext(ctx, "query",
		slog.String("source", source),
		slog.String("result_type", resultTypeName(result)))

	return result, nil
}

// QueryNames returns the names visible at the top level of a query, sorted.
func (doc *Document) QueryNames() []string {
	names := make(map[string]struct{})

	for _, name := range BuiltinEnvKeys() {
		names[name] = struct{}{}
	}

	for _, name := range doc.ConstantNames() {
		names[name] = struct{}{}
	}

	for _, name := range doc.Names() {
		names[name] = struct{}{}
	}

	return slices.Sorted(maps.Keys(names))
}

// FormatResult formats a query result or a [Value] in configuration
// language literal syntax where one exists.
func FormatResult(result any) string {
	var sb strings.Builder

	writeResult(&sb, result)

	return sb.String()
}

func writeResult(sb *strings.Builder, v any) {
	switch val := v.(type) {
	case nil:
		sb.WriteString("nil")

	case Value:
		writeResult(sb, val.ToNative())

	case bool:
		sb.WriteString(strconv.FormatBool(val))

	case int:
		sb.WriteString(strconv.Itoa(val))

	case int64:
		sb.WriteString(strconv.FormatInt(val, 10))

	case float64:
		sb.WriteString(formatFloat(val))

	case string:
		sb.WriteString(`"` + val + `"`)

	case []any:
		sb.WriteByte('{')

		for i, e := range val {
			if i > 0 {
				sb.WriteString(". ")
			}

			writeResult(sb, e)
		}

		sb.WriteByte('}')

	case map[string]any:
		sb.WriteString("begin")

		for _, k := range slices.Sorted(maps.Keys(val)) {
			sb.WriteString(" " + k + " := ")
			writeResult(sb, val[k])
			sb.WriteByte(';')
		}

		sb.WriteString(" end;")

	default:
		fmt.Fprintf(sb, "%v", val)
	}
}

// resultTypeName names the dynamic type of a query result for logging.
func resultTypeName(value any) string {
	if value == nil {
		return "nil"
	}

	return reflect.TypeOf(value).String()
}
