package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.starlark.net/starlark"

	"github.com/caseflow/caseflow/pkg/workflow"
)

// placeholderRe matches one {{ expression }} placeholder in a report
// template.
var placeholderRe = regexp.MustCompile(`\{\{\s*(.*?)\s*\}\}`)

// ReportInput carries everything report generation needs.
type ReportInput struct {
	Case *workflow.Case

	// Template is the report deliverable's body from the spec document.
	Template string

	// Results maps artifact base names to their decoded JSON documents.
	// The first results artifact's top-level entries are additionally
	// available by bare key.
	Results map[string]interface{}

	// Now stamps the report; injected so repeated runs with a fixed clock
	// produce byte-identical documents.
	Now time.Time

	// Version identifies the generating binary in the footer.
	Version string
}

// GenerateReport renders the report document: a title header, the template
// body with every {{ expr }} placeholder evaluated against the results,
// and a provenance footer. Any expression error or leftover placeholder
// aborts generation; a report is never written with holes in it.
func GenerateReport(in ReportInput) (string, error) {
	env, err := reportEnv(in)
	if err != nil {
		return "", err
	}

	var evalErr error
	body := placeholderRe.ReplaceAllStringFunc(in.Template, func(match string) string {
		if evalErr != nil {
			return match
		}
		expr := placeholderRe.FindStringSubmatch(match)[1]
		rendered, err := evalExpr(expr, env)
		if err != nil {
			evalErr = workflow.NewParseError(in.Case.ID,
				fmt.Sprintf("report expression %q: %v", expr, err))
			return match
		}
		return rendered
	})
	if evalErr != nil {
		return "", evalErr
	}
	if strings.Contains(body, "{{") {
		return "", workflow.NewParseError(in.Case.ID, "report contains an unresolved placeholder")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Report: Case %s: %s\n\n", in.Case.ID, in.Case.Title)
	fmt.Fprintf(&b, "Version: caseflow %s\n", in.Version)
	fmt.Fprintf(&b, "Date: %s\n\n", in.Now.Format("2006-01-02"))
	b.WriteString(strings.Trim(body, "\n"))
	b.WriteString("\n\n---\n")
	fmt.Fprintf(&b, "Generated by caseflow %s at %s.\n", in.Version, in.Now.Format(time.RFC3339))
	return b.String(), nil
}

// reportEnv builds the Starlark environment: each results artifact under
// its base name, the first artifact's top-level keys directly, and a
// "case" dict with id, topic and title.
func reportEnv(in ReportInput) (starlark.StringDict, error) {
	env := starlark.StringDict{
		"round": starlark.NewBuiltin("round", builtinRound),
	}
	caseInfo, err := toStarlark(map[string]interface{}{
		"id":    in.Case.ID,
		"topic": in.Case.TopicID,
		"title": in.Case.Title,
	})
	if err != nil {
		return nil, err
	}
	env["case"] = caseInfo

	results := starlark.NewDict(len(in.Results))
	for name, doc := range in.Results {
		val, err := toStarlark(doc)
		if err != nil {
			return nil, fmt.Errorf("results artifact %s: %w", name, err)
		}
		if err := results.SetKey(starlark.String(name), val); err != nil {
			return nil, err
		}
	}
	env["results"] = results

	if first, ok := in.Results[in.firstArtifact()].(map[string]interface{}); ok {
		for key, val := range first {
			if _, taken := env[key]; taken {
				continue
			}
			sv, err := toStarlark(val)
			if err != nil {
				return nil, err
			}
			env[key] = sv
		}
	}
	return env, nil
}

func (in ReportInput) firstArtifact() string {
	for _, d := range in.Case.Deliverables {
		if d.Kind == workflow.KindResults {
			return baseName(d.Path)
		}
	}
	return ""
}

func baseName(path string) string {
	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		path = path[idx+1:]
	}
	return strings.TrimSuffix(path, ".json")
}

func evalExpr(expr string, env starlark.StringDict) (string, error) {
	thread := &starlark.Thread{Name: "report"}
	val, err := starlark.Eval(thread, "report.star", expr, env)
	if err != nil {
		return "", err
	}
	return formatValue(val)
}

// formatValue renders an expression result for inline substitution.
func formatValue(v starlark.Value) (string, error) {
	switch val := v.(type) {
	case starlark.String:
		return string(val), nil
	case starlark.Int:
		return val.String(), nil
	case starlark.Float:
		return strconv.FormatFloat(float64(val), 'g', -1, 64), nil
	case starlark.Bool:
		if bool(val) {
			return "true", nil
		}
		return "false", nil
	default:
		return "", fmt.Errorf("expression result has non-scalar type %s", v.Type())
	}
}

func toStarlark(v interface{}) (starlark.Value, error) {
	switch val := v.(type) {
	case nil:
		return starlark.None, nil
	case bool:
		return starlark.Bool(val), nil
	case float64:
		return starlark.Float(val), nil
	case int:
		return starlark.MakeInt(val), nil
	case int64:
		return starlark.MakeInt64(val), nil
	case string:
		return starlark.String(val), nil
	case []interface{}:
		list := make([]starlark.Value, len(val))
		for i, item := range val {
			sv, err := toStarlark(item)
			if err != nil {
				return nil, err
			}
			list[i] = sv
		}
		return starlark.NewList(list), nil
	case map[string]interface{}:
		dict := starlark.NewDict(len(val))
		for k, item := range val {
			sv, err := toStarlark(item)
			if err != nil {
				return nil, err
			}
			if err := dict.SetKey(starlark.String(k), sv); err != nil {
				return nil, err
			}
		}
		return dict, nil
	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}

// builtinRound implements round(x, ndigits=0) for report expressions.
func builtinRound(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var x starlark.Float
	var ndigits int64
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "x", &x, "ndigits?", &ndigits); err != nil {
		return nil, err
	}
	shift := 1.0
	for i := int64(0); i < ndigits; i++ {
		shift *= 10
	}
	f := float64(x) * shift
	rounded := float64(int64(f + copysign(f)))
	return starlark.Float(rounded / shift), nil
}

func copysign(f float64) float64 {
	if f < 0 {
		return -0.5
	}
	return 0.5
}
