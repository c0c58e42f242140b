package wasmhost

import (
	"fmt"
	"strings"
	"unicode"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/rttr/export"
)

// Describe renders rec as a WIT-like resource declaration. Members without a
// core value mapping are left out.
func Describe(res export.Resolver, rec *export.RecordData) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "resource %s {\n", kebab(rec.Name))

	for _, c := range rec.Ctors {
		if params, ok := witParams(res, &c.FunctionData); ok {
			fmt.Fprintf(&sb, "  constructor(%s);\n", params)
		}
	}
	for _, m := range rec.Methods {
		describeFunc(&sb, res, "", &m.FunctionData)
	}
	for _, m := range rec.StaticMethods {
		describeFunc(&sb, res, "static ", &m.FunctionData)
	}
	for _, m := range rec.ExternMethods {
		describeFunc(&sb, res, "static ", &m.FunctionData)
	}
	for _, f := range rec.Fields {
		if v, err := classify(res, f.GoType); err == nil && v.kind == valueScalar {
			fmt.Fprintf(&sb, "  %s: %s;\n", kebab(f.Name), witString(v.scalar.wit))
		}
	}

	sb.WriteString("}\n")
	return sb.String()
}

func describeFunc(sb *strings.Builder, res export.Resolver, prefix string, fd *export.FunctionData) {
	params, ok := witParams(res, fd)
	if !ok {
		return
	}
	ret, err := classifyResult(res, fd.RetGoType)
	if err != nil {
		return
	}
	fmt.Fprintf(sb, "  %s: %sfunc(%s)", memberName(fd.Name), prefix, params)
	if ret != nil {
		fmt.Fprintf(sb, " -> %s", witString(witResult(*ret)))
	}
	sb.WriteString(";\n")
}

func witParams(res export.Resolver, fd *export.FunctionData) (string, bool) {
	parts := make([]string, len(fd.Params))
	for i, p := range fd.Params {
		v, err := classify(res, p.GoType)
		if err != nil {
			return "", false
		}
		parts[i] = kebab(paramName(p, i)) + ": " + witString(witParam(v))
	}
	return strings.Join(parts, ", "), true
}

func resourceDef(rec *export.RecordData) *wit.TypeDef {
	name := kebab(rec.Name)
	return &wit.TypeDef{Name: &name, Kind: &wit.Resource{}}
}

func witParam(v value) wit.Type {
	if v.kind == valueScalar {
		return v.scalar.wit
	}
	return &wit.TypeDef{Kind: &wit.Borrow{Type: resourceDef(v.rec)}}
}

func witResult(v value) wit.Type {
	switch v.kind {
	case valueScalar:
		return v.scalar.wit
	case valueCopy:
		return &wit.TypeDef{Kind: &wit.Own{Type: resourceDef(v.rec)}}
	default:
		return &wit.TypeDef{Kind: &wit.Borrow{Type: resourceDef(v.rec)}}
	}
}

func witString(t wit.Type) string {
	switch v := t.(type) {
	case wit.Bool:
		return "bool"
	case wit.U8:
		return "u8"
	case wit.S8:
		return "s8"
	case wit.U16:
		return "u16"
	case wit.S16:
		return "s16"
	case wit.U32:
		return "u32"
	case wit.S32:
		return "s32"
	case wit.U64:
		return "u64"
	case wit.S64:
		return "s64"
	case wit.F32:
		return "f32"
	case wit.F64:
		return "f64"
	case *wit.TypeDef:
		switch k := v.Kind.(type) {
		case *wit.Own:
			return "own<" + witString(k.Type) + ">"
		case *wit.Borrow:
			return "borrow<" + witString(k.Type) + ">"
		}
		if v.Name != nil {
			return *v.Name
		}
		return "typedef"
	default:
		return fmt.Sprintf("%T", t)
	}
}

// memberName keeps operator names readable in WIT position.
func memberName(name string) string {
	switch name {
	case "=":
		return "assign"
	case "==":
		return "equals"
	}
	return kebab(name)
}

// kebab converts a Go identifier to WIT's kebab-case: "BoundingBox" becomes
// "bounding-box", "ID" stays "id".
func kebab(name string) string {
	runes := []rune(name)
	var sb strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]) && unicode.IsUpper(runes[i-1]))) {
				sb.WriteByte('-')
			}
			sb.WriteRune(unicode.ToLower(r))
			continue
		}
		if r == '_' {
			sb.WriteByte('-')
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
