package parseradapter

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/shivasurya/code-pathfinder/archrules/model"
)

// compilationUnit accumulates facts for one .java file: its package, import
// table (simple name -> best-effort FQN), and the types/methods/fields/call
// edges discovered while walking the parse tree. One compilationUnit is
// built per worker-parsed file (internal/parseradapter.parseOneFile), then
// merged sequentially into a modelbuilder.Builder.
type compilationUnit struct {
	file    string
	src     []byte
	pkg     string
	resolve bool              // Options.ResolveSymbols
	imports map[string]string // simple name -> fqn

	types   []model.Type
	methods []model.Method
	fields  []model.Field
	edges   []model.CallEdge

	// fieldTypes is populated per type as its body is walked, so method
	// bodies parsed afterward can resolve "this.x" / bare-field receivers
	// to a declared type. Keyed by containing type FQN, then field simple
	// name.
	fieldTypes map[string]map[string]string
}

func newCompilationUnit(file string, src []byte, resolve bool) *compilationUnit {
	return &compilationUnit{
		file:       file,
		src:        src,
		resolve:    resolve,
		imports:    make(map[string]string),
		fieldTypes: make(map[string]map[string]string),
	}
}

func (cu *compilationUnit) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return string(n.Content(cu.src))
}

func (cu *compilationUnit) loc(n *sitter.Node) model.Location {
	start := n.StartPoint()
	end := n.EndPoint()
	return model.Location{
		FilePath:  cu.file,
		StartLine: int(start.Row) + 1,
		StartCol:  int(start.Column) + 1,
		EndLine:   int(end.Row) + 1,
		EndCol:    int(end.Column) + 1,
	}
}

// walkRoot processes the top-level declarations of a compilation unit:
// package, imports, then every type declaration.
func (cu *compilationUnit) walkRoot(root *sitter.Node) {
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		switch child.Type() {
		case "package_declaration":
			cu.pkg = strings.TrimSpace(strings.TrimPrefix(strings.TrimSuffix(cu.text(child), ";"), "package"))
		case "import_declaration":
			cu.addImport(child)
		case "class_declaration", "interface_declaration", "enum_declaration",
			"record_declaration", "annotation_type_declaration":
			cu.walkTypeDeclaration(child)
		}
	}
}

func (cu *compilationUnit) addImport(n *sitter.Node) {
	raw := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(cu.text(n), "import"), ";"))
	raw = strings.TrimSpace(strings.TrimPrefix(raw, "static"))
	if raw == "" || strings.HasSuffix(raw, "*") {
		return
	}
	parts := strings.Split(raw, ".")
	simple := parts[len(parts)-1]
	cu.imports[simple] = raw
}

// resolveTypeName resolves a simple type name to its best-effort FQN: the
// import table, falling back to the simple name itself; no same-package
// qualification is applied (spec §3: "fqn may be unresolved, equal to
// simpleName").
func (cu *compilationUnit) resolveTypeName(simple string) string {
	simple = strings.TrimSpace(simple)
	simple = strings.TrimSuffix(simple, "[]")
	if simple == "" {
		return simple
	}
	if fqn, ok := cu.imports[simple]; ok {
		return fqn
	}
	if isPrimitive(simple) {
		return simple
	}
	return simple
}

func isPrimitive(name string) bool {
	switch name {
	case "void", "int", "long", "short", "byte", "char", "boolean", "float", "double":
		return true
	}
	return false
}

func typeRefFor(cu *compilationUnit, simple string) model.TypeRef {
	return model.TypeRef{
		SimpleName:  simple,
		Fqn:         cu.resolveTypeName(simple),
		IsPrimitive: isPrimitive(simple),
		IsArray:     strings.HasSuffix(simple, "[]"),
	}
}

func (cu *compilationUnit) walkTypeDeclaration(n *sitter.Node) {
	nameNode := n.ChildByFieldName("name")
	simpleName := cu.text(nameNode)
	if simpleName == "" {
		return
	}
	fqn := simpleName
	if cu.pkg != "" {
		fqn = cu.pkg + "." + simpleName
	}

	kind := model.KindClass
	switch n.Type() {
	case "interface_declaration":
		kind = model.KindInterface
	case "enum_declaration":
		kind = model.KindEnum
	case "record_declaration":
		kind = model.KindRecord
	case "annotation_type_declaration":
		kind = model.KindAnnotation
	}

	var modifiers model.Modifiers
	var annotations []model.AnnotationRef
	var supertypes, interfaces []string
	var bodyNode *sitter.Node

	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "modifiers":
			modifiers, annotations = cu.parseModifiers(child)
		case "superclass":
			if t := findNamedChildOfType(child, "type_identifier"); t != nil {
				supertypes = append(supertypes, cu.resolveTypeName(cu.text(t)))
			}
		case "super_interfaces", "extends_interfaces":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				list := child.NamedChild(j)
				for k := 0; k < int(list.NamedChildCount()); k++ {
					interfaces = append(interfaces, cu.resolveTypeName(cu.text(list.NamedChild(k))))
				}
			}
		case "class_body", "interface_body", "enum_body", "record_body", "annotation_type_body":
			bodyNode = child
		}
	}

	t := model.Type{
		Fqn:         fqn,
		SimpleName:  simpleName,
		Package:     cu.pkg,
		Kind:        kind,
		Modifiers:   modifiers,
		Annotations: annotations,
		Supertypes:  supertypes,
		Interfaces:  interfaces,
		Location:    cu.loc(n),
	}
	cu.types = append(cu.types, t)
	cu.fieldTypes[fqn] = make(map[string]string)

	if bodyNode != nil {
		cu.walkTypeBody(bodyNode, fqn)
	}
}

func findNamedChildOfType(n *sitter.Node, want string) *sitter.Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() == want {
			return c
		}
	}
	return nil
}

// parseModifiers extracts declaration modifiers (public, static, final,
// ...) and annotation expressions from a Java "modifiers" node, grounded on
// the teacher's parser_java.go modifiers-child-scan idiom.
func (cu *compilationUnit) parseModifiers(n *sitter.Node) (model.Modifiers, []model.AnnotationRef) {
	var mods model.Modifiers
	var annotations []model.AnnotationRef
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "marker_annotation", "annotation":
			annotations = append(annotations, cu.parseAnnotation(child))
		default:
			if txt := cu.text(child); txt != "" && !strings.HasPrefix(txt, "@") {
				mods = append(mods, txt)
			}
		}
	}
	return mods, annotations
}

func (cu *compilationUnit) parseAnnotation(n *sitter.Node) model.AnnotationRef {
	nameNode := n.ChildByFieldName("name")
	simple := cu.text(nameNode)
	ref := model.AnnotationRef{
		SimpleName: simple,
		Fqn:        cu.resolveTypeName(simple),
		Attributes: map[string]model.AnnotationValue{},
	}
	args := n.ChildByFieldName("arguments")
	if args == nil {
		return ref
	}
	for i := 0; i < int(args.NamedChildCount()); i++ {
		el := args.NamedChild(i)
		switch el.Type() {
		case "element_value_pair":
			key := cu.text(el.ChildByFieldName("key"))
			val := el.ChildByFieldName("value")
			ref.Attributes[key] = cu.annotationValue(val)
		default:
			ref.Attributes["value"] = cu.annotationValue(el)
		}
	}
	return ref
}

func (cu *compilationUnit) annotationValue(n *sitter.Node) model.AnnotationValue {
	if n == nil {
		return model.AnnotationValue{}
	}
	switch n.Type() {
	case "string_literal":
		return model.AnnotationValue{Kind: model.AnnotationValueString, String: strings.Trim(cu.text(n), "\"")}
	case "decimal_integer_literal":
		var v int64
		for _, r := range cu.text(n) {
			if r < '0' || r > '9' {
				break
			}
			v = v*10 + int64(r-'0')
		}
		return model.AnnotationValue{Kind: model.AnnotationValueInt, Int: v}
	case "true", "false":
		return model.AnnotationValue{Kind: model.AnnotationValueBool, Bool: n.Type() == "true"}
	default:
		return model.AnnotationValue{Kind: model.AnnotationValueString, String: cu.text(n)}
	}
}

func (cu *compilationUnit) walkTypeBody(body *sitter.Node, typeFqn string) {
	for i := 0; i < int(body.NamedChildCount()); i++ {
		member := body.NamedChild(i)
		switch member.Type() {
		case "field_declaration":
			cu.parseFieldDeclaration(member, typeFqn)
		case "method_declaration", "constructor_declaration":
			cu.parseMethodDeclaration(member, typeFqn)
		case "class_declaration", "interface_declaration", "enum_declaration", "record_declaration":
			// nested type: treated as its own top-level-shaped type so it
			// still gets full Type/Method/Field facts.
			cu.walkTypeDeclaration(member)
		}
	}
}

func (cu *compilationUnit) parseFieldDeclaration(n *sitter.Node, typeFqn string) {
	var modifiers model.Modifiers
	var annotations []model.AnnotationRef
	var typeNode *sitter.Node
	var declarators []*sitter.Node

	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "modifiers":
			modifiers, annotations = cu.parseModifiers(child)
		case "variable_declarator":
			declarators = append(declarators, child)
		default:
			if typeNode == nil && isTypeNode(child.Type()) {
				typeNode = child
			}
		}
	}
	typeSimple := cu.text(typeNode)
	tref := typeRefFor(cu, typeSimple)

	for _, decl := range declarators {
		nameNode := decl.ChildByFieldName("name")
		simpleName := cu.text(nameNode)
		if simpleName == "" {
			continue
		}
		f := model.Field{
			Fqn:               typeFqn + "#" + simpleName,
			SimpleName:        simpleName,
			ContainingTypeFqn: typeFqn,
			Type:              tref,
			Modifiers:         modifiers,
			Annotations:       annotations,
			Location:          cu.loc(n),
		}
		cu.fields = append(cu.fields, f)
		if cu.fieldTypes[typeFqn] == nil {
			cu.fieldTypes[typeFqn] = make(map[string]string)
		}
		cu.fieldTypes[typeFqn][simpleName] = typeSimple
	}
}

func isTypeNode(t string) bool {
	switch t {
	case "type_identifier", "void_type", "integral_type", "floating_point_type", "boolean_type",
		"generic_type", "array_type", "scoped_type_identifier":
		return true
	}
	return false
}

func (cu *compilationUnit) parseMethodDeclaration(n *sitter.Node, typeFqn string) {
	nameNode := n.ChildByFieldName("name")
	simpleName := cu.text(nameNode)
	if simpleName == "" {
		simpleName = "<init>"
	}

	var modifiers model.Modifiers
	var annotations []model.AnnotationRef
	var returnType model.TypeRef
	var params []model.Parameter
	var thrown []string
	vars := map[string]string{} // local var / param name -> declared type simple name

	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "modifiers":
			modifiers, annotations = cu.parseModifiers(child)
		case "throws":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				if t := child.NamedChild(j); t.Type() == "type_identifier" {
					thrown = append(thrown, cu.resolveTypeName(cu.text(t)))
				}
			}
		case "formal_parameters":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				p := child.NamedChild(j)
				if p.Type() != "formal_parameter" && p.Type() != "spread_parameter" {
					continue
				}
				pTypeNode := p.ChildByFieldName("type")
				pNameNode := p.ChildByFieldName("name")
				pSimple := cu.text(pTypeNode)
				params = append(params, model.Parameter{
					Name: cu.text(pNameNode),
					Type: typeRefFor(cu, pSimple),
				})
				vars[cu.text(pNameNode)] = pSimple
			}
		default:
			if returnType.SimpleName == "" && isTypeNode(child.Type()) {
				returnType = typeRefFor(cu, cu.text(child))
			}
		}
	}

	paramSimples := make([]string, len(params))
	for i, p := range params {
		paramSimples[i] = p.Type.SimpleName
	}
	fqn := model.MethodFQN(typeFqn, simpleName, paramSimples)

	m := model.Method{
		Fqn:               fqn,
		SimpleName:        simpleName,
		ContainingTypeFqn: typeFqn,
		ReturnType:        returnType,
		Parameters:        params,
		Modifiers:         modifiers,
		Annotations:       annotations,
		Thrown:            thrown,
		Location:          cu.loc(n),
	}
	cu.methods = append(cu.methods, m)

	if body := n.ChildByFieldName("body"); body != nil {
		cu.collectLocalVars(body, vars)
		cu.walkMethodBody(body, fqn, typeFqn, vars)
	}
}

// collectLocalVars scans a method body for local_variable_declaration nodes
// so call-site receiver resolution (walkMethodBody) can map a variable name
// to its declared type. Not scope-aware (a single flat map per method): an
// acceptable simplification for a best-effort Parser Adapter per spec §1.
func (cu *compilationUnit) collectLocalVars(n *sitter.Node, vars map[string]string) {
	if n.Type() == "local_variable_declaration" {
		var typeNode *sitter.Node
		for i := 0; i < int(n.ChildCount()); i++ {
			if c := n.Child(i); typeNode == nil && isTypeNode(c.Type()) {
				typeNode = c
			}
		}
		if typeNode != nil {
			typeSimple := cu.text(typeNode)
			for i := 0; i < int(n.NamedChildCount()); i++ {
				d := n.NamedChild(i)
				if d.Type() == "variable_declarator" {
					name := cu.text(d.ChildByFieldName("name"))
					if name != "" {
						vars[name] = typeSimple
					}
				}
			}
		}
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		cu.collectLocalVars(n.NamedChild(i), vars)
	}
}

// walkMethodBody recurses through a method body looking for call sites:
// method_invocation (ordinary calls) and object_creation_expression
// (constructor calls, needed by the thread-management evaluator's
// "constructs a Thread" check).
func (cu *compilationUnit) walkMethodBody(n *sitter.Node, callerFqn, callerTypeFqn string, vars map[string]string) {
	switch n.Type() {
	case "method_invocation":
		cu.emitMethodInvocation(n, callerFqn, callerTypeFqn, vars)
	case "object_creation_expression":
		cu.emitObjectCreation(n, callerFqn)
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		cu.walkMethodBody(n.NamedChild(i), callerFqn, callerTypeFqn, vars)
	}
}

func (cu *compilationUnit) emitMethodInvocation(n *sitter.Node, callerFqn, callerTypeFqn string, vars map[string]string) {
	nameNode := n.ChildByFieldName("name")
	methodName := cu.text(nameNode)
	if methodName == "" {
		return
	}
	objectNode := n.ChildByFieldName("object")

	argTypes := cu.inferArgTypes(n.ChildByFieldName("arguments"))
	callKind := model.CallDirect
	resolved := ""

	var calleeFqn string
	var receiverType string
	if cu.resolve {
		receiverType = cu.resolveReceiverType(objectNode, callerTypeFqn, vars)
	}
	switch {
	case !cu.resolve:
		prefix := ""
		if objectNode != nil {
			prefix = cu.text(objectNode) + "#"
		}
		calleeFqn = prefix + methodName + "(" + strings.Join(argTypes, ",") + ")"
	case objectNode == nil:
		calleeFqn = model.MethodFQN(callerTypeFqn, methodName, argTypes)
		resolved = calleeFqn
	case receiverType != "":
		calleeFqn = model.MethodFQN(receiverType, methodName, argTypes)
		callKind = model.CallVirtual
	default:
		// Unresolved receiver: best effort is the literal text, so
		// type-prefix sink matching can still work for a qualified chain
		// like "RestTemplate.getForObject".
		calleeFqn = cu.text(objectNode) + "#" + methodName + "(" + strings.Join(argTypes, ",") + ")"
	}
	if cu.text(objectNode) == "super" {
		callKind = model.CallSuper
	}

	cu.edges = append(cu.edges, model.CallEdge{
		CallerFqn:         callerFqn,
		CalleeFqn:         calleeFqn,
		ResolvedCalleeFqn: resolved,
		CallType:          callKind,
		Location:          cu.loc(n),
	})
}

func (cu *compilationUnit) emitObjectCreation(n *sitter.Node, callerFqn string) {
	typeNode := n.ChildByFieldName("type")
	if typeNode == nil {
		return
	}
	fqn := cu.text(typeNode)
	if cu.resolve {
		fqn = cu.resolveTypeName(fqn)
	}
	argTypes := cu.inferArgTypes(n.ChildByFieldName("arguments"))
	cu.edges = append(cu.edges, model.CallEdge{
		CallerFqn: callerFqn,
		CalleeFqn: model.MethodFQN(fqn, "<init>", argTypes),
		CallType:  model.CallConstructor,
		Location:  cu.loc(n),
	})
}

// resolveReceiverType resolves a method-invocation's object expression to a
// declared type, via (in order) "this"/implicit, local variables and
// parameters, then the containing type's own fields. Anything else
// (chained calls, static class references not in the import table, field
// access on another object) is left unresolved.
func (cu *compilationUnit) resolveReceiverType(objectNode *sitter.Node, callerTypeFqn string, vars map[string]string) string {
	if objectNode == nil {
		return callerTypeFqn
	}
	text := cu.text(objectNode)
	if text == "this" {
		return callerTypeFqn
	}
	if objectNode.Type() != "identifier" {
		return ""
	}
	if t, ok := vars[text]; ok {
		return cu.resolveTypeName(t)
	}
	if fields, ok := cu.fieldTypes[callerTypeFqn]; ok {
		if t, ok := fields[text]; ok {
			return cu.resolveTypeName(t)
		}
	}
	if fqn, ok := cu.imports[text]; ok {
		return fqn // static call on an imported class
	}
	return ""
}

// inferArgTypes makes a best-effort guess at each argument expression's
// simple type, used only to build a Method-FQN-shaped callee string; exact
// overload resolution is out of scope (spec §1: no value-sensitive
// analysis). Unrecognized expressions map to "?".
func (cu *compilationUnit) inferArgTypes(args *sitter.Node) []string {
	if args == nil {
		return nil
	}
	var out []string
	for i := 0; i < int(args.NamedChildCount()); i++ {
		arg := args.NamedChild(i)
		switch arg.Type() {
		case "string_literal":
			out = append(out, "String")
		case "decimal_integer_literal":
			out = append(out, "int")
		case "true", "false":
			out = append(out, "boolean")
		case "decimal_floating_point_literal":
			out = append(out, "double")
		default:
			out = append(out, "?")
		}
	}
	return out
}
