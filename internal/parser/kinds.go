package parser

// NodeKind is the closed set of Ruby syntax node kinds the indexer distinguishes.
// Every other grammar kind classifies as NodeKindUnknown.
type NodeKind uint8

const (
	NodeKindUnknown NodeKind = iota
	NodeKindProgram
	NodeKindClass
	NodeKindModule
	NodeKindSingletonClass
	NodeKindMethod
	NodeKindSingletonMethod
	NodeKindMethodParameters
	NodeKindOptionalParameter
	NodeKindKeywordParameter
	NodeKindSplatParameter
	NodeKindHashSplatParameter
	NodeKindBlockParameter
	NodeKindAssignment
	NodeKindOperatorAssignment
	NodeKindLeftAssignmentList
	NodeKindRestAssignment
	NodeKindCall
	NodeKindArgumentList
	NodeKindConstant
	NodeKindScopeResolution
	NodeKindSuperclass
	NodeKindIdentifier
	NodeKindSelf
	NodeKindGlobalVariable
	NodeKindInstanceVariable
	NodeKindClassVariable
	NodeKindBodyStatement
	NodeKindSimpleSymbol
	NodeKindComment
	NodeKindString
	NodeKindStringContent
)

var nodeKindNames = map[string]NodeKind{
	"program":              NodeKindProgram,
	"class":                NodeKindClass,
	"module":               NodeKindModule,
	"singleton_class":      NodeKindSingletonClass,
	"method":               NodeKindMethod,
	"singleton_method":     NodeKindSingletonMethod,
	"method_parameters":    NodeKindMethodParameters,
	"optional_parameter":   NodeKindOptionalParameter,
	"keyword_parameter":    NodeKindKeywordParameter,
	"splat_parameter":      NodeKindSplatParameter,
	"hash_splat_parameter": NodeKindHashSplatParameter,
	"block_parameter":      NodeKindBlockParameter,
	"assignment":           NodeKindAssignment,
	"operator_assignment":  NodeKindOperatorAssignment,
	"left_assignment_list": NodeKindLeftAssignmentList,
	"rest_assignment":      NodeKindRestAssignment,
	"call":                 NodeKindCall,
	"argument_list":        NodeKindArgumentList,
	"constant":             NodeKindConstant,
	"scope_resolution":     NodeKindScopeResolution,
	"superclass":           NodeKindSuperclass,
	"identifier":           NodeKindIdentifier,
	"self":                 NodeKindSelf,
	"global_variable":      NodeKindGlobalVariable,
	"instance_variable":    NodeKindInstanceVariable,
	"class_variable":       NodeKindClassVariable,
	"body_statement":       NodeKindBodyStatement,
	"simple_symbol":        NodeKindSimpleSymbol,
	"comment":              NodeKindComment,
	"string":               NodeKindString,
	"string_content":       NodeKindStringContent,
}

var nodeKindStrings = func() map[NodeKind]string {
	m := make(map[NodeKind]string, len(nodeKindNames))
	for name, k := range nodeKindNames {
		m[k] = name
	}
	return m
}()

// ClassifyKind maps a raw grammar kind to a NodeKind
func ClassifyKind(kind string) NodeKind {
	if k, ok := nodeKindNames[kind]; ok {
		return k
	}
	return NodeKindUnknown
}

// String returns the grammar name of the kind
func (k NodeKind) String() string {
	if name, ok := nodeKindStrings[k]; ok {
		return name
	}
	return "unknown"
}

// IsClasslike reports class or module
func (k NodeKind) IsClasslike() bool {
	return k == NodeKindClass || k == NodeKindModule
}

// IsMethod reports method or singleton_method
func (k NodeKind) IsMethod() bool {
	return k == NodeKindMethod || k == NodeKindSingletonMethod
}

// FieldName is a grammar field used to reach a child node
type FieldName string

const (
	FieldNameName   FieldName = "name"
	FieldNameScope  FieldName = "scope"
	FieldNameBody   FieldName = "body"
	FieldNameLeft   FieldName = "left"
	FieldNameRight  FieldName = "right"
	FieldNameMethod FieldName = "method"
	FieldNameObject FieldName = "object"

	FieldNameReceiver   FieldName = "receiver"
	FieldNameArguments  FieldName = "arguments"
	FieldNameParameters FieldName = "parameters"
	FieldNameSuperclass FieldName = "superclass"
)
