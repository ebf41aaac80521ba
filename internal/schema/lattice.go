package schema

// FieldType is the primitive kind a column's cells are coerced to.
type FieldType int

// Field type constants. Unresolved marks a comment column: it is counted
// when validating row shapes but never encoded.
const (
	Unresolved FieldType = iota
	Int32
	Int64
	Double
	Bool
	String
	StringSet
)

func (t FieldType) String() string {
	switch t {
	case Int32:
		return "int"
	case Int64:
		return "long"
	case Double:
		return "double"
	case Bool:
		return "bool"
	case String:
		return "string"
	case StringSet:
		return "set"
	default:
		return "unresolved"
	}
}

// IsPointer reports whether the type is one of the reference-like kinds.
func (t FieldType) IsPointer() bool {
	return t == String || t == StringSet
}

// scalarTypes are the fixed-width kinds, keyed by canonical token.
var scalarTypes = map[string]FieldType{
	"int":    Int32,
	"long":   Int64,
	"double": Double,
	"bool":   Bool,
}

// pointerTypes are the variable-length kinds, keyed by canonical token.
var pointerTypes = map[string]FieldType{
	"string": String,
	"set":    StringSet,
}

// defaultAliases carries the legacy sheet vocabulary. Key markers (id,
// stringId, groupId) alias to string so the key column is encoded as text.
var defaultAliases = map[string]string{
	"id":        "string",
	"stringId":  "string",
	"groupId":   "string",
	"NSString":  "string",
	"NSInteger": "long",
	"int64":     "long",
	"int32":     "int",
	"BOOL":      "bool",
	"NSSet":     "set",
	"float":     "double",
	"float64":   "double",
}

// Lattice resolves type tokens to field types.
type Lattice struct {
	aliases map[string]string
}

// NewLattice returns a Lattice with the built-in aliases plus extra.
// Entries in extra replace built-in aliases of the same name.
func NewLattice(extra map[string]string) *Lattice {
	aliases := make(map[string]string, len(defaultAliases)+len(extra))
	for k, v := range defaultAliases {
		aliases[k] = v
	}
	for k, v := range extra {
		aliases[k] = v
	}
	return &Lattice{aliases: aliases}
}

// Resolve maps token to its FieldType. Aliases are followed to any depth;
// an alias cycle or an unknown token yields Unresolved.
func (l *Lattice) Resolve(token string) FieldType {
	seen := make(map[string]bool)
	for {
		target, ok := l.aliases[token]
		if !ok {
			break
		}
		if seen[token] {
			return Unresolved
		}
		seen[token] = true
		token = target
	}
	if t, ok := scalarTypes[token]; ok {
		return t
	}
	if t, ok := pointerTypes[token]; ok {
		return t
	}
	return Unresolved
}
