package semantic

// Keywords and builtin type names never count as usage: they appear in
// nearly every body and would mask genuinely unused fields.
var reservedNames = map[string]bool{
	// keywords
	"self": true, "Self": true, "super": true, "crate": true, "mod": true,
	"use": true, "pub": true, "const": true, "static": true, "let": true,
	"fn": true, "struct": true, "enum": true, "impl": true, "trait": true,
	"where": true, "for": true, "while": true, "loop": true, "if": true,
	"else": true, "match": true, "break": true, "continue": true,
	"return": true, "async": true, "await": true, "move": true, "ref": true,
	"mut": true, "unsafe": true, "extern": true, "type": true, "union": true,
	"macro": true,

	// prelude types and variants
	"Some": true, "None": true, "Ok": true, "Err": true, "Result": true,
	"Option": true, "Vec": true, "String": true,

	// primitives
	"str": true, "bool": true,
	"u8": true, "u16": true, "u32": true, "u64": true, "u128": true,
	"i8": true, "i16": true, "i32": true, "i64": true, "i128": true,
	"f32": true, "f64": true, "usize": true, "isize": true,
}

// IsReserved reports whether name is a Rust keyword or builtin type name.
func IsReserved(name string) bool {
	return reservedNames[name]
}
