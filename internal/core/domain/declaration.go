package domain

// ModuleDeclaration is an annotated module extracted from a host file.
type ModuleDeclaration struct {
	// Name is the module identifier. It is never empty.
	Name string
	// Body is the source text between the body braces, trimmed of surrounding whitespace.
	Body string
	// Span locates the declaration in the host file.
	Span DeclarationSpan
}

// DeclarationSpan holds byte offsets into the host file.
type DeclarationSpan struct {
	// AttrStart is the offset of the '#' opening the annotation.
	AttrStart int
	// ItemStart is the offset of the first token after the annotation.
	ItemStart int
	// BodyOpen is the offset of the body's '{'.
	BodyOpen int
	// BodyClose is the offset of the body's '}'.
	BodyClose int
}

// ItemEnd returns the offset just past the declaration.
func (s DeclarationSpan) ItemEnd() int {
	return s.BodyClose + 1
}
