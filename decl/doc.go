// Package decl builds template declarations from parsed source files.
//
// A [Builder] walks the parts of a [lang.File] in order. Each part is
// dispatched by its closed [Kind] to a builder that extracts the part name
// and route, then constructs its argument list. Arguments may import the
// arguments of another widget through a delegate:
//
//	<!yatt:widget container aliased=[delegate:long_name y w]>
//
// A delegate that names a widget not yet declared suspends the part; once
// every part has been seen, the suspended parts are resumed in dependency
// order. Parts that can never be resumed, because the target is unknown or
// the delegation is circular, make the build fail.
//
// [Declaration.Check] verifies element calls in widget bodies against the
// declared arguments, using a [Resolver] for widgets of other files.
package decl
