// Package lang is the lexical and syntactic front end for YATT-style
// LRXML templates.
//
// A source file is split into parts by declarations of the form
// "<!ns:kind attributes>". Text before the first declaration becomes an
// implicit part when it is not blank. Comments "<!--#ns ... #-->" are kept
// as chunks of their own so that concatenating every chunk reproduces the
// input byte for byte.
//
// # Scanning
//
// All parsing runs on a [Scanner], a cursor over a window of a shared
// [Source]. Patterns come from a [Patterns] cache owned by the [Parser] and
// are compiled for one of two modes:
//
//   - anchored: the pattern must match exactly at the cursor
//   - global: the pattern is searched forward from the cursor
//
// Bracketed constructs are parsed by narrowed child scanners that share the
// buffer and the pattern cache; nesting is bounded by [Config.MaxDepth].
//
// # Attribute lists
//
// Terms are words, quoted strings, bracketed nested lists and entity
// references. "label=value" pairs are recognized by shift-reduce; in
// declarations, "-- comments --" attach to the neighbouring term.
//
//	<!yatt:widget foo x=text y="list?" [delegate:bar]>
//
// # Entities
//
// "&ns:path;" references are pipelines of path items:
//
//	&yatt:user:name;          var, prop
//	&yatt:param(foo){key};    call, href
//	&yatt:[a,b,c];            array
//
// # Templates
//
// The payload of a part parses lazily into a [Tree] of text, comments,
// processing instructions, entities, localized messages and elements.
// Option tags "<:yatt:name>...</:yatt:name>" attach to the enclosing element;
// the self-closing form "<:yatt:else/>" opens a footer clause that owns the
// nodes after it.
package lang
