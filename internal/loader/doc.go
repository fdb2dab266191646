// Package loader reads module files.
//
// A module is a CUE file named after the module:
//
//	// bool.cue
//	imports: ["base"]
//	defs: {
//		"true":  "λt f. t"
//		"false": "λt f. f"
//		not:     "λb. b false true"
//	}
//
// Definitions are stored under qualified names "module/name". Inside a
// module an identifier resolves to a binder first, then to a definition of
// the same module, then, when written as "other/name", to a definition of
// an imported module. Imports load recursively; an import cycle is an
// error.
package loader
