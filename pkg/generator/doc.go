// Package generator turns converted sources into files on disk.
//
// Converters never write directly. They return []Operation, which Execute
// validates as a batch and then applies:
//
//	ops := []generator.Operation{
//	    generator.NewWriteFile("app/src/main/java/com/x/models/User.kt", content),
//	    &generator.CopyFileOp{Src: "Resources/logo.png", Dst: "res/drawable/logo.png"},
//	}
//	summary, err := generator.Execute(ctx, ops, generator.ExecuteOptions{Resolver: r})
//
// Files that already exist go through a Resolver (overwrite, skip, diff or
// ask). Identical content is never rewritten.
//
// Transaction is for in-place rewrites such as `magpie fix`: every staged
// file is written, or the previous contents are restored.
package generator
