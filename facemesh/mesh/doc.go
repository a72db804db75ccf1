// Package mesh holds the constant base face mesh and the digest-driven
// modifier that scales it.
//
// A Mesh is a plain value: vertex positions plus triangle faces indexing
// into them. Every function here returns fresh slices, so callers may
// mutate results freely.
//
//	m, hex, err := mesh.Generate("example_string", digest.SHA256)
//	if err != nil {
//		return err
//	}
//	_ = mesh.Write(w, m, mesh.FormatOBJ)
package mesh
