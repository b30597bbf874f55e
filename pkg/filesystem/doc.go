// Package filesystem walks template catalogs and generated projects with
// predictable ordering and ignore rules.
//
// Walk visits entries in lexical order, which makes it safe to derive a
// stable catalog order from a directory tree:
//
//	err := filesystem.Walk("templates", filesystem.WalkOptions{}, func(path string, d fs.DirEntry) error {
//	    fmt.Println(path)
//	    return nil
//	})
//
// ReadFiles loads every file under a directory keyed by its slash-separated
// relative path:
//
//	files, err := filesystem.ReadFiles("templates/Page.Blank", filesystem.WalkOptions{
//	    IgnorePatterns: []string{"template.yml"},
//	})
package filesystem
