// Package writer persists compiled scenes to compressed archives that the
// reader package can load back without re-parsing any geometry source files.
package writer

import "github.com/Ambroisie/beevee/scene"

// The Writer interface is implemented by all scene writers.
type Writer interface {
	// Write scene definition.
	Write(*scene.Scene) error
}

// Write scene to a compressed binary archive.
func WriteScene(sc *scene.Scene, filename string) error {
	writer := newZipSceneWriter(filename)
	return writer.Write(sc)
}
