package writer

import (
	"archive/zip"
	"encoding/gob"
	"fmt"
	"os"
	"time"

	"github.com/Ambroisie/beevee/log"
	"github.com/Ambroisie/beevee/scene"
)

const (
	dataFile = "scene.bin"
)

type zipSceneWriter struct {
	logger    log.Logger
	sceneFile string
}

// Create a new zip scene writer.
func newZipSceneWriter(sceneFile string) *zipSceneWriter {
	return &zipSceneWriter{
		logger:    log.New("zip writer"),
		sceneFile: sceneFile,
	}
}

// Write scene definition to zip file. Only the scene geometry is encoded;
// readers rebuild the indices after loading the archive.
func (w *zipSceneWriter) Write(sc *scene.Scene) error {
	w.logger.Noticef(`writing compiled scene to "%s"`, w.sceneFile)
	start := time.Now()

	zipFile, err := os.Create(w.sceneFile)
	if err != nil {
		return err
	}
	defer zipFile.Close()

	zw := zip.NewWriter(zipFile)

	cw, err := zw.Create(dataFile)
	if err != nil {
		return fmt.Errorf("zipSceneWriter: failed to create %s: %s", dataFile, err.Error())
	}
	encoder := gob.NewEncoder(cw)
	if err = encoder.Encode(sc); err != nil {
		return fmt.Errorf("zipSceneWriter: failed to encode %s: %s", dataFile, err.Error())
	}

	// The archive directory is only flushed on close
	if err = zw.Close(); err != nil {
		return err
	}

	w.logger.Noticef("compressed scene in %d ms", time.Since(start).Nanoseconds()/1e6)
	return nil
}
