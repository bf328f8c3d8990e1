package reader

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Ambroisie/beevee/asset"
	"github.com/Ambroisie/beevee/bvh"
	"github.com/Ambroisie/beevee/log"
	"github.com/Ambroisie/beevee/scene"
	"github.com/Ambroisie/beevee/shape"
	"github.com/Ambroisie/beevee/types"
)

// wavefrontSceneReader parses geometry out of wavefront object files. Only
// the geometric subset of the format is honored: vertices, triangular and
// quad faces and named objects. Texture and normal indices inside face
// definitions are accepted and ignored, as are material statements.
//
// Two extensions are supported on top of the standard directives:
//   - "call file.obj" includes another object file in place
//   - "sphere x y z radius" adds an analytic sphere to the scene
type wavefrontSceneReader struct {
	logger log.Logger

	// The scene being assembled.
	scene *scene.Scene

	// List of parsed vertex coordinates.
	vertexList []types.Vec3

	// An error stack that provides additional error information when
	// scene files include other files.
	errStack []string
}

// Create a new text scene reader.
func newWavefrontReader() *wavefrontSceneReader {
	return &wavefrontSceneReader{
		logger:     log.New("wavefront scene reader"),
		scene:      &scene.Scene{},
		vertexList: make([]types.Vec3, 0),
		errStack:   make([]string, 0),
	}
}

// Read scene definition.
func (r *wavefrontSceneReader) Read(sceneRes *asset.Resource) (*scene.Scene, error) {
	r.logger.Noticef(`parsing scene from "%s"`, sceneRes.Path())
	start := time.Now()

	if err := r.parse(sceneRes); err != nil {
		return nil, err
	}

	r.logger.Noticef("parsed scene in %d ms", time.Since(start).Nanoseconds()/1e6)

	// Compile the scene indices so the returned scene is ready to trace
	if err := r.scene.Compile(bvh.DefaultMaxCapacity); err != nil {
		return nil, err
	}
	return r.scene, nil
}

// Parse wavefront object scene format.
func (r *wavefrontSceneReader) parse(res *asset.Resource) error {
	var lineNum int = 0

	// The main obj file may include (call) several other object files. Each
	// object file contains 1-based indices (when they are positive). By
	// tracking the current vertex offset we can apply it while parsing
	// faces to select the correct coordinates.
	relVertexOffset := len(r.vertexList)

	scanner := bufio.NewScanner(res)
	for scanner.Scan() {
		lineNum++
		lineTokens := strings.Fields(scanner.Text())
		if len(lineTokens) == 0 || strings.HasPrefix(lineTokens[0], "#") {
			continue
		}

		switch lineTokens[0] {
		case "call":
			if len(lineTokens) != 2 {
				return r.emitError(res.Path(), lineNum, `unsupported syntax for "call"; expected 1 argument; got %d`, len(lineTokens)-1)
			}

			r.pushFrame(fmt.Sprintf("referenced from %s:%d [call]", res.Path(), lineNum))

			incRes, err := asset.NewResource(lineTokens[1], res)
			if err != nil {
				return r.emitError(res.Path(), lineNum, err.Error())
			}
			defer incRes.Close()

			if err = r.parse(incRes); err != nil {
				return err
			}
			r.popFrame()
		case "v":
			v, err := parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, err.Error())
			}
			r.vertexList = append(r.vertexList, v)
		case "g", "o":
			if len(lineTokens) < 2 {
				return r.emitError(res.Path(), lineNum, `unsupported syntax for "%s"; expected 1 argument for object name; got %d`, lineTokens[0], len(lineTokens)-1)
			}

			r.verifyLastParsedMesh()
			r.scene.Meshes = append(r.scene.Meshes, shape.Mesh{Name: lineTokens[1]})
		case "f":
			triangles, err := r.parseFace(lineTokens, relVertexOffset)
			if err != nil {
				return r.emitError(res.Path(), lineNum, err.Error())
			}

			// If no object has been defined create a default one
			if len(r.scene.Meshes) == 0 {
				r.scene.Meshes = append(r.scene.Meshes, shape.Mesh{Name: "default"})
			}

			// Append triangles to the current mesh
			meshIndex := len(r.scene.Meshes) - 1
			r.scene.Meshes[meshIndex].Triangles = append(r.scene.Meshes[meshIndex].Triangles, triangles...)
		case "sphere":
			s, err := parseSphere(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, err.Error())
			}
			r.scene.Spheres = append(r.scene.Spheres, s)
		}
	}

	r.verifyLastParsedMesh()
	return nil
}

// Drop the last parsed mesh if it contains no triangles.
func (r *wavefrontSceneReader) verifyLastParsedMesh() {
	lastMeshIndex := len(r.scene.Meshes) - 1
	if lastMeshIndex >= 0 && len(r.scene.Meshes[lastMeshIndex].Triangles) == 0 {
		r.logger.Warningf(`dropping mesh "%s" as it contains no polygons`, r.scene.Meshes[lastMeshIndex].Name)
		r.scene.Meshes = r.scene.Meshes[:lastMeshIndex]
	}
}

// Parse face definition. Each face definition consists of 3 or 4 arguments,
// one for each vertex. Each one of the vertex arguments is comprised of
// 1, 2 or 3 indices separated by a slash character. Only the leading vertex
// index is used; texture and normal indices are skipped.
//
// Indices start from 1 and may be negative to indicate
// an offset off the end of the vertex list.
//
// This method only works with triangular/quad faces and will return an error
// if a face with more than 4 vertices is encountered.
func (r *wavefrontSceneReader) parseFace(lineTokens []string, relVertexOffset int) ([]shape.Triangle, error) {
	if len(lineTokens) < 4 || len(lineTokens) > 5 {
		return nil, fmt.Errorf(`unsupported syntax for "f"; expected 3 arguments for triangular face or 4 arguments for a quad face; got %d. Select the triangulation option in your exporter`, len(lineTokens)-1)
	}

	var vertices [4]types.Vec3
	expIndices := 0
	for arg := 0; arg < len(lineTokens)-1; arg++ {
		vTokens := strings.Split(lineTokens[arg+1], "/")

		// The first arg defines the format for the following args
		if arg == 0 {
			expIndices = len(vTokens)
		} else if len(vTokens) != expIndices {
			return nil, fmt.Errorf("expected each face argument to contain %d indices; arg %d contains %d indices", expIndices, arg, len(vTokens))
		}

		// Faces must at least define a vertex coord
		if vTokens[0] == "" {
			return nil, fmt.Errorf("face argument %d does not include a vertex index", arg)
		}

		vOffset, err := selectFaceCoordIndex(vTokens[0], len(r.vertexList), relVertexOffset)
		if err != nil {
			return nil, fmt.Errorf("could not parse vertex coord for face argument %d: %s", arg, err.Error())
		}
		vertices[arg] = r.vertexList[vOffset]
	}

	// Assemble vertices into one or two triangles depending on whether we
	// are parsing a triangular or a quad face
	indiceList := [][3]int{{0, 1, 2}}
	if len(lineTokens) == 5 {
		indiceList = append(indiceList, [3]int{0, 2, 3})
	}

	triangles := make([]shape.Triangle, 0, len(indiceList))
	for _, indices := range indiceList {
		triangles = append(triangles, shape.NewTriangle(
			vertices[indices[0]],
			vertices[indices[1]],
			vertices[indices[2]],
		))
	}

	return triangles, nil
}

// Generate an error message that also includes any data in the error stack.
func (r *wavefrontSceneReader) emitError(file string, line int, msgFormat string, args ...interface{}) error {
	msg := fmt.Sprintf(msgFormat, args...)

	var errMsg string
	if file != "" {
		errMsg = strings.Trim(
			fmt.Sprintf("[%s: %d] error: %s\n%s", file, line, msg, strings.Join(r.errStack, "\n")),
			"\n",
		)
	} else {
		errMsg = strings.Trim(
			fmt.Sprintf("error: %s\n%s", msg, strings.Join(r.errStack, "\n")),
			"\n",
		)
	}

	return errors.New(errMsg)
}

// Push a frame to the error stack.
func (r *wavefrontSceneReader) pushFrame(msg string) {
	r.errStack = append([]string{msg}, r.errStack...)
}

// Pop a frame from the error stack.
func (r *wavefrontSceneReader) popFrame() {
	r.errStack = r.errStack[1:]
}

// Parse a sphere definition. Definitions use the following format:
// sphere x y z radius
func parseSphere(lineTokens []string) (shape.Sphere, error) {
	if len(lineTokens) != 5 {
		return shape.Sphere{}, fmt.Errorf(`unsupported syntax for "sphere"; expected 4 arguments: x y z radius; got %d`, len(lineTokens)-1)
	}

	center, err := parseVec3(lineTokens)
	if err != nil {
		return shape.Sphere{}, err
	}

	radius, err := strconv.ParseFloat(lineTokens[4], 32)
	if err != nil {
		return shape.Sphere{}, err
	}
	if radius <= 0 {
		return shape.Sphere{}, fmt.Errorf("sphere radius must be positive; got %s", lineTokens[4])
	}

	return shape.NewSphere(center, float32(radius)), nil
}

// Given an index for a face vertex calculate the proper offset into the
// vertex list. Wavefront format can also use negative indices to reference
// elements from the end of the vertex list.
func selectFaceCoordIndex(indexToken string, coordListLen int, relOffset int) (int, error) {
	index, err := strconv.ParseInt(indexToken, 10, 32)
	if err != nil {
		return -1, err
	}

	var vOffset int = 0
	if index < 0 {
		vOffset = coordListLen + int(index)
	} else {
		vOffset = relOffset + int(index-1)
	}
	if vOffset < 0 || vOffset >= coordListLen {
		return -1, fmt.Errorf("index out of bounds")
	}
	return vOffset, nil
}

// Parse a Vec3 row.
func parseVec3(lineTokens []string) (types.Vec3, error) {
	if len(lineTokens) < 4 {
		return types.Vec3{}, fmt.Errorf(`unsupported syntax for "%s"; expected 3 arguments; got %d`, lineTokens[0], len(lineTokens)-1)
	}

	v := types.Vec3{}
	for tokIdx := 1; tokIdx <= 3; tokIdx++ {
		coord, err := strconv.ParseFloat(lineTokens[tokIdx], 32)
		if err != nil {
			return v, err
		}
		v[tokIdx-1] = float32(coord)
	}
	return v, nil
}
