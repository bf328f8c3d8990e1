package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Ambroisie/beevee/bvh"
	"github.com/Ambroisie/beevee/geom"
	"github.com/Ambroisie/beevee/log"
	"github.com/Ambroisie/beevee/scene"
	"github.com/Ambroisie/beevee/scene/reader"
	"github.com/Ambroisie/beevee/types"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/urfave/cli"
)

// sceneServer exposes a compiled scene over a small REST API so external
// tools and browser-based visualizers can inspect the object index and
// probe the scene with rays.
type sceneServer struct {
	logger log.Logger
	scene  *scene.Scene
}

type indexStats struct {
	Nodes    int `json:"nodes"`
	Leaves   int `json:"leaves"`
	MaxDepth int `json:"maxDepth"`
	MaxLeaf  int `json:"maxLeaf"`
	Objects  int `json:"objects"`
}

type statsResponse struct {
	Spheres   int        `json:"spheres"`
	Meshes    int        `json:"meshes"`
	Triangles int        `json:"triangles"`
	Index     indexStats `json:"index"`
}

type nodeResponse struct {
	Min   types.Vec3 `json:"min"`
	Max   types.Vec3 `json:"max"`
	Depth int        `json:"depth"`
	Leaf  bool       `json:"leaf"`
	Count int        `json:"count"`
}

type traceRequest struct {
	Origin    types.Vec3 `json:"origin"`
	Direction types.Vec3 `json:"direction"`
}

type traceResponse struct {
	Hit       bool        `json:"hit"`
	Distance  float32     `json:"distance,omitempty"`
	Point     *types.Vec3 `json:"point,omitempty"`
	Object    string      `json:"object,omitempty"`
	Primitive string      `json:"primitive,omitempty"`
}

// Serve a scene over HTTP for inspection.
func ServeScene(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return errors.New("missing scene file argument")
	}

	sc, err := reader.ReadScene(ctx.Args().First())
	if err != nil {
		return err
	}

	srv := &sceneServer{
		logger: log.New("server"),
		scene:  sc,
	}

	listenAddr := ctx.String("listen")
	srv.logger.Noticef("listening on %s", listenAddr)
	return http.ListenAndServe(listenAddr, srv.routes())
}

// Assemble the API routes behind a permissive CORS layer.
func (s *sceneServer) routes() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/stats", s.statsHandler).Methods("GET")
	r.HandleFunc("/nodes", s.nodesHandler).Methods("GET")
	r.HandleFunc("/trace", s.traceHandler).Methods("POST")

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})

	return c.Handler(r)
}

func (s *sceneServer) statsHandler(w http.ResponseWriter, r *http.Request) {
	treeStats := s.scene.Tree().Stats()

	res := statsResponse{
		Spheres: len(s.scene.Spheres),
		Meshes:  len(s.scene.Meshes),
		Index: indexStats{
			Nodes:    treeStats.Nodes,
			Leaves:   treeStats.Leaves,
			MaxDepth: treeStats.MaxDepth,
			MaxLeaf:  treeStats.MaxLeaf,
			Objects:  treeStats.Objects,
		},
	}
	for _, mesh := range s.scene.Meshes {
		res.Triangles += len(mesh.Triangles)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

// Return the node boxes of the object index, optionally filtered to a
// single depth with the ?depth=N query parameter.
func (s *sceneServer) nodesHandler(w http.ResponseWriter, r *http.Request) {
	depth := 0
	if depthParam := r.URL.Query().Get("depth"); depthParam != "" {
		var err error
		if depth, err = strconv.Atoi(depthParam); err != nil || depth < 1 {
			http.Error(w, "depth must be a positive integer", http.StatusBadRequest)
			return
		}
	}

	nodes := make([]nodeResponse, 0)
	s.scene.Tree().VisitNodes(func(info bvh.NodeInfo) {
		if depth != 0 && info.Depth != depth {
			return
		}
		nodes = append(nodes, nodeResponse{
			Min:   info.Bounds.Min,
			Max:   info.Bounds.Max,
			Depth: info.Depth,
			Leaf:  info.Leaf,
			Count: info.Count,
		})
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(nodes)
}

func (s *sceneServer) traceHandler(w http.ResponseWriter, r *http.Request) {
	var req traceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json payload", http.StatusBadRequest)
		return
	}
	if req.Direction.Len() == 0 {
		http.Error(w, "direction must be a non-zero vector", http.StatusBadRequest)
		return
	}

	var res traceResponse
	if hit, found := s.scene.Trace(geom.NewRay(req.Origin, req.Direction)); found {
		res = traceResponse{
			Hit:       true,
			Distance:  hit.Distance,
			Point:     &hit.Point,
			Object:    fmt.Sprint(hit.Object),
			Primitive: fmt.Sprint(hit.Primitive),
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}
