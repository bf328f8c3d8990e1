package cmd

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Ambroisie/beevee/bvh"
	"github.com/Ambroisie/beevee/log"
	"github.com/Ambroisie/beevee/scene"
	"github.com/Ambroisie/beevee/shape"
	"github.com/Ambroisie/beevee/types"
)

func testServer(t *testing.T) *sceneServer {
	sc := &scene.Scene{
		Spheres: []shape.Sphere{
			shape.NewSphere(types.Vec3{5, 0, 0}, 1),
		},
		Meshes: []shape.Mesh{
			{
				Name: "wall",
				Triangles: []shape.Triangle{
					shape.NewTriangle(types.Vec3{2, -3, -3}, types.Vec3{2, 3, -3}, types.Vec3{2, 3, 3}),
					shape.NewTriangle(types.Vec3{2, -3, -3}, types.Vec3{2, 3, 3}, types.Vec3{2, -3, 3}),
				},
			},
		},
	}
	if err := sc.Compile(bvh.DefaultMaxCapacity); err != nil {
		t.Fatalf("expected no error while compiling scene; got %v", err)
	}

	return &sceneServer{
		logger: log.New("server"),
		scene:  sc,
	}
}

func TestServerStats(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest("GET", "/stats", nil)
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d; got %d", http.StatusOK, rec.Code)
	}

	var res statsResponse
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("expected no error while decoding response; got %v", err)
	}
	if res.Spheres != 1 || res.Meshes != 1 || res.Triangles != 2 {
		t.Fatalf("expected stats for 1 sphere, 1 mesh and 2 triangles; got %+v", res)
	}
	if res.Index.Objects != 2 {
		t.Fatalf("expected the object index to cover 2 objects; got %d", res.Index.Objects)
	}
	if res.Index.Nodes < 1 || res.Index.MaxDepth < 1 {
		t.Fatalf("expected a populated object index; got %+v", res.Index)
	}
}

func TestServerNodes(t *testing.T) {
	srv := testServer(t)
	handler := srv.routes()

	req := httptest.NewRequest("GET", "/nodes", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d; got %d", http.StatusOK, rec.Code)
	}

	var nodes []nodeResponse
	if err := json.NewDecoder(rec.Body).Decode(&nodes); err != nil {
		t.Fatalf("expected no error while decoding response; got %v", err)
	}
	if expNodes := srv.scene.Tree().Stats().Nodes; len(nodes) != expNodes {
		t.Fatalf("expected %d nodes; got %d", expNodes, len(nodes))
	}

	// Filtering by depth should only return the root
	req = httptest.NewRequest("GET", "/nodes?depth=1", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	nodes = nil
	if err := json.NewDecoder(rec.Body).Decode(&nodes); err != nil {
		t.Fatalf("expected no error while decoding response; got %v", err)
	}
	if len(nodes) != 1 || nodes[0].Depth != 1 {
		t.Fatalf("expected a single root node at depth 1; got %+v", nodes)
	}

	req = httptest.NewRequest("GET", "/nodes?depth=invalid", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d; got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestServerTrace(t *testing.T) {
	srv := testServer(t)
	handler := srv.routes()

	payload := `{"origin": [0, 0, 0], "direction": [1, 0, 0]}`
	req := httptest.NewRequest("POST", "/trace", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d; got %d", http.StatusOK, rec.Code)
	}

	var res traceResponse
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("expected no error while decoding response; got %v", err)
	}
	if !res.Hit {
		t.Fatal("expected the ray to hit the wall")
	}
	if res.Distance != 2 {
		t.Fatalf("expected a hit at distance 2; got %v", res.Distance)
	}
	expPoint := types.Vec3{2, 0, 0}
	if res.Point == nil || *res.Point != expPoint {
		t.Fatalf("expected hit point %v; got %v", expPoint, res.Point)
	}
	if !strings.Contains(res.Object, "wall") {
		t.Fatalf(`expected the hit object to describe the "wall" mesh; got %q`, res.Object)
	}

	payload = `{"origin": [0, 5, 0], "direction": [0, 1, 0]}`
	req = httptest.NewRequest("POST", "/trace", strings.NewReader(payload))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	res = traceResponse{}
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("expected no error while decoding response; got %v", err)
	}
	if res.Hit {
		t.Fatalf("expected the ray to miss the scene; got %+v", res)
	}
}

func TestServerTraceErrors(t *testing.T) {
	srv := testServer(t)
	handler := srv.routes()

	req := httptest.NewRequest("POST", "/trace", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d; got %d", http.StatusBadRequest, rec.Code)
	}

	req = httptest.NewRequest("POST", "/trace", strings.NewReader(`{"origin": [0, 0, 0], "direction": [0, 0, 0]}`))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d; got %d", http.StatusBadRequest, rec.Code)
	}
}
