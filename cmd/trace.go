package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/Ambroisie/beevee/geom"
	"github.com/Ambroisie/beevee/scene"
	"github.com/Ambroisie/beevee/scene/reader"
	"github.com/Ambroisie/beevee/types"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Primitives that can report their surface normal at a hit point.
type normaled interface {
	Normal(point types.Vec3) types.Vec3
}

// Trace a single ray or a randomized ray batch through a scene and report
// what was hit.
func TraceScene(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return errors.New("missing scene file argument")
	}

	sc, err := reader.ReadScene(ctx.Args().First())
	if err != nil {
		return err
	}

	if rayCount := ctx.Int("rays"); rayCount > 0 {
		return traceRandomRays(sc, rayCount, ctx.Int64("seed"))
	}

	origin, err := parseVec3Flag(ctx.String("origin"))
	if err != nil {
		return fmt.Errorf("invalid origin: %s", err.Error())
	}
	dir, err := parseVec3Flag(ctx.String("direction"))
	if err != nil {
		return fmt.Errorf("invalid direction: %s", err.Error())
	}
	if dir.Len() == 0 {
		return errors.New("direction must be a non-zero vector")
	}

	hit, found := sc.Trace(geom.NewRay(origin, dir))
	if !found {
		logger.Notice("ray missed the scene")
		return nil
	}

	logger.Noticef("hit %s at distance %g", hit.Object, hit.Distance)
	logger.Noticef("  primitive: %s", hit.Primitive)
	logger.Noticef("  point: %v", hit.Point)
	if prim, ok := hit.Primitive.(normaled); ok {
		logger.Noticef("  normal: %v", prim.Normal(hit.Point))
	}

	return nil
}

// Fire a batch of randomized rays at the scene and report aggregate hit
// statistics. Ray origins are sampled on a sphere enclosing the scene
// bounds and aimed at random points inside the bounds so that every ray
// crosses the indexed volume.
func traceRandomRays(sc *scene.Scene, count int, seed int64) error {
	bounds := sc.Bounds()
	if bounds.IsEmpty() {
		return errors.New("scene contains no geometry")
	}

	center := bounds.Centroid()
	size := bounds.Diagonal()
	radius := size.Len()

	rng := rand.New(rand.NewSource(seed))
	logger.Noticef("tracing %d rays with seed %d", count, seed)

	hits := 0
	start := time.Now()
	for i := 0; i < count; i++ {
		origin := center.Add(randomUnitVec3(rng).Mul(radius))
		target := bounds.Min.Add(types.Vec3{
			rng.Float32() * size[0],
			rng.Float32() * size[1],
			rng.Float32() * size[2],
		})
		dir := target.Sub(origin)
		if dir.Len() == 0 {
			dir = types.Vec3{0, 0, 1}
		}

		if _, found := sc.Trace(geom.NewRay(origin, dir)); found {
			hits++
		}
	}
	elapsed := time.Since(start)

	displayBatchStats(sc, count, hits, elapsed)
	return nil
}

// Pick a uniformly distributed point on the unit sphere using rejection
// sampling.
func randomUnitVec3(rng *rand.Rand) types.Vec3 {
	for {
		v := types.Vec3{
			rng.Float32()*2 - 1,
			rng.Float32()*2 - 1,
			rng.Float32()*2 - 1,
		}
		if l := v.Len(); l > 1e-3 && l <= 1 {
			return v.Mul(1 / l)
		}
	}
}

func displayBatchStats(sc *scene.Scene, rays, hits int, elapsed time.Duration) {
	treeStats := sc.Tree().Stats()

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Rays", "Hits", "Hit %", "Index nodes", "Index depth", "Trace time", "Rays/sec"})
	table.Append([]string{
		fmt.Sprintf("%d", rays),
		fmt.Sprintf("%d", hits),
		fmt.Sprintf("%02.1f %%", float64(hits)*100/float64(rays)),
		fmt.Sprintf("%d", treeStats.Nodes),
		fmt.Sprintf("%d", treeStats.MaxDepth),
		fmt.Sprintf("%s", elapsed.Round(time.Microsecond)),
		fmt.Sprintf("%.0f", float64(rays)/elapsed.Seconds()),
	})

	table.Render()
	logger.Noticef("trace statistics\n%s", buf.String())
}

// Parse a vector flag of the form "x,y,z".
func parseVec3Flag(value string) (types.Vec3, error) {
	fields := strings.Split(value, ",")
	if len(fields) != 3 {
		return types.Vec3{}, fmt.Errorf("expected 3 comma-separated values; got %d", len(fields))
	}

	var v types.Vec3
	for i, field := range fields {
		val, err := strconv.ParseFloat(strings.TrimSpace(field), 32)
		if err != nil {
			return types.Vec3{}, fmt.Errorf("could not parse component %d of %q", i, value)
		}
		v[i] = float32(val)
	}

	return v, nil
}
