package cmd

import (
	"errors"
	"image"
	"os"
	"time"

	"github.com/Ambroisie/beevee/geom"
	"github.com/Ambroisie/beevee/scene"
	"github.com/Ambroisie/beevee/scene/reader"
	"github.com/Ambroisie/beevee/types"
	"github.com/chewxy/math32"
	"github.com/urfave/cli"
	"golang.org/x/image/bmp"
)

// Render an orthographic depth map of the scene and write it out as a bmp
// image. The virtual camera looks down the Z axis at the XY extents of the
// scene bounds; brighter pixels are closer to the camera and pixels whose
// rays miss everything stay black.
func RenderHeatmap(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return errors.New("missing scene file argument")
	}

	frameW := ctx.Int("width")
	frameH := ctx.Int("height")
	if frameW < 1 || frameH < 1 {
		return errors.New("frame dimensions must be positive")
	}

	sc, err := reader.ReadScene(ctx.Args().First())
	if err != nil {
		return err
	}
	if sc.Bounds().IsEmpty() {
		return errors.New("scene contains no geometry")
	}

	logger.Noticef("rendering %dx%d depth map", frameW, frameH)
	start := time.Now()
	im := renderDepthMap(sc, frameW, frameH)
	logger.Noticef("rendered depth map in %d ms", time.Since(start).Nanoseconds()/1e6)

	imgFile := ctx.String("out")
	f, err := os.Create(imgFile)
	if err != nil {
		return err
	}
	defer f.Close()

	logger.Noticef("writing depth map to %s", imgFile)
	return bmp.Encode(f, im)
}

// Shoot one primary ray per pixel along -Z and map the hit distances onto a
// gray ramp. Distances are normalized against the observed depth range so
// the output keeps its contrast regardless of the scene scale.
func renderDepthMap(sc *scene.Scene, frameW, frameH int) *image.Gray {
	bounds := sc.Bounds()
	size := bounds.Diagonal()

	// Park the ray origins on a plane just in front of the scene so every
	// primary ray crosses the full bounds travelling along -Z.
	originZ := bounds.Max[2] + 1

	depths := make([]float32, frameW*frameH)
	minDepth := math32.Inf(1)
	maxDepth := math32.Inf(-1)

	dir := types.Vec3{0, 0, -1}
	for y := 0; y < frameH; y++ {
		for x := 0; x < frameW; x++ {
			origin := types.Vec3{
				bounds.Min[0] + (float32(x)+0.5)/float32(frameW)*size[0],
				bounds.Max[1] - (float32(y)+0.5)/float32(frameH)*size[1],
				originZ,
			}

			depths[y*frameW+x] = -1
			if hit, found := sc.Trace(geom.NewRay(origin, dir)); found {
				depths[y*frameW+x] = hit.Distance
				minDepth = math32.Min(minDepth, hit.Distance)
				maxDepth = math32.Max(maxDepth, hit.Distance)
			}
		}
	}

	im := image.NewGray(image.Rect(0, 0, frameW, frameH))
	depthRange := maxDepth - minDepth
	for i, depth := range depths {
		if depth < 0 {
			continue
		}

		shade := uint8(255)
		if depthRange > 0 {
			shade = 255 - uint8((depth-minDepth)/depthRange*205)
		}
		im.Pix[i] = shade
	}

	return im
}
