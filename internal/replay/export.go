package replay

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"overlaytv/internal/fonts"
	"overlaytv/internal/geometry"
	"overlaytv/internal/models"
	"overlaytv/internal/render"
)

// Frame is one exported overlay image.
type Frame struct {
	Index int
	Time  float64
	Path  string
}

type ExportOptions struct {
	Dir      string
	Viewport geometry.Viewport
	// Workers defaults to the number of CPUs.
	Workers int
	Logger  *slog.Logger
}

// Export renders the overlay layer of p at each time into Dir as
// frame_00000.png, frame_00001.png and so on. Frames render in parallel;
// each worker owns its font registry and surface. The first failure
// cancels the rest.
func Export(ctx context.Context, p models.Project, times []float64, opts ExportOptions) ([]Frame, error) {
	if opts.Viewport.Empty() {
		return nil, fmt.Errorf("export: empty viewport")
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, max(len(times), 1))
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	frames := make([]Frame, len(times))
	jobs := make(chan int)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(jobs)
		for i := range times {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	for w := 0; w < workers; w++ {
		g.Go(func() error {
			reg := fonts.NewRegistry()
			defer reg.Close()
			r := render.NewRenderer(reg, log)

			for i := range jobs {
				f := Frame{Index: i, Time: times[i], Path: filepath.Join(opts.Dir, fmt.Sprintf("frame_%05d.png", i))}
				if err := writeFrame(r, f.Path, render.Scene{
					Viewport:    opts.Viewport,
					Annotations: visibleAt(p.Annotations, f.Time),
				}); err != nil {
					return fmt.Errorf("frame %d at %.2fs: %w", i, f.Time, err)
				}
				frames[i] = f
				log.Debug("frame exported", "index", i, "time", f.Time, "worker", w)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	log.Info("export finished", "frames", len(frames), "workers", workers, "dir", opts.Dir)
	return frames, nil
}

func writeFrame(r *render.Renderer, path string, sc render.Scene) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return r.WritePNG(f, sc)
}

func visibleAt(list []models.Annotation, t float64) []models.Annotation {
	var out []models.Annotation
	for _, a := range list {
		if a.VisibleAt(t) {
			out = append(out, a)
		}
	}
	return out
}
