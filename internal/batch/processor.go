package batch

import (
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"shadow-studio/internal/imageio"
	"shadow-studio/internal/raster"
	"shadow-studio/internal/session"
	"shadow-studio/internal/shadow"
)

// Config holds all shared resources for a batch run.
type Config struct {
	OutputDir string
	Format    imageio.Format
	Workers   int
	Defaults  session.Params
	Prep      session.Prep
	Images    *imageio.Cache // shared across jobs; backgrounds are often reused
	Quiet     bool           // suppress progress output
}

// Result holds the outcome of processing one job.
type Result struct {
	Name       string
	Success    bool
	Error      string
	Outputs    []string
	ContactRow int
	AnchorRow  int
}

// Run processes all jobs using a worker pool. A job with an empty name
// writes straight into cfg.OutputDir, others into a subdirectory named
// after the job.
func Run(cfg Config, jobs []Job) []Result {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Images == nil {
		cfg.Images = imageio.NewCache()
	}

	total := len(jobs)
	results := make([]Result, total)
	var processed atomic.Int64

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 && !cfg.Quiet {
					elapsed := time.Since(start).Seconds()
					rate := float64(p) / elapsed
					fmt.Printf("  [%d/%d] %.1f jobs/sec\n", p, total, rate)
				}
			}
		}
	}()

	// Worker pool
	jobChan := make(chan int, cfg.Workers*2)
	var wg sync.WaitGroup

	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobChan {
				results[idx] = processJob(cfg, jobs[idx])
				processed.Add(1)
			}
		}()
	}

	// Send work
	for i := range jobs {
		jobChan <- i
	}
	close(jobChan)

	wg.Wait()
	close(done)

	return results
}

func processJob(cfg Config, job Job) Result {
	fail := func(err error) Result {
		return Result{Name: job.Name, Error: err.Error()}
	}

	params, err := job.params(cfg.Defaults)
	if err != nil {
		return fail(err)
	}

	fg, err := cfg.Images.Load(job.Foreground)
	if err != nil {
		return fail(err)
	}
	bg, err := cfg.Images.Load(job.Background)
	if err != nil {
		return fail(err)
	}

	var assets *session.Assets
	if assets, err = assets.WithForeground(fg, cfg.Prep); err != nil {
		return fail(err)
	}
	if assets, err = assets.WithBackground(bg); err != nil {
		return fail(err)
	}
	if job.Depth != "" {
		img, err := cfg.Images.Load(job.Depth)
		if err != nil {
			return fail(err)
		}
		assets = assets.WithDepth(raster.DepthFromRed(img))
	}

	req, err := assets.Request(params)
	if err != nil {
		return fail(err)
	}
	res, err := shadow.Generate(req)
	if err != nil {
		return fail(err)
	}

	outDir := cfg.OutputDir
	if job.Name != "" {
		outDir = filepath.Join(cfg.OutputDir, job.Name)
	}
	paths, err := imageio.WriteResult(outDir, res, cfg.Format)
	if err != nil {
		return fail(err)
	}

	return Result{
		Name:       job.Name,
		Success:    true,
		Outputs:    paths,
		ContactRow: res.ContactRow,
		AnchorRow:  res.AnchorRow,
	}
}
