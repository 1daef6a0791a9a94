package main

import (
	"context"
	"flag"
	"fmt"
	"image/png"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/golang/glog"

	"github.com/peragwin/agentfx/agent"
	"github.com/peragwin/agentfx/audio"
	"github.com/peragwin/agentfx/audio/bands"
	"github.com/peragwin/agentfx/audio/fft"
	"github.com/peragwin/agentfx/audio/util"
	"github.com/peragwin/agentfx/barvis"
	"github.com/peragwin/agentfx/control"
	"github.com/peragwin/agentfx/gfx"
	"github.com/peragwin/agentfx/gfx/blobfield"
)

var (
	width  = flag.Int("width", 800, "width of window")
	height = flag.Int("height", 600, "height of window")

	configPath = flag.String("config", "", "blob field config json; defaults when missing")
	bars       = flag.Int("bars", 5, "number of visualizer bars")
	centered   = flag.Bool("centered", true, "put the lowest band in the middle")
	state      = flag.String("state", "idle", "initial agent state")

	useAudio    = flag.Bool("audio", false, "drive the bars from the default input device")
	listDevices = flag.Bool("list-devices", false, "print audio devices and exit")

	snapshot     = flag.String("snapshot", "", "render one software frame to this png and exit")
	snapshotTime = flag.Duration("snapshot-time", 0, "animation time of the snapshot frame")

	headless  = flag.Bool("headless", false, "render on the cpu without opening a window")
	frameRate = flag.Int("frame-rate", 30,
		"frame rate to target when rendering to something other than opengl")

	httpAddr = flag.String("http", "", "serve the graphql control api on this address, e.g. :8080")
)

func init() {
	// OpenGL requires that rendering functions be called from the main thread
	runtime.LockOSThread()
}

func main() {
	flag.Parse()
	defer glog.Flush()

	if *listDevices {
		if err := audio.PrintDevices(os.Stdout); err != nil {
			glog.Exitf("list devices: %v", err)
		}
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := blobfield.LoadConfig(*configPath)
	if err != nil {
		glog.Exitf("load config: %v", err)
	}
	initial, err := agent.ParseState(*state)
	if err != nil {
		glog.Exitf("%v", err)
	}

	opts := barvis.DefaultOptions()
	opts.BarCount = *bars
	opts.Centered = *centered

	sampler := startSampler(ctx, opts)
	vis := barvis.New(opts, sampler)
	defer vis.Close()
	vis.SetState(initial)

	if *snapshot != "" {
		if err := writeSnapshot(cfg, vis); err != nil {
			glog.Exitf("snapshot: %v", err)
		}
		return
	}

	var (
		backend blobfield.Backend
		pipe    *blobfield.Pipeline
		target  *blobfield.SoftwareTarget
	)
	if *headless {
		target = blobfield.NewSoftwareTarget(*width, *height)
		backend = target
	} else {
		pipe, err = blobfield.NewPipeline(ctx, cfg, &gfx.WindowConfig{
			Width: *width, Height: *height, Title: "agentfx", SwapInterval: 1,
		})
		if err != nil {
			glog.Exitf("graphics pipeline: %v", err)
		}
		defer pipe.Close()
		backend = pipe
	}

	renderer, err := blobfield.NewRenderer(backend, cfg)
	if err != nil {
		glog.Exitf("renderer: %v", err)
	}

	if *httpAddr != "" {
		serveControl(renderer, vis)
	}

	if pipe != nil {
		pipe.Run(renderer)
		return
	}
	runHeadless(ctx, renderer, target, vis)
}

func startSampler(ctx context.Context, opts barvis.Options) *bands.Sampler {
	bcfg := bands.DefaultConfig(opts.BarCount)
	bcfg.Layout = opts.BandLayout()
	sampler, err := bands.NewSampler(bcfg)
	if err != nil {
		glog.Exitf("band sampler: %v", err)
	}
	go sampler.Run(ctx)

	if !*useAudio {
		return sampler
	}

	acfg := audio.DefaultConfig()
	acfg.SampleRate = bcfg.SampleRate
	src, errc := audio.NewSource(ctx, acfg)
	frames := audio.Buffer(ctx, src, bcfg.FrameSize)

	pg := util.NewPreGain(util.DefaultPreGainParams)
	gained := audio.Node(ctx, frames, func(x []float64) []float64 {
		pg.Apply(x)
		return x
	})
	spectra := fft.NewFFTProcessor(bcfg.SampleRate, bcfg.FrameSize).Process(ctx, gained)
	sampler.SetTrack(spectra)

	go func() {
		select {
		case err := <-errc:
			glog.Warningf("audio input stopped, bars will decay: %v", err)
		case <-ctx.Done():
		}
	}()
	return sampler
}

func serveControl(r *blobfield.Renderer, vis *barvis.Visualizer) {
	srv, err := control.New(r, vis)
	if err != nil {
		glog.Exitf("control api: %v", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/api/v1/graphql", srv.Handler())
	go func() {
		glog.Infof("control api listening on %s", *httpAddr)
		if err := http.ListenAndServe(*httpAddr, mux); err != nil {
			glog.Errorf("control api: %v", err)
		}
	}()
}

func runHeadless(ctx context.Context, r *blobfield.Renderer, target *blobfield.SoftwareTarget, vis *barvis.Visualizer) {
	rate := *frameRate
	if rate <= 0 {
		rate = 30
	}
	ticker := time.NewTicker(time.Second / time.Duration(rate))
	defer ticker.Stop()

	frames := 0
	for {
		select {
		case <-ctx.Done():
			glog.Infof("rendered %d frames", frames)
			return
		case <-ticker.C:
			if r.RenderFrame() {
				vis.Draw(target.Image())
				frames++
			}
		}
	}
}

func writeSnapshot(cfg *blobfield.Config, vis *barvis.Visualizer) error {
	target := blobfield.NewSoftwareTarget(*width, *height)
	now := time.Unix(0, 0)
	r, err := blobfield.NewRenderer(target, cfg, blobfield.WithClock(func() time.Time { return now }))
	if err != nil {
		return err
	}
	now = now.Add(*snapshotTime)
	if !r.RenderFrame() {
		return fmt.Errorf("no drawable for a %dx%d frame", *width, *height)
	}
	vis.Draw(target.Image())

	f, err := os.Create(*snapshot)
	if err != nil {
		return err
	}
	if err := png.Encode(f, target.Image()); err != nil {
		f.Close()
		return err
	}
	glog.Infof("wrote %s", *snapshot)
	return f.Close()
}
