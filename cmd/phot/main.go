package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/nasa-jpl/apphot/aperture"
	"github.com/nasa-jpl/apphot/background"
	"github.com/nasa-jpl/apphot/client"
	"github.com/nasa-jpl/apphot/grid"
	"github.com/nasa-jpl/apphot/imgio"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/theckman/yacspin"
	"golang.org/x/sync/errgroup"

	yml "gopkg.in/yaml.v2"
)

var (
	// Version is the version number.  Typically injected via ldflags with git build
	Version = "1"

	// ConfigFileName is what it sounds like
	ConfigFileName = "phot.yml"
	k              = koanf.New(".")
)

// serverFrame is the placeholder image name used when frames come from a
// photsrv instance instead of disk.
const serverFrame = "server-frame"

type sky struct {
	// Subtract enables background subtraction before measuring
	Subtract bool `yaml:"Subtract"`

	// Estimator is one of mean, median, mode
	Estimator string `yaml:"Estimator"`

	// ClipLow and ClipHigh are the sigma clipping bounds.  Zero for both disables clipping
	ClipLow  float64 `yaml:"ClipLow"`
	ClipHigh float64 `yaml:"ClipHigh"`

	// Box is the mesh cell size in pixels.  Zero estimates one scalar for the whole frame
	Box int `yaml:"Box"`

	// Filter is the median filter width applied to the mesh, in cells.  Must be odd
	Filter int `yaml:"Filter"`
}

type config struct {
	Images     []string        `yaml:"Images"`
	ErrorMap   string          `yaml:"ErrorMap"`
	Apertures  []aperture.Spec `yaml:"Apertures"`
	Method     string          `yaml:"Method"`
	Background sky             `yaml:"Background"`
	OutDir     string          `yaml:"OutDir"`
	Workers    int             `yaml:"Workers"`
	Source     string          `yaml:"Source"`
}

func setupconfig() {
	k.Load(structs.Provider(config{
		Apertures: []aperture.Spec{
			{Type: "circle", X: 50, Y: 50, R: 5}},
		Method: "exact",
		Background: sky{
			Estimator: "median",
			ClipLow:   3,
			ClipHigh:  3,
			Filter:    3},
		OutDir:  ".",
		Workers: 4}, "koanf"), nil)
	if err := k.Load(file.Provider(ConfigFileName), yaml.Parser()); err != nil {
		errtxt := err.Error()
		if !strings.Contains(errtxt, "no such") { // file missing, who cares
			log.Fatalf("error loading config: %v", err)
		}
	}
}
func root() {
	str := `phot measures aperture photometry on a batch of images
and writes one CSV table per image.  Frames come from files
on disk, or from a running photsrv instance.

Usage:
	phot <command>

Commands:
	run
	help
	mkconf
	conf
	version`
	fmt.Println(str)
}

func help() {
	str := `phot is amenable to configuration via its .yaml file.  For a primer on YAML, see
https://yaml.org/start.html

When no configuration is provided, the defaults are used.  Keys are not case-sensitive.
The command mkconf generates the configuration file with the default values.
There is no need to do this unless you want to start from the prepopulated defaults when making
a config file.

Images is the list of frames to measure.  FITS is read natively; png, jpeg and tiff
are converted to grayscale.  When Images is empty and Source is the address of a photsrv
instance, a single frame is pulled from the server and measured instead.

Apertures is a list of shapes.  type is one of circle, circle-annulus, ellipse,
ellipse-annulus, rectangle, rectangle-annulus; x and y are the center in pixels and the
remaining keys are the parameters of that shape.  Angles are radians.  Method is one of
center, exact, or subpixel(n).

Background.Subtract causes the sky to be estimated and removed before measuring.
Box 0 removes a single scalar from the whole frame; a positive Box builds a mesh of
Box x Box pixel cells, median filters it with a Filter-cell window, and removes the
upsampled map.  ErrorMap names a per-pixel 1-sigma uncertainty frame; when given, the
output tables gain an aperture_sum_err column.

Each image pixel (i, j) is centered on integer coordinates (i, j), and results are
written to OutDir/<image>.csv.  Workers frames are measured concurrently.`
	fmt.Println(str)
}

func mkconf() {
	c := config{}
	err := k.Unmarshal("", &c)
	if err != nil {
		log.Fatal(err)
	}
	f, err := os.Create(ConfigFileName)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()
	err = yml.NewEncoder(f).Encode(c)
	if err != nil {
		log.Fatal(err)
	}
}

func printconf() {
	c := config{}
	err := k.Unmarshal("", &c)
	if err != nil {
		log.Fatal(err)
	}
	err = yml.NewEncoder(os.Stdout).Encode(c)
	if err != nil {
		log.Fatal(err)
	}
}

func pversion() {
	fmt.Printf("phot version %v\n", Version)
}

// fetch retrieves one frame, from disk or from the photsrv at cfg.Source.
func fetch(ctx context.Context, cfg config, name string) (*grid.Grid, error) {
	if name == serverFrame {
		return client.New(cfg.Source).Frame(ctx)
	}
	return imgio.ReadFile(name)
}

// subtractSky removes the background from frame per the sky config.
func subtractSky(frame *grid.Grid, s sky, est background.Estimator) (*grid.Grid, error) {
	if s.Box > 0 {
		m := background.Mesh{
			BoxSize:    s.Box,
			FilterSize: s.Filter,
			Estimator:  est,
			ClipLow:    s.ClipLow,
			ClipHigh:   s.ClipHigh}
		skyMap, err := m.Map(frame)
		if err != nil {
			return nil, err
		}
		return frame.Sub(skyMap)
	}
	var (
		lvl float64
		err error
	)
	if s.ClipLow > 0 || s.ClipHigh > 0 {
		lvl, err = background.EstimateClipped(frame, est, s.ClipLow, s.ClipHigh)
	} else {
		lvl, err = background.Estimate(frame, est)
	}
	if err != nil {
		return nil, err
	}
	return frame.SubScalar(lvl), nil
}

// outPath swaps the image extension for .csv and moves the file to dir.
func outPath(dir, image string) string {
	base := filepath.Base(image)
	return filepath.Join(dir, strings.TrimSuffix(base, filepath.Ext(base))+".csv")
}

func writeTable(path string, tab aperture.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return tab.WriteCSV(f)
}

func run() {
	cfg := config{}
	k.Unmarshal("", &cfg)

	method, err := aperture.ParseMethod(cfg.Method)
	if err != nil {
		log.Fatal(err)
	}
	aps, err := aperture.BuildAll(cfg.Apertures)
	if err != nil {
		log.Fatal(err)
	}
	if len(aps) == 0 {
		log.Fatal("no apertures configured, nothing to measure")
	}
	var est background.Estimator
	if cfg.Background.Subtract {
		est, err = background.ParseEstimator(cfg.Background.Estimator)
		if err != nil {
			log.Fatal(err)
		}
	}
	var errmap *grid.Grid
	if cfg.ErrorMap != "" {
		errmap, err = imgio.ReadFile(cfg.ErrorMap)
		if err != nil {
			log.Fatal(err)
		}
	}
	images := cfg.Images
	if len(images) == 0 {
		if cfg.Source == "" {
			log.Fatal("no images listed and no Source server configured")
		}
		images = []string{serverFrame}
	}
	if err := os.MkdirAll(cfg.OutDir, 0777); err != nil {
		log.Fatal(err)
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	spin, err := yacspin.New(yacspin.Config{
		Frequency:     100 * time.Millisecond,
		CharSet:       yacspin.CharSets[59],
		Suffix:        " measuring",
		Message:       fmt.Sprintf("0/%d", len(images)),
		StopCharacter: "✓",
		StopColors:    []string{"fgGreen"}})
	if err != nil {
		log.Fatal(err)
	}
	spin.Start()

	var done int32
	g, gctx := errgroup.WithContext(context.Background())
	g.SetLimit(workers)
	for _, img := range images {
		img := img
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			frame, err := fetch(gctx, cfg, img)
			if err != nil {
				return fmt.Errorf("%s: %w", img, err)
			}
			if cfg.Background.Subtract {
				frame, err = subtractSky(frame, cfg.Background, est)
				if err != nil {
					return fmt.Errorf("%s: %w", img, err)
				}
			}
			tab, err := aperture.Photometry(aps, frame, errmap, method)
			if err != nil {
				return fmt.Errorf("%s: %w", img, err)
			}
			if err := writeTable(outPath(cfg.OutDir, img), tab); err != nil {
				return fmt.Errorf("%s: %w", img, err)
			}
			n := atomic.AddInt32(&done, 1)
			spin.Message(fmt.Sprintf("%d/%d", n, len(images)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		spin.StopFailMessage(err.Error())
		spin.StopFail()
		os.Exit(1)
	}
	spin.Stop()
}

func main() {
	var cmd string
	args := os.Args
	if len(args) == 1 {
		root()
		return
	}
	setupconfig()
	cmd = args[1]
	cmd = strings.ToLower(cmd)
	switch cmd {
	case "help":
		help()
		return
	case "mkconf":
		mkconf()
		return
	case "conf":
		printconf()
		return
	case "run":
		run()
		return
	case "version":
		pversion()
		return
	default:
		log.Fatal("unknown command")
	}
}
