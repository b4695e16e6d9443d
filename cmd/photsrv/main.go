package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/nasa-jpl/apphot/phothttp"
	"github.com/nasa-jpl/apphot/recorder"
	"github.com/nasa-jpl/apphot/server"
	"github.com/nasa-jpl/apphot/server/middleware/ratelimit"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"

	yml "gopkg.in/yaml.v2"
)

var (
	// Version is the version number.  Typically injected via ldflags with git build
	Version = "1"

	// ConfigFileName is what it sounds like
	ConfigFileName = "photsrv.yml"
	k              = koanf.New(".")
)

type record struct {
	// Root is the root folder measurements are written to.  Empty disables recording
	Root string `yaml:"Root"`

	// Prefix is the filename prefix to use
	Prefix string `yaml:"Prefix"`
}

type limits struct {
	// RPS is the sustained request rate in requests per second.  Zero or less
	// leaves the server unthrottled
	RPS float64 `yaml:"RPS"`

	// Burst is the number of requests which may arrive at once
	Burst int `yaml:"Burst"`
}

type config struct {
	Addr      string `yaml:"Addr"`
	Root      string `yaml:"Root"`
	MemoSize  int    `yaml:"MemoSize"`
	Recent    int    `yaml:"Recent"`
	Recorder  record `yaml:"Recorder"`
	RateLimit limits `yaml:"RateLimit"`
}

func setupconfig() {
	k.Load(structs.Provider(config{
		Addr:     ":8000",
		Root:     "/phot",
		MemoSize: 128,
		Recent:   100,
		Recorder: record{Prefix: "phot"},
		RateLimit: limits{
			RPS:   0,
			Burst: 1}}, "koanf"), nil)
	if err := k.Load(file.Provider(ConfigFileName), yaml.Parser()); err != nil {
		errtxt := err.Error()
		if !strings.Contains(errtxt, "no such") { // file missing, who cares
			log.Fatalf("error loading config: %v", err)
		}
	}
}
func root() {
	str := `photsrv exposes aperture photometry over HTTP
This enables a server-client architecture,
and the clients can leverage the excellent HTTP
libraries for any programming language,
instead of custom socket logic.

Usage:
	photsrv <command>

Commands:
	run
	help
	mkconf
	conf
	version`
	fmt.Println(str)
}

func help() {
	str := `photsrv is amenable to configuration via its .yaml file.  For a primer on YAML, see
https://yaml.org/start.html

When no configuration is provided, the defaults are used.  Keys are not case-sensitive.
The command mkconf generates the configuration file with the default values.
There is no need to do this unless you want to start from the prepopulated defaults when making
a config file.

Recorder.Root '' (the default) disables recording.  When it is a folder, every measurement
made through the server is appended as CSV to a file under that folder, one file per day
and prefix.  The recording behavior can be changed at runtime through the /record routes.

RateLimit.RPS 0 (the default) leaves the server unthrottled.  When it is positive, requests
beyond the sustained rate receive HTTP 429.  The limit can be changed at runtime through
the /rate-limit route.

MemoSize is the number of measurement replies kept in memory to answer repeated requests
without recomputation.  Recent is the number of measurement durations and timestamps
reported by /recent.`
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
	fmt.Printf("photsrv version %v\n", Version)
}

func run() {
	cfg := config{}
	k.Unmarshal("", &cfg)

	var rec *recorder.Recorder
	args := cfg.Recorder
	if args.Root != "" {
		rec = &recorder.Recorder{Root: args.Root, Prefix: args.Prefix, Enabled: true}
	}
	phothttp.Version = Version
	h := phothttp.New(cfg.MemoSize, cfg.Recent, rec)

	mux := chi.NewRouter()
	if cfg.RateLimit.RPS > 0 {
		l := ratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		ratelimit.Inject(h, l)
		mux.Use(l.Check)
	}
	if rec != nil {
		recorder.NewHTTPWrapper(rec).Inject(h)
	}

	// clean up the submux string
	hndlrS := cfg.Root
	hndlrS = server.SubMuxSanitize(hndlrS)
	root := chi.NewRouter()
	root.Use(middleware.Logger)
	root.Mount(hndlrS, mux)
	h.RT().Bind(mux)
	addr := cfg.Addr + cfg.Root
	log.Println("now listening for requests at ", addr)
	log.Fatal(http.ListenAndServe(cfg.Addr, root))
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
