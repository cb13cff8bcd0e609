package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"sentinel/internal/config"
	"sentinel/internal/grid"
	"sentinel/internal/levelstore"
	"sentinel/internal/terrain"
)

type report struct {
	terrain.Summary `yaml:",inline"`
	Preview         string `yaml:"preview,omitempty"`
	CacheKey        string `yaml:"cacheKey,omitempty"`
}

func main() {
	var (
		cfgPath     string
		writeConfig string
		level       int
		previewDir  string
		cachePath   string
		verbose     bool
	)
	flag.StringVar(&cfgPath, "config", "", "path to a JSON or YAML configuration file")
	flag.StringVar(&writeConfig, "write-config", "", "write the default configuration as YAML to this path and exit")
	flag.IntVar(&level, "level", 0, "level number to generate")
	flag.StringVar(&previewDir, "preview", "", "directory to write a PNG preview into")
	flag.StringVar(&cachePath, "cache", "", "level store file to save the generated level into")
	flag.BoolVar(&verbose, "v", false, "log generation details to stderr")
	flag.Parse()

	if writeConfig != "" {
		if err := config.WriteDefault(writeConfig); err != nil {
			log.Fatalf("write default config: %v", err)
		}
		return
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	var logger *log.Logger
	if verbose {
		logger = log.New(os.Stderr, "levelgen ", log.LstdFlags|log.Lmicroseconds)
	}
	gen, err := terrain.NewGenerator(cfg.Levels, logger)
	if err != nil {
		log.Fatalf("initialise generator: %v", err)
	}
	g, summary, err := gen.GenerateWithSummary(level)
	if err != nil {
		log.Fatalf("generate level %d: %v", level, err)
	}
	out := report{Summary: summary}

	if previewDir != "" {
		path, err := grid.SavePreview(g, previewDir, levelName(level))
		if err != nil {
			log.Fatalf("save preview: %v", err)
		}
		out.Preview = path
	}

	if cachePath != "" {
		key, err := cacheLevel(cachePath, cfg.Levels, level, g)
		if err != nil {
			log.Fatalf("cache level: %v", err)
		}
		out.CacheKey = key.String()
	}

	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		log.Fatalf("encode summary: %v", err)
	}
	if err := enc.Close(); err != nil {
		log.Fatalf("flush summary: %v", err)
	}
}

func cacheLevel(path string, levels config.LevelsConfig, level int, g *grid.Grid) (levelstore.Key, error) {
	store, err := levelstore.OpenDiskStore(path)
	if err != nil {
		return levelstore.Key{}, err
	}
	defer store.Close()

	key, err := levelstore.KeyFor(levels, level)
	if err != nil {
		return levelstore.Key{}, err
	}
	if err := store.Save(key, g.Snapshot()); err != nil {
		return levelstore.Key{}, err
	}
	return key, nil
}

func levelName(level int) string {
	return fmt.Sprintf("level-%04d", level)
}
