package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"lpcfmt/internal/config"
	"lpcfmt/internal/driver"
	"lpcfmt/internal/logging"
	"lpcfmt/internal/orchestrator"
)

// env is what a formatting command needs: config, logger, orchestrator and
// the optional on-disk cache.
type env struct {
	cfg  config.Config
	log  *zap.SugaredLogger
	orch *orchestrator.Orchestrator
	drv  *driver.Driver
	disk *driver.DiskCache
}

func persistentString(cmd *cobra.Command, name string) (string, error) {
	v, err := cmd.Root().PersistentFlags().GetString(name)
	if err != nil {
		return "", fmt.Errorf("failed to get %s flag: %w", name, err)
	}
	return v, nil
}

// newEnv resolves the config from --config or the working directory,
// applies flag overrides and wires the pipeline.
func newEnv(cmd *cobra.Command) (*env, error) {
	explicit, err := persistentString(cmd, "config")
	if err != nil {
		return nil, err
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Resolve(explicit, wd)
	if err != nil {
		return nil, err
	}

	level, err := persistentString(cmd, "log-level")
	if err != nil {
		return nil, err
	}
	if level == "" {
		level = cfg.Log.Level
	}
	logFormat, err := persistentString(cmd, "log-format")
	if err != nil {
		return nil, err
	}
	if logFormat == "" {
		logFormat = cfg.Log.Format
	}
	log := logging.Sugared(level, logging.ParseFormat(logFormat), os.Stderr)
	if cfg.Path != "" {
		log.Debugw("config loaded", "path", cfg.Path)
	}

	orch := orchestrator.New(cfg.Orchestrator(), log.Named(logging.ComponentOrchestrator))
	orch.Validator().UpdateConfig(cfg.Validation)

	e := &env{
		cfg:  cfg,
		log:  log,
		orch: orch,
		drv:  driver.New(orch, log.Named(logging.ComponentDriver)),
	}

	cacheFile, err := persistentString(cmd, "cache-file")
	if err != nil {
		return nil, err
	}
	if cacheFile == "" {
		cacheFile = cfg.Pipeline.CacheFile
	}
	if cacheFile != "" && orch.Cache() != nil {
		e.disk = driver.NewDiskCache(cacheFile)
		n, err := e.disk.Load(orch.Cache())
		if err != nil {
			log.Warnw("ignoring unreadable cache snapshot", "path", cacheFile, "error", err)
		} else {
			log.Debugw("cache snapshot loaded", "path", cacheFile, "entries", n)
		}
	}
	return e, nil
}

// close persists the cache and stops the pipeline.
func (e *env) close() {
	if e.disk != nil {
		if err := e.disk.Save(e.orch.Cache()); err != nil {
			e.log.Warnw("cannot save cache snapshot", "path", e.disk.Path(), "error", err)
		}
	}
	e.orch.Dispose()
	_ = e.log.Sync()
}
