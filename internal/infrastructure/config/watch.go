package config

import (
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Watcher keeps the viper instance from the initial load so the config
// file can be watched for changes after startup wiring completes.
type Watcher struct {
	v *viper.Viper
}

// LoadAndWatch loads configuration and returns a watcher primed on the
// same file. Call Start on the watcher once a logger exists.
func LoadAndWatch(configPath string) (*Config, *Watcher, error) {
	cfg, v, err := load(configPath)
	if err != nil {
		return nil, nil, err
	}
	return cfg, &Watcher{v: v}, nil
}

// Start begins delivering reloads. A fresh configuration is validated and
// handed to onReload; a broken edit is logged and the running
// configuration stays in effect.
func (w *Watcher) Start(logger *zap.Logger, onReload func(*Config)) {
	w.v.OnConfigChange(func(event fsnotify.Event) {
		var fresh Config
		if err := w.v.Unmarshal(&fresh); err != nil {
			logger.Error("config reload failed",
				zap.String("file", event.Name),
				zap.Error(err),
			)
			return
		}
		if err := fresh.Validate(); err != nil {
			logger.Error("config reload rejected",
				zap.String("file", event.Name),
				zap.Error(err),
			)
			return
		}

		logger.Info("configuration reloaded",
			zap.String("file", event.Name),
			zap.String("log_level", fresh.App.LogLevel),
		)
		onReload(&fresh)
	})
	w.v.WatchConfig()
}
