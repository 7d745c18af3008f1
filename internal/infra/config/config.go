package config

import (
	"github.com/caarlos0/env/v11"
)

// Config holds the environment-overridable defaults. CLI flags take
// precedence; these only seed the flag defaults so that an operator can bake
// a site-wide COLMAP image or binary location into the environment.
type Config struct {
	DockerImage  string `env:"COLMAP_DOCKER_IMAGE" envDefault:"roboticsmicrofarms/colmap:3.8"`
	DockerBinary string `env:"COLMAP_DOCKER_BIN"   envDefault:"docker"`
	GPUs         string `env:"COLMAP_GPUS"         envDefault:"all"`
	MaxImageSize int    `env:"COLMAP_MAX_IMAGE_SIZE" envDefault:"2000"`

	FFmpegBinary  string  `env:"FFMPEG_BIN"     envDefault:"ffmpeg"`
	FFprobeBinary string  `env:"FFPROBE_BIN"    envDefault:"ffprobe"`
	FPS           float64 `env:"FFMPEG_FPS"     envDefault:"2.0"`
	VideoQuality  string  `env:"FFMPEG_QUALITY" envDefault:"medium"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
