package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/eringen/clubsite"
)

const (
	configFileName = "clubsite"
	configFileType = "yaml"
)

// Config keys. Each is also readable from the environment variables listed
// in envBindings and, for some, from a command-line flag.
const (
	cfgKeyName        = "name"
	cfgKeyURL         = "url"
	cfgKeyDescription = "description"
	cfgKeyAuthor      = "author"
	cfgKeyCMSURL      = "cms_url"
	cfgKeyMediaURL    = "media_url"
	cfgKeyCMSTimeout  = "cms_timeout"
	cfgKeyAddr        = "addr"
	cfgKeyLogLevel    = "log_level"
	cfgKeyFeedSize    = "feed_size"
)

// envBindings lists the environment variables for each key, highest
// priority first.
var envBindings = map[string][]string{
	cfgKeyName:        {"SITE_NAME"},
	cfgKeyURL:         {"SITE_URL"},
	cfgKeyDescription: {"SITE_DESCRIPTION"},
	cfgKeyAuthor:      {"SITE_AUTHOR"},
	cfgKeyCMSURL:      {"STRAPI_URL", "CMS_URL"},
	cfgKeyMediaURL:    {"MEDIA_URL"},
	cfgKeyCMSTimeout:  {"CMS_TIMEOUT"},
	cfgKeyAddr:        {"ADDR"},
	cfgKeyLogLevel:    {"LOG_LEVEL"},
	cfgKeyFeedSize:    {"FEED_SIZE"},
}

var flagBindings = map[string]string{
	cfgKeyAddr:     "addr",
	cfgKeyCMSURL:   "cms-url",
	cfgKeyLogLevel: "log-level",
}

// fileConfig is the on-disk shape of clubsite.yaml.
type fileConfig struct {
	Name        string        `mapstructure:"name" yaml:"name"`
	URL         string        `mapstructure:"url" yaml:"url"`
	Description string        `mapstructure:"description" yaml:"description"`
	Author      string        `mapstructure:"author" yaml:"author"`
	CMSURL      string        `mapstructure:"cms_url" yaml:"cms_url"`
	MediaURL    string        `mapstructure:"media_url" yaml:"media_url"`
	CMSTimeout  time.Duration `mapstructure:"cms_timeout" yaml:"cms_timeout"`
	Addr        string        `mapstructure:"addr" yaml:"addr"`
	LogLevel    string        `mapstructure:"log_level" yaml:"log_level"`
	FeedSize    int           `mapstructure:"feed_size" yaml:"feed_size"`
}

func (f fileConfig) siteConfig() clubsite.SiteConfig {
	return clubsite.SiteConfig{
		Name:        f.Name,
		URL:         f.URL,
		Description: f.Description,
		Author:      f.Author,
		CMSURL:      f.CMSURL,
		MediaURL:    f.MediaURL,
		CMSTimeout:  f.CMSTimeout,
		Addr:        f.Addr,
		LogLevel:    f.LogLevel,
		FeedSize:    f.FeedSize,
	}
}

func toFileConfig(c clubsite.SiteConfig) fileConfig {
	return fileConfig{
		Name:        c.Name,
		URL:         c.URL,
		Description: c.Description,
		Author:      c.Author,
		CMSURL:      c.CMSURL,
		MediaURL:    c.MediaURL,
		CMSTimeout:  c.CMSTimeout,
		Addr:        c.Addr,
		LogLevel:    c.LogLevel,
		FeedSize:    c.FeedSize,
	}
}

// loadConfig merges, lowest priority first, clubsite.yaml, the environment
// and any changed flags. An explicit path must exist; the default
// clubsite.yaml in the working directory is optional. Unset fields are left
// for clubsite.New to default.
func loadConfig(path string, flags *pflag.FlagSet) (clubsite.SiteConfig, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configFileName)
		v.SetConfigType(configFileType)
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return clubsite.SiteConfig{}, fmt.Errorf("read config: %w", err)
		}
	}

	for key, envs := range envBindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return clubsite.SiteConfig{}, fmt.Errorf("bind env %s: %w", key, err)
		}
	}
	if flags != nil {
		for key, name := range flagBindings {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return clubsite.SiteConfig{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var fc fileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return clubsite.SiteConfig{}, fmt.Errorf("decode config: %w", err)
	}
	return fc.siteConfig(), nil
}
