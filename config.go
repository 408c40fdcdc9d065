package spimotor

import (
	"fmt"
	"os"
	"regexp"
	"strconv"

	"github.com/brianrwillis/SPIMotorController/mc33879"
	"go.yaml.in/yaml/v4"
)

type Config struct {
	Debug           bool                `yaml:"debug"`
	Socket          string              `yaml:"socket"`
	Port            string              `yaml:"port"` // empty means auto-detect the bridge
	ReadTimeout     Duration            `yaml:"read_timeout"`
	ChannelSettings map[string]*Channel `yaml:"channel_settings"`
}

type Channel struct {
	ID    mc33879.Channel `yaml:"-"`
	Label string          `yaml:"label"`
}

// Labels maps each configured output to its display label.
func (c Config) Labels() map[mc33879.Channel]string {
	labels := make(map[mc33879.Channel]string, len(c.ChannelSettings))
	for _, ch := range c.ChannelSettings {
		labels[ch.ID] = ch.Label
	}
	return labels
}

func Load(path string) (Config, error) {
	var c Config

	f, err := os.Open(path)
	if err != nil {
		return c, err
	}
	defer f.Close()

	codec := yaml.NewDecoder(f)
	err = codec.Decode(&c)
	if err != nil {
		return c, err
	}

	//

	reName := regexp.MustCompile(`^out(\d+)$`)
	for cname, channel := range c.ChannelSettings {
		match := reName.FindStringSubmatch(cname)
		if len(match) != 2 {
			return c, fmt.Errorf("%s: invalid name", cname)
		}
		if channel == nil {
			// A bare `outN:` entry decodes as a nil pointer; it just means
			// all defaults.
			channel = &Channel{}
			c.ChannelSettings[cname] = channel
		}
		id, err := strconv.ParseUint(match[1], 10, 8)
		if err != nil {
			return c, fmt.Errorf("%s: invalid number", cname) // Should not happen because of the regex check
		}
		if id < 1 || id > mc33879.OutputCount {
			return c, fmt.Errorf("%s: invalid number range", cname)
		}

		channel.ID = mc33879.Channel(id) // out1 => OUT1, out8 => OUT8

		if channel.Label == "" {
			channel.Label = channel.ID.String()
		}
	}

	return c, nil
}
