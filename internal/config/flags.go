package config

import (
	"flag"
	"io"
)

// Flags holds the command-line overrides. Zero values leave the config untouched.
type Flags struct {
	Config   string
	Debug    bool
	Width    int
	Height   int
	MSAA     int
	Policy   string
	Noise    string
	Settings string
}

// ParseFlags parses args (without the program name).
func ParseFlags(args []string, output io.Writer) (*Flags, error) {
	f := &Flags{}
	fs := flag.NewFlagSet("hexa", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&f.Config, "config", "", "Path to a .yaml, .yml or .toml config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.IntVar(&f.Width, "width", 0, "Window width")
	fs.IntVar(&f.Height, "height", 0, "Window height")
	fs.IntVar(&f.MSAA, "msaa", 0, "MSAA sample count (1 or 4)")
	fs.StringVar(&f.Policy, "policy", "", "Terrain policy (ring or layered)")
	fs.StringVar(&f.Noise, "noise", "", "Terrain noise (perlin or simplex)")
	fs.StringVar(&f.Settings, "settings", "", "Path of the persisted panel settings")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return f, nil
}

// Apply applies the overrides to cfg.
func (f *Flags) Apply(cfg *Config) {
	if f.Debug {
		cfg.Logging.Level = "debug"
		cfg.Renderer.Profile = true
	}
	if f.Width > 0 {
		cfg.Window.Width = f.Width
	}
	if f.Height > 0 {
		cfg.Window.Height = f.Height
	}
	if f.MSAA > 0 {
		cfg.Renderer.MSAA = f.MSAA
	}
	if f.Policy != "" {
		cfg.Terrain.Policy = f.Policy
	}
	if f.Noise != "" {
		cfg.Terrain.Noise = f.Noise
	}
	if f.Settings != "" {
		cfg.Settings.Path = f.Settings
	}
}
